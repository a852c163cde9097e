// Package snapshot decodes serialized vessel dumps into the engine's data
// model. Hosts emit one JSON document per request; the decoded snapshot
// is immutable and satisfies vessel.Snapshot.
package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/kspkit/stagesim/pkg/vessel"
)

// Codec decodes vessel snapshot documents.
type Codec struct {
	logger *slog.Logger
}

// NewCodec creates a codec with the given diagnostic logger.
func NewCodec(logger *slog.Logger) *Codec {
	return &Codec{logger: logger}
}

// wire format

type document struct {
	Vessel       string    `json:"vessel"`
	CurrentStage int       `json:"currentStage"`
	Pressure     float64   `json:"pressure"`
	Parts        []partDoc `json:"parts"`
}

type partDoc struct {
	ID               int           `json:"id"`
	Name             string        `json:"name"`
	Kind             string        `json:"kind,omitempty"`
	DryMass          float64       `json:"dryMass"`
	Stage            int           `json:"stage"`
	DecoupledIn      int           `json:"decoupledIn"`
	Tag              string        `json:"tag,omitempty"`
	Parent           *int          `json:"parent,omitempty"`
	Crossfeed        bool          `json:"crossfeed,omitempty"`
	BlocksCrossfeed  bool          `json:"blocksCrossfeed,omitempty"`
	TopNode          bool          `json:"topNode,omitempty"`
	FairingPanelMass float64       `json:"fairingPanelMass,omitempty"`
	Resources        []resourceDoc `json:"resources,omitempty"`
	Engine           *engineDoc    `json:"engine,omitempty"`
}

type resourceDoc struct {
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Density float64 `json:"density,omitempty"` // t/unit, for unmodeled resources
}

type engineDoc struct {
	ThrustLimiter  float64            `json:"thrustLimiter"`
	VacuumThrust   float64            `json:"vacuumThrust"`
	SeaLevelThrust float64            `json:"seaLevelThrust"`
	Flow           map[string]float64 `json:"flow"` // tons/s per resource name
}

// Snapshot is the decoded, immutable vessel state.
type Snapshot struct {
	name     string
	parts    []*vessel.Part
	engines  []*vessel.Engine
	stage    int
	pressure float64
}

// Name implements vessel.Snapshot.
func (s *Snapshot) Name() string { return s.name }

// Parts implements vessel.Snapshot.
func (s *Snapshot) Parts() []*vessel.Part { return s.parts }

// Engines implements vessel.Snapshot.
func (s *Snapshot) Engines() []*vessel.Engine { return s.engines }

// CurrentStage implements vessel.Snapshot.
func (s *Snapshot) CurrentStage() int { return s.stage }

// CurrentPressure implements vessel.Snapshot.
func (s *Snapshot) CurrentPressure() float64 { return s.pressure }

// LoadFile decodes a snapshot document from disk.
func (c *Codec) LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}
	return c.Decode(data)
}

// Decode parses a snapshot document and links the part tree.
func (c *Codec) Decode(data []byte) (*Snapshot, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if doc.CurrentStage < 0 {
		return nil, fmt.Errorf("invalid current stage %d", doc.CurrentStage)
	}

	snap := &Snapshot{
		name:     doc.Vessel,
		stage:    doc.CurrentStage,
		pressure: doc.Pressure,
	}

	byID := make(map[int]*vessel.Part, len(doc.Parts))
	for i := range doc.Parts {
		pd := &doc.Parts[i]
		if _, dup := byID[pd.ID]; dup {
			return nil, fmt.Errorf("duplicate part id %d", pd.ID)
		}

		p, err := c.decodePart(pd, doc.CurrentStage)
		if err != nil {
			return nil, err
		}
		byID[pd.ID] = p
		snap.parts = append(snap.parts, p)

		if pd.Engine != nil {
			e, err := c.decodeEngine(p, pd)
			if err != nil {
				return nil, err
			}
			snap.engines = append(snap.engines, e)
		}
	}

	// Link the ownership tree once every part exists.
	for i := range doc.Parts {
		pd := &doc.Parts[i]
		if pd.Parent == nil {
			continue
		}
		parent, ok := byID[*pd.Parent]
		if !ok {
			return nil, fmt.Errorf("part %d references unknown parent %d", pd.ID, *pd.Parent)
		}
		child := byID[pd.ID]
		child.Parent = parent
		parent.Children = append(parent.Children, child)
	}

	c.logger.Debug("snapshot decoded",
		"vessel", snap.name,
		"parts", len(snap.parts),
		"engines", len(snap.engines),
		"currentStage", snap.stage)
	return snap, nil
}

func (c *Codec) decodePart(pd *partDoc, currentStage int) (*vessel.Part, error) {
	kind := vessel.Plain
	if pd.Kind != "" {
		k, ok := vessel.PartKindByName(pd.Kind)
		if !ok {
			return nil, fmt.Errorf("part %d (%s): unknown kind %q", pd.ID, pd.Name, pd.Kind)
		}
		kind = k
	}
	if pd.Stage > currentStage || pd.Stage < vessel.NeverStaged {
		return nil, fmt.Errorf("part %d (%s): stage %d outside [-1,%d]", pd.ID, pd.Name, pd.Stage, currentStage)
	}
	if pd.DecoupledIn > currentStage || pd.DecoupledIn < vessel.NeverStaged {
		return nil, fmt.Errorf("part %d (%s): decoupledIn %d outside [-1,%d]", pd.ID, pd.Name, pd.DecoupledIn, currentStage)
	}
	if pd.DryMass < 0 {
		return nil, fmt.Errorf("part %d (%s): negative dry mass", pd.ID, pd.Name)
	}

	p := &vessel.Part{
		ID:                pd.ID,
		Name:              pd.Name,
		DryMass:           pd.DryMass,
		Kind:              kind,
		IsEngine:          pd.Engine != nil,
		ActivationStage:   pd.Stage,
		DecoupledIn:       pd.DecoupledIn,
		Tag:               pd.Tag,
		CrossfeedEnabled:  pd.Crossfeed,
		BlocksCrossfeed:   pd.BlocksCrossfeed,
		AttachedToTopNode: pd.TopNode,
		FairingPanelMass:  pd.FairingPanelMass,
	}

	for _, rd := range pd.Resources {
		if rd.Amount < 0 {
			return nil, fmt.Errorf("part %d (%s): negative %s amount", pd.ID, pd.Name, rd.Name)
		}
		if pt, ok := vessel.PropellantByName(rd.Name); ok {
			p.Resources = append(p.Resources, vessel.Resource{Type: pt, Amount: rd.Amount})
			continue
		}
		// Resources outside the recognized set are inert mass.
		p.UnmodeledResourceMass += rd.Amount * rd.Density
		c.logger.Debug("unmodeled resource folded into dry mass",
			"part", pd.Name, "resource", rd.Name, "mass", rd.Amount*rd.Density)
	}

	return p, nil
}

func (c *Codec) decodeEngine(p *vessel.Part, pd *partDoc) (*vessel.Engine, error) {
	ed := pd.Engine
	if ed.VacuumThrust < 0 || ed.SeaLevelThrust < 0 {
		return nil, fmt.Errorf("engine %d (%s): negative thrust", pd.ID, pd.Name)
	}
	lim := ed.ThrustLimiter
	if lim <= 0 || lim > 1 {
		lim = 1
	}

	e := &vessel.Engine{
		Part:           p,
		ThrustLimiter:  lim,
		VacuumThrust:   ed.VacuumThrust,
		SeaLevelThrust: ed.SeaLevelThrust,
	}
	for name, rate := range ed.Flow {
		pt, ok := vessel.PropellantByName(name)
		if !ok {
			return nil, fmt.Errorf("engine %d (%s): unknown propellant %q", pd.ID, pd.Name, name)
		}
		if rate < 0 {
			return nil, fmt.Errorf("engine %d (%s): negative flow for %s", pd.ID, pd.Name, name)
		}
		e.FlowRate[pt] = rate
	}
	return e, nil
}
