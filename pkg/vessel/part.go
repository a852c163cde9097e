// Package vessel defines the snapshot data model the staging engine consumes.
// A host (game plugin, replay file, test fixture) supplies an immutable
// point-in-time Snapshot; the engine only reads it.
package vessel

// PartKind classifies parts whose topology role matters to the engine.
// Everything else is Plain.
type PartKind int

const (
	Plain PartKind = iota
	Decoupler
	Separator
	DockingPort
	EnginePlate
	FuelDuct
	FairingBase
)

var partKindName = map[PartKind]string{
	Plain:       "plain",
	Decoupler:   "decoupler",
	Separator:   "separator",
	DockingPort: "dockingPort",
	EnginePlate: "enginePlate",
	FuelDuct:    "fuelDuct",
	FairingBase: "fairingBase",
}

// String returns the snapshot wire name of the kind.
func (k PartKind) String() string {
	if n, ok := partKindName[k]; ok {
		return n
	}
	return "unknown"
}

// PartKindByName maps a snapshot wire name to its PartKind.
func PartKindByName(name string) (PartKind, bool) {
	for k, n := range partKindName {
		if n == name {
			return k, true
		}
	}
	return Plain, false
}

// IsDecouplerFamily reports whether the kind separates vessel sections when
// activated (and therefore bounds crossfeed traversal).
func (k PartKind) IsDecouplerFamily() bool {
	switch k {
	case Decoupler, Separator, DockingPort, EnginePlate:
		return true
	}
	return false
}

// NeverStaged is the sentinel stage index for parts that are never removed
// from the vessel (and for engines that are never activated).
const NeverStaged = -1

// Resource is a propellant load carried by a part.
type Resource struct {
	Type   PropellantType
	Amount float64 // resource units
}

// Mass returns the resource mass in tons.
func (r Resource) Mass() float64 {
	return r.Amount * r.Type.Density()
}

// Part is one node of the vessel's ownership tree. The snapshot owns the
// struct; the engine treats it as read-only.
type Part struct {
	ID      int
	Name    string
	DryMass float64 // tons

	Resources []Resource
	Kind      PartKind
	IsEngine  bool

	// ActivationStage is the stage whose firing activates the part
	// (engine ignition, decoupler separation). NeverStaged if inert.
	ActivationStage int

	// DecoupledIn is the stage in which the part is detached from the
	// vessel. NeverStaged if it rides all the way down.
	DecoupledIn int

	// Tag is the optional user nametag. Duct destination resolution and
	// the engine-plate / decoupler-orientation overrides read it.
	Tag string

	Parent   *Part
	Children []*Part

	// CrossfeedEnabled applies to decoupler-family parts: when set,
	// zone traversal transits the part instead of stopping at it.
	CrossfeedEnabled bool

	// BlocksCrossfeed marks part types that never pass fuel (heat
	// shields, certain structural pieces). Traversal stops without
	// claiming beyond them.
	BlocksCrossfeed bool

	// AttachedToTopNode reports that the part hangs off its parent's
	// "top" attach node. Engine-plate traversal keeps such children.
	AttachedToTopNode bool

	// FairingPanelMass is the jettisonable panel portion of a
	// FairingBase part's mass, in tons.
	FairingPanelMass float64

	// UnmodeledResourceMass is the mass of resources outside the
	// recognized propellant set (monopropellant, ablator, ...). The
	// stage mass accountant folds it into dry mass.
	UnmodeledResourceMass float64
}

// FuelMass returns the total recognized-propellant mass aboard the part.
func (p *Part) FuelMass() float64 {
	var m float64
	for _, r := range p.Resources {
		m += r.Mass()
	}
	return m
}

// HasFuel reports whether the part carries any recognized propellant.
func (p *Part) HasFuel() bool {
	for _, r := range p.Resources {
		if r.Amount > 0 {
			return true
		}
	}
	return false
}

// HasTag reports whether the part carries the given non-empty nametag.
func (p *Part) HasTag(tag string) bool {
	return tag != "" && p.Tag == tag
}
