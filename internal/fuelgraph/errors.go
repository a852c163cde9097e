package fuelgraph

import "errors"

// Configuration and topology errors. These abort the computation; the
// caller gets them wrapped with the offending part or zone.
var (
	// ErrUnsupportedTopology is returned when a zone owns more than one
	// outgoing fuel duct. Only single-outlet chains are supported.
	ErrUnsupportedTopology = errors.New("more than one outgoing fuel duct in a zone")

	// ErrDuctDestination is returned when a duct's destination zone
	// cannot be resolved by tag match or decoupler-side inference.
	ErrDuctDestination = errors.New("cannot resolve fuel duct destination")
)
