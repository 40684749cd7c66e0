package catalogue

import "errors"

// Error taxonomy for catalogue misuse. All of these indicate caller error,
// not transient conditions: a failed call leaves the catalogue unchanged
// and retrying without fixing the input will fail the same way.
var (
	// ErrDuplicateTarget is returned when a target id is created twice.
	ErrDuplicateTarget = errors.New("target already exists")

	// ErrUnknownTarget is returned when an observation references a target
	// id that was never created.
	ErrUnknownTarget = errors.New("unknown target")

	// ErrAmbiguousFilterBinding is returned when an observation supplies
	// neither a Stardust filter code nor a central wavelength, or both.
	ErrAmbiguousFilterBinding = errors.New("observation must carry exactly one of filter code or wavelength")

	// ErrColumnShapeConflict is returned when an instrument label is reused
	// with a different binding kind than it was first registered with.
	ErrColumnShapeConflict = errors.New("instrument label cannot switch between code-bound and wavelength-bound")
)
