package lattice

import "errors"

var (
	// ErrMissingKey indicates a ring parameter absent from the header.
	ErrMissingKey = errors.New("lattice: missing ring parameter")

	// ErrInvalidRing indicates ring parameters that violate an invariant.
	ErrInvalidRing = errors.New("lattice: invalid ring configuration")

	// ErrInvalidOptics indicates ragged or missing optics columns.
	ErrInvalidOptics = errors.New("lattice: invalid optics table")
)
