package horizon

import "errors"

var (
	// ErrInsufficientData means the point set has fewer points than the
	// polynomial has coefficients. Loosening the filters may help.
	ErrInsufficientData = errors.New("insufficient points")

	// ErrDegenerateSystem means Gaussian elimination met a zero or
	// numerically negligible pivot, e.g. when every x value is identical.
	ErrDegenerateSystem = errors.New("degenerate fit")

	// ErrInvalidDegree is returned for a negative polynomial degree.
	ErrInvalidDegree = errors.New("invalid polynomial degree")

	// ErrInvalidFrame is returned for negative frame dimensions.
	ErrInvalidFrame = errors.New("invalid frame dimensions")

	// ErrParameterRange is returned when a knob lies outside its declared range.
	ErrParameterRange = errors.New("parameter out of range")

	// ErrUnknownParameter is returned for a knob name that does not exist.
	ErrUnknownParameter = errors.New("unknown parameter")
)
