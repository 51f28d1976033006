package errors

import "math"

// ValidatePixels validates an image resolution.
// Both axes must hold at least one pixel; the upper bound keeps a single
// request from allocating an unbounded amount of memory.
func ValidatePixels(nx, ny int) error {
	const maxPixelsPerAxis = 4096
	if nx <= 0 || ny <= 0 {
		return New(ErrCodeInvalidPixels, "pixel counts must be positive, got %dx%d", nx, ny)
	}
	if nx > maxPixelsPerAxis || ny > maxPixelsPerAxis {
		return New(ErrCodeInvalidPixels, "pixel counts too large (max %d per axis), got %dx%d", maxPixelsPerAxis, nx, ny)
	}
	return nil
}

// ValidateSpread validates a Gaussian spread. Zero is allowed and means
// "use the birth pixel width".
func ValidateSpread(spread float64) error {
	if math.IsNaN(spread) || math.IsInf(spread, 0) {
		return New(ErrCodeInvalidInput, "spread must be finite, got %v", spread)
	}
	if spread < 0 {
		return New(ErrCodeInvalidInput, "spread must be non-negative, got %v", spread)
	}
	return nil
}

// ValidateFinite validates that a named value is a finite number.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be finite, got %v", name, v)
	}
	return nil
}
