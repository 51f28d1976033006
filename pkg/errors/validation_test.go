package errors

import (
	"math"
	"testing"
)

func TestValidatePixels(t *testing.T) {
	tests := []struct {
		name    string
		nx, ny  int
		wantErr bool
	}{
		{"square", 50, 50, false},
		{"single pixel", 1, 1, false},
		{"rectangular", 10, 40, false},

		{"zero x", 0, 10, true},
		{"negative y", 10, -1, true},
		{"too large", 5000, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePixels(tt.nx, tt.ny)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePixels(%d, %d) error = %v, wantErr %v", tt.nx, tt.ny, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPixels) {
				t.Errorf("ValidatePixels code = %v, want %v", GetCode(err), ErrCodeInvalidPixels)
			}
		})
	}
}

func TestValidateSpread(t *testing.T) {
	tests := []struct {
		spread  float64
		wantErr bool
	}{
		{0, false},
		{0.15, false},
		{2, false},
		{-0.1, true},
		{math.NaN(), true},
		{math.Inf(1), true},
	}

	for _, tt := range tests {
		err := ValidateSpread(tt.spread)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSpread(%v) error = %v, wantErr %v", tt.spread, err, tt.wantErr)
		}
	}
}

func TestValidateFinite(t *testing.T) {
	if err := ValidateFinite("maxB", 18); err != nil {
		t.Errorf("ValidateFinite(18) error = %v", err)
	}
	if err := ValidateFinite("maxB", math.Inf(-1)); err == nil {
		t.Error("ValidateFinite(-Inf) should fail")
	}
}
