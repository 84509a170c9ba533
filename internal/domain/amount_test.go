package domain

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		exponent    int32
		want        int64
		expectError bool
	}{
		{name: "whole units", input: "10", exponent: 2, want: 1000},
		{name: "cents", input: "12.34", exponent: 2, want: 1234},
		{name: "minor units without exponent", input: "600", exponent: 0, want: 600},
		{name: "too many decimals", input: "1.001", exponent: 2, expectError: true},
		{name: "zero", input: "0", exponent: 2, expectError: true},
		{name: "negative", input: "-5", exponent: 2, expectError: true},
		{name: "not a number", input: "ten", exponent: 2, expectError: true},
		{name: "overflow", input: "92233720368547758080", exponent: 0, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input, tt.exponent)

			if tt.expectError {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("expected invalid amount error, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseAmount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(1234, 2); got != "12.34" {
		t.Errorf("expected 12.34, got %s", got)
	}
	if got := FormatAmount(600, 0); got != "600" {
		t.Errorf("expected 600, got %s", got)
	}
}
