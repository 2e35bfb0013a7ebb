// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import "testing"

func TestComputeWavelength(t *testing.T) {
	tests := []struct {
		name     string
		matched  int
		answered int
		want     float64
	}{
		{name: "no answers scores zero", matched: 0, answered: 0, want: 0},
		{name: "all matched", matched: 4, answered: 4, want: 1},
		{name: "half matched", matched: 2, answered: 4, want: 0.5},
		{name: "none matched", matched: 0, answered: 3, want: 0},
		{name: "matched clamped to answered", matched: 5, answered: 4, want: 1},
		{name: "negative answered scores zero", matched: 1, answered: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeWavelength(tt.matched, tt.answered)
			if got != tt.want {
				t.Errorf("ComputeWavelength(%d, %d) = %v, want %v", tt.matched, tt.answered, got, tt.want)
			}
		})
	}
}
