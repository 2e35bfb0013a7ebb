// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

// ComputeWavelength returns the compatibility score for a finished session:
// the fraction of non-skip answers that match the owner's own answer,
// in [0, 1]. Skips are excluded from both numerator and denominator. A
// session with no answered items scores 0.
func ComputeWavelength(matched, answered int) float64 {
	if answered <= 0 {
		return 0
	}
	if matched > answered {
		matched = answered
	}
	return float64(matched) / float64(answered)
}
