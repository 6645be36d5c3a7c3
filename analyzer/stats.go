// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package analyzer

import "math"

// histogram counts occurrences of each byte value.
// It is an [io.Writer] so that files can be streamed through it.
type histogram struct {
	counts [256]uint64
	total  uint64
}

func (h *histogram) Write(p []byte) (int, error) {
	for _, b := range p {
		h.counts[b]++
	}
	h.total += uint64(len(p))
	return len(p), nil
}

func (h *histogram) entropy() float64 {
	if h.total == 0 {
		return 0
	}
	n := float64(h.total)
	e := 0.0
	for _, c := range h.counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		e -= p * math.Log2(p)
	}
	// Rounding can produce -0 or a value a hair above 8.
	return min(max(e, 0), 8)
}

func (h *histogram) chiSquare() float64 {
	if h.total == 0 {
		return 0
	}
	expected := float64(h.total) / 256
	chi := 0.0
	for _, c := range h.counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	return chi
}

// Entropy returns the Shannon entropy of data in bits per byte.
// The result is in the range [0, 8].
// Empty data has an entropy of 0.
func Entropy(data []byte) float64 {
	var h histogram
	h.Write(data)
	return h.entropy()
}

// ChiSquare returns the chi-square statistic of the byte values in data
// against a uniform distribution over all 256 values.
// Empty data returns 0.
func ChiSquare(data []byte) float64 {
	var h histogram
	h.Write(data)
	return h.chiSquare()
}

// MonteCarloPiError estimates π by treating consecutive non-overlapping byte pairs
// as points in the unit square
// and counting the points that fall inside the inscribed circle.
// It returns the absolute deviation of the estimate from π as a percentage of π.
// Data with fewer than two bytes returns 100.
func MonteCarloPiError(data []byte) float64 {
	points := len(data) / 2
	if points == 0 {
		return 100
	}
	inside := 0
	for i := 0; i+1 < len(data); i += 2 {
		x := (float64(data[i]) + 0.5) / 256
		y := (float64(data[i+1]) + 0.5) / 256
		dx, dy := x-0.5, y-0.5
		if dx*dx+dy*dy <= 0.25 {
			inside++
		}
	}
	estimate := 4 * float64(inside) / float64(points)
	return math.Abs(estimate-math.Pi) / math.Pi * 100
}
