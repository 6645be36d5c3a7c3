// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

// Package analyzer computes file digests
// and estimates whether a file's contents are encrypted or random.
package analyzer

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrEmptyPath is returned when a file operation is given an empty path.
	ErrEmptyPath = errors.New("empty path")
	// ErrTooSmall is wrapped by errors for files
	// with fewer bytes than [Policy.MinSize].
	ErrTooSmall = errors.New("file too small to analyze")
	// ErrKnownFormat is matched by [*KnownFormatError].
	ErrKnownFormat = errors.New("known file format")
)

// KnownFormatError is returned by [Analyze]
// when the file starts with the magic number of a known format.
type KnownFormatError struct {
	Path   string
	Format string
}

func (e *KnownFormatError) Error() string {
	return fmt.Sprintf("analyze %s: %v (%s)", e.Path, ErrKnownFormat, e.Format)
}

// Is reports whether target is [ErrKnownFormat].
func (e *KnownFormatError) Is(target error) bool {
	return target == ErrKnownFormat
}

// Policy holds the limits and thresholds used by [Analyze].
type Policy struct {
	// MinSize is the smallest file in bytes that will be analyzed.
	MinSize int64
	// MaxRead is the number of leading bytes of a file that are analyzed.
	MaxRead int64

	// A file is considered encrypted if its Shannon entropy is at least EntropyMin,
	// its chi-square statistic is at most ChiSquareMax,
	// and its Monte Carlo π error (as a percentage) is at most PiErrorMax.
	EntropyMin   float64
	ChiSquareMax float64
	PiErrorMax   float64

	// Signatures is the list of known formats
	// that are skipped by analysis.
	Signatures []Signature
}

// DefaultPolicy returns a new policy with the default thresholds
// and the default signature table.
func DefaultPolicy() *Policy {
	return &Policy{
		MinSize:      1024,
		MaxRead:      3 << 20,
		EntropyMin:   7.5,
		ChiSquareMax: 400,
		PiErrorMax:   5.0,
		Signatures:   DefaultSignatures(),
	}
}

// Result is the outcome of analyzing a file.
type Result struct {
	// Size is the number of bytes analyzed.
	Size int64
	// Entropy is the Shannon entropy in bits per byte, in the range [0, 8].
	Entropy float64
	// ChiSquare is the chi-square statistic of the byte distribution
	// against a uniform distribution.
	ChiSquare float64
	// MonteCarloPiError is the percentage by which a Monte Carlo estimate of π
	// computed from the bytes deviates from π.
	MonteCarloPiError float64
	// IsEncrypted reports whether all three statistics
	// are within the policy's thresholds.
	IsEncrypted bool
}

// Analyze reads up to policy.MaxRead bytes from the file at path
// and computes its randomness statistics.
// If policy is nil, [DefaultPolicy] is used.
//
// If the file matches one of policy.Signatures,
// Analyze returns a [*KnownFormatError].
// If the file is smaller than policy.MinSize,
// Analyze returns an error wrapping [ErrTooSmall].
// Errors opening or reading the file are returned as [*fs.PathError].
func Analyze(path string, policy *Policy) (*Result, error) {
	if path == "" {
		return nil, fmt.Errorf("analyze: %w", ErrEmptyPath)
	}
	if policy == nil {
		policy = DefaultPolicy()
	}
	data, err := readPrefix(path, policy.MaxRead)
	if err != nil {
		return nil, err
	}
	if sig := policy.match(data); sig != nil {
		return nil, &KnownFormatError{Path: path, Format: sig.Name}
	}
	if int64(len(data)) < policy.MinSize {
		return nil, fmt.Errorf("analyze %s: %w (%d < %d bytes)", path, ErrTooSmall, len(data), policy.MinSize)
	}

	r := &Result{
		Size:              int64(len(data)),
		Entropy:           Entropy(data),
		ChiSquare:         ChiSquare(data),
		MonteCarloPiError: MonteCarloPiError(data),
	}
	r.IsEncrypted = r.Entropy >= policy.EntropyMin &&
		r.ChiSquare <= policy.ChiSquareMax &&
		r.MonteCarloPiError <= policy.PiErrorMax
	return r, nil
}

// FileEntropy returns the Shannon entropy of the entire file at path.
func FileEntropy(path string) (float64, error) {
	if path == "" {
		return 0, fmt.Errorf("entropy: %w", ErrEmptyPath)
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	var h histogram
	if _, err := io.Copy(&h, f); err != nil {
		return 0, err
	}
	return h.entropy(), nil
}

func readPrefix(path string, n int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, n))
}
