// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/irisproxy/iris/analyzer"
	"github.com/spf13/cobra"
	"zombiezen.com/go/log"
)

type entropyOptions struct {
	paths []string
	full  bool
}

func newEntropyCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "entropy [options] PATH [...]",
		Short:                 "estimate whether files are encrypted",
		DisableFlagsInUseLine: true,
		Args:                  cobra.MinimumNArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	opts := new(entropyOptions)
	c.Flags().BoolVar(&opts.full, "full", false, "run the full randomness analysis")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		opts.paths = args
		return runEntropy(cmd.Context(), os.Stdout, g, opts)
	}
	return c
}

type entropyJSON struct {
	Path    string  `json:"path"`
	Entropy float64 `json:"entropy"`

	Size              int64   `json:"size,omitzero"`
	ChiSquare         float64 `json:"chiSquare,omitzero"`
	MonteCarloPiError float64 `json:"monteCarloPiError,omitzero"`
	Encrypted         *bool   `json:"encrypted,omitempty"`
	KnownFormat       string  `json:"knownFormat,omitempty"`
	TooSmall          bool    `json:"tooSmall,omitempty"`
}

func runEntropy(ctx context.Context, dst io.Writer, g *globalConfig, opts *entropyOptions) error {
	for _, path := range opts.paths {
		result := &entropyJSON{Path: path}
		if !opts.full {
			var err error
			result.Entropy, err = analyzer.FileEntropy(path)
			if err != nil {
				return err
			}
		} else if err := analyzeFile(ctx, result, g.Entropy); err != nil {
			return err
		}
		if err := writeJSON(dst, result); err != nil {
			return err
		}
	}
	return nil
}

func analyzeFile(ctx context.Context, dst *entropyJSON, policy *analyzer.Policy) error {
	r, err := analyzer.Analyze(dst.Path, policy)
	var known *analyzer.KnownFormatError
	switch {
	case errors.As(err, &known):
		log.Debugf(ctx, "Skipping analysis of %s: %v", dst.Path, err)
		dst.KnownFormat = known.Format
		return nil
	case errors.Is(err, analyzer.ErrTooSmall):
		log.Debugf(ctx, "Skipping analysis of %s: %v", dst.Path, err)
		dst.TooSmall = true
		return nil
	case err != nil:
		return err
	}
	dst.Size = r.Size
	dst.Entropy = r.Entropy
	dst.ChiSquare = r.ChiSquare
	dst.MonteCarloPiError = r.MonteCarloPiError
	dst.Encrypted = &r.IsEncrypted
	return nil
}
