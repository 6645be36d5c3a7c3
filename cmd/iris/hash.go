// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/irisproxy/iris/analyzer"
	"github.com/spf13/cobra"
	"zombiezen.com/go/log"
)

func newHashCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "hash [options] PATH [...]",
		Short:                 "compute file digests",
		DisableFlagsInUseLine: true,
		Args:                  cobra.MinimumNArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.Flags().VarP((*hashTypeFlag)(&g.HashAlgorithm), "algorithm", "a", "hash `algorithm` (md5, sha1, sha256, or sha512)")
	c.Flags().IntVarP(&g.Concurrency, "jobs", "j", g.Concurrency, "hash up to `n` files at once (0 for one per CPU)")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return runHash(cmd.Context(), os.Stdout, g, args)
	}
	return c
}

// runHash writes one line per path in the format used by sha256sum.
func runHash(ctx context.Context, dst io.Writer, g *globalConfig, paths []string) error {
	digests := analyzer.DigestBatch(ctx, paths, &analyzer.BatchOptions{
		HashType:    g.HashAlgorithm,
		Concurrency: g.Concurrency,
	})
	failed := 0
	for i, digest := range digests {
		if digest == "" {
			log.Errorf(ctx, "%s: could not compute %v digest", paths[i], g.HashAlgorithm)
			failed++
			continue
		}
		if _, err := fmt.Fprintf(dst, "%s  %s\n", digest, paths[i]); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be hashed", failed, len(paths))
	}
	return nil
}
