// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// irisVersion is the version string filled in by the linker (e.g. "1.2.3").
var irisVersion string

func newVersionCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "version",
		Short:                 "show version information",
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return runVersion(cmd.Context(), os.Stdout)
	}
	return c
}

func runVersion(ctx context.Context, dst io.Writer) error {
	firstLine := "iris"
	switch {
	case irisVersion != "":
		firstLine += " version " + irisVersion
	default:
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			firstLine += " version " + info.Main.Version
		} else {
			firstLine += " (version unknown)"
		}
	}
	_, err := fmt.Fprintf(dst, "%s\nGo:           %s\nSystem:       %s/%s\nCPUs:         %d\n",
		firstLine, runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	return err
}
