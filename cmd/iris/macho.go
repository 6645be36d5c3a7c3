// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"io"
	"os"

	"github.com/irisproxy/iris/macho"
	"github.com/spf13/cobra"
)

func newMachOCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "macho PATH [...]",
		Short:                 "show the dynamic linkage of Mach-O files",
		DisableFlagsInUseLine: true,
		Args:                  cobra.MinimumNArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return runMachO(cmd.Context(), os.Stdout, args)
	}
	return c
}

type machOInfoJSON struct {
	Path           string   `json:"path"`
	FileType       string   `json:"fileType"`
	CPU            string   `json:"cpu"`
	Universal      bool     `json:"universal,omitempty"`
	LoadDylibs     []string `json:"loadDylibs"`
	WeakDylibs     []string `json:"weakDylibs"`
	ReexportDylibs []string `json:"reexportDylibs"`
	RPaths         []string `json:"rpaths"`
}

func runMachO(ctx context.Context, dst io.Writer, paths []string) error {
	for _, path := range paths {
		info, err := macho.Inspect(path)
		if err != nil {
			return err
		}
		err = writeJSON(dst, &machOInfoJSON{
			Path:           path,
			FileType:       info.FileType.String(),
			CPU:            info.CPU.String(),
			Universal:      info.Universal,
			LoadDylibs:     info.LoadDylibs,
			WeakDylibs:     info.WeakDylibs,
			ReexportDylibs: info.ReexportDylibs,
			RPaths:         info.RPaths,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
