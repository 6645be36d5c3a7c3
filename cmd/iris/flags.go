// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strconv"

	"github.com/irisproxy/iris/dnsmsg"
	"github.com/spf13/pflag"
	"zombiezen.com/go/nix"
)

var (
	_ pflag.Value = (*hashTypeFlag)(nil)
	_ pflag.Value = (*recordTypeFlag)(nil)
)

// hashTypeFlag is the implementation of [github.com/spf13/pflag.Value]
// for a [nix.HashType].
type hashTypeFlag nix.HashType

func (f *hashTypeFlag) Type() string  { return "algorithm" }
func (f hashTypeFlag) String() string { return nix.HashType(f).String() }
func (f hashTypeFlag) Get() any       { return nix.HashType(f) }

func (f *hashTypeFlag) Set(s string) error {
	typ, err := nix.ParseHashType(s)
	if err != nil {
		return err
	}
	*f = hashTypeFlag(typ)
	return nil
}

// recordTypeFlag is the implementation of [github.com/spf13/pflag.Value]
// for a [dnsmsg.Type].
// It accepts mnemonics (like "AAAA"), the generic "TYPEn" form,
// and decimal numbers.
type recordTypeFlag dnsmsg.Type

func (f *recordTypeFlag) Type() string  { return "type" }
func (f recordTypeFlag) String() string { return dnsmsg.Type(f).String() }
func (f recordTypeFlag) Get() any       { return dnsmsg.Type(f) }

func (f *recordTypeFlag) Set(s string) error {
	if n, err := strconv.ParseUint(s, 10, 16); err == nil {
		*f = recordTypeFlag(n)
		return nil
	}
	typ, err := dnsmsg.ParseType(s)
	if err != nil {
		return fmt.Errorf("unknown record type %q", s)
	}
	*f = recordTypeFlag(typ)
	return nil
}
