// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package macho

import "fmt"

// CPUType is an enumeration of instruction set architectures.
type CPUType uint32

// [CPUType] values defined by the Mach-O file format.
const (
	CPUTypeI386      CPUType = 0x00000007
	CPUTypeX86_64    CPUType = 0x01000007
	CPUTypeARM       CPUType = 0x0000000c
	CPUTypeARM64     CPUType = 0x0100000c
	CPUTypeARM64_32  CPUType = 0x0200000c
	CPUTypePowerPC   CPUType = 0x00000012
	CPUTypePowerPC64 CPUType = 0x01000012
)

var cpuTypeNames = map[CPUType]string{
	CPUTypeI386:      "i386",
	CPUTypeX86_64:    "x86_64",
	CPUTypeARM:       "arm",
	CPUTypeARM64:     "arm64",
	CPUTypeARM64_32:  "arm64_32",
	CPUTypePowerPC:   "ppc",
	CPUTypePowerPC64: "ppc64",
}

// String returns the architecture name used by Apple's toolchain
// (as in "lipo -archs").
func (ct CPUType) String() string {
	if name, ok := cpuTypeNames[ct]; ok {
		return name
	}
	return fmt.Sprintf("CPUType(%#x)", uint32(ct))
}

// Is64Bit reports whether the CPU type has a 64-bit address width.
func (ct CPUType) Is64Bit() bool {
	return ct&0x01000000 != 0
}
