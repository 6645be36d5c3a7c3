// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package macho

import "encoding/binary"

// MagicNumberSize is the size (in bytes) of the magic number at the start of a Mach-O file.
const MagicNumberSize = 4

type magicNumber [MagicNumberSize]byte

var (
	magic32BE        = magicNumber{0xfe, 0xed, 0xfa, 0xce}
	magic32LE        = magicNumber{0xce, 0xfa, 0xed, 0xfe}
	magic64BE        = magicNumber{0xfe, 0xed, 0xfa, 0xcf}
	magic64LE        = magicNumber{0xcf, 0xfa, 0xed, 0xfe}
	magicUniversal   = magicNumber{0xca, 0xfe, 0xba, 0xbe}
	magicUniversal64 = magicNumber{0xca, 0xfe, 0xba, 0xbf}
)

func (magic magicNumber) isUniversal() bool {
	return magic == magicUniversal || magic == magicUniversal64
}

// hasWideEntries reports whether the universal header uses
// 64-bit offsets and sizes in its architecture table.
func (magic magicNumber) hasWideEntries() bool {
	return magic == magicUniversal64
}

func (magic magicNumber) isBigEndian() bool {
	return magic == magic32BE || magic == magic64BE
}

func (magic magicNumber) isLittleEndian() bool {
	return magic == magic32LE || magic == magic64LE
}

func (magic magicNumber) byteOrder() binary.ByteOrder {
	switch {
	case magic.isBigEndian():
		return binary.BigEndian
	case magic.isLittleEndian():
		return binary.LittleEndian
	default:
		return nil
	}
}

func (magic magicNumber) is64Bit() bool {
	return magic == magic64BE || magic == magic64LE
}

// IsSingleArchitecture reports whether head starts with the magic number
// of a single-architecture Mach-O image.
// It reports false if len(head) < [MagicNumberSize].
func IsSingleArchitecture(head []byte) bool {
	if len(head) < MagicNumberSize {
		return false
	}
	return magicNumber(head).byteOrder() != nil
}

// IsUniversal reports whether head starts with the magic number
// of a universal (multi-architecture) Mach-O file.
// It reports false if len(head) < [MagicNumberSize].
func IsUniversal(head []byte) bool {
	if len(head) < MagicNumberSize {
		return false
	}
	return magicNumber(head).isUniversal()
}
