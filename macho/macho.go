// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

// Package macho reads the linkage metadata of Mach-O images:
// the file header, the load command table,
// and the architecture table of universal files.
// Segment contents, symbols, and relocations are never interpreted.
package macho

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Type is an enumeration of Mach-O file types.
type Type uint32

// Known Mach-O file types.
const (
	TypeObj        Type = 0x1
	TypeExec       Type = 0x2
	TypeCore       Type = 0x4
	TypeDylib      Type = 0x6
	TypeDylinker   Type = 0x7
	TypeBundle     Type = 0x8
	TypeDylibStub  Type = 0x9
	TypeDSYM       Type = 0xa
	TypeKextBundle Type = 0xb
	TypeFileset    Type = 0xc
)

var typeNames = map[Type]string{
	TypeObj:        "MH_OBJECT",
	TypeExec:       "MH_EXECUTE",
	TypeCore:       "MH_CORE",
	TypeDylib:      "MH_DYLIB",
	TypeDylinker:   "MH_DYLINKER",
	TypeBundle:     "MH_BUNDLE",
	TypeDylibStub:  "MH_DYLIB_STUB",
	TypeDSYM:       "MH_DSYM",
	TypeKextBundle: "MH_KEXT_BUNDLE",
	TypeFileset:    "MH_FILESET",
}

// String returns the file type's <mach-o/loader.h> constant name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%#x)", uint32(t))
}

// FileHeader represents a Mach-O single-architecture file header.
type FileHeader struct {
	ByteOrder    binary.ByteOrder
	AddressWidth int
	CPU          CPUType
	Type         Type

	LoadCommandCount      uint32
	LoadCommandRegionSize uint32
}

// ReadFileHeader reads the header of a Mach-O single-architecture image.
// It also returns a [CommandReader],
// which iterates over the load commands that follow the header.
func ReadFileHeader(r io.Reader) (*FileHeader, *CommandReader, error) {
	buf := make([]byte, maxImageHeaderSize)
	if _, err := io.ReadFull(r, buf[:minImageHeaderSize]); err != nil {
		return nil, nil, fmt.Errorf("parse mach-o header: %w", unexpectedEOF(err))
	}
	hdrSize := imageHeaderSize(magicNumber(buf))
	if hdrSize > minImageHeaderSize {
		if _, err := io.ReadFull(r, buf[minImageHeaderSize:hdrSize]); err != nil {
			return nil, nil, fmt.Errorf("parse mach-o header: %w", unexpectedEOF(err))
		}
	}
	hdr := new(imageHeader)
	if err := hdr.UnmarshalBinary(buf[:hdrSize]); err != nil {
		return nil, nil, err
	}
	result := &FileHeader{
		ByteOrder:             hdr.magic.byteOrder(),
		AddressWidth:          32,
		CPU:                   hdr.cpu,
		Type:                  hdr.fileType,
		LoadCommandCount:      hdr.loadCommandCount,
		LoadCommandRegionSize: hdr.loadCommandSize,
	}
	if hdr.magic.is64Bit() {
		result.AddressWidth = 64
	}
	commandReader := newCommandReader(r, hdr.loadCommandCount, hdr.loadCommandSize, result.ByteOrder)
	return result, commandReader, nil
}

// LoadCommandsOffset returns the offset in bytes
// from the beginning of the image
// where the load command region begins.
func (hdr *FileHeader) LoadCommandsOffset() int64 {
	if hdr.AddressWidth == 32 {
		return minImageHeaderSize
	}
	return maxImageHeaderSize
}

// DataOffset returns the offset in bytes
// from the beginning of the image
// where the load command region ends.
func (hdr *FileHeader) DataOffset() int64 {
	return hdr.LoadCommandsOffset() + int64(hdr.LoadCommandRegionSize)
}

const (
	minImageHeaderSize = 28
	maxImageHeaderSize = 32
)

type imageHeader struct {
	magic            magicNumber
	cpu              CPUType
	cpuSubtype       uint32
	fileType         Type
	loadCommandCount uint32
	loadCommandSize  uint32
	flags            uint32
}

func imageHeaderSize(magic magicNumber) int {
	if !magic.is64Bit() {
		return minImageHeaderSize
	}
	return maxImageHeaderSize
}

func (hdr *imageHeader) UnmarshalBinary(data []byte) error {
	if len(data) < MagicNumberSize {
		return fmt.Errorf("parse mach-o header: %w", io.ErrUnexpectedEOF)
	}
	hdr.magic = magicNumber(data)
	byteOrder := hdr.magic.byteOrder()
	if byteOrder == nil {
		if hdr.magic.isUniversal() {
			return fmt.Errorf("parse mach-o header: found universal file")
		}
		return fmt.Errorf("parse mach-o header: invalid magic number %x", hdr.magic[:])
	}
	if want := imageHeaderSize(hdr.magic); len(data) < want {
		return fmt.Errorf("parse mach-o header: %w", io.ErrUnexpectedEOF)
	} else if len(data) > want {
		return fmt.Errorf("parse mach-o header: trailing data")
	}
	hdr.cpu = CPUType(byteOrder.Uint32(data[4:]))
	hdr.cpuSubtype = byteOrder.Uint32(data[8:])
	hdr.fileType = Type(byteOrder.Uint32(data[12:]))
	hdr.loadCommandCount = byteOrder.Uint32(data[16:])
	hdr.loadCommandSize = byteOrder.Uint32(data[20:])
	hdr.flags = byteOrder.Uint32(data[24:])
	return nil
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
