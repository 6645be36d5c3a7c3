// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package macho

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	universalHeaderFixedSize   = 8
	universalFileEntrySize     = 20
	universalFileEntrySize64   = 32
	maxUniversalFileEntryCount = 128
)

// Alignment is a power-of-two alignment stored as its base-2 logarithm.
type Alignment uint32

// Bytes returns the alignment in bytes.
// ok is false if the alignment does not fit in an int64.
func (a Alignment) Bytes() (_ int64, ok bool) {
	if a > 62 {
		return 0, false
	}
	return 1 << a, true
}

// UniversalFileEntry is a single architecture
// in a universal (multi-architecture) Mach-O file.
type UniversalFileEntry struct {
	CPU        CPUType
	CPUSubtype uint32
	// Offset is the offset in bytes from the beginning of the universal file
	// at which this architecture's image starts.
	Offset uint64
	// Size is the size of the image in bytes.
	Size      uint64
	Alignment Alignment
}

// ReadUniversalHeader reads a universal Mach-O header and all of its entries.
// Both the 32-bit ("fat") and 64-bit ("fat64") header forms are accepted.
func ReadUniversalHeader(r io.Reader) ([]UniversalFileEntry, error) {
	var headerData [universalHeaderFixedSize]byte
	if _, err := io.ReadFull(r, headerData[:]); err != nil {
		return nil, fmt.Errorf("parse universal mach-o header: %w", unexpectedEOF(err))
	}
	magic := magicNumber(headerData[:])
	if !magic.isUniversal() {
		if magic.byteOrder() == nil {
			return nil, fmt.Errorf("parse universal mach-o header: not a mach-o file")
		}
		return nil, fmt.Errorf("parse universal mach-o header: found single-architecture mach-o")
	}
	entryCount := binary.BigEndian.Uint32(headerData[4:])
	if entryCount == 0 {
		return nil, fmt.Errorf("parse universal mach-o header: empty")
	}
	if entryCount > maxUniversalFileEntryCount {
		return nil, fmt.Errorf("parse universal mach-o header: too many entries (%d)", entryCount)
	}

	entrySize := universalFileEntrySize
	if magic.hasWideEntries() {
		entrySize = universalFileEntrySize64
	}
	entryData := make([]byte, int(entryCount)*entrySize)
	if _, err := io.ReadFull(r, entryData); err != nil {
		return nil, fmt.Errorf("parse universal mach-o header: %w", unexpectedEOF(err))
	}
	result := make([]UniversalFileEntry, entryCount)
	for i := range result {
		data := entryData[i*entrySize : (i+1)*entrySize]
		var err error
		if entrySize == universalFileEntrySize64 {
			err = result[i].unmarshalWide(data)
		} else {
			err = result[i].UnmarshalBinary(data)
		}
		if err != nil {
			return nil, fmt.Errorf("parse universal mach-o header: entry %d: %v", i, err)
		}
	}
	return result, nil
}

// UnmarshalBinary unmarshals a 32-bit universal file entry.
func (ent *UniversalFileEntry) UnmarshalBinary(data []byte) error {
	if len(data) != universalFileEntrySize {
		return fmt.Errorf("universal mach-o entry must be %d bytes (got %d)", universalFileEntrySize, len(data))
	}
	ent.CPU = CPUType(binary.BigEndian.Uint32(data))
	ent.CPUSubtype = binary.BigEndian.Uint32(data[4:])
	ent.Offset = uint64(binary.BigEndian.Uint32(data[8:]))
	ent.Size = uint64(binary.BigEndian.Uint32(data[12:]))
	ent.Alignment = Alignment(binary.BigEndian.Uint32(data[16:]))
	return ent.validate()
}

func (ent *UniversalFileEntry) unmarshalWide(data []byte) error {
	if len(data) != universalFileEntrySize64 {
		return fmt.Errorf("universal mach-o entry must be %d bytes (got %d)", universalFileEntrySize64, len(data))
	}
	ent.CPU = CPUType(binary.BigEndian.Uint32(data))
	ent.CPUSubtype = binary.BigEndian.Uint32(data[4:])
	ent.Offset = binary.BigEndian.Uint64(data[8:])
	ent.Size = binary.BigEndian.Uint64(data[16:])
	ent.Alignment = Alignment(binary.BigEndian.Uint32(data[24:]))
	return ent.validate()
}

func (ent *UniversalFileEntry) validate() error {
	if _, ok := ent.Alignment.Bytes(); !ok {
		return fmt.Errorf("alignment too large")
	}
	if ent.Offset+ent.Size < ent.Offset {
		return fmt.Errorf("image range overflows")
	}
	return nil
}
