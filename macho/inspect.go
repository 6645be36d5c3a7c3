// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package macho

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
)

// ErrFormat is wrapped by errors caused by a file
// that is not a well-formed Mach-O file.
var ErrFormat = errors.New("not a valid mach-o file")

// Info is the dynamic linkage metadata of a Mach-O image.
// Each list keeps the order of the load commands
// and contains no duplicates.
type Info struct {
	LoadDylibs     []string
	WeakDylibs     []string
	RPaths         []string
	ReexportDylibs []string
	FileType       Type
	CPU            CPUType
	// Universal is true if the image was the first architecture
	// of a universal file.
	Universal bool
}

// Inspect reads the linkage metadata of the Mach-O file at path.
// If the file cannot be opened or read,
// Inspect returns the underlying [*fs.PathError].
// Errors caused by the file's contents wrap [ErrFormat].
func Inspect(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !st.Mode().IsRegular() {
		return nil, fmt.Errorf("inspect %s: %w: not a regular file", path, ErrFormat)
	}
	info, err := ReadInfo(f, st.Size())
	if err != nil {
		if isReadError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("inspect %s: %w", path, err)
	}
	return info, nil
}

// ReadInfo reads the linkage metadata of the Mach-O file
// stored in the first size bytes of r.
// For a universal file, the first architecture is inspected.
func ReadInfo(r io.ReaderAt, size int64) (*Info, error) {
	if size < MagicNumberSize {
		return nil, fmt.Errorf("%w: %d-byte file too small", ErrFormat, size)
	}
	var magic magicNumber
	if _, err := r.ReadAt(magic[:], 0); err != nil {
		if isReadError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %d-byte file too small", ErrFormat, size)
	}
	if magic.isUniversal() {
		entries, err := ReadUniversalHeader(io.NewSectionReader(r, 0, size))
		if err != nil {
			return nil, formatError(err)
		}
		first := entries[0]
		if first.Offset > uint64(size) || first.Size > uint64(size)-first.Offset {
			return nil, fmt.Errorf("%w: %v image at [%d, +%d) exceeds %d-byte file",
				ErrFormat, first.CPU, first.Offset, first.Size, size)
		}
		info, err := readImageInfo(io.NewSectionReader(r, int64(first.Offset), int64(first.Size)), int64(first.Size))
		if err != nil {
			return nil, err
		}
		info.Universal = true
		return info, nil
	}
	if magic.byteOrder() == nil {
		return nil, fmt.Errorf("%w: unknown magic number %x", ErrFormat, magic[:])
	}
	return readImageInfo(io.NewSectionReader(r, 0, size), size)
}

func readImageInfo(r *io.SectionReader, size int64) (*Info, error) {
	hdr, cr, err := ReadFileHeader(r)
	if err != nil {
		return nil, formatError(err)
	}
	if hdr.DataOffset() > size {
		return nil, fmt.Errorf("%w: %d bytes of load commands exceed %d-byte image",
			ErrFormat, hdr.LoadCommandRegionSize, size)
	}
	info := &Info{
		FileType: hdr.Type,
		CPU:      hdr.CPU,
	}
	for cr.Next() {
		cmd, data, err := cr.ReadCommand()
		if err != nil {
			return nil, formatError(err)
		}
		var list *[]string
		minSize := dylibCommandMinSize
		switch cmd {
		case LoadCmdLoadDylib, LoadCmdLazyLoadDylib, LoadCmdUpwardDylib:
			list = &info.LoadDylibs
		case LoadCmdLoadWeakDylib:
			list = &info.WeakDylibs
		case LoadCmdReexportDylib:
			list = &info.ReexportDylibs
		case LoadCmdRPath:
			list, minSize = &info.RPaths, rpathCommandMinSize
		default:
			continue
		}
		name, err := commandString(data, minSize, hdr.ByteOrder)
		if err != nil {
			return nil, fmt.Errorf("%w: %v: %v", ErrFormat, cmd, err)
		}
		if !slices.Contains(*list, name) {
			*list = append(*list, name)
		}
	}
	if err := cr.Err(); err != nil {
		return nil, formatError(err)
	}
	return info, nil
}

// Minimum sizes of the load commands that carry a string.
// In both, the lc_str offset immediately follows cmd and cmdsize.
const (
	// dylib_command: cmd, cmdsize, dylib.name, timestamp,
	// current_version, compatibility_version.
	dylibCommandMinSize = 24
	// rpath_command: cmd, cmdsize, path.
	rpathCommandMinSize = 12

	strOffsetField = 8
)

// commandString returns the NUL-terminated string
// referenced by the command's lc_str offset.
// A string that runs to the end of the command without a NUL is accepted.
func commandString(data []byte, minSize int, byteOrder binary.ByteOrder) (string, error) {
	if len(data) < minSize {
		return "", fmt.Errorf("command size %d smaller than %d", len(data), minSize)
	}
	off := byteOrder.Uint32(data[strOffsetField:])
	if off < uint32(minSize) || off >= uint32(len(data)) {
		return "", fmt.Errorf("string offset %d outside of %d-byte command", off, len(data))
	}
	s := data[off:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s), nil
}

// formatError wraps err in [ErrFormat]
// unless it came from reading the underlying file.
func formatError(err error) error {
	if isReadError(err) || errors.Is(err, ErrFormat) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrFormat, err)
}

func isReadError(err error) bool {
	var pathError *fs.PathError
	return errors.As(err, &pathError)
}
