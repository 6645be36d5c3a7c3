// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package macho

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const loadCommandFixedSize = 8

// LoadCmd is an enumeration of load command types.
type LoadCmd uint32

// Load command types.
// Commands with the high bit set are required by dyld.
const (
	LoadCmdSegment       LoadCmd = 0x1
	LoadCmdSymtab        LoadCmd = 0x2
	LoadCmdDysymtab      LoadCmd = 0xb
	LoadCmdLoadDylib     LoadCmd = 0xc
	LoadCmdIDDylib       LoadCmd = 0xd
	LoadCmdLoadDylinker  LoadCmd = 0xe
	LoadCmdSegment64     LoadCmd = 0x19
	LoadCmdUUID          LoadCmd = 0x1b
	LoadCmdCodeSignature LoadCmd = 0x1d
	LoadCmdLazyLoadDylib LoadCmd = 0x20
	LoadCmdBuildVersion  LoadCmd = 0x32
	LoadCmdLoadWeakDylib LoadCmd = 0x80000018
	LoadCmdRPath         LoadCmd = 0x8000001c
	LoadCmdReexportDylib LoadCmd = 0x8000001f
	LoadCmdDyldInfoOnly  LoadCmd = 0x80000022
	LoadCmdUpwardDylib   LoadCmd = 0x80000023
	LoadCmdMain          LoadCmd = 0x80000028
)

var loadCmdNames = map[LoadCmd]string{
	LoadCmdSegment:       "LC_SEGMENT",
	LoadCmdSymtab:        "LC_SYMTAB",
	LoadCmdDysymtab:      "LC_DYSYMTAB",
	LoadCmdLoadDylib:     "LC_LOAD_DYLIB",
	LoadCmdIDDylib:       "LC_ID_DYLIB",
	LoadCmdLoadDylinker:  "LC_LOAD_DYLINKER",
	LoadCmdSegment64:     "LC_SEGMENT_64",
	LoadCmdUUID:          "LC_UUID",
	LoadCmdCodeSignature: "LC_CODE_SIGNATURE",
	LoadCmdLazyLoadDylib: "LC_LAZY_LOAD_DYLIB",
	LoadCmdBuildVersion:  "LC_BUILD_VERSION",
	LoadCmdLoadWeakDylib: "LC_LOAD_WEAK_DYLIB",
	LoadCmdRPath:         "LC_RPATH",
	LoadCmdReexportDylib: "LC_REEXPORT_DYLIB",
	LoadCmdDyldInfoOnly:  "LC_DYLD_INFO_ONLY",
	LoadCmdUpwardDylib:   "LC_LOAD_UPWARD_DYLIB",
	LoadCmdMain:          "LC_MAIN",
}

// String returns the command's <mach-o/loader.h> constant name.
func (cmd LoadCmd) String() string {
	if name, ok := loadCmdNames[cmd]; ok {
		return name
	}
	return fmt.Sprintf("LoadCmd(%#x)", uint32(cmd))
}

// A CommandReader reads Mach-O load commands from a stream.
// CommandReaders do not buffer their reads
// and never read past the load command region declared in the file header.
type CommandReader struct {
	r                 io.Reader
	remainingCommands uint32
	remainingBytes    uint32
	byteOrder         binary.ByteOrder

	buf                [loadCommandFixedSize]byte
	nbuf               uint8
	currRemainingBytes uint32
	err                error
}

func newCommandReader(r io.Reader, n uint32, size uint32, byteOrder binary.ByteOrder) *CommandReader {
	if n == 0 && size != 0 {
		return &CommandReader{err: errCommandTrailingData}
	}
	if n > 0 && int64(size) < int64(n)*loadCommandFixedSize {
		return &CommandReader{err: fmt.Errorf("read mach-o load command: declared size (%d) too small for number of commands (%d)", size, n)}
	}
	return &CommandReader{
		r:                 r,
		remainingCommands: n,
		remainingBytes:    size,
		byteOrder:         byteOrder,

		// Sentinel for the first call to Next.
		nbuf: loadCommandFixedSize + 1,
	}
}

// Err returns the first non-[io.EOF] error encountered by r.
func (r *CommandReader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}

// Next advances r to the next load command,
// which is then available through [*CommandReader.Read].
// It returns false when there are no more load commands,
// either by reaching the end of the table or an error.
// Unread bytes of the previous command are discarded.
// After Next returns false,
// [*CommandReader.Err] returns the error that stopped iteration, if any.
func (r *CommandReader) Next() bool {
	for r.nbuf < loadCommandFixedSize && r.err == nil {
		r.fillInfo(loadCommandFixedSize)
	}
	if r.err != nil {
		r.clearInfo()
		return false
	}

	r.err = skipBytes(r.r, int64(r.currRemainingBytes))
	if r.err != nil {
		r.clearInfo()
		return false
	}
	// fillInfo guarantees r.remainingBytes >= r.currRemainingBytes if r.err == nil.
	r.remainingBytes -= r.currRemainingBytes
	r.currRemainingBytes = 0

	if r.remainingCommands == 0 {
		if r.remainingBytes > 0 {
			r.err = errCommandTrailingData
		} else {
			r.err = io.EOF
		}
		r.clearInfo()
		return false
	}
	if r.remainingBytes < loadCommandFixedSize {
		r.err = errCommandSizeTooLarge
		r.clearInfo()
		return false
	}

	r.remainingCommands--
	r.nbuf = 0
	return true
}

// Read reads up to len(p) bytes of the current load command into p.
// The first 8 bytes of every load command are its type and total size:
// once they have been read,
// [*CommandReader.Command] and [*CommandReader.Size] report them.
// Read returns [io.EOF] after the last byte of the command.
//
// Each call to Read corresponds to at most one call
// to the underlying [io.Reader].
func (r *CommandReader) Read(p []byte) (n int, err error) {
	if len(p) == 0 || r.err != nil {
		return 0, r.err
	}

	if int(r.nbuf) < len(r.buf) {
		n = copy(p, r.fillInfo(len(p)))
		return n, r.err
	}

	if int64(r.currRemainingBytes) < int64(len(p)) {
		p = p[:r.currRemainingBytes]
	}
	n = r.read(p)
	err = r.err
	r.currRemainingBytes = decreaseCounter(r.currRemainingBytes, n)
	if r.currRemainingBytes == 0 && err == nil {
		err = io.EOF
	}
	return n, err
}

// ReadCommand reads the whole current load command,
// including its 8-byte type and size prefix.
// It must be called before any other read of the command.
func (r *CommandReader) ReadCommand() (LoadCmd, []byte, error) {
	var prefix [loadCommandFixedSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, nil, fmt.Errorf("read mach-o load command: %w", unexpectedEOF(err))
	}
	cmd, _ := r.Command()
	size, ok := r.Size()
	if !ok {
		if err := r.Err(); err != nil {
			return 0, nil, err
		}
		return 0, nil, errCommandSizeTooLarge
	}
	data := make([]byte, size)
	copy(data, prefix[:])
	if _, err := io.ReadFull(r, data[loadCommandFixedSize:]); err != nil {
		return 0, nil, fmt.Errorf("read mach-o load command %v: %w", cmd, unexpectedEOF(err))
	}
	return cmd, data, nil
}

func (r *CommandReader) fillInfo(maxRead int) []byte {
	buf := r.buf[r.nbuf:]
	if len(buf) > maxRead {
		buf = buf[:maxRead]
	}
	n := r.read(buf)
	r.nbuf += uint8(n)

	if size, ok := r.size(); ok {
		if size < loadCommandFixedSize {
			r.currRemainingBytes = 0
			if r.err == nil {
				r.err = errCommandSizeTooSmall
			}
		} else {
			r.currRemainingBytes = size - loadCommandFixedSize
			if r.currRemainingBytes > r.remainingBytes && r.err == nil {
				r.err = errCommandSizeTooLarge
			}
		}
	}

	return buf[:n]
}

// clearInfo clears r.buf,
// so that [*CommandReader.Command] and [*CommandReader.Size] report ok == false.
func (r *CommandReader) clearInfo() {
	clear(r.buf[:])
	r.nbuf = 0
}

func (r *CommandReader) read(p []byte) int {
	if r.err != nil || len(p) == 0 {
		return 0
	}
	var n int
	n, r.err = r.r.Read(p)
	r.remainingBytes = decreaseCounter(r.remainingBytes, n)
	if r.err == io.EOF && r.remainingBytes > 0 {
		r.err = io.ErrUnexpectedEOF
	}
	return n
}

// Command returns the type of the current command.
// ok is true if and only if at least 4 bytes of the current command have been read.
func (r *CommandReader) Command() (_ LoadCmd, ok bool) {
	if r.nbuf < 4 || r.nbuf > loadCommandFixedSize {
		return 0, false
	}
	return LoadCmd(r.byteOrder.Uint32(r.buf[:])), true
}

// Size returns the total size of the current command in bytes.
// ok is false if the first 8 bytes of the command have not been read yet
// or the size is invalid.
// Size never returns a value less than 8.
func (r *CommandReader) Size() (_ uint32, ok bool) {
	size, ok := r.size()
	if !ok || size < loadCommandFixedSize {
		return loadCommandFixedSize, false
	}
	return size, r.currRemainingBytes <= r.remainingBytes
}

func (r *CommandReader) size() (_ uint32, ok bool) {
	return r.byteOrder.Uint32(r.buf[4:]), r.nbuf == loadCommandFixedSize
}

var (
	errCommandSizeTooSmall = errors.New("read mach-o load command: invalid size for command")
	errCommandSizeTooLarge = errors.New("read mach-o load command: command array larger than declared size")
	errCommandTrailingData = errors.New("read mach-o load command: command array smaller than declared size")
)

func decreaseCounter(count uint32, n int) uint32 {
	switch {
	case n < 0:
		return count
	case int64(n) >= int64(count):
		return 0
	default:
		return count - uint32(n)
	}
}

func skipBytes(r io.Reader, n int64) error {
	if n == 0 {
		return nil
	}
	if s, ok := r.(io.Seeker); ok {
		_, err := s.Seek(n, io.SeekCurrent)
		return err
	}
	_, err := io.CopyN(io.Discard, r, n)
	return unexpectedEOF(err)
}
