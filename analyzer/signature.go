// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package analyzer

import "bytes"

// Signature identifies a file format by the bytes at a fixed offset.
type Signature struct {
	Name   string
	Offset int
	Magic  []byte
}

// Match reports whether data contains the signature's magic number.
func (sig Signature) Match(data []byte) bool {
	if len(sig.Magic) == 0 || sig.Offset < 0 || sig.Offset > len(data) {
		return false
	}
	return bytes.HasPrefix(data[sig.Offset:], sig.Magic)
}

// DefaultSignatures returns a new copy of the built-in table
// of compressed, archive, and media formats.
// These formats have high entropy without being encrypted.
func DefaultSignatures() []Signature {
	return []Signature{
		{Name: "zip", Magic: []byte("PK\x03\x04")},
		{Name: "zip", Magic: []byte("PK\x05\x06")},
		{Name: "gzip", Magic: []byte{0x1f, 0x8b}},
		{Name: "bzip2", Magic: []byte("BZh")},
		{Name: "xz", Magic: []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
		{Name: "zstd", Magic: []byte{0x28, 0xb5, 0x2f, 0xfd}},
		{Name: "7z", Magic: []byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c}},
		{Name: "rar", Magic: []byte("Rar!\x1a\x07")},
		{Name: "xar", Magic: []byte("xar!")},
		{Name: "pdf", Magic: []byte("%PDF")},
		{Name: "png", Magic: []byte{0x89, 'P', 'N', 'G'}},
		{Name: "jpeg", Magic: []byte{0xff, 0xd8, 0xff}},
		{Name: "gif", Magic: []byte("GIF8")},
		{Name: "mp4", Offset: 4, Magic: []byte("ftyp")},
	}
}

func (policy *Policy) match(data []byte) *Signature {
	for i := range policy.Signatures {
		if policy.Signatures[i].Match(data) {
			return &policy.Signatures[i]
		}
	}
	return nil
}
