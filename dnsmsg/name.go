// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package dnsmsg

import (
	"fmt"
	"strings"
)

// readName decodes the possibly compressed name that starts at off.
// It returns the name in presentation format
// and the offset of the first byte after the name's
// in-place encoding (that is, after the first pointer if there is one).
//
// Every pointer must refer to an offset strictly less than
// the offset of the pointer itself,
// so the read position decreases on each jump and decoding always terminates.
func readName(msg []byte, off int) (name string, next int, err error) {
	sb := new(strings.Builder)
	next = -1
	wireLength := 0
	jumps := 0
	for {
		if off >= len(msg) {
			return "", 0, fmt.Errorf("%w: name at offset %d: unexpected end of message", ErrMalformed, off)
		}
		c := int(msg[off])
		switch c & 0xc0 {
		case 0x00:
			if c == 0 {
				if next < 0 {
					next = off + 1
				}
				if sb.Len() == 0 {
					return ".", next, nil
				}
				return sb.String(), next, nil
			}
			end := off + 1 + c
			if end > len(msg) {
				return "", 0, fmt.Errorf("%w: label at offset %d: unexpected end of message", ErrMalformed, off)
			}
			wireLength += 1 + c
			if wireLength+1 > maxNameLength {
				return "", 0, fmt.Errorf("%w: name at offset %d: longer than %d bytes", ErrMalformed, off, maxNameLength)
			}
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			writeLabel(sb, msg[off+1:end])
			off = end
		case 0xc0:
			if off+1 >= len(msg) {
				return "", 0, fmt.Errorf("%w: pointer at offset %d: unexpected end of message", ErrMalformed, off)
			}
			target := (c&0x3f)<<8 | int(msg[off+1])
			if next < 0 {
				next = off + 2
			}
			if target >= off {
				return "", 0, fmt.Errorf("%w: pointer at offset %d refers to offset %d", ErrMalformed, off, target)
			}
			jumps++
			if jumps > MaxPointerJumps {
				return "", 0, fmt.Errorf("%w: name at offset %d: more than %d compression pointers", ErrMalformed, off, MaxPointerJumps)
			}
			off = target
		default:
			return "", 0, fmt.Errorf("%w: label at offset %d: reserved label type %#02x", ErrMalformed, off, c&0xc0)
		}
	}
}

// writeLabel writes a label in presentation format,
// escaping dots, backslashes, and bytes outside printable ASCII.
func writeLabel(sb *strings.Builder, label []byte) {
	for _, b := range label {
		switch {
		case b == '.' || b == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(b)
		case b <= ' ' || b >= 0x7f:
			fmt.Fprintf(sb, "\\%03d", b)
		default:
			sb.WriteByte(b)
		}
	}
}

// appendName appends the uncompressed wire encoding of a
// presentation-format name to dst.
// A single trailing dot is permitted.
// Escapes are not interpreted.
func appendName(dst []byte, name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if name == "." {
		return append(dst, 0), nil
	}
	name = strings.TrimSuffix(name, ".")
	if len(name)+2 > maxNameLength {
		return nil, fmt.Errorf("%w: %q longer than %d bytes", ErrInvalidName, truncate(name), maxNameLength)
	}
	for label := range strings.SplitSeq(name, ".") {
		if label == "" {
			return nil, fmt.Errorf("%w: %q has an empty label", ErrInvalidName, name)
		}
		if len(label) > maxLabelLength {
			return nil, fmt.Errorf("%w: %q has label %q longer than %d bytes", ErrInvalidName, name, truncate(label), maxLabelLength)
		}
		dst = append(dst, byte(len(label)))
		dst = append(dst, label...)
	}
	return append(dst, 0), nil
}

func truncate(s string) string {
	const max = 32
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
