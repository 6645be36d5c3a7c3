// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package dnsmsg

import (
	"encoding/binary"
	"fmt"
)

// BuildQuery returns a new query message
// with a single question for domain in the Internet class.
// The name is not compressed.
func BuildQuery(domain string, typ Type, id uint16, recursionDesired bool) ([]byte, error) {
	return AppendQuery(make([]byte, 0, headerLength+len(domain)+2+4), domain, typ, id, recursionDesired)
}

// AppendQuery appends the query built by [BuildQuery] to dst.
// On error, AppendQuery returns nil.
func AppendQuery(dst []byte, domain string, typ Type, id uint16, recursionDesired bool) ([]byte, error) {
	var flags uint16
	if recursionDesired {
		flags |= flagRecursionDesired
	}
	dst = binary.BigEndian.AppendUint16(dst, id)
	dst = binary.BigEndian.AppendUint16(dst, flags)
	dst = binary.BigEndian.AppendUint16(dst, 1) // QDCOUNT
	dst = append(dst, 0, 0, 0, 0, 0, 0)         // ANCOUNT, NSCOUNT, ARCOUNT
	dst, err := appendName(dst, domain)
	if err != nil {
		return nil, fmt.Errorf("build dns query: %w", err)
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(typ))
	dst = binary.BigEndian.AppendUint16(dst, uint16(ClassINET))
	return dst, nil
}
