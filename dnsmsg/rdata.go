// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package dnsmsg

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// display renders the rdata in msg[start:end] for a record of type t.
// Names inside the rdata are decompressed against the whole message.
// Rdata that does not decode as its type is rendered as hex.
func display(t Type, msg []byte, start, end int) string {
	rd := msg[start:end]
	s, ok := "", false
	switch t {
	case TypeA:
		if len(rd) == 4 {
			s, ok = netip.AddrFrom4([4]byte(rd)).String(), true
		}
	case TypeAAAA:
		if len(rd) == 16 {
			s, ok = netip.AddrFrom16([16]byte(rd)).String(), true
		}
	case TypeNS, TypeCNAME, TypePTR, TypeDNAME:
		s, ok = rdataName(msg, start, end)
	case TypeMX:
		if len(rd) >= 3 {
			var name string
			name, ok = rdataName(msg, start+2, end)
			s = strconv.Itoa(int(binary.BigEndian.Uint16(rd))) + " " + name
		}
	case TypeSRV:
		if len(rd) >= 7 {
			var target string
			target, ok = rdataName(msg, start+6, end)
			s = fmt.Sprintf("%d %d %d %s",
				binary.BigEndian.Uint16(rd),
				binary.BigEndian.Uint16(rd[2:]),
				binary.BigEndian.Uint16(rd[4:]),
				target)
		}
	case TypeSOA:
		s, ok = displaySOA(msg, start, end)
	case TypeTXT:
		s, ok = displayTXT(rd)
	case TypeSVCB, TypeHTTPS:
		if len(rd) >= 3 {
			var target string
			target, ok = rdataName(msg, start+2, end)
			if priority := binary.BigEndian.Uint16(rd); priority == 0 {
				s = "AliasMode " + target
			} else {
				s = strconv.Itoa(int(priority)) + " " + target
			}
		}
	case TypeCAA:
		s, ok = displayCAA(rd)
	}
	if !ok {
		return hex.EncodeToString(rd)
	}
	return s
}

// rdataName decodes a name that starts at off
// whose in-place encoding must end no later than end.
func rdataName(msg []byte, off, end int) (string, bool) {
	name, next, err := readName(msg, off)
	if err != nil || next > end {
		return "", false
	}
	return name, true
}

func displaySOA(msg []byte, start, end int) (string, bool) {
	mname, off, err := readName(msg, start)
	if err != nil || off > end {
		return "", false
	}
	rname, off, err := readName(msg, off)
	if err != nil || off+20 > end {
		return "", false
	}
	fields := msg[off : off+20]
	return fmt.Sprintf("%s %s %d %d %d %d %d",
		mname, rname,
		binary.BigEndian.Uint32(fields),
		binary.BigEndian.Uint32(fields[4:]),
		binary.BigEndian.Uint32(fields[8:]),
		binary.BigEndian.Uint32(fields[12:]),
		binary.BigEndian.Uint32(fields[16:])), true
}

// displayTXT concatenates the character-strings in rd.
// Bytes outside printable ASCII are written as \DDD.
func displayTXT(rd []byte) (string, bool) {
	sb := new(strings.Builder)
	for len(rd) > 0 {
		n := int(rd[0])
		if 1+n > len(rd) {
			return "", false
		}
		writePrintable(sb, rd[1:1+n], false)
		rd = rd[1+n:]
	}
	return sb.String(), true
}

// displayCAA renders a CAA record (RFC 8659) as `flags tag "value"`.
func displayCAA(rd []byte) (string, bool) {
	if len(rd) < 2 {
		return "", false
	}
	flags, tagLen := rd[0], int(rd[1])
	if tagLen == 0 || 2+tagLen > len(rd) {
		return "", false
	}
	tag := rd[2 : 2+tagLen]
	for _, b := range tag {
		if !('a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || '0' <= b && b <= '9') {
			return "", false
		}
	}
	sb := new(strings.Builder)
	fmt.Fprintf(sb, "%d %s \"", flags, tag)
	writePrintable(sb, rd[2+tagLen:], true)
	sb.WriteByte('"')
	return sb.String(), true
}

// writePrintable writes b with bytes outside printable ASCII as \DDD.
// If quoted is true, double quotes and backslashes are backslash-escaped.
func writePrintable(sb *strings.Builder, b []byte, quoted bool) {
	for _, c := range b {
		switch {
		case c < ' ' || c >= 0x7f:
			fmt.Fprintf(sb, "\\%03d", c)
		case quoted && (c == '"' || c == '\\'):
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
}
