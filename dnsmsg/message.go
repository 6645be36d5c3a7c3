// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

// Package dnsmsg decodes DNS messages in RFC 1035 wire format
// and builds single-question queries.
//
// Decoding is defensive:
// compression pointers may only point backwards,
// the number of pointer jumps per name is bounded,
// and section counts are capped before anything is allocated.
package dnsmsg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

// Limits applied while decoding.
const (
	// MaxPointerJumps is the maximum number of compression pointers
	// followed while decoding a single name.
	MaxPointerJumps = 16
	// MaxSectionCount is the maximum count accepted for any one section.
	MaxSectionCount = 256
	// maxNameLength is the maximum length of an encoded name,
	// including length octets and the terminating root label.
	maxNameLength = 255
	// maxLabelLength is the maximum length of a single label.
	maxLabelLength = 63
	headerLength   = 12
)

// ErrMalformed is wrapped by every error returned from [Parse].
var ErrMalformed = errors.New("malformed dns message")

// ErrInvalidName is wrapped by every error returned from [BuildQuery]
// and [AppendQuery].
var ErrInvalidName = errors.New("invalid domain name")

// Message is a decoded DNS message.
type Message struct {
	ID                 uint16
	Response           bool
	Opcode             Opcode
	Authoritative      bool
	Truncated          bool
	RecursionDesired   bool
	RecursionAvailable bool
	RCode              RCode

	Questions  []Question
	Answers    []Record
	Authority  []Record
	Additional []Record
}

// Question is an entry in the question section.
type Question struct {
	Name  string
	Type  Type
	Class Class
}

// Record is a resource record.
type Record struct {
	// Name is the owner name in presentation format without a trailing dot.
	Name  string
	Type  Type
	Class Class
	TTL   uint32
	// Data is a copy of the raw rdata.
	// Compressed names inside it are left as-is.
	Data []byte
	// Display is a human-readable rendering of Data.
	Display string
}

// Type is a resource record type.
type Type uint16

// Resource record types with dedicated renderings.
const (
	TypeA     Type = Type(dns.TypeA)
	TypeNS    Type = Type(dns.TypeNS)
	TypeCNAME Type = Type(dns.TypeCNAME)
	TypeSOA   Type = Type(dns.TypeSOA)
	TypePTR   Type = Type(dns.TypePTR)
	TypeMX    Type = Type(dns.TypeMX)
	TypeTXT   Type = Type(dns.TypeTXT)
	TypeAAAA  Type = Type(dns.TypeAAAA)
	TypeSRV   Type = Type(dns.TypeSRV)
	TypeDNAME Type = Type(dns.TypeDNAME)
	TypeOPT   Type = Type(dns.TypeOPT)
	TypeSVCB  Type = Type(dns.TypeSVCB)
	TypeHTTPS Type = Type(dns.TypeHTTPS)
	TypeANY   Type = Type(dns.TypeANY)
	TypeCAA   Type = Type(dns.TypeCAA)
)

// ParseType returns the type with the given mnemonic (like "AAAA")
// or generic name (like "TYPE65").
func ParseType(s string) (Type, error) {
	if t, ok := dns.StringToType[s]; ok {
		return Type(t), nil
	}
	if digits, ok := strings.CutPrefix(s, "TYPE"); ok {
		if n, err := strconv.ParseUint(digits, 10, 16); err == nil {
			return Type(n), nil
		}
	}
	return 0, fmt.Errorf("unknown dns record type %q", s)
}

// String returns the type's mnemonic, or "TYPEn" for unknown types.
func (t Type) String() string {
	if s, ok := dns.TypeToString[uint16(t)]; ok {
		return s
	}
	return fmt.Sprintf("TYPE%d", uint16(t))
}

// Class is a resource record class.
type Class uint16

// ClassINET is the Internet class.
const ClassINET Class = Class(dns.ClassINET)

// String returns the class's mnemonic, or "CLASSn" for unknown classes.
func (c Class) String() string {
	if s, ok := dns.ClassToString[uint16(c)]; ok {
		return s
	}
	return fmt.Sprintf("CLASS%d", uint16(c))
}

// Opcode is the kind of query in a message header.
type Opcode uint8

// String returns the opcode's mnemonic.
func (op Opcode) String() string {
	if s, ok := dns.OpcodeToString[int(op)]; ok {
		return s
	}
	return fmt.Sprintf("OPCODE%d", uint8(op))
}

// RCode is the 4-bit response code in a message header.
type RCode uint8

// String returns the response code's mnemonic.
func (rc RCode) String() string {
	if s, ok := dns.RcodeToString[int(rc)]; ok {
		return s
	}
	return fmt.Sprintf("RCODE%d", uint8(rc))
}

// Header flag bits.
const (
	flagResponse           = 0x8000
	flagAuthoritative      = 0x0400
	flagTruncated          = 0x0200
	flagRecursionDesired   = 0x0100
	flagRecursionAvailable = 0x0080
)
