// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

// Package der builds ASN.1 values in the Distinguished Encoding Rules (X.690).
//
// Every builder returns exactly one complete tag-length-value encoding.
// Constructed builders such as [Sequence] take already-encoded children,
// so values compose by nesting calls:
//
//	oid, err := der.ObjectIdentifier(1, 2, 840, 113549, 1, 1, 11)
//	if err != nil {
//		return err
//	}
//	algorithm := der.Sequence(oid, der.Null())
package der

import (
	encoding_asn1 "encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// ErrInvalid is wrapped by errors for values that cannot be encoded.
var ErrInvalid = errors.New("invalid asn.1 value")

// MaxTag is the largest tag number accepted by [Explicit] and [Implicit].
// Larger tag numbers need the multi-byte identifier form,
// which is not supported.
const MaxTag = 30

func build(what string, f cryptobyte.BuilderContinuation) ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	f(b)
	out, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w: %v", what, ErrInvalid, err)
	}
	return out, nil
}

// Integer encodes v as an INTEGER in the fewest two's-complement bytes.
func Integer(v int64) []byte {
	out, _ := build("integer", func(b *cryptobyte.Builder) {
		b.AddASN1Int64(v)
	})
	return out
}

// IntegerBytes encodes the unsigned big-endian magnitude as a non-negative INTEGER.
// Redundant leading zero bytes are dropped
// and a single zero byte is prepended if the high bit of the first byte is set.
func IntegerBytes(magnitude []byte) ([]byte, error) {
	if len(magnitude) == 0 {
		return nil, fmt.Errorf("encode integer: %w: empty magnitude", ErrInvalid)
	}
	n := new(big.Int).SetBytes(magnitude)
	return build("integer", func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(n)
	})
}

// Boolean encodes v as a BOOLEAN.
// True is encoded as 0xff.
func Boolean(v bool) []byte {
	out, _ := build("boolean", func(b *cryptobyte.Builder) {
		b.AddASN1Boolean(v)
	})
	return out
}

// Null returns the encoding of NULL.
func Null() []byte {
	out, _ := build("null", func(b *cryptobyte.Builder) {
		b.AddASN1NULL()
	})
	return out
}

// BitString encodes data as a BIT STRING with no unused bits.
func BitString(data []byte) []byte {
	out, _ := build("bit string", func(b *cryptobyte.Builder) {
		b.AddASN1BitString(data)
	})
	return out
}

// OctetString encodes data as an OCTET STRING.
func OctetString(data []byte) []byte {
	out, _ := build("octet string", func(b *cryptobyte.Builder) {
		b.AddASN1OctetString(data)
	})
	return out
}

// ObjectIdentifier encodes the arcs as an OBJECT IDENTIFIER.
// There must be at least two arcs,
// the first arc must be 0, 1, or 2,
// and the second arc must be less than 40 unless the first is 2.
func ObjectIdentifier(arcs ...uint32) ([]byte, error) {
	oid := make(encoding_asn1.ObjectIdentifier, len(arcs))
	for i, arc := range arcs {
		oid[i] = int(arc)
	}
	return build("object identifier", func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(oid)
	})
}

// UTF8String encodes s as a UTF8String.
// s must be valid UTF-8.
func UTF8String(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("encode utf8 string: %w: %q is not valid UTF-8", ErrInvalid, s)
	}
	return build("utf8 string", func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.UTF8String, func(b *cryptobyte.Builder) {
			b.AddBytes([]byte(s))
		})
	})
}

// PrintableString encodes s as a PrintableString.
// s may only contain ASCII letters, digits, spaces, and the characters '()+,-./:=?.
func PrintableString(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if !isPrintable(s[i]) {
			return nil, fmt.Errorf("encode printable string: %w: %q contains %q", ErrInvalid, s, s[i])
		}
	}
	return build("printable string", func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.PrintableString, func(b *cryptobyte.Builder) {
			b.AddBytes([]byte(s))
		})
	})
}

func isPrintable(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case ' ', '\'', '(', ')', '+', ',', '-', '.', '/', ':', '=', '?':
		return true
	}
	return false
}

// Sequence wraps the concatenation of the encoded children in a SEQUENCE.
func Sequence(children ...[]byte) []byte {
	out, _ := build("sequence", constructed(asn1.SEQUENCE, children))
	return out
}

// Set wraps the concatenation of the encoded children in a SET,
// keeping the children in the order given.
func Set(children ...[]byte) []byte {
	out, _ := build("set", constructed(asn1.SET, children))
	return out
}

// Explicit wraps the concatenation of the encoded content
// in a context-specific constructed tag [tag].
func Explicit(tag uint8, content ...[]byte) ([]byte, error) {
	if tag > MaxTag {
		return nil, fmt.Errorf("encode explicit tag: %w: tag %d > %d", ErrInvalid, tag, MaxTag)
	}
	return build("explicit tag", constructed(asn1.Tag(tag).ContextSpecific().Constructed(), content))
}

// Implicit encodes content as the contents octets
// of a context-specific primitive tag [tag].
// content must be the contents of the underlying value, not a full encoding.
func Implicit(tag uint8, content []byte) ([]byte, error) {
	if tag > MaxTag {
		return nil, fmt.Errorf("encode implicit tag: %w: tag %d > %d", ErrInvalid, tag, MaxTag)
	}
	return build("implicit tag", func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.Tag(tag).ContextSpecific(), func(b *cryptobyte.Builder) {
			b.AddBytes(content)
		})
	})
}

func constructed(tag asn1.Tag, children [][]byte) cryptobyte.BuilderContinuation {
	return func(b *cryptobyte.Builder) {
		b.AddASN1(tag, func(b *cryptobyte.Builder) {
			for _, child := range children {
				b.AddBytes(child)
			}
		})
	}
}

// UTCTime encodes the Unix timestamp as a UTCTime (YYMMDDhhmmssZ).
// Only years 1950 through 2049 can be represented.
func UTCTime(unix int64) ([]byte, error) {
	t := time.Unix(unix, 0).UTC()
	return build("utc time", func(b *cryptobyte.Builder) {
		b.AddASN1UTCTime(t)
	})
}

// GeneralizedTime encodes the Unix timestamp as a GeneralizedTime (YYYYMMDDhhmmssZ).
// Only years 0 through 9999 can be represented.
func GeneralizedTime(unix int64) ([]byte, error) {
	t := time.Unix(unix, 0).UTC()
	return build("generalized time", func(b *cryptobyte.Builder) {
		b.AddASN1GeneralizedTime(t)
	})
}
