// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package der

import (
	"encoding/asn1"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEncode(t *testing.T) {
	mustEncode := func(b []byte, err error) []byte {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return b
	}
	oidRSA := mustEncode(ObjectIdentifier(1, 2, 840, 113549))

	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{name: "Integer0", got: Integer(0), want: []byte{0x02, 0x01, 0x00}},
		{name: "Integer127", got: Integer(127), want: []byte{0x02, 0x01, 0x7f}},
		{name: "Integer128", got: Integer(128), want: []byte{0x02, 0x02, 0x00, 0x80}},
		{name: "Integer256", got: Integer(256), want: []byte{0x02, 0x02, 0x01, 0x00}},
		{name: "IntegerMinus1", got: Integer(-1), want: []byte{0x02, 0x01, 0xff}},
		{name: "IntegerMinus128", got: Integer(-128), want: []byte{0x02, 0x01, 0x80}},
		{name: "IntegerMinus129", got: Integer(-129), want: []byte{0x02, 0x02, 0xff, 0x7f}},
		{name: "IntegerBytesHighBit", got: mustEncode(IntegerBytes([]byte{0x80})), want: []byte{0x02, 0x02, 0x00, 0x80}},
		{name: "IntegerBytesLeadingZeros", got: mustEncode(IntegerBytes([]byte{0x00, 0x00, 0x01})), want: []byte{0x02, 0x01, 0x01}},
		{name: "IntegerBytesZero", got: mustEncode(IntegerBytes([]byte{0x00})), want: []byte{0x02, 0x01, 0x00}},
		{name: "True", got: Boolean(true), want: []byte{0x01, 0x01, 0xff}},
		{name: "False", got: Boolean(false), want: []byte{0x01, 0x01, 0x00}},
		{name: "Null", got: Null(), want: []byte{0x05, 0x00}},
		{name: "BitString", got: BitString([]byte{0x6e, 0x5d}), want: []byte{0x03, 0x03, 0x00, 0x6e, 0x5d}},
		{name: "OctetString", got: OctetString([]byte("hi")), want: []byte{0x04, 0x02, 'h', 'i'}},
		{name: "EmptyOctetString", got: OctetString(nil), want: []byte{0x04, 0x00}},
		{
			name: "ObjectIdentifier",
			got:  oidRSA,
			want: []byte{0x06, 0x06, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d},
		},
		{
			name: "ObjectIdentifierJointISO",
			got:  mustEncode(ObjectIdentifier(2, 999, 3)),
			want: []byte{0x06, 0x03, 0x88, 0x37, 0x03},
		},
		{name: "UTF8String", got: mustEncode(UTF8String("héllo")), want: append([]byte{0x0c, 0x06}, "héllo"...)},
		{name: "PrintableString", got: mustEncode(PrintableString("Test User 1")), want: append([]byte{0x13, 0x0b}, "Test User 1"...)},
		{
			name: "Sequence",
			got:  Sequence(Integer(1), Boolean(true)),
			want: []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x01, 0x01, 0xff},
		},
		{name: "EmptySequence", got: Sequence(), want: []byte{0x30, 0x00}},
		{
			name: "SetKeepsOrder",
			got:  Set(Integer(2), Integer(1)),
			want: []byte{0x31, 0x06, 0x02, 0x01, 0x02, 0x02, 0x01, 0x01},
		},
		{
			name: "Explicit",
			got:  mustEncode(Explicit(0, Integer(2))),
			want: []byte{0xa0, 0x03, 0x02, 0x01, 0x02},
		},
		{
			name: "Implicit",
			got:  mustEncode(Implicit(2, []byte("example.com"))),
			want: append([]byte{0x82, 0x0b}, "example.com"...),
		},
		{
			name: "UTCTime",
			got:  mustEncode(UTCTime(1700000000)),
			want: append([]byte{0x17, 0x0d}, "231114221320Z"...),
		},
		{
			name: "GeneralizedTime",
			got:  mustEncode(GeneralizedTime(1700000000)),
			want: append([]byte{0x18, 0x0f}, "20231114221320Z"...),
		},
		{
			name: "GeneralizedTimeAfter2049",
			got:  mustEncode(GeneralizedTime(2556144000)),
			want: append([]byte{0x18, 0x0f}, "20510101000000Z"...),
		},
	}

	for _, test := range tests {
		if diff := cmp.Diff(test.want, test.got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestLongLength(t *testing.T) {
	content := make([]byte, 300)
	got := OctetString(content)
	if want := []byte{0x04, 0x82, 0x01, 0x2c}; string(got[:4]) != string(want) {
		t.Errorf("OctetString(300 bytes) header = %x; want %x", got[:4], want)
	}
	if len(got) != 4+len(content) {
		t.Errorf("len(OctetString(300 bytes)) = %d; want %d", len(got), 4+len(content))
	}

	got = OctetString(make([]byte, 128))
	if want := []byte{0x04, 0x81, 0x80}; string(got[:3]) != string(want) {
		t.Errorf("OctetString(128 bytes) header = %x; want %x", got[:3], want)
	}
}

func TestEncodingAsn1Compat(t *testing.T) {
	type algorithm struct {
		Algorithm  asn1.ObjectIdentifier
		Parameters asn1.RawValue
	}
	type record struct {
		Version   int
		Serial    *big.Int
		Algorithm algorithm
		Name      string `asn1:"utf8"`
		Flags     asn1.BitString
		Issued    time.Time `asn1:"utc"`
		Critical  bool
		Extra     int `asn1:"explicit,tag:1"`
	}

	oid, err := ObjectIdentifier(1, 2, 840, 113549, 1, 1, 11)
	if err != nil {
		t.Fatal(err)
	}
	serial, err := IntegerBytes([]byte{0xde, 0xad, 0xbe, 0xef, 0x01})
	if err != nil {
		t.Fatal(err)
	}
	name, err := UTF8String("Iris Test CA")
	if err != nil {
		t.Fatal(err)
	}
	issued, err := UTCTime(1700000000)
	if err != nil {
		t.Fatal(err)
	}
	extra, err := Explicit(1, Integer(-42))
	if err != nil {
		t.Fatal(err)
	}
	data := Sequence(
		Integer(2),
		serial,
		Sequence(oid, Null()),
		name,
		BitString([]byte{0x05, 0xa0}),
		issued,
		Boolean(true),
		extra,
	)

	var got record
	rest, err := asn1.Unmarshal(data, &got)
	if err != nil {
		t.Fatal("asn1.Unmarshal:", err)
	}
	if len(rest) > 0 {
		t.Errorf("%d trailing bytes after record", len(rest))
	}
	want := record{
		Version: 2,
		Serial:  new(big.Int).SetBytes([]byte{0xde, 0xad, 0xbe, 0xef, 0x01}),
		Algorithm: algorithm{
			Algorithm:  asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11},
			Parameters: asn1.RawValue{Tag: asn1.TagNull, FullBytes: []byte{0x05, 0x00}},
		},
		Name:     "Iris Test CA",
		Flags:    asn1.BitString{Bytes: []byte{0x05, 0xa0}, BitLength: 16},
		Issued:   time.Unix(1700000000, 0).UTC(),
		Critical: true,
		Extra:    -42,
	}
	opts := cmp.Options{
		cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 }),
		cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) }),
		cmp.Comparer(func(a, b asn1.RawValue) bool { return string(a.FullBytes) == string(b.FullBytes) }),
	}
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Errorf("asn1.Unmarshal(...) (-want +got):\n%s", diff)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		f    func() ([]byte, error)
	}{
		{name: "IntegerBytesEmpty", f: func() ([]byte, error) { return IntegerBytes(nil) }},
		{name: "OIDOneArc", f: func() ([]byte, error) { return ObjectIdentifier(1) }},
		{name: "OIDNoArcs", f: func() ([]byte, error) { return ObjectIdentifier() }},
		{name: "OIDFirstArcTooLarge", f: func() ([]byte, error) { return ObjectIdentifier(3, 1) }},
		{name: "OIDSecondArcTooLarge", f: func() ([]byte, error) { return ObjectIdentifier(1, 40) }},
		{name: "UTF8StringInvalid", f: func() ([]byte, error) { return UTF8String("\xff\xfe") }},
		{name: "PrintableStringAt", f: func() ([]byte, error) { return PrintableString("user@example.com") }},
		{name: "PrintableStringNonASCII", f: func() ([]byte, error) { return PrintableString("héllo") }},
		{name: "ExplicitTagTooLarge", f: func() ([]byte, error) { return Explicit(31, Null()) }},
		{name: "ImplicitTagTooLarge", f: func() ([]byte, error) { return Implicit(200, nil) }},
		{name: "UTCTimeBefore1950", f: func() ([]byte, error) { return UTCTime(-700000000) }},
		{name: "UTCTime2050", f: func() ([]byte, error) { return UTCTime(2524608000) }},
		{name: "GeneralizedTimeYear10000", f: func() ([]byte, error) { return GeneralizedTime(253402300800) }},
	}

	for _, test := range tests {
		got, err := test.f()
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: got %x, %v; want error wrapping %v", test.name, got, err, ErrInvalid)
		}
	}
}

func TestUTCTimeRangeEdges(t *testing.T) {
	start := time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	got, err := UTCTime(start)
	if err != nil {
		t.Fatalf("UTCTime(1950-01-01): %v", err)
	}
	if s := string(got[2:]); !strings.HasPrefix(s, "50") {
		t.Errorf("UTCTime(1950-01-01) = %q; want 50... year", s)
	}
	end := time.Date(2049, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()
	got, err = UTCTime(end)
	if err != nil {
		t.Fatalf("UTCTime(2049-12-31): %v", err)
	}
	if want := "491231235959Z"; string(got[2:]) != want {
		t.Errorf("UTCTime(2049-12-31T23:59:59Z) = %q; want %q", got[2:], want)
	}
}
