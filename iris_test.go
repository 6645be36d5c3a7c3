// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package iris

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/irisproxy/iris/analyzer"
	"github.com/irisproxy/iris/der"
	"github.com/irisproxy/iris/dnsmsg"
	"github.com/irisproxy/iris/httphead"
	"github.com/irisproxy/iris/macho"
)

func TestCodeOf(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")
	notMachO := filepath.Join(dir, "not-macho")
	if err := os.WriteFile(notMachO, []byte("#!/bin/sh\necho hello\n"), 0o666); err != nil {
		t.Fatal(err)
	}
	gzipFile := filepath.Join(dir, "a.gz")
	if err := os.WriteFile(gzipFile, []byte{0x1f, 0x8b, 0x08, 0x00}, 0o666); err != nil {
		t.Fatal(err)
	}
	smallFile := filepath.Join(dir, "small")
	if err := os.WriteFile(smallFile, []byte("hello"), 0o666); err != nil {
		t.Fatal(err)
	}

	errorOf := func(_ any, err error) error { return err }
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "Nil", err: nil, want: OK},
		{name: "Other", err: errors.New("bork"), want: Invalid},
		{
			name: "HTTPIncomplete",
			err:  errorOf(httphead.ParseRequest([]byte("GET / HTTP/1.1\r\nHost: x\r\n"))),
			want: Retry,
		},
		{
			name: "HTTPMalformed",
			err:  errorOf(httphead.ParseRequest([]byte("GET / HTTP/2.0\r\n\r\n"))),
			want: Invalid,
		},
		{
			name: "HTTPAmbiguousFraming",
			err:  errorOf(httphead.ParseRequest([]byte("POST / HTTP/1.1\r\nContent-Length: 5\r\nTransfer-Encoding: chunked\r\n\r\n"))),
			want: Invalid,
		},
		{
			name: "DNSMalformed",
			err:  errorOf(dnsmsg.Parse([]byte{0x12, 0x34})),
			want: Invalid,
		},
		{
			name: "DNSBuildEmptyDomain",
			err:  errorOf(dnsmsg.BuildQuery("", dnsmsg.TypeA, 1, true)),
			want: Invalid,
		},
		{
			name: "DNSBuildLongLabel",
			err:  errorOf(dnsmsg.BuildQuery(strings.Repeat("a", 64)+".com", dnsmsg.TypeA, 1, true)),
			want: Invalid,
		},
		{
			name: "MachOMissing",
			err:  errorOf(macho.Inspect(missing)),
			want: Retry,
		},
		{
			name: "MachOBadMagic",
			err:  errorOf(macho.Inspect(notMachO)),
			want: Invalid,
		},
		{
			name: "DERInvalid",
			err:  errorOf(der.ObjectIdentifier(1)),
			want: Invalid,
		},
		{
			name: "DigestMissing",
			err:  errorOf(analyzer.Digest(missing, analyzer.DefaultHashType)),
			want: Retry,
		},
		{
			name: "DigestEmptyPath",
			err:  errorOf(analyzer.Digest("", analyzer.DefaultHashType)),
			want: Invalid,
		},
		{
			name: "AnalyzeKnownFormat",
			err:  errorOf(analyzer.Analyze(gzipFile, nil)),
			want: NotApplicable,
		},
		{
			name: "AnalyzeTooSmall",
			err:  errorOf(analyzer.Analyze(smallFile, nil)),
			want: Retry,
		},
		{
			name: "Wrapped",
			err:  fmt.Errorf("handle connection: %w", httphead.ErrIncomplete),
			want: Retry,
		},
	}

	for _, test := range tests {
		if got := CodeOf(test.err); got != test.want {
			t.Errorf("%s: CodeOf(%v) = %v; want %v", test.name, test.err, got, test.want)
		}
	}
}

func TestCodeString(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{OK, "OK"},
		{Retry, "Retry"},
		{Invalid, "Invalid"},
		{NotApplicable, "NotApplicable"},
		{Code(7), "Code(7)"},
	}
	for _, test := range tests {
		if got := test.code.String(); got != test.want {
			t.Errorf("Code(%d).String() = %q; want %q", int32(test.code), got, test.want)
		}
	}
}
