// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

// Package iris classifies the errors returned by the Iris parsers
// into the integer outcome codes used at the C boundary.
//
// The parsers themselves live in subpackages:
// [github.com/irisproxy/iris/httphead] for HTTP/1.x message heads,
// [github.com/irisproxy/iris/dnsmsg] for DNS wire messages,
// [github.com/irisproxy/iris/macho] for Mach-O linkage metadata,
// [github.com/irisproxy/iris/der] for DER encoding,
// and [github.com/irisproxy/iris/analyzer] for file digests and entropy.
package iris

import (
	"errors"
	"io/fs"
	"strconv"

	"github.com/irisproxy/iris/analyzer"
	"github.com/irisproxy/iris/dnsmsg"
	"github.com/irisproxy/iris/httphead"
)

// Code is the outcome of an operation.
type Code int32

// Outcome codes.
const (
	// OK indicates success.
	OK Code = 0
	// Retry indicates incomplete input or a transient I/O condition.
	// The caller may try again later or with more data.
	Retry Code = -1
	// Invalid indicates malformed input or an invalid argument.
	// Retrying with the same input will fail the same way.
	Invalid Code = -2
	// NotApplicable indicates that analysis was skipped
	// because the input is in a known format.
	NotApplicable Code = -3
)

// CodeOf returns the outcome code for an error returned by an Iris package.
// A nil error is [OK].
// Errors that are not otherwise recognized are [Invalid].
func CodeOf(err error) Code {
	var pathError *fs.PathError
	switch {
	case err == nil:
		return OK
	case errors.Is(err, analyzer.ErrKnownFormat):
		return NotApplicable
	case errors.Is(err, analyzer.ErrEmptyPath),
		errors.Is(err, dnsmsg.ErrInvalidName):
		return Invalid
	case errors.Is(err, httphead.ErrIncomplete),
		errors.Is(err, analyzer.ErrTooSmall),
		errors.As(err, &pathError):
		return Retry
	default:
		return Invalid
	}
}

// String returns the name of the code's constant.
func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case Retry:
		return "Retry"
	case Invalid:
		return "Invalid"
	case NotApplicable:
		return "NotApplicable"
	default:
		return "Code(" + strconv.Itoa(int(c)) + ")"
	}
}
