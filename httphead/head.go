// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

// Package httphead parses HTTP/1.x request and response heads
// from a possibly partial byte buffer.
//
// All byte slices in a parsed [Request] or [Response]
// alias the buffer passed to the parse function.
// They are valid only as long as the caller does not modify or reuse that buffer.
// The parser never writes to the buffer.
package httphead

import (
	"bytes"
	"errors"
	"fmt"
)

// MaxHeaders is the maximum number of header fields accepted in a single head.
const MaxHeaders = 64

// MaxContentLength is the largest Content-Length value accepted.
const MaxContentLength = 100 << 20

var (
	// ErrIncomplete is returned when the buffer does not yet contain
	// the blank line that terminates the head.
	// Parsing may succeed once more bytes are available.
	ErrIncomplete = errors.New("incomplete http head")

	// ErrMalformed is wrapped by every error caused by bytes
	// that violate the head grammar.
	// Retrying with more data will not help.
	ErrMalformed = errors.New("malformed http head")

	// ErrAmbiguousFraming is returned when a message carries both
	// a Content-Length and a chunked Transfer-Encoding.
	// It wraps [ErrMalformed].
	ErrAmbiguousFraming = fmt.Errorf("%w: both content-length and chunked transfer-encoding present", ErrMalformed)
)

// Header is a single header field.
// Name preserves the casing found in the input.
// Value has leading and trailing whitespace removed.
type Header struct {
	Name  []byte
	Value []byte
}

// Request is a parsed HTTP request head.
type Request struct {
	Method []byte
	// Target is the request-target exactly as sent
	// (origin-form, absolute-form, authority-form, or asterisk-form).
	Target []byte
	// VersionMinor is 0 for HTTP/1.0 and 1 for HTTP/1.1.
	VersionMinor uint8
	// Headers is the list of header fields in the order they were received.
	// Duplicates are kept.
	Headers []Header
	// HeaderEnd is the offset in the buffer of the first byte after the head.
	HeaderEnd int
	// ContentLength is the declared body length, or -1 if absent.
	ContentLength int64
	// Chunked reports whether the body uses chunked transfer coding.
	Chunked bool
}

// Response is a parsed HTTP response head.
type Response struct {
	StatusCode int
	// Reason is the reason phrase. It may be empty.
	Reason       []byte
	VersionMinor uint8
	Headers      []Header
	// HeaderEnd is the offset in the buffer of the first byte after the head.
	HeaderEnd     int
	ContentLength int64
	Chunked       bool

	shouldClose bool
}

// ParseRequest parses the request head at the beginning of data.
// If data does not yet contain a complete head,
// ParseRequest returns [ErrIncomplete].
// Any other error wraps [ErrMalformed].
func ParseRequest(data []byte) (*Request, error) {
	// Tolerate empty lines before the request line (RFC 9112 Section 2.2).
	start := 0
	for start < len(data) {
		if data[start] == '\n' {
			start++
		} else if data[start] == '\r' && start+1 < len(data) && data[start+1] == '\n' {
			start += 2
		} else {
			break
		}
	}

	req := &Request{ContentLength: -1}
	p := headParser{data: data, pos: start}
	line, err := p.line()
	if err != nil {
		if perr := checkPartialRequestLine(data[start:]); perr != nil {
			return nil, perr
		}
		return nil, err
	}
	if err := parseRequestLine(req, line); err != nil {
		return nil, err
	}
	if req.Headers, err = p.headers(); err != nil {
		return nil, err
	}
	req.HeaderEnd = p.pos
	if req.ContentLength, req.Chunked, err = framing(req.Headers); err != nil {
		return nil, err
	}
	return req, nil
}

// ParseResponse parses the response head at the beginning of data.
// If data does not yet contain a complete head,
// ParseResponse returns [ErrIncomplete].
// Any other error wraps [ErrMalformed].
func ParseResponse(data []byte) (*Response, error) {
	resp := &Response{ContentLength: -1}
	p := headParser{data: data}
	line, err := p.line()
	if err != nil {
		if perr := checkPartialStatusLine(data); perr != nil {
			return nil, perr
		}
		return nil, err
	}
	if err := parseStatusLine(resp, line); err != nil {
		return nil, err
	}
	if resp.Headers, err = p.headers(); err != nil {
		return nil, err
	}
	resp.HeaderEnd = p.pos
	if resp.ContentLength, resp.Chunked, err = framing(resp.Headers); err != nil {
		return nil, err
	}
	resp.shouldClose = connectionClose(resp.Headers, resp.VersionMinor)
	return resp, nil
}

// HasBody reports whether the status code permits a message body.
// Responses with 1xx, 204, or 304 status codes never have a body.
func (resp *Response) HasBody() bool {
	return resp.StatusCode >= 200 && resp.StatusCode != 204 && resp.StatusCode != 304
}

// HasFraming reports whether the head declares the body length,
// either with Content-Length or with chunked transfer coding.
func (resp *Response) HasFraming() bool {
	return resp.ContentLength >= 0 || resp.Chunked
}

// ShouldClose reports whether the connection should be closed
// after the response.
// An explicit "close" connection option always wins,
// an explicit "keep-alive" keeps the connection open,
// and otherwise HTTP/1.0 closes while HTTP/1.1 persists.
func (resp *Response) ShouldClose() bool {
	return resp.shouldClose
}

// Header returns the value of the last header field named name
// (compared case-insensitively)
// or nil if there is none.
func (req *Request) Header(name string) []byte {
	return lastValue(req.Headers, name)
}

// Values returns the values of all header fields named name
// (compared case-insensitively)
// in the order they were received.
func (req *Request) Values(name string) [][]byte {
	return allValues(req.Headers, name)
}

// Header returns the value of the last header field named name
// (compared case-insensitively)
// or nil if there is none.
func (resp *Response) Header(name string) []byte {
	return lastValue(resp.Headers, name)
}

// Values returns the values of all header fields named name
// (compared case-insensitively)
// in the order they were received.
func (resp *Response) Values(name string) [][]byte {
	return allValues(resp.Headers, name)
}

func lastValue(headers []Header, name string) []byte {
	for i := len(headers) - 1; i >= 0; i-- {
		if equalFold(headers[i].Name, name) {
			return headers[i].Value
		}
	}
	return nil
}

func allValues(headers []Header, name string) [][]byte {
	var values [][]byte
	for _, h := range headers {
		if equalFold(h.Name, name) {
			values = append(values, h.Value)
		}
	}
	return values
}

func equalFold(b []byte, s string) bool {
	return len(b) == len(s) && bytes.EqualFold(b, []byte(s))
}

// headParser splits a head into lines.
type headParser struct {
	data []byte
	pos  int
}

// line returns the next complete line without its terminator
// (either CRLF or a bare LF).
// It returns [ErrIncomplete] if no line terminator follows pos.
func (p *headParser) line() ([]byte, error) {
	i := bytes.IndexByte(p.data[p.pos:], '\n')
	if i < 0 {
		return nil, ErrIncomplete
	}
	line := p.data[p.pos : p.pos+i]
	p.pos += i + 1
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, nil
}

// headers reads header lines up to and including the terminating blank line.
func (p *headParser) headers() ([]Header, error) {
	var headers []Header
	for {
		line, err := p.line()
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			return headers, nil
		}
		if len(headers) >= MaxHeaders {
			return nil, fmt.Errorf("%w: more than %d header fields", ErrMalformed, MaxHeaders)
		}
		h, err := parseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
}
