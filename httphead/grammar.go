// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package httphead

import (
	"bytes"
	"fmt"
	"strconv"

	gobwas "github.com/gobwas/httphead"
)

func parseRequestLine(req *Request, line []byte) error {
	rl, ok := gobwas.ParseRequestLine(line)
	if !ok {
		return fmt.Errorf("%w: invalid request line %q", ErrMalformed, truncate(line))
	}
	for _, c := range rl.URI {
		if c <= ' ' || c == 0x7f {
			return fmt.Errorf("%w: invalid byte %#02x in request target", ErrMalformed, c)
		}
	}
	minor, err := versionMinor(line[bytes.LastIndexByte(line, ' ')+1:])
	if err != nil {
		return err
	}
	req.Method = rl.Method
	req.Target = rl.URI
	req.VersionMinor = minor
	return nil
}

// parseStatusLine parses "HTTP/1.x SP 3DIGIT [SP reason]".
// The reason phrase is optional (including its leading space).
func parseStatusLine(resp *Response, line []byte) error {
	proto, rest, _ := bytes.Cut(line, []byte{' '})
	status, reason, _ := bytes.Cut(rest, []byte{' '})
	versionMinor, err := versionMinor(proto)
	if err != nil {
		return err
	}
	if len(status) != 3 {
		return fmt.Errorf("%w: invalid status code %q", ErrMalformed, truncate(status))
	}
	code, ok := gobwas.IntFromASCII(status)
	if !ok || !isDigits(status) || code < 100 {
		return fmt.Errorf("%w: invalid status code %q", ErrMalformed, status)
	}
	for _, c := range reason {
		if !isFieldByte(c) {
			return fmt.Errorf("%w: invalid byte %#02x in reason phrase", ErrMalformed, c)
		}
	}
	resp.StatusCode = code
	resp.Reason = reason
	resp.VersionMinor = versionMinor
	return nil
}

// versionMinor parses an HTTP-version token,
// which must be exactly "HTTP/1.0" or "HTTP/1.1".
func versionMinor(proto []byte) (uint8, error) {
	major, minor, ok := gobwas.ParseVersion(proto)
	if !ok || len(proto) != len("HTTP/1.1") {
		return 0, fmt.Errorf("%w: invalid protocol version %q", ErrMalformed, truncate(proto))
	}
	if major != 1 || (minor != 0 && minor != 1) {
		return 0, fmt.Errorf("%w: unsupported protocol version HTTP/%d.%d", ErrMalformed, major, minor)
	}
	return uint8(minor), nil
}

func parseHeaderLine(line []byte) (Header, error) {
	if line[0] == ' ' || line[0] == '\t' {
		return Header{}, fmt.Errorf("%w: obsolete line folding", ErrMalformed)
	}
	colon := bytes.IndexByte(line, ':')
	if colon <= 0 {
		return Header{}, fmt.Errorf("%w: header line %q without name and colon", ErrMalformed, truncate(line))
	}
	if c := line[colon-1]; c == ' ' || c == '\t' {
		return Header{}, fmt.Errorf("%w: whitespace between header name and colon", ErrMalformed)
	}
	name, value, ok := gobwas.ParseHeaderLine(line)
	if !ok || len(name) == 0 {
		return Header{}, fmt.Errorf("%w: invalid header name %q", ErrMalformed, truncate(line[:colon]))
	}
	for _, c := range value {
		if !isFieldByte(c) {
			return Header{}, fmt.Errorf("%w: invalid byte %#02x in value of %s", ErrMalformed, c, name)
		}
	}
	return Header{Name: name, Value: value}, nil
}

// isDigits reports whether b consists only of ASCII decimal digits.
// IntFromASCII alone also accepts the bytes between '9' and '?'.
func isDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// isFieldByte reports whether c may appear in a field value or reason phrase:
// HTAB, SP, VCHAR, or obs-text.
func isFieldByte(c byte) bool {
	return c == '\t' || (c >= ' ' && c != 0x7f)
}

// framing derives the body framing from the header fields.
func framing(headers []Header) (contentLength int64, chunked bool, err error) {
	contentLength = -1
	for _, h := range headers {
		switch {
		case equalFold(h.Name, "Content-Length"):
			n, err := parseContentLength(h.Value)
			if err != nil {
				return -1, false, err
			}
			if contentLength >= 0 && n != contentLength {
				return -1, false, fmt.Errorf("%w: conflicting content-length values %d and %d", ErrMalformed, contentLength, n)
			}
			contentLength = n
		case equalFold(h.Name, "Transfer-Encoding"):
			hasChunked, ok := transferCodingsChunked(h.Value)
			if !ok {
				return -1, false, fmt.Errorf("%w: invalid transfer-encoding %q", ErrMalformed, truncate(h.Value))
			}
			chunked = chunked || hasChunked
		}
	}
	if chunked && contentLength >= 0 {
		return -1, false, ErrAmbiguousFraming
	}
	return contentLength, chunked, nil
}

func parseContentLength(value []byte) (int64, error) {
	if len(value) == 0 || len(value) > len(strconv.Itoa(MaxContentLength)) {
		return -1, fmt.Errorf("%w: invalid content-length %q", ErrMalformed, truncate(value))
	}
	n, ok := gobwas.IntFromASCII(value)
	if !ok || !isDigits(value) {
		return -1, fmt.Errorf("%w: invalid content-length %q", ErrMalformed, value)
	}
	if n > MaxContentLength {
		return -1, fmt.Errorf("%w: content-length %d exceeds %d", ErrMalformed, n, MaxContentLength)
	}
	return int64(n), nil
}

// transferCodingsChunked reports whether the transfer-coding list
// contains "chunked".
// ok is false if the list is not syntactically valid.
func transferCodingsChunked(value []byte) (chunked bool, ok bool) {
	ok = gobwas.ScanOptions(value, func(_ int, option, _, _ []byte) gobwas.Control {
		if equalFold(option, "chunked") {
			chunked = true
		}
		return gobwas.ControlContinue
	})
	return chunked, ok
}

func connectionClose(headers []Header, versionMinor uint8) bool {
	keepAlive := false
	for _, h := range headers {
		if !equalFold(h.Name, "Connection") {
			continue
		}
		closeFound := false
		gobwas.ScanTokens(h.Value, func(tok []byte) bool {
			switch {
			case equalFold(tok, "close"):
				closeFound = true
				return false
			case equalFold(tok, "keep-alive"):
				keepAlive = true
			}
			return true
		})
		if closeFound {
			return true
		}
	}
	if keepAlive {
		return false
	}
	return versionMinor == 0
}

func truncate(b []byte) []byte {
	const max = 64
	if len(b) > max {
		return b[:max]
	}
	return b
}

// checkPartialRequestLine rejects an unterminated request line
// whose method is already invalid.
func checkPartialRequestLine(partial []byte) error {
	for i, c := range partial {
		if c == ' ' && i > 0 {
			return nil
		}
		if c == '\r' && len(partial) == 1 {
			// Possibly the start of a leading empty line.
			return nil
		}
		if !gobwas.OctetTypes[c].IsToken() {
			return fmt.Errorf("%w: invalid byte %#02x in method", ErrMalformed, c)
		}
	}
	return nil
}

// checkPartialStatusLine rejects an unterminated status line
// that cannot start with the HTTP protocol name.
func checkPartialStatusLine(partial []byte) error {
	const prefix = "HTTP/"
	n := min(len(partial), len(prefix))
	if string(partial[:n]) != prefix[:n] {
		return fmt.Errorf("%w: status line does not start with %s", ErrMalformed, prefix)
	}
	return nil
}
