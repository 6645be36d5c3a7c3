// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package httphead

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name string
		data string
		want *Request
	}{
		{
			name: "SimpleGet",
			data: "GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n",
			want: &Request{
				Method:       []byte("GET"),
				Target:       []byte("/index.html"),
				VersionMinor: 1,
				Headers: []Header{
					{Name: []byte("Host"), Value: []byte("example.com")},
				},
				HeaderEnd:     len("GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n"),
				ContentLength: -1,
			},
		},
		{
			name: "PostWithContentLength",
			data: "POST /api HTTP/1.1\r\nHost: example.com\r\nContent-Length: 13\r\n\r\n{\"key\":\"val\"}",
			want: &Request{
				Method:       []byte("POST"),
				Target:       []byte("/api"),
				VersionMinor: 1,
				Headers: []Header{
					{Name: []byte("Host"), Value: []byte("example.com")},
					{Name: []byte("Content-Length"), Value: []byte("13")},
				},
				HeaderEnd:     len("POST /api HTTP/1.1\r\nHost: example.com\r\nContent-Length: 13\r\n\r\n"),
				ContentLength: 13,
			},
		},
		{
			name: "Chunked",
			data: "POST /upload HTTP/1.1\r\nTransfer-Encoding: gzip, chunked\r\n\r\n",
			want: &Request{
				Method:       []byte("POST"),
				Target:       []byte("/upload"),
				VersionMinor: 1,
				Headers: []Header{
					{Name: []byte("Transfer-Encoding"), Value: []byte("gzip, chunked")},
				},
				HeaderEnd:     len("POST /upload HTTP/1.1\r\nTransfer-Encoding: gzip, chunked\r\n\r\n"),
				ContentLength: -1,
				Chunked:       true,
			},
		},
		{
			name: "Connect",
			data: "CONNECT example.com:443 HTTP/1.1\r\nHost: example.com:443\r\n\r\n",
			want: &Request{
				Method:       []byte("CONNECT"),
				Target:       []byte("example.com:443"),
				VersionMinor: 1,
				Headers: []Header{
					{Name: []byte("Host"), Value: []byte("example.com:443")},
				},
				HeaderEnd:     len("CONNECT example.com:443 HTTP/1.1\r\nHost: example.com:443\r\n\r\n"),
				ContentLength: -1,
			},
		},
		{
			name: "QueryAndHTTP10",
			data: "GET /search?q=iris&page=2 HTTP/1.0\r\n\r\n",
			want: &Request{
				Method:        []byte("GET"),
				Target:        []byte("/search?q=iris&page=2"),
				VersionMinor:  0,
				HeaderEnd:     len("GET /search?q=iris&page=2 HTTP/1.0\r\n\r\n"),
				ContentLength: -1,
			},
		},
		{
			name: "LeadingEmptyLinesAndBareLF",
			data: "\r\n\nGET / HTTP/1.1\nAccept:  */*  \n\n",
			want: &Request{
				Method:       []byte("GET"),
				Target:       []byte("/"),
				VersionMinor: 1,
				Headers: []Header{
					{Name: []byte("Accept"), Value: []byte("*/*")},
				},
				HeaderEnd:     len("\r\n\nGET / HTTP/1.1\nAccept:  */*  \n\n"),
				ContentLength: -1,
			},
		},
		{
			name: "RepeatedIdenticalContentLength",
			data: "PUT /x HTTP/1.1\r\nContent-Length: 5\r\nContent-Length: 5\r\n\r\n",
			want: &Request{
				Method:       []byte("PUT"),
				Target:       []byte("/x"),
				VersionMinor: 1,
				Headers: []Header{
					{Name: []byte("Content-Length"), Value: []byte("5")},
					{Name: []byte("Content-Length"), Value: []byte("5")},
				},
				HeaderEnd:     len("PUT /x HTTP/1.1\r\nContent-Length: 5\r\nContent-Length: 5\r\n\r\n"),
				ContentLength: 5,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseRequest([]byte(test.data))
			if err != nil {
				t.Fatal("ParseRequest:", err)
			}
			if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("request (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRequestErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "Empty", data: "", want: ErrIncomplete},
		{name: "NoBlankLine", data: "GET / HTTP/1.1\r\nHost: a\r\n", want: ErrIncomplete},
		{name: "PartialRequestLine", data: "GET /ind", want: ErrIncomplete},
		{name: "BadMethodByte", data: "G(T / HTTP/1.1", want: ErrMalformed},
		{name: "MissingVersion", data: "GET /\r\n\r\n", want: ErrMalformed},
		{name: "HTTP2", data: "GET / HTTP/2.0\r\n\r\n", want: ErrMalformed},
		{name: "LeadingZeroMinor", data: "GET / HTTP/1.01\r\n\r\n", want: ErrMalformed},
		{name: "LeadingZeroMajor", data: "GET / HTTP/01.1\r\n\r\n", want: ErrMalformed},
		{name: "SpaceInTarget", data: "GET /a b HTTP/1.1\r\n\r\n", want: ErrMalformed},
		{name: "HeaderWithoutColon", data: "GET / HTTP/1.1\r\nHost\r\n\r\n", want: ErrMalformed},
		{name: "SpaceBeforeColon", data: "GET / HTTP/1.1\r\nHost : a\r\n\r\n", want: ErrMalformed},
		{name: "FoldedHeader", data: "GET / HTTP/1.1\r\nX-A: b\r\n c\r\n\r\n", want: ErrMalformed},
		{name: "ControlInValue", data: "GET / HTTP/1.1\r\nX-A: b\x00c\r\n\r\n", want: ErrMalformed},
		{
			name: "ConflictingContentLength",
			data: "POST / HTTP/1.1\r\nContent-Length: 10\r\nContent-Length: 20\r\n\r\n",
			want: ErrMalformed,
		},
		{
			name: "ContentLengthTooLarge",
			data: "POST / HTTP/1.1\r\nContent-Length: 104857601\r\n\r\n",
			want: ErrMalformed,
		},
		{
			name: "ContentLengthNotDecimal",
			data: "POST / HTTP/1.1\r\nContent-Length: +12\r\n\r\n",
			want: ErrMalformed,
		},
		{
			name: "ContentLengthAndChunked",
			data: "POST / HTTP/1.1\r\nContent-Length: 10\r\nTransfer-Encoding: chunked\r\n\r\n",
			want: ErrAmbiguousFraming,
		},
		{
			name: "TooManyHeaders",
			data: "GET / HTTP/1.1\r\n" + strings.Repeat("X-A: b\r\n", MaxHeaders+1) + "\r\n",
			want: ErrMalformed,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseRequest([]byte(test.data))
			if !errors.Is(err, test.want) {
				t.Errorf("ParseRequest(%q) = %+v, %v; want error %v", test.data, got, err, test.want)
			}
		})
	}
}

func TestParseRequestMaxHeaders(t *testing.T) {
	data := "GET / HTTP/1.1\r\n" + strings.Repeat("X-A: b\r\n", MaxHeaders) + "\r\n"
	got, err := ParseRequest([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Headers) != MaxHeaders {
		t.Errorf("len(Headers) = %d; want %d", len(got.Headers), MaxHeaders)
	}
}

func TestRequestHeaderLookup(t *testing.T) {
	data := "GET / HTTP/1.1\r\nAccept: text/html\r\nX-Trace: 1\r\naccept: */*\r\n\r\n"
	req, err := ParseRequest([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(req.Header("ACCEPT")), "*/*"; got != want {
		t.Errorf("Header(%q) = %q; want %q", "ACCEPT", got, want)
	}
	if got := req.Header("Cookie"); got != nil {
		t.Errorf("Header(%q) = %q; want nil", "Cookie", got)
	}
	want := [][]byte{[]byte("text/html"), []byte("*/*")}
	if diff := cmp.Diff(want, req.Values("Accept")); diff != "" {
		t.Errorf("Values(%q) (-want +got):\n%s", "Accept", diff)
	}
}

func TestParseRequestBorrowsBuffer(t *testing.T) {
	data := []byte("GET /path HTTP/1.1\r\nHost: example.com\r\n\r\nBODY")
	req, err := ParseRequest(data)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data[req.HeaderEnd:]), "BODY"; got != want {
		t.Errorf("data[HeaderEnd:] = %q; want %q", got, want)
	}
	data[5] = 'P'
	if got, want := string(req.Target), "/Path"; got != want {
		t.Errorf("after modifying buffer, Target = %q; want %q", got, want)
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		want        *Response
		hasBody     bool
		hasFraming  bool
		shouldClose bool
	}{
		{
			name: "OK",
			data: "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nContent-Length: 1234\r\n\r\n",
			want: &Response{
				StatusCode:   200,
				Reason:       []byte("OK"),
				VersionMinor: 1,
				Headers: []Header{
					{Name: []byte("Content-Type"), Value: []byte("text/html")},
					{Name: []byte("Content-Length"), Value: []byte("1234")},
				},
				HeaderEnd:     len("HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nContent-Length: 1234\r\n\r\n"),
				ContentLength: 1234,
			},
			hasBody:    true,
			hasFraming: true,
		},
		{
			name: "NotFound",
			data: "HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n",
			want: &Response{
				StatusCode:   404,
				Reason:       []byte("Not Found"),
				VersionMinor: 1,
				Headers: []Header{
					{Name: []byte("Content-Length"), Value: []byte("0")},
				},
				HeaderEnd:     len("HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"),
				ContentLength: 0,
			},
			hasBody:    true,
			hasFraming: true,
		},
		{
			name: "NoContentWithoutReason",
			data: "HTTP/1.1 204\r\n\r\n",
			want: &Response{
				StatusCode:    204,
				VersionMinor:  1,
				HeaderEnd:     len("HTTP/1.1 204\r\n\r\n"),
				ContentLength: -1,
			},
		},
		{
			name: "NotModified",
			data: "HTTP/1.1 304 Not Modified\r\nETag: \"abc\"\r\n\r\n",
			want: &Response{
				StatusCode:   304,
				Reason:       []byte("Not Modified"),
				VersionMinor: 1,
				Headers: []Header{
					{Name: []byte("ETag"), Value: []byte(`"abc"`)},
				},
				HeaderEnd:     len("HTTP/1.1 304 Not Modified\r\nETag: \"abc\"\r\n\r\n"),
				ContentLength: -1,
			},
		},
		{
			name: "Continue",
			data: "HTTP/1.1 100 Continue\r\n\r\n",
			want: &Response{
				StatusCode:    100,
				Reason:        []byte("Continue"),
				VersionMinor:  1,
				HeaderEnd:     len("HTTP/1.1 100 Continue\r\n\r\n"),
				ContentLength: -1,
			},
		},
		{
			name: "ConnectionClose",
			data: "HTTP/1.1 200 OK\r\nConnection: close\r\n\r\n",
			want: &Response{
				StatusCode:   200,
				Reason:       []byte("OK"),
				VersionMinor: 1,
				Headers: []Header{
					{Name: []byte("Connection"), Value: []byte("close")},
				},
				HeaderEnd:     len("HTTP/1.1 200 OK\r\nConnection: close\r\n\r\n"),
				ContentLength: -1,
				shouldClose:   true,
			},
			hasBody:     true,
			shouldClose: true,
		},
		{
			name: "HTTP10DefaultClose",
			data: "HTTP/1.0 200 OK\r\n\r\n",
			want: &Response{
				StatusCode:    200,
				Reason:        []byte("OK"),
				VersionMinor:  0,
				HeaderEnd:     len("HTTP/1.0 200 OK\r\n\r\n"),
				ContentLength: -1,
				shouldClose:   true,
			},
			hasBody:     true,
			shouldClose: true,
		},
		{
			name: "HTTP10KeepAlive",
			data: "HTTP/1.0 200 OK\r\nConnection: Keep-Alive\r\n\r\n",
			want: &Response{
				StatusCode:   200,
				Reason:       []byte("OK"),
				VersionMinor: 0,
				Headers: []Header{
					{Name: []byte("Connection"), Value: []byte("Keep-Alive")},
				},
				HeaderEnd:     len("HTTP/1.0 200 OK\r\nConnection: Keep-Alive\r\n\r\n"),
				ContentLength: -1,
			},
			hasBody: true,
		},
		{
			name: "CloseWinsOverKeepAlive",
			data: "HTTP/1.1 200 OK\r\nConnection: keep-alive, close\r\n\r\n",
			want: &Response{
				StatusCode:   200,
				Reason:       []byte("OK"),
				VersionMinor: 1,
				Headers: []Header{
					{Name: []byte("Connection"), Value: []byte("keep-alive, close")},
				},
				HeaderEnd:     len("HTTP/1.1 200 OK\r\nConnection: keep-alive, close\r\n\r\n"),
				ContentLength: -1,
				shouldClose:   true,
			},
			hasBody:     true,
			shouldClose: true,
		},
		{
			name: "ChunkedRedirect",
			data: "HTTP/1.1 301 Moved Permanently\r\nLocation: https://example.com/\r\nTransfer-Encoding: chunked\r\n\r\n",
			want: &Response{
				StatusCode:   301,
				Reason:       []byte("Moved Permanently"),
				VersionMinor: 1,
				Headers: []Header{
					{Name: []byte("Location"), Value: []byte("https://example.com/")},
					{Name: []byte("Transfer-Encoding"), Value: []byte("chunked")},
				},
				HeaderEnd:     len("HTTP/1.1 301 Moved Permanently\r\nLocation: https://example.com/\r\nTransfer-Encoding: chunked\r\n\r\n"),
				ContentLength: -1,
				Chunked:       true,
			},
			hasBody:    true,
			hasFraming: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseResponse([]byte(test.data))
			if err != nil {
				t.Fatal("ParseResponse:", err)
			}
			if diff := cmp.Diff(test.want, got, cmp.AllowUnexported(Response{}), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("response (-want +got):\n%s", diff)
			}
			if got := got.HasBody(); got != test.hasBody {
				t.Errorf("HasBody() = %t; want %t", got, test.hasBody)
			}
			if got := got.HasFraming(); got != test.hasFraming {
				t.Errorf("HasFraming() = %t; want %t", got, test.hasFraming)
			}
			if got := got.ShouldClose(); got != test.shouldClose {
				t.Errorf("ShouldClose() = %t; want %t", got, test.shouldClose)
			}
		})
	}
}

func TestParseResponseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "Empty", data: "", want: ErrIncomplete},
		{name: "PartialProtocol", data: "HTT", want: ErrIncomplete},
		{name: "NoBlankLine", data: "HTTP/1.1 200 OK\r\n", want: ErrIncomplete},
		{name: "NotHTTP", data: "SSH-2.0-OpenSSH", want: ErrMalformed},
		{name: "ShortStatus", data: "HTTP/1.1 20 OK\r\n\r\n", want: ErrMalformed},
		{name: "LetterStatus", data: "HTTP/1.1 2x0 OK\r\n\r\n", want: ErrMalformed},
		{name: "StatusBelow100", data: "HTTP/1.1 099 Odd\r\n\r\n", want: ErrMalformed},
		{name: "UnknownVersion", data: "HTTP/1.2 200 OK\r\n\r\n", want: ErrMalformed},
		{name: "LeadingZeroMinor", data: "HTTP/1.01 200 OK\r\n\r\n", want: ErrMalformed},
		{name: "LeadingZeroMajor", data: "HTTP/01.1 200 OK\r\n\r\n", want: ErrMalformed},
		{
			name: "ContentLengthAndChunked",
			data: "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\nContent-Length: 3\r\n\r\n",
			want: ErrAmbiguousFraming,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseResponse([]byte(test.data))
			if !errors.Is(err, test.want) {
				t.Errorf("ParseResponse(%q) = %+v, %v; want error %v", test.data, got, err, test.want)
			}
		})
	}
}

func TestResponseDuplicateHeaders(t *testing.T) {
	data := "HTTP/1.1 200 OK\r\nSet-Cookie: a=1\r\nSet-Cookie: b=2\r\nContent-Length: 0\r\n\r\n"
	resp, err := ParseResponse([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	want := [][]byte{[]byte("a=1"), []byte("b=2")}
	if diff := cmp.Diff(want, resp.Values("set-cookie")); diff != "" {
		t.Errorf("Values(%q) (-want +got):\n%s", "set-cookie", diff)
	}
	if got, want := string(resp.Header("Set-Cookie")), "b=2"; got != want {
		t.Errorf("Header(%q) = %q; want %q", "Set-Cookie", got, want)
	}
}

var validHeads = []string{
	"GET /index.html HTTP/1.1\r\nHost: example.com\r\nAccept: */*\r\n\r\n",
	"POST /api HTTP/1.1\r\nContent-Length: 2\r\n\r\n{}",
	"HTTP/1.1 200 OK\r\nContent-Length: 3\r\nConnection: close\r\n\r\n",
	"HTTP/1.1 204\r\n\r\n",
}

// TestStrictPrefixIncomplete checks that every strict prefix
// of a valid head is reported as incomplete rather than malformed.
func TestStrictPrefixIncomplete(t *testing.T) {
	for _, head := range validHeads {
		parse := func(b []byte) error {
			_, err := ParseRequest(b)
			return err
		}
		if strings.HasPrefix(head, "HTTP/") {
			parse = func(b []byte) error {
				_, err := ParseResponse(b)
				return err
			}
		}
		full := []byte(head)
		if err := parse(full); err != nil {
			t.Fatalf("parse(%q): %v", head, err)
		}
		end := strings.Index(head, "\r\n\r\n") + 4
		for i := range end {
			if err := parse(full[:i]); !errors.Is(err, ErrIncomplete) {
				t.Errorf("parse(%q) = %v; want %v", full[:i], err, ErrIncomplete)
			}
		}
	}
}

func FuzzParseRequest(f *testing.F) {
	for _, head := range validHeads {
		f.Add([]byte(head))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		req, err := ParseRequest(data)
		if err != nil {
			if !errors.Is(err, ErrIncomplete) && !errors.Is(err, ErrMalformed) {
				t.Errorf("ParseRequest returned unclassified error: %v", err)
			}
			return
		}
		if req.HeaderEnd <= 0 || req.HeaderEnd > len(data) {
			t.Errorf("HeaderEnd = %d; want in (0, %d]", req.HeaderEnd, len(data))
		}
		if len(req.Headers) > MaxHeaders {
			t.Errorf("len(Headers) = %d; want <= %d", len(req.Headers), MaxHeaders)
		}
		if req.Chunked && req.ContentLength >= 0 {
			t.Errorf("Chunked = true with ContentLength = %d", req.ContentLength)
		}
		if req.ContentLength > MaxContentLength {
			t.Errorf("ContentLength = %d; want <= %d", req.ContentLength, MaxContentLength)
		}
	})
}

func FuzzParseResponse(f *testing.F) {
	for _, head := range validHeads {
		f.Add([]byte(head))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		resp, err := ParseResponse(data)
		if err != nil {
			if !errors.Is(err, ErrIncomplete) && !errors.Is(err, ErrMalformed) {
				t.Errorf("ParseResponse returned unclassified error: %v", err)
			}
			return
		}
		if resp.StatusCode < 100 || resp.StatusCode > 999 {
			t.Errorf("StatusCode = %d", resp.StatusCode)
		}
		if resp.HeaderEnd <= 0 || resp.HeaderEnd > len(data) {
			t.Errorf("HeaderEnd = %d; want in (0, %d]", resp.HeaderEnd, len(data))
		}
	})
}
