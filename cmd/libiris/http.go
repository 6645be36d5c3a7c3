// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"unsafe"

	"github.com/irisproxy/iris/httphead"
)

// #include <stdlib.h>
// #include "iris_types.h"
import "C"

//export iris_http_parse_request
func iris_http_parse_request(data *C.uint8_t, length C.size_t, out *C.IrisHttpRequest) (code C.int32_t) {
	defer recoverCode(&code)
	if out == nil || (data == nil && length > 0) {
		return codeInvalid
	}
	req, err := httphead.ParseRequest(goBytes(data, length))
	if err != nil {
		return codeOf(err)
	}
	headers := cHeaders(req.Headers)
	*out = C.IrisHttpRequest{
		method:           borrow(req.Method),
		path:             borrow(req.Target),
		version_minor:    C.uint8_t(req.VersionMinor),
		header_end_index: C.size_t(req.HeaderEnd),
		content_length:   C.int64_t(req.ContentLength),
		is_chunked:       C.bool(req.Chunked),
		headers:          cArrayPtr(headers),
		headers_count:    C.size_t(len(headers)),
	}
	return codeOK
}

//export iris_http_parse_response
func iris_http_parse_response(data *C.uint8_t, length C.size_t, out *C.IrisHttpResponse) (code C.int32_t) {
	defer recoverCode(&code)
	if out == nil || (data == nil && length > 0) {
		return codeInvalid
	}
	resp, err := httphead.ParseResponse(goBytes(data, length))
	if err != nil {
		return codeOf(err)
	}
	headers := cHeaders(resp.Headers)
	*out = C.IrisHttpResponse{
		status_code:      C.uint16_t(resp.StatusCode),
		reason:           borrow(resp.Reason),
		version_minor:    C.uint8_t(resp.VersionMinor),
		header_end_index: C.size_t(resp.HeaderEnd),
		content_length:   C.int64_t(resp.ContentLength),
		is_chunked:       C.bool(resp.Chunked),
		has_body:         C.bool(resp.HasBody()),
		has_framing:      C.bool(resp.HasFraming()),
		should_close:     C.bool(resp.ShouldClose()),
		headers:          cArrayPtr(headers),
		headers_count:    C.size_t(len(headers)),
	}
	return codeOK
}

// cHeaders returns a malloc-ed array of views into the parsed buffer.
func cHeaders(headers []httphead.Header) []C.IrisHttpHeader {
	arr := cArray[C.IrisHttpHeader](len(headers))
	for i, h := range headers {
		arr[i] = C.IrisHttpHeader{
			name:  borrow(h.Name),
			value: borrow(h.Value),
		}
	}
	return arr
}

//export iris_http_free_request
func iris_http_free_request(req *C.IrisHttpRequest) {
	defer recoverFree()
	if req == nil {
		return
	}
	C.free(unsafe.Pointer(req.headers))
	*req = C.IrisHttpRequest{}
}

//export iris_http_free_response
func iris_http_free_response(resp *C.IrisHttpResponse) {
	defer recoverFree()
	if resp == nil {
		return
	}
	C.free(unsafe.Pointer(resp.headers))
	*resp = C.IrisHttpResponse{}
}
