// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"unsafe"

	"github.com/irisproxy/iris/der"
)

// #include "iris_types.h"
import "C"

// derResult stores the encoding in the output parameters.
func derResult(b []byte, err error, out **C.uint8_t, outLen *C.size_t) C.int32_t {
	if out == nil || outLen == nil {
		return codeInvalid
	}
	if err != nil {
		return codeOf(err)
	}
	*out, *outLen = cBytes(b)
	return codeOK
}

func derInput(data *C.uint8_t, length C.size_t) ([]byte, bool) {
	if data == nil && length > 0 {
		return nil, false
	}
	return goBytes(data, length), true
}

//export iris_der_build_integer_i64
func iris_der_build_integer_i64(value C.int64_t, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	return derResult(der.Integer(int64(value)), nil, out, outLen)
}

//export iris_der_build_integer_bytes
func iris_der_build_integer_bytes(data *C.uint8_t, length C.size_t, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	magnitude, ok := derInput(data, length)
	if !ok {
		return codeInvalid
	}
	b, err := der.IntegerBytes(magnitude)
	return derResult(b, err, out, outLen)
}

//export iris_der_build_sequence
func iris_der_build_sequence(content *C.uint8_t, length C.size_t, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	children, ok := derInput(content, length)
	if !ok {
		return codeInvalid
	}
	return derResult(der.Sequence(children), nil, out, outLen)
}

//export iris_der_build_set
func iris_der_build_set(content *C.uint8_t, length C.size_t, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	children, ok := derInput(content, length)
	if !ok {
		return codeInvalid
	}
	return derResult(der.Set(children), nil, out, outLen)
}

//export iris_der_build_bit_string
func iris_der_build_bit_string(data *C.uint8_t, length C.size_t, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	b, ok := derInput(data, length)
	if !ok {
		return codeInvalid
	}
	return derResult(der.BitString(b), nil, out, outLen)
}

//export iris_der_build_octet_string
func iris_der_build_octet_string(data *C.uint8_t, length C.size_t, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	b, ok := derInput(data, length)
	if !ok {
		return codeInvalid
	}
	return derResult(der.OctetString(b), nil, out, outLen)
}

//export iris_der_build_boolean
func iris_der_build_boolean(value C.bool, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	return derResult(der.Boolean(bool(value)), nil, out, outLen)
}

//export iris_der_build_null
func iris_der_build_null(out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	return derResult(der.Null(), nil, out, outLen)
}

//export iris_der_build_oid
func iris_der_build_oid(components *C.uint32_t, count C.size_t, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	if components == nil && count > 0 {
		return codeInvalid
	}
	var arcs []uint32
	if count > 0 {
		arcs = unsafe.Slice((*uint32)(unsafe.Pointer(components)), int(count))
	}
	b, err := der.ObjectIdentifier(arcs...)
	return derResult(b, err, out, outLen)
}

//export iris_der_build_utf8_string
func iris_der_build_utf8_string(str *C.char, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	s, ok := goString(str)
	if !ok {
		return codeInvalid
	}
	b, err := der.UTF8String(s)
	return derResult(b, err, out, outLen)
}

//export iris_der_build_printable_string
func iris_der_build_printable_string(str *C.char, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	s, ok := goString(str)
	if !ok {
		return codeInvalid
	}
	b, err := der.PrintableString(s)
	return derResult(b, err, out, outLen)
}

//export iris_der_build_explicit_tag
func iris_der_build_explicit_tag(tag C.uint8_t, content *C.uint8_t, length C.size_t, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	inner, ok := derInput(content, length)
	if !ok {
		return codeInvalid
	}
	b, err := der.Explicit(uint8(tag), inner)
	return derResult(b, err, out, outLen)
}

//export iris_der_build_implicit_tag
func iris_der_build_implicit_tag(tag C.uint8_t, content *C.uint8_t, length C.size_t, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	inner, ok := derInput(content, length)
	if !ok {
		return codeInvalid
	}
	b, err := der.Implicit(uint8(tag), inner)
	return derResult(b, err, out, outLen)
}

//export iris_der_build_utc_time
func iris_der_build_utc_time(seconds C.int64_t, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	b, err := der.UTCTime(int64(seconds))
	return derResult(b, err, out, outLen)
}

//export iris_der_build_generalized_time
func iris_der_build_generalized_time(seconds C.int64_t, out **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	b, err := der.GeneralizedTime(int64(seconds))
	return derResult(b, err, out, outLen)
}
