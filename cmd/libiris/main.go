// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

// libiris exports the Iris parsers as a C library.
// Build it with:
//
//	go build -buildmode=c-shared -o libiris.so ./cmd/libiris
//
// The interface is described in iris_parsers.h.
// Every structure or buffer returned to the caller
// is allocated with malloc and must be released
// with the matching iris_*_free function exactly once.
package main

import (
	"context"
	"unsafe"

	"github.com/irisproxy/iris"
	"zombiezen.com/go/log"
)

// #include <stdlib.h>
// #include "iris_types.h"
import "C"

func main() {}

const (
	codeOK            = C.int32_t(iris.OK)
	codeRetry         = C.int32_t(iris.Retry)
	codeInvalid       = C.int32_t(iris.Invalid)
	codeNotApplicable = C.int32_t(iris.NotApplicable)
)

func codeOf(err error) C.int32_t {
	return C.int32_t(iris.CodeOf(err))
}

// recoverCode must be deferred directly by every exported function
// that returns a code.
// A panic must not unwind into the C caller.
func recoverCode(code *C.int32_t) {
	if r := recover(); r != nil {
		log.Errorf(context.Background(), "libiris: %v", r)
		*code = codeInvalid
	}
}

// recoverFree is deferred by the release functions.
func recoverFree() {
	if r := recover(); r != nil {
		log.Errorf(context.Background(), "libiris: %v", r)
	}
}

// goBytes returns a slice that aliases the C buffer.
func goBytes(data *C.uint8_t, n C.size_t) []byte {
	if data == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(data)), int(n))
}

func goString(s *C.char) (_ string, ok bool) {
	if s == nil {
		return "", false
	}
	return C.GoString(s), true
}

// borrow returns a view of b, which must point into C memory.
func borrow(b []byte) C.IrisSlice {
	return C.IrisSlice{
		ptr: (*C.uint8_t)(unsafe.Pointer(unsafe.SliceData(b))),
		len: C.size_t(len(b)),
	}
}

// cBytes copies b into a new malloc-ed buffer.
// An empty slice is returned as NULL.
func cBytes(b []byte) (*C.uint8_t, C.size_t) {
	if len(b) == 0 {
		return nil, 0
	}
	return (*C.uint8_t)(C.CBytes(b)), C.size_t(len(b))
}

// cArray allocates a zeroed C array of n elements.
// It returns nil if n is zero.
func cArray[T any](n int) []T {
	if n == 0 {
		return nil
	}
	var zero T
	p := C.calloc(C.size_t(n), C.size_t(unsafe.Sizeof(zero)))
	return unsafe.Slice((*T)(p), n)
}

func cArrayPtr[T any](a []T) *T {
	return unsafe.SliceData(a)
}

func cStringArray(list []string) C.IrisCStringArray {
	items := cArray[*C.char](len(list))
	for i, s := range list {
		items[i] = C.CString(s)
	}
	return C.IrisCStringArray{
		items: cArrayPtr(items),
		count: C.size_t(len(list)),
	}
}

func freeCStringArray(arr *C.IrisCStringArray) {
	if arr.items != nil {
		for _, s := range unsafe.Slice(arr.items, int(arr.count)) {
			C.free(unsafe.Pointer(s))
		}
		C.free(unsafe.Pointer(arr.items))
	}
	*arr = C.IrisCStringArray{}
}

//export iris_free_bytes
func iris_free_bytes(data *C.uint8_t, length C.size_t) {
	defer recoverFree()
	if data != nil {
		C.free(unsafe.Pointer(data))
	}
}

//export iris_free_string
func iris_free_string(ptr *C.char) {
	defer recoverFree()
	if ptr != nil {
		C.free(unsafe.Pointer(ptr))
	}
}
