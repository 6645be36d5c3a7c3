// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"unsafe"

	"github.com/irisproxy/iris/analyzer"
	"zombiezen.com/go/nix"
)

// #include "iris_types.h"
import "C"

//export iris_sha256_file
func iris_sha256_file(path *C.char, outHex **C.char) (code C.int32_t) {
	defer recoverCode(&code)
	p, ok := goString(path)
	if !ok || outHex == nil {
		return codeInvalid
	}
	digest, err := analyzer.Digest(p, nix.SHA256)
	if err != nil {
		return codeOf(err)
	}
	*outHex = C.CString(digest)
	return codeOK
}

//export iris_file_entropy
func iris_file_entropy(path *C.char, out *C.double) (code C.int32_t) {
	defer recoverCode(&code)
	p, ok := goString(path)
	if !ok || out == nil {
		return codeInvalid
	}
	e, err := analyzer.FileEntropy(p)
	if err != nil {
		return codeOf(err)
	}
	*out = C.double(e)
	return codeOK
}

//export iris_batch_sha256
func iris_batch_sha256(paths **C.char, count C.size_t, out *C.IrisCStringArray) (code C.int32_t) {
	defer recoverCode(&code)
	if paths == nil || count == 0 || out == nil {
		return codeInvalid
	}
	goPaths := make([]string, int(count))
	for i, p := range unsafe.Slice(paths, int(count)) {
		// A NULL entry is hashed as the empty path, which fails.
		goPaths[i], _ = goString(p)
	}
	digests := analyzer.DigestBatch(context.Background(), goPaths, &analyzer.BatchOptions{
		HashType: nix.SHA256,
	})
	*out = cStringArray(digests)
	return codeOK
}

//export iris_batch_sha256_free
func iris_batch_sha256_free(arr *C.IrisCStringArray) {
	defer recoverFree()
	if arr == nil {
		return
	}
	freeCStringArray(arr)
}

//export iris_file_entropy_full
func iris_file_entropy_full(path *C.char, out *C.IrisEntropyResult) (code C.int32_t) {
	defer recoverCode(&code)
	p, ok := goString(path)
	if !ok || out == nil {
		return codeInvalid
	}
	result, err := analyzer.Analyze(p, nil)
	if errors.Is(err, analyzer.ErrKnownFormat) {
		*out = C.IrisEntropyResult{is_known_format: true}
		return codeNotApplicable
	}
	if err != nil {
		return codeOf(err)
	}
	*out = C.IrisEntropyResult{
		entropy:              C.double(result.Entropy),
		chi_square:           C.double(result.ChiSquare),
		monte_carlo_pi_error: C.double(result.MonteCarloPiError),
		is_encrypted:         C.bool(result.IsEncrypted),
	}
	return codeOK
}
