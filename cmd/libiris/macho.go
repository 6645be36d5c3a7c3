// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/irisproxy/iris/macho"
)

// #include "iris_types.h"
import "C"

//export iris_macho_parse
func iris_macho_parse(path *C.char, out *C.IrisMachOInfo) (code C.int32_t) {
	defer recoverCode(&code)
	p, ok := goString(path)
	if !ok || p == "" || out == nil {
		return codeInvalid
	}
	info, err := macho.Inspect(p)
	if err != nil {
		return codeOf(err)
	}
	*out = C.IrisMachOInfo{
		load_dylibs:     cStringArray(info.LoadDylibs),
		weak_dylibs:     cStringArray(info.WeakDylibs),
		rpaths:          cStringArray(info.RPaths),
		reexport_dylibs: cStringArray(info.ReexportDylibs),
		file_type:       C.uint32_t(info.FileType),
	}
	return codeOK
}

//export iris_macho_free
func iris_macho_free(info *C.IrisMachOInfo) {
	defer recoverFree()
	if info == nil {
		return
	}
	freeCStringArray(&info.load_dylibs)
	freeCStringArray(&info.weak_dylibs)
	freeCStringArray(&info.rpaths)
	freeCStringArray(&info.reexport_dylibs)
	*info = C.IrisMachOInfo{}
}
