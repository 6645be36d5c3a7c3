// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"unsafe"

	"github.com/irisproxy/iris/dnsmsg"
)

// #include <stdlib.h>
// #include "iris_types.h"
import "C"

//export iris_dns_parse
func iris_dns_parse(data *C.uint8_t, length C.size_t, out *C.IrisDnsMessage) (code C.int32_t) {
	defer recoverCode(&code)
	if out == nil || (data == nil && length > 0) {
		return codeInvalid
	}
	msg, err := dnsmsg.Parse(goBytes(data, length))
	if err != nil {
		return codeOf(err)
	}

	questions := cArray[C.IrisDnsQuestion](len(msg.Questions))
	for i, q := range msg.Questions {
		questions[i] = C.IrisDnsQuestion{
			name:        C.CString(q.Name),
			record_type: C.uint16_t(q.Type),
			qclass:      C.uint16_t(q.Class),
		}
	}
	answers := cRecords(msg.Answers)
	authority := cRecords(msg.Authority)
	additional := cRecords(msg.Additional)
	*out = C.IrisDnsMessage{
		id:                  C.uint16_t(msg.ID),
		is_response:         C.bool(msg.Response),
		opcode:              C.uint8_t(msg.Opcode),
		is_authoritative:    C.bool(msg.Authoritative),
		is_truncated:        C.bool(msg.Truncated),
		recursion_desired:   C.bool(msg.RecursionDesired),
		recursion_available: C.bool(msg.RecursionAvailable),
		response_code:       C.uint8_t(msg.RCode),
		questions:           cArrayPtr(questions),
		questions_count:     C.size_t(len(questions)),
		answers:             cArrayPtr(answers),
		answers_count:       C.size_t(len(answers)),
		authority:           cArrayPtr(authority),
		authority_count:     C.size_t(len(authority)),
		additional:          cArrayPtr(additional),
		additional_count:    C.size_t(len(additional)),
	}
	return codeOK
}

func cRecords(records []dnsmsg.Record) []C.IrisDnsRecord {
	arr := cArray[C.IrisDnsRecord](len(records))
	for i, rr := range records {
		rdata, rdataLen := cBytes(rr.Data)
		arr[i] = C.IrisDnsRecord{
			name:          C.CString(rr.Name),
			record_type:   C.uint16_t(rr.Type),
			rrclass:       C.uint16_t(rr.Class),
			ttl:           C.uint32_t(rr.TTL),
			rdata:         rdata,
			rdata_len:     rdataLen,
			display_value: C.CString(rr.Display),
		}
	}
	return arr
}

func freeRecords(records *C.IrisDnsRecord, n C.size_t) {
	if records == nil {
		return
	}
	for _, rr := range unsafe.Slice(records, int(n)) {
		C.free(unsafe.Pointer(rr.name))
		C.free(unsafe.Pointer(rr.rdata))
		C.free(unsafe.Pointer(rr.display_value))
	}
	C.free(unsafe.Pointer(records))
}

//export iris_dns_free_message
func iris_dns_free_message(msg *C.IrisDnsMessage) {
	defer recoverFree()
	if msg == nil {
		return
	}
	if msg.questions != nil {
		for _, q := range unsafe.Slice(msg.questions, int(msg.questions_count)) {
			C.free(unsafe.Pointer(q.name))
		}
		C.free(unsafe.Pointer(msg.questions))
	}
	freeRecords(msg.answers, msg.answers_count)
	freeRecords(msg.authority, msg.authority_count)
	freeRecords(msg.additional, msg.additional_count)
	*msg = C.IrisDnsMessage{}
}

//export iris_dns_build_query
func iris_dns_build_query(domain *C.char, recordType C.uint16_t, id C.uint16_t, recursionDesired C.bool, outData **C.uint8_t, outLen *C.size_t) (code C.int32_t) {
	defer recoverCode(&code)
	name, ok := goString(domain)
	if !ok || outData == nil || outLen == nil {
		return codeInvalid
	}
	query, err := dnsmsg.BuildQuery(name, dnsmsg.Type(recordType), uint16(id), bool(recursionDesired))
	if err != nil {
		return codeOf(err)
	}
	*outData, *outLen = cBytes(query)
	return codeOK
}
