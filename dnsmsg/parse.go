// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package dnsmsg

import (
	"encoding/binary"
	"fmt"
)

// Parse decodes a complete DNS message.
// Bytes after the last record declared in the header are ignored.
// Every error wraps [ErrMalformed].
// On success, each section holds exactly as many entries
// as the header declares.
func Parse(data []byte) (*Message, error) {
	if len(data) < headerLength {
		return nil, fmt.Errorf("%w: %d-byte message shorter than header", ErrMalformed, len(data))
	}
	flags := binary.BigEndian.Uint16(data[2:])
	msg := &Message{
		ID:                 binary.BigEndian.Uint16(data),
		Response:           flags&flagResponse != 0,
		Opcode:             Opcode((flags >> 11) & 0xf),
		Authoritative:      flags&flagAuthoritative != 0,
		Truncated:          flags&flagTruncated != 0,
		RecursionDesired:   flags&flagRecursionDesired != 0,
		RecursionAvailable: flags&flagRecursionAvailable != 0,
		RCode:              RCode(flags & 0xf),
	}
	var counts [4]int
	for i := range counts {
		counts[i] = int(binary.BigEndian.Uint16(data[4+2*i:]))
		if counts[i] > MaxSectionCount {
			return nil, fmt.Errorf("%w: section count %d exceeds %d", ErrMalformed, counts[i], MaxSectionCount)
		}
	}

	off := headerLength
	if counts[0] > 0 {
		msg.Questions = make([]Question, 0, counts[0])
	}
	for i := range counts[0] {
		q, next, err := readQuestion(data, off)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		msg.Questions = append(msg.Questions, q)
		off = next
	}
	sections := []struct {
		name    string
		records *[]Record
		count   int
	}{
		{"answer", &msg.Answers, counts[1]},
		{"authority", &msg.Authority, counts[2]},
		{"additional", &msg.Additional, counts[3]},
	}
	for _, sec := range sections {
		if sec.count == 0 {
			continue
		}
		*sec.records = make([]Record, 0, sec.count)
		for i := range sec.count {
			rr, next, err := readRecord(data, off)
			if err != nil {
				return nil, fmt.Errorf("%s %d: %w", sec.name, i, err)
			}
			*sec.records = append(*sec.records, rr)
			off = next
		}
	}
	return msg, nil
}

func readQuestion(data []byte, off int) (Question, int, error) {
	name, off, err := readName(data, off)
	if err != nil {
		return Question{}, 0, err
	}
	if off+4 > len(data) {
		return Question{}, 0, fmt.Errorf("%w: question truncated at offset %d", ErrMalformed, off)
	}
	q := Question{
		Name:  name,
		Type:  Type(binary.BigEndian.Uint16(data[off:])),
		Class: Class(binary.BigEndian.Uint16(data[off+2:])),
	}
	return q, off + 4, nil
}

func readRecord(data []byte, off int) (Record, int, error) {
	name, off, err := readName(data, off)
	if err != nil {
		return Record{}, 0, err
	}
	if off+10 > len(data) {
		return Record{}, 0, fmt.Errorf("%w: record truncated at offset %d", ErrMalformed, off)
	}
	rr := Record{
		Name:  name,
		Type:  Type(binary.BigEndian.Uint16(data[off:])),
		Class: Class(binary.BigEndian.Uint16(data[off+2:])),
		TTL:   binary.BigEndian.Uint32(data[off+4:]),
	}
	rdlength := int(binary.BigEndian.Uint16(data[off+8:]))
	start := off + 10
	end := start + rdlength
	if end > len(data) {
		return Record{}, 0, fmt.Errorf("%w: %d bytes of %v rdata at offset %d overflow message", ErrMalformed, rdlength, rr.Type, start)
	}
	rr.Data = append([]byte(nil), data[start:end]...)
	rr.Display = display(rr.Type, data, start, end)
	return rr, end, nil
}
