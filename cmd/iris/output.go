// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"io"
	"os"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"golang.org/x/term"
)

// writeJSON writes v to dst as a single line of JSON,
// or indented JSON if dst is a terminal.
// Invalid UTF-8 in strings is replaced with U+FFFD.
func writeJSON(dst io.Writer, v any) error {
	opts := []jsonv2.Options{jsontext.AllowInvalidUTF8(true)}
	if isTerminal(dst) {
		opts = append(opts, jsontext.Multiline(true))
	}
	data, err := jsonv2.Marshal(v, opts...)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = dst.Write(data)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// openBinaryOutput opens the destination for binary output.
// An empty path or "-" means stdout,
// but an empty path is refused if stdout is a terminal.
func openBinaryOutput(path string) (io.WriteCloser, error) {
	switch {
	case path == "" && isTerminal(os.Stdout):
		return nil, errors.New("refusing to send binary output to stdout (a tty). Pass --output=- to override.")
	case path == "" || path == "-":
		return nopWriteCloser{os.Stdout}, nil
	default:
		return os.Create(path)
	}
}

// readInput reads the named file, or stdin if path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
