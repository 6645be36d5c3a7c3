// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"github.com/irisproxy/iris/der"
	"github.com/spf13/cobra"
)

// derKinds maps the names accepted by "iris der" to their encoders.
var derKinds = map[string]func(value string) ([]byte, error){
	"int":       encodeDERInteger,
	"oid":       encodeDEROID,
	"utf8":      der.UTF8String,
	"printable": der.PrintableString,
	"octets":    encodeDEROctets,
	"bool":      encodeDERBoolean,
	"utctime":   encodeDERTime(der.UTCTime),
	"gentime":   encodeDERTime(der.GeneralizedTime),
}

const derLongHelp = `Encode a single ASN.1 value in DER.

KIND is one of:
  int        a decimal integer
  oid        a dotted object identifier (like 1.2.840.113549)
  utf8       a UTF8String
  printable  a PrintableString
  octets     a hex-encoded OCTET STRING
  bool       true or false
  utctime    a UTCTime from Unix seconds
  gentime    a GeneralizedTime from Unix seconds`

type derOptions struct {
	kind   string
	value  string
	output io.WriteCloser
}

func newDERCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "der [options] KIND VALUE",
		Short:                 "encode a single ASN.1 value in DER",
		Long:                  derLongHelp,
		DisableFlagsInUseLine: true,
		Args:                  cobra.ExactArgs(2),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	outputPath := c.Flags().StringP("output", "o", "", "output `file`")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		opts := &derOptions{
			kind:  args[0],
			value: args[1],
		}
		if _, ok := derKinds[opts.kind]; !ok {
			return fmt.Errorf("unknown kind %q", opts.kind)
		}
		var err error
		opts.output, err = openBinaryOutput(*outputPath)
		if err != nil {
			return err
		}
		return runDER(cmd.Context(), opts)
	}
	return c
}

func runDER(ctx context.Context, opts *derOptions) error {
	closeFunc := sync.OnceValue(opts.output.Close)
	defer closeFunc()

	encode := derKinds[opts.kind]
	if encode == nil {
		return fmt.Errorf("unknown kind %q", opts.kind)
	}
	data, err := encode(opts.value)
	if err != nil {
		return err
	}
	if _, err := opts.output.Write(data); err != nil {
		return err
	}
	return closeFunc()
}

// encodeDERInteger encodes a decimal integer of any size.
func encodeDERInteger(s string) ([]byte, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return der.Integer(i), nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("parse integer %q: invalid syntax", s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("parse integer %q: negative integers must fit in 64 bits", s)
	}
	return der.IntegerBytes(n.Bytes())
}

// encodeDEROID encodes a dotted object identifier like "1.2.840.113549".
func encodeDEROID(s string) ([]byte, error) {
	parts := strings.Split(s, ".")
	arcs := make([]uint32, len(parts))
	for i, part := range parts {
		arc, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse object identifier %q: arc %d: %v", s, i+1, err)
		}
		arcs[i] = uint32(arc)
	}
	return der.ObjectIdentifier(arcs...)
}

func encodeDEROctets(s string) ([]byte, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse octets: %v", err)
	}
	return der.OctetString(data), nil
}

func encodeDERBoolean(s string) ([]byte, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return der.Boolean(b), nil
}

func encodeDERTime(f func(int64) ([]byte, error)) func(string) ([]byte, error) {
	return func(s string) ([]byte, error) {
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse time: %v", err)
		}
		return f(sec)
	}
}
