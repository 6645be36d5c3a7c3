// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sync"

	"github.com/irisproxy/iris/dnsmsg"
	"github.com/spf13/cobra"
)

func newDNSCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "dns COMMAND",
		Short:                 "decode and build DNS messages",
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.AddCommand(
		newDNSParseCommand(),
		newDNSQueryCommand(),
	)
	return c
}

func newDNSParseCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "parse FILE",
		Short:                 "decode a DNS message in wire format",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ExactArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		if err := runDNSParse(cmd.Context(), os.Stdout, data); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		return nil
	}
	return c
}

type dnsMessageJSON struct {
	ID                 uint16            `json:"id"`
	Response           bool              `json:"response"`
	Opcode             string            `json:"opcode"`
	Authoritative      bool              `json:"authoritative"`
	Truncated          bool              `json:"truncated"`
	RecursionDesired   bool              `json:"recursionDesired"`
	RecursionAvailable bool              `json:"recursionAvailable"`
	RCode              string            `json:"rcode"`
	Questions          []dnsQuestionJSON `json:"questions"`
	Answers            []dnsRecordJSON   `json:"answers"`
	Authority          []dnsRecordJSON   `json:"authority"`
	Additional         []dnsRecordJSON   `json:"additional"`
}

type dnsQuestionJSON struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Class string `json:"class"`
}

type dnsRecordJSON struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Class   string `json:"class"`
	TTL     uint32 `json:"ttl"`
	Data    []byte `json:"data,format:base16"`
	Display string `json:"display"`
}

func dnsRecordsJSON(records []dnsmsg.Record) []dnsRecordJSON {
	result := make([]dnsRecordJSON, len(records))
	for i, rr := range records {
		result[i] = dnsRecordJSON{
			Name:    rr.Name,
			Type:    rr.Type.String(),
			Class:   rr.Class.String(),
			TTL:     rr.TTL,
			Data:    rr.Data,
			Display: rr.Display,
		}
	}
	return result
}

func runDNSParse(ctx context.Context, dst io.Writer, data []byte) error {
	msg, err := dnsmsg.Parse(data)
	if err != nil {
		return err
	}
	result := &dnsMessageJSON{
		ID:                 msg.ID,
		Response:           msg.Response,
		Opcode:             msg.Opcode.String(),
		Authoritative:      msg.Authoritative,
		Truncated:          msg.Truncated,
		RecursionDesired:   msg.RecursionDesired,
		RecursionAvailable: msg.RecursionAvailable,
		RCode:              msg.RCode.String(),
		Questions:          make([]dnsQuestionJSON, len(msg.Questions)),
		Answers:            dnsRecordsJSON(msg.Answers),
		Authority:          dnsRecordsJSON(msg.Authority),
		Additional:         dnsRecordsJSON(msg.Additional),
	}
	for i, q := range msg.Questions {
		result.Questions[i] = dnsQuestionJSON{
			Name:  q.Name,
			Type:  q.Type.String(),
			Class: q.Class.String(),
		}
	}
	return writeJSON(dst, result)
}

type dnsQueryOptions struct {
	domain           string
	typ              dnsmsg.Type
	id               uint16
	recursionDesired bool
	output           io.WriteCloser
}

func newDNSQueryCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "query [options] DOMAIN",
		Short:                 "build a DNS query in wire format",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ExactArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	opts := &dnsQueryOptions{typ: dnsmsg.TypeA}
	c.Flags().VarP((*recordTypeFlag)(&opts.typ), "type", "t", "record `type` to query")
	c.Flags().Uint16Var(&opts.id, "id", 0, "message `id` (random if not set)")
	noRecursion := c.Flags().Bool("no-rd", false, "clear the recursion desired flag")
	outputPath := c.Flags().StringP("output", "o", "", "output `file`")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("id") {
			opts.id = uint16(rand.Uint32())
		}
		opts.recursionDesired = !*noRecursion
		opts.domain = args[0]
		var err error
		opts.output, err = openBinaryOutput(*outputPath)
		if err != nil {
			return err
		}
		return runDNSQuery(cmd.Context(), opts)
	}
	return c
}

func runDNSQuery(ctx context.Context, opts *dnsQueryOptions) error {
	closeFunc := sync.OnceValue(opts.output.Close)
	defer closeFunc()

	query, err := dnsmsg.BuildQuery(opts.domain, opts.typ, opts.id, opts.recursionDesired)
	if err != nil {
		return err
	}
	if _, err := opts.output.Write(query); err != nil {
		return err
	}
	return closeFunc()
}
