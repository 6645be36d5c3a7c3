// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/irisproxy/iris/httphead"
	"github.com/spf13/cobra"
)

func newHTTPCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "http COMMAND",
		Short:                 "parse captured HTTP/1.x message heads",
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.AddCommand(
		newHTTPParseCommand("request", "parse an HTTP request head", runHTTPRequest),
		newHTTPParseCommand("response", "parse an HTTP response head", runHTTPResponse),
	)
	return c
}

func newHTTPParseCommand(name, short string, run func(context.Context, io.Writer, []byte) error) *cobra.Command {
	c := &cobra.Command{
		Use:                   name + " FILE",
		Short:                 short,
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
		if err := run(cmd.Context(), os.Stdout, data); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		return nil
	}
	return c
}

type httpHeaderJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func httpHeadersJSON(headers []httphead.Header) []httpHeaderJSON {
	result := make([]httpHeaderJSON, len(headers))
	for i, h := range headers {
		result[i] = httpHeaderJSON{Name: string(h.Name), Value: string(h.Value)}
	}
	return result
}

func httpVersion(minor uint8) string {
	return fmt.Sprintf("HTTP/1.%d", minor)
}

func contentLengthJSON(n int64) *int64 {
	if n < 0 {
		return nil
	}
	return &n
}

type httpRequestJSON struct {
	Method        string           `json:"method"`
	Target        string           `json:"target"`
	Version       string           `json:"version"`
	Headers       []httpHeaderJSON `json:"headers"`
	HeaderEnd     int              `json:"headerEnd"`
	ContentLength *int64           `json:"contentLength,omitempty"`
	Chunked       bool             `json:"chunked"`
}

func runHTTPRequest(ctx context.Context, dst io.Writer, data []byte) error {
	req, err := httphead.ParseRequest(data)
	if err != nil {
		return err
	}
	return writeJSON(dst, &httpRequestJSON{
		Method:        string(req.Method),
		Target:        string(req.Target),
		Version:       httpVersion(req.VersionMinor),
		Headers:       httpHeadersJSON(req.Headers),
		HeaderEnd:     req.HeaderEnd,
		ContentLength: contentLengthJSON(req.ContentLength),
		Chunked:       req.Chunked,
	})
}

type httpResponseJSON struct {
	Version       string           `json:"version"`
	StatusCode    int              `json:"statusCode"`
	Reason        string           `json:"reason"`
	Headers       []httpHeaderJSON `json:"headers"`
	HeaderEnd     int              `json:"headerEnd"`
	ContentLength *int64           `json:"contentLength,omitempty"`
	Chunked       bool             `json:"chunked"`
	HasBody       bool             `json:"hasBody"`
	HasFraming    bool             `json:"hasFraming"`
	ShouldClose   bool             `json:"shouldClose"`
}

func runHTTPResponse(ctx context.Context, dst io.Writer, data []byte) error {
	resp, err := httphead.ParseResponse(data)
	if err != nil {
		return err
	}
	return writeJSON(dst, &httpResponseJSON{
		Version:       httpVersion(resp.VersionMinor),
		StatusCode:    resp.StatusCode,
		Reason:        string(resp.Reason),
		Headers:       httpHeadersJSON(resp.Headers),
		HeaderEnd:     resp.HeaderEnd,
		ContentLength: contentLengthJSON(resp.ContentLength),
		Chunked:       resp.Chunked,
		HasBody:       resp.HasBody(),
		HasFraming:    resp.HasFraming(),
		ShouldClose:   resp.ShouldClose(),
	})
}
