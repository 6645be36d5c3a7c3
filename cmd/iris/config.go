// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/irisproxy/iris/analyzer"
	"github.com/tailscale/hujson"
	"zombiezen.com/go/nix"
)

type globalConfig struct {
	Debug         bool
	HashAlgorithm nix.HashType
	// Concurrency is the number of files hashed at once.
	// Zero uses GOMAXPROCS.
	Concurrency int
	Entropy     *analyzer.Policy
}

// defaultGlobalConfig returns the configuration used
// before any configuration files are read.
func defaultGlobalConfig() *globalConfig {
	return &globalConfig{
		HashAlgorithm: analyzer.DefaultHashType,
		Entropy:       analyzer.DefaultPolicy(),
	}
}

// configFiles returns the configuration files to read
// in increasing order of preference.
func configFiles() iter.Seq[string] {
	return func(yield func(string) bool) {
		for dir := range systemConfigDirs() {
			if !yield(filepath.Join(dir, "iris", "config.jwcc")) {
				return
			}
		}
		if path := os.Getenv("IRIS_CONFIG"); path != "" {
			yield(path)
		}
	}
}

func (g *globalConfig) mergeFiles(paths iter.Seq[string]) error {
	for path := range paths {
		huJSONData, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		jsonData, err := hujson.Standardize(huJSONData)
		if err != nil {
			return fmt.Errorf("read %s: %v", path, err)
		}
		if err := jsonv2.Unmarshal(jsonData, g, jsonv2.RejectUnknownMembers(false)); err != nil {
			return fmt.Errorf("read %s: %v", path, err)
		}
	}

	return nil
}

// UnmarshalJSONFrom unmarshals the configuration object from the JSON decoder,
// merging any fields in the JSON object with existing values.
func (g *globalConfig) UnmarshalJSONFrom(in *jsontext.Decoder) error {
	tok, err := in.ReadToken()
	if err != nil {
		return err
	}
	if got := tok.Kind(); got != '{' {
		return fmt.Errorf("config must be an object not a %v", got)
	}

	for {
		keyToken, err := in.ReadToken()
		if err != nil {
			return err
		}
		switch kind := keyToken.Kind(); kind {
		case '}':
			return nil
		case '"':
			// Keep going.
		default:
			return fmt.Errorf("unexpected non-string key (%v) in object", kind)
		}

		switch k := keyToken.String(); k {
		case "debug":
			if err := jsonv2.UnmarshalDecode(in, &g.Debug); err != nil {
				return fmt.Errorf("unmarshal config.debug: %w", err)
			}
		case "hashAlgorithm":
			var s string
			if err := jsonv2.UnmarshalDecode(in, &s); err != nil {
				return fmt.Errorf("unmarshal config.hashAlgorithm: %w", err)
			}
			typ, err := nix.ParseHashType(s)
			if err != nil {
				return fmt.Errorf("unmarshal config.hashAlgorithm: %v", err)
			}
			g.HashAlgorithm = typ
		case "concurrency":
			if err := jsonv2.UnmarshalDecode(in, &g.Concurrency); err != nil {
				return fmt.Errorf("unmarshal config.concurrency: %w", err)
			}
		case "entropy":
			var ec entropyConfig
			if err := jsonv2.UnmarshalDecode(in, &ec); err != nil {
				return fmt.Errorf("unmarshal config.entropy: %w", err)
			}
			if g.Entropy == nil {
				g.Entropy = analyzer.DefaultPolicy()
			}
			ec.mergeInto(g.Entropy)
		default:
			if reject, _ := jsonv2.GetOption(in.Options(), jsonv2.RejectUnknownMembers); reject {
				return fmt.Errorf("unmarshal config: unknown field %q", k)
			}
			if err := in.SkipValue(); err != nil {
				return err
			}
		}
	}
}

// entropyConfig is the "entropy" object of the configuration file.
// Absent fields leave the current policy unchanged.
type entropyConfig struct {
	MinSize      *int64            `json:"minSize"`
	MaxRead      *int64            `json:"maxRead"`
	EntropyMin   *float64          `json:"entropyMin"`
	ChiSquareMax *float64          `json:"chiSquareMax"`
	PiErrorMax   *float64          `json:"piErrorMax"`
	Signatures   []signatureConfig `json:"signatures"`
}

type signatureConfig struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Magic  []byte `json:"magic,format:base16"`
}

func (ec *entropyConfig) mergeInto(policy *analyzer.Policy) {
	if ec.MinSize != nil {
		policy.MinSize = *ec.MinSize
	}
	if ec.MaxRead != nil {
		policy.MaxRead = *ec.MaxRead
	}
	if ec.EntropyMin != nil {
		policy.EntropyMin = *ec.EntropyMin
	}
	if ec.ChiSquareMax != nil {
		policy.ChiSquareMax = *ec.ChiSquareMax
	}
	if ec.PiErrorMax != nil {
		policy.PiErrorMax = *ec.PiErrorMax
	}
	for _, sig := range ec.Signatures {
		policy.Signatures = append(policy.Signatures, analyzer.Signature{
			Name:   sig.Name,
			Offset: sig.Offset,
			Magic:  sig.Magic,
		})
	}
}

func (g *globalConfig) validate() error {
	if g.Concurrency < 0 {
		return fmt.Errorf("concurrency (%d) must not be negative", g.Concurrency)
	}
	if g.Entropy == nil {
		return fmt.Errorf("entropy policy not set")
	}
	if g.Entropy.MinSize < 0 {
		return fmt.Errorf("entropy.minSize (%d) must not be negative", g.Entropy.MinSize)
	}
	if g.Entropy.MaxRead <= 0 {
		return fmt.Errorf("entropy.maxRead (%d) must be positive", g.Entropy.MaxRead)
	}
	if g.Entropy.MaxRead < g.Entropy.MinSize {
		return fmt.Errorf("entropy.maxRead (%d) is less than entropy.minSize (%d)", g.Entropy.MaxRead, g.Entropy.MinSize)
	}
	for i, sig := range g.Entropy.Signatures {
		if sig.Name == "" {
			return fmt.Errorf("entropy.signatures[%d]: missing name", i)
		}
		if len(sig.Magic) == 0 {
			return fmt.Errorf("entropy.signatures[%d] (%s): missing magic", i, sig.Name)
		}
		if sig.Offset < 0 {
			return fmt.Errorf("entropy.signatures[%d] (%s): negative offset", i, sig.Name)
		}
	}
	return nil
}
