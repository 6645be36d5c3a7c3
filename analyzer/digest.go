// Copyright 2025 The Iris Authors
// SPDX-License-Identifier: MIT

package analyzer

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
	"zombiezen.com/go/log"
	"zombiezen.com/go/nix"
)

// DefaultHashType is the hash algorithm used when none is specified.
const DefaultHashType = nix.SHA256

// Digest returns the lowercase hexadecimal digest
// of the full contents of the file at path.
// Errors opening or reading the file are returned as [*fs.PathError].
func Digest(path string, typ nix.HashType) (string, error) {
	if path == "" {
		return "", fmt.Errorf("hash file: %w", ErrEmptyPath)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := nix.NewHasher(typ)
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return h.SumHash().RawBase16(), nil
}

// BatchOptions is the set of optional parameters to [DigestBatch].
type BatchOptions struct {
	// HashType is the hash algorithm to use.
	// The zero value uses [DefaultHashType].
	HashType nix.HashType
	// Concurrency is the maximum number of files hashed at once.
	// If it is not positive, GOMAXPROCS is used.
	Concurrency int
}

// DigestBatch hashes each of the files in paths independently.
// The returned slice always has the same length as paths
// and result[i] is the digest of paths[i],
// or the empty string if the file could not be hashed.
// Failures are logged to ctx at debug level.
func DigestBatch(ctx context.Context, paths []string, opts *BatchOptions) []string {
	if opts == nil {
		opts = new(BatchOptions)
	}
	typ := opts.HashType
	var zero nix.HashType
	if typ == zero {
		typ = DefaultHashType
	}
	n := opts.Concurrency
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}

	results := make([]string, len(paths))
	var grp errgroup.Group
	grp.SetLimit(n)
	for i, path := range paths {
		grp.Go(func() error {
			digest, err := Digest(path, typ)
			if err != nil {
				log.Debugf(ctx, "Skipping %q in batch: %v", path, err)
				return nil
			}
			results[i] = digest
			return nil
		})
	}
	grp.Wait()
	return results
}
