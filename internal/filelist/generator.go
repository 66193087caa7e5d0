// Package filelist writes manifests describing the files of a directory tree.
package filelist

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"instcheck/internal/verify"
)

// Generator hashes the regular files of a directory tree.
type Generator struct {
	// Workers bounds concurrent hashing; zero means runtime.NumCPU().
	Workers int
}

// NewGenerator creates a Generator using one worker per CPU.
func NewGenerator() *Generator {
	return &Generator{}
}

type fileEntry struct {
	path   string // path as walked
	name   string // path written to the manifest
	size   int64
	digest string
}

// Generate walks dir and writes one "<path>; <size>; <md5>" line per regular
// file, in lexical walk order. When prefix is set, paths are written relative to
// it.
func (g *Generator) Generate(ctx context.Context, w io.Writer, dir, prefix string) error {
	entries, err := g.collect(dir, prefix)
	if err != nil {
		return err
	}

	workers := g.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range entries {
		e := &entries[i]
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			digest, err := verify.FileMD5(e.path)
			if err != nil {
				return fmt.Errorf("hash %s: %w", e.path, err)
			}
			e.digest = digest
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, e := range entries {
		if _, err := fmt.Fprintln(w, verify.FormatEntry(e.name, e.size, e.digest)); err != nil {
			return fmt.Errorf("write file list: %w", err)
		}
	}
	return nil
}

func (g *Generator) collect(dir, prefix string) ([]fileEntry, error) {
	var entries []fileEntry
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		name := path
		if prefix != "" {
			rel, err := relativePath(path, prefix)
			if err != nil {
				return err
			}
			name = rel
		}
		entries = append(entries, fileEntry{path: path, name: filepath.ToSlash(name), size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return entries, nil
}

func relativePath(path, prefix string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	absPrefix, err := filepath.Abs(prefix)
	if err != nil {
		return "", err
	}
	return filepath.Rel(absPrefix, absPath)
}
