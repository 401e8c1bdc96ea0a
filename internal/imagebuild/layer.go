// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package imagebuild

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/tarball"
)

// epoch is written as the mtime of every layer entry.
var epoch = time.Unix(0, 0).UTC()

var errEmptyContext = errors.New("build context contains no files")

// buildLayer packs dir below workdir into a reproducible layer: entries are
// in lexical order with fixed timestamps and root ownership.
func buildLayer(dir, workdir string) (v1.Layer, int, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	prefix := strings.TrimPrefix(path.Clean(workdir), "/")
	files := 0

	if err := writeParents(tw, prefix); err != nil {
		return nil, 0, err
	}

	// WalkDir visits entries in lexical order.
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := path.Join(prefix, filepath.ToSlash(rel))

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return tw.WriteHeader(dirHeader(name))
		case info.Mode().IsRegular():
			files++
			return writeRegular(tw, p, name, info)
		default:
			// Symlinks and devices are not carried into the image.
			return nil
		}
	})
	if err != nil {
		return nil, 0, fmt.Errorf("pack build context: %w", err)
	}
	if files == 0 {
		return nil, 0, errEmptyContext
	}
	if err := tw.Close(); err != nil {
		return nil, 0, fmt.Errorf("pack build context: %w", err)
	}

	data := buf.Bytes()
	layer, err := tarball.LayerFromOpener(func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("create layer: %w", err)
	}
	return layer, files, nil
}

func writeParents(tw *tar.Writer, prefix string) error {
	if prefix == "" {
		return nil
	}
	parts := strings.Split(prefix, "/")
	for i := range parts {
		if err := tw.WriteHeader(dirHeader(strings.Join(parts[:i+1], "/"))); err != nil {
			return err
		}
	}
	return nil
}

func dirHeader(name string) *tar.Header {
	return &tar.Header{
		Typeflag: tar.TypeDir,
		Name:     name + "/",
		Mode:     0o755,
		ModTime:  epoch,
		Format:   tar.FormatPAX,
	}
}

func writeRegular(tw *tar.Writer, src, name string, info fs.FileInfo) error {
	mode := int64(0o644)
	if info.Mode()&0o111 != 0 {
		mode = 0o755
	}
	if err := tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     mode,
		Size:     info.Size(),
		ModTime:  epoch,
		Format:   tar.FormatPAX,
	}); err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = io.Copy(tw, f)
	return err
}
