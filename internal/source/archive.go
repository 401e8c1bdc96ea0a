// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package source

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/kagenti/agent-operator/internal/failure"
)

type extractStats struct {
	files int
	size  int64
}

// extractArchive writes the archive of size bytes read from ra below dest.
// Format errors are reported as NetworkError since a truncated download is
// the usual cause.
func extractArchive(ra io.ReaderAt, size int64, format archiveFormat, dest string) (*extractStats, error) {
	header := make([]byte, 4)
	n, _ := ra.ReadAt(header, 0)
	format = sniffFormat(header[:n], format)

	var stats *extractStats
	var err error

	switch format {
	case formatTarGz:
		stats, err = extractTarGz(io.NewSectionReader(ra, 0, size), dest)
	case formatTar:
		stats, err = extractTar(io.NewSectionReader(ra, 0, size), dest)
	case formatZip:
		stats, err = extractZip(ra, size, dest)
	default:
		return nil, failure.Validation("unsupported archive type: %s", format)
	}

	if err != nil {
		var fe *failure.Error
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, failure.Network("extract source", err)
	}

	return stats, nil
}

// sniffFormat prefers the magic bytes over the name-derived format.
func sniffFormat(header []byte, fallback archiveFormat) archiveFormat {
	switch {
	case len(header) >= 2 && header[0] == 0x1f && header[1] == 0x8b:
		return formatTarGz
	case len(header) >= 4 && bytes.Equal(header[:4], []byte("PK\x03\x04")):
		return formatZip
	default:
		return fallback
	}
}

// extractTarGz extracts a gzip-compressed tar archive.
func extractTarGz(r io.Reader, dest string) (*extractStats, error) {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	defer func() { _ = gzReader.Close() }()

	return extractTar(gzReader, dest)
}

// extractTar extracts a tar archive.
//
//nolint:revive // cyclomatic complexity is acceptable for this archive extraction function
func extractTar(reader io.Reader, dest string) (*extractStats, error) {
	stats := &extractStats{}
	tarReader := tar.NewReader(reader)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar header: %w", err)
		}

		// Only process regular files
		if header.Typeflag != tar.TypeReg {
			continue
		}

		name := processFilePath(header.Name)
		if name == "" {
			continue
		}

		if err := checkLimits(stats, name, header.Size); err != nil {
			return nil, err
		}

		n, err := writeFile(dest, name, tarReader, header.FileInfo().Mode())
		if err != nil {
			return nil, err
		}

		stats.size += n
		stats.files++
	}

	if stats.files == 0 {
		return nil, failure.NotFound("extract source", errors.New("no files found in archive"))
	}

	return stats, nil
}

// extractZip extracts a ZIP archive.
//
//nolint:revive // cognitive complexity is acceptable for archive extraction
func extractZip(ra io.ReaderAt, size int64, dest string) (*extractStats, error) {
	stats := &extractStats{}

	zipReader, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("create zip reader: %w", err)
	}

	for _, file := range zipReader.File {
		if file.FileInfo().IsDir() || !file.Mode().IsRegular() {
			continue
		}

		name := processFilePath(file.Name)
		if name == "" {
			continue
		}

		if err := checkLimits(stats, name, int64(file.UncompressedSize64)); err != nil {
			return nil, err
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open file %s: %w", name, err)
		}

		n, err := writeFile(dest, name, rc, file.Mode())
		_ = rc.Close()
		if err != nil {
			return nil, err
		}

		stats.size += n
		stats.files++
	}

	if stats.files == 0 {
		return nil, failure.NotFound("extract source", errors.New("no files found in archive"))
	}

	return stats, nil
}

func checkLimits(stats *extractStats, name string, size int64) error {
	if stats.files >= MaxFileCount {
		return failure.Validation("too many files (max %d)", MaxFileCount)
	}
	if size > MaxFileSize {
		return failure.Validation("file too large: %s (%d bytes, max %d)", name, size, MaxFileSize)
	}
	if stats.size+size > MaxDownloadSize {
		return failure.Validation("extracted source exceeds %d bytes", MaxDownloadSize)
	}
	return nil
}

// writeFile copies at most MaxFileSize bytes from r to dest/name.
func writeFile(dest, name string, r io.Reader, mode os.FileMode) (int64, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return 0, failure.Validation("archive entry escapes workspace: %s", name)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, failure.New(failure.KindUnknown, "write workspace", err)
	}

	perm := os.FileMode(0o644)
	if mode&0o111 != 0 {
		perm = 0o755
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return 0, failure.New(failure.KindUnknown, "write workspace", err)
	}

	n, err := io.Copy(out, io.LimitReader(r, MaxFileSize+1))
	closeErr := out.Close()
	if err != nil {
		return 0, fmt.Errorf("read file %s: %w", name, err)
	}
	if closeErr != nil {
		return 0, failure.New(failure.KindUnknown, "write workspace", closeErr)
	}

	// Check size after reading (in case header was wrong)
	if n > MaxFileSize {
		return 0, failure.Validation("file too large: %s (%d bytes, max %d)", name, n, MaxFileSize)
	}

	return n, nil
}

// processFilePath cleans an archive entry name. Hidden entries and paths
// that leave the archive root yield "".
func processFilePath(name string) string {
	name = filepath.ToSlash(filepath.Clean(name))
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, "./")

	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return ""
		}
		// Skip hidden files and directories
		if strings.HasPrefix(part, ".") && part != "." {
			return ""
		}
	}

	if name == "" || name == "." {
		return ""
	}

	return name
}
