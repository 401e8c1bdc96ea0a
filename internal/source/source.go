// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

// Package source fetches agent source code at a revision into a build-scoped
// workspace directory. Supported locations are GitHub and GitLab repositories,
// direct archive URLs and s3:// objects.
package source

//go:generate mockgen -destination=mock/mock_fetcher.go -package=mock github.com/kagenti/agent-operator/internal/source Fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/kagenti/agent-operator/internal/credentials"
	"github.com/kagenti/agent-operator/internal/failure"
)

const (
	// MaxDownloadSize is the maximum allowed archive size (500MB).
	MaxDownloadSize = 500 * 1024 * 1024

	// MaxFileCount is the maximum number of files allowed in an archive.
	MaxFileCount = 20000

	// MaxFileSize is the maximum size of a single file (100MB).
	MaxFileSize = 100 * 1024 * 1024

	// DefaultFetchTimeout bounds a single download.
	DefaultFetchTimeout = 5 * time.Minute

	// DefaultGitHubAPIURL is the public GitHub API endpoint.
	DefaultGitHubAPIURL = "https://api.github.com"

	// DefaultGitLabURL is the public GitLab endpoint.
	DefaultGitLabURL = "https://gitlab.com"
)

// Request identifies the source to fetch.
type Request struct {
	// RepoURL is a repository URL, an archive URL or an s3:// location.
	RepoURL string
	// Revision is a branch, tag or commit. Ignored for archive URLs.
	Revision string
	// Subfolder is the path within the source that holds the build context.
	Subfolder string
	// Credentials are nil for public sources.
	Credentials *credentials.GitCredentials
	// AttemptID names the workspace directory.
	AttemptID string
}

// Fetcher fetches source for a single build attempt.
type Fetcher interface {
	// Fetch materializes the source. The returned Handle must be released
	// when the attempt ends. Errors are *failure.Error of kind Auth,
	// NotFound, Network or Validation.
	Fetch(ctx context.Context, req Request) (*Handle, error)
}

// Handle is the fetched source artifact of one build attempt.
type Handle struct {
	// Root is the workspace directory owned by the attempt.
	Root string
	// Dir is the build context, Root joined with the subfolder.
	Dir string
	// SourceHash is the SHA-256 of the downloaded archive.
	SourceHash string
	// SourceURL is where the archive was downloaded from.
	SourceURL string
	FileCount int
	TotalSize int64

	once    sync.Once
	release func() error
	err     error
	done    bool
	mu      sync.Mutex
}

// NewHandle wraps a build context directory. release is invoked at most once;
// when nil the root directory is removed.
func NewHandle(root, dir string, release func() error) *Handle {
	h := &Handle{Root: root, Dir: dir, release: release}
	if h.release == nil {
		h.release = func() error { return os.RemoveAll(root) }
	}
	return h
}

// Release frees the workspace. Repeated calls return the first result.
func (h *Handle) Release() error {
	h.once.Do(func() {
		h.err = h.release()
		h.mu.Lock()
		h.done = true
		h.mu.Unlock()
	})
	return h.err
}

// Released reports whether Release has run.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

// Options configures an ArchiveFetcher.
type Options struct {
	// WorkspaceDir is the parent of per-attempt workspaces.
	WorkspaceDir string
	GitHubAPIURL string
	// GitHubHost is the host in repository URLs served by GitHubAPIURL.
	GitHubHost string
	GitLabURL  string
	Timeout    time.Duration
	HTTPClient *http.Client
	// S3 is used for s3:// sources. Nil builds a client per request from
	// the default AWS configuration and the source credentials.
	S3 S3Getter
}

// ArchiveFetcher downloads the source as an archive and extracts it.
type ArchiveFetcher struct {
	opts Options
	log  logr.Logger
}

var _ Fetcher = (*ArchiveFetcher)(nil)

// NewArchiveFetcher creates a fetcher with defaults applied to opts.
func NewArchiveFetcher(opts Options, log logr.Logger) *ArchiveFetcher {
	if opts.WorkspaceDir == "" {
		opts.WorkspaceDir = os.TempDir()
	}
	if opts.GitHubAPIURL == "" {
		opts.GitHubAPIURL = DefaultGitHubAPIURL
	}
	if opts.GitHubHost == "" {
		opts.GitHubHost = "github.com"
	}
	if opts.GitLabURL == "" {
		opts.GitLabURL = DefaultGitLabURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return &ArchiveFetcher{opts: opts, log: log}
}

// Fetch downloads, hashes and extracts the source into a fresh workspace.
func (f *ArchiveFetcher) Fetch(ctx context.Context, req Request) (*Handle, error) {
	if strings.TrimSpace(req.RepoURL) == "" {
		return nil, failure.Validation("repoUrl is required")
	}
	if hasParentSegment(filepath.ToSlash(req.Subfolder)) {
		return nil, failure.Validation("subfolder %q must not contain '..'", req.Subfolder)
	}

	loc, err := f.resolve(req)
	if err != nil {
		return nil, err
	}
	log := f.log.WithValues("source", loc.display, "revision", req.Revision)
	log.V(1).Info("Fetching source")

	reader, err := f.open(ctx, loc, req.Credentials)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	archive, err := f.spool(reader)
	if err != nil {
		return nil, err
	}
	defer archive.remove()

	root, err := os.MkdirTemp(f.opts.WorkspaceDir, workspacePrefix(req.AttemptID))
	if err != nil {
		return nil, failure.New(failure.KindUnknown, "create workspace", err)
	}
	handle := NewHandle(root, root, nil)

	stats, err := extractArchive(archive.file, archive.size, loc.format, root)
	if err != nil {
		_ = handle.Release()
		return nil, err
	}

	base, err := contentRoot(root)
	if err != nil {
		_ = handle.Release()
		return nil, failure.New(failure.KindUnknown, "inspect workspace", err)
	}

	dir, err := resolveSubfolder(base, req.Subfolder)
	if err != nil {
		_ = handle.Release()
		return nil, err
	}

	handle.Dir = dir
	handle.SourceHash = archive.hash
	handle.SourceURL = loc.display
	handle.FileCount = stats.files
	handle.TotalSize = stats.size

	log.Info("Fetched source", "files", stats.files, "bytes", stats.size, "sourceHash", handle.SourceHash)
	return handle, nil
}

func workspacePrefix(attemptID string) string {
	if attemptID == "" {
		return "build-"
	}
	return "build-" + attemptID + "-"
}

// contentRoot descends into the single top-level directory that repository
// archives wrap their content in.
func contentRoot(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", err
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(root, entries[0].Name()), nil
	}
	return root, nil
}

func resolveSubfolder(base, subfolder string) (string, error) {
	subfolder = strings.Trim(filepath.ToSlash(subfolder), "/")
	if subfolder == "" || subfolder == "." {
		return base, nil
	}
	dir := filepath.Join(base, filepath.FromSlash(subfolder))
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", failure.NotFound("resolve subfolder", fmt.Errorf("subfolder %q not found in source", subfolder))
	}
	return dir, nil
}

// downloadedArchive is a source archive spooled to disk.
type downloadedArchive struct {
	file   *os.File
	size   int64
	hash   string
}

func (a *downloadedArchive) remove() {
	_ = a.file.Close()
	_ = os.Remove(a.file.Name())
}

// spool spools at most MaxDownloadSize bytes of r into a temporary file
// next to the workspaces and hashes them on the way.
func (f *ArchiveFetcher) spool(r io.Reader) (*downloadedArchive, error) {
	file, err := os.CreateTemp(f.opts.WorkspaceDir, "download-*.archive")
	if err != nil {
		return nil, failure.New(failure.KindUnknown, "create download file", err)
	}
	archive := &downloadedArchive{file: file}

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(file, hasher), io.LimitReader(r, MaxDownloadSize+1))
	if err != nil {
		archive.remove()
		return nil, failure.Network("read source", err)
	}
	if n > MaxDownloadSize {
		archive.remove()
		return nil, failure.Validation("source archive exceeds maximum size of %d bytes", MaxDownloadSize)
	}

	archive.size = n
	archive.hash = hex.EncodeToString(hasher.Sum(nil))
	return archive, nil
}

// hasParentSegment reports whether the slash-separated path p has a ".." element.
func hasParentSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
