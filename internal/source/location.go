// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package source

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kagenti/agent-operator/internal/failure"
)

type archiveFormat string

const (
	formatTarGz archiveFormat = "tar.gz"
	formatTar   archiveFormat = "tar"
	formatZip   archiveFormat = "zip"
)

type locationKind int

const (
	kindGitHub locationKind = iota
	kindGitLab
	kindArchive
	kindS3
)

// location is a resolved download target.
type location struct {
	kind   locationKind
	url    string
	bucket string
	key    string
	format archiveFormat
	// display is safe to log and record in status.
	display string
}

func (f *ArchiveFetcher) resolve(req Request) (*location, error) {
	raw := strings.TrimSpace(req.RepoURL)
	revision := req.Revision
	if revision == "" {
		revision = "main"
	}

	if strings.HasPrefix(raw, "s3://") {
		return resolveS3(raw)
	}

	if format, ok := formatFromName(raw); ok && hasScheme(raw) {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, failure.Validation("invalid archive URL: %v", err)
		}
		return &location{kind: kindArchive, url: raw, format: format, display: redactURL(u)}, nil
	}

	host, path, err := splitRepoURL(raw)
	if err != nil {
		return nil, err
	}

	switch {
	case host == f.opts.GitHubHost:
		owner, repo, ok := strings.Cut(path, "/")
		if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
			return nil, failure.Validation("invalid GitHub repository %q: expected owner/repo", raw)
		}
		return &location{
			kind: kindGitHub,
			url: fmt.Sprintf("%s/repos/%s/%s/tarball/%s",
				strings.TrimSuffix(f.opts.GitHubAPIURL, "/"), owner, repo, url.PathEscape(revision)),
			format:  formatTarGz,
			display: fmt.Sprintf("https://%s/%s@%s", host, path, revision),
		}, nil
	case host == gitLabHost(f.opts.GitLabURL):
		return &location{
			kind: kindGitLab,
			url: fmt.Sprintf("%s/api/v4/projects/%s/repository/archive.tar.gz?sha=%s",
				strings.TrimSuffix(f.opts.GitLabURL, "/"), url.PathEscape(path), url.QueryEscape(revision)),
			format:  formatTarGz,
			display: fmt.Sprintf("https://%s/%s@%s", host, path, revision),
		}, nil
	default:
		return nil, failure.Validation("unsupported source host %q: use %s, %s, an archive URL or s3://",
			host, f.opts.GitHubHost, gitLabHost(f.opts.GitLabURL))
	}
}

func resolveS3(raw string) (*location, error) {
	rest := strings.TrimPrefix(raw, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return nil, failure.Validation("invalid S3 location %q: expected s3://bucket/key", raw)
	}
	format, ok := formatFromName(key)
	if !ok {
		format = formatTarGz
	}
	return &location{kind: kindS3, bucket: bucket, key: key, format: format, display: raw}, nil
}

// splitRepoURL accepts https://host/path(.git), host/path and git@host:path.
func splitRepoURL(raw string) (host, path string, err error) {
	s := raw
	if strings.HasPrefix(s, "git@") {
		s = strings.Replace(strings.TrimPrefix(s, "git@"), ":", "/", 1)
	} else if hasScheme(s) {
		u, perr := url.Parse(s)
		if perr != nil {
			return "", "", failure.Validation("invalid repository URL: %v", perr)
		}
		s = u.Host + u.Path
	}
	host, path, ok := strings.Cut(s, "/")
	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	if !ok || host == "" || path == "" {
		return "", "", failure.Validation("invalid repository URL %q", raw)
	}
	return strings.ToLower(host), path, nil
}

func formatFromName(name string) (archiveFormat, bool) {
	lower := strings.ToLower(name)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return formatTarGz, true
	case strings.HasSuffix(lower, ".tar"):
		return formatTar, true
	case strings.HasSuffix(lower, ".zip"):
		return formatZip, true
	default:
		return "", false
	}
}

func hasScheme(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

func gitLabHost(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "gitlab.com"
	}
	return strings.ToLower(u.Host)
}

// redactURL drops userinfo and query so the location is safe to log.
func redactURL(u *url.URL) string {
	c := *u
	c.User = nil
	c.RawQuery = ""
	c.Fragment = ""
	return c.String()
}
