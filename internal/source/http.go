// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/kagenti/agent-operator/internal/credentials"
	"github.com/kagenti/agent-operator/internal/failure"
)

// open returns a reader over the archive bytes at loc.
func (f *ArchiveFetcher) open(ctx context.Context, loc *location, creds *credentials.GitCredentials) (io.ReadCloser, error) {
	if loc.kind == kindS3 {
		return f.openS3(ctx, loc, creds)
	}
	return f.download(ctx, loc, creds)
}

// download fetches the archive over HTTP.
func (f *ArchiveFetcher) download(ctx context.Context, loc *location, creds *credentials.GitCredentials) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.url, nil)
	if err != nil {
		cancel()
		return nil, failure.Validation("create request for %s: %v", loc.display, err)
	}
	setAuth(req, loc.kind, creds)

	resp, err := f.opts.HTTPClient.Do(req)
	if err != nil {
		cancel()
		if errors.Is(err, context.Canceled) {
			return nil, failure.Network("download source", context.Canceled)
		}
		return nil, failure.Network("download source", fmt.Errorf("%s: %w", loc.display, unwrapURLError(err)))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		cancel()
		return nil, failure.FromHTTPStatus("download source "+loc.display, resp.StatusCode, resp.Status)
	}

	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

// setAuth applies the credential in the form each host expects.
func setAuth(req *http.Request, kind locationKind, creds *credentials.GitCredentials) {
	switch kind {
	case kindGitHub:
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if creds != nil {
			req.Header.Set("Authorization", "Bearer "+creds.Token)
		}
	case kindGitLab:
		if creds != nil {
			req.Header.Set("PRIVATE-TOKEN", creds.Token)
		}
	default:
		if creds != nil {
			user := creds.Username
			if user == "" {
				user = "git"
			}
			req.SetBasicAuth(user, creds.Token)
		}
	}
}

// unwrapURLError strips the request URL from transport errors so query
// parameters never reach status messages.
func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err
	}
	return err
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
