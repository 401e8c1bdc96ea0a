// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

// Package imagebuild assembles container images from a fetched build context
// and pushes them to a registry. Images are built by appending a single
// reproducible layer to a base image, so no container runtime is required.
package imagebuild

//go:generate mockgen -destination=mock/mock_builder.go -package=mock github.com/kagenti/agent-operator/internal/imagebuild Builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/empty"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"

	"github.com/kagenti/agent-operator/internal/failure"
)

const (
	// DefaultBaseImage is used when neither the resource nor the build file names one.
	DefaultBaseImage = "python:3.12-slim"

	// DefaultWorkdir is where the build context lands in the image.
	DefaultWorkdir = "/app"

	// ScratchImage selects an empty base.
	ScratchImage = "scratch"

	// Image labels written on every build.
	LabelSource     = "org.opencontainers.image.source"
	LabelRevision   = "org.opencontainers.image.revision"
	LabelSourceHash = "dev.kagenti.agent.source-hash"
)

// BuildArg is a name/value set as an image environment variable.
type BuildArg struct {
	Name  string
	Value string
}

// BuildRequest describes one image build.
type BuildRequest struct {
	// ContextDir is the fetched build context.
	ContextDir string
	// BaseImage overrides the default base image. The build file wins over both.
	BaseImage  string
	BuildArgs  []BuildArg
	SourceURL  string
	Revision   string
	SourceHash string
	// Log identifies where the build log is stored.
	Log LogKey
}

// PushRequest describes where an image is pushed.
type PushRequest struct {
	// Target is registry/repository:tag.
	Target   string
	Auth     authn.Authenticator
	Insecure bool
	Log      LogKey
}

// Image is a built, not yet pushed, image.
type Image struct {
	image  v1.Image
	log    *buildLog
	Digest string
	Files  int
	LogRef string
}

// Result is a pushed image.
type Result struct {
	// Image is the content-addressable reference registry/repo@sha256:...
	Image string
	// Tag is the tag reference registry/repo:tag
	Tag    string
	Digest string
	LogRef string
}

// Builder builds and pushes images.
type Builder interface {
	// Build assembles an image. Failures are BuildError carrying a log reference.
	Build(ctx context.Context, req BuildRequest) (*Image, error)
	// Push uploads the image, overwriting the tag. Failures are PushError.
	Push(ctx context.Context, img *Image, req PushRequest) (*Result, error)
}

// Options configures a LayerBuilder.
type Options struct {
	DefaultBaseImage string
	// BaseKeychain resolves credentials for base image pulls.
	BaseKeychain authn.Keychain
	Platform     *v1.Platform
	LogStore     LogStore
	// Transport overrides the HTTP transport for registry traffic.
	Transport http.RoundTripper
}

// LayerBuilder appends the build context as a layer on a base image.
type LayerBuilder struct {
	opts Options
	log  logr.Logger
}

var _ Builder = (*LayerBuilder)(nil)

// NewLayerBuilder creates a builder with defaults applied to opts.
func NewLayerBuilder(opts Options, log logr.Logger) *LayerBuilder {
	if opts.DefaultBaseImage == "" {
		opts.DefaultBaseImage = DefaultBaseImage
	}
	if opts.BaseKeychain == nil {
		opts.BaseKeychain = authn.DefaultKeychain
	}
	if opts.Platform == nil {
		opts.Platform = &v1.Platform{OS: "linux", Architecture: "amd64"}
	}
	if opts.LogStore == nil {
		opts.LogStore = NopLogStore{}
	}
	return &LayerBuilder{opts: opts, log: log}
}

// Build assembles the image. It never consults the target registry, so a
// reused tag always gets a fresh image.
func (b *LayerBuilder) Build(ctx context.Context, req BuildRequest) (*Image, error) {
	blog := newBuildLog()
	blog.Printf("build context: %s", req.SourceURL)

	img, files, err := b.assemble(ctx, req, blog)
	if err != nil {
		blog.Printf("ERROR: %v", err)
		ref := b.storeLog(ctx, req.Log, blog)
		var fe *failure.Error
		if errors.As(err, &fe) {
			fe.LogRef = ref
			return nil, fe
		}
		return nil, failure.Build("build image", ref, err)
	}

	digest, err := img.Digest()
	if err != nil {
		ref := b.storeLog(ctx, req.Log, blog)
		return nil, failure.Build("compute image digest", ref, err)
	}
	blog.Printf("built image %s (%d files)", digest, files)

	return &Image{
		image:  img,
		log:    blog,
		Digest: digest.String(),
		Files:  files,
		LogRef: b.storeLog(ctx, req.Log, blog),
	}, nil
}

func (b *LayerBuilder) assemble(ctx context.Context, req BuildRequest, blog *buildLog) (v1.Image, int, error) {
	bf, err := LoadBuildFile(req.ContextDir)
	if err != nil {
		return nil, 0, err
	}
	if bf == nil {
		if recipe := detectContainerRecipe(req.ContextDir); recipe != "" {
			return nil, 0, fmt.Errorf("%w: found %s, add %s to describe the image", ErrUnsupportedRecipe, recipe, BuildFileName)
		}
		bf = &BuildFile{}
	} else {
		blog.Printf("loaded %s", BuildFileName)
	}

	baseRef := firstNonEmpty(bf.BaseImage, req.BaseImage, b.opts.DefaultBaseImage)
	blog.Printf("base image: %s", baseRef)
	base, err := b.pullBase(ctx, baseRef)
	if err != nil {
		return nil, 0, err
	}

	workdir := firstNonEmpty(bf.Workdir, DefaultWorkdir)
	layer, files, err := buildLayer(req.ContextDir, workdir)
	if err != nil {
		return nil, 0, err
	}
	blog.Printf("packed %d files into %s", files, workdir)

	img, err := mutate.AppendLayers(base, layer)
	if err != nil {
		return nil, 0, fmt.Errorf("append layer: %w", err)
	}

	cfgFile, err := img.ConfigFile()
	if err != nil {
		return nil, 0, fmt.Errorf("read base config: %w", err)
	}
	cfg := *cfgFile.Config.DeepCopy()
	applyConfig(&cfg, bf, req, workdir)

	img, err = mutate.Config(img, cfg)
	if err != nil {
		return nil, 0, fmt.Errorf("set image config: %w", err)
	}
	img, err = mutate.CreatedAt(img, v1.Time{Time: epoch})
	if err != nil {
		return nil, 0, fmt.Errorf("set created time: %w", err)
	}
	return img, files, nil
}

func applyConfig(cfg *v1.Config, bf *BuildFile, req BuildRequest, workdir string) {
	cfg.WorkingDir = workdir

	env := map[string]string{}
	for _, kv := range cfg.Env {
		k, v, _ := strings.Cut(kv, "=")
		env[k] = v
	}
	for k, v := range bf.Env {
		env[k] = v
	}
	for _, arg := range req.BuildArgs {
		env[arg.Name] = arg.Value
	}
	cfg.Env = envList(env)

	if len(bf.Entrypoint) > 0 {
		cfg.Entrypoint = bf.Entrypoint
	}
	if len(bf.Cmd) > 0 {
		cfg.Cmd = bf.Cmd
	}

	if len(bf.ExposedPorts) > 0 {
		if cfg.ExposedPorts == nil {
			cfg.ExposedPorts = map[string]struct{}{}
		}
		for _, p := range bf.ExposedPorts {
			cfg.ExposedPorts[fmt.Sprintf("%d/tcp", p)] = struct{}{}
		}
	}

	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
	for k, v := range bf.Labels {
		cfg.Labels[k] = v
	}
	setIfNotEmpty(cfg.Labels, LabelSource, req.SourceURL)
	setIfNotEmpty(cfg.Labels, LabelRevision, req.Revision)
	setIfNotEmpty(cfg.Labels, LabelSourceHash, req.SourceHash)
}

func (b *LayerBuilder) pullBase(ctx context.Context, ref string) (v1.Image, error) {
	if ref == ScratchImage {
		return empty.Image, nil
	}

	parsed, err := name.ParseReference(ref)
	if err != nil {
		return nil, fmt.Errorf("parse base image %q: %w", ref, err)
	}

	opts := []remote.Option{
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(b.opts.BaseKeychain),
		remote.WithPlatform(*b.opts.Platform),
	}
	if b.opts.Transport != nil {
		opts = append(opts, remote.WithTransport(b.opts.Transport))
	}

	img, err := remote.Image(parsed, opts...)
	if err != nil {
		if isTransient(err) {
			return nil, failure.Network("pull base image "+ref, err)
		}
		return nil, fmt.Errorf("pull base image %q: %w", ref, err)
	}
	return img, nil
}

// Push writes the image and returns its digest reference.
func (b *LayerBuilder) Push(ctx context.Context, img *Image, req PushRequest) (*Result, error) {
	if img == nil || img.image == nil {
		return nil, failure.Push("push image", errors.New("no image to push"))
	}

	var nameOpts []name.Option
	if req.Insecure {
		nameOpts = append(nameOpts, name.Insecure)
	}
	ref, err := name.ParseReference(req.Target, nameOpts...)
	if err != nil {
		return nil, failure.Validation("invalid image reference %q: %v", req.Target, err)
	}

	auth := req.Auth
	if auth == nil {
		auth = authn.Anonymous
	}
	opts := []remote.Option{remote.WithContext(ctx), remote.WithAuth(auth)}
	if b.opts.Transport != nil {
		opts = append(opts, remote.WithTransport(b.opts.Transport))
	}

	log := b.log.WithValues("target", ref.String())
	log.V(1).Info("Pushing image", "digest", img.Digest)
	img.log.Printf("pushing %s", ref.String())

	if err := remote.Write(ref, img.image, opts...); err != nil {
		img.log.Printf("ERROR: push failed: %v", err)
		logRef := b.storeLog(ctx, req.Log, img.log)
		pushErr := failure.Push("push image "+ref.Context().String(), err)
		pushErr.LogRef = logRef
		return nil, pushErr
	}

	digestRef := ref.Context().Digest(img.Digest)
	img.log.Printf("pushed %s", digestRef.String())
	logRef := b.storeLog(ctx, req.Log, img.log)

	log.Info("Pushed image", "image", digestRef.String())
	return &Result{
		Image:  digestRef.String(),
		Tag:    ref.String(),
		Digest: img.Digest,
		LogRef: logRef,
	}, nil
}

// storeLog persists the build log. Storage failures are logged and yield "".
func (b *LayerBuilder) storeLog(ctx context.Context, key LogKey, blog *buildLog) string {
	if key.Name == "" {
		return ""
	}
	ref, err := b.opts.LogStore.Put(ctx, key, blog.Bytes())
	if err != nil {
		b.log.Error(err, "Failed to store build log", "name", key.Name, "namespace", key.Namespace)
		return ""
	}
	return ref
}

// isTransient reports registry errors worth retrying.
func isTransient(err error) bool {
	var terr *transport.Error
	if errors.As(err, &terr) {
		return terr.StatusCode >= 500 || terr.StatusCode == http.StatusTooManyRequests
	}
	var nerr net.Error
	return errors.As(err, &nerr) || errors.Is(err, context.DeadlineExceeded)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func setIfNotEmpty(m map[string]string, k, v string) {
	if v != "" {
		m[k] = v
	}
}

// buildLog accumulates build output, each line prefixed with the time elapsed
// since the build started.
type buildLog struct {
	buf   bytes.Buffer
	start time.Time
}

func newBuildLog() *buildLog {
	return &buildLog{start: time.Now()}
}

func (l *buildLog) Printf(format string, args ...any) {
	fmt.Fprintf(&l.buf, "[%6.1fs] ", time.Since(l.start).Seconds())
	fmt.Fprintf(&l.buf, format, args...)
	l.buf.WriteByte('\n')
}

func (l *buildLog) Bytes() []byte {
	return l.buf.Bytes()
}
