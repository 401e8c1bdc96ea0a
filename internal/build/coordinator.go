// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

// Package build runs image build attempts: it fetches source, builds and
// pushes the image, and releases the build workspace.
package build

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/clock"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
	"github.com/kagenti/agent-operator/internal/credentials"
	"github.com/kagenti/agent-operator/internal/failure"
	"github.com/kagenti/agent-operator/internal/imagebuild"
	"github.com/kagenti/agent-operator/internal/source"
)

// DefaultMaxConcurrentBuilds bounds builds across all resources.
const DefaultMaxConcurrentBuilds = 4

// ErrAttemptInFlight is returned when the resource already has a running attempt.
var ErrAttemptInFlight = errors.New("build attempt already in flight")

// CredentialSource resolves the Secrets referenced by a build.
type CredentialSource interface {
	LoadGitCredentials(ctx context.Context, namespace string, ref *corev1.LocalObjectReference, repoUser string) (*credentials.GitCredentials, error)
	LoadRegistryAuth(ctx context.Context, namespace string, ref *corev1.LocalObjectReference, registry string) (authn.Authenticator, error)
}

// Observer is notified of attempt progress.
type Observer interface {
	Started(key string)
	Transition(key string, from, to State)
	Finished(key string, outcome *Outcome)
}

// Attempt is one requested build.
type Attempt struct {
	// Key identifies the resource, Kind/namespace/name.
	Key       string
	Kind      string
	Namespace string
	Name      string
	Spec      agentv1alpha1.BuildSpec
	// OnTransition is called synchronously on each state change.
	OnTransition func(from, to State)
}

// Outcome is the result of an attempt that ran.
type Outcome struct {
	AttemptID string
	State     State
	// FailedIn is the state the attempt was in when it failed.
	FailedIn   State
	Image      string
	Tag        string
	Digest     string
	LogRef     string
	SourceHash string
	Err        error
	// CleanupErr is a workspace release failure after a successful build.
	CleanupErr error
	// Retained is set when the workspace was kept for later inspection.
	Retained       bool
	StartTime      time.Time
	CompletionTime time.Time
}

// Succeeded reports whether the image was built and pushed.
func (o *Outcome) Succeeded() bool {
	return o != nil && o.State == StateBuilt
}

// Options configures a Coordinator.
type Options struct {
	Fetcher         source.Fetcher
	Builder         imagebuild.Builder
	Credentials     CredentialSource
	Clock           clock.PassiveClock
	Observer        Observer
	DefaultRegistry string
	MaxConcurrent   int64
}

// Coordinator runs build attempts. It allows at most one attempt per key.
type Coordinator struct {
	fetcher         source.Fetcher
	builder         imagebuild.Builder
	creds           CredentialSource
	clock           clock.PassiveClock
	observer        Observer
	defaultRegistry string
	sem             *semaphore.Weighted
	log             logr.Logger

	mu       sync.Mutex
	inFlight map[string]string
	retained map[string]*source.Handle
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(opts Options, log logr.Logger) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrentBuilds
	}
	return &Coordinator{
		fetcher:         opts.Fetcher,
		builder:         opts.Builder,
		creds:           opts.Credentials,
		clock:           opts.Clock,
		observer:        opts.Observer,
		defaultRegistry: opts.DefaultRegistry,
		sem:             semaphore.NewWeighted(opts.MaxConcurrent),
		log:             log,
		inFlight:        map[string]string{},
		retained:        map[string]*source.Handle{},
	}
}

// InFlight reports whether key has a running attempt.
func (c *Coordinator) InFlight(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[key]
	return ok
}

// Retained reports whether a workspace is kept for key.
func (c *Coordinator) Retained(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.retained[key]
	return ok
}

func (c *Coordinator) claim(key, attemptID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[key]; busy {
		return false
	}
	c.inFlight[key] = attemptID
	return true
}

func (c *Coordinator) unclaim(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, key)
}

// ReleaseRetained frees the workspace kept for key, if any.
func (c *Coordinator) ReleaseRetained(key string) error {
	c.mu.Lock()
	h := c.retained[key]
	delete(c.retained, key)
	c.mu.Unlock()

	if h == nil {
		return nil
	}
	return h.Release()
}

func (c *Coordinator) retain(key string, h *source.Handle) {
	c.mu.Lock()
	c.retained[key] = h
	c.mu.Unlock()
}

// Run executes exactly one attempt. It returns ErrAttemptInFlight without
// starting when key is busy; every other failure is reported in the Outcome.
func (c *Coordinator) Run(ctx context.Context, a Attempt) (*Outcome, error) {
	attemptID := uuid.NewString()
	if !c.claim(a.Key, attemptID) {
		return nil, ErrAttemptInFlight
	}
	defer c.unclaim(a.Key)

	log := c.log.WithValues("key", a.Key, "attemptID", attemptID)
	out := &Outcome{AttemptID: attemptID, State: StatePending, StartTime: c.clock.Now()}

	if c.observer != nil {
		c.observer.Started(a.Key)
		defer func() { c.observer.Finished(a.Key, out) }()
	}

	m := newMachine(func(from, to State) {
		log.V(1).Info("Build transition", "from", from, "to", to)
		if c.observer != nil {
			c.observer.Transition(a.Key, from, to)
		}
		if a.OnTransition != nil {
			a.OnTransition(from, to)
		}
	})

	// A new attempt supersedes any workspace kept from the previous one.
	if err := c.ReleaseRetained(a.Key); err != nil {
		log.Error(err, "Failed to release retained workspace")
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		c.fail(m, out, failure.Network("wait for build slot", err))
		return out, nil
	}
	defer c.sem.Release(1)

	handle := c.run(ctx, a, attemptID, m, out)

	if out.State == StateFailed {
		if handle != nil {
			if err := handle.Release(); err != nil {
				log.Error(err, "Failed to release workspace after failed build")
			}
		}
		log.Info("Build failed", "stage", out.FailedIn, "errorKind", failure.KindOf(out.Err))
		return out, nil
	}

	if a.Spec.ShouldCleanup() {
		if err := handle.Release(); err != nil {
			out.CleanupErr = err
			log.Error(err, "Failed to release workspace after build")
		}
	} else {
		c.retain(a.Key, handle)
		out.Retained = true
	}

	log.Info("Build succeeded", "image", out.Image)
	return out, nil
}

// run drives the pipeline and returns the workspace handle, if one was fetched.
func (c *Coordinator) run(ctx context.Context, a Attempt, attemptID string, m *machine, out *Outcome) *source.Handle {
	spec := a.Spec
	logKey := imagebuild.LogKey{Namespace: a.Namespace, Kind: a.Kind, Name: a.Name, AttemptID: attemptID}

	if err := m.to(StateFetching); err != nil {
		c.fail(m, out, err)
		return nil
	}

	gitCreds, err := c.creds.LoadGitCredentials(ctx, a.Namespace, spec.SourceCredentials, spec.RepoUser)
	if err != nil {
		c.fail(m, out, err)
		return nil
	}

	handle, err := c.fetcher.Fetch(ctx, source.Request{
		RepoURL:     spec.RepoURL,
		Revision:    spec.RevisionOrDefault(),
		Subfolder:   spec.SourceSubfolder,
		Credentials: gitCreds,
		AttemptID:   attemptID,
	})
	if err != nil {
		c.fail(m, out, err)
		return nil
	}
	out.SourceHash = handle.SourceHash

	if err := m.to(StateBuilding); err != nil {
		c.fail(m, out, err)
		return handle
	}

	img, err := c.builder.Build(ctx, imagebuild.BuildRequest{
		ContextDir: handle.Dir,
		BaseImage:  spec.BaseImage,
		BuildArgs:  buildArgs(spec.BuildArgs),
		SourceURL:  handle.SourceURL,
		Revision:   spec.RevisionOrDefault(),
		SourceHash: handle.SourceHash,
		Log:        logKey,
	})
	if err != nil {
		out.LogRef = failure.LogRefOf(err)
		c.fail(m, out, err)
		return handle
	}
	out.LogRef = img.LogRef

	if err := m.to(StatePushing); err != nil {
		c.fail(m, out, err)
		return handle
	}

	registry := spec.TargetRegistry(c.defaultRegistry)
	auth, err := c.creds.LoadRegistryAuth(ctx, a.Namespace, spec.ImageRepoCredentials, registry)
	if err != nil {
		c.fail(m, out, err)
		return handle
	}

	res, err := c.builder.Push(ctx, img, imagebuild.PushRequest{
		Target:   spec.TargetImage(a.Name, c.defaultRegistry),
		Auth:     auth,
		Insecure: spec.InsecureRegistry,
		Log:      logKey,
	})
	if err != nil {
		if ref := failure.LogRefOf(err); ref != "" {
			out.LogRef = ref
		}
		c.fail(m, out, err)
		return handle
	}

	if err := m.to(StateBuilt); err != nil {
		c.fail(m, out, err)
		return handle
	}
	out.State = StateBuilt
	out.Image = res.Image
	out.Tag = res.Tag
	out.Digest = res.Digest
	if res.LogRef != "" {
		out.LogRef = res.LogRef
	}
	out.CompletionTime = c.clock.Now()
	return handle
}

func (c *Coordinator) fail(m *machine, out *Outcome, err error) {
	out.FailedIn = m.state
	out.Err = err
	out.State = StateFailed
	out.CompletionTime = c.clock.Now()
	if !m.state.Terminal() {
		_ = m.to(StateFailed)
	}
}

func buildArgs(params []agentv1alpha1.ParameterSpec) []imagebuild.BuildArg {
	if len(params) == 0 {
		return nil
	}
	args := make([]imagebuild.BuildArg, 0, len(params))
	for _, p := range params {
		args = append(args, imagebuild.BuildArg{Name: p.Name, Value: p.Value})
	}
	return args
}
