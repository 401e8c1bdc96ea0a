// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

// Package lifecycle drives AgentBuild and Component resources through build,
// deploy and deletion. Both kinds reduce to the canonical AgentSpec and share
// this engine.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
	"github.com/kagenti/agent-operator/internal/build"
	"github.com/kagenti/agent-operator/internal/controller"
	"github.com/kagenti/agent-operator/internal/controller/common"
	"github.com/kagenti/agent-operator/internal/deploy"
	"github.com/kagenti/agent-operator/internal/failure"
	"github.com/kagenti/agent-operator/internal/imagebuild"
)

//go:generate mockgen -destination=mock/mock_lifecycle.go -package=mock github.com/kagenti/agent-operator/internal/controller/lifecycle BuildRunner,WorkloadApplier

// BuildRunner runs build attempts. *build.Coordinator implements it.
type BuildRunner interface {
	Run(ctx context.Context, a build.Attempt) (*build.Outcome, error)
	InFlight(key string) bool
	ReleaseRetained(key string) error
}

// WorkloadApplier writes workloads to the cluster. *deploy.Applier implements it.
type WorkloadApplier interface {
	Apply(ctx context.Context, d *deploy.Descriptors) (deploy.ApplyResult, error)
	Delete(ctx context.Context, owner deploy.Target, name string) (bool, error)
	Readiness(ctx context.Context, namespace, name string) (*deploy.Readiness, error)
}

// DeployObserver is told about every workload apply.
type DeployObserver interface {
	DeploymentApplied(err error)
}

// statusDefaulter is implemented by kinds with status fields derived from the spec.
type statusDefaulter interface {
	DefaultStatus()
}

// componentTyped is implemented by kinds that distinguish agents from tools.
type componentTyped interface {
	Type() agentv1alpha1.ComponentType
}

// Engine reconciles one kind of agent resource.
type Engine struct {
	Client    client.Client
	Recorder  record.EventRecorder
	Builds    BuildRunner
	Workloads WorkloadApplier
	Logs      imagebuild.LogStore
	Metrics   DeployObserver
	Clock     clock.PassiveClock
	// Kind is the resource kind, used in keys, labels and log objects.
	Kind string
}

// Key returns the in-flight key of obj.
func Key(kind string, obj client.Object) string {
	return kind + "/" + obj.GetNamespace() + "/" + obj.GetName()
}

// Reconcile runs one reconciliation pass and always writes status back.
func (e *Engine) Reconcile(ctx context.Context, obj agentv1alpha1.AgentObject) (ctrl.Result, error) {
	log := ctrl.LoggerFrom(ctx).WithValues("kind", e.Kind)

	if controller.IsBeingDeleted(obj) {
		return e.handleDeletion(ctx, log, obj)
	}

	if _, err := controller.EnsureFinalizer(ctx, e.Client, obj, controller.FinalizerAgent); err != nil {
		log.Error(err, "Failed to add finalizer")
		return ctrl.Result{}, err
	}

	p := &pass{
		engine: e,
		obj:    obj,
		spec:   obj.Canonical(),
		status: obj.AgentStatus().DeepCopy(),
		key:    Key(e.Kind, obj),
		log:    log,
	}

	result := p.reconcile(ctx)

	p.status.ObservedGeneration = obj.GetGeneration()
	if err := e.persist(ctx, obj, p.status); err != nil {
		log.Error(err, "Failed to update status")
		return ctrl.Result{}, err
	}
	return result, nil
}

func (e *Engine) persist(ctx context.Context, obj agentv1alpha1.AgentObject, st *agentv1alpha1.AgentStatus) error {
	return controller.UpdateStatusWithConflictRetry(ctx, e.Client, obj, func() {
		*obj.AgentStatus() = *st.DeepCopy()
		if d, ok := obj.(statusDefaulter); ok {
			d.DefaultStatus()
		}
	})
}

func (e *Engine) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

// target returns the synthesis target of obj.
func (e *Engine) target(obj client.Object) deploy.Target {
	t := deploy.Target{Name: obj.GetName(), Namespace: obj.GetNamespace(), OwnerKind: e.Kind}
	if c, ok := obj.(componentTyped); ok {
		t.Component = strings.ToLower(string(c.Type()))
	}
	return t
}

func (e *Engine) logKey(obj client.Object) imagebuild.LogKey {
	return imagebuild.LogKey{Namespace: obj.GetNamespace(), Kind: e.Kind, Name: obj.GetName()}
}

// handleDeletion releases build-only children and, when the policy says so,
// the workload. The finalizer stays until every step succeeded.
func (e *Engine) handleDeletion(ctx context.Context, log logr.Logger, obj agentv1alpha1.AgentObject) (ctrl.Result, error) {
	if !controllerutil.ContainsFinalizer(obj, controller.FinalizerAgent) {
		return ctrl.Result{}, nil
	}

	key := Key(e.Kind, obj)
	if e.Builds.InFlight(key) {
		log.Info("Waiting for build attempt to finish before cleanup")
		return common.RequeueShort(), nil
	}

	spec := obj.Canonical()
	steps := []controller.CleanupStep{
		{Name: "workspace", Fn: func(context.Context) error {
			return e.Builds.ReleaseRetained(key)
		}},
	}
	if e.Logs != nil {
		steps = append(steps, controller.CleanupStep{Name: "build-log", Fn: func(ctx context.Context) error {
			return e.Logs.Delete(ctx, e.logKey(obj))
		}})
	}

	ds := obj.AgentStatus().DeployStatus
	name := ds.DeploymentName

	switch {
	case name == "":
	case spec.EffectiveDeletionPolicy() == agentv1alpha1.DeletionPolicyDelete:
		steps = append(steps, controller.CleanupStep{Name: "workload", Fn: func(ctx context.Context) error {
			deleted, err := e.Workloads.Delete(ctx, e.target(obj), name)
			if err != nil {
				return err
			}
			if !deleted {
				log.Info("Workload is gone or not owned by this resource, leaving it in place", "workload", name)
				return nil
			}
			controller.RecordSuccessf(e.Recorder, obj, controller.EventReasonWorkloadDeleted,
				"Deleted Deployment and Service %s", name)
			return nil
		}})
	case ds.Phase == agentv1alpha1.DeployPhaseDeployed:
		log.Info("Retaining deployed workload", "workload", name)
		controller.RecordSuccessf(e.Recorder, obj, controller.EventReasonWorkloadRetained,
			"Deployment and Service %s are retained", name)
	}

	h := controller.NewDeletionHandler(e.Client, log, e.Recorder, controller.FinalizerAgent)
	return h.HandleDeletion(ctx, obj, steps)
}

// pass holds the state of one reconciliation.
type pass struct {
	engine *Engine
	obj    agentv1alpha1.AgentObject
	spec   agentv1alpha1.AgentSpec
	status *agentv1alpha1.AgentStatus
	key    string
	log    logr.Logger
}

func (p *pass) generation() int64 {
	return p.obj.GetGeneration()
}

func (p *pass) reconcile(ctx context.Context) ctrl.Result {
	conds := &p.status.Conditions

	if p.spec.Suspend {
		p.log.V(1).Info("Reconciliation suspended")
		controller.SetCondition(conds, controller.ConditionReady, metav1.ConditionFalse,
			controller.EventReasonSuspended, "Reconciliation is suspended", p.generation())
		return common.NoRequeue()
	}

	if buildErr, otherErr := validateSplit(p.spec); buildErr != nil || otherErr != nil {
		p.validationFailed(buildErr, otherErr)
		return common.NoRequeue()
	}

	image, result, stop := p.reconcileBuild(ctx)
	if stop {
		if p.status.DeployStatus.Phase == "" {
			p.status.DeployStatus.Phase = agentv1alpha1.DeployPhaseNotDeployed
		}
	} else {
		result = p.reconcileDeploy(ctx, image)
	}
	p.summarize()
	return result
}

// validationFailed records an invalid spec. Only problems of the build
// section fail the build; the rest fail the deploy and leave a Built image as is.
func (p *pass) validationFailed(buildErr, otherErr error) {
	err := errors.Join(buildErr, otherErr)
	p.log.Info("Spec is invalid", "error", err.Error())
	kind := string(failure.KindValidation)

	if buildErr != nil && p.spec.Build != nil {
		bs := &p.status.BuildStatus
		hash, _ := common.ShortConfigHash(p.spec.Build)
		bs.Phase = agentv1alpha1.BuildPhaseFailed
		bs.Stage = ""
		bs.ErrorKind = kind
		bs.Retryable = false
		bs.Message = failure.Sanitize(buildErr)
		bs.SpecHash = hash
		controller.SetErrorCondition(&p.status.Conditions, controller.ConditionBuilt, buildErr, p.generation())
	}
	if otherErr != nil && p.spec.DeployAfterBuild {
		ds := &p.status.DeployStatus
		if ds.Phase != agentv1alpha1.DeployPhaseDeployed {
			ds.Phase = agentv1alpha1.DeployPhaseFailed
		}
		ds.ErrorKind = kind
		ds.Message = failure.Sanitize(otherErr)
		controller.SetErrorCondition(&p.status.Conditions, controller.ConditionDeployed, otherErr, p.generation())
	}
	if p.status.DeployStatus.Phase == "" {
		p.status.DeployStatus.Phase = agentv1alpha1.DeployPhaseNotDeployed
	}

	controller.SetErrorCondition(&p.status.Conditions, controller.ConditionReady, err, p.generation())
	controller.RecordError(p.engine.Recorder, p.obj, controller.EventReasonValidationFailed, err)
}

// validationRejected reports a build failure recorded by spec validation
// rather than by an attempt.
func validationRejected(bs *agentv1alpha1.BuildStatus) bool {
	return bs.Phase == agentv1alpha1.BuildPhaseFailed &&
		bs.ErrorKind == string(failure.KindValidation) && bs.Stage == ""
}

// reconcileBuild returns the image to deploy. When stop is set the pass ends
// with result.
func (p *pass) reconcileBuild(ctx context.Context) (image string, result ctrl.Result, stop bool) {
	if p.spec.Build == nil {
		if p.spec.HasPrebuiltImage() {
			return p.spec.Deploy.Image.ImageRef(), common.NoRequeue(), false
		}
		return "", common.NoRequeue(), false
	}

	bs := &p.status.BuildStatus
	hash, err := common.ShortConfigHash(p.spec.Build)
	if err != nil {
		return "", common.NoRequeue(), true
	}

	if p.engine.Builds.InFlight(p.key) {
		p.log.V(1).Info("Build attempt in flight")
		return "", common.RequeueResult(common.RequeueIntervalLong), true
	}

	if common.HashChanged(bs.SpecHash, hash) {
		p.log.Info("Build spec changed", "specHash", hash)
		*bs = agentv1alpha1.BuildStatus{
			Phase:         agentv1alpha1.BuildPhasePending,
			SpecHash:      hash,
			LastBuildTime: bs.LastBuildTime,
		}
	}
	if validationRejected(bs) {
		// The spec validates now.
		bs.Phase = agentv1alpha1.BuildPhasePending
		bs.ErrorKind = ""
		bs.Message = ""
	}

	switch bs.Phase {
	case agentv1alpha1.BuildPhaseBuilt:
		return bs.BuiltImage, common.NoRequeue(), false

	case agentv1alpha1.BuildPhaseBuilding:
		// Nothing is in flight, so the attempt was lost with a previous process.
		err := failure.Network("build attempt", errors.New("interrupted before completion"))
		p.markFailed(err)
		controller.RecordError(p.engine.Recorder, p.obj, controller.EventReasonBuildInterrupted, err)
		return "", common.RequeueForError(err, p.retries()), true

	case agentv1alpha1.BuildPhaseFailed:
		if !bs.Retryable {
			if !p.credentialsChanged(ctx) {
				return "", common.NoRequeue(), true
			}
			p.log.Info("Credential secrets changed, retrying build", "errorKind", bs.ErrorKind)
			break
		}
		if wait := p.retryWait(); wait > 0 {
			return "", common.RequeueResult(wait), true
		}
	}

	return p.runBuild(ctx, hash)
}

// retries is the number of failed attempts before the next one.
func (p *pass) retries() int {
	return max(int(p.status.BuildStatus.Attempts)-1, 0)
}

// retryWait returns how long a retryable failure still backs off.
func (p *pass) retryWait() time.Duration {
	bs := &p.status.BuildStatus
	if bs.CompletionTime == nil {
		return 0
	}
	delay := common.RetryDelay(failure.New(failure.Kind(bs.ErrorKind), "", nil), p.retries())
	return bs.CompletionTime.Add(delay).Sub(p.engine.now())
}

func (p *pass) markFailed(err error) {
	bs := &p.status.BuildStatus
	now := metav1.NewTime(p.engine.now())
	bs.Phase = agentv1alpha1.BuildPhaseFailed
	bs.ErrorKind = string(failure.KindOf(err))
	bs.Retryable = failure.IsRetryable(err)
	bs.Message = failure.Sanitize(err)
	bs.CompletionTime = &now
	controller.SetErrorCondition(&p.status.Conditions, controller.ConditionBuilt, err, p.generation())
}

func (p *pass) runBuild(ctx context.Context, hash string) (string, ctrl.Result, bool) {
	bs := &p.status.BuildStatus
	bs.Attempts++
	bs.Phase = agentv1alpha1.BuildPhasePending
	bs.Stage = ""
	bs.SpecHash = hash
	if v, err := p.credentialsVersion(ctx); err == nil {
		bs.CredentialsVersion = v
	}

	controller.RecordSuccessf(p.engine.Recorder, p.obj, controller.EventReasonBuildStarted,
		"Build attempt %d started for %s", bs.Attempts, p.spec.Build.RepoURL)

	out, err := p.engine.Builds.Run(ctx, build.Attempt{
		Key:       p.key,
		Kind:      p.engine.Kind,
		Namespace: p.obj.GetNamespace(),
		Name:      p.obj.GetName(),
		Spec:      *p.spec.Build.DeepCopy(),
		OnTransition: func(_, to build.State) {
			p.progress(ctx, to)
		},
	})
	if errors.Is(err, build.ErrAttemptInFlight) {
		bs.Attempts--
		return "", common.RequeueResult(common.RequeueIntervalLong), true
	}
	if err != nil {
		p.markFailed(err)
		return "", common.RequeueForError(err, p.retries()), true
	}

	p.recordOutcome(out)
	if !out.Succeeded() {
		return "", common.RequeueForError(out.Err, p.retries()), true
	}
	return bs.BuiltImage, common.NoRequeue(), false
}

// progress writes the stage of the running attempt so observers see it.
func (p *pass) progress(ctx context.Context, to build.State) {
	if to.Terminal() {
		return
	}
	bs := &p.status.BuildStatus
	bs.Phase, bs.Stage = to.Phase()
	bs.Message = stageMessage(to)
	controller.SetCondition(&p.status.Conditions, controller.ConditionBuilt, metav1.ConditionFalse,
		controller.ReasonBuilding, bs.Message, p.generation())

	if err := p.engine.persist(ctx, p.obj, p.status); err != nil {
		p.log.V(1).Info("Failed to write build progress", "state", to, "error", err.Error())
	}
}

func stageMessage(s build.State) string {
	switch s {
	case build.StateFetching:
		return "Fetching source"
	case build.StateBuilding:
		return "Building image"
	case build.StatePushing:
		return "Pushing image"
	default:
		return "Waiting for a build slot"
	}
}

func (p *pass) recordOutcome(out *build.Outcome) {
	bs := &p.status.BuildStatus
	bs.AttemptID = out.AttemptID
	bs.StartTime = timePtr(out.StartTime)
	bs.CompletionTime = timePtr(out.CompletionTime)
	bs.SourceHash = out.SourceHash
	bs.BuildLogRef = out.LogRef

	if out.Succeeded() {
		bs.Phase = agentv1alpha1.BuildPhaseBuilt
		bs.Stage = ""
		bs.BuiltImage = out.Image
		bs.ImageTag = out.Tag
		bs.LastBuildTime = bs.CompletionTime
		bs.ErrorKind = ""
		bs.Retryable = false
		bs.Message = "Image pushed as " + out.Tag
		controller.SetCondition(&p.status.Conditions, controller.ConditionBuilt, metav1.ConditionTrue,
			controller.EventReasonBuildSucceeded, bs.Message, p.generation())
		controller.RecordSuccessf(p.engine.Recorder, p.obj, controller.EventReasonBuildSucceeded,
			"Built %s", out.Image)
		if out.CleanupErr != nil {
			controller.RecordError(p.engine.Recorder, p.obj, controller.EventReasonCleanupFailed, out.CleanupErr)
		}
		p.log.Info("Build succeeded", "image", out.Image, "attemptID", out.AttemptID)
		return
	}

	p.markFailed(out.Err)
	bs.CompletionTime = timePtr(out.CompletionTime)
	_, bs.Stage = out.FailedIn.Phase()
	controller.RecordError(p.engine.Recorder, p.obj, controller.EventReasonBuildFailed, out.Err)
	p.log.Info("Build failed", "errorKind", bs.ErrorKind, "stage", out.FailedIn, "attemptID", out.AttemptID)
}

func (p *pass) reconcileDeploy(ctx context.Context, image string) ctrl.Result {
	ds := &p.status.DeployStatus
	conds := &p.status.Conditions

	if !p.spec.DeployAfterBuild || image == "" {
		if ds.Phase == "" || ds.Phase == agentv1alpha1.DeployPhaseDeploying {
			ds.Phase = agentv1alpha1.DeployPhaseNotDeployed
		}
		if ds.Phase == agentv1alpha1.DeployPhaseNotDeployed {
			controller.SetCondition(conds, controller.ConditionDeployed, metav1.ConditionFalse,
				controller.ReasonNotDeployed, "deployAfterBuild is not set", p.generation())
		}
		return common.NoRequeue()
	}

	target := p.engine.target(p.obj)
	desc, err := deploy.Synthesize(target, p.spec.Deploy, image)
	if err != nil {
		p.deployFailed(err)
		return common.NoRequeue()
	}

	if ds.SpecHash != desc.SpecHash || ds.Phase != agentv1alpha1.DeployPhaseDeployed {
		ds.Phase = agentv1alpha1.DeployPhaseDeploying
		ds.Ready = false
		ds.Message = "Applying workload"
		ds.DeploymentName = desc.Deployment.Name
		ds.ServiceName = desc.Service.Name
		if err := p.engine.persist(ctx, p.obj, p.status); err != nil {
			p.log.V(1).Info("Failed to write deploy progress", "error", err.Error())
		}
	}

	res, err := p.engine.Workloads.Apply(ctx, desc)
	if p.engine.Metrics != nil {
		p.engine.Metrics.DeploymentApplied(err)
	}
	if errors.Is(err, deploy.ErrOwnershipConflict) {
		ds.DeploymentName, ds.ServiceName = "", ""
		p.deployFailed(err)
		return common.NoRequeue()
	}
	if err != nil {
		ferr := failure.Network("apply workload", err)
		p.deployFailed(ferr)
		return common.RequeueForError(ferr, 0)
	}

	if res.Changed() || ds.SpecHash != desc.SpecHash {
		now := metav1.NewTime(p.engine.now())
		ds.LastTransitionTime = &now
		controller.RecordSuccessf(p.engine.Recorder, p.obj, controller.EventReasonDeployed,
			"Applied Deployment and Service %s running %s", desc.Deployment.Name, image)
		p.log.Info("Workload applied", "workload", desc.Deployment.Name, "image", image)
	}

	ds.Phase = agentv1alpha1.DeployPhaseDeployed
	ds.DeploymentName = desc.Deployment.Name
	ds.ServiceName = desc.Service.Name
	ds.Image = image
	ds.SpecHash = desc.SpecHash
	ds.ErrorKind = ""
	controller.SetCondition(conds, controller.ConditionDeployed, metav1.ConditionTrue,
		controller.EventReasonDeployed, "Workload applied", p.generation())

	return p.trackReadiness(ctx)
}

func (p *pass) trackReadiness(ctx context.Context) ctrl.Result {
	ds := &p.status.DeployStatus

	r, err := p.engine.Workloads.Readiness(ctx, p.obj.GetNamespace(), ds.DeploymentName)
	if err != nil {
		p.log.Error(err, "Failed to read workload readiness")
		ds.Message = "Readiness unknown"
		return common.RequeueMedium()
	}

	ds.Ready = r.Ready
	ds.ReadyReplicas = r.ReadyReplicas
	ds.Message = r.Message

	if r.Failed {
		ds.Phase = agentv1alpha1.DeployPhaseFailed
		controller.SetCondition(&p.status.Conditions, controller.ConditionDeployed, metav1.ConditionFalse,
			controller.EventReasonRolloutFailed, r.Message, p.generation())
		controller.RecordError(p.engine.Recorder, p.obj, controller.EventReasonRolloutFailed, errors.New(r.Message))
	}
	if !r.Ready {
		return common.RequeueMedium()
	}
	return common.NoRequeue()
}

func (p *pass) deployFailed(err error) {
	ds := &p.status.DeployStatus
	ds.Phase = agentv1alpha1.DeployPhaseFailed
	ds.Ready = false
	ds.ErrorKind = string(failure.KindOf(err))
	ds.Message = failure.Sanitize(err)
	controller.SetErrorCondition(&p.status.Conditions, controller.ConditionDeployed, err, p.generation())
	controller.RecordError(p.engine.Recorder, p.obj, controller.EventReasonDeployFailed, err)
}

// summarize derives the Ready condition from build and deploy status.
func (p *pass) summarize() {
	bs := p.status.BuildStatus
	ds := p.status.DeployStatus
	conds := &p.status.Conditions
	gen := p.generation()

	set := func(status metav1.ConditionStatus, reason, msg string) {
		if reason == "" {
			reason = string(failure.KindUnknown)
		}
		controller.SetCondition(conds, controller.ConditionReady, status, reason, msg, gen)
	}

	if p.spec.Build != nil && bs.Phase != agentv1alpha1.BuildPhaseBuilt {
		switch bs.Phase {
		case agentv1alpha1.BuildPhaseFailed:
			set(metav1.ConditionFalse, bs.ErrorKind, bs.Message)
		case agentv1alpha1.BuildPhaseBuilding:
			set(metav1.ConditionFalse, controller.ReasonBuilding, bs.Message)
		default:
			set(metav1.ConditionFalse, controller.ReasonNotBuilt, "Waiting for build")
		}
		return
	}

	if !p.spec.DeployAfterBuild {
		if p.spec.Build != nil {
			set(metav1.ConditionTrue, controller.EventReasonBuildSucceeded, bs.Message)
			return
		}
		set(metav1.ConditionTrue, controller.EventReasonReady, "Nothing to build or deploy")
		return
	}

	switch {
	case ds.Phase == agentv1alpha1.DeployPhaseFailed:
		reason := ds.ErrorKind
		if reason == "" {
			reason = controller.EventReasonRolloutFailed
		}
		set(metav1.ConditionFalse, reason, ds.Message)
	case ds.Phase == agentv1alpha1.DeployPhaseDeployed && ds.Ready:
		set(metav1.ConditionTrue, controller.EventReasonReady, fmt.Sprintf("%s is ready", ds.DeploymentName))
	default:
		set(metav1.ConditionFalse, controller.ReasonProgressing, ds.Message)
	}
}

func timePtr(t time.Time) *metav1.Time {
	if t.IsZero() {
		return nil
	}
	mt := metav1.NewTime(t)
	return &mt
}

// WorkloadRequests maps a Deployment or Service created for kind back to its owner.
func WorkloadRequests(kind string) handler.MapFunc {
	ownerKind := strings.ToLower(kind)
	return func(_ context.Context, obj client.Object) []reconcile.Request {
		labels := obj.GetLabels()
		if labels[agentv1alpha1.LabelManagedBy] != agentv1alpha1.ManagedByValue ||
			labels[agentv1alpha1.LabelOwnerKind] != ownerKind {
			return nil
		}
		name := obj.GetAnnotations()[agentv1alpha1.AnnotationOwnerName]
		if name == "" {
			name = labels[agentv1alpha1.LabelOwnerName]
		}
		if name == "" {
			return nil
		}
		return []reconcile.Request{{
			NamespacedName: types.NamespacedName{Namespace: obj.GetNamespace(), Name: name},
		}}
	}
}
