// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package lifecycle

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/intstr"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/record"
	clocktesting "k8s.io/utils/clock/testing"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
	"github.com/kagenti/agent-operator/internal/build"
	"github.com/kagenti/agent-operator/internal/controller"
	"github.com/kagenti/agent-operator/internal/controller/common"
	"github.com/kagenti/agent-operator/internal/controller/lifecycle/mock"
	"github.com/kagenti/agent-operator/internal/credentials"
	"github.com/kagenti/agent-operator/internal/deploy"
	"github.com/kagenti/agent-operator/internal/failure"
	"github.com/kagenti/agent-operator/internal/imagebuild"
	imagemock "github.com/kagenti/agent-operator/internal/imagebuild/mock"
	"github.com/kagenti/agent-operator/internal/source"
	sourcemock "github.com/kagenti/agent-operator/internal/source/mock"
)

const (
	testKey       = "AgentBuild/team1/weather"
	builtImage    = "registry.local:5000/weather@sha256:1234"
	builtImageTag = "registry.local:5000/weather:latest"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type countingLogs struct {
	deletes atomic.Int32
}

func (l *countingLogs) Put(context.Context, imagebuild.LogKey, []byte) (string, error) {
	return "", nil
}

func (l *countingLogs) Delete(context.Context, imagebuild.LogKey) error {
	l.deletes.Add(1)
	return nil
}

type anonymousCreds struct{}

func (anonymousCreds) LoadGitCredentials(context.Context, string, *corev1.LocalObjectReference, string) (*credentials.GitCredentials, error) {
	return nil, nil
}

func (anonymousCreds) LoadRegistryAuth(context.Context, string, *corev1.LocalObjectReference, string) (authn.Authenticator, error) {
	return authn.Anonymous, nil
}

type harness struct {
	client   client.Client
	recorder *record.FakeRecorder
	clock    *clocktesting.FakePassiveClock
	logs     *countingLogs
	engine   *Engine
}

func newHarness(t *testing.T, runner BuildRunner, objs ...client.Object) *harness {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(scheme))
	require.NoError(t, agentv1alpha1.AddToScheme(scheme))

	c := fake.NewClientBuilder().
		WithScheme(scheme).
		WithObjects(objs...).
		WithStatusSubresource(&agentv1alpha1.AgentBuild{}, &agentv1alpha1.Component{}).
		Build()

	h := &harness{
		client:   c,
		recorder: record.NewFakeRecorder(100),
		clock:    clocktesting.NewFakePassiveClock(testNow),
		logs:     &countingLogs{},
	}
	h.engine = &Engine{
		Client:    c,
		Recorder:  h.recorder,
		Builds:    runner,
		Workloads: deploy.NewApplier(c),
		Logs:      h.logs,
		Clock:     h.clock,
		Kind:      "AgentBuild",
	}
	return h
}

func (h *harness) get(t *testing.T) *agentv1alpha1.AgentBuild {
	t.Helper()
	ab := &agentv1alpha1.AgentBuild{}
	require.NoError(t, h.client.Get(context.Background(), client.ObjectKey{Namespace: "team1", Name: "weather"}, ab))
	return ab
}

func (h *harness) reconcile(t *testing.T) reconcile.Result {
	t.Helper()
	res, err := h.engine.Reconcile(context.Background(), h.get(t))
	require.NoError(t, err)
	return res
}

func (h *harness) events() []string {
	var out []string
	for {
		select {
		case e := <-h.recorder.Events:
			out = append(out, e)
		default:
			return out
		}
	}
}

func hasEvent(events []string, reason string) bool {
	for _, e := range events {
		if strings.Contains(e, " "+reason+" ") {
			return true
		}
	}
	return false
}

func newAgent(mutate func(*agentv1alpha1.AgentSpec)) *agentv1alpha1.AgentBuild {
	ab := &agentv1alpha1.AgentBuild{
		ObjectMeta: metav1.ObjectMeta{
			Name:       "weather",
			Namespace:  "team1",
			Generation: 1,
			Finalizers: []string{controller.FinalizerAgent},
		},
		Spec: agentv1alpha1.AgentBuildSpec{AgentSpec: agentv1alpha1.AgentSpec{
			Build: &agentv1alpha1.BuildSpec{
				RepoURL:         "github.com/acme/agents.git",
				SourceSubfolder: "weather",
			},
		}},
	}
	if mutate != nil {
		mutate(&ab.Spec.AgentSpec)
	}
	return ab
}

func buildHash(t *testing.T, ab *agentv1alpha1.AgentBuild) string {
	t.Helper()
	hash, err := common.ShortConfigHash(ab.Spec.Build)
	require.NoError(t, err)
	return hash
}

func builtOutcome() *build.Outcome {
	return &build.Outcome{
		AttemptID:      "a1",
		State:          build.StateBuilt,
		Image:          builtImage,
		Tag:            builtImageTag,
		LogRef:         "configmap/team1/weather-build-log",
		SourceHash:     "abc",
		StartTime:      testNow,
		CompletionTime: testNow.Add(time.Minute),
	}
}

func failedOutcome(in build.State, err error) *build.Outcome {
	return &build.Outcome{
		AttemptID:      "a1",
		State:          build.StateFailed,
		FailedIn:       in,
		Err:            err,
		StartTime:      testNow,
		CompletionTime: testNow.Add(time.Second),
	}
}

func TestReconcile_NoBuildSectionNeverRunsBuilds(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	// No expectations: any call to the runner fails the test.

	ab := newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.Build = nil
		s.DeployAfterBuild = true
		s.Deploy = &agentv1alpha1.DeploySpec{
			Image: &agentv1alpha1.ImageSpec{Image: "acme/weather", ImageTag: "v1", ImageRegistry: "ghcr.io"},
		}
	})
	h := newHarness(t, runner, ab)

	res := h.reconcile(t)
	assert.Equal(t, common.RequeueIntervalMedium, res.RequeueAfter)

	got := h.get(t)
	assert.Empty(t, got.Status.BuildStatus.Phase)
	assert.Equal(t, agentv1alpha1.DeployPhaseDeployed, got.Status.DeployStatus.Phase)
	assert.Equal(t, "ghcr.io/acme/weather:v1", got.Status.DeployStatus.Image)

	dep := &appsv1.Deployment{}
	require.NoError(t, h.client.Get(context.Background(), client.ObjectKey{Namespace: "team1", Name: "weather"}, dep))
	assert.Equal(t, "ghcr.io/acme/weather:v1", dep.Spec.Template.Spec.Containers[0].Image)
}

func TestReconcile_BuiltWithoutDeploy(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a build.Attempt) (*build.Outcome, error) {
			assert.Equal(t, testKey, a.Key)
			assert.Equal(t, "github.com/acme/agents.git", a.Spec.RepoURL)
			return builtOutcome(), nil
		})

	h := newHarness(t, runner, newAgent(nil))
	res := h.reconcile(t)
	assert.Zero(t, res.RequeueAfter)

	got := h.get(t)
	bs := got.Status.BuildStatus
	assert.Equal(t, agentv1alpha1.BuildPhaseBuilt, bs.Phase)
	assert.Empty(t, bs.Stage)
	assert.Equal(t, builtImage, bs.BuiltImage)
	assert.Equal(t, builtImageTag, bs.ImageTag)
	assert.Equal(t, "configmap/team1/weather-build-log", bs.BuildLogRef)
	assert.Equal(t, "abc", bs.SourceHash)
	assert.Equal(t, "a1", bs.AttemptID)
	assert.EqualValues(t, 1, bs.Attempts)
	require.NotNil(t, bs.LastBuildTime)
	assert.Equal(t, agentv1alpha1.DeployPhaseNotDeployed, got.Status.DeployStatus.Phase)
	assert.Equal(t, int64(1), got.Status.ObservedGeneration)

	assert.True(t, meta.IsStatusConditionTrue(got.Status.Conditions, controller.ConditionBuilt))
	assert.True(t, meta.IsStatusConditionTrue(got.Status.Conditions, controller.ConditionReady))
	assert.True(t, meta.IsStatusConditionFalse(got.Status.Conditions, controller.ConditionDeployed))

	events := h.events()
	assert.True(t, hasEvent(events, controller.EventReasonBuildStarted))
	assert.True(t, hasEvent(events, controller.EventReasonBuildSucceeded))

	var deps appsv1.DeploymentList
	require.NoError(t, h.client.List(context.Background(), &deps))
	assert.Empty(t, deps.Items)
}

func TestReconcile_BuiltSpecIsNotRebuilt(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)

	ab := newAgent(nil)
	ab.Status.BuildStatus = agentv1alpha1.BuildStatus{
		Phase:      agentv1alpha1.BuildPhaseBuilt,
		SpecHash:   buildHash(t, ab),
		BuiltImage: builtImage,
		Attempts:   1,
	}
	h := newHarness(t, runner, ab)
	h.reconcile(t)

	assert.Equal(t, agentv1alpha1.BuildPhaseBuilt, h.get(t).Status.BuildStatus.Phase)
}

func TestReconcile_DeploysBuiltImage(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(builtOutcome(), nil)

	h := newHarness(t, runner, newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.DeployAfterBuild = true
		s.Deploy = &agentv1alpha1.DeploySpec{
			Env: []corev1.EnvVar{{Name: "LOG_LEVEL", Value: "debug"}},
		}
	}))

	res := h.reconcile(t)
	assert.Equal(t, common.RequeueIntervalMedium, res.RequeueAfter)

	got := h.get(t)
	ds := got.Status.DeployStatus
	assert.Equal(t, agentv1alpha1.BuildPhaseBuilt, got.Status.BuildStatus.Phase)
	assert.Equal(t, agentv1alpha1.DeployPhaseDeployed, ds.Phase)
	assert.Equal(t, builtImage, ds.Image)
	assert.Equal(t, "weather", ds.DeploymentName)
	assert.Equal(t, "weather", ds.ServiceName)
	assert.NotEmpty(t, ds.SpecHash)
	assert.False(t, ds.Ready)
	assert.True(t, meta.IsStatusConditionTrue(got.Status.Conditions, controller.ConditionDeployed))

	ready := meta.FindStatusCondition(got.Status.Conditions, controller.ConditionReady)
	require.NotNil(t, ready)
	assert.Equal(t, metav1.ConditionFalse, ready.Status)
	assert.Equal(t, controller.ReasonProgressing, ready.Reason)

	dep := &appsv1.Deployment{}
	require.NoError(t, h.client.Get(context.Background(), client.ObjectKey{Namespace: "team1", Name: "weather"}, dep))
	assert.Equal(t, builtImage, dep.Spec.Template.Spec.Containers[0].Image)
	assert.Equal(t, "agentbuild", dep.Labels[agentv1alpha1.LabelOwnerKind])

	svc := &corev1.Service{}
	require.NoError(t, h.client.Get(context.Background(), client.ObjectKey{Namespace: "team1", Name: "weather"}, svc))
	assert.Equal(t, corev1.ServiceTypeClusterIP, svc.Spec.Type)

	assert.True(t, hasEvent(h.events(), controller.EventReasonDeployed))
}

func TestReconcile_ReadyAfterRollout(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false).AnyTimes()
	workloads := mock.NewMockWorkloadApplier(mockCtrl)

	ab := newAgent(func(s *agentv1alpha1.AgentSpec) { s.DeployAfterBuild = true })
	ab.Status.BuildStatus = agentv1alpha1.BuildStatus{
		Phase:      agentv1alpha1.BuildPhaseBuilt,
		SpecHash:   buildHash(t, ab),
		BuiltImage: builtImage,
	}
	h := newHarness(t, runner, ab)
	h.engine.Workloads = workloads

	workloads.EXPECT().Apply(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *deploy.Descriptors) (deploy.ApplyResult, error) {
			assert.Equal(t, builtImage, d.Deployment.Spec.Template.Spec.Containers[0].Image)
			return deploy.ApplyResult{}, nil
		})
	workloads.EXPECT().Readiness(gomock.Any(), "team1", "weather").
		Return(&deploy.Readiness{Found: true, Ready: true, DesiredReplicas: 1, ReadyReplicas: 1, Message: "1 of 1 replicas ready"}, nil)

	res := h.reconcile(t)
	assert.Zero(t, res.RequeueAfter)

	got := h.get(t)
	assert.True(t, got.Status.DeployStatus.Ready)
	assert.EqualValues(t, 1, got.Status.DeployStatus.ReadyReplicas)
	assert.True(t, meta.IsStatusConditionTrue(got.Status.Conditions, controller.ConditionReady))
}

func TestReconcile_RolloutDeadlineFailsDeploy(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)
	workloads := mock.NewMockWorkloadApplier(mockCtrl)

	ab := newAgent(func(s *agentv1alpha1.AgentSpec) { s.DeployAfterBuild = true })
	ab.Status.BuildStatus = agentv1alpha1.BuildStatus{
		Phase:      agentv1alpha1.BuildPhaseBuilt,
		SpecHash:   buildHash(t, ab),
		BuiltImage: builtImage,
	}
	h := newHarness(t, runner, ab)
	h.engine.Workloads = workloads

	workloads.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(deploy.ApplyResult{}, nil)
	workloads.EXPECT().Readiness(gomock.Any(), "team1", "weather").
		Return(&deploy.Readiness{Found: true, Failed: true, Message: "ReplicaSet has timed out progressing"}, nil)

	h.reconcile(t)

	got := h.get(t)
	assert.Equal(t, agentv1alpha1.DeployPhaseFailed, got.Status.DeployStatus.Phase)
	assert.True(t, meta.IsStatusConditionFalse(got.Status.Conditions, controller.ConditionReady))
	assert.True(t, hasEvent(h.events(), controller.EventReasonRolloutFailed))
}

func TestReconcile_ApplyErrorIsRetried(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)
	workloads := mock.NewMockWorkloadApplier(mockCtrl)

	ab := newAgent(func(s *agentv1alpha1.AgentSpec) { s.DeployAfterBuild = true })
	ab.Status.BuildStatus = agentv1alpha1.BuildStatus{
		Phase:      agentv1alpha1.BuildPhaseBuilt,
		SpecHash:   buildHash(t, ab),
		BuiltImage: builtImage,
	}
	h := newHarness(t, runner, ab)
	h.engine.Workloads = workloads

	workloads.EXPECT().Apply(gomock.Any(), gomock.Any()).
		Return(deploy.ApplyResult{}, errors.New("apiserver unavailable"))

	res := h.reconcile(t)
	assert.Equal(t, common.RequeueIntervalShort, res.RequeueAfter)

	got := h.get(t)
	assert.Equal(t, agentv1alpha1.DeployPhaseFailed, got.Status.DeployStatus.Phase)
	assert.Equal(t, string(failure.KindNetwork), got.Status.DeployStatus.ErrorKind)
	assert.True(t, hasEvent(h.events(), controller.EventReasonDeployFailed))
}

func TestReconcile_AuthFailureDoesNotDeploy(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(failedOutcome(build.StateFetching,
		failure.Auth("load source credentials", errors.New("secret team1/github-token has no token"))), nil)

	h := newHarness(t, runner, newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.DeployAfterBuild = true
		s.Build.SourceCredentials = &corev1.LocalObjectReference{Name: "github-token"}
	}))

	res := h.reconcile(t)
	assert.Zero(t, res.RequeueAfter)

	got := h.get(t)
	bs := got.Status.BuildStatus
	assert.Equal(t, agentv1alpha1.BuildPhaseFailed, bs.Phase)
	assert.Equal(t, agentv1alpha1.BuildStageFetching, bs.Stage)
	assert.Equal(t, string(failure.KindAuth), bs.ErrorKind)
	assert.False(t, bs.Retryable)
	assert.Equal(t, agentv1alpha1.DeployPhaseNotDeployed, got.Status.DeployStatus.Phase)

	built := meta.FindStatusCondition(got.Status.Conditions, controller.ConditionBuilt)
	require.NotNil(t, built)
	assert.Equal(t, string(failure.KindAuth), built.Reason)
	assert.True(t, hasEvent(h.events(), controller.EventReasonBuildFailed))

	var deps appsv1.DeploymentList
	require.NoError(t, h.client.List(context.Background(), &deps))
	assert.Empty(t, deps.Items)
}

func TestReconcile_InvalidPortsFailBeforeAnyObject(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)

	h := newHarness(t, runner, newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.DeployAfterBuild = true
		s.Deploy = &agentv1alpha1.DeploySpec{
			ServicePorts: []corev1.ServicePort{{Name: "http", Port: 80, TargetPort: intstr.FromInt32(9090)}},
		}
	}))

	res := h.reconcile(t)
	assert.Zero(t, res.RequeueAfter)

	got := h.get(t)
	assert.Empty(t, got.Status.BuildStatus.Phase)
	ds := got.Status.DeployStatus
	assert.Equal(t, agentv1alpha1.DeployPhaseFailed, ds.Phase)
	assert.Equal(t, string(failure.KindValidation), ds.ErrorKind)
	assert.Contains(t, ds.Message, "spec.deploy.servicePorts[0].targetPort")

	ready := meta.FindStatusCondition(got.Status.Conditions, controller.ConditionReady)
	require.NotNil(t, ready)
	assert.Equal(t, string(failure.KindValidation), ready.Reason)
	assert.True(t, hasEvent(h.events(), controller.EventReasonValidationFailed))

	var deps appsv1.DeploymentList
	require.NoError(t, h.client.List(context.Background(), &deps))
	assert.Empty(t, deps.Items)
	var svcs corev1.ServiceList
	require.NoError(t, h.client.List(context.Background(), &svcs))
	assert.Empty(t, svcs.Items)
}

func TestReconcile_FixedDeploySpecBuildsAndDeploys(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(builtOutcome(), nil)

	h := newHarness(t, runner, newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.DeployAfterBuild = true
		s.Deploy = &agentv1alpha1.DeploySpec{
			ServicePorts: []corev1.ServicePort{{Name: "http", Port: 80, TargetPort: intstr.FromInt32(9090)}},
		}
	}))
	h.reconcile(t)
	require.Equal(t, agentv1alpha1.DeployPhaseFailed, h.get(t).Status.DeployStatus.Phase)

	ab := h.get(t)
	ab.Spec.Deploy.ContainerPorts = []corev1.ContainerPort{{Name: "http", ContainerPort: 9090}}
	ab.Generation = 2
	require.NoError(t, h.client.Update(context.Background(), ab))
	h.reconcile(t)

	got := h.get(t)
	assert.Equal(t, agentv1alpha1.BuildPhaseBuilt, got.Status.BuildStatus.Phase)
	assert.Equal(t, agentv1alpha1.DeployPhaseDeployed, got.Status.DeployStatus.Phase)
	assert.Empty(t, got.Status.DeployStatus.ErrorKind)
	assert.True(t, meta.IsStatusConditionTrue(got.Status.Conditions, controller.ConditionDeployed))
}

func TestReconcile_InvalidDeployKeepsBuiltImage(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	// No expectations: validation stops the pass before the runner is asked.

	ab := newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.DeployAfterBuild = true
		s.Deploy = &agentv1alpha1.DeploySpec{
			ServicePorts: []corev1.ServicePort{{Name: "http", Port: 80, TargetPort: intstr.FromInt32(9090)}},
		}
	})
	ab.Status.BuildStatus = agentv1alpha1.BuildStatus{
		Phase:      agentv1alpha1.BuildPhaseBuilt,
		SpecHash:   buildHash(t, ab),
		BuiltImage: builtImage,
		Attempts:   1,
	}
	h := newHarness(t, runner, ab)
	h.reconcile(t)

	got := h.get(t)
	assert.Equal(t, agentv1alpha1.BuildPhaseBuilt, got.Status.BuildStatus.Phase)
	assert.Equal(t, builtImage, got.Status.BuildStatus.BuiltImage)
	assert.Equal(t, agentv1alpha1.DeployPhaseFailed, got.Status.DeployStatus.Phase)
	assert.Equal(t, string(failure.KindValidation), got.Status.DeployStatus.ErrorKind)
}

func TestReconcile_InvalidBuildSectionFailsBuild(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)

	h := newHarness(t, runner, newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.Build.SourceSubfolder = "../other"
	}))
	h.reconcile(t)

	bs := h.get(t).Status.BuildStatus
	assert.Equal(t, agentv1alpha1.BuildPhaseFailed, bs.Phase)
	assert.Equal(t, string(failure.KindValidation), bs.ErrorKind)
	assert.Contains(t, bs.Message, "spec.build.sourceSubfolder")
	assert.Empty(t, bs.Stage)
}

func TestReconcile_StaleValidationFailureIsCleared(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(builtOutcome(), nil)

	ab := newAgent(nil)
	ab.Status.BuildStatus = agentv1alpha1.BuildStatus{
		Phase:     agentv1alpha1.BuildPhaseFailed,
		ErrorKind: string(failure.KindValidation),
		SpecHash:  buildHash(t, ab),
		Message:   "spec.deploy.servicePorts[0].targetPort: Invalid value",
	}
	h := newHarness(t, runner, ab)
	h.reconcile(t)

	assert.Equal(t, agentv1alpha1.BuildPhaseBuilt, h.get(t).Status.BuildStatus.Phase)
}

func TestReconcile_RetryableFailureBacksOff(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false).Times(2)

	ab := newAgent(nil)
	completed := metav1.NewTime(testNow.Add(-4 * time.Second))
	ab.Status.BuildStatus = agentv1alpha1.BuildStatus{
		Phase:          agentv1alpha1.BuildPhaseFailed,
		ErrorKind:      string(failure.KindNetwork),
		Retryable:      true,
		SpecHash:       buildHash(t, ab),
		Attempts:       1,
		CompletionTime: &completed,
	}
	h := newHarness(t, runner, ab)

	res := h.reconcile(t)
	assert.Equal(t, 6*time.Second, res.RequeueAfter)

	h.clock.SetTime(testNow.Add(10 * time.Second))
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(builtOutcome(), nil)
	h.reconcile(t)

	bs := h.get(t).Status.BuildStatus
	assert.Equal(t, agentv1alpha1.BuildPhaseBuilt, bs.Phase)
	assert.EqualValues(t, 2, bs.Attempts)
}

func TestReconcile_PermanentFailureWaitsForSpecChange(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false).Times(2)

	ab := newAgent(nil)
	ab.Status.BuildStatus = agentv1alpha1.BuildStatus{
		Phase:     agentv1alpha1.BuildPhaseFailed,
		ErrorKind: string(failure.KindBuild),
		SpecHash:  buildHash(t, ab),
		Attempts:  3,
	}
	h := newHarness(t, runner, ab)

	res := h.reconcile(t)
	assert.Zero(t, res.RequeueAfter)
	assert.Equal(t, agentv1alpha1.BuildPhaseFailed, h.get(t).Status.BuildStatus.Phase)

	got := h.get(t)
	got.Spec.Build.Revision = "v2"
	require.NoError(t, h.client.Update(context.Background(), got))

	runner.EXPECT().Run(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a build.Attempt) (*build.Outcome, error) {
			assert.Equal(t, "v2", a.Spec.Revision)
			return builtOutcome(), nil
		})
	h.reconcile(t)

	bs := h.get(t).Status.BuildStatus
	assert.Equal(t, agentv1alpha1.BuildPhaseBuilt, bs.Phase)
	assert.EqualValues(t, 1, bs.Attempts)
}

func TestReconcile_AuthFailureRetriedWhenSecretChanges(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false).Times(3)

	ab := newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.Build.SourceCredentials = &corev1.LocalObjectReference{Name: "github-token"}
	})
	ab.Status.BuildStatus = agentv1alpha1.BuildStatus{
		Phase:              agentv1alpha1.BuildPhaseFailed,
		Stage:              agentv1alpha1.BuildStageFetching,
		ErrorKind:          string(failure.KindAuth),
		SpecHash:           buildHash(t, ab),
		Attempts:           1,
		CredentialsVersion: "github-token=",
	}
	h := newHarness(t, runner, ab)

	// The Secret is still missing: nothing to retry.
	h.reconcile(t)
	assert.Equal(t, agentv1alpha1.BuildPhaseFailed, h.get(t).Status.BuildStatus.Phase)

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "github-token", Namespace: "team1"},
		Data:       map[string][]byte{"token": []byte("ghp_x")},
	}
	require.NoError(t, h.client.Create(context.Background(), secret))

	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(builtOutcome(), nil)
	h.reconcile(t)

	bs := h.get(t).Status.BuildStatus
	assert.Equal(t, agentv1alpha1.BuildPhaseBuilt, bs.Phase)
	assert.Equal(t, "github-token="+secret.ResourceVersion, bs.CredentialsVersion)

	// A built image is not rebuilt when the Secret changes again.
	secret.Data["token"] = []byte("ghp_y")
	require.NoError(t, h.client.Update(context.Background(), secret))
	h.reconcile(t)
	assert.Equal(t, agentv1alpha1.BuildPhaseBuilt, h.get(t).Status.BuildStatus.Phase)
}

func TestReconcile_BuildErrorIgnoresSecretChanges(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)

	ab := newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.Build.SourceCredentials = &corev1.LocalObjectReference{Name: "github-token"}
	})
	ab.Status.BuildStatus = agentv1alpha1.BuildStatus{
		Phase:              agentv1alpha1.BuildPhaseFailed,
		Stage:              agentv1alpha1.BuildStageBuilding,
		ErrorKind:          string(failure.KindBuild),
		SpecHash:           buildHash(t, ab),
		Attempts:           1,
		CredentialsVersion: "github-token=",
	}
	secret := &corev1.Secret{ObjectMeta: metav1.ObjectMeta{Name: "github-token", Namespace: "team1"}}
	h := newHarness(t, runner, ab, secret)

	res := h.reconcile(t)
	assert.Zero(t, res.RequeueAfter)
	assert.Equal(t, agentv1alpha1.BuildPhaseFailed, h.get(t).Status.BuildStatus.Phase)
}

func TestSecretRequests(t *testing.T) {
	withToken := newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.Build.SourceCredentials = &corev1.LocalObjectReference{Name: "github-token"}
	})
	withRegistry := newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.Build.ImageRepoCredentials = &corev1.LocalObjectReference{Name: "github-token"}
	})
	withRegistry.Name = "forecast"
	unrelated := newAgent(nil)
	unrelated.Name = "clock"

	var listed string
	mapFn := SecretRequests(func(_ context.Context, namespace string) ([]agentv1alpha1.AgentObject, error) {
		listed = namespace
		return []agentv1alpha1.AgentObject{withToken, withRegistry, unrelated}, nil
	})

	secret := &corev1.Secret{ObjectMeta: metav1.ObjectMeta{Name: "github-token", Namespace: "team1"}}
	reqs := mapFn(context.Background(), secret)
	assert.Equal(t, "team1", listed)
	require.Len(t, reqs, 2)
	assert.Equal(t, "weather", reqs[0].Name)
	assert.Equal(t, "forecast", reqs[1].Name)

	other := &corev1.Secret{ObjectMeta: metav1.ObjectMeta{Name: "other", Namespace: "team1"}}
	assert.Empty(t, mapFn(context.Background(), other))

	failing := SecretRequests(func(context.Context, string) ([]agentv1alpha1.AgentObject, error) {
		return nil, errors.New("cache not synced")
	})
	assert.Empty(t, failing(context.Background(), secret))
}

func TestReconcile_InterruptedBuildIsFailed(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)

	ab := newAgent(nil)
	ab.Status.BuildStatus = agentv1alpha1.BuildStatus{
		Phase:    agentv1alpha1.BuildPhaseBuilding,
		Stage:    agentv1alpha1.BuildStageBuilding,
		SpecHash: buildHash(t, ab),
		Attempts: 1,
	}
	h := newHarness(t, runner, ab)

	res := h.reconcile(t)
	assert.Equal(t, common.RequeueIntervalShort, res.RequeueAfter)

	bs := h.get(t).Status.BuildStatus
	assert.Equal(t, agentv1alpha1.BuildPhaseFailed, bs.Phase)
	assert.Equal(t, string(failure.KindNetwork), bs.ErrorKind)
	assert.True(t, bs.Retryable)
	assert.True(t, hasEvent(h.events(), controller.EventReasonBuildInterrupted))
}

func TestReconcile_InFlightSkipsAndPersists(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(true)

	ab := newAgent(nil)
	ab.Generation = 2
	h := newHarness(t, runner, ab)

	res := h.reconcile(t)
	assert.Equal(t, common.RequeueIntervalLong, res.RequeueAfter)
	assert.Equal(t, int64(2), h.get(t).Status.ObservedGeneration)
}

func TestReconcile_ProgressIsPersisted(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)

	var h *harness
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a build.Attempt) (*build.Outcome, error) {
			a.OnTransition(build.StatePending, build.StateFetching)
			a.OnTransition(build.StateFetching, build.StateBuilding)

			bs := h.get(t).Status.BuildStatus
			assert.Equal(t, agentv1alpha1.BuildPhaseBuilding, bs.Phase)
			assert.Equal(t, agentv1alpha1.BuildStageBuilding, bs.Stage)
			assert.Equal(t, "Building image", bs.Message)
			return builtOutcome(), nil
		})
	h = newHarness(t, runner, newAgent(nil))

	h.reconcile(t)
	assert.Equal(t, agentv1alpha1.BuildPhaseBuilt, h.get(t).Status.BuildStatus.Phase)
}

func TestReconcile_Suspended(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)

	h := newHarness(t, runner, newAgent(func(s *agentv1alpha1.AgentSpec) { s.Suspend = true }))
	h.reconcile(t)

	ready := meta.FindStatusCondition(h.get(t).Status.Conditions, controller.ConditionReady)
	require.NotNil(t, ready)
	assert.Equal(t, metav1.ConditionFalse, ready.Status)
	assert.Equal(t, controller.EventReasonSuspended, ready.Reason)
}

func TestReconcile_AddsFinalizer(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)

	ab := newAgent(func(s *agentv1alpha1.AgentSpec) { s.Suspend = true })
	ab.Finalizers = nil
	h := newHarness(t, runner, ab)
	h.reconcile(t)

	assert.Contains(t, h.get(t).Finalizers, controller.FinalizerAgent)
}

func TestReconcile_AtMostOneAttemptInFlight(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	fetcher := sourcemock.NewMockFetcher(mockCtrl)
	started := make(chan struct{})
	release := make(chan struct{})
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, source.Request) (*source.Handle, error) {
			close(started)
			<-release
			return nil, failure.NotFound("fetch source", errors.New("revision main not found"))
		}).Times(1)

	coord := build.NewCoordinator(build.Options{
		Fetcher:     fetcher,
		Builder:     imagemock.NewMockBuilder(mockCtrl),
		Credentials: anonymousCreds{},
	}, logr.Discard())
	h := newHarness(t, coord, newAgent(nil))

	done := make(chan error, 1)
	first := h.get(t)
	go func() {
		_, err := h.engine.Reconcile(context.Background(), first)
		done <- err
	}()

	<-started
	assert.True(t, coord.InFlight(testKey))

	res := h.reconcile(t)
	assert.Equal(t, common.RequeueIntervalLong, res.RequeueAfter)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, coord.InFlight(testKey))

	bs := h.get(t).Status.BuildStatus
	assert.Equal(t, agentv1alpha1.BuildPhaseFailed, bs.Phase)
	assert.Equal(t, string(failure.KindNotFound), bs.ErrorKind)
	assert.EqualValues(t, 1, bs.Attempts)
}

func deletingAgent(t *testing.T, h *harness) *agentv1alpha1.AgentBuild {
	t.Helper()
	require.NoError(t, h.client.Delete(context.Background(), h.get(t)))
	obj := h.get(t)
	require.False(t, obj.DeletionTimestamp.IsZero())
	return obj
}

func workloadObjects() []client.Object {
	target := deploy.Target{Name: "weather", Namespace: "team1", OwnerKind: "AgentBuild"}
	om := metav1.ObjectMeta{Name: "weather", Namespace: "team1", Labels: deploy.Labels(target, "weather")}
	return []client.Object{
		&appsv1.Deployment{ObjectMeta: om},
		&corev1.Service{ObjectMeta: *om.DeepCopy()},
	}
}

func TestDeletion_RetainKeepsWorkload(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)
	runner.EXPECT().ReleaseRetained(testKey).Return(nil).Times(1)

	ab := newAgent(func(s *agentv1alpha1.AgentSpec) { s.DeployAfterBuild = true })
	ab.Status.DeployStatus = agentv1alpha1.DeployStatus{Phase: agentv1alpha1.DeployPhaseDeployed, DeploymentName: "weather"}
	h := newHarness(t, runner, append(workloadObjects(), ab)...)

	obj := deletingAgent(t, h)
	_, err := h.engine.Reconcile(context.Background(), obj)
	require.NoError(t, err)

	// The finalizer is gone, so a second pass does no cleanup.
	_, err = h.engine.Reconcile(context.Background(), obj)
	require.NoError(t, err)

	assert.Equal(t, int32(1), h.logs.deletes.Load())
	require.NoError(t, h.client.Get(context.Background(), client.ObjectKey{Namespace: "team1", Name: "weather"}, &appsv1.Deployment{}))
	require.NoError(t, h.client.Get(context.Background(), client.ObjectKey{Namespace: "team1", Name: "weather"}, &corev1.Service{}))

	events := h.events()
	assert.True(t, hasEvent(events, controller.EventReasonWorkloadRetained))
	assert.True(t, hasEvent(events, controller.EventReasonFinalizerRemoved))
}

func TestDeletion_DeletePolicyRemovesWorkload(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)
	runner.EXPECT().ReleaseRetained(testKey).Return(nil)

	ab := newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.DeployAfterBuild = true
		s.DeletionPolicy = agentv1alpha1.DeletionPolicyDelete
	})
	ab.Status.DeployStatus = agentv1alpha1.DeployStatus{Phase: agentv1alpha1.DeployPhaseDeployed, DeploymentName: "weather"}
	h := newHarness(t, runner, append(workloadObjects(), ab)...)

	_, err := h.engine.Reconcile(context.Background(), deletingAgent(t, h))
	require.NoError(t, err)

	err = h.client.Get(context.Background(), client.ObjectKey{Namespace: "team1", Name: "weather"}, &appsv1.Deployment{})
	assert.True(t, apierrors.IsNotFound(err))
	err = h.client.Get(context.Background(), client.ObjectKey{Namespace: "team1", Name: "weather"}, &corev1.Service{})
	assert.True(t, apierrors.IsNotFound(err))
	assert.True(t, hasEvent(h.events(), controller.EventReasonWorkloadDeleted))
}

func TestDeletion_DeletePolicyLeavesForeignWorkload(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)
	runner.EXPECT().ReleaseRetained(testKey).Return(nil)

	foreign := metav1.ObjectMeta{Name: "weather", Namespace: "team1", Labels: map[string]string{"app": "weather"}}
	ab := newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.DeployAfterBuild = true
		s.DeletionPolicy = agentv1alpha1.DeletionPolicyDelete
	})
	ab.Status.DeployStatus = agentv1alpha1.DeployStatus{Phase: agentv1alpha1.DeployPhaseFailed, DeploymentName: "weather"}
	h := newHarness(t, runner, ab,
		&appsv1.Deployment{ObjectMeta: foreign},
		&corev1.Service{ObjectMeta: *foreign.DeepCopy()})

	_, err := h.engine.Reconcile(context.Background(), deletingAgent(t, h))
	require.NoError(t, err)

	key := client.ObjectKey{Namespace: "team1", Name: "weather"}
	require.NoError(t, h.client.Get(context.Background(), key, &appsv1.Deployment{}))
	require.NoError(t, h.client.Get(context.Background(), key, &corev1.Service{}))

	events := h.events()
	assert.False(t, hasEvent(events, controller.EventReasonWorkloadDeleted))
	assert.True(t, hasEvent(events, controller.EventReasonFinalizerRemoved))
}

func TestDeletion_NothingDeployedSkipsWorkload(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)
	runner.EXPECT().ReleaseRetained(testKey).Return(nil)
	workloads := mock.NewMockWorkloadApplier(mockCtrl)
	// No Delete expectation: a resource that never recorded a workload deletes nothing.

	h := newHarness(t, runner, newAgent(func(s *agentv1alpha1.AgentSpec) {
		s.DeployAfterBuild = true
		s.DeletionPolicy = agentv1alpha1.DeletionPolicyDelete
	}))
	h.engine.Workloads = workloads

	_, err := h.engine.Reconcile(context.Background(), deletingAgent(t, h))
	require.NoError(t, err)
	assert.True(t, hasEvent(h.events(), controller.EventReasonFinalizerRemoved))
}

func TestReconcile_ForeignWorkloadFailsDeploy(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)

	foreign := metav1.ObjectMeta{Name: "weather", Namespace: "team1"}
	ab := newAgent(func(s *agentv1alpha1.AgentSpec) { s.DeployAfterBuild = true })
	ab.Status.BuildStatus = agentv1alpha1.BuildStatus{
		Phase:      agentv1alpha1.BuildPhaseBuilt,
		SpecHash:   buildHash(t, ab),
		BuiltImage: builtImage,
	}
	h := newHarness(t, runner, ab, &appsv1.Deployment{ObjectMeta: foreign})

	res := h.reconcile(t)
	assert.Zero(t, res.RequeueAfter)

	ds := h.get(t).Status.DeployStatus
	assert.Equal(t, agentv1alpha1.DeployPhaseFailed, ds.Phase)
	assert.Equal(t, string(failure.KindValidation), ds.ErrorKind)
	assert.Contains(t, ds.Message, "already exists")
	assert.Empty(t, ds.DeploymentName)

	dep := &appsv1.Deployment{}
	require.NoError(t, h.client.Get(context.Background(), client.ObjectKey{Namespace: "team1", Name: "weather"}, dep))
	assert.Empty(t, dep.Spec.Template.Spec.Containers)
}

func TestDeletion_WaitsForInFlightBuild(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(true)

	h := newHarness(t, runner, newAgent(nil))
	res, err := h.engine.Reconcile(context.Background(), deletingAgent(t, h))
	require.NoError(t, err)
	assert.Equal(t, common.RequeueIntervalShort, res.RequeueAfter)

	assert.Contains(t, h.get(t).Finalizers, controller.FinalizerAgent)
	assert.Zero(t, h.logs.deletes.Load())
}

func TestDeletion_FailedStepKeepsFinalizer(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	runner := mock.NewMockBuildRunner(mockCtrl)
	runner.EXPECT().InFlight(testKey).Return(false)
	runner.EXPECT().ReleaseRetained(testKey).Return(errors.New("device busy"))

	h := newHarness(t, runner, newAgent(nil))
	res, err := h.engine.Reconcile(context.Background(), deletingAgent(t, h))
	require.NoError(t, err)
	assert.Equal(t, controller.DefaultRequeueAfter, res.RequeueAfter)

	assert.Contains(t, h.get(t).Finalizers, controller.FinalizerAgent)
	assert.True(t, hasEvent(h.events(), controller.EventReasonDeleteFailed))
}

func TestWorkloadRequests(t *testing.T) {
	mapFn := WorkloadRequests("AgentBuild")

	owned := &appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{
		Name:      "custom",
		Namespace: "team1",
		Labels: map[string]string{
			agentv1alpha1.LabelManagedBy: agentv1alpha1.ManagedByValue,
			agentv1alpha1.LabelOwnerKind: "agentbuild",
			agentv1alpha1.LabelOwnerName: "weather",
		},
	}}
	reqs := mapFn(context.Background(), owned)
	require.Len(t, reqs, 1)
	assert.Equal(t, client.ObjectKey{Namespace: "team1", Name: "weather"}, reqs[0].NamespacedName)

	other := owned.DeepCopy()
	other.Labels[agentv1alpha1.LabelOwnerKind] = "component"
	assert.Empty(t, mapFn(context.Background(), other))

	unmanaged := &appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{Name: "x", Namespace: "team1"}}
	assert.Empty(t, mapFn(context.Background(), unmanaged))

	long := strings.Repeat("w", 80)
	shortened := owned.DeepCopy()
	shortened.Labels[agentv1alpha1.LabelOwnerName] = agentv1alpha1.OwnerLabelValue(long)
	shortened.Annotations = map[string]string{agentv1alpha1.AnnotationOwnerName: long}
	reqs = mapFn(context.Background(), shortened)
	require.Len(t, reqs, 1)
	assert.Equal(t, long, reqs[0].Name)
}
