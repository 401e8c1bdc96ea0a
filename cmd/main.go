// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package main

import (
	"context"
	"crypto/tls"
	"flag"
	"os"
	"path/filepath"
	"time"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"github.com/google/go-containerregistry/pkg/authn"
	"go.uber.org/zap/zapcore"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/certwatcher"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/metrics/filters"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
	"sigs.k8s.io/controller-runtime/pkg/webhook"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
	"github.com/kagenti/agent-operator/internal/build"
	"github.com/kagenti/agent-operator/internal/controller"
	"github.com/kagenti/agent-operator/internal/controller/agentbuild"
	"github.com/kagenti/agent-operator/internal/controller/component"
	"github.com/kagenti/agent-operator/internal/credentials"
	"github.com/kagenti/agent-operator/internal/deploy"
	"github.com/kagenti/agent-operator/internal/imagebuild"
	"github.com/kagenti/agent-operator/internal/metrics"
	"github.com/kagenti/agent-operator/internal/source"
	webhookagentv1alpha1 "github.com/kagenti/agent-operator/internal/webhook/v1alpha1"
	// +kubebuilder:scaffold:imports
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

const (
	// webhooksDisabledValue is the value of ENABLE_WEBHOOKS env var when webhooks are disabled
	webhooksDisabledValue = "false"

	logStoreConfigMap = "configmap"
	logStoreS3        = "s3"
	logStoreNone      = "none"

	defaultOperatorNamespace = "agent-operator-system"
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))

	utilruntime.Must(agentv1alpha1.AddToScheme(scheme))
	// +kubebuilder:scaffold:scheme
}

// buildOptions are the flags that configure the build pipeline.
type buildOptions struct {
	workspaceDir        string
	defaultBaseImage    string
	defaultRegistry     string
	maxConcurrentBuilds int64
	githubAPIURL        string
	gitlabURL           string
	fetchTimeout        time.Duration

	logStore       string
	logBucket      string
	logS3Endpoint  string
	logS3Region    string
	logS3PathStyle bool
}

// nolint:gocyclo
func main() {
	var metricsAddr string
	var metricsCertPath, metricsCertName, metricsCertKey string
	var webhookCertPath, webhookCertName, webhookCertKey string
	var enableLeaderElection bool
	var probeAddr string
	var secureMetrics bool
	var enableHTTP2 bool
	var maxConcurrentReconciles int
	var bo buildOptions
	var tlsOpts []func(*tls.Config)
	flag.StringVar(&metricsAddr, "metrics-bind-address", "0", "The address the metrics endpoint binds to. "+
		"Use :8443 for HTTPS or :8080 for HTTP, or leave as 0 to disable the metrics service.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", true,
		"Enable leader election for controller manager. "+
			"Enabling this will ensure there is only one active controller manager.")
	flag.BoolVar(&secureMetrics, "metrics-secure", true,
		"If set, the metrics endpoint is served securely via HTTPS. Use --metrics-secure=false to use HTTP instead.")
	flag.StringVar(&webhookCertPath, "webhook-cert-path", "", "The directory that contains the webhook certificate.")
	flag.StringVar(&webhookCertName, "webhook-cert-name", "tls.crt", "The name of the webhook certificate file.")
	flag.StringVar(&webhookCertKey, "webhook-cert-key", "tls.key", "The name of the webhook key file.")
	flag.StringVar(&metricsCertPath, "metrics-cert-path", "",
		"The directory that contains the metrics server certificate.")
	flag.StringVar(&metricsCertName, "metrics-cert-name", "tls.crt", "The name of the metrics server certificate file.")
	flag.StringVar(&metricsCertKey, "metrics-cert-key", "tls.key", "The name of the metrics server key file.")
	flag.BoolVar(&enableHTTP2, "enable-http2", false,
		"If set, HTTP/2 will be enabled for the metrics and webhook servers")
	flag.IntVar(&maxConcurrentReconciles, "max-concurrent-reconciles", 2,
		"Resources of each kind reconciled in parallel.")

	flag.StringVar(&bo.workspaceDir, "workspace-dir", os.TempDir(), "Parent directory of build workspaces.")
	flag.StringVar(&bo.defaultBaseImage, "default-base-image", imagebuild.DefaultBaseImage,
		"Base image used when a build does not name one.")
	flag.StringVar(&bo.defaultRegistry, "default-registry", agentv1alpha1.DefaultImageRegistry,
		"Registry images are pushed to when a build does not name one.")
	flag.Int64Var(&bo.maxConcurrentBuilds, "max-concurrent-builds", build.DefaultMaxConcurrentBuilds,
		"Build attempts running at once across all resources.")
	flag.StringVar(&bo.githubAPIURL, "github-api-url", "", "GitHub API URL for archive downloads. Empty uses api.github.com.")
	flag.StringVar(&bo.gitlabURL, "gitlab-url", "", "GitLab base URL for archive downloads. Empty uses gitlab.com.")
	flag.DurationVar(&bo.fetchTimeout, "fetch-timeout", 5*time.Minute, "Timeout for one source download.")
	flag.StringVar(&bo.logStore, "build-log-store", logStoreConfigMap, "Where build logs are kept: configmap, s3 or none.")
	flag.StringVar(&bo.logBucket, "build-log-bucket", "", "S3 bucket for build logs when --build-log-store=s3.")
	flag.StringVar(&bo.logS3Endpoint, "build-log-s3-endpoint", "", "Endpoint of an S3-compatible log store.")
	flag.StringVar(&bo.logS3Region, "build-log-s3-region", "", "Region of the build log bucket.")
	flag.BoolVar(&bo.logS3PathStyle, "build-log-s3-path-style", false, "Use path-style addressing for the log bucket.")
	opts := zap.Options{
		Development: true,
		TimeEncoder: zapcore.TimeEncoderOfLayout(time.RFC3339),
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	// if the enable-http2 flag is false (the default), http/2 should be disabled
	// due to its vulnerabilities. More specifically, disabling http/2 will
	// prevent from being vulnerable to the HTTP/2 Stream Cancellation and
	// Rapid Reset CVEs. For more information see:
	// - https://github.com/advisories/GHSA-qppj-fm5r-hxr3
	// - https://github.com/advisories/GHSA-4374-p667-p6c8
	disableHTTP2 := func(c *tls.Config) {
		setupLog.Info("disabling http/2")
		c.NextProtos = []string{"http/1.1"}
	}

	if !enableHTTP2 {
		tlsOpts = append(tlsOpts, disableHTTP2)
	}

	// Create watchers for metrics and webhooks certificates
	var metricsCertWatcher, webhookCertWatcher *certwatcher.CertWatcher

	// Initial webhook TLS options
	webhookTLSOpts := tlsOpts

	if len(webhookCertPath) > 0 {
		setupLog.Info("Initializing webhook certificate watcher using provided certificates",
			"webhook-cert-path", webhookCertPath, "webhook-cert-name", webhookCertName, "webhook-cert-key", webhookCertKey)

		var err error
		webhookCertWatcher, err = certwatcher.New(
			filepath.Join(webhookCertPath, webhookCertName),
			filepath.Join(webhookCertPath, webhookCertKey),
		)
		if err != nil {
			setupLog.Error(err, "Failed to initialize webhook certificate watcher")
			os.Exit(1)
		}

		webhookTLSOpts = append(webhookTLSOpts, func(config *tls.Config) {
			config.GetCertificate = webhookCertWatcher.GetCertificate
		})
	}

	webhookServer := webhook.NewServer(webhook.Options{
		TLSOpts: webhookTLSOpts,
	})

	metricsServerOptions := metricsserver.Options{
		BindAddress:   metricsAddr,
		SecureServing: secureMetrics,
		TLSOpts:       tlsOpts,
	}

	if secureMetrics {
		// Only authorized users and service accounts may read the metrics endpoint.
		metricsServerOptions.FilterProvider = filters.WithAuthenticationAndAuthorization
	}

	if len(metricsCertPath) > 0 {
		setupLog.Info("Initializing metrics certificate watcher using provided certificates",
			"metrics-cert-path", metricsCertPath, "metrics-cert-name", metricsCertName, "metrics-cert-key", metricsCertKey)

		var err error
		metricsCertWatcher, err = certwatcher.New(
			filepath.Join(metricsCertPath, metricsCertName),
			filepath.Join(metricsCertPath, metricsCertKey),
		)
		if err != nil {
			setupLog.Error(err, "Failed to initialize metrics certificate watcher")
			os.Exit(1)
		}

		metricsServerOptions.TLSOpts = append(metricsServerOptions.TLSOpts, func(config *tls.Config) {
			config.GetCertificate = metricsCertWatcher.GetCertificate
		})
	}

	operatorNamespace := os.Getenv("POD_NAMESPACE")
	if operatorNamespace == "" {
		operatorNamespace = defaultOperatorNamespace
	}

	restConfig := ctrl.GetConfigOrDie()
	mgr, err := ctrl.NewManager(restConfig, ctrl.Options{
		Scheme:                  scheme,
		Metrics:                 metricsServerOptions,
		WebhookServer:           webhookServer,
		HealthProbeBindAddress:  probeAddr,
		LeaderElection:          enableLeaderElection,
		LeaderElectionID:        "5c1e2a7d.agent.kagenti.dev",
		LeaderElectionNamespace: operatorNamespace,
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	crdChecker, err := controller.NewCRDChecker(restConfig)
	if err != nil {
		setupLog.Error(err, "unable to create CRD checker")
		os.Exit(1)
	}

	logStore, err := newLogStore(context.Background(), mgr, bo)
	if err != nil {
		setupLog.Error(err, "unable to create build log store", "store", bo.logStore)
		os.Exit(1)
	}

	recorder := metrics.MustRegisterDefault()
	fetcher := source.NewArchiveFetcher(source.Options{
		WorkspaceDir: bo.workspaceDir,
		GitHubAPIURL: bo.githubAPIURL,
		GitLabURL:    bo.gitlabURL,
		Timeout:      bo.fetchTimeout,
	}, ctrl.Log.WithName("source"))
	builder := imagebuild.NewLayerBuilder(imagebuild.Options{
		DefaultBaseImage: bo.defaultBaseImage,
		BaseKeychain:     authn.DefaultKeychain,
		LogStore:         logStore,
	}, ctrl.Log.WithName("imagebuild"))
	coordinator := build.NewCoordinator(build.Options{
		Fetcher:         fetcher,
		Builder:         builder,
		Credentials:     credentials.NewLoader(mgr.GetAPIReader(), ctrl.Log.WithName("credentials")),
		Clock:           clock.RealClock{},
		Observer:        recorder,
		DefaultRegistry: bo.defaultRegistry,
		MaxConcurrent:   bo.maxConcurrentBuilds,
	}, ctrl.Log.WithName("build"))
	applier := deploy.NewApplier(mgr.GetClient())

	if crdChecker.HasAgentBuild() {
		if err = (&agentbuild.AgentBuildReconciler{
			Client:                  mgr.GetClient(),
			Scheme:                  mgr.GetScheme(),
			Recorder:                mgr.GetEventRecorderFor(controller.ControllerNameAgentBuild),
			Builds:                  coordinator,
			Workloads:               applier,
			Logs:                    logStore,
			Metrics:                 recorder,
			Clock:                   clock.RealClock{},
			MaxConcurrentReconciles: maxConcurrentReconciles,
		}).SetupWithManager(mgr); err != nil {
			setupLog.Error(err, "unable to create controller", "controller", "AgentBuild")
			os.Exit(1)
		}
	} else {
		setupLog.Info("AgentBuild CRD not installed, skipping controller")
	}

	if crdChecker.HasComponent() {
		if err = (&component.ComponentReconciler{
			Client:                  mgr.GetClient(),
			Scheme:                  mgr.GetScheme(),
			Recorder:                mgr.GetEventRecorderFor(controller.ControllerNameComponent),
			Builds:                  coordinator,
			Workloads:               applier,
			Logs:                    logStore,
			Metrics:                 recorder,
			Clock:                   clock.RealClock{},
			MaxConcurrentReconciles: maxConcurrentReconciles,
		}).SetupWithManager(mgr); err != nil {
			setupLog.Error(err, "unable to create controller", "controller", "Component")
			os.Exit(1)
		}
	} else {
		setupLog.Info("Component CRD not installed, skipping controller")
	}

	if os.Getenv("ENABLE_WEBHOOKS") != webhooksDisabledValue {
		if err = webhookagentv1alpha1.SetupAgentBuildWebhookWithManager(mgr); err != nil {
			setupLog.Error(err, "unable to create webhook", "webhook", "AgentBuild")
			os.Exit(1)
		}
		if err = webhookagentv1alpha1.SetupComponentWebhookWithManager(mgr); err != nil {
			setupLog.Error(err, "unable to create webhook", "webhook", "Component")
			os.Exit(1)
		}
	}
	// +kubebuilder:scaffold:builder

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting manager",
		"namespace", operatorNamespace,
		"maxConcurrentBuilds", bo.maxConcurrentBuilds,
		"defaultRegistry", bo.defaultRegistry,
		"buildLogStore", bo.logStore)
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}

func newLogStore(ctx context.Context, mgr ctrl.Manager, bo buildOptions) (imagebuild.LogStore, error) {
	switch bo.logStore {
	case logStoreS3:
		c, err := source.NewS3Client(ctx, source.S3Config{
			Region:       bo.logS3Region,
			Endpoint:     bo.logS3Endpoint,
			UsePathStyle: bo.logS3PathStyle,
		}, nil)
		if err != nil {
			return nil, err
		}
		return imagebuild.NewS3LogStore(c, bo.logBucket, "build-logs")
	case logStoreNone:
		return imagebuild.NopLogStore{}, nil
	default:
		return imagebuild.NewConfigMapLogStore(mgr.GetClient()), nil
	}
}
