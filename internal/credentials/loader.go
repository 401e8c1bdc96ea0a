// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

// Package credentials resolves Secret references into source and registry
// credentials. Raw secret values never leave this package through logs or
// error messages.
package credentials

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/go-containerregistry/pkg/authn"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/kagenti/agent-operator/internal/failure"
)

// Secret keys read for source credentials, in lookup order. S3 sources
// store the access key pair under accessKeyId and secretAccessKey.
var (
	tokenKeys = []string{"token", "password", "secretAccessKey"}
	userKeys  = []string{"user", "username", "accessKeyId"}
)

// ErrNoToken is returned when the source Secret holds no usable token.
var ErrNoToken = errors.New("no token found in secret")

// GitCredentials holds a resolved repository credential.
type GitCredentials struct {
	Username string
	Token    string
}

// String never prints the token.
func (c *GitCredentials) String() string {
	if c == nil {
		return "<none>"
	}
	return fmt.Sprintf("GitCredentials{Username: %q, Token: <redacted>}", c.Username)
}

// Loader loads credentials from Secrets in the resource namespace.
type Loader struct {
	client client.Reader
	log    logr.Logger
}

// NewLoader creates a new credential loader
func NewLoader(c client.Reader, log logr.Logger) *Loader {
	return &Loader{
		client: c,
		log:    log,
	}
}

// LoadGitCredentials resolves the source credential Secret. A nil ref means
// the repository is public and yields nil credentials. A missing Secret or
// a Secret without a token is an AuthError.
func (l *Loader) LoadGitCredentials(ctx context.Context, namespace string, ref *corev1.LocalObjectReference, repoUser string) (*GitCredentials, error) {
	if ref == nil || ref.Name == "" {
		return nil, nil
	}

	secret, err := l.getSecret(ctx, namespace, ref.Name)
	if err != nil {
		return nil, err
	}

	token := firstValue(secret, tokenKeys)
	if token == "" {
		return nil, failure.Auth("load source credentials",
			fmt.Errorf("secret %q: %w (keys: %s)", ref.Name, ErrNoToken, strings.Join(tokenKeys, ", ")))
	}

	user := repoUser
	if user == "" {
		user = firstValue(secret, userKeys)
	}

	l.log.V(1).Info("Loaded source credentials", "secret", ref.Name, "user", user)
	return &GitCredentials{Username: user, Token: token}, nil
}

// LoadRegistryAuth resolves the registry push credential. A nil ref yields
// anonymous access.
func (l *Loader) LoadRegistryAuth(ctx context.Context, namespace string, ref *corev1.LocalObjectReference, registry string) (authn.Authenticator, error) {
	if ref == nil || ref.Name == "" {
		return authn.Anonymous, nil
	}

	secret, err := l.getSecret(ctx, namespace, ref.Name)
	if err != nil {
		return nil, err
	}

	auth, err := parseRegistryAuth(secret, registry)
	if err != nil {
		return nil, failure.Auth("load registry credentials", fmt.Errorf("secret %q: %w", ref.Name, err))
	}
	return auth, nil
}

func (l *Loader) getSecret(ctx context.Context, namespace, name string) (*corev1.Secret, error) {
	secret := &corev1.Secret{}
	if err := l.client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, secret); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, failure.Auth("load credentials", fmt.Errorf("secret %s/%s not found", namespace, name))
		}
		return nil, failure.Network("load credentials", fmt.Errorf("get secret %s/%s: %w", namespace, name, err))
	}
	return secret, nil
}

func firstValue(secret *corev1.Secret, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(string(secret.Data[k])); v != "" {
			return v
		}
		if v := strings.TrimSpace(secret.StringData[k]); v != "" {
			return v
		}
	}
	return ""
}

// parseRegistryAuth parses registry authentication from a Kubernetes secret.
// Supports both Docker config format (.dockerconfigjson) and basic auth (username/password).
func parseRegistryAuth(secret *corev1.Secret, registry string) (authn.Authenticator, error) {
	if dockerConfigJSON, ok := secret.Data[corev1.DockerConfigJsonKey]; ok {
		return parseDockerConfig(dockerConfigJSON, registry)
	}

	username := string(secret.Data["username"])
	password := string(secret.Data["password"])

	if username == "" || password == "" {
		return nil, errors.New("secret must contain .dockerconfigjson or username/password")
	}

	return &authn.Basic{
		Username: username,
		Password: password,
	}, nil
}

// dockerConfig represents the Docker config.json format.
type dockerConfig struct {
	Auths map[string]dockerAuthEntry `json:"auths"`
}

type dockerAuthEntry struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Auth     string `json:"auth,omitempty"`
}

// ErrNoMatchingEntry is returned when a docker config has no entry for the
// push registry.
var ErrNoMatchingEntry = errors.New("docker config has no entry for registry")

// parseDockerConfig returns the authenticator of the entry for the registry
// host. Entries for other hosts are never used. When no registry is given, a
// config holding exactly one entry is used as is.
func parseDockerConfig(data []byte, registry string) (authn.Authenticator, error) {
	var config dockerConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse docker config: %w", err)
	}
	if len(config.Auths) == 0 {
		return nil, errors.New("no valid auth entries found in docker config")
	}

	if registry == "" {
		if len(config.Auths) != 1 {
			return nil, fmt.Errorf("%w: registry is unknown and the config has %d entries", ErrNoMatchingEntry, len(config.Auths))
		}
		var only dockerAuthEntry
		for _, entry := range config.Auths {
			only = entry
		}
		return entryAuth(only)
	}

	entry, ok := matchRegistry(config.Auths, registry)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrNoMatchingEntry, registryHost(registry))
	}
	return entryAuth(entry)
}

// dockerHubHosts are the names Docker Hub is known under in docker configs.
var dockerHubHosts = map[string]bool{
	"docker.io":            true,
	"index.docker.io":      true,
	"registry-1.docker.io": true,
}

func registryHost(registry string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(registry, "https://"), "http://")
	host = strings.SplitN(host, "/", 2)[0]
	if dockerHubHosts[host] {
		return "docker.io"
	}
	return host
}

func matchRegistry(auths map[string]dockerAuthEntry, registry string) (dockerAuthEntry, bool) {
	host := registryHost(registry)
	for key, entry := range auths {
		if registryHost(key) == host {
			return entry, true
		}
	}
	return dockerAuthEntry{}, false
}

func entryAuth(entry dockerAuthEntry) (authn.Authenticator, error) {
	if entry.Auth != "" {
		decoded, err := base64.StdEncoding.DecodeString(entry.Auth)
		if err != nil {
			return nil, fmt.Errorf("decode auth string: %w", err)
		}
		user, pass, ok := strings.Cut(string(decoded), ":")
		if !ok {
			return nil, errors.New("invalid auth string format")
		}
		return &authn.Basic{Username: user, Password: pass}, nil
	}

	if entry.Username != "" && entry.Password != "" {
		return &authn.Basic{
			Username: entry.Username,
			Password: entry.Password,
		}, nil
	}

	return nil, errors.New("auth entry has no credentials")
}
