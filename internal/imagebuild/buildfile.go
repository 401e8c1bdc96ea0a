// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package imagebuild

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sigs.k8s.io/yaml"
)

// BuildFileName is the optional build descriptor read from the build context.
const BuildFileName = "agent-build.yaml"

// containerRecipes are build recipes this builder cannot execute.
var containerRecipes = []string{"Dockerfile", "Containerfile"}

// ErrUnsupportedRecipe is returned for a build context carrying a Dockerfile
// or Containerfile and no build file.
var ErrUnsupportedRecipe = errors.New("Dockerfile builds are not supported")

// detectContainerRecipe returns the name of a Dockerfile or Containerfile at
// the root of dir, or "".
func detectContainerRecipe(dir string) string {
	for _, name := range containerRecipes {
		if fi, err := os.Stat(filepath.Join(dir, name)); err == nil && !fi.IsDir() {
			return name
		}
	}
	return ""
}

// BuildFile customizes the image assembled from a build context.
type BuildFile struct {
	// BaseImage overrides the operator default base image.
	BaseImage string `json:"baseImage,omitempty"`
	// Workdir is where the build context is placed. Defaults to /app.
	Workdir      string            `json:"workdir,omitempty"`
	Entrypoint   []string          `json:"entrypoint,omitempty"`
	Cmd          []string          `json:"cmd,omitempty"`
	Env          map[string]string `json:"env,omitempty"`
	ExposedPorts []int32           `json:"exposedPorts,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
}

// LoadBuildFile reads the build file from dir. A missing file yields nil.
func LoadBuildFile(dir string) (*BuildFile, error) {
	data, err := os.ReadFile(filepath.Join(dir, BuildFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", BuildFileName, err)
	}

	bf := &BuildFile{}
	if err := yaml.UnmarshalStrict(data, bf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", BuildFileName, err)
	}
	if err := bf.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", BuildFileName, err)
	}
	return bf, nil
}

func (bf *BuildFile) validate() error {
	if bf.Workdir != "" && !strings.HasPrefix(bf.Workdir, "/") {
		return fmt.Errorf("workdir %q must be absolute", bf.Workdir)
	}
	for _, p := range bf.ExposedPorts {
		if p < 1 || p > 65535 {
			return fmt.Errorf("exposed port %d out of range", p)
		}
	}
	for k := range bf.Env {
		if k == "" || strings.Contains(k, "=") {
			return fmt.Errorf("invalid env name %q", k)
		}
	}
	return nil
}

// envList renders env sorted by name.
func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
