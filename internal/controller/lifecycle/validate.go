// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package lifecycle

import (
	"path"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"

	agentv1alpha1 "github.com/kagenti/agent-operator/api/v1alpha1"
	"github.com/kagenti/agent-operator/internal/deploy"
	"github.com/kagenti/agent-operator/internal/failure"
)

// Validate returns a ValidationError listing every problem in spec.
func Validate(spec agentv1alpha1.AgentSpec) error {
	return toError(ValidateSpec(spec, field.NewPath("spec")))
}

// validateSplit validates spec and separates the problems of the build
// section from the rest. Either result may be nil.
func validateSplit(spec agentv1alpha1.AgentSpec) (buildErr, otherErr error) {
	root := field.NewPath("spec")
	prefix := root.Child("build").String() + "."

	var buildErrs, otherErrs field.ErrorList
	for _, e := range ValidateSpec(spec, root) {
		if strings.HasPrefix(e.Field, prefix) {
			buildErrs = append(buildErrs, e)
		} else {
			otherErrs = append(otherErrs, e)
		}
	}
	return toError(buildErrs), toError(otherErrs)
}

func toError(errs field.ErrorList) error {
	if len(errs) == 0 {
		return nil
	}
	return failure.Validation("%s", errs.ToAggregate().Error())
}

// ValidateSpec returns the field errors of the canonical spec rooted at fldPath.
func ValidateSpec(spec agentv1alpha1.AgentSpec, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList

	if spec.Build != nil {
		errs = append(errs, validateBuild(spec.Build, fldPath.Child("build"))...)
	}

	if spec.DeployAfterBuild && spec.Build == nil && !spec.HasPrebuiltImage() {
		errs = append(errs, field.Required(fldPath.Child("build"),
			"deployAfterBuild requires a build section or deploy.image"))
	}

	switch spec.DeletionPolicy {
	case "", agentv1alpha1.DeletionPolicyRetain, agentv1alpha1.DeletionPolicyDelete:
	default:
		errs = append(errs, field.NotSupported(fldPath.Child("deletionPolicy"), spec.DeletionPolicy,
			[]agentv1alpha1.DeletionPolicy{agentv1alpha1.DeletionPolicyRetain, agentv1alpha1.DeletionPolicyDelete}))
	}

	errs = append(errs, deploy.ValidateSpec(spec.Deploy, fldPath.Child("deploy"))...)
	return errs
}

func validateBuild(b *agentv1alpha1.BuildSpec, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList

	if strings.TrimSpace(b.RepoURL) == "" {
		errs = append(errs, field.Required(fldPath.Child("repoUrl"), ""))
	}

	if sub := b.SourceSubfolder; sub != "" {
		if path.IsAbs(sub) || hasParentSegment(sub) {
			errs = append(errs, field.Invalid(fldPath.Child("sourceSubfolder"), sub,
				"must be a relative path inside the repository"))
		}
	}

	if strings.Contains(b.ImageRegistry, "://") {
		errs = append(errs, field.Invalid(fldPath.Child("imageRegistry"), b.ImageRegistry,
			"must be a host[:port][/path], not a URL"))
	}

	if strings.ContainsAny(b.ImageTag, ":@/") {
		errs = append(errs, field.Invalid(fldPath.Child("imageTag"), b.ImageTag, "must be a plain tag"))
	}

	for i, arg := range b.BuildArgs {
		idx := fldPath.Child("buildArgs").Index(i)
		if arg.Name == "" {
			errs = append(errs, field.Required(idx.Child("name"), ""))
			continue
		}
		for _, msg := range validation.IsEnvVarName(arg.Name) {
			errs = append(errs, field.Invalid(idx.Child("name"), arg.Name, msg))
		}
	}

	return errs
}

func hasParentSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
