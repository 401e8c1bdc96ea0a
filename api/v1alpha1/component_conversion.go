// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Agent Operator Authors

package v1alpha1

// Type returns which union member of the Component is populated.
// Tool wins only when agent is absent.
func (c *Component) Type() ComponentType {
	if c.Spec.Agent == nil && c.Spec.Tool != nil {
		return ComponentTypeTool
	}
	return ComponentTypeAgent
}

// Canonical converts the nested Component shape into the canonical AgentSpec
// used by AgentBuild, so both kinds share one reconciliation path.
func (c *Component) Canonical() AgentSpec {
	spec := AgentSpec{
		DeployAfterBuild: c.Spec.Deployer.DeployAfterBuild,
		DeletionPolicy:   c.Spec.DeletionPolicy,
		Suspend:          c.Spec.Suspend,
	}

	if build := c.componentBuild(); build != nil {
		spec.Build = build.convertTo()
	}

	k8s := c.Spec.Deployer.Kubernetes
	if k8s == nil && len(c.Spec.Deployer.Env) == 0 && c.Spec.Deployer.Name == "" {
		return spec
	}

	deploy := &DeploySpec{
		Name: c.Spec.Deployer.Name,
		Env:  c.Spec.Deployer.Env,
	}
	if k8s != nil {
		deploy.ContainerPorts = k8s.ContainerPorts
		deploy.ServicePorts = k8s.ServicePorts
		deploy.Resources = k8s.Resources
		deploy.ServiceType = k8s.ServiceType
		deploy.ImagePullPolicy = k8s.ImageSpec.ImagePullPolicy
		deploy.ImagePullSecrets = k8s.ImageSpec.ImagePullSecrets
		// Without a build section the image spec names a prebuilt image.
		if spec.Build == nil && k8s.ImageSpec.Image != "" {
			deploy.Image = &ImageSpec{
				Image:         k8s.ImageSpec.Image,
				ImageTag:      k8s.ImageSpec.ImageTag,
				ImageRegistry: k8s.ImageSpec.ImageRegistry,
			}
		}
	}
	spec.Deploy = deploy

	return spec
}

func (c *Component) componentBuild() *ComponentBuildSpec {
	switch {
	case c.Spec.Agent != nil:
		return c.Spec.Agent.Build
	case c.Spec.Tool != nil:
		return c.Spec.Tool.Build
	default:
		return nil
	}
}

// convertTo maps the nested build section onto the canonical BuildSpec.
func (src *ComponentBuildSpec) convertTo() *BuildSpec {
	dst := &BuildSpec{
		RepoURL:           src.SourceRepository,
		Revision:          src.SourceRevision,
		SourceSubfolder:   src.SourceSubfolder,
		RepoUser:          src.RepoUser,
		SourceCredentials: src.SourceCredentials,
		BuildArgs:         src.BuildArgs,
		CleanupAfterBuild: src.CleanupAfterBuild,
	}
	if out := src.BuildOutput; out != nil {
		dst.Image = out.Image
		dst.ImageTag = out.ImageTag
		dst.ImageRegistry = out.ImageRegistry
		dst.ImageRepoCredentials = out.ImageRepoCredentials
	}
	return dst
}

// DefaultStatus fills status fields derived from the spec.
func (c *Component) DefaultStatus() {
	c.Status.ComponentType = c.Type()
}
