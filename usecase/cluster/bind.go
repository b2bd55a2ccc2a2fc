package cluster

import (
	"context"
	"fmt"

	"github.com/bkpaas/workloads/domain/model"
)

// BindInput binds an app environment to a cluster by appending a config
// row. An empty ClusterName lets the allocation engine pick.
type BindInput struct {
	AppName     string `json:"app_name" validate:"required"`
	ClusterName string `json:"cluster_name"`
	Region      string `json:"region"`
	Username    string `json:"username"`
}

// BindOutput reports the resulting binding.
type BindOutput struct {
	App     *model.WlApp   `json:"app"`
	Cluster *model.Cluster `json:"cluster"`
	Config  *model.Config  `json:"config"`
}

// Bind resolves the target cluster and appends a new latest config row
// binding the app environment to it. Earlier rows keep their cluster so
// existing workloads are not re-homed retroactively.
func (u *UseCase) Bind(ctx context.Context, in *BindInput) (*BindOutput, error) {
	if in == nil || in.AppName == "" {
		return nil, model.ErrValidationFailed
	}
	app, err := u.Repos.App.GetByName(ctx, in.AppName)
	if err != nil {
		return nil, err
	}

	allocated, err := u.Allocate(ctx, &AllocateInput{
		TenantID:    app.TenantID,
		Region:      app.Region,
		Environment: app.Environment,
		Username:    in.Username,
	})
	if err != nil {
		return nil, err
	}
	// An explicit name must be one of the policy's candidates, not just
	// any registered cluster the tenant may use.
	var target *model.Cluster
	if in.ClusterName == "" {
		target = allocated.Clusters[0]
	} else {
		for _, c := range allocated.Clusters {
			if c.Name == in.ClusterName {
				target = c
				break
			}
		}
		if target == nil {
			return nil, fmt.Errorf("%w: cluster %s is not an allocation candidate for tenant %s",
				model.ErrValidationFailed, in.ClusterName, app.TenantID)
		}
	}

	cfg := &model.Config{
		AppUUID:     app.UUID,
		ClusterName: target.Name,
		Tolerations: target.DefaultTolerations,
		Metadata: map[string]string{
			model.ConfigKeyAppCode:     app.AppCode,
			model.ConfigKeyModuleName:  app.ModuleName,
			model.ConfigKeyEnvironment: app.Environment,
		},
	}
	if prev, err := u.Repos.App.LatestConfig(ctx, app.UUID); err == nil {
		// Carry forward runtime settings; only the placement changes.
		cfg.Image = prev.Image
		cfg.RuntimeEndpoint = prev.RuntimeEndpoint
		cfg.RuntimeCommand = prev.RuntimeCommand
		cfg.ResourceRequirements = prev.ResourceRequirements
		cfg.MountLogToHost = prev.MountLogToHost
		cfg.Metadata[model.ConfigKeyMapperVersion] = prev.MapperVersion("")
	}
	if cfg.Metadata[model.ConfigKeyMapperVersion] == "" {
		cfg.Metadata[model.ConfigKeyMapperVersion] = "v2"
	}
	if err := u.Repos.App.AppendConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return &BindOutput{App: app, Cluster: target, Config: cfg}, nil
}
