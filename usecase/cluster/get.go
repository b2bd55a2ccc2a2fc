package cluster

import (
	"context"

	"github.com/bkpaas/workloads/domain/model"
)

// GetInput identifies a cluster by name.
type GetInput struct {
	Name string `json:"name" validate:"required"`
}

// GetOutput wraps the cluster.
type GetOutput struct {
	Cluster *model.Cluster `json:"cluster"`
}

// Get returns a registered cluster.
func (u *UseCase) Get(ctx context.Context, in *GetInput) (*GetOutput, error) {
	if in == nil || in.Name == "" {
		return nil, model.ErrValidationFailed
	}
	c, err := u.Repos.Cluster.Get(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Cluster: c}, nil
}
