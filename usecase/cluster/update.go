package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/bkpaas/workloads/domain/model"
)

// UpdateInput carries a full cluster replacement; the name selects the row.
type UpdateInput struct {
	Cluster *model.Cluster `json:"cluster" validate:"required"`
}

// UpdateOutput wraps the updated cluster.
type UpdateOutput struct {
	Cluster *model.Cluster `json:"cluster"`
}

// Update replaces a cluster registration.
func (u *UseCase) Update(ctx context.Context, in *UpdateInput) (*UpdateOutput, error) {
	if in == nil || in.Cluster == nil {
		return nil, model.ErrValidationFailed
	}
	if err := in.Cluster.Validate(); err != nil {
		return nil, fmt.Errorf("update cluster: %w", err)
	}
	in.Cluster.UpdatedAt = time.Now().UTC()
	if err := u.Repos.Cluster.Update(ctx, in.Cluster); err != nil {
		return nil, err
	}
	return &UpdateOutput{Cluster: in.Cluster}, nil
}
