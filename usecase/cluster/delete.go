package cluster

import (
	"context"

	"github.com/bkpaas/workloads/domain/model"
)

// DeleteInput identifies the cluster to remove.
type DeleteInput struct {
	Name string `json:"name" validate:"required"`
}

// Delete removes a cluster registration. The store rejects the removal
// while workload configs or allocation policies still reference it.
func (u *UseCase) Delete(ctx context.Context, in *DeleteInput) error {
	if in == nil || in.Name == "" {
		return model.ErrValidationFailed
	}
	return u.Repos.Cluster.Delete(ctx, in.Name)
}
