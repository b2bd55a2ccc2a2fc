package cluster

import (
	"context"

	"github.com/bkpaas/workloads/domain/model"
)

// ListInput filters the cluster list.
type ListInput struct {
	// TenantID keeps only clusters available to the tenant when set.
	TenantID string `json:"tenant_id"`
}

// ListOutput wraps the cluster list.
type ListOutput struct {
	Clusters []*model.Cluster `json:"clusters"`
}

// List returns registered clusters, optionally filtered by tenant
// availability.
func (u *UseCase) List(ctx context.Context, in *ListInput) (*ListOutput, error) {
	all, err := u.Repos.Cluster.List(ctx)
	if err != nil {
		return nil, err
	}
	if in == nil || in.TenantID == "" {
		return &ListOutput{Clusters: all}, nil
	}
	out := make([]*model.Cluster, 0, len(all))
	for _, c := range all {
		if c.AllowsTenant(in.TenantID) {
			out = append(out, c)
		}
	}
	return &ListOutput{Clusters: out}, nil
}
