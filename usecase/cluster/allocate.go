package cluster

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bkpaas/workloads/domain/model"
)

// AllocateInput is the dimension set an allocation depends on.
type AllocateInput struct {
	TenantID    string `json:"tenant_id" validate:"required"`
	Region      string `json:"region"`
	Environment string `json:"environment" validate:"required,oneof=stag prod"`
	Username    string `json:"username"`
}

// AllocateOutput lists eligible clusters in policy order; the first entry
// is the default placement.
type AllocateOutput struct {
	Clusters []*model.Cluster `json:"clusters"`
}

// Allocate evaluates the tenant's policy and returns the eligible clusters
// for the context. Tenants without a policy fall back to the platform
// default. Candidates the policy names but the tenant may not use are
// dropped; an empty result is ErrNoEligibleCluster.
func (u *UseCase) Allocate(ctx context.Context, in *AllocateInput) (*AllocateOutput, error) {
	if in == nil {
		return nil, model.ErrValidationFailed
	}
	if err := u.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrValidationFailed, err)
	}
	policy, err := u.Repos.Policy.GetByTenant(ctx, in.TenantID)
	if errors.Is(err, model.ErrPolicyNotFound) {
		policy, err = u.defaultPolicy(ctx)
	}
	if err != nil {
		return nil, err
	}
	names, err := policy.Evaluate(model.AllocationContext{
		TenantID:    in.TenantID,
		Region:      in.Region,
		Environment: in.Environment,
		Username:    in.Username,
	})
	if err != nil {
		return nil, err
	}
	clusters := make([]*model.Cluster, 0, len(names))
	for _, name := range names {
		c, err := u.Repos.Cluster.Get(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve allocated cluster %s: %w", name, err)
		}
		if !c.AllowsTenant(in.TenantID) {
			continue
		}
		clusters = append(clusters, c)
	}
	if len(clusters) == 0 {
		return nil, model.ErrNoEligibleCluster
	}
	return &AllocateOutput{Clusters: clusters}, nil
}

// defaultPolicy covers tenants without a policy of their own: the row
// saved under the wildcard tenant when an operator seeded one, otherwise
// a manual policy over every registered cluster in name order. The
// per-cluster tenant availability filter still applies to the result.
func (u *UseCase) defaultPolicy(ctx context.Context) (*model.AllocationPolicy, error) {
	p, err := u.Repos.Policy.GetByTenant(ctx, model.TenantIDAll)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, model.ErrPolicyNotFound) {
		return nil, err
	}
	all, err := u.Repos.Cluster.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, model.ErrNoEligibleCluster
	}
	names := make([]string, 0, len(all))
	for _, c := range all {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return &model.AllocationPolicy{
		TenantID: model.TenantIDAll,
		Type:     model.AllocationPolicyManual,
		Manual:   &model.ManualAllocation{Clusters: names},
	}, nil
}

// SavePolicyInput carries the tenant's policy to persist.
type SavePolicyInput struct {
	Policy *model.AllocationPolicy `json:"policy" validate:"required"`
}

// SavePolicy validates against registered clusters and upserts the policy
// of its tenant.
func (u *UseCase) SavePolicy(ctx context.Context, in *SavePolicyInput) error {
	if in == nil || in.Policy == nil {
		return model.ErrValidationFailed
	}
	if err := in.Policy.Validate(); err != nil {
		return err
	}
	for _, name := range policyClusterNames(in.Policy) {
		if _, err := u.Repos.Cluster.Get(ctx, name); err != nil {
			return fmt.Errorf("policy references cluster %s: %w", name, err)
		}
	}
	return u.Repos.Policy.Save(ctx, in.Policy)
}

func policyClusterNames(p *model.AllocationPolicy) []string {
	seen := map[string]struct{}{}
	var names []string
	add := func(m *model.ManualAllocation) {
		if m == nil {
			return
		}
		for _, c := range m.Clusters {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				names = append(names, c)
			}
		}
		for _, clusters := range m.EnvClusters {
			for _, c := range clusters {
				if _, ok := seen[c]; !ok {
					seen[c] = struct{}{}
					names = append(names, c)
				}
			}
		}
	}
	add(p.Manual)
	for i := range p.Rules {
		add(&p.Rules[i].Policy)
	}
	return names
}
