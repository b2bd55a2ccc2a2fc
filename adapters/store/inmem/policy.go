package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bkpaas/workloads/domain/model"
)

// PolicyRepository keeps one allocation policy per tenant.
type PolicyRepository struct {
	mu    sync.RWMutex
	items map[string]*model.AllocationPolicy
}

func NewPolicyRepository() *PolicyRepository {
	return &PolicyRepository{items: make(map[string]*model.AllocationPolicy)}
}

func (r *PolicyRepository) GetByTenant(_ context.Context, tenantID string) (*model.AllocationPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[tenantID]
	if !ok {
		return nil, model.ErrPolicyNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *PolicyRepository) Save(_ context.Context, p *model.AllocationPolicy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[p.TenantID]; ok {
		p.UUID = existing.UUID
		p.CreatedAt = existing.CreatedAt
	} else {
		if p.UUID == "" {
			p.UUID = nextID("policy")
		}
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	cp := *p
	r.items[p.TenantID] = &cp
	return nil
}

func (r *PolicyRepository) List(_ context.Context) ([]*model.AllocationPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.AllocationPolicy, 0, len(r.items))
	for _, v := range r.items {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

func (r *PolicyRepository) ListReferencingCluster(ctx context.Context, clusterName string) ([]*model.AllocationPolicy, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*model.AllocationPolicy
	for _, p := range all {
		if policyReferencesCluster(p, clusterName) {
			out = append(out, p)
		}
	}
	return out, nil
}

func policyReferencesCluster(p *model.AllocationPolicy, clusterName string) bool {
	manualRefs := func(m *model.ManualAllocation) bool {
		if m == nil {
			return false
		}
		for _, c := range m.Clusters {
			if c == clusterName {
				return true
			}
		}
		for _, clusters := range m.EnvClusters {
			for _, c := range clusters {
				if c == clusterName {
					return true
				}
			}
		}
		return false
	}
	if manualRefs(p.Manual) {
		return true
	}
	for _, rule := range p.Rules {
		if manualRefs(&rule.Policy) {
			return true
		}
	}
	return false
}
