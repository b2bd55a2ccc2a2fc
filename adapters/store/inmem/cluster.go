package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bkpaas/workloads/domain/model"
)

// ClusterRepository is a thread-safe in-memory implementation, keyed by
// cluster name.
type ClusterRepository struct {
	mu    sync.RWMutex
	items map[string]*model.Cluster

	// guards are consulted on Delete; wired by NewStore users that want the
	// same referential checks as the RDB store.
	Apps     *AppRepository
	Policies *PolicyRepository
}

func NewClusterRepository() *ClusterRepository {
	return &ClusterRepository{items: make(map[string]*model.Cluster)}
}

func (r *ClusterRepository) Create(_ context.Context, c *model.Cluster) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.Name]; ok {
		return fmt.Errorf("%w: cluster %s already exists", model.ErrConflict, c.Name)
	}
	if c.UUID == "" {
		c.UUID = nextID("clus")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	cp := *c
	r.items[c.Name] = &cp
	return nil
}

func (r *ClusterRepository) Get(_ context.Context, name string) (*model.Cluster, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[name]
	if !ok {
		return nil, model.ErrClusterNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *ClusterRepository) List(_ context.Context) ([]*model.Cluster, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Cluster, 0, len(r.items))
	for _, v := range r.items {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ClusterRepository) Update(_ context.Context, c *model.Cluster) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.Name]; !ok {
		return model.ErrClusterNotFound
	}
	cp := *c
	cp.UpdatedAt = time.Now()
	r.items[c.Name] = &cp
	return nil
}

func (r *ClusterRepository) Delete(ctx context.Context, name string) error {
	if r.Apps != nil {
		n, err := r.Apps.CountConfigsByCluster(ctx, name)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %d workload configs still bound to cluster %s",
				model.ErrValidationFailed, n, name)
		}
	}
	if r.Policies != nil {
		refs, err := r.Policies.ListReferencingCluster(ctx, name)
		if err != nil {
			return err
		}
		if len(refs) > 0 {
			return fmt.Errorf("%w: %d allocation policies reference cluster %s",
				model.ErrValidationFailed, len(refs), name)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[name]; !ok {
		return model.ErrClusterNotFound
	}
	delete(r.items, name)
	return nil
}
