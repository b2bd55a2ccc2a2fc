package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/bkpaas/workloads/domain/model"
)

// AppRepository is a thread-safe in-memory implementation.
type AppRepository struct {
	mu      sync.RWMutex
	items   map[string]*model.WlApp   // by UUID
	byName  map[string]string         // name -> UUID
	configs map[string][]model.Config // by app UUID, append order
}

func NewAppRepository() *AppRepository {
	return &AppRepository{
		items:   make(map[string]*model.WlApp),
		byName:  make(map[string]string),
		configs: make(map[string][]model.Config),
	}
}

func (r *AppRepository) Create(_ context.Context, a *model.WlApp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.UUID == "" {
		a.UUID = nextID("app")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	cp := *a
	r.items[a.UUID] = &cp
	r.byName[a.Name] = a.UUID
	return nil
}

func (r *AppRepository) Get(_ context.Context, id string) (*model.WlApp, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[id]
	if !ok {
		return nil, model.ErrAppNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *AppRepository) GetByName(_ context.Context, name string) (*model.WlApp, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	if !ok {
		return nil, model.ErrAppNotFound
	}
	cp := *r.items[id]
	return &cp, nil
}

func (r *AppRepository) Update(_ context.Context, a *model.WlApp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.items[a.UUID]
	if !ok {
		return model.ErrAppNotFound
	}
	delete(r.byName, old.Name)
	cp := *a
	cp.UpdatedAt = time.Now()
	r.items[a.UUID] = &cp
	r.byName[a.Name] = a.UUID
	return nil
}

func (r *AppRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[id]
	if !ok {
		return model.ErrAppNotFound
	}
	delete(r.byName, v.Name)
	delete(r.items, id)
	delete(r.configs, id)
	return nil
}

func (r *AppRepository) LatestConfig(_ context.Context, appUUID string) (*model.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seq := r.configs[appUUID]
	for i := len(seq) - 1; i >= 0; i-- {
		if seq[i].IsLatest {
			cp := seq[i]
			return &cp, nil
		}
	}
	return nil, model.ErrConfigNotFound
}

func (r *AppRepository) AppendConfig(_ context.Context, c *model.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.UUID == "" {
		c.UUID = nextID("config")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.IsLatest = true
	seq := r.configs[c.AppUUID]
	for i := range seq {
		seq[i].IsLatest = false
	}
	r.configs[c.AppUUID] = append(seq, *c)
	return nil
}

func (r *AppRepository) CountConfigsByCluster(_ context.Context, clusterName string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, seq := range r.configs {
		for _, c := range seq {
			if c.IsLatest && c.ClusterName == clusterName {
				n++
			}
		}
	}
	return n, nil
}
