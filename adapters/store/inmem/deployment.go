package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/bkpaas/workloads/domain/model"
)

// DeploymentRepository is a thread-safe in-memory implementation.
type DeploymentRepository struct {
	mu    sync.RWMutex
	items map[string]*model.Deployment
}

func NewDeploymentRepository() *DeploymentRepository {
	return &DeploymentRepository{items: make(map[string]*model.Deployment)}
}

func (r *DeploymentRepository) Create(_ context.Context, d *model.Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.UUID == "" {
		d.UUID = nextID("deploy")
	}
	if d.Status == "" {
		d.Status = model.DeployStatusPending
	}
	now := time.Now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt, d.UpdatedAt = now, now
	}
	cp := *d
	r.items[d.UUID] = &cp
	return nil
}

func (r *DeploymentRepository) Get(_ context.Context, id string) (*model.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *DeploymentRepository) Update(_ context.Context, d *model.Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[d.UUID]; !ok {
		return model.ErrNotFound
	}
	d.UpdatedAt = time.Now()
	cp := *d
	r.items[d.UUID] = &cp
	return nil
}
