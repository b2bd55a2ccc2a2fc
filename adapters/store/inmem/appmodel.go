package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bkpaas/workloads/domain/model"
)

// AppModelRepository is a thread-safe in-memory implementation.
type AppModelRepository struct {
	mu        sync.RWMutex
	resources map[[2]string]*model.AppModelResource // (appCode, module)
	revisions map[string][]*model.AppModelRevision  // by resource UUID
	deploys   map[string]*model.AppModelDeploy
	mounts    map[string]*model.Mount
	vars      map[[4]string]*model.ConfigVar // (appCode, module, env, key)
}

func NewAppModelRepository() *AppModelRepository {
	return &AppModelRepository{
		resources: make(map[[2]string]*model.AppModelResource),
		revisions: make(map[string][]*model.AppModelRevision),
		deploys:   make(map[string]*model.AppModelDeploy),
		mounts:    make(map[string]*model.Mount),
		vars:      make(map[[4]string]*model.ConfigVar),
	}
}

func (r *AppModelRepository) GetResource(_ context.Context, appCode, moduleName string) (*model.AppModelResource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.resources[[2]string{appCode, moduleName}]
	if !ok {
		return nil, model.ErrAppModelNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *AppModelRepository) SaveResource(_ context.Context, res *model.AppModelResource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{res.AppCode, res.ModuleName}
	if existing, ok := r.resources[key]; ok {
		res.UUID = existing.UUID
		res.CreatedAt = existing.CreatedAt
	} else {
		if res.UUID == "" {
			res.UUID = nextID("appmodel")
		}
		res.CreatedAt = time.Now()
	}
	res.UpdatedAt = time.Now()
	cp := *res
	r.resources[key] = &cp
	return nil
}

func (r *AppModelRepository) CreateRevision(_ context.Context, rev *model.AppModelRevision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rev.UUID == "" {
		rev.UUID = nextID("revision")
	}
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now()
	}
	rev.Version = len(r.revisions[rev.ResourceUUID]) + 1
	cp := *rev
	r.revisions[rev.ResourceUUID] = append(r.revisions[rev.ResourceUUID], &cp)
	return nil
}

func (r *AppModelRepository) CreateDeploy(_ context.Context, d *model.AppModelDeploy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.UUID == "" {
		d.UUID = nextID("appmodel-deploy")
	}
	if d.Status == "" {
		d.Status = model.AppModelDeployPending
	}
	now := time.Now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt, d.UpdatedAt = now, now
	}
	cp := *d
	r.deploys[d.UUID] = &cp
	return nil
}

func (r *AppModelRepository) UpdateDeploy(_ context.Context, d *model.AppModelDeploy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.deploys[d.UUID]; !ok {
		return model.ErrNotFound
	}
	d.UpdatedAt = time.Now()
	cp := *d
	r.deploys[d.UUID] = &cp
	return nil
}

func (r *AppModelRepository) ListMounts(_ context.Context, appCode, moduleName string) ([]*model.Mount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Mount
	for _, m := range r.mounts {
		if m.AppCode == appCode && m.ModuleName == moduleName {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *AppModelRepository) SaveMount(_ context.Context, m *model.Mount) error {
	switch m.SourceType {
	case model.MountSourceConfigMap, model.MountSourcePersistentStorage:
	default:
		return fmt.Errorf("%w: unknown mount source type %q", model.ErrValidationFailed, m.SourceType)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.UUID == "" {
		m.UUID = nextID("mount")
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	cp := *m
	r.mounts[m.UUID] = &cp
	return nil
}

func (r *AppModelRepository) ListConfigVars(_ context.Context, appCode, moduleName string) ([]*model.ConfigVar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.ConfigVar
	for _, v := range r.vars {
		if v.AppCode == appCode && v.ModuleName == moduleName {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Environment != out[j].Environment {
			return out[i].Environment < out[j].Environment
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (r *AppModelRepository) SaveConfigVar(_ context.Context, v *model.ConfigVar) error {
	if v.Key == "" {
		return fmt.Errorf("%w: config var key is required", model.ErrValidationFailed)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [4]string{v.AppCode, v.ModuleName, v.Environment, v.Key}
	if existing, ok := r.vars[key]; ok {
		v.UUID = existing.UUID
		v.CreatedAt = existing.CreatedAt
	} else {
		if v.UUID == "" {
			v.UUID = nextID("configvar")
		}
		v.CreatedAt = time.Now()
	}
	cp := *v
	r.vars[key] = &cp
	return nil
}
