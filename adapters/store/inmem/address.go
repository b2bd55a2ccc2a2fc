package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bkpaas/workloads/domain/model"
)

// AddressRepository is a thread-safe in-memory implementation.
type AddressRepository struct {
	mu       sync.RWMutex
	domains  map[string]*model.AppDomain
	subpaths map[string]*model.AppSubpath
	customs  map[string]*model.CustomDomain
}

func NewAddressRepository() *AddressRepository {
	return &AddressRepository{
		domains:  make(map[string]*model.AppDomain),
		subpaths: make(map[string]*model.AppSubpath),
		customs:  make(map[string]*model.CustomDomain),
	}
}

func (r *AddressRepository) ListAppDomains(_ context.Context, appUUID string) ([]*model.AppDomain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.AppDomain
	for _, v := range r.domains {
		if v.AppUUID == appUUID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Host < out[j].Host })
	return out, nil
}

func (r *AddressRepository) SaveAppDomain(_ context.Context, d *model.AppDomain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.UUID == "" {
		d.UUID = nextID("domain")
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	cp := *d
	r.domains[d.UUID] = &cp
	return nil
}

func (r *AddressRepository) DeleteAppDomain(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.domains[id]; !ok {
		return model.ErrDomainNotFound
	}
	delete(r.domains, id)
	return nil
}

func (r *AddressRepository) ListSubpaths(_ context.Context, appUUID string) ([]*model.AppSubpath, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.AppSubpath
	for _, v := range r.subpaths {
		if v.AppUUID == appUUID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subpath < out[j].Subpath })
	return out, nil
}

func (r *AddressRepository) SaveSubpath(_ context.Context, s *model.AppSubpath) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.UUID == "" {
		s.UUID = nextID("subpath")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	cp := *s
	r.subpaths[s.UUID] = &cp
	return nil
}

func (r *AddressRepository) DeleteSubpath(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subpaths[id]; !ok {
		return model.ErrDomainNotFound
	}
	delete(r.subpaths, id)
	return nil
}

func (r *AddressRepository) GetSubpathByValue(_ context.Context, subpath string) (*model.AppSubpath, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.subpaths {
		if v.Subpath == subpath {
			cp := *v
			return &cp, nil
		}
	}
	return nil, model.ErrDomainNotFound
}

func (r *AddressRepository) ListCustomDomains(_ context.Context, appUUID string) ([]*model.CustomDomain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.CustomDomain
	for _, v := range r.customs {
		if v.AppUUID == appUUID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Host != out[j].Host {
			return out[i].Host < out[j].Host
		}
		return out[i].PathPrefix < out[j].PathPrefix
	})
	return out, nil
}

func (r *AddressRepository) SaveCustomDomain(_ context.Context, d *model.CustomDomain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.UUID == "" {
		d.UUID = nextID("custom")
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	cp := *d
	r.customs[d.UUID] = &cp
	return nil
}

func (r *AddressRepository) DeleteCustomDomain(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customs[id]; !ok {
		return model.ErrDomainNotFound
	}
	delete(r.customs, id)
	return nil
}
