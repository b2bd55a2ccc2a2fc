package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bkpaas/workloads/domain/model"
)

// CertRepository is a thread-safe in-memory implementation, keyed by
// (tenant, name).
type CertRepository struct {
	mu     sync.RWMutex
	certs  map[[2]string]*model.Cert
	shared map[[2]string]*model.SharedCert
}

func NewCertRepository() *CertRepository {
	return &CertRepository{
		certs:  make(map[[2]string]*model.Cert),
		shared: make(map[[2]string]*model.SharedCert),
	}
}

// AddCert seeds a directly attached cert; tests use this.
func (r *CertRepository) AddCert(c *model.Cert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.UUID == "" {
		c.UUID = nextID("cert")
	}
	cp := *c
	r.certs[[2]string{c.TenantID, c.Name}] = &cp
}

func (r *CertRepository) GetCert(_ context.Context, tenantID, name string) (*model.Cert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.certs[[2]string{tenantID, name}]
	if !ok {
		return nil, model.ErrCertNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *CertRepository) GetSharedCert(_ context.Context, tenantID, name string) (*model.SharedCert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.shared[[2]string{tenantID, name}]
	if !ok {
		return nil, model.ErrCertNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *CertRepository) ListSharedCerts(_ context.Context, tenantID string) ([]*model.SharedCert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.SharedCert
	for key, v := range r.shared {
		if key[0] == tenantID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CertRepository) SaveSharedCert(_ context.Context, c *model.SharedCert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{c.TenantID, c.Name}
	if existing, ok := r.shared[key]; ok {
		c.UUID = existing.UUID
		c.CreatedAt = existing.CreatedAt
	} else {
		if c.UUID == "" {
			c.UUID = nextID("shared-cert")
		}
		c.CreatedAt = time.Now()
	}
	cp := *c
	r.shared[key] = &cp
	return nil
}

func (r *CertRepository) DeleteSharedCert(_ context.Context, tenantID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{tenantID, name}
	if _, ok := r.shared[key]; !ok {
		return model.ErrCertNotFound
	}
	delete(r.shared, key)
	return nil
}
