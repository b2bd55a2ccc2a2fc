package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/bkpaas/workloads/domain/model"
)

// CredentialRepository is a thread-safe in-memory implementation, keyed by
// (app UUID, registry).
type CredentialRepository struct {
	mu    sync.RWMutex
	items map[[2]string]*model.AppImageCredential
}

func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{items: make(map[[2]string]*model.AppImageCredential)}
}

func (r *CredentialRepository) ListImageCredentials(_ context.Context, appUUID string) ([]*model.AppImageCredential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.AppImageCredential
	for key, v := range r.items {
		if key[0] == appUUID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Registry < out[j].Registry })
	return out, nil
}

func (r *CredentialRepository) SaveImageCredential(_ context.Context, c *model.AppImageCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{c.AppUUID, c.Registry}
	if existing, ok := r.items[key]; ok {
		c.UUID = existing.UUID
	} else if c.UUID == "" {
		c.UUID = nextID("cred")
	}
	cp := *c
	r.items[key] = &cp
	return nil
}
