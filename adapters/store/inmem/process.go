package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bkpaas/workloads/domain/model"
)

// ProcessRepository is a thread-safe in-memory implementation, keyed by
// (app UUID, process name).
type ProcessRepository struct {
	mu    sync.RWMutex
	items map[string]map[string]*model.ProcessSpec
}

func NewProcessRepository() *ProcessRepository {
	return &ProcessRepository{items: make(map[string]map[string]*model.ProcessSpec)}
}

func (r *ProcessRepository) Upsert(_ context.Context, s *model.ProcessSpec) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byName := r.items[s.AppUUID]
	if byName == nil {
		byName = make(map[string]*model.ProcessSpec)
		r.items[s.AppUUID] = byName
	}
	if existing, ok := byName[s.Name]; ok {
		s.UUID = existing.UUID
		s.CreatedAt = existing.CreatedAt
	} else {
		if s.UUID == "" {
			s.UUID = nextID("proc")
		}
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = time.Now()
	cp := *s
	byName[s.Name] = &cp
	return nil
}

func (r *ProcessRepository) Get(_ context.Context, appUUID, name string) (*model.ProcessSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[appUUID][name]
	if !ok {
		return nil, model.ErrProcessNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *ProcessRepository) ListByApp(_ context.Context, appUUID string) ([]*model.ProcessSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byName := r.items[appUUID]
	out := make([]*model.ProcessSpec, 0, len(byName))
	for _, v := range byName {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProcessRepository) Delete(_ context.Context, appUUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[appUUID][name]; !ok {
		return model.ErrProcessNotFound
	}
	delete(r.items[appUUID], name)
	return nil
}
