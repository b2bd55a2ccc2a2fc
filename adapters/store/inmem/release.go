package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/bkpaas/workloads/domain/model"
)

// ReleaseRepository is a thread-safe in-memory implementation.
type ReleaseRepository struct {
	mu        sync.RWMutex
	releases  map[string]*model.Release // by UUID
	byApp     map[string][]string       // app UUID -> release UUIDs, version order
	builds    map[string]*model.Build
	buildRuns map[string]*model.BuildProcess
}

func NewReleaseRepository() *ReleaseRepository {
	return &ReleaseRepository{
		releases:  make(map[string]*model.Release),
		byApp:     make(map[string][]string),
		builds:    make(map[string]*model.Build),
		buildRuns: make(map[string]*model.BuildProcess),
	}
}

func (r *ReleaseRepository) CreateRelease(_ context.Context, rel *model.Release) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rel.UUID == "" {
		rel.UUID = nextID("release")
	}
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = time.Now()
	}
	rel.Version = len(r.byApp[rel.AppUUID]) + 1
	cp := *rel
	r.releases[rel.UUID] = &cp
	r.byApp[rel.AppUUID] = append(r.byApp[rel.AppUUID], rel.UUID)
	return nil
}

func (r *ReleaseRepository) GetRelease(_ context.Context, id string) (*model.Release, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.releases[id]
	if !ok {
		return nil, model.ErrReleaseNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *ReleaseRepository) LatestRelease(_ context.Context, appUUID string, successfulOnly bool) (*model.Release, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byApp[appUUID]
	for i := len(ids) - 1; i >= 0; i-- {
		rel := r.releases[ids[i]]
		if successfulOnly && rel.Failed {
			continue
		}
		cp := *rel
		return &cp, nil
	}
	return nil, model.ErrReleaseNotFound
}

func (r *ReleaseRepository) ListReleases(_ context.Context, appUUID string) ([]*model.Release, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byApp[appUUID]
	out := make([]*model.Release, 0, len(ids))
	for _, id := range ids {
		cp := *r.releases[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *ReleaseRepository) CreateBuild(_ context.Context, b *model.Build) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.UUID == "" {
		b.UUID = nextID("build")
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	cp := *b
	r.builds[b.UUID] = &cp
	return nil
}

func (r *ReleaseRepository) GetBuild(_ context.Context, id string) (*model.Build, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.builds[id]
	if !ok {
		return nil, model.ErrBuildNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *ReleaseRepository) CreateBuildProcess(_ context.Context, bp *model.BuildProcess) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bp.UUID == "" {
		bp.UUID = nextID("bp")
	}
	if bp.Status == "" {
		bp.Status = model.BuildStatusPending
	}
	now := time.Now()
	if bp.CreatedAt.IsZero() {
		bp.CreatedAt, bp.UpdatedAt = now, now
	}
	cp := *bp
	r.buildRuns[bp.UUID] = &cp
	return nil
}

func (r *ReleaseRepository) UpdateBuildProcess(_ context.Context, bp *model.BuildProcess) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buildRuns[bp.UUID]; !ok {
		return model.ErrBuildNotFound
	}
	bp.UpdatedAt = time.Now()
	cp := *bp
	r.buildRuns[bp.UUID] = &cp
	return nil
}
