package build

import (
	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/config"
	"github.com/bkpaas/workloads/domain"
	"github.com/bkpaas/workloads/internal/ratelimit"
)

// Repos holds repositories needed for build use cases.
type Repos struct {
	App     domain.AppRepository
	Release domain.ReleaseRepository
	Cluster domain.ClusterRepository
}

// UseCase runs builds: it launches one builder pod per run, polls it to a
// terminal state and records the resulting artifact.
type UseCase struct {
	Repos    *Repos
	Registry *kube.Registry
	Settings *config.BuildSettings
	// Lock serialises builds per app; nil disables the guard.
	Lock *ratelimit.Lock
}

// New builds a build UseCase.
func New(repos *Repos, registry *kube.Registry, settings *config.BuildSettings) *UseCase {
	return &UseCase{Repos: repos, Registry: registry, Settings: settings}
}
