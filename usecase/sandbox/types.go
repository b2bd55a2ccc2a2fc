package sandbox

import (
	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain"
)

// devServerPort is where the in-container dev server listens.
const devServerPort = 8000

// Repos holds repositories needed for sandbox use cases.
type Repos struct {
	App     domain.AppRepository
	Cluster domain.ClusterRepository
}

// UseCase manages dev/agent sandboxes: one Pod, Service and Ingress per
// sandbox instance inside the app's namespace.
type UseCase struct {
	Repos    *Repos
	Registry *kube.Registry
}

// New builds a sandbox UseCase.
func New(repos *Repos, registry *kube.Registry) *UseCase {
	return &UseCase{Repos: repos, Registry: registry}
}
