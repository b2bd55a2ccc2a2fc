package cnative

import (
	"github.com/bkpaas/workloads/domain"
)

// Repos holds repositories needed for cloud-native model use cases.
type Repos struct {
	AppModel domain.AppModelRepository
}

// UseCase manages the cloud-native application model: manifest imports,
// revisions and the env-var migration path.
type UseCase struct {
	Repos *Repos
	Plans *PlanRegistry
}

// New builds a cloud-native UseCase with the built-in quota plans.
func New(repos *Repos) *UseCase {
	return &UseCase{Repos: repos, Plans: NewPlanRegistry()}
}
