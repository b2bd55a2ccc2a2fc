package process

import (
	"time"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/mapper"
	"github.com/bkpaas/workloads/internal/ratelimit"
)

// DefaultOperationInterval is the minimum gap between two mutations of the
// same process.
const DefaultOperationInterval = 3 * time.Second

// Repos holds repositories needed for process use cases.
type Repos struct {
	App     domain.AppRepository
	Process domain.ProcessRepository
}

// UseCase manages the live processes of workload apps: scaling, listing
// and watching.
type UseCase struct {
	Repos    *Repos
	Registry *kube.Registry

	OperationInterval time.Duration
	// MaxReplicas caps a single process of a cloud-native app.
	MaxReplicas int
	// ActionBucket guards per-user actions like watch opens; nil disables
	// the guard.
	ActionBucket *ratelimit.TokenBucket
	// DefaultMapperVersion applies to apps whose config carries no
	// mapper_version.
	DefaultMapperVersion mapper.Version
}

// New builds a process UseCase with default limits.
func New(repos *Repos, registry *kube.Registry) *UseCase {
	return &UseCase{
		Repos:                repos,
		Registry:             registry,
		OperationInterval:    DefaultOperationInterval,
		MaxReplicas:          model.DefaultMaxReplicasPerProcess,
		DefaultMapperVersion: mapper.DefaultVersion,
	}
}
