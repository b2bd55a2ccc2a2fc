package cluster

import (
	"github.com/go-playground/validator/v10"

	"github.com/bkpaas/workloads/domain"
)

// Repos holds repositories needed for cluster use cases.
type Repos struct {
	Cluster domain.ClusterRepository
	Policy  domain.PolicyRepository
	App     domain.AppRepository
}

// UseCase wires repositories needed for cluster registry and allocation
// use cases.
type UseCase struct {
	Repos    *Repos
	validate *validator.Validate
}

// New builds a UseCase with input validation wired.
func New(repos *Repos) *UseCase {
	return &UseCase{Repos: repos, validate: validator.New()}
}
