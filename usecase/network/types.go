package network

import (
	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain"
	"github.com/bkpaas/workloads/internal/mapper"
)

// Repos holds repositories needed for networking use cases.
type Repos struct {
	App     domain.AppRepository
	Address domain.AddressRepository
	Cert    domain.CertRepository
	Cluster domain.ClusterRepository
}

// UseCase wires repositories and the cluster client registry for service,
// ingress and address management.
type UseCase struct {
	Repos    *Repos
	Registry *kube.Registry
	// DefaultMapperVersion applies to apps whose config carries no
	// mapper_version.
	DefaultMapperVersion mapper.Version
}

// New builds a networking UseCase.
func New(repos *Repos, registry *kube.Registry) *UseCase {
	return &UseCase{Repos: repos, Registry: registry, DefaultMapperVersion: mapper.DefaultVersion}
}
