package inmem

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bkpaas/workloads/domain"
)

// Store provides a unified interface for all in-memory repositories.
// Intended for tests and single-process experiments.
type Store struct {
	ClusterRepo    *ClusterRepository
	PolicyRepo     *PolicyRepository
	AppRepo        *AppRepository
	ReleaseRepo    *ReleaseRepository
	ProcessRepo    *ProcessRepository
	DeploymentRepo *DeploymentRepository
	AddressRepo    *AddressRepository
	CertRepo       *CertRepository
	AppModelRepo   *AppModelRepository
	CredentialRepo *CredentialRepository
}

// NewStore creates a new in-memory store with all repositories.
func NewStore() *Store {
	return &Store{
		ClusterRepo:    NewClusterRepository(),
		PolicyRepo:     NewPolicyRepository(),
		AppRepo:        NewAppRepository(),
		ReleaseRepo:    NewReleaseRepository(),
		ProcessRepo:    NewProcessRepository(),
		DeploymentRepo: NewDeploymentRepository(),
		AddressRepo:    NewAddressRepository(),
		CertRepo:       NewCertRepository(),
		AppModelRepo:   NewAppModelRepository(),
		CredentialRepo: NewCredentialRepository(),
	}
}

// Repositories groups the store as the domain wiring struct.
func (s *Store) Repositories() *domain.Repositories {
	return &domain.Repositories{
		Cluster:    s.ClusterRepo,
		Policy:     s.PolicyRepo,
		App:        s.AppRepo,
		Release:    s.ReleaseRepo,
		Process:    s.ProcessRepo,
		Deployment: s.DeploymentRepo,
		Address:    s.AddressRepo,
		Cert:       s.CertRepo,
		AppModel:   s.AppModelRepo,
		Credential: s.CredentialRepo,
	}
}

var idSeq atomic.Int64

func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), idSeq.Add(1))
}

// Compile-time assertions
var _ domain.ClusterRepository = (*ClusterRepository)(nil)
var _ domain.PolicyRepository = (*PolicyRepository)(nil)
var _ domain.AppRepository = (*AppRepository)(nil)
var _ domain.ReleaseRepository = (*ReleaseRepository)(nil)
var _ domain.ProcessRepository = (*ProcessRepository)(nil)
var _ domain.DeploymentRepository = (*DeploymentRepository)(nil)
var _ domain.AddressRepository = (*AddressRepository)(nil)
var _ domain.CertRepository = (*CertRepository)(nil)
var _ domain.AppModelRepository = (*AppModelRepository)(nil)
var _ domain.CredentialRepository = (*CredentialRepository)(nil)
