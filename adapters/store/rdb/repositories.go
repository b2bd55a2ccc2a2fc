package rdb

import (
	"gorm.io/gorm"

	"github.com/bkpaas/workloads/domain"
)

// NewRepositories wires every repository over one DB handle.
func NewRepositories(db *gorm.DB) *domain.Repositories {
	return &domain.Repositories{
		Cluster:    NewClusterRepository(db),
		Policy:     NewPolicyRepository(db),
		App:        NewAppRepository(db),
		Release:    NewReleaseRepository(db),
		Process:    NewProcessRepository(db),
		Deployment: NewDeploymentRepository(db),
		Address:    NewAddressRepository(db),
		Cert:       NewCertRepository(db),
		AppModel:   NewAppModelRepository(db),
		Credential: NewCredentialRepository(db),
	}
}
