package domain

import (
	"context"

	"github.com/bkpaas/workloads/domain/model"
)

// ClusterRepository stores and retrieves Cluster aggregates.
type ClusterRepository interface {
	Create(ctx context.Context, c *model.Cluster) error
	Get(ctx context.Context, name string) (*model.Cluster, error)
	List(ctx context.Context) ([]*model.Cluster, error)
	Update(ctx context.Context, c *model.Cluster) error
	// Delete fails with model.ErrValidationFailed while any workload config
	// or allocation policy references the cluster.
	Delete(ctx context.Context, name string) error
}

// PolicyRepository stores per-tenant allocation policies.
type PolicyRepository interface {
	GetByTenant(ctx context.Context, tenantID string) (*model.AllocationPolicy, error)
	Save(ctx context.Context, p *model.AllocationPolicy) error
	List(ctx context.Context) ([]*model.AllocationPolicy, error)
	ListReferencingCluster(ctx context.Context, clusterName string) ([]*model.AllocationPolicy, error)
}

// AppRepository stores workload apps and their config sequences.
type AppRepository interface {
	Create(ctx context.Context, a *model.WlApp) error
	Get(ctx context.Context, uuid string) (*model.WlApp, error)
	GetByName(ctx context.Context, name string) (*model.WlApp, error)
	Update(ctx context.Context, a *model.WlApp) error
	Delete(ctx context.Context, uuid string) error

	// LatestConfig returns the active config row of an app.
	LatestConfig(ctx context.Context, appUUID string) (*model.Config, error)
	// AppendConfig persists a new config row and marks it latest in one
	// transaction.
	AppendConfig(ctx context.Context, c *model.Config) error
	// CountConfigsByCluster counts active config rows bound to a cluster.
	CountConfigsByCluster(ctx context.Context, clusterName string) (int64, error)
}

// ReleaseRepository stores releases and builds.
type ReleaseRepository interface {
	// CreateRelease assigns the next contiguous version for the app.
	CreateRelease(ctx context.Context, r *model.Release) error
	GetRelease(ctx context.Context, uuid string) (*model.Release, error)
	// LatestRelease returns the newest release; successfulOnly skips failed
	// rows so readers needing a procfile see a consistent one.
	LatestRelease(ctx context.Context, appUUID string, successfulOnly bool) (*model.Release, error)
	ListReleases(ctx context.Context, appUUID string) ([]*model.Release, error)

	CreateBuild(ctx context.Context, b *model.Build) error
	GetBuild(ctx context.Context, uuid string) (*model.Build, error)

	CreateBuildProcess(ctx context.Context, bp *model.BuildProcess) error
	UpdateBuildProcess(ctx context.Context, bp *model.BuildProcess) error
}

// ProcessRepository stores per-process target state.
type ProcessRepository interface {
	Upsert(ctx context.Context, s *model.ProcessSpec) error
	Get(ctx context.Context, appUUID, name string) (*model.ProcessSpec, error)
	ListByApp(ctx context.Context, appUUID string) ([]*model.ProcessSpec, error)
	Delete(ctx context.Context, appUUID, name string) error
}

// DeploymentRepository stores deployments with phases and steps.
type DeploymentRepository interface {
	Create(ctx context.Context, d *model.Deployment) error
	Get(ctx context.Context, uuid string) (*model.Deployment, error)
	Update(ctx context.Context, d *model.Deployment) error
}

// AddressRepository stores platform-generated and custom addresses.
type AddressRepository interface {
	ListAppDomains(ctx context.Context, appUUID string) ([]*model.AppDomain, error)
	SaveAppDomain(ctx context.Context, d *model.AppDomain) error
	DeleteAppDomain(ctx context.Context, uuid string) error

	ListSubpaths(ctx context.Context, appUUID string) ([]*model.AppSubpath, error)
	SaveSubpath(ctx context.Context, s *model.AppSubpath) error
	DeleteSubpath(ctx context.Context, uuid string) error
	// GetSubpathByValue finds the app currently owning a subpath.
	GetSubpathByValue(ctx context.Context, subpath string) (*model.AppSubpath, error)

	ListCustomDomains(ctx context.Context, appUUID string) ([]*model.CustomDomain, error)
	SaveCustomDomain(ctx context.Context, d *model.CustomDomain) error
	DeleteCustomDomain(ctx context.Context, uuid string) error
}

// CertRepository stores TLS certificates.
type CertRepository interface {
	GetCert(ctx context.Context, tenantID, name string) (*model.Cert, error)
	GetSharedCert(ctx context.Context, tenantID, name string) (*model.SharedCert, error)
	ListSharedCerts(ctx context.Context, tenantID string) ([]*model.SharedCert, error)
	SaveSharedCert(ctx context.Context, c *model.SharedCert) error
	DeleteSharedCert(ctx context.Context, tenantID, name string) error
}

// AppModelRepository stores cloud-native app model resources and deploys.
type AppModelRepository interface {
	GetResource(ctx context.Context, appCode, moduleName string) (*model.AppModelResource, error)
	SaveResource(ctx context.Context, r *model.AppModelResource) error
	CreateRevision(ctx context.Context, rev *model.AppModelRevision) error
	CreateDeploy(ctx context.Context, d *model.AppModelDeploy) error
	UpdateDeploy(ctx context.Context, d *model.AppModelDeploy) error
	ListMounts(ctx context.Context, appCode, moduleName string) ([]*model.Mount, error)
	SaveMount(ctx context.Context, m *model.Mount) error
	ListConfigVars(ctx context.Context, appCode, moduleName string) ([]*model.ConfigVar, error)
	SaveConfigVar(ctx context.Context, v *model.ConfigVar) error
}

// CredentialRepository stores app registry credentials.
type CredentialRepository interface {
	ListImageCredentials(ctx context.Context, appUUID string) ([]*model.AppImageCredential, error)
	SaveImageCredential(ctx context.Context, c *model.AppImageCredential) error
}

// Repositories groups every repository interface for wiring.
type Repositories struct {
	Cluster    ClusterRepository
	Policy     PolicyRepository
	App        AppRepository
	Release    ReleaseRepository
	Process    ProcessRepository
	Deployment DeploymentRepository
	Address    AddressRepository
	Cert       CertRepository
	AppModel   AppModelRepository
	Credential CredentialRepository
}
