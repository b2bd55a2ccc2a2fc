package release

import (
	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/config"
	"github.com/bkpaas/workloads/domain"
	"github.com/bkpaas/workloads/internal/mapper"
	"github.com/bkpaas/workloads/internal/ratelimit"
	"github.com/bkpaas/workloads/usecase/network"
)

// Repos holds repositories needed for release use cases.
type Repos struct {
	App        domain.AppRepository
	Release    domain.ReleaseRepository
	Deployment domain.DeploymentRepository
	Process    domain.ProcessRepository
	Cluster    domain.ClusterRepository
	Credential domain.CredentialRepository
	AppModel   domain.AppModelRepository
}

// UseCase drives a deployment through its phases: pre-release hook, config
// and release rows, per-process workloads, readiness polling and the final
// platform callback.
type UseCase struct {
	Repos    *Repos
	Registry *kube.Registry
	// Network owns Services, Ingresses and domain group mappings of the
	// released processes.
	Network  *network.UseCase
	Settings *config.Settings
	// Lock serialises releases per app; nil disables the guard.
	Lock *ratelimit.Lock
	// Notifier reports terminal statuses to the platform; nil disables
	// callbacks.
	Notifier *Notifier

	DefaultMapperVersion mapper.Version
}

// New builds a release UseCase.
func New(repos *Repos, registry *kube.Registry, net *network.UseCase, settings *config.Settings) *UseCase {
	u := &UseCase{
		Repos:                repos,
		Registry:             registry,
		Network:              net,
		Settings:             settings,
		DefaultMapperVersion: mapper.DefaultVersion,
	}
	if settings != nil && settings.CallbackURL != "" {
		u.Notifier = NewNotifier(settings.CallbackURL)
	}
	return u
}
