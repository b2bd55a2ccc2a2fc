package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/naming"
)

// Provision materialises the platform-generated addresses of an app
// environment from its cluster's ingress config: one subdomain host per
// root domain and one subpath reservation per sub-path domain. Idempotent.
func (u *UseCase) Provision(ctx context.Context, appName string) error {
	app, cluster, err := u.appCluster(ctx, appName)
	if err != nil {
		return err
	}
	defaultModule := app.ModuleName == "default"

	existing, err := u.Repos.Address.ListAppDomains(ctx, app.UUID)
	if err != nil {
		return err
	}
	haveHost := map[string]bool{}
	for _, d := range existing {
		haveHost[d.Host] = true
	}
	for _, root := range model.SortedRootDomains(cluster.Ingress.AppRootDomains) {
		host := naming.SubDomainHost(app.AppCode, app.ModuleName, app.Environment, root.Name, defaultModule)
		if haveHost[host] {
			continue
		}
		err := u.Repos.Address.SaveAppDomain(ctx, &model.AppDomain{
			AppUUID:      app.UUID,
			TenantID:     app.TenantID,
			Host:         host,
			HTTPSEnabled: root.HTTPSEnabled,
		})
		if err != nil {
			return err
		}
	}

	if len(cluster.Ingress.SubPathDomains) == 0 {
		return nil
	}
	subpath := naming.SubPath(app.AppCode, app.ModuleName, app.Environment, defaultModule)
	owner, err := u.Repos.Address.GetSubpathByValue(ctx, subpath)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return u.Repos.Address.SaveSubpath(ctx, &model.AppSubpath{
			AppUUID:  app.UUID,
			TenantID: app.TenantID,
			Subpath:  subpath,
		})
	case err != nil:
		return err
	}
	if owner.AppUUID != app.UUID {
		return fmt.Errorf("%w: subpath %s is held by another app", model.ErrConflict, subpath)
	}
	return nil
}

// ListAddresses assembles every exposed address of an app environment:
// platform subdomains, subpath entries under the cluster's shared sub-path
// domains, and user-declared custom domains. HTTPS custom domains resolve
// their certificate lazily through the shared-cert store.
func (u *UseCase) ListAddresses(ctx context.Context, appName string) ([]model.Address, error) {
	app, cluster, err := u.appCluster(ctx, appName)
	if err != nil {
		return nil, err
	}

	var out []model.Address
	domains, err := u.Repos.Address.ListAppDomains(ctx, app.UUID)
	if err != nil {
		return nil, err
	}
	for _, d := range domains {
		addr := model.Address{
			Type:         model.AddressTypeSubDomain,
			Host:         d.Host,
			PathPrefix:   "/",
			HTTPSEnabled: d.HTTPSEnabled,
		}
		if d.HTTPSEnabled {
			if cert, err := u.PickSharedCert(ctx, app.TenantID, d.Host); err == nil {
				addr.CertSecretName = naming.CertSecretName(cert.Name)
			} else if !errors.Is(err, model.ErrCertNotFound) {
				return nil, err
			}
		}
		out = append(out, addr)
	}

	subpaths, err := u.Repos.Address.ListSubpaths(ctx, app.UUID)
	if err != nil {
		return nil, err
	}
	for _, sp := range subpaths {
		for _, root := range model.SortedRootDomains(cluster.Ingress.SubPathDomains) {
			out = append(out, model.Address{
				Type:         model.AddressTypeSubPath,
				Host:         root.Name,
				PathPrefix:   sp.Subpath,
				HTTPSEnabled: root.HTTPSEnabled,
			})
		}
	}

	customs, err := u.Repos.Address.ListCustomDomains(ctx, app.UUID)
	if err != nil {
		return nil, err
	}
	for _, d := range customs {
		addr := model.Address{
			Type:         model.AddressTypeCustom,
			Host:         d.Host,
			PathPrefix:   d.PathPrefix,
			HTTPSEnabled: d.HTTPSEnabled,
		}
		if d.HTTPSEnabled {
			name, err := u.resolveCustomCert(ctx, app.TenantID, d)
			if err != nil {
				return nil, err
			}
			addr.CertSecretName = name
		}
		out = append(out, addr)
	}
	return out, nil
}

// resolveCustomCert returns the Secret name for a custom domain's TLS
// material: an explicit cert, then an explicit shared cert, then a glob
// match over the tenant's shared certs. No match leaves the domain served
// over the default certificate.
func (u *UseCase) resolveCustomCert(ctx context.Context, tenantID string, d *model.CustomDomain) (string, error) {
	switch {
	case d.CertName != "":
		if _, err := u.Repos.Cert.GetCert(ctx, tenantID, d.CertName); err != nil {
			return "", err
		}
		return naming.CertSecretName(d.CertName), nil
	case d.SharedCertName != "":
		if _, err := u.Repos.Cert.GetSharedCert(ctx, tenantID, d.SharedCertName); err != nil {
			return "", err
		}
		return naming.CertSecretName(d.SharedCertName), nil
	}
	cert, err := u.PickSharedCert(ctx, tenantID, d.Host)
	if err != nil {
		if errors.Is(err, model.ErrCertNotFound) {
			return "", nil
		}
		return "", err
	}
	return naming.CertSecretName(cert.Name), nil
}

// PickSharedCert returns the first shared cert of a tenant whose glob
// patterns match the host. Certs are scanned in name order so the pick is
// deterministic.
func (u *UseCase) PickSharedCert(ctx context.Context, tenantID, host string) (*model.SharedCert, error) {
	certs, err := u.Repos.Cert.ListSharedCerts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, c := range certs {
		if c.MatchesHost(host) {
			return c, nil
		}
	}
	return nil, model.ErrCertNotFound
}

// ExposedURL returns the canonical access URL of the app environment,
// honoring the cluster's exposed URL type. Custom domains never shadow the
// platform address here.
func (u *UseCase) ExposedURL(ctx context.Context, appName string) (string, error) {
	app, cluster, err := u.appCluster(ctx, appName)
	if err != nil {
		return "", err
	}
	addrs, err := u.ListAddresses(ctx, appName)
	if err != nil {
		return "", err
	}
	want := model.AddressTypeSubPath
	if cluster.ExposedURLType == model.ExposedURLTypeSubDomain {
		want = model.AddressTypeSubDomain
	}
	for _, a := range addrs {
		if a.Type == want {
			return a.URL(cluster.Ingress.PortMap), nil
		}
	}
	// Fall back to any platform address before giving up.
	for _, a := range addrs {
		if a.Type != model.AddressTypeCustom {
			return a.URL(cluster.Ingress.PortMap), nil
		}
	}
	return "", fmt.Errorf("%w: app %s has no exposed address", model.ErrDomainNotFound, app.Name)
}

// appCluster loads the app and the cluster its latest config binds it to.
func (u *UseCase) appCluster(ctx context.Context, appName string) (*model.WlApp, *model.Cluster, error) {
	app, err := u.Repos.App.GetByName(ctx, appName)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := u.Repos.App.LatestConfig(ctx, app.UUID)
	if err != nil {
		return nil, nil, err
	}
	cluster, err := u.Repos.Cluster.Get(ctx, cfg.ClusterName)
	if err != nil {
		return nil, nil, err
	}
	return app, cluster, nil
}
