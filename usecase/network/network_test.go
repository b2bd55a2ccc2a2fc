package network

import (
	"context"
	"errors"
	"testing"

	"github.com/bkpaas/workloads/adapters/store/inmem"
	"github.com/bkpaas/workloads/domain/model"
)

func newTestUseCase(t *testing.T) (*UseCase, *inmem.Store, *model.WlApp) {
	t.Helper()
	store := inmem.NewStore()
	ctx := context.Background()

	cluster := &model.Cluster{
		Name:               "main",
		TenantID:           "default",
		AvailableTenantIDs: []string{model.TenantIDAll},
		APIServers:         []model.APIServer{{Host: "https://10.0.0.1:6443"}},
		Ingress: model.IngressConfig{
			AppRootDomains: []model.AppDomainConfig{
				{Name: "reserved.example.com", Reserved: true},
				{Name: "apps.example.com", HTTPSEnabled: true},
			},
			SubPathDomains: []model.AppDomainConfig{{Name: "paas.example.com"}},
			PortMap:        model.PortMap{HTTP: 80, HTTPS: 443},
		},
		ExposedURLType: model.ExposedURLTypeSubDomain,
	}
	if err := store.ClusterRepo.Create(ctx, cluster); err != nil {
		t.Fatal(err)
	}
	app := &model.WlApp{Name: "bkapp-demo-stag", TenantID: "default", AppCode: "demo",
		ModuleName: "default", Environment: model.EnvStag, Type: model.AppTypeCloudNative}
	if err := store.AppRepo.Create(ctx, app); err != nil {
		t.Fatal(err)
	}
	if err := store.AppRepo.AppendConfig(ctx, &model.Config{AppUUID: app.UUID, ClusterName: "main"}); err != nil {
		t.Fatal(err)
	}
	return New(&Repos{
		App:     store.AppRepo,
		Address: store.AddressRepo,
		Cert:    store.CertRepo,
		Cluster: store.ClusterRepo,
	}, nil), store, app
}

func TestProvisionGeneratesAddresses(t *testing.T) {
	u, store, app := newTestUseCase(t)
	ctx := context.Background()

	if err := u.Provision(ctx, app.Name); err != nil {
		t.Fatal(err)
	}
	// Idempotent.
	if err := u.Provision(ctx, app.Name); err != nil {
		t.Fatal(err)
	}

	domains, err := store.AddressRepo.ListAppDomains(ctx, app.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if len(domains) != 2 {
		t.Fatalf("got %d app domains, want 2", len(domains))
	}
	hosts := map[string]bool{}
	for _, d := range domains {
		hosts[d.Host] = d.HTTPSEnabled
	}
	if !hosts["stag-dot-demo.apps.example.com"] {
		t.Errorf("https root not applied: %v", hosts)
	}
	if _, ok := hosts["stag-dot-demo.reserved.example.com"]; !ok {
		t.Errorf("reserved root missing: %v", hosts)
	}

	subpaths, err := store.AddressRepo.ListSubpaths(ctx, app.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if len(subpaths) != 1 || subpaths[0].Subpath != "/stag--demo/" {
		t.Fatalf("subpaths = %+v", subpaths)
	}
}

func TestProvisionRejectsForeignSubpath(t *testing.T) {
	u, store, _ := newTestUseCase(t)
	ctx := context.Background()

	other := &model.WlApp{Name: "bkapp-other-stag", TenantID: "default", AppCode: "other",
		ModuleName: "default", Environment: model.EnvStag}
	if err := store.AppRepo.Create(ctx, other); err != nil {
		t.Fatal(err)
	}
	err := store.AddressRepo.SaveSubpath(ctx, &model.AppSubpath{
		AppUUID: other.UUID, TenantID: "default", Subpath: "/stag--demo/",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := u.Provision(ctx, "bkapp-demo-stag"); !errors.Is(err, model.ErrConflict) {
		t.Errorf("claiming held subpath = %v", err)
	}
}

func TestListAddressesResolvesSharedCerts(t *testing.T) {
	u, store, app := newTestUseCase(t)
	ctx := context.Background()
	if err := u.Provision(ctx, app.Name); err != nil {
		t.Fatal(err)
	}
	err := store.CertRepo.SaveSharedCert(ctx, &model.SharedCert{
		TenantID: "default", Name: "apps-wildcard", AutoMatchCNs: "*.apps.example.com",
	})
	if err != nil {
		t.Fatal(err)
	}

	addrs, err := u.ListAddresses(ctx, app.Name)
	if err != nil {
		t.Fatal(err)
	}
	var httpsAddr *model.Address
	for i, a := range addrs {
		if a.Host == "stag-dot-demo.apps.example.com" {
			httpsAddr = &addrs[i]
		}
	}
	if httpsAddr == nil {
		t.Fatalf("https address missing: %+v", addrs)
	}
	if httpsAddr.CertSecretName != "eng-tls-apps-wildcard" {
		t.Errorf("cert secret = %q", httpsAddr.CertSecretName)
	}
}

func TestPickSharedCertMatchesSingleLabel(t *testing.T) {
	u, store, _ := newTestUseCase(t)
	ctx := context.Background()
	err := store.CertRepo.SaveSharedCert(ctx, &model.SharedCert{
		TenantID: "default", Name: "wildcard", AutoMatchCNs: "*.example.com",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := u.PickSharedCert(ctx, "default", "app.example.com"); err != nil {
		t.Errorf("single label host: %v", err)
	}
	if _, err := u.PickSharedCert(ctx, "default", "a.b.example.com"); !errors.Is(err, model.ErrCertNotFound) {
		t.Errorf("two label host should not match: %v", err)
	}
	if _, err := u.PickSharedCert(ctx, "other", "app.example.com"); !errors.Is(err, model.ErrCertNotFound) {
		t.Errorf("foreign tenant should not match: %v", err)
	}
}

func TestExposedURLHonorsClusterType(t *testing.T) {
	u, store, app := newTestUseCase(t)
	ctx := context.Background()
	if err := u.Provision(ctx, app.Name); err != nil {
		t.Fatal(err)
	}

	url, err := u.ExposedURL(ctx, app.Name)
	if err != nil {
		t.Fatal(err)
	}
	// Non-reserved subdomain sorts first and the cluster prefers subdomains.
	if url != "https://stag-dot-demo.apps.example.com/" {
		t.Errorf("exposed url = %q", url)
	}

	cluster, err := store.ClusterRepo.Get(ctx, "main")
	if err != nil {
		t.Fatal(err)
	}
	cluster.ExposedURLType = model.ExposedURLTypeSubPath
	if err := store.ClusterRepo.Update(ctx, cluster); err != nil {
		t.Fatal(err)
	}
	url, err = u.ExposedURL(ctx, app.Name)
	if err != nil {
		t.Fatal(err)
	}
	if url != "http://paas.example.com/stag--demo/" {
		t.Errorf("subpath exposed url = %q", url)
	}
}

func TestBuildDomainGroupMapping(t *testing.T) {
	app := &model.WlApp{Name: "bkapp-demo-stag", AppCode: "demo",
		ModuleName: "default", Environment: model.EnvStag}
	addrs := []model.Address{
		{Type: model.AddressTypeSubDomain, Host: "stag-dot-demo.apps.example.com", PathPrefix: "/",
			HTTPSEnabled: true, CertSecretName: "eng-tls-wild"},
		{Type: model.AddressTypeSubPath, Host: "paas.example.com", PathPrefix: "/stag--demo/"},
		{Type: model.AddressTypeCustom, Host: "demo.corp.com", PathPrefix: "/"},
		{Type: model.AddressTypeCustom, Host: "demo.corp.com", PathPrefix: "/admin/"},
	}
	mapping := BuildDomainGroupMapping(app, addrs)

	if mapping.Spec.Ref.Name != "bkapp-demo-stag" {
		t.Errorf("ref = %+v", mapping.Spec.Ref)
	}
	if len(mapping.Spec.Data) != 3 {
		t.Fatalf("groups = %d, want 3", len(mapping.Spec.Data))
	}
	if mapping.Spec.Data[0].SourceType != "subdomain" ||
		mapping.Spec.Data[0].Domains[0].TLSSecretName != "eng-tls-wild" {
		t.Errorf("subdomain group = %+v", mapping.Spec.Data[0])
	}
	custom := mapping.Spec.Data[2]
	if len(custom.Domains) != 1 || len(custom.Domains[0].PathPrefixList) != 2 {
		t.Errorf("custom hosts should merge paths: %+v", custom)
	}
}
