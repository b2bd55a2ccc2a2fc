package rdb

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/cryptor"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenFromURL("sqlite::memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testCluster(name string) *model.Cluster {
	return &model.Cluster{
		Name:               name,
		TenantID:           "default",
		AvailableTenantIDs: []string{model.TenantIDAll},
		APIServers:         []model.APIServer{{Host: "https://10.0.0.1:6443"}},
		Ingress: model.IngressConfig{
			AppRootDomains: []model.AppDomainConfig{{Name: "example.com"}},
		},
	}
}

func TestClusterRepositoryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewClusterRepository(db)
	ctx := context.Background()

	c := testCluster("main")
	c.FeatureFlags = map[string]bool{model.FeatureEnableAutoscaling: true}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.UUID == "" {
		t.Fatal("uuid not assigned")
	}

	got, err := repo.Get(ctx, "main")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.HasFeature(model.FeatureEnableAutoscaling) {
		t.Error("feature flags not persisted")
	}
	if len(got.APIServers) != 1 || got.APIServers[0].Host != "https://10.0.0.1:6443" {
		t.Errorf("api servers = %+v", got.APIServers)
	}
	if !got.AllowsTenant("anyone") {
		t.Error("wildcard tenant not persisted")
	}

	_, err = repo.Get(ctx, "missing")
	if !errors.Is(err, model.ErrClusterNotFound) {
		t.Errorf("get missing = %v", err)
	}
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("cluster not-found should match the generic sentinel, got %v", err)
	}
}

func TestClusterDeleteGuards(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	clusters := NewClusterRepository(db)
	apps := NewAppRepository(db)
	policies := NewPolicyRepository(db)

	if err := clusters.Create(ctx, testCluster("guarded")); err != nil {
		t.Fatal(err)
	}
	app := &model.WlApp{Name: "bkapp-demo-stag", TenantID: "default", AppCode: "demo",
		ModuleName: "default", Environment: model.EnvStag, Type: model.AppTypeDefault}
	if err := apps.Create(ctx, app); err != nil {
		t.Fatal(err)
	}
	if err := apps.AppendConfig(ctx, &model.Config{AppUUID: app.UUID, ClusterName: "guarded"}); err != nil {
		t.Fatal(err)
	}

	if err := clusters.Delete(ctx, "guarded"); !errors.Is(err, model.ErrValidationFailed) {
		t.Fatalf("delete with bound config = %v", err)
	}

	// Rebind the app elsewhere; a referencing policy must still block.
	if err := clusters.Create(ctx, testCluster("other")); err != nil {
		t.Fatal(err)
	}
	if err := apps.AppendConfig(ctx, &model.Config{AppUUID: app.UUID, ClusterName: "other"}); err != nil {
		t.Fatal(err)
	}
	err := policies.Save(ctx, &model.AllocationPolicy{
		TenantID: "default",
		Type:     model.AllocationPolicyManual,
		Manual:   &model.ManualAllocation{Clusters: []string{"guarded"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := clusters.Delete(ctx, "guarded"); !errors.Is(err, model.ErrValidationFailed) {
		t.Fatalf("delete with referencing policy = %v", err)
	}

	refs, err := policies.ListReferencingCluster(ctx, "guarded")
	if err != nil || len(refs) != 1 {
		t.Fatalf("ListReferencingCluster = %v, %v", refs, err)
	}
}

func TestAppendConfigKeepsSingleLatest(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	apps := NewAppRepository(db)

	app := &model.WlApp{Name: "bkapp-demo-prod", TenantID: "default", AppCode: "demo",
		ModuleName: "default", Environment: model.EnvProd, Type: model.AppTypeDefault}
	if err := apps.Create(ctx, app); err != nil {
		t.Fatal(err)
	}
	for _, cluster := range []string{"a", "b"} {
		err := apps.AppendConfig(ctx, &model.Config{
			AppUUID:     app.UUID,
			ClusterName: cluster,
			Metadata:    map[string]string{model.ConfigKeyMapperVersion: "v2"},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	latest, err := apps.LatestConfig(ctx, app.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if latest.ClusterName != "b" {
		t.Errorf("latest cluster = %q, want b", latest.ClusterName)
	}
	n, err := apps.CountConfigsByCluster(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("demoted config still counted: %d", n)
	}
}

func TestCreateReleaseAssignsContiguousVersions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	releases := NewReleaseRepository(db)

	for i := 0; i < 3; i++ {
		rel := &model.Release{AppUUID: "app-1", Procfile: map[string]string{"web": "gunicorn"}}
		if err := releases.CreateRelease(ctx, rel); err != nil {
			t.Fatal(err)
		}
		if rel.Version != i+1 {
			t.Fatalf("version = %d, want %d", rel.Version, i+1)
		}
	}
	failed := &model.Release{AppUUID: "app-1", Failed: true}
	if err := releases.CreateRelease(ctx, failed); err != nil {
		t.Fatal(err)
	}

	latest, err := releases.LatestRelease(ctx, "app-1", false)
	if err != nil {
		t.Fatal(err)
	}
	if latest.Version != 4 || !latest.Failed {
		t.Errorf("latest = v%d failed=%v", latest.Version, latest.Failed)
	}
	ok, err := releases.LatestRelease(ctx, "app-1", true)
	if err != nil {
		t.Fatal(err)
	}
	if ok.Version != 3 || ok.Failed {
		t.Errorf("latest successful = v%d failed=%v", ok.Version, ok.Failed)
	}
	if ok.Procfile["web"] != "gunicorn" {
		t.Errorf("procfile = %v", ok.Procfile)
	}
}

func TestProcessRepositoryUpsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	procs := NewProcessRepository(db)

	spec := &model.ProcessSpec{AppUUID: "app-1", Name: "web", TargetReplicas: 1, PlanName: model.PlanDefault}
	if err := procs.Upsert(ctx, spec); err != nil {
		t.Fatal(err)
	}
	spec.TargetReplicas = 3
	if err := procs.Upsert(ctx, spec); err != nil {
		t.Fatal(err)
	}

	got, err := procs.Get(ctx, "app-1", "web")
	if err != nil {
		t.Fatal(err)
	}
	if got.TargetReplicas != 3 {
		t.Errorf("replicas = %d", got.TargetReplicas)
	}
	all, err := procs.ListByApp(ctx, "app-1")
	if err != nil || len(all) != 1 {
		t.Fatalf("list = %v, %v", all, err)
	}

	bad := &model.ProcessSpec{AppUUID: "app-1", Name: "worker", PlanName: "9C9G"}
	if err := procs.Upsert(ctx, bad); !errors.Is(err, model.ErrValidationFailed) {
		t.Errorf("unknown plan = %v", err)
	}
}

func TestSharedCertUpsertAndMatch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	certs := NewCertRepository(db)

	c := &model.SharedCert{TenantID: "default", Name: "wildcard", AutoMatchCNs: "*.example.com"}
	if err := certs.SaveSharedCert(ctx, c); err != nil {
		t.Fatal(err)
	}
	c.AutoMatchCNs = "*.example.com;*.example.org"
	if err := certs.SaveSharedCert(ctx, c); err != nil {
		t.Fatal(err)
	}

	list, err := certs.ListSharedCerts(ctx, "default")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d shared certs, want 1", len(list))
	}
	if !list[0].MatchesHost("app.example.org") {
		t.Error("updated CN list not persisted")
	}
	if err := certs.DeleteSharedCert(ctx, "default", "missing"); !errors.Is(err, model.ErrCertNotFound) {
		t.Errorf("delete missing = %v", err)
	}
}

func TestClusterAuthMaterialEncryptedAtRest(t *testing.T) {
	t.Setenv(cryptor.EnvKey, "test-passphrase")
	db := openTestDB(t)
	repo := NewClusterRepository(db)
	ctx := context.Background()

	c := testCluster("sealed")
	c.Token = "bearer-secret"
	c.CAData = "ca-pem"
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	var rec ClusterRecord
	if err := db.First(&rec, "name = ?", "sealed").Error; err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if rec.Token == "bearer-secret" || rec.CAData == "ca-pem" {
		t.Error("auth material stored in plaintext")
	}

	got, err := repo.Get(ctx, "sealed")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Token != "bearer-secret" || got.CAData != "ca-pem" {
		t.Errorf("decrypted material = %q / %q", got.Token, got.CAData)
	}
}
