package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/bkpaas/workloads/adapters/store/inmem"
	"github.com/bkpaas/workloads/domain/model"
)

func newTestUseCase() (*UseCase, *inmem.Store) {
	store := inmem.NewStore()
	store.ClusterRepo.Apps = store.AppRepo
	store.ClusterRepo.Policies = store.PolicyRepo
	return New(&Repos{
		Cluster: store.ClusterRepo,
		Policy:  store.PolicyRepo,
		App:     store.AppRepo,
	}), store
}

func registerCluster(t *testing.T, u *UseCase, name string, tenants ...string) {
	t.Helper()
	if len(tenants) == 0 {
		tenants = []string{model.TenantIDAll}
	}
	_, err := u.Create(context.Background(), &CreateInput{
		Name:               name,
		TenantID:           "default",
		AvailableTenantIDs: tenants,
		APIServers:         []APIServerInput{{Host: "https://10.0.0.1:6443"}},
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	u, _ := newTestUseCase()
	ctx := context.Background()

	_, err := u.Create(ctx, &CreateInput{Name: "no-endpoints", TenantID: "default"})
	if !errors.Is(err, model.ErrValidationFailed) {
		t.Errorf("missing api servers = %v", err)
	}
	_, err = u.Create(ctx, &CreateInput{
		Name:       "Bad_Name",
		TenantID:   "default",
		APIServers: []APIServerInput{{Host: "https://10.0.0.1:6443"}},
	})
	if !errors.Is(err, model.ErrValidationFailed) {
		t.Errorf("invalid name = %v", err)
	}

	out, err := u.Create(ctx, &CreateInput{
		Name:       "main",
		TenantID:   "default",
		APIServers: []APIServerInput{{Host: "https://10.0.0.1:6443"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Cluster.ExposedURLType != model.ExposedURLTypeSubPath {
		t.Errorf("default exposed url type = %q", out.Cluster.ExposedURLType)
	}
	if len(out.Cluster.AvailableTenantIDs) != 1 || out.Cluster.AvailableTenantIDs[0] != "default" {
		t.Errorf("tenants = %v", out.Cluster.AvailableTenantIDs)
	}
}

func TestAllocateManualPolicy(t *testing.T) {
	u, _ := newTestUseCase()
	ctx := context.Background()
	registerCluster(t, u, "east")
	registerCluster(t, u, "west")

	err := u.SavePolicy(ctx, &SavePolicyInput{Policy: &model.AllocationPolicy{
		TenantID: "acme",
		Type:     model.AllocationPolicyManual,
		Manual: &model.ManualAllocation{
			EnvSpecific: true,
			EnvClusters: map[string][]string{
				model.EnvStag: {"east"},
				model.EnvProd: {"west", "east"},
			},
		},
	}})
	if err != nil {
		t.Fatal(err)
	}

	out, err := u.Allocate(ctx, &AllocateInput{TenantID: "acme", Environment: model.EnvProd})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Clusters) != 2 || out.Clusters[0].Name != "west" {
		t.Fatalf("prod allocation = %v", clusterNames(out.Clusters))
	}
	out, err = u.Allocate(ctx, &AllocateInput{TenantID: "acme", Environment: model.EnvStag})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Clusters) != 1 || out.Clusters[0].Name != "east" {
		t.Fatalf("stag allocation = %v", clusterNames(out.Clusters))
	}
}

func TestAllocateFiltersTenantAvailability(t *testing.T) {
	u, _ := newTestUseCase()
	ctx := context.Background()
	registerCluster(t, u, "restricted", "other-tenant")

	err := u.SavePolicy(ctx, &SavePolicyInput{Policy: &model.AllocationPolicy{
		TenantID: "acme",
		Type:     model.AllocationPolicyManual,
		Manual:   &model.ManualAllocation{Clusters: []string{"restricted"}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = u.Allocate(ctx, &AllocateInput{TenantID: "acme", Environment: model.EnvStag})
	if !errors.Is(err, model.ErrNoEligibleCluster) {
		t.Errorf("allocation to unavailable cluster = %v", err)
	}
}

func TestAllocateRuleBasedFirstMatch(t *testing.T) {
	u, _ := newTestUseCase()
	ctx := context.Background()
	registerCluster(t, u, "cn-cluster")
	registerCluster(t, u, "fallback")

	err := u.SavePolicy(ctx, &SavePolicyInput{Policy: &model.AllocationPolicy{
		TenantID: "acme",
		Type:     model.AllocationPolicyRuleBased,
		Rules: []model.AllocationRule{
			{
				Matcher: map[string]string{model.CondRegionIs: "cn", model.CondEnvironmentIs: model.EnvProd},
				Policy:  model.ManualAllocation{Clusters: []string{"cn-cluster"}},
			},
			{
				Policy: model.ManualAllocation{Clusters: []string{"fallback"}},
			},
		},
	}})
	if err != nil {
		t.Fatal(err)
	}

	out, err := u.Allocate(ctx, &AllocateInput{TenantID: "acme", Region: "cn", Environment: model.EnvProd})
	if err != nil {
		t.Fatal(err)
	}
	if out.Clusters[0].Name != "cn-cluster" {
		t.Errorf("matched rule cluster = %q", out.Clusters[0].Name)
	}

	// Region matches but environment does not: falls through to catch-all.
	out, err = u.Allocate(ctx, &AllocateInput{TenantID: "acme", Region: "cn", Environment: model.EnvStag})
	if err != nil {
		t.Fatal(err)
	}
	if out.Clusters[0].Name != "fallback" {
		t.Errorf("catch-all cluster = %q", out.Clusters[0].Name)
	}
}

func TestSavePolicyRejectsUnknownCluster(t *testing.T) {
	u, _ := newTestUseCase()
	err := u.SavePolicy(context.Background(), &SavePolicyInput{Policy: &model.AllocationPolicy{
		TenantID: "acme",
		Type:     model.AllocationPolicyManual,
		Manual:   &model.ManualAllocation{Clusters: []string{"ghost"}},
	}})
	if !errors.Is(err, model.ErrClusterNotFound) {
		t.Errorf("unknown cluster = %v", err)
	}
}

func TestBindAppendsConfigAndGuardsDelete(t *testing.T) {
	u, store := newTestUseCase()
	ctx := context.Background()
	registerCluster(t, u, "main")

	app := &model.WlApp{Name: "bkapp-demo-stag", TenantID: "acme", AppCode: "demo",
		ModuleName: "default", Environment: model.EnvStag, Type: model.AppTypeDefault}
	if err := store.AppRepo.Create(ctx, app); err != nil {
		t.Fatal(err)
	}

	out, err := u.Bind(ctx, &BindInput{AppName: "bkapp-demo-stag", ClusterName: "main"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Config.ClusterName != "main" {
		t.Errorf("bound cluster = %q", out.Config.ClusterName)
	}
	if out.Config.Metadata[model.ConfigKeyMapperVersion] != "v2" {
		t.Errorf("mapper version = %q", out.Config.Metadata[model.ConfigKeyMapperVersion])
	}

	if err := u.Delete(ctx, &DeleteInput{Name: "main"}); !errors.Is(err, model.ErrValidationFailed) {
		t.Errorf("delete bound cluster = %v", err)
	}
}

func clusterNames(clusters []*model.Cluster) []string {
	out := make([]string, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, c.Name)
	}
	return out
}

func TestAllocateFallsBackToPlatformDefault(t *testing.T) {
	u, _ := newTestUseCase()
	ctx := context.Background()
	registerCluster(t, u, "open")
	registerCluster(t, u, "restricted", "other-tenant")

	// no policy for the tenant: every cluster it may use is eligible
	out, err := u.Allocate(ctx, &AllocateInput{TenantID: "acme", Environment: model.EnvStag})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Clusters) != 1 || out.Clusters[0].Name != "open" {
		t.Fatalf("fallback allocation = %v", clusterNames(out.Clusters))
	}

	// a policy saved under the wildcard tenant replaces the built-in fallback
	err = u.SavePolicy(ctx, &SavePolicyInput{Policy: &model.AllocationPolicy{
		TenantID: model.TenantIDAll,
		Type:     model.AllocationPolicyManual,
		Manual:   &model.ManualAllocation{Clusters: []string{"restricted"}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.Allocate(ctx, &AllocateInput{TenantID: "acme", Environment: model.EnvStag}); !errors.Is(err, model.ErrNoEligibleCluster) {
		t.Errorf("wildcard policy naming a foreign cluster = %v", err)
	}
	out, err = u.Allocate(ctx, &AllocateInput{TenantID: "other-tenant", Environment: model.EnvStag})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Clusters) != 1 || out.Clusters[0].Name != "restricted" {
		t.Fatalf("wildcard policy allocation = %v", clusterNames(out.Clusters))
	}
}

func TestBindRejectsClusterOutsidePolicy(t *testing.T) {
	u, store := newTestUseCase()
	ctx := context.Background()
	registerCluster(t, u, "east")
	registerCluster(t, u, "west")

	err := u.SavePolicy(ctx, &SavePolicyInput{Policy: &model.AllocationPolicy{
		TenantID: "acme",
		Type:     model.AllocationPolicyManual,
		Manual:   &model.ManualAllocation{Clusters: []string{"east"}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	app := &model.WlApp{Name: "bkapp-demo-stag", TenantID: "acme", AppCode: "demo",
		ModuleName: "default", Environment: model.EnvStag, Type: model.AppTypeDefault}
	if err := store.AppRepo.Create(ctx, app); err != nil {
		t.Fatal(err)
	}

	// west is registered and open to the tenant, but the policy does not
	// name it
	if _, err := u.Bind(ctx, &BindInput{AppName: "bkapp-demo-stag", ClusterName: "west"}); !errors.Is(err, model.ErrValidationFailed) {
		t.Errorf("bind to unallocated cluster = %v", err)
	}
	out, err := u.Bind(ctx, &BindInput{AppName: "bkapp-demo-stag", ClusterName: "east"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Config.ClusterName != "east" {
		t.Errorf("bound cluster = %q", out.Config.ClusterName)
	}
}
