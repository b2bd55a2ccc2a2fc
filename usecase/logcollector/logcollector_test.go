package logcollector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bkpaas/workloads/adapters/store/inmem"
	"github.com/bkpaas/workloads/domain/model"
)

func TestDesiredConfigNormalizesPaths(t *testing.T) {
	app := &model.WlApp{AppCode: "demo", ModuleName: "backend", Environment: model.EnvStag}
	cluster := &model.Cluster{ElasticSearch: &model.ElasticSearchConfig{Host: "es.example.com"}}

	c := DesiredConfig(app, cluster, []string{"/var/log/b.log", "", "/var/log/a.log", "/var/log/b.log"})
	if c.Name != "bkapp_demo_backend_stag" {
		t.Errorf("name = %s", c.Name)
	}
	want := []string{"/var/log/a.log", "/var/log/b.log"}
	if len(c.LogPaths) != len(want) || c.LogPaths[0] != want[0] || c.LogPaths[1] != want[1] {
		t.Errorf("paths = %v", c.LogPaths)
	}
	if c.ESIndex != "bkapp_demo_stag" {
		t.Errorf("es index = %s", c.ESIndex)
	}

	// no ES config, no index
	if c := DesiredConfig(app, &model.Cluster{}, nil); c.ESIndex != "" {
		t.Errorf("index without es = %s", c.ESIndex)
	}
}

type fakeAPI struct {
	existing map[string]*CollectorConfig
	created  int
	updated  int
}

func (f *fakeAPI) GetConfig(_ context.Context, name string) (*CollectorConfig, error) {
	if c, ok := f.existing[name]; ok {
		return c, nil
	}
	return nil, model.ErrNotFound
}

func (f *fakeAPI) CreateConfig(_ context.Context, cfg *CollectorConfig) error {
	f.created++
	cfg.ID = 100 + f.created
	if f.existing == nil {
		f.existing = map[string]*CollectorConfig{}
	}
	f.existing[cfg.Name] = cfg
	return nil
}

func (f *fakeAPI) UpdateConfig(_ context.Context, cfg *CollectorConfig) error {
	f.updated++
	f.existing[cfg.Name] = cfg
	return nil
}

func newTestUseCase(t *testing.T, flags map[string]bool) (*UseCase, *fakeAPI) {
	t.Helper()
	store := inmem.NewStore()
	ctx := context.Background()
	cluster := &model.Cluster{Name: "main", TenantID: "default",
		AvailableTenantIDs: []string{model.TenantIDAll},
		APIServers:         []model.APIServer{{Host: "https://k8s.example.com"}},
		FeatureFlags:       flags,
	}
	if err := store.ClusterRepo.Create(ctx, cluster); err != nil {
		t.Fatal(err)
	}
	app := &model.WlApp{Name: "bkapp-demo-stag", TenantID: "default", AppCode: "demo",
		ModuleName: "backend", Environment: model.EnvStag, Type: model.AppTypeDefault}
	if err := store.AppRepo.Create(ctx, app); err != nil {
		t.Fatal(err)
	}
	err := store.AppRepo.AppendConfig(ctx, &model.Config{AppUUID: app.UUID, ClusterName: "main"})
	if err != nil {
		t.Fatal(err)
	}
	api := &fakeAPI{}
	return New(&Repos{App: store.AppRepo, Cluster: store.ClusterRepo}, api), api
}

func TestReconcileCreatesThenUpdates(t *testing.T) {
	u, api := newTestUseCase(t, map[string]bool{model.FeatureEnableBKLogCollector: true})
	ctx := context.Background()

	c, err := u.Reconcile(ctx, "bkapp-demo-stag", []string{"/var/log/app.log"})
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || api.created != 1 || api.updated != 1 {
		t.Fatalf("first reconcile: created=%d updated=%d", api.created, api.updated)
	}
	id := c.ID

	c, err = u.Reconcile(ctx, "bkapp-demo-stag", []string{"/var/log/app.log", "/var/log/err.log"})
	if err != nil {
		t.Fatal(err)
	}
	if api.created != 1 || api.updated != 2 {
		t.Errorf("second reconcile: created=%d updated=%d", api.created, api.updated)
	}
	if c.ID != id {
		t.Errorf("id changed: %d -> %d", id, c.ID)
	}
	if len(c.LogPaths) != 2 {
		t.Errorf("paths = %v", c.LogPaths)
	}
}

func TestReconcileSkipsDisabledClusters(t *testing.T) {
	u, api := newTestUseCase(t, nil)
	c, err := u.Reconcile(context.Background(), "bkapp-demo-stag", []string{"/var/log/app.log"})
	if err != nil {
		t.Fatal(err)
	}
	if c != nil || api.created != 0 || api.updated != 0 {
		t.Errorf("disabled cluster reconciled: %+v", c)
	}
}

func TestAPIClientMapsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/collectors/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, "token")
	if _, err := c.GetConfig(context.Background(), "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("404 = %v", err)
	}
	if _, err := c.GetConfig(context.Background(), "broken"); !errors.Is(err, model.ErrDependency) {
		t.Errorf("502 = %v", err)
	}
}
