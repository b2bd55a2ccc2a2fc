package cnative

import (
	"context"
	"strings"
	"testing"

	"github.com/bkpaas/workloads/adapters/store/inmem"
	"github.com/bkpaas/workloads/crd/paasv1alpha1"
	"github.com/bkpaas/workloads/crd/paasv1alpha2"
)

func int32p(v int32) *int32 { return &v }

func TestQuotaPlanFor(t *testing.T) {
	cases := []struct {
		cpu, memory, want string
	}{
		{"2000m", "1024Mi", paasv1alpha2.ResQuotaPlan2C1G},
		{"2000m", "1200Mi", paasv1alpha2.ResQuotaPlan2C2G},
		{"1", "512Mi", paasv1alpha2.ResQuotaPlan1C512M},
		{"3000m", "512Mi", paasv1alpha2.ResQuotaPlan4C1G},
		{"8000m", "4Gi", paasv1alpha2.ResQuotaPlan4C2G},
		{"", "", paasv1alpha2.ResQuotaPlanDefault},
		{"not-a-quantity", "", paasv1alpha2.ResQuotaPlanDefault},
	}
	for _, c := range cases {
		if got := QuotaPlanFor(c.cpu, c.memory); got != c.want {
			t.Errorf("QuotaPlanFor(%q, %q) = %s, want %s", c.cpu, c.memory, got, c.want)
		}
	}
}

func TestConvertBkAppResource(t *testing.T) {
	src := &paasv1alpha1.BkApp{}
	src.APIVersion = paasv1alpha1.APIVersion
	src.Kind = paasv1alpha1.KindBkApp
	src.Name = "demo"
	src.Spec.Processes = []paasv1alpha1.Process{
		{Name: "web", Image: "registry.example.com/demo:1", CPU: "2000m", Memory: "1200Mi", Replicas: int32p(2)},
		{Name: "worker", Image: "registry.example.com/demo:1", CPU: "1000m", Memory: "512Mi"},
	}

	res := ConvertBkAppResource(src)
	if !res.VersionChanged || !res.ProcessesConverted {
		t.Errorf("flags = %+v", res)
	}
	out := res.Resource
	if out.APIVersion != paasv1alpha2.APIVersion {
		t.Errorf("apiVersion = %s", out.APIVersion)
	}
	if out.Spec.Build == nil || out.Spec.Build.Image != "registry.example.com/demo:1" {
		t.Fatalf("build = %+v", out.Spec.Build)
	}
	if out.Spec.Processes[0].ResQuotaPlan != paasv1alpha2.ResQuotaPlan2C2G {
		t.Errorf("web plan = %s", out.Spec.Processes[0].ResQuotaPlan)
	}
	if out.Spec.Processes[1].ResQuotaPlan != paasv1alpha2.ResQuotaPlan1C512M {
		t.Errorf("worker plan = %s", out.Spec.Processes[1].ResQuotaPlan)
	}
	if len(out.Annotations) != 0 {
		t.Errorf("shared image should not leave annotations: %v", out.Annotations)
	}
}

func TestConvertKeepsDivergentImages(t *testing.T) {
	src := &paasv1alpha1.BkApp{}
	src.APIVersion = paasv1alpha1.APIVersion
	src.Spec.Processes = []paasv1alpha1.Process{
		{Name: "web", Image: "demo:web"},
		{Name: "worker", Image: "demo:worker"},
	}
	out := ConvertBkAppResource(src).Resource
	if out.Spec.Build.Image != "demo:web" {
		t.Errorf("build image = %s", out.Spec.Build.Image)
	}
	if out.Annotations[legacyProcImageAnnoPrefix+"worker"] != "demo:worker" {
		t.Errorf("annotations = %v", out.Annotations)
	}
}

func TestPlanRegistry(t *testing.T) {
	r := NewPlanRegistry()
	if _, ok := r.Get(""); !ok {
		t.Error("empty name should resolve to the default plan")
	}
	r.Set("8C4G", PlanLimits{CPULimit: "8000m", MemoryLimit: "4096Mi"})
	if p, ok := r.Get("8C4G"); !ok || p.CPULimit != "8000m" {
		t.Errorf("custom plan = %+v %v", p, ok)
	}
	r.Delete("8C4G")
	if _, ok := r.Get("8C4G"); ok {
		t.Error("deleted plan still resolvable")
	}
	r.Delete(paasv1alpha2.ResQuotaPlan2C1G)
	if _, ok := r.Get(paasv1alpha2.ResQuotaPlan2C1G); !ok {
		t.Error("built-in plan must survive deletion")
	}
}

func TestReplicasReader(t *testing.T) {
	res := &paasv1alpha2.BkApp{}
	res.Spec.Processes = []paasv1alpha2.Process{
		{Name: "web", Replicas: int32p(3)},
		{Name: "worker"},
	}
	res.Spec.EnvOverlay = &paasv1alpha2.EnvOverlay{
		Replicas: []paasv1alpha2.ReplicasOverlay{
			{EnvName: "stag", Process: "web", Count: 1},
			{EnvName: "prod", Process: "web", Count: 5},
			{EnvName: "stag", Process: "ghost", Count: 9},
		},
	}

	stag := NewReplicasReader(res).ReadAll("stag")
	if e := stag["web"]; e.Count != 1 || e.Source != ReplicasSourceOverlay {
		t.Errorf("stag web = %+v", e)
	}
	if e := stag["worker"]; e.Count != 1 || e.Source != ReplicasSourceSpec {
		t.Errorf("stag worker = %+v", e)
	}
	if _, ok := stag["ghost"]; ok {
		t.Error("overlay for unknown process must be ignored")
	}
	if e := NewReplicasReader(res).ReadAll("prod")["web"]; e.Count != 5 {
		t.Errorf("prod web = %+v", e)
	}
}

func TestParseProcfile(t *testing.T) {
	res := &paasv1alpha2.BkApp{}
	res.Spec.Processes = []paasv1alpha2.Process{
		{Name: "web", Command: []string{"gunicorn"}, Args: []string{"app.wsgi", "-b", ":8000"}},
		{Name: "worker", Command: []string{"celery", "worker"}},
	}
	got := ParseProcfile(res)
	if got["web"] != "gunicorn app.wsgi -b :8000" || got["worker"] != "celery worker" {
		t.Errorf("procfile = %v", got)
	}
}

func TestEnvVarReaderOverlayWins(t *testing.T) {
	res := &paasv1alpha2.BkApp{}
	res.Spec.Configuration.Env = []paasv1alpha2.AppEnvVar{
		{Name: "DEBUG", Value: "false"},
		{Name: "REGION", Value: "default"},
	}
	res.Spec.EnvOverlay = &paasv1alpha2.EnvOverlay{
		EnvVariables: []paasv1alpha2.EnvVarOverlay{
			{EnvName: "stag", Name: "DEBUG", Value: "true"},
			{EnvName: "stag", Name: "EXTRA", Value: "1"},
			{EnvName: "prod", Name: "DEBUG", Value: "never"},
		},
	}
	got := NewEnvVarReader(res).ReadAll("stag")
	if len(got) != 3 {
		t.Fatalf("got %d vars: %+v", len(got), got)
	}
	if got[0].Name != "DEBUG" || got[0].Value != "true" {
		t.Errorf("overlay should override in place: %+v", got[0])
	}
	if got[2].Name != "EXTRA" {
		t.Errorf("overlay-only var should append: %+v", got)
	}
}

func TestImportManifestAndEnvVars(t *testing.T) {
	store := inmem.NewStore()
	u := New(&Repos{AppModel: store.AppModelRepo})
	ctx := context.Background()

	manifest := `{
		"apiVersion": "paas.bk.tencent.com/v1alpha1",
		"kind": "BkApp",
		"metadata": {"name": "demo"},
		"spec": {
			"processes": [{"name": "web", "image": "demo:1", "cpu": "2000m", "memory": "1024Mi"}],
			"configuration": {"env": [{"name": "DEBUG", "value": "false"}]},
			"envOverlay": {"envVariables": [{"envName": "stag", "name": "DEBUG", "value": "true"}]}
		}
	}`
	out, err := u.ImportManifest(ctx, &ImportManifestInput{
		TenantID: "default", AppCode: "demo", ModuleName: "default", Manifest: manifest,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Converted {
		t.Error("v1alpha1 import must report conversion")
	}
	if !strings.Contains(out.Resource.Manifest, paasv1alpha2.APIVersion) {
		t.Errorf("manifest not normalised: %s", out.Resource.Manifest)
	}
	if out.Revision.Version != 1 {
		t.Errorf("revision version = %d", out.Revision.Version)
	}

	n, err := u.ImportEnvVars(ctx, "demo", "default")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("imported %d vars, want 2", n)
	}
	vars, err := store.AppModelRepo.ListConfigVars(ctx, "demo", "default")
	if err != nil {
		t.Fatal(err)
	}
	if len(vars) != 2 {
		t.Fatalf("stored vars = %+v", vars)
	}
	res, err := store.AppModelRepo.GetResource(ctx, "demo", "default")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(res.Manifest, "DEBUG") {
		t.Errorf("env vars must be blanked after import: %s", res.Manifest)
	}
}

func TestImportManifestNormalisationIsStable(t *testing.T) {
	store := inmem.NewStore()
	u := New(&Repos{AppModel: store.AppModelRepo})
	ctx := context.Background()

	manifest := `{
		"apiVersion": "paas.bk.tencent.com/v1alpha1",
		"kind": "BkApp",
		"metadata": {"name": "demo"},
		"spec": {"processes": [{"name": "web", "image": "demo:1", "cpu": "2000m", "memory": "1024Mi"}]}
	}`
	first, err := u.ImportManifest(ctx, &ImportManifestInput{
		TenantID: "default", AppCode: "demo", ModuleName: "default", Manifest: manifest,
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := u.ImportManifest(ctx, &ImportManifestInput{
		TenantID: "default", AppCode: "demo", ModuleName: "default", Manifest: first.Resource.Manifest,
	})
	if err != nil {
		t.Fatal(err)
	}
	if second.Converted {
		t.Error("re-importing a normalised manifest must not convert again")
	}
	if second.Resource.Manifest != first.Resource.Manifest {
		t.Errorf("normalisation is not stable:\n first: %s\nsecond: %s", first.Resource.Manifest, second.Resource.Manifest)
	}
}
