package build

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bkpaas/workloads/adapters/store/inmem"
	"github.com/bkpaas/workloads/adapters/store/kv"
	"github.com/bkpaas/workloads/config"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/ratelimit"
)

func TestRequiredBuildpacksEnv(t *testing.T) {
	bps := []model.Buildpack{
		{Type: "git", Name: "bk-buildpack-python", URL: "https://git.example.com/bp-python", Version: "v213"},
		{Type: "tar", Name: "bk-buildpack-nodejs", URL: "https://bkrepo.example.com/bp-nodejs.tar.gz", Version: "v1"},
	}
	got := RequiredBuildpacksEnv(bps)
	want := "git bk-buildpack-python https://git.example.com/bp-python v213;" +
		"tar bk-buildpack-nodejs https://bkrepo.example.com/bp-nodejs.tar.gz v1"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestSplitPipIndexURL(t *testing.T) {
	u, host := SplitPipIndexURL("https://mirrors.example.com/pypi/simple/")
	if u != "https://mirrors.example.com/pypi/simple/" || host != "mirrors.example.com" {
		t.Errorf("got %q %q", u, host)
	}
	if u, host := SplitPipIndexURL(""); u != "" || host != "" {
		t.Errorf("empty input: %q %q", u, host)
	}
	if u, host := SplitPipIndexURL("://bad"); u != "" || host != "" {
		t.Errorf("bad input: %q %q", u, host)
	}
}

func TestCNBRegistryAuth(t *testing.T) {
	auth, err := CNBRegistryAuth("registry.example.com", "admin", "pw")
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(auth), &decoded); err != nil {
		t.Fatal(err)
	}
	// base64("admin:pw")
	if decoded["registry.example.com"] != "Basic YWRtaW46cHc=" {
		t.Errorf("auth = %v", decoded)
	}
	if auth, _ := CNBRegistryAuth("", "admin", "pw"); auth != "" {
		t.Errorf("hostless auth = %q", auth)
	}
}

func TestComposeBuilderEnv(t *testing.T) {
	settings := &config.BuildSettings{
		PipIndexURL:      "https://mirrors.example.com/pypi/simple/",
		RegistryHost:     "registry.example.com",
		RegistryUsername: "admin",
		RegistryPassword: "pw",
		ExtraEnvVars:     map[string]string{"BKPAAS_REGION": "default"},
	}
	info := NewSlugbuilderInfo([]model.Buildpack{
		{Type: "git", Name: "bp-python", URL: "https://git.example.com/bp", Version: "v1",
			Env: map[string]string{"PYTHON_VERSION": "3.11"}},
	}, true, settings)

	paths := BlobStorePaths{
		TarPath:   "apps/demo/source.tar.gz",
		PutPath:   "apps/demo/slug.tgz",
		CachePath: "apps/demo/cache",
	}
	env, err := ComposeBuilderEnv(info, paths, settings, map[string]string{
		"DEBUG":    "true",
		"TAR_PATH": "user-must-not-override",
	})
	if err != nil {
		t.Fatal(err)
	}

	if env["TAR_PATH"] != "apps/demo/source.tar.gz" {
		t.Errorf("platform var overridden: %q", env["TAR_PATH"])
	}
	if env["PUT_PATH"] != "apps/demo/slug.tgz" || env["CACHE_PATH"] != "apps/demo/cache" {
		t.Errorf("blob paths = %q %q", env["PUT_PATH"], env["CACHE_PATH"])
	}
	if !strings.HasPrefix(env["REQUIRED_BUILDPACKS"], "git bp-python ") {
		t.Errorf("buildpacks = %q", env["REQUIRED_BUILDPACKS"])
	}
	if env["PIP_INDEX_HOST"] != "mirrors.example.com" {
		t.Errorf("pip host = %q", env["PIP_INDEX_HOST"])
	}
	if env["CNB_REGISTRY_AUTH"] == "" {
		t.Error("CNB auth missing for cnb runtime")
	}
	if env["PYTHON_VERSION"] != "3.11" {
		t.Errorf("buildpack env lost: %q", env["PYTHON_VERSION"])
	}
	if env["DEBUG"] != "true" || env["BKPAAS_REGION"] != "default" {
		t.Errorf("app/extra vars = %q %q", env["DEBUG"], env["BKPAAS_REGION"])
	}
}

func TestBuildBuilderPod(t *testing.T) {
	tmpl := &SlugBuilderTemplate{
		Name:      "slug-builder-bkapp-demo-stag",
		Namespace: "bkapp-demo-stag",
		Image:     "bkpaas/slugbuilder:latest",
		Envs:      map[string]string{"B": "2", "A": "1"},
		Tolerations: []model.Toleration{
			{Key: "build-only", Operator: "Exists", Effect: "NoSchedule"},
		},
	}
	pod := buildBuilderPod(tmpl)
	if pod.Spec.RestartPolicy != "Never" {
		t.Errorf("restart policy = %s", pod.Spec.RestartPolicy)
	}
	env := pod.Spec.Containers[0].Env
	if len(env) != 2 || env[0].Name != "A" || env[1].Name != "B" {
		t.Errorf("env not sorted: %+v", env)
	}
	if len(pod.Spec.Tolerations) != 1 || pod.Spec.Tolerations[0].Key != "build-only" {
		t.Errorf("tolerations = %+v", pod.Spec.Tolerations)
	}
}

func TestStartBuildFailureReleasesLock(t *testing.T) {
	store := inmem.NewStore()
	ctx := context.Background()
	app := &model.WlApp{Name: "bkapp-demo-stag", TenantID: "default", AppCode: "demo",
		ModuleName: "default", Environment: model.EnvStag, Type: model.AppTypeDefault}
	if err := store.AppRepo.Create(ctx, app); err != nil {
		t.Fatal(err)
	}
	u := New(&Repos{
		App:     store.AppRepo,
		Release: store.ReleaseRepo,
		Cluster: store.ClusterRepo,
	}, nil, &config.BuildSettings{})
	u.Lock = &ratelimit.Lock{Store: kv.NewMemoryStore(), TTL: time.Minute}

	// no cluster binding exists, so the run fails before the builder pod
	in := &StartBuildInput{AppName: app.Name, RuntimeType: RuntimeBuildpack, SourceTarPath: "demo/src.tgz"}
	if _, err := u.StartBuild(ctx, in); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("start without binding = %v", err)
	}

	// the failure must drop the per-app lock, otherwise retries are locked
	// out for the full TTL
	if err := u.Lock.Acquire(ctx, "build:"+app.UUID); err != nil {
		t.Errorf("lock still held after failed start: %v", err)
	}
}
