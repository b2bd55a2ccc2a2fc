package release

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bkpaas/workloads/adapters/store/inmem"
	"github.com/bkpaas/workloads/adapters/store/kv"
	"github.com/bkpaas/workloads/config"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/mapper"
	"github.com/bkpaas/workloads/internal/ratelimit"
)

func TestInitialPhases(t *testing.T) {
	phases := InitialPhases(true)
	if len(phases) != 3 {
		t.Fatalf("got %d phases", len(phases))
	}
	for i, typ := range model.PhaseOrder {
		if phases[i].Type != typ {
			t.Errorf("phase[%d] = %s, want %s", i, phases[i].Type, typ)
		}
		if phases[i].Status != model.StepPending {
			t.Errorf("phase %s status = %s", typ, phases[i].Status)
		}
	}

	// image deploys skip the whole build phase
	phases = InitialPhases(false)
	if phases[1].Status != model.StepSkipped {
		t.Errorf("build phase status = %s", phases[1].Status)
	}
	for _, s := range phases[1].Steps {
		if s.Status != model.StepSkipped {
			t.Errorf("build step %s status = %s", s.Name, s.Status)
		}
	}
}

func TestStartPhaseEnforcesOrder(t *testing.T) {
	d := &model.Deployment{Phases: InitialPhases(true)}

	if err := StartPhase(d, model.PhaseRelease); err == nil {
		t.Error("release started with preparation still pending")
	}

	if err := StartPhase(d, model.PhasePreparation); err != nil {
		t.Fatal(err)
	}
	if err := FinishPhase(d, model.PhasePreparation, model.StepSuccessful); err != nil {
		t.Fatal(err)
	}
	if err := StartPhase(d, model.PhaseRelease); err == nil {
		t.Error("release started with build still pending")
	}
	if err := FinishPhase(d, model.PhaseBuild, model.StepSuccessful); err != nil {
		t.Fatal(err)
	}
	if err := StartPhase(d, model.PhaseRelease); err != nil {
		t.Errorf("release after terminal earlier phases: %v", err)
	}
	if d.Phases[2].StartTime == nil {
		t.Error("start time not stamped")
	}
}

func TestFinishPhaseFailureCascades(t *testing.T) {
	d := &model.Deployment{Phases: InitialPhases(true)}
	StartPhase(d, model.PhasePreparation)
	FinishPhase(d, model.PhasePreparation, model.StepSuccessful)
	StartPhase(d, model.PhaseBuild)
	StartStep(d, model.PhaseBuild, "run_slugbuilder")
	FinishStep(d, model.PhaseBuild, "run_slugbuilder", model.StepFailed)

	if err := FinishPhase(d, model.PhaseBuild, model.StepFailed); err != nil {
		t.Fatal(err)
	}
	// pending sibling steps of the failed phase are skipped, the failed
	// one keeps its status
	for _, s := range d.Phases[1].Steps {
		want := model.StepSkipped
		if s.Name == "run_slugbuilder" {
			want = model.StepFailed
		}
		if s.Status != want {
			t.Errorf("build step %s = %s, want %s", s.Name, s.Status, want)
		}
	}
	if d.Phases[2].Status != model.StepSkipped {
		t.Errorf("release phase = %s after build failure", d.Phases[2].Status)
	}
	for _, s := range d.Phases[2].Steps {
		if s.Status != model.StepSkipped {
			t.Errorf("release step %s = %s", s.Name, s.Status)
		}
	}
}

func TestRequireBuild(t *testing.T) {
	if !RequireBuild(RuntimeBuildpack, VersionTypeBranch) {
		t.Error("buildpack branch deploy must build")
	}
	if RequireBuild(RuntimeCustomImage, VersionTypeBranch) {
		t.Error("custom image deploy must not build")
	}
	if RequireBuild(RuntimeBuildpack, VersionTypeImage) {
		t.Error("image-type smart package must not build")
	}
}

func TestObsoleteProcessesRemoval(t *testing.T) {
	app := &model.WlApp{Name: "bkapp-demo-stag", Region: "default", ModuleName: "default"}
	m, err := mapper.Get("v2")
	if err != nil {
		t.Fatal(err)
	}
	prev := map[string]string{"web": "gunicorn app", "worker": "celery -A app"}
	next := map[string]string{"web": "gunicorn app"}

	actions := ObsoleteProcesses(app, prev, next, m)
	if len(actions) != 1 {
		t.Fatalf("got %d actions: %+v", len(actions), actions)
	}
	if actions[0].ProcessType != "worker" || actions[0].Reason != "removed" {
		t.Errorf("action = %+v", actions[0])
	}
	if actions[0].DeploymentName != "bkapp-demo-stag--worker" {
		t.Errorf("deployment name = %s", actions[0].DeploymentName)
	}
}

func TestObsoleteProcessesV1Rename(t *testing.T) {
	app := &model.WlApp{Name: "bkapp-demo-stag", Region: "default", ModuleName: "default"}
	prev := map[string]string{"web": "gunicorn app"}
	next := map[string]string{"web": "uwsgi app.ini"}

	// v1 names embed the command basename, so the edit renames the
	// Deployment and the old one must go
	v1, err := mapper.Get("v1")
	if err != nil {
		t.Fatal(err)
	}
	actions := ObsoleteProcesses(app, prev, next, v1)
	if len(actions) != 1 {
		t.Fatalf("v1 rename: got %d actions: %+v", len(actions), actions)
	}
	if actions[0].Reason != "renamed" {
		t.Errorf("reason = %s", actions[0].Reason)
	}
	if actions[0].DeploymentName != "default-bkapp-demo-stag-web-gunicorn-deployment" {
		t.Errorf("old deployment name = %s", actions[0].DeploymentName)
	}

	// v2 names are command independent
	v2, err := mapper.Get("v2")
	if err != nil {
		t.Fatal(err)
	}
	if actions := ObsoleteProcesses(app, prev, next, v2); len(actions) != 0 {
		t.Errorf("v2 rename produced actions: %+v", actions)
	}
}

func newTestUseCase(t *testing.T) (*UseCase, *inmem.Store, *model.WlApp) {
	t.Helper()
	store := inmem.NewStore()
	app := &model.WlApp{Name: "bkapp-demo-stag", TenantID: "default", AppCode: "demo",
		ModuleName: "default", Environment: model.EnvStag, Type: model.AppTypeDefault}
	if err := store.AppRepo.Create(context.Background(), app); err != nil {
		t.Fatal(err)
	}
	u := New(&Repos{
		App:        store.AppRepo,
		Release:    store.ReleaseRepo,
		Deployment: store.DeploymentRepo,
		Process:    store.ProcessRepo,
		Cluster:    store.ClusterRepo,
		Credential: store.CredentialRepo,
		AppModel:   store.AppModelRepo,
	}, nil, nil, nil)
	return u, store, app
}

func TestInitializeSerializesReleases(t *testing.T) {
	u, _, _ := newTestUseCase(t)
	u.Lock = &ratelimit.Lock{Store: kv.NewMemoryStore(), TTL: time.Minute}
	ctx := context.Background()

	in := &InitializeInput{
		AppName:           "bkapp-demo-stag",
		RuntimeType:       RuntimeBuildpack,
		SourceVersionType: VersionTypeBranch,
		SourceVersionName: "master",
	}
	out, err := u.Initialize(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if !out.NeedBuild {
		t.Error("buildpack deploy must need a build")
	}
	if out.Deployment.Status != model.DeployStatusPending {
		t.Errorf("status = %s", out.Deployment.Status)
	}

	if _, err := u.Initialize(ctx, in); !errors.Is(err, model.ErrOperationInProgress) {
		t.Errorf("concurrent initialize = %v", err)
	}
}

func TestInterrupt(t *testing.T) {
	u, _, _ := newTestUseCase(t)
	ctx := context.Background()

	out, err := u.Initialize(ctx, &InitializeInput{
		AppName:           "bkapp-demo-stag",
		RuntimeType:       RuntimeCustomImage,
		SourceVersionType: VersionTypeImage,
		SourceVersionName: "nginx:latest",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.NeedBuild {
		t.Error("custom image deploy must not need a build")
	}

	if err := u.Interrupt(ctx, out.Deployment.UUID); err != nil {
		t.Fatal(err)
	}
	d, err := u.Repos.Deployment.Get(ctx, out.Deployment.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if d.Status != model.DeployStatusInterrupted {
		t.Errorf("status = %s", d.Status)
	}

	// a terminal deployment cannot be interrupted again
	if err := u.Interrupt(ctx, d.UUID); !errors.Is(err, model.ErrValidationFailed) {
		t.Errorf("second interrupt = %v", err)
	}
}

func TestNotifierPostsResult(t *testing.T) {
	var got DeployResult
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	err := n.NotifyDeployResult(context.Background(), "deploy-1", model.DeployStatusInterrupted, "interrupted by user")
	if err != nil {
		t.Fatal(err)
	}
	want := DeployResult{DeploymentID: "deploy-1", Status: model.DeployStatusInterrupted, ErrorDetail: "interrupted by user"}
	if got != want {
		t.Errorf("payload = %+v, want %+v", got, want)
	}
}

func TestNotifierRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	if err := n.NotifyDeployResult(context.Background(), "deploy-1", model.DeployStatusSuccessful, ""); err == nil {
		t.Error("5xx response accepted")
	}
}

func TestSubPathVarValue(t *testing.T) {
	u, _, app := newTestUseCase(t)
	app.Region = "default"

	if got := u.subPathVarValue(app); got != "/stag--demo/" {
		t.Errorf("sub path = %q, want %q", got, "/stag--demo/")
	}

	u.Settings = &config.Settings{ForceLegacySubPathVar: true}
	if got := u.subPathVarValue(app); got != "/default-bkapp-demo-stag/" {
		t.Errorf("legacy sub path = %q, want %q", got, "/default-bkapp-demo-stag/")
	}
}

func TestReleaseAbortFinalizesAndUnlocks(t *testing.T) {
	u, store, app := newTestUseCase(t)
	u.Lock = &ratelimit.Lock{Store: kv.NewMemoryStore(), TTL: time.Minute}
	ctx := context.Background()

	in := &InitializeInput{
		AppName:           "bkapp-demo-stag",
		RuntimeType:       RuntimeBuildpack,
		SourceVersionType: VersionTypeBranch,
		SourceVersionName: "master",
	}
	out, err := u.Initialize(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	_, err = u.Release(ctx, &ReleaseInput{
		DeployID: out.Deployment.UUID,
		AppName:  app.Name,
		BuildID:  "no-such-build",
	})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("release with missing build = %v", err)
	}

	d, err := store.DeploymentRepo.Get(ctx, out.Deployment.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if d.Status != model.DeployStatusFailed {
		t.Errorf("aborted deployment status = %s", d.Status)
	}
	if d.ErrorDetail == "" {
		t.Error("aborted deployment must record an error detail")
	}

	// the lock must not outlive the aborted attempt
	if _, err := u.Initialize(ctx, in); err != nil {
		t.Errorf("initialize after aborted release = %v", err)
	}
}
