package process

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bkpaas/workloads/adapters/store/inmem"
	"github.com/bkpaas/workloads/domain/model"
)

func TestProcEventsProducerCreateAndRemove(t *testing.T) {
	before := []model.Process{
		{Type: "worker", Replicas: 1, Instances: []model.Instance{{Name: "worker-0"}}},
	}
	after := []model.Process{
		{Type: "web", Replicas: 2, Instances: []model.Instance{{Name: "web-0"}, {Name: "web-1"}}},
	}
	events := ProcEventsProducer(before, after)

	want := []EventType{
		EvtProcessCreated, EvtInstCreated, EvtInstCreated,
		EvtProcessRemoved, EvtInstRemoved,
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, typ := range want {
		if events[i].Type != typ {
			t.Errorf("event[%d] = %s, want %s", i, events[i].Type, typ)
		}
	}
	if events[0].ProcessType != "web" || events[3].ProcessType != "worker" {
		t.Errorf("process types wrong: %+v", events)
	}
}

func TestProcEventsProducerUpdates(t *testing.T) {
	before := []model.Process{{
		Type: "web", Replicas: 1, Command: "run web",
		Instances: []model.Instance{
			{Name: "web-0", Ready: true, RestartCount: 0},
			{Name: "web-1", Ready: false},
		},
	}}
	after := []model.Process{{
		Type: "web", Replicas: 3, Command: "run web --verbose",
		Instances: []model.Instance{
			{Name: "web-0", Ready: false, RestartCount: 2},
			{Name: "web-1", Ready: true},
			{Name: "web-2", Ready: false},
		},
	}}
	events := ProcEventsProducer(before, after)

	want := []Event{
		{Type: EvtProcessUpdatedReplicas, ProcessType: "web", Replicas: 3},
		{Type: EvtProcessUpdatedCommand, ProcessType: "web", Command: "run web --verbose"},
		{Type: EvtInstRestarted, ProcessType: "web", Instance: "web-0", RestartCount: 2},
		{Type: EvtInstBecomeNotReady, ProcessType: "web", Instance: "web-0"},
		{Type: EvtInstBecomeReady, ProcessType: "web", Instance: "web-1"},
		{Type: EvtInstCreated, ProcessType: "web", Instance: "web-2"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, w := range want {
		if events[i] != w {
			t.Errorf("event[%d] = %+v, want %+v", i, events[i], w)
		}
	}
}

func newTestUseCase(t *testing.T) (*UseCase, *model.WlApp) {
	t.Helper()
	store := inmem.NewStore()
	ctx := context.Background()
	app := &model.WlApp{Name: "bkapp-demo-stag", TenantID: "default", AppCode: "demo",
		ModuleName: "default", Environment: model.EnvStag, Type: model.AppTypeCloudNative}
	if err := store.AppRepo.Create(ctx, app); err != nil {
		t.Fatal(err)
	}
	err := store.ProcessRepo.Upsert(ctx, &model.ProcessSpec{
		AppUUID: app.UUID, Name: "web", TargetReplicas: 2, TargetStatus: model.ProcessStart,
	})
	if err != nil {
		t.Fatal(err)
	}
	u := New(&Repos{App: store.AppRepo, Process: store.ProcessRepo}, nil)
	return u, app
}

func TestScaleRejectsRapidOperations(t *testing.T) {
	u, _ := newTestUseCase(t)
	err := u.Scale(context.Background(), &ScaleInput{
		AppName: "bkapp-demo-stag", ProcessType: "web", Replicas: 3,
	})
	if !errors.Is(err, model.ErrProcessOperationTooOften) {
		t.Errorf("immediate rescale = %v", err)
	}
}

func TestScaleUpdatesTargetStatus(t *testing.T) {
	u, app := newTestUseCase(t)
	ctx := context.Background()
	u.OperationInterval = time.Millisecond
	time.Sleep(2 * time.Millisecond)

	if err := u.Stop(ctx, "bkapp-demo-stag", "web"); err != nil {
		t.Fatal(err)
	}
	spec, err := u.Repos.Process.Get(ctx, app.UUID, "web")
	if err != nil {
		t.Fatal(err)
	}
	if spec.TargetReplicas != 0 || spec.TargetStatus != model.ProcessStop {
		t.Errorf("after stop: replicas=%d status=%s", spec.TargetReplicas, spec.TargetStatus)
	}

	time.Sleep(2 * time.Millisecond)
	if err := u.Start(ctx, "bkapp-demo-stag", "web"); err != nil {
		t.Fatal(err)
	}
	spec, err = u.Repos.Process.Get(ctx, app.UUID, "web")
	if err != nil {
		t.Fatal(err)
	}
	if spec.TargetReplicas != 1 || spec.TargetStatus != model.ProcessStart {
		t.Errorf("after start: replicas=%d status=%s", spec.TargetReplicas, spec.TargetStatus)
	}
}

func TestScaleEnforcesCloudNativeCap(t *testing.T) {
	u, _ := newTestUseCase(t)
	u.OperationInterval = time.Millisecond
	time.Sleep(2 * time.Millisecond)

	err := u.Scale(context.Background(), &ScaleInput{
		AppName: "bkapp-demo-stag", ProcessType: "web",
		Replicas: model.DefaultMaxReplicasPerProcess + 1,
	})
	if !errors.Is(err, model.ErrValidationFailed) {
		t.Errorf("over-cap scale = %v", err)
	}
	err = u.Scale(context.Background(), &ScaleInput{
		AppName: "bkapp-demo-stag", ProcessType: "web", Replicas: -1,
	})
	if !errors.Is(err, model.ErrValidationFailed) {
		t.Errorf("negative scale = %v", err)
	}
}

func TestScaleUnknownProcess(t *testing.T) {
	u, _ := newTestUseCase(t)
	err := u.Scale(context.Background(), &ScaleInput{
		AppName: "bkapp-demo-stag", ProcessType: "worker", Replicas: 1,
	})
	if !errors.Is(err, model.ErrProcessNotFound) {
		t.Errorf("unknown process = %v", err)
	}
}

func TestProcessTypeOf(t *testing.T) {
	if got := processTypeOf(map[string]string{"process_name": "web"}); got != "web" {
		t.Errorf("v2 labels = %q", got)
	}
	if got := processTypeOf(map[string]string{"process_id": "worker"}); got != "worker" {
		t.Errorf("v1 labels = %q", got)
	}
}
