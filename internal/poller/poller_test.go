package poller

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bkpaas/workloads/adapters/store/kv"
)

type countingHandler struct {
	steps     int
	timeouts  int
	doneAfter int
	failSteps int
	lastState string
}

func (h *countingHandler) Step(_ context.Context, task *Task) (Result, error) {
	h.steps++
	h.lastState = string(task.State)
	if h.failSteps > 0 {
		h.failSteps--
		return Result{}, errors.New("transient")
	}
	if h.steps >= h.doneAfter {
		return Result{Done: true}, nil
	}
	state, _ := json.Marshal(map[string]int{"step": h.steps})
	return Result{State: state, RequeueAfter: time.Millisecond}, nil
}

func (h *countingHandler) OnTimeout(context.Context, *Task) error {
	h.timeouts++
	return nil
}

func newTestScheduler() (*Scheduler, *kv.MemoryStore) {
	store := kv.NewMemoryStore()
	s := NewScheduler(store)
	s.Interval = time.Millisecond
	return s, store
}

func TestSchedulerRunsUntilDone(t *testing.T) {
	ctx := context.Background()
	s, store := newTestScheduler()
	h := &countingHandler{doneAfter: 3}
	s.Register("deploy", h)

	if err := s.Enqueue(ctx, &Task{ID: "t1", Kind: "deploy"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	for i := 0; i < 5; i++ {
		time.Sleep(2 * time.Millisecond)
		if err := s.RunOnce(ctx); err != nil {
			t.Fatalf("run once: %v", err)
		}
	}
	if h.steps != 3 {
		t.Fatalf("expected 3 steps, got %d", h.steps)
	}
	// Task record must be gone.
	found := false
	_ = store.Scan(ctx, "poller:task:", func(string, []byte) error {
		found = true
		return nil
	})
	if found {
		t.Fatalf("terminal task still persisted")
	}
}

func TestSchedulerCarriesState(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestScheduler()
	h := &countingHandler{doneAfter: 2}
	s.Register("deploy", h)
	_ = s.Enqueue(ctx, &Task{ID: "t1", Kind: "deploy"})

	time.Sleep(2 * time.Millisecond)
	_ = s.RunOnce(ctx)
	time.Sleep(2 * time.Millisecond)
	_ = s.RunOnce(ctx)
	if h.lastState != `{"step":1}` {
		t.Fatalf("state not carried between steps: %q", h.lastState)
	}
}

func TestSchedulerTimeout(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestScheduler()
	h := &countingHandler{doneAfter: 100}
	s.Register("deploy", h)
	_ = s.Enqueue(ctx, &Task{
		ID:       "t1",
		Kind:     "deploy",
		Deadline: time.Now().Add(-time.Second),
	})
	time.Sleep(2 * time.Millisecond)
	_ = s.RunOnce(ctx)
	if h.timeouts != 1 {
		t.Fatalf("expected timeout handler call, got %d", h.timeouts)
	}
	if h.steps != 0 {
		t.Fatalf("expired task must not step")
	}
}

func TestSchedulerBacksOffOnError(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestScheduler()
	h := &countingHandler{doneAfter: 2, failSteps: 1}
	s.Register("deploy", h)
	_ = s.Enqueue(ctx, &Task{ID: "t1", Kind: "deploy"})

	time.Sleep(2 * time.Millisecond)
	_ = s.RunOnce(ctx)
	if h.steps != 1 {
		t.Fatalf("first step should have run")
	}
	// The failed task is re-enqueued with backoff, not dropped.
	time.Sleep(5 * time.Millisecond)
	_ = s.RunOnce(ctx)
	time.Sleep(5 * time.Millisecond)
	_ = s.RunOnce(ctx)
	if h.steps < 2 {
		t.Fatalf("failed task was not retried, steps=%d", h.steps)
	}
}

func TestEnqueueRequiresHandler(t *testing.T) {
	s, _ := newTestScheduler()
	if err := s.Enqueue(context.Background(), &Task{ID: "x", Kind: "nope"}); err == nil {
		t.Fatalf("enqueue without handler must fail")
	}
}
