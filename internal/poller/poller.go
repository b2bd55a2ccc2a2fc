package poller

// Package poller runs long-lived observation tasks (build, release,
// archive) as persisted state records. A task owns a small JSON state,
// runs one step per wakeup and re-enqueues itself until terminal. Records
// live in the shared key-value store, so a scheduler restart resumes every
// in-flight task.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bkpaas/workloads/adapters/store/kv"
	"github.com/bkpaas/workloads/internal/logging"
)

const taskKeyPrefix = "poller:task:"

// Task is one persisted poller record.
type Task struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	// State is handler-owned and carried between steps.
	State json.RawMessage `json:"state,omitempty"`
	// EnqueueAt is the earliest time the next step may run.
	EnqueueAt time.Time `json:"enqueue_at"`
	// Deadline bounds the whole task; expiry triggers OnTimeout.
	Deadline time.Time `json:"deadline"`
	Attempts int       `json:"attempts"`
}

// Result tells the scheduler what to do after a step.
type Result struct {
	// Done removes the task.
	Done bool
	// RequeueAfter delays the next step; zero uses the scheduler default.
	RequeueAfter time.Duration
	// State replaces the persisted task state when non-nil.
	State json.RawMessage
}

// Handler implements one task kind.
type Handler interface {
	// Step runs a single observation step. Errors re-enqueue the task with
	// backoff; cancellation is observed between steps, never mid-step.
	Step(ctx context.Context, task *Task) (Result, error)
	// OnTimeout finalises a task whose deadline expired. The task is
	// removed afterwards regardless of the returned error.
	OnTimeout(ctx context.Context, task *Task) error
}

// Scheduler pops due task records and runs one step each.
type Scheduler struct {
	store    kv.Store
	handlers map[string]Handler

	// Interval is the wakeup period; also the default requeue delay.
	Interval time.Duration
	// MaxBackoff caps the error backoff.
	MaxBackoff time.Duration
}

// NewScheduler builds a scheduler over a kv store.
func NewScheduler(store kv.Store) *Scheduler {
	return &Scheduler{
		store:      store,
		handlers:   map[string]Handler{},
		Interval:   2 * time.Second,
		MaxBackoff: 30 * time.Second,
	}
}

// Register binds a handler to a task kind.
func (s *Scheduler) Register(kind string, h Handler) { s.handlers[kind] = h }

// Enqueue persists a new task record.
func (s *Scheduler) Enqueue(ctx context.Context, task *Task) error {
	if task.ID == "" || task.Kind == "" {
		return errors.New("poller task requires id and kind")
	}
	if _, ok := s.handlers[task.Kind]; !ok {
		return fmt.Errorf("no handler registered for task kind %q", task.Kind)
	}
	return s.save(ctx, task)
}

// Run executes due tasks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				logging.FromContext(ctx).Warn(ctx, "poller pass failed", "err", err)
			}
		}
	}
}

// RunOnce runs one step of every due task. Exposed for tests and
// single-shot commands.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := time.Now()
	var due []*Task
	err := s.store.Scan(ctx, taskKeyPrefix, func(_ string, value []byte) error {
		var t Task
		if err := json.Unmarshal(value, &t); err != nil {
			return err
		}
		if !t.EnqueueAt.After(now) {
			due = append(due, &t)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, task := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.runStep(ctx, task)
	}
	return nil
}

func (s *Scheduler) runStep(ctx context.Context, task *Task) {
	logger := logging.FromContext(ctx)
	handler, ok := s.handlers[task.Kind]
	if !ok {
		logger.Warn(ctx, "dropping poller task with unknown kind", "kind", task.Kind, "id", task.ID)
		_ = s.remove(ctx, task)
		return
	}

	if !task.Deadline.IsZero() && time.Now().After(task.Deadline) {
		if err := handler.OnTimeout(ctx, task); err != nil {
			logger.Error(ctx, "poller timeout handler failed", "kind", task.Kind, "id", task.ID, "err", err)
		}
		_ = s.remove(ctx, task)
		return
	}

	task.Attempts++
	result, err := handler.Step(ctx, task)
	if err != nil {
		backoff := time.Duration(task.Attempts) * s.Interval
		if backoff > s.MaxBackoff {
			backoff = s.MaxBackoff
		}
		task.EnqueueAt = time.Now().Add(backoff)
		logger.Warn(ctx, "poller step failed", "kind", task.Kind, "id", task.ID, "attempts", task.Attempts, "err", err)
		_ = s.save(ctx, task)
		return
	}
	if result.Done {
		_ = s.remove(ctx, task)
		return
	}
	if result.State != nil {
		task.State = result.State
	}
	delay := result.RequeueAfter
	if delay <= 0 {
		delay = s.Interval
	}
	task.EnqueueAt = time.Now().Add(delay)
	_ = s.save(ctx, task)
}

func (s *Scheduler) save(ctx context.Context, task *Task) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, taskKeyPrefix+task.Kind+":"+task.ID, raw, 0)
}

func (s *Scheduler) remove(ctx context.Context, task *Task) error {
	return s.store.Delete(ctx, taskKeyPrefix+task.Kind+":"+task.ID)
}
