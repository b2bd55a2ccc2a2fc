package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/logging"
	"github.com/bkpaas/workloads/internal/mapper"
	"github.com/bkpaas/workloads/internal/poller"
)

// ArchiveState is the persisted state of one offline poll task.
type ArchiveState struct {
	AppUUID     string `json:"app_uuid"`
	AppName     string `json:"app_name"`
	ClusterName string `json:"cluster_name"`
	Namespace   string `json:"namespace"`
}

// Offline scales every process of the app environment to zero and returns
// the poll state observing pod teardown.
func (u *UseCase) Offline(ctx context.Context, appName string) (*ArchiveState, error) {
	app, err := u.Repos.App.GetByName(ctx, appName)
	if err != nil {
		return nil, err
	}
	cfg, err := u.Repos.App.LatestConfig(ctx, app.UUID)
	if err != nil {
		return nil, err
	}
	rel, err := u.Repos.Release.LatestRelease(ctx, app.UUID, true)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: app %s has no successful release to archive", model.ErrValidationFailed, appName)
		}
		return nil, err
	}
	m, err := mapper.Get(cfg.MapperVersion(string(u.DefaultMapperVersion)))
	if err != nil {
		return nil, err
	}
	client, err := u.Registry.GetClient(ctx, cfg.ClusterName)
	if err != nil {
		return nil, err
	}

	patch := []byte(`{"spec":{"replicas":0}}`)
	for procType, command := range rel.Procfile {
		name := m.DeploymentName(app, procType, command)
		err := client.Do(ctx, func(cs kubernetes.Interface) error {
			_, err := cs.AppsV1().Deployments(app.Namespace()).
				Patch(ctx, name, types.MergePatchType, patch, metav1.PatchOptions{FieldManager: kube.FieldManager})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("scaling down %s: %w", name, err)
		}
		if spec, err := u.Repos.Process.Get(ctx, app.UUID, procType); err == nil {
			spec.TargetReplicas = 0
			spec.TargetStatus = model.ProcessStop
			spec.UpdatedAt = time.Now()
			if err := u.Repos.Process.Upsert(ctx, spec); err != nil {
				return nil, err
			}
		}
	}
	logging.FromContext(ctx).Info(ctx, "app scaled to zero for archive", "app", app.Name)
	return &ArchiveState{
		AppUUID:     app.UUID,
		AppName:     app.Name,
		ClusterName: cfg.ClusterName,
		Namespace:   app.Namespace(),
	}, nil
}

// EnqueueArchivePoll registers the pod-teardown poll of an archived app.
func (u *UseCase) EnqueueArchivePoll(ctx context.Context, sched *poller.Scheduler, state *ArchiveState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return sched.Enqueue(ctx, &poller.Task{
		ID:       "archive:" + state.AppUUID,
		Kind:     TaskKindArchivePoll,
		State:    raw,
		Deadline: time.Now().Add(u.releaseDeadline()),
	})
}

// ArchiveHandler polls an archived app until every pod is gone.
type ArchiveHandler struct {
	UseCase *UseCase
}

var _ poller.Handler = (*ArchiveHandler)(nil)

// Step ends the task when the namespace holds no more app pods.
func (h *ArchiveHandler) Step(ctx context.Context, task *poller.Task) (poller.Result, error) {
	var state ArchiveState
	if err := json.Unmarshal(task.State, &state); err != nil {
		return poller.Result{}, err
	}
	u := h.UseCase

	app, err := u.Repos.App.Get(ctx, state.AppUUID)
	if err != nil {
		return poller.Result{}, err
	}
	client, err := u.Registry.GetClient(ctx, state.ClusterName)
	if err != nil {
		return poller.Result{}, err
	}
	pods, err := kube.NewEntityManager(client, kube.TypePod).ListByApp(ctx, app, nil)
	if err != nil {
		return poller.Result{}, err
	}
	if n := len(pods.Items); n > 0 {
		logging.FromContext(ctx).Info(ctx, "archive waiting for pods", "app", state.AppName, "remaining", n)
		return poller.Result{RequeueAfter: 3 * time.Second}, nil
	}
	logging.FromContext(ctx).Info(ctx, "archive finished", "app", state.AppName)
	return poller.Result{Done: true}, nil
}

// OnTimeout logs the leftover pods; the archive is reported failed.
func (h *ArchiveHandler) OnTimeout(ctx context.Context, task *poller.Task) error {
	var state ArchiveState
	if err := json.Unmarshal(task.State, &state); err != nil {
		return err
	}
	logging.FromContext(ctx).Warn(ctx, "archive deadline exceeded", "app", state.AppName)
	return fmt.Errorf("%w: pods of %s did not terminate", model.ErrTimeout, state.AppName)
}
