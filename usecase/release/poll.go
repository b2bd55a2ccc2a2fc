package release

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/logging"
	"github.com/bkpaas/workloads/internal/poller"
)

// Poller task kinds owned by this package.
const (
	TaskKindReleasePoll = "release.poll"
	TaskKindArchivePoll = "archive.poll"
)

// ProcessTarget is one readiness goal of a release.
type ProcessTarget struct {
	ProcessType    string `json:"process_type"`
	DeploymentName string `json:"deployment_name"`
	Replicas       int32  `json:"replicas"`
}

// PollState is the persisted state of one readiness poll task.
type PollState struct {
	DeployID    string          `json:"deploy_id"`
	AppUUID     string          `json:"app_uuid"`
	AppName     string          `json:"app_name"`
	ClusterName string          `json:"cluster_name"`
	Namespace   string          `json:"namespace"`
	Processes   []ProcessTarget `json:"processes"`
}

// EnqueuePoll registers the readiness poll of an applied release.
func (u *UseCase) EnqueuePoll(ctx context.Context, sched *poller.Scheduler, state *PollState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return sched.Enqueue(ctx, &poller.Task{
		ID:       "release:" + state.DeployID,
		Kind:     TaskKindReleasePoll,
		State:    raw,
		Deadline: time.Now().Add(u.releaseDeadline()),
	})
}

func (u *UseCase) releaseDeadline() time.Duration {
	if u.Settings != nil && u.Settings.ReleaseTimeout > 0 {
		return u.Settings.ReleaseTimeout
	}
	return 15 * time.Minute
}

// PollHandler observes released processes until every Deployment is ready.
// Register it on the shared scheduler at startup.
type PollHandler struct {
	UseCase *UseCase
}

var _ poller.Handler = (*PollHandler)(nil)

// Step checks every process once. An interrupted deployment row ends the
// task and reports the interruption; full readiness ends it successfully.
func (h *PollHandler) Step(ctx context.Context, task *poller.Task) (poller.Result, error) {
	var state PollState
	if err := json.Unmarshal(task.State, &state); err != nil {
		return poller.Result{}, err
	}
	u := h.UseCase

	d, err := u.Repos.Deployment.Get(ctx, state.DeployID)
	if err != nil {
		return poller.Result{}, err
	}
	if d.Status == model.DeployStatusInterrupted {
		FinishStep(d, model.PhaseRelease, "wait_ready", model.StepFailed)
		FinishPhase(d, model.PhaseRelease, model.StepFailed)
		if err := u.finalize(ctx, d, model.DeployStatusInterrupted, d.ErrorDetail); err != nil {
			return poller.Result{}, err
		}
		return poller.Result{Done: true}, nil
	}

	client, err := u.Registry.GetClient(ctx, state.ClusterName)
	if err != nil {
		return poller.Result{}, err
	}
	ready := 0
	err = client.Do(ctx, func(cs kubernetes.Interface) error {
		for _, target := range state.Processes {
			dep, err := cs.AppsV1().Deployments(state.Namespace).Get(ctx, target.DeploymentName, metav1.GetOptions{})
			if err != nil {
				return err
			}
			if deploymentReady(dep, target.Replicas) {
				ready++
			}
		}
		return nil
	})
	if err != nil {
		return poller.Result{}, err
	}
	if ready < len(state.Processes) {
		logging.FromContext(ctx).Info(ctx, "release waiting for processes",
			"deploy", state.DeployID, "ready", ready, "total", len(state.Processes))
		return poller.Result{RequeueAfter: 3 * time.Second}, nil
	}

	FinishStep(d, model.PhaseRelease, "wait_ready", model.StepSuccessful)
	FinishPhase(d, model.PhaseRelease, model.StepSuccessful)
	if err := u.finalize(ctx, d, model.DeployStatusSuccessful, ""); err != nil {
		return poller.Result{}, err
	}
	return poller.Result{Done: true}, nil
}

// OnTimeout marks the deployment failed with a timeout detail.
func (h *PollHandler) OnTimeout(ctx context.Context, task *poller.Task) error {
	var state PollState
	if err := json.Unmarshal(task.State, &state); err != nil {
		return err
	}
	u := h.UseCase
	d, err := u.Repos.Deployment.Get(ctx, state.DeployID)
	if err != nil {
		return err
	}
	FinishStep(d, model.PhaseRelease, "wait_ready", model.StepFailed)
	FinishPhase(d, model.PhaseRelease, model.StepFailed)
	cause := fmt.Errorf("%w: release deadline exceeded waiting for processes", model.ErrTimeout)
	return u.finalize(ctx, d, model.DeployStatusFailed, cause.Error())
}

// deploymentReady reports whether a Deployment reached its target: the
// controller has observed the latest generation and enough replicas are
// ready.
func deploymentReady(dep *appsv1.Deployment, target int32) bool {
	if dep.Status.ObservedGeneration < dep.Generation {
		return false
	}
	return dep.Status.ReadyReplicas >= target
}
