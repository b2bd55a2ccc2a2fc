package build

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/logging"
	"github.com/bkpaas/workloads/internal/poller"
)

// TaskKindBuildPoll is the poller task kind watching builder pods.
const TaskKindBuildPoll = "build.poll"

// failureLogBytes bounds how much builder log is attached to a failure.
const failureLogBytes = 1024

// PollState is the persisted state of one build poll task.
type PollState struct {
	BuildProcessUUID string `json:"build_process_uuid"`
	AppUUID          string `json:"app_uuid"`
	ClusterName      string `json:"cluster_name"`
	Namespace        string `json:"namespace"`
	PodName          string `json:"pod_name"`

	// Artifact describes what a successful run produces.
	Image   string `json:"image,omitempty"`
	SlugURL string `json:"slug_url,omitempty"`
	UseCNB  bool   `json:"use_cnb,omitempty"`
}

// EnqueuePoll registers a poll task for a launched builder pod.
func (u *UseCase) EnqueuePoll(ctx context.Context, sched *poller.Scheduler, state *PollState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return sched.Enqueue(ctx, &poller.Task{
		ID:       "build:" + state.BuildProcessUUID,
		Kind:     TaskKindBuildPoll,
		State:    raw,
		Deadline: time.Now().Add(u.buildDeadline()),
	})
}

// PollHandler implements the build poll task. Register it on the shared
// scheduler at startup.
type PollHandler struct {
	UseCase *UseCase
}

var _ poller.Handler = (*PollHandler)(nil)

// Step reads the builder pod once. Terminal pod phases finish the task;
// anything else re-enqueues.
func (h *PollHandler) Step(ctx context.Context, task *poller.Task) (poller.Result, error) {
	var state PollState
	if err := json.Unmarshal(task.State, &state); err != nil {
		return poller.Result{Done: true}, err
	}
	client, err := h.UseCase.Registry.GetClient(ctx, state.ClusterName)
	if err != nil {
		return poller.Result{}, err
	}
	var pod *corev1.Pod
	err = client.Do(ctx, func(cs kubernetes.Interface) error {
		p, err := cs.CoreV1().Pods(state.Namespace).Get(ctx, state.PodName, metav1.GetOptions{})
		if err != nil {
			return err
		}
		pod = p
		return nil
	})
	if err != nil {
		return poller.Result{}, err
	}

	switch pod.Status.Phase {
	case corev1.PodSucceeded:
		return poller.Result{Done: true}, h.finishSuccess(ctx, &state)
	case corev1.PodFailed:
		tail := h.tailLog(ctx, client, &state)
		return poller.Result{Done: true}, h.finishFailure(ctx, &state,
			fmt.Errorf("%w: builder exited non-zero: %s", model.ErrBuildFailed, tail))
	}
	return poller.Result{}, nil
}

// OnTimeout marks the run as timed out.
func (h *PollHandler) OnTimeout(ctx context.Context, task *poller.Task) error {
	var state PollState
	if err := json.Unmarshal(task.State, &state); err != nil {
		return err
	}
	return h.finishFailure(ctx, &state, fmt.Errorf("%w: build deadline exceeded", model.ErrTimeout))
}

func (h *PollHandler) finishSuccess(ctx context.Context, state *PollState) error {
	u := h.UseCase
	artifact := &model.Build{
		AppUUID: state.AppUUID,
		Image:   state.Image,
		SlugURL: state.SlugURL,
		ArtifactMetadata: map[string]string{
			model.ArtifactKeyUseCNB: fmt.Sprintf("%t", state.UseCNB),
		},
	}
	if err := u.Repos.Release.CreateBuild(ctx, artifact); err != nil {
		return err
	}
	bp := &model.BuildProcess{
		UUID:          state.BuildProcessUUID,
		AppUUID:       state.AppUUID,
		Status:        model.BuildStatusSuccessful,
		OutputBuildID: artifact.UUID,
	}
	if err := u.Repos.Release.UpdateBuildProcess(ctx, bp); err != nil {
		return err
	}
	h.releaseLock(ctx, state)
	logging.FromContext(ctx).Info(ctx, "build finished", "build", artifact.UUID)
	return nil
}

func (h *PollHandler) finishFailure(ctx context.Context, state *PollState, cause error) error {
	u := h.UseCase
	bp := &model.BuildProcess{
		UUID:    state.BuildProcessUUID,
		AppUUID: state.AppUUID,
		Status:  model.BuildStatusFailed,
	}
	if err := u.Repos.Release.UpdateBuildProcess(ctx, bp); err != nil {
		logging.FromContext(ctx).Warn(ctx, "recording build failure", "err", err)
	}
	h.releaseLock(ctx, state)
	logging.FromContext(ctx).Warn(ctx, "build failed", "build_process", state.BuildProcessUUID, "err", cause)
	return nil
}

func (h *PollHandler) releaseLock(ctx context.Context, state *PollState) {
	h.UseCase.releaseLock(ctx, state.AppUUID)
}

// tailLog fetches the last chunk of builder output for failure reports.
// Best effort: an unreachable log endpoint yields an empty string.
func (h *PollHandler) tailLog(ctx context.Context, client *kube.Client, state *PollState) string {
	var out []byte
	limit := int64(failureLogBytes)
	_ = client.Do(ctx, func(cs kubernetes.Interface) error {
		req := cs.CoreV1().Pods(state.Namespace).GetLogs(state.PodName, &corev1.PodLogOptions{
			LimitBytes: &limit,
		})
		rc, err := req.Stream(ctx)
		if err != nil {
			return err
		}
		defer rc.Close()
		out, err = io.ReadAll(rc)
		return err
	})
	return string(out)
}
