package release

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/logging"
)

const hookPollInterval = 2 * time.Second

// hookLogBytes bounds how much hook output is attached to a failure.
const hookLogBytes = 2048

// RunPreReleaseHook runs the hook command as a one-shot pod using the
// release image and envs, blocking until the pod reaches a terminal phase.
// A non-zero exit or a deadline expiry aborts the release.
func RunPreReleaseHook(ctx context.Context, client *kube.Client, app *model.WlApp, image string, command []string, envs map[string]string, timeout time.Duration) error {
	name := hookPodName(app)
	namespace := app.Namespace()
	pod := buildHookPod(name, namespace, app, image, command, envs)

	err := client.Do(ctx, func(cs kubernetes.Interface) error {
		existing, err := cs.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
		switch {
		case apierrors.IsNotFound(err):
		case err != nil:
			return err
		case existing.Status.Phase == corev1.PodRunning || existing.Status.Phase == corev1.PodPending:
			return fmt.Errorf("%w: hook pod %s is still active", model.ErrOperationInProgress, name)
		default:
			zero := int64(0)
			err := cs.CoreV1().Pods(namespace).Delete(ctx, name, metav1.DeleteOptions{GracePeriodSeconds: &zero})
			if err != nil && !apierrors.IsNotFound(err) {
				return err
			}
		}
		_, err = cs.CoreV1().Pods(namespace).Create(ctx, pod, metav1.CreateOptions{})
		return err
	})
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info(ctx, "pre-release hook started", "app", app.Name, "pod", name)

	var phase corev1.PodPhase
	err = wait.PollUntilContextTimeout(ctx, hookPollInterval, timeout, false, func(ctx context.Context) (bool, error) {
		getErr := client.Do(ctx, func(cs kubernetes.Interface) error {
			p, err := cs.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
			if err != nil {
				return err
			}
			phase = p.Status.Phase
			return nil
		})
		if getErr != nil {
			// transient API failures keep the poll alive
			return false, nil
		}
		return phase == corev1.PodSucceeded || phase == corev1.PodFailed, nil
	})
	if err != nil {
		return fmt.Errorf("%w: pre-release hook did not finish", model.ErrTimeout)
	}
	if phase == corev1.PodFailed {
		tail := hookLogTail(ctx, client, namespace, name)
		return fmt.Errorf("pre-release hook exited non-zero: %s", tail)
	}
	return nil
}

func hookPodName(app *model.WlApp) string {
	return "pre-release-hook-" + app.SchedulerSafeName()
}

func buildHookPod(name, namespace string, app *model.WlApp, image string, command []string, envs map[string]string) *corev1.Pod {
	env := make([]corev1.EnvVar, 0, len(envs))
	for k, v := range envs {
		env = append(env, corev1.EnvVar{Name: k, Value: v})
	}
	sort.Slice(env, func(i, j int) bool { return env[i].Name < env[j].Name })

	return &corev1.Pod{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Pod"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels: map[string]string{
				kube.LabelWlAppName: app.SchedulerSafeName(),
				"category":          "pre-release-hook",
			},
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			Containers: []corev1.Container{{
				Name:    "hook",
				Image:   image,
				Command: command,
				Env:     env,
			}},
		},
	}
}

// hookLogTail fetches the last bytes of the hook pod's log, best effort.
func hookLogTail(ctx context.Context, client *kube.Client, namespace, name string) string {
	limit := int64(hookLogBytes)
	var tail string
	err := client.Do(ctx, func(cs kubernetes.Interface) error {
		stream, err := cs.CoreV1().Pods(namespace).GetLogs(name, &corev1.PodLogOptions{LimitBytes: &limit}).Stream(ctx)
		if err != nil {
			return err
		}
		defer stream.Close()
		b, err := io.ReadAll(stream)
		if err != nil {
			return err
		}
		tail = string(b)
		return nil
	})
	if err != nil {
		return "(hook log unavailable)"
	}
	return tail
}
