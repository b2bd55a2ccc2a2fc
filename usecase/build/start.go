package build

import (
	"context"
	"fmt"
	"sort"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/logging"
)

// Runtime types a build can target.
const (
	RuntimeBuildpack = "buildpack"
	RuntimeCNB       = "cnb"
)

// SlugBuilderTemplate is the fully resolved launch plan of one builder pod.
type SlugBuilderTemplate struct {
	Name      string
	Namespace string
	Image     string
	Envs      map[string]string

	NodeSelector map[string]string
	Tolerations  []model.Toleration
}

// StartBuildInput describes one build run.
type StartBuildInput struct {
	AppName     string
	RuntimeType string

	SourceTarPath string
	Branch        string
	Revision      string

	Buildpacks []model.Buildpack
	// AppEnvs are the app's own config vars, visible to the builder.
	AppEnvs map[string]string

	Paths BlobStorePaths
}

// StartBuildOutput reports the created run.
type StartBuildOutput struct {
	BuildProcess *model.BuildProcess
	Template     *SlugBuilderTemplate
}

// StartBuild records a build run and launches its builder pod. At most one
// build per app may be active; a held lock fails fast with
// ErrOperationInProgress.
func (u *UseCase) StartBuild(ctx context.Context, in *StartBuildInput) (*StartBuildOutput, error) {
	switch in.RuntimeType {
	case RuntimeBuildpack, RuntimeCNB:
	default:
		return nil, fmt.Errorf("%w: unknown runtime type %q", model.ErrValidationFailed, in.RuntimeType)
	}
	app, err := u.Repos.App.GetByName(ctx, in.AppName)
	if err != nil {
		return nil, err
	}
	if u.Lock != nil {
		if err := u.Lock.Acquire(ctx, "build:"+app.UUID); err != nil {
			return nil, err
		}
	}

	bp := &model.BuildProcess{
		AppUUID:       app.UUID,
		SourceTarPath: in.SourceTarPath,
		Branch:        in.Branch,
		Revision:      in.Revision,
		Buildpacks:    in.Buildpacks,
		Status:        model.BuildStatusPending,
	}
	if err := u.Repos.Release.CreateBuildProcess(ctx, bp); err != nil {
		u.releaseLock(ctx, app.UUID)
		return nil, err
	}

	info := NewSlugbuilderInfo(in.Buildpacks, in.RuntimeType == RuntimeCNB, u.Settings)
	envs, err := ComposeBuilderEnv(info, in.Paths, u.Settings, in.AppEnvs)
	if err != nil {
		return nil, u.markFailed(ctx, bp, err)
	}
	tmpl := &SlugBuilderTemplate{
		Name:      builderPodName(app),
		Namespace: app.Namespace(),
		Image:     info.Image,
		Envs:      envs,
	}

	cfg, err := u.Repos.App.LatestConfig(ctx, app.UUID)
	if err != nil {
		return nil, u.markFailed(ctx, bp, err)
	}
	cluster, err := u.Repos.Cluster.Get(ctx, cfg.ClusterName)
	if err != nil {
		return nil, u.markFailed(ctx, bp, err)
	}
	tmpl.NodeSelector = cluster.DefaultNodeSelector
	tmpl.Tolerations = cluster.DefaultTolerations

	client, err := u.Registry.GetClient(ctx, cfg.ClusterName)
	if err != nil {
		return nil, u.markFailed(ctx, bp, err)
	}
	if err := launchBuilderPod(ctx, client, tmpl); err != nil {
		return nil, u.markFailed(ctx, bp, err)
	}
	bp.Status = model.BuildStatusRunning
	if err := u.Repos.Release.UpdateBuildProcess(ctx, bp); err != nil {
		return nil, u.markFailed(ctx, bp, err)
	}
	logging.FromContext(ctx).Info(ctx, "builder pod launched",
		"app", app.Name, "pod", tmpl.Name, "runtime", in.RuntimeType)
	return &StartBuildOutput{BuildProcess: bp, Template: tmpl}, nil
}

// markFailed records the terminal status and drops the per-app lock: no
// poll task exists yet to release it, so leaving it held would block
// retries until the TTL expires.
func (u *UseCase) markFailed(ctx context.Context, bp *model.BuildProcess, cause error) error {
	bp.Status = model.BuildStatusFailed
	if err := u.Repos.Release.UpdateBuildProcess(ctx, bp); err != nil {
		logging.FromContext(ctx).Warn(ctx, "recording build failure", "err", err)
	}
	u.releaseLock(ctx, bp.AppUUID)
	return cause
}

func (u *UseCase) releaseLock(ctx context.Context, appUUID string) {
	if u.Lock == nil {
		return
	}
	if err := u.Lock.Release(ctx, "build:"+appUUID); err != nil {
		logging.FromContext(ctx).Warn(ctx, "releasing build lock", "app_uuid", appUUID, "err", err)
	}
}

func builderPodName(app *model.WlApp) string {
	return "slug-builder-" + app.SchedulerSafeName()
}

// launchBuilderPod replaces any finished builder pod of the app and
// creates a new one. A still-running builder is a conflict.
func launchBuilderPod(ctx context.Context, client *kube.Client, tmpl *SlugBuilderTemplate) error {
	pod := buildBuilderPod(tmpl)
	return client.Do(ctx, func(cs kubernetes.Interface) error {
		existing, err := cs.CoreV1().Pods(tmpl.Namespace).Get(ctx, tmpl.Name, metav1.GetOptions{})
		switch {
		case apierrors.IsNotFound(err):
		case err != nil:
			return err
		case existing.Status.Phase == corev1.PodRunning || existing.Status.Phase == corev1.PodPending:
			return fmt.Errorf("%w: builder pod %s is still active", model.ErrOperationInProgress, tmpl.Name)
		default:
			zero := int64(0)
			err := cs.CoreV1().Pods(tmpl.Namespace).Delete(ctx, tmpl.Name, metav1.DeleteOptions{
				GracePeriodSeconds: &zero,
			})
			if err != nil && !apierrors.IsNotFound(err) {
				return err
			}
		}
		_, err = cs.CoreV1().Pods(tmpl.Namespace).Create(ctx, pod, metav1.CreateOptions{})
		return err
	})
}

func buildBuilderPod(tmpl *SlugBuilderTemplate) *corev1.Pod {
	env := make([]corev1.EnvVar, 0, len(tmpl.Envs))
	for k, v := range tmpl.Envs {
		env = append(env, corev1.EnvVar{Name: k, Value: v})
	}
	sort.Slice(env, func(i, j int) bool { return env[i].Name < env[j].Name })

	var tolerations []corev1.Toleration
	for _, t := range tmpl.Tolerations {
		tolerations = append(tolerations, corev1.Toleration{
			Key:               t.Key,
			Operator:          corev1.TolerationOperator(t.Operator),
			Value:             t.Value,
			Effect:            corev1.TaintEffect(t.Effect),
			TolerationSeconds: t.TolerationSeconds,
		})
	}
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      tmpl.Name,
			Namespace: tmpl.Namespace,
			Labels:    map[string]string{"category": "slug-builder"},
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			NodeSelector:  tmpl.NodeSelector,
			Tolerations:   tolerations,
			Containers: []corev1.Container{{
				Name:            "slug-builder",
				Image:           tmpl.Image,
				ImagePullPolicy: corev1.PullAlways,
				Env:             env,
			}},
		},
	}
}

// buildDeadline bounds one run.
func (u *UseCase) buildDeadline() time.Duration {
	if u.Settings != nil && u.Settings.Timeout > 0 {
		return u.Settings.Timeout
	}
	return 15 * time.Minute
}
