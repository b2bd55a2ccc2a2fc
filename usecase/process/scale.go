package process

import (
	"context"
	"fmt"
	"strings"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"

	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/mapper"
	"github.com/bkpaas/workloads/internal/ratelimit"
)

// ScaleInput identifies a process and its new replica target.
type ScaleInput struct {
	AppName     string
	ProcessType string
	Replicas    int
}

// Scale rewrites the process spec's target and updates the live Deployment
// replica count. A target of zero stops the process without deleting its
// Deployment. Mutating the same process again within OperationInterval
// fails with ErrProcessOperationTooOften.
func (u *UseCase) Scale(ctx context.Context, in *ScaleInput) error {
	if in.Replicas < 0 {
		return fmt.Errorf("%w: replicas must be >= 0", model.ErrValidationFailed)
	}
	app, err := u.Repos.App.GetByName(ctx, in.AppName)
	if err != nil {
		return err
	}
	if app.Type == model.AppTypeCloudNative && in.Replicas > u.MaxReplicas {
		return fmt.Errorf("%w: replicas %d exceeds the per-process limit %d",
			model.ErrValidationFailed, in.Replicas, u.MaxReplicas)
	}
	spec, err := u.Repos.Process.Get(ctx, app.UUID, in.ProcessType)
	if err != nil {
		return err
	}
	if err := ratelimit.JudgeOperationFrequent(spec.UpdatedAt, u.operationInterval()); err != nil {
		return err
	}

	spec.TargetReplicas = in.Replicas
	spec.TargetStatus = model.ProcessStart
	if in.Replicas == 0 {
		spec.TargetStatus = model.ProcessStop
	}
	spec.UpdatedAt = time.Now()
	if err := u.Repos.Process.Upsert(ctx, spec); err != nil {
		return err
	}
	return u.syncReplicas(ctx, app, spec)
}

// Start scales the process back to its recorded target, or one replica if
// it never had one.
func (u *UseCase) Start(ctx context.Context, appName, processType string) error {
	app, err := u.Repos.App.GetByName(ctx, appName)
	if err != nil {
		return err
	}
	spec, err := u.Repos.Process.Get(ctx, app.UUID, processType)
	if err != nil {
		return err
	}
	replicas := spec.TargetReplicas
	if replicas <= 0 {
		replicas = 1
	}
	return u.Scale(ctx, &ScaleInput{AppName: appName, ProcessType: processType, Replicas: replicas})
}

// Stop scales the process to zero.
func (u *UseCase) Stop(ctx context.Context, appName, processType string) error {
	return u.Scale(ctx, &ScaleInput{AppName: appName, ProcessType: processType, Replicas: 0})
}

// syncReplicas patches the live Deployment to the spec's target. A missing
// Deployment is fine: the process has not been released yet and the next
// release picks the target up.
func (u *UseCase) syncReplicas(ctx context.Context, app *model.WlApp, spec *model.ProcessSpec) error {
	if u.Registry == nil {
		return nil
	}
	client, err := u.Registry.ClientForApp(ctx, u.Repos.App, app)
	if err != nil {
		return err
	}
	m, err := u.appMapper(ctx, app)
	if err != nil {
		return err
	}
	name := m.DeploymentName(app, spec.Name, strings.Join(spec.Command, " "))
	patch := fmt.Sprintf(`{"spec":{"replicas":%d}}`, spec.TargetReplicas)
	err = client.Do(ctx, func(cs kubernetes.Interface) error {
		_, err := cs.AppsV1().Deployments(app.Namespace()).Patch(
			ctx, name, types.MergePatchType, []byte(patch), metav1.PatchOptions{})
		return err
	})
	if apierrors.IsNotFound(err) {
		return nil
	}
	return err
}

func (u *UseCase) operationInterval() time.Duration {
	if u.OperationInterval > 0 {
		return u.OperationInterval
	}
	return DefaultOperationInterval
}

func (u *UseCase) appMapper(ctx context.Context, app *model.WlApp) (mapper.Mapper, error) {
	cfg, err := u.Repos.App.LatestConfig(ctx, app.UUID)
	if err != nil {
		return nil, err
	}
	return mapper.Get(cfg.MapperVersion(string(u.DefaultMapperVersion)))
}
