package release

import (
	"context"
	"fmt"
	"time"

	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/logging"
)

// Runtime types a deployment may target. Buildpack runtimes need a build;
// image runtimes ship a ready image.
const (
	RuntimeBuildpack   = "buildpack"
	RuntimeCustomImage = "custom_image"
)

// Source version types.
const (
	VersionTypeBranch = "branch"
	VersionTypeTag    = "tag"
	// VersionTypeImage marks S-Mart packages distributed as images.
	VersionTypeImage = "image"
)

// RequireBuild reports whether a deployment must run the build phase.
// Custom-image runtimes and image-type S-Mart versions deploy as-is.
func RequireBuild(runtimeType, versionType string) bool {
	if runtimeType == RuntimeCustomImage {
		return false
	}
	return versionType != VersionTypeImage
}

// InitializeInput snapshots everything a deployment needs at creation.
type InitializeInput struct {
	AppName string

	RuntimeType       string
	SourceVersionType string
	SourceVersionName string
	SourceRevision    string

	PreReleaseHook []string
	HookEnabled    bool
}

// InitializeOutput reports the created deployment.
type InitializeOutput struct {
	Deployment *model.Deployment
	// NeedBuild tells the dispatcher which branch to run: start a build,
	// or release the image directly.
	NeedBuild bool
}

// Initialize creates the deployment row with its phase skeleton and takes
// the per-app release lock. At most one release per app may be active;
// concurrent attempts fail fast with ErrOperationInProgress.
func (u *UseCase) Initialize(ctx context.Context, in *InitializeInput) (*InitializeOutput, error) {
	app, err := u.Repos.App.GetByName(ctx, in.AppName)
	if err != nil {
		return nil, err
	}
	if u.Lock != nil {
		if err := u.Lock.Acquire(ctx, "release:"+app.UUID); err != nil {
			return nil, err
		}
	}

	needBuild := RequireBuild(in.RuntimeType, in.SourceVersionType)
	d := &model.Deployment{
		AppUUID:           app.UUID,
		SourceVersionType: in.SourceVersionType,
		SourceVersionName: in.SourceVersionName,
		SourceRevision:    in.SourceRevision,
		PreReleaseHook:    in.PreReleaseHook,
		HookEnabled:       in.HookEnabled && len(in.PreReleaseHook) > 0,
		Status:            model.DeployStatusPending,
		Phases:            InitialPhases(needBuild),
	}
	if err := u.Repos.Deployment.Create(ctx, d); err != nil {
		u.releaseLock(ctx, app.UUID)
		return nil, err
	}
	logging.FromContext(ctx).Info(ctx, "deployment initialized",
		"app", app.Name, "deploy", d.UUID, "need_build", needBuild)
	return &InitializeOutput{Deployment: d, NeedBuild: needBuild}, nil
}

// Interrupt requests a cooperative abort of a progressing deployment. The
// readiness poller observes the status between steps and reports the
// interruption in the platform callback.
func (u *UseCase) Interrupt(ctx context.Context, deployID string) error {
	d, err := u.Repos.Deployment.Get(ctx, deployID)
	if err != nil {
		return err
	}
	switch d.Status {
	case model.DeployStatusSuccessful, model.DeployStatusFailed, model.DeployStatusInterrupted:
		return fmt.Errorf("%w: deployment %s is already %s", model.ErrValidationFailed, d.UUID, d.Status)
	}
	d.Status = model.DeployStatusInterrupted
	d.ErrorDetail = "interrupted by user"
	d.UpdatedAt = time.Now()
	return u.Repos.Deployment.Update(ctx, d)
}

func (u *UseCase) releaseLock(ctx context.Context, appUUID string) {
	if u.Lock == nil {
		return
	}
	if err := u.Lock.Release(ctx, "release:"+appUUID); err != nil {
		logging.FromContext(ctx).Warn(ctx, "releasing deploy lock", "app_uuid", appUUID, "err", err)
	}
}

// finalize writes the terminal status and error detail, notifies the
// platform and drops the per-app lock. Interrupted deployments keep their
// status; any other failure overwrites it.
func (u *UseCase) finalize(ctx context.Context, d *model.Deployment, status, errorDetail string) error {
	if d.Status != model.DeployStatusInterrupted {
		d.Status = status
		d.ErrorDetail = errorDetail
	}
	d.UpdatedAt = time.Now()
	if err := u.Repos.Deployment.Update(ctx, d); err != nil {
		return err
	}
	if u.Notifier != nil {
		if err := u.Notifier.NotifyDeployResult(ctx, d.UUID, d.Status, d.ErrorDetail); err != nil {
			logging.FromContext(ctx).Warn(ctx, "deploy callback failed", "deploy", d.UUID, "err", err)
			// Remote platform failures do not fail the release, but the
			// deployment row keeps a trace of them.
			if d.ErrorDetail == "" {
				d.ErrorDetail = fmt.Sprintf("%v: platform callback: %v", model.ErrDependency, err)
				if err := u.Repos.Deployment.Update(ctx, d); err != nil {
					logging.FromContext(ctx).Warn(ctx, "recording callback failure", "deploy", d.UUID, "err", err)
				}
			}
		}
	}
	u.releaseLock(ctx, d.AppUUID)
	return nil
}
