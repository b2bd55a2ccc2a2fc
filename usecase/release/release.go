package release

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/logging"
	"github.com/bkpaas/workloads/internal/mapper"
	"github.com/bkpaas/workloads/internal/naming"
)

// ReleaseInput runs the release phase of one deployment against a built
// artifact.
type ReleaseInput struct {
	DeployID string
	AppName  string
	BuildID  string

	// Envs are the environment variables of the released processes and
	// the pre-release hook.
	Envs map[string]string
	// ProcessPorts overrides the service target port per process.
	ProcessPorts map[string]int
}

// ReleaseOutput reports the created release and the readiness poll state
// to enqueue.
type ReleaseOutput struct {
	Release   *model.Release
	PollState *PollState
}

// Release executes the release phase for a default app: pre-release hook,
// config and release rows, per-process Deployments and Services, obsolete
// process cleanup. Readiness is observed by a poller task built from the
// returned state.
func (u *UseCase) Release(ctx context.Context, in *ReleaseInput) (*ReleaseOutput, error) {
	d, err := u.Repos.Deployment.Get(ctx, in.DeployID)
	if err != nil {
		return nil, err
	}
	app, err := u.Repos.App.GetByName(ctx, in.AppName)
	if err != nil {
		return nil, u.abort(ctx, d, err)
	}
	if d.AppUUID != app.UUID {
		return nil, u.abort(ctx, d, fmt.Errorf("%w: deployment %s does not belong to app %s", model.ErrValidationFailed, d.UUID, app.Name))
	}
	build, err := u.Repos.Release.GetBuild(ctx, in.BuildID)
	if err != nil {
		return nil, u.abort(ctx, d, err)
	}

	d.Status = model.DeployStatusProgressing
	d.BuildID = build.UUID
	u.completePreparation(d)
	if err := StartPhase(d, model.PhaseRelease); err != nil {
		return nil, u.abort(ctx, d, fmt.Errorf("%w: %s", model.ErrValidationFailed, err))
	}
	if err := u.Repos.Deployment.Update(ctx, d); err != nil {
		return nil, u.abort(ctx, d, err)
	}

	client, err := u.Registry.ClientForApp(ctx, u.Repos.App, app)
	if err != nil {
		return nil, u.fail(ctx, d, "run_pre_release_hook", err)
	}

	StartStep(d, model.PhaseRelease, "run_pre_release_hook")
	if d.HookEnabled {
		err := RunPreReleaseHook(ctx, client, app, build.Image, d.PreReleaseHook, in.Envs, u.releaseDeadline())
		if err != nil {
			return nil, u.fail(ctx, d, "run_pre_release_hook", err)
		}
		FinishStep(d, model.PhaseRelease, "run_pre_release_hook", model.StepSuccessful)
	} else {
		FinishStep(d, model.PhaseRelease, "run_pre_release_hook", model.StepSkipped)
	}

	// the previous successful procfile drives obsolete process cleanup
	var prevProcfile map[string]string
	if prev, err := u.Repos.Release.LatestRelease(ctx, app.UUID, true); err == nil {
		prevProcfile = prev.Procfile
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, u.fail(ctx, d, "write_release", err)
	}

	StartStep(d, model.PhaseRelease, "write_release")
	cfg, err := u.appendReleaseConfig(ctx, app, build)
	if err != nil {
		return nil, u.fail(ctx, d, "write_release", err)
	}
	rel := &model.Release{
		AppUUID:    app.UUID,
		BuildID:    build.UUID,
		Procfile:   build.Procfile,
		ConfigUUID: cfg.UUID,
	}
	if err := u.Repos.Release.CreateRelease(ctx, rel); err != nil {
		return nil, u.fail(ctx, d, "write_release", err)
	}
	d.ReleaseID = rel.UUID
	FinishStep(d, model.PhaseRelease, "write_release", model.StepSuccessful)

	StartStep(d, model.PhaseRelease, "sync_workloads")
	m, err := mapper.Get(cfg.MapperVersion(string(u.DefaultMapperVersion)))
	if err != nil {
		return nil, u.fail(ctx, d, "sync_workloads", err)
	}
	targets, err := u.syncProcessDeployments(ctx, client, app, cfg, build, d.UUID, rel.Version, m, in.Envs)
	if err != nil {
		return nil, u.fail(ctx, d, "sync_workloads", err)
	}
	if err := u.Network.SyncProcessServices(ctx, app.Name, build.Procfile, in.ProcessPorts); err != nil {
		return nil, u.fail(ctx, d, "sync_workloads", err)
	}
	actions := ObsoleteProcesses(app, prevProcfile, build.Procfile, m)
	if err := u.cleanupObsolete(ctx, client, app, actions); err != nil {
		return nil, u.fail(ctx, d, "sync_workloads", err)
	}
	FinishStep(d, model.PhaseRelease, "sync_workloads", model.StepSuccessful)

	StartStep(d, model.PhaseRelease, "wait_ready")
	if err := u.Repos.Deployment.Update(ctx, d); err != nil {
		return nil, u.fail(ctx, d, "wait_ready", err)
	}
	logging.FromContext(ctx).Info(ctx, "release applied",
		"app", app.Name, "deploy", d.UUID, "release_version", rel.Version)
	return &ReleaseOutput{
		Release: rel,
		PollState: &PollState{
			DeployID:    d.UUID,
			AppUUID:     app.UUID,
			AppName:     app.Name,
			ClusterName: cfg.ClusterName,
			Namespace:   app.Namespace(),
			Processes:   targets,
		},
	}, nil
}

// completePreparation closes the preparation phase when no external driver
// did. Build-skipping deploys reach Release with the build phase already
// terminal (skipped).
func (u *UseCase) completePreparation(d *model.Deployment) {
	for i := range d.Phases {
		p := &d.Phases[i]
		if p.Type != model.PhasePreparation || phaseTerminal(p.Status) {
			continue
		}
		StartPhase(d, model.PhasePreparation)
		for _, s := range preparationSteps {
			StartStep(d, model.PhasePreparation, s)
			FinishStep(d, model.PhasePreparation, s, model.StepSuccessful)
		}
		FinishPhase(d, model.PhasePreparation, model.StepSuccessful)
	}
}

// abort finalizes a deployment that failed before its release phase ran,
// so the per-app lock acquired at Initialize is not left to expire by TTL
// and the row does not sit pending forever.
func (u *UseCase) abort(ctx context.Context, d *model.Deployment, cause error) error {
	if err := u.finalize(ctx, d, model.DeployStatusFailed, cause.Error()); err != nil {
		logging.FromContext(ctx).Warn(ctx, "finalizing aborted deployment", "deploy", d.UUID, "err", err)
	}
	return cause
}

// fail marks the running step and the release phase failed, finalizes the
// deployment and returns the cause.
func (u *UseCase) fail(ctx context.Context, d *model.Deployment, step string, cause error) error {
	FinishStep(d, model.PhaseRelease, step, model.StepFailed)
	FinishPhase(d, model.PhaseRelease, model.StepFailed)
	if err := u.finalize(ctx, d, model.DeployStatusFailed, cause.Error()); err != nil {
		logging.FromContext(ctx).Warn(ctx, "finalizing failed deployment", "deploy", d.UUID, "err", err)
	}
	return cause
}

// appendReleaseConfig writes a new config row carrying the built image,
// preserving the cluster binding and mapper metadata of the previous row.
func (u *UseCase) appendReleaseConfig(ctx context.Context, app *model.WlApp, build *model.Build) (*model.Config, error) {
	prev, err := u.Repos.App.LatestConfig(ctx, app.UUID)
	if err != nil {
		return nil, err
	}
	cfg := &model.Config{
		AppUUID:              app.UUID,
		ClusterName:          prev.ClusterName,
		Image:                build.Image,
		ResourceRequirements: prev.ResourceRequirements,
		Tolerations:          prev.Tolerations,
		Metadata:             prev.Metadata,
		MountLogToHost:       prev.MountLogToHost,
	}
	if err := u.Repos.App.AppendConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// syncProcessDeployments writes one Deployment per procfile process and
// returns the readiness targets.
func (u *UseCase) syncProcessDeployments(ctx context.Context, client *kube.Client, app *model.WlApp,
	cfg *model.Config, build *model.Build, deployID string, version int, m mapper.Mapper, envs map[string]string) ([]ProcessTarget, error) {

	cluster, err := u.Repos.Cluster.Get(ctx, cfg.ClusterName)
	if err != nil {
		return nil, err
	}
	env := make([]corev1.EnvVar, 0, len(envs)+1)
	for k, v := range envs {
		env = append(env, corev1.EnvVar{Name: k, Value: v})
	}
	if _, ok := envs[subPathVarName]; !ok {
		env = append(env, corev1.EnvVar{Name: subPathVarName, Value: u.subPathVarValue(app)})
	}
	sort.Slice(env, func(i, j int) bool { return env[i].Name < env[j].Name })

	procTypes := make([]string, 0, len(build.Procfile))
	for procType := range build.Procfile {
		procTypes = append(procTypes, procType)
	}
	sort.Strings(procTypes)

	mgr := kube.NewEntityManager(client, kube.TypeDeployment)
	targets := make([]ProcessTarget, 0, len(procTypes))
	for _, procType := range procTypes {
		command := build.Procfile[procType]
		replicas, err := u.targetReplicas(ctx, app, procType)
		if err != nil {
			return nil, err
		}

		labels := m.Labels(app, procType, command)
		labels[kube.LabelWlAppName] = app.SchedulerSafeName()
		var resources *model.ResourceRequirement
		if r, ok := cfg.ResourceRequirements[procType]; ok {
			resources = &r
		}
		tolerations := append([]model.Toleration{}, cluster.DefaultTolerations...)
		tolerations = append(tolerations, cfg.Tolerations...)

		name := m.DeploymentName(app, procType, command)
		desired := kube.BuildProcessDeployment(kube.ProcessDeployment{
			Name:      name,
			Namespace: app.Namespace(),
			Labels:    labels,
			Selector:  m.PodSelector(app, procType, command),

			DeployID: deployID,
			Version:  version,

			Image:    build.Image,
			Command:  strings.Fields(command),
			Replicas: replicas,
			Env:      env,

			Resources:    resources,
			NodeSelector: cluster.DefaultNodeSelector,
			Tolerations:  tolerations,

			ImagePullSecretName: naming.ImagePullSecretName(app.Name),
		})
		obj, err := kube.ToUnstructured(desired)
		if err != nil {
			return nil, fmt.Errorf("render deployment %s: %w", name, err)
		}
		if err := mgr.Save(ctx, obj); err != nil {
			return nil, err
		}
		targets = append(targets, ProcessTarget{
			ProcessType:    procType,
			DeploymentName: name,
			Replicas:       replicas,
		})
	}
	return targets, nil
}

// subPathVarName is injected into every released process so apps can build
// absolute URLs under sub-path exposure.
const subPathVarName = "BKPAAS_SUB_PATH"

// subPathVarValue computes the injected sub-path. The legacy style embeds
// the region-qualified workload name and survives only behind the
// compatibility toggle.
func (u *UseCase) subPathVarValue(app *model.WlApp) string {
	if u.Settings != nil && u.Settings.ForceLegacySubPathVar {
		return fmt.Sprintf("/%s-%s/", app.Region, app.SchedulerSafeName())
	}
	return naming.SubPath(app.AppCode, app.ModuleName, app.Environment, app.ModuleName == "default")
}

// targetReplicas resolves the desired replica count: the persisted process
// spec wins, then the app structure hint, then one.
func (u *UseCase) targetReplicas(ctx context.Context, app *model.WlApp, procType string) (int32, error) {
	spec, err := u.Repos.Process.Get(ctx, app.UUID, procType)
	switch {
	case err == nil:
		if spec.TargetStatus == model.ProcessStop {
			return 0, nil
		}
		return int32(spec.TargetReplicas), nil
	case errors.Is(err, model.ErrNotFound):
		if n, ok := app.Structure[procType]; ok {
			return int32(n), nil
		}
		return 1, nil
	default:
		return 0, err
	}
}
