package release

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/crd/paasv1alpha1"
	"github.com/bkpaas/workloads/crd/paasv1alpha2"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/logging"
	"github.com/bkpaas/workloads/internal/poller"
)

// TaskKindCNativePoll observes BkApp reconciliation.
const TaskKindCNativePoll = "cnative.poll"

// serviceAccountTimeout bounds the wait for the default ServiceAccount of
// a freshly created namespace.
const serviceAccountTimeout = 2 * time.Minute

// CloudNativeReleaseInput deploys one BkApp resource.
type CloudNativeReleaseInput struct {
	AppName string
	// Resource is the rendered BkApp body; metadata is stamped here.
	Resource *paasv1alpha2.BkApp
	// DeployUUID is the AppModelDeploy row tracking this release.
	DeployUUID string
}

// CloudNativeReleaseOutput reports the applied resource and the poll state
// to enqueue.
type CloudNativeReleaseOutput struct {
	PollState *CNativePollState
}

// ReleaseCloudNative applies a cloud-native release: namespace and default
// ServiceAccount readiness, the image-pull Secret, the BkApp resource via
// merge patch and the DomainGroupMapping. Progress is observed from the
// CRD status by a poller task.
func (u *UseCase) ReleaseCloudNative(ctx context.Context, in *CloudNativeReleaseInput) (*CloudNativeReleaseOutput, error) {
	app, err := u.Repos.App.GetByName(ctx, in.AppName)
	if err != nil {
		return nil, err
	}
	if app.Type != model.AppTypeCloudNative {
		return nil, fmt.Errorf("%w: app %s is not cloud-native", model.ErrValidationFailed, in.AppName)
	}
	if u.Lock != nil {
		if err := u.Lock.Acquire(ctx, "release:"+app.UUID); err != nil {
			return nil, err
		}
	}
	cfg, err := u.Repos.App.LatestConfig(ctx, app.UUID)
	if err != nil {
		u.releaseLock(ctx, app.UUID)
		return nil, err
	}
	client, err := u.Registry.GetClient(ctx, cfg.ClusterName)
	if err != nil {
		u.releaseLock(ctx, app.UUID)
		return nil, err
	}

	created, err := client.EnsureNamespace(ctx, app.Namespace())
	if err != nil {
		u.releaseLock(ctx, app.UUID)
		return nil, err
	}
	if created {
		if err := client.WaitDefaultServiceAccount(ctx, app.Namespace(), serviceAccountTimeout); err != nil {
			u.releaseLock(ctx, app.UUID)
			return nil, err
		}
	}
	if err := u.syncImagePullSecret(ctx, client, app, cfg.ClusterName); err != nil {
		u.releaseLock(ctx, app.UUID)
		return nil, err
	}

	res := in.Resource
	res.TypeMeta = metav1.TypeMeta{APIVersion: paasv1alpha2.APIVersion, Kind: paasv1alpha2.KindBkApp}
	res.ObjectMeta.Name = app.SchedulerSafeName()
	res.ObjectMeta.Namespace = app.Namespace()
	if res.ObjectMeta.Labels == nil {
		res.ObjectMeta.Labels = map[string]string{}
	}
	res.ObjectMeta.Labels[kube.LabelWlAppName] = app.SchedulerSafeName()
	res.ObjectMeta.Labels[kube.LabelAppCode] = app.AppCode
	res.ObjectMeta.Labels[kube.LabelModuleName] = app.ModuleName
	res.ObjectMeta.Labels[kube.LabelEnvironment] = app.Environment
	if res.ObjectMeta.Annotations == nil {
		res.ObjectMeta.Annotations = map[string]string{}
	}
	res.ObjectMeta.Annotations[kube.AnnotationDeployID] = in.DeployUUID

	obj, err := kube.ToUnstructured(res)
	if err != nil {
		u.releaseLock(ctx, app.UUID)
		return nil, fmt.Errorf("render bkapp: %w", err)
	}
	if err := kube.NewEntityManager(client, kube.TypeBkApp).Save(ctx, obj); err != nil {
		u.releaseLock(ctx, app.UUID)
		return nil, err
	}
	if err := u.Network.SyncDomainGroupMapping(ctx, app.Name); err != nil {
		u.releaseLock(ctx, app.UUID)
		return nil, err
	}
	logging.FromContext(ctx).Info(ctx, "bkapp applied",
		"app", app.Name, "cluster", cfg.ClusterName, "deploy", in.DeployUUID)
	return &CloudNativeReleaseOutput{
		PollState: &CNativePollState{
			DeployUUID:  in.DeployUUID,
			AppUUID:     app.UUID,
			AppName:     app.Name,
			ClusterName: cfg.ClusterName,
			Namespace:   app.Namespace(),
			BkAppName:   app.SchedulerSafeName(),
		},
	}, nil
}

// syncImagePullSecret writes the namespace image-pull Secret from the
// app's credential rows plus the platform registry, unless the cluster
// opts out of the built-in credential.
func (u *UseCase) syncImagePullSecret(ctx context.Context, client *kube.Client, app *model.WlApp, clusterName string) error {
	rows, err := u.Repos.Credential.ListImageCredentials(ctx, app.UUID)
	if err != nil {
		return err
	}
	creds := make([]kube.RegistryCredential, 0, len(rows)+1)
	for _, r := range rows {
		creds = append(creds, kube.RegistryCredential{
			Registry: r.Registry,
			Username: r.Username,
			Password: r.Password,
		})
	}
	cluster, err := u.Repos.Cluster.Get(ctx, clusterName)
	if err != nil {
		return err
	}
	if !cluster.FeatureFlags[model.FeatureDisableBuiltinImageCredential] &&
		u.Settings != nil && u.Settings.Build.RegistryHost != "" {
		creds = append(creds, kube.RegistryCredential{
			Registry: u.Settings.Build.RegistryHost,
			Username: u.Settings.Build.RegistryUsername,
			Password: u.Settings.Build.RegistryPassword,
		})
	}
	secret, err := kube.BuildImagePullSecret(app, creds)
	if err != nil {
		return err
	}
	obj, err := kube.ToUnstructured(secret)
	if err != nil {
		return fmt.Errorf("render image pull secret: %w", err)
	}
	return kube.NewEntityManager(client, kube.TypeSecret).Save(ctx, obj)
}

// CNativePollState is the persisted state of one BkApp observation task.
type CNativePollState struct {
	DeployUUID  string `json:"deploy_uuid"`
	AppUUID     string `json:"app_uuid"`
	AppName     string `json:"app_name"`
	ClusterName string `json:"cluster_name"`
	Namespace   string `json:"namespace"`
	BkAppName   string `json:"bkapp_name"`
}

// EnqueueCNativePoll registers the BkApp observation of an applied
// cloud-native release.
func (u *UseCase) EnqueueCNativePoll(ctx context.Context, sched *poller.Scheduler, state *CNativePollState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return sched.Enqueue(ctx, &poller.Task{
		ID:       "cnative:" + state.DeployUUID,
		Kind:     TaskKindCNativePoll,
		State:    raw,
		Deadline: time.Now().Add(u.releaseDeadline()),
	})
}

// CNativeHandler derives deploy progress from the BkApp status.
type CNativeHandler struct {
	UseCase *UseCase
}

var _ poller.Handler = (*CNativeHandler)(nil)

// Step reads the CRD status once. Ready and Error are terminal; anything
// else requeues.
func (h *CNativeHandler) Step(ctx context.Context, task *poller.Task) (poller.Result, error) {
	var state CNativePollState
	if err := json.Unmarshal(task.State, &state); err != nil {
		return poller.Result{}, err
	}
	u := h.UseCase

	client, err := u.Registry.GetClient(ctx, state.ClusterName)
	if err != nil {
		return poller.Result{}, err
	}
	obj, err := kube.NewEntityManager(client, kube.TypeBkApp).Get(ctx, state.Namespace, state.BkAppName)
	if err != nil {
		return poller.Result{}, err
	}
	var res paasv1alpha2.BkApp
	if err := kube.FromUnstructured(obj, &res); err != nil {
		return poller.Result{}, err
	}

	status, terminal := deployStatusOf(res.Status.Phase)
	if err := h.recordDeploy(ctx, state.DeployUUID, status, res.Status.Conditions); err != nil {
		return poller.Result{}, err
	}
	if !terminal {
		return poller.Result{RequeueAfter: 3 * time.Second}, nil
	}
	u.releaseLock(ctx, state.AppUUID)
	if u.Notifier != nil {
		callback := model.DeployStatusSuccessful
		var detail string
		if status == model.AppModelDeployError {
			callback = model.DeployStatusFailed
			detail = conditionDetail(res.Status.Conditions)
		}
		if err := u.Notifier.NotifyDeployResult(ctx, state.DeployUUID, callback, detail); err != nil {
			logging.FromContext(ctx).Warn(ctx, "deploy callback failed", "deploy", state.DeployUUID, "err", err)
		}
	}
	logging.FromContext(ctx).Info(ctx, "cloud-native deploy finished",
		"app", state.AppName, "deploy", state.DeployUUID, "status", status)
	return poller.Result{Done: true}, nil
}

// OnTimeout marks the deploy failed.
func (h *CNativeHandler) OnTimeout(ctx context.Context, task *poller.Task) error {
	var state CNativePollState
	if err := json.Unmarshal(task.State, &state); err != nil {
		return err
	}
	u := h.UseCase
	u.releaseLock(ctx, state.AppUUID)
	if err := h.recordDeploy(ctx, state.DeployUUID, model.AppModelDeployError, nil); err != nil {
		return err
	}
	if u.Notifier != nil {
		detail := fmt.Sprintf("%v: bkapp did not become ready", model.ErrTimeout)
		if err := u.Notifier.NotifyDeployResult(ctx, state.DeployUUID, model.DeployStatusFailed, detail); err != nil {
			logging.FromContext(ctx).Warn(ctx, "deploy callback failed", "deploy", state.DeployUUID, "err", err)
		}
	}
	return nil
}

func (h *CNativeHandler) recordDeploy(ctx context.Context, deployUUID, status string, conditions []metav1.Condition) error {
	d := &model.AppModelDeploy{
		UUID:      deployUUID,
		Status:    status,
		UpdatedAt: time.Now(),
	}
	for _, c := range conditions {
		d.Conditions = append(d.Conditions, model.DeployCondition{
			Type:    c.Type,
			Status:  string(c.Status),
			Reason:  c.Reason,
			Message: c.Message,
		})
	}
	return h.UseCase.Repos.AppModel.UpdateDeploy(ctx, d)
}

// deployStatusOf maps a BkApp phase to an AppModelDeploy status.
func deployStatusOf(phase string) (status string, terminal bool) {
	switch phase {
	case paasv1alpha1.PhaseReady:
		return model.AppModelDeployReady, true
	case paasv1alpha1.PhaseError:
		return model.AppModelDeployError, true
	case paasv1alpha1.PhasePending:
		return model.AppModelDeployPending, false
	default:
		return model.AppModelDeployProgressing, false
	}
}

// conditionDetail extracts the most telling failure message.
func conditionDetail(conditions []metav1.Condition) string {
	for _, c := range conditions {
		if c.Status == metav1.ConditionFalse && c.Message != "" {
			return c.Message
		}
	}
	return "bkapp entered Error phase"
}
