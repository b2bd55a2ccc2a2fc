package sandbox

import (
	"context"
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/logging"
	"github.com/bkpaas/workloads/internal/naming"
)

// Sandbox statuses derived from the pod phase.
const (
	StatusPending = "pending"
	StatusReady   = "ready"
	StatusError   = "error"
)

// CreateInput provisions one sandbox.
type CreateInput struct {
	AppName   string
	SandboxID string
	Image     string
	Command   []string
	Envs      map[string]string
}

// CreateOutput reports the provisioned sandbox.
type CreateOutput struct {
	SandboxID string
	URL       string
}

// Create provisions the sandbox workload. Creation is idempotent in the
// negative sense: an existing sandbox with the same ID fails fast with
// ErrSandboxAlreadyExists.
func (u *UseCase) Create(ctx context.Context, in *CreateInput) (*CreateOutput, error) {
	if in.SandboxID == "" || in.Image == "" {
		return nil, fmt.Errorf("%w: sandbox id and image are required", model.ErrValidationFailed)
	}
	app, client, cluster, err := u.resolve(ctx, in.AppName)
	if err != nil {
		return nil, err
	}
	host, err := sandboxHost(app, cluster)
	if err != nil {
		return nil, err
	}

	name := resourceName(in.SandboxID)
	namespace := app.Namespace()
	labels := sandboxLabels(app, in.SandboxID)

	err = client.Do(ctx, func(cs kubernetes.Interface) error {
		_, err := cs.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
		if err == nil {
			return fmt.Errorf("%w: %s", model.ErrSandboxAlreadyExists, in.SandboxID)
		}
		if !apierrors.IsNotFound(err) {
			return err
		}
		_, err = cs.CoreV1().Pods(namespace).Create(ctx, buildSandboxPod(name, namespace, labels, in), metav1.CreateOptions{})
		return err
	})
	if err != nil {
		return nil, err
	}

	svc := kube.BuildProcessService(name, namespace, labels, labels,
		[]kube.ServicePort{{Name: "http", Port: 80, TargetPort: devServerPort}})
	obj, err := kube.ToUnstructured(svc)
	if err != nil {
		return nil, fmt.Errorf("render sandbox service: %w", err)
	}
	if err := kube.NewEntityManager(client, kube.TypeService).Save(ctx, obj); err != nil {
		return nil, err
	}

	ing := kube.BuildIngress(name, namespace, labels, nil, []kube.IngressRule{{
		Host:        host,
		Paths:       []string{"/"},
		ServiceName: name,
		ServicePort: 80,
	}})
	obj, err = kube.ToUnstructured(ing)
	if err != nil {
		return nil, fmt.Errorf("render sandbox ingress: %w", err)
	}
	if err := kube.NewEntityManager(client, kube.TypeIngress).Save(ctx, obj); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info(ctx, "sandbox created",
		"app", app.Name, "sandbox", in.SandboxID, "host", host)
	return &CreateOutput{SandboxID: in.SandboxID, URL: "http://" + host + "/"}, nil
}

// Detail is the observed state of one sandbox.
type Detail struct {
	SandboxID string
	Status    string
	URL       string
}

// GetDetail reads the sandbox pod and derives its status.
func (u *UseCase) GetDetail(ctx context.Context, appName, sandboxID string) (*Detail, error) {
	app, client, cluster, err := u.resolve(ctx, appName)
	if err != nil {
		return nil, err
	}
	host, err := sandboxHost(app, cluster)
	if err != nil {
		return nil, err
	}

	var pod *corev1.Pod
	err = client.Do(ctx, func(cs kubernetes.Interface) error {
		p, err := cs.CoreV1().Pods(app.Namespace()).Get(ctx, resourceName(sandboxID), metav1.GetOptions{})
		if err != nil {
			return err
		}
		pod = p
		return nil
	})
	if apierrors.IsNotFound(err) {
		return nil, fmt.Errorf("%w: sandbox %s", model.ErrNotFound, sandboxID)
	}
	if err != nil {
		return nil, err
	}
	return &Detail{
		SandboxID: sandboxID,
		Status:    statusOf(pod),
		URL:       "http://" + host + "/",
	}, nil
}

// Delete tears the sandbox down. Cleanup is best effort: each of the three
// objects is deleted independently and missing ones are ignored.
func (u *UseCase) Delete(ctx context.Context, appName, sandboxID string) error {
	app, client, _, err := u.resolve(ctx, appName)
	if err != nil {
		return err
	}
	name := resourceName(sandboxID)
	namespace := app.Namespace()

	var firstErr error
	for _, typ := range []kube.ResourceType{kube.TypeIngress, kube.TypeService, kube.TypePod} {
		if err := kube.NewEntityManager(client, typ).Delete(ctx, namespace, name, nil); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return firstErr
	}
	logging.FromContext(ctx).Info(ctx, "sandbox deleted", "app", app.Name, "sandbox", sandboxID)
	return nil
}

func (u *UseCase) resolve(ctx context.Context, appName string) (*model.WlApp, *kube.Client, *model.Cluster, error) {
	app, err := u.Repos.App.GetByName(ctx, appName)
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := u.Repos.App.LatestConfig(ctx, app.UUID)
	if err != nil {
		return nil, nil, nil, err
	}
	cluster, err := u.Repos.Cluster.Get(ctx, cfg.ClusterName)
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := u.Registry.GetClient(ctx, cfg.ClusterName)
	if err != nil {
		return nil, nil, nil, err
	}
	return app, client, cluster, nil
}

func resourceName(sandboxID string) string {
	return "sandbox-" + naming.DNSSafe(sandboxID)
}

func sandboxLabels(app *model.WlApp, sandboxID string) map[string]string {
	return map[string]string{
		kube.LabelWlAppName: app.SchedulerSafeName(),
		kube.LabelAppCode:   naming.DNSSafe(app.AppCode),
		kube.LabelSandboxID: naming.DNSSafe(sandboxID),
	}
}

// sandboxHost picks the first usable root domain of the cluster.
func sandboxHost(app *model.WlApp, cluster *model.Cluster) (string, error) {
	domains := model.SortedRootDomains(cluster.Ingress.AppRootDomains)
	if len(domains) == 0 {
		return "", fmt.Errorf("%w: cluster %s has no app root domains", model.ErrValidationFailed, cluster.Name)
	}
	return naming.SandboxHost(app.AppCode, app.ModuleName, domains[0].Name), nil
}

func buildSandboxPod(name, namespace string, labels map[string]string, in *CreateInput) *corev1.Pod {
	env := make([]corev1.EnvVar, 0, len(in.Envs))
	for k, v := range in.Envs {
		env = append(env, corev1.EnvVar{Name: k, Value: v})
	}
	sort.Slice(env, func(i, j int) bool { return env[i].Name < env[j].Name })

	return &corev1.Pod{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Pod"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    labels,
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyAlways,
			Containers: []corev1.Container{{
				Name:    "sandbox",
				Image:   in.Image,
				Command: in.Command,
				Env:     env,
				Ports:   []corev1.ContainerPort{{ContainerPort: devServerPort}},
			}},
		},
	}
}

// statusOf maps a pod phase to a sandbox status. A running pod counts as
// ready only once its containers report ready.
func statusOf(pod *corev1.Pod) string {
	switch pod.Status.Phase {
	case corev1.PodPending:
		return StatusPending
	case corev1.PodRunning:
		for _, c := range pod.Status.Conditions {
			if c.Type == corev1.PodReady && c.Status == corev1.ConditionTrue {
				return StatusReady
			}
		}
		return StatusPending
	default:
		return StatusError
	}
}
