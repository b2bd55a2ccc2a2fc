package process

import (
	"context"
	"sort"
	"strconv"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain/model"
)

// ProcessesInfo is one consistent read of an app's live processes plus the
// resource versions needed to resume a watch from that point.
type ProcessesInfo struct {
	Processes []model.Process
	RVProc    string
	RVInst    string
}

// List reads the app's Deployments and Pods and pairs each instance with
// its process by the process-type label.
func (u *UseCase) List(ctx context.Context, appName string) (*ProcessesInfo, error) {
	app, err := u.Repos.App.GetByName(ctx, appName)
	if err != nil {
		return nil, err
	}
	client, err := u.Registry.ClientForApp(ctx, u.Repos.App, app)
	if err != nil {
		return nil, err
	}

	deployList, err := kube.NewEntityManager(client, kube.TypeDeployment).ListByApp(ctx, app, nil)
	if err != nil {
		return nil, err
	}
	podList, err := kube.NewEntityManager(client, kube.TypePod).ListByApp(ctx, app, nil)
	if err != nil {
		return nil, err
	}

	byType := map[string]*model.Process{}
	var order []string
	for i := range deployList.Items {
		proc, err := deploymentToProcess(&deployList.Items[i])
		if err != nil {
			return nil, err
		}
		byType[proc.Type] = proc
		order = append(order, proc.Type)
	}
	for i := range podList.Items {
		inst, err := podToInstance(&podList.Items[i])
		if err != nil {
			return nil, err
		}
		proc, ok := byType[inst.ProcessType]
		if !ok {
			continue
		}
		proc.Instances = append(proc.Instances, *inst)
	}

	sort.Strings(order)
	info := &ProcessesInfo{
		RVProc: deployList.GetResourceVersion(),
		RVInst: podList.GetResourceVersion(),
	}
	for _, t := range order {
		proc := byType[t]
		sort.Slice(proc.Instances, func(i, j int) bool {
			return proc.Instances[i].Name < proc.Instances[j].Name
		})
		info.Processes = append(info.Processes, *proc)
	}
	return info, nil
}

// processTypeOf extracts the process type from resource labels, accepting
// both mapper generations.
func processTypeOf(labels map[string]string) string {
	if t := labels["process_name"]; t != "" {
		return t
	}
	return labels["process_id"]
}

func deploymentToProcess(obj *unstructured.Unstructured) (*model.Process, error) {
	var d appsv1.Deployment
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, &d); err != nil {
		return nil, err
	}
	proc := &model.Process{
		Type:            processTypeOf(d.Labels),
		Replicas:        int(ptrInt32(d.Spec.Replicas)),
		SuccessReplicas: int(d.Status.ReadyReplicas),
		ResourceVersion: d.ResourceVersion,
	}
	proc.FailedReplicas = int(d.Status.Replicas - d.Status.ReadyReplicas)
	if proc.FailedReplicas < 0 {
		proc.FailedReplicas = 0
	}
	if v, err := strconv.Atoi(d.Spec.Template.Labels["release_version"]); err == nil {
		proc.Version = v
	}
	if containers := d.Spec.Template.Spec.Containers; len(containers) > 0 {
		proc.Command = strings.Join(append(containers[0].Command, containers[0].Args...), " ")
	}
	return proc, nil
}

func podToInstance(obj *unstructured.Unstructured) (*model.Instance, error) {
	var p corev1.Pod
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, &p); err != nil {
		return nil, err
	}
	inst := &model.Instance{
		Name:        p.Name,
		ProcessType: processTypeOf(p.Labels),
		State:       string(p.Status.Phase),
	}
	if v, err := strconv.Atoi(p.Labels["release_version"]); err == nil {
		inst.Version = v
	}
	for _, cond := range p.Status.Conditions {
		if cond.Type == corev1.PodReady {
			inst.Ready = cond.Status == corev1.ConditionTrue
		}
	}
	for _, cs := range p.Status.ContainerStatuses {
		inst.RestartCount += cs.RestartCount
		// A waiting reason (CrashLoopBackOff, ImagePullBackOff) is more
		// telling than the pod phase.
		if cs.State.Waiting != nil && cs.State.Waiting.Reason != "" {
			inst.State = cs.State.Waiting.Reason
		}
	}
	return inst, nil
}

func ptrInt32(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}
