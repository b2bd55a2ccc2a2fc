package kube

import (
	"strconv"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/bkpaas/workloads/domain/model"
)

// ProcessDeployment collects everything needed to render the Deployment of
// one process of a default app.
type ProcessDeployment struct {
	Name      string
	Namespace string
	Labels    map[string]string
	Selector  map[string]string

	DeployID string
	Version  int

	Image    string
	Command  []string
	Args     []string
	Replicas int32
	Env      []corev1.EnvVar

	Resources    *model.ResourceRequirement
	Probes       *model.ProbeSet
	NodeSelector map[string]string
	Tolerations  []model.Toleration

	ImagePullSecretName string
}

// BuildProcessDeployment renders the Deployment body.
func BuildProcessDeployment(in ProcessDeployment) *appsv1.Deployment {
	podLabels := map[string]string{}
	for k, v := range in.Labels {
		podLabels[k] = v
	}
	podLabels["release_version"] = strconv.Itoa(in.Version)

	container := corev1.Container{
		Name:    in.selectorProcess(),
		Image:   in.Image,
		Command: in.Command,
		Args:    in.Args,
		Env:     in.Env,
	}
	if in.Resources != nil {
		container.Resources = buildResourceRequirements(in.Resources)
	}
	if in.Probes != nil {
		container.LivenessProbe = buildProbe(in.Probes.Liveness)
		container.ReadinessProbe = buildProbe(in.Probes.Readiness)
		container.StartupProbe = buildProbe(in.Probes.Startup)
	}

	podSpec := corev1.PodSpec{
		Containers:   []corev1.Container{container},
		NodeSelector: in.NodeSelector,
	}
	for _, t := range in.Tolerations {
		podSpec.Tolerations = append(podSpec.Tolerations, corev1.Toleration{
			Key:               t.Key,
			Operator:          corev1.TolerationOperator(t.Operator),
			Value:             t.Value,
			Effect:            corev1.TaintEffect(t.Effect),
			TolerationSeconds: t.TolerationSeconds,
		})
	}
	if in.ImagePullSecretName != "" {
		podSpec.ImagePullSecrets = []corev1.LocalObjectReference{{Name: in.ImagePullSecretName}}
	}

	replicas := in.Replicas
	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name:        in.Name,
			Namespace:   in.Namespace,
			Labels:      in.Labels,
			Annotations: map[string]string{AnnotationDeployID: in.DeployID},
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: in.Selector},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: podLabels},
				Spec:       podSpec,
			},
		},
	}
}

// selectorProcess returns the container name: the process name from the
// selector when present, the resource name otherwise.
func (in ProcessDeployment) selectorProcess() string {
	if p := in.Selector["process_name"]; p != "" {
		return p
	}
	return in.Name
}

func buildResourceRequirements(r *model.ResourceRequirement) corev1.ResourceRequirements {
	out := corev1.ResourceRequirements{
		Limits:   corev1.ResourceList{},
		Requests: corev1.ResourceList{},
	}
	setQuantity := func(list corev1.ResourceList, name corev1.ResourceName, value string) {
		if value == "" {
			return
		}
		if q, err := resource.ParseQuantity(value); err == nil {
			list[name] = q
		}
	}
	setQuantity(out.Limits, corev1.ResourceCPU, r.CPULimit)
	setQuantity(out.Limits, corev1.ResourceMemory, r.MemoryLimit)
	setQuantity(out.Requests, corev1.ResourceCPU, r.CPURequest)
	setQuantity(out.Requests, corev1.ResourceMemory, r.MemoryRequest)
	return out
}

func buildProbe(p *model.Probe) *corev1.Probe {
	if p == nil {
		return nil
	}
	probe := &corev1.Probe{
		InitialDelaySeconds: p.InitialDelaySeconds,
		TimeoutSeconds:      p.TimeoutSeconds,
		PeriodSeconds:       p.PeriodSeconds,
		SuccessThreshold:    p.SuccessThreshold,
		FailureThreshold:    p.FailureThreshold,
	}
	switch {
	case p.HTTPGet != nil:
		probe.HTTPGet = &corev1.HTTPGetAction{
			Path:   p.HTTPGet.Path,
			Port:   intstr.FromInt(p.HTTPGet.Port),
			Host:   p.HTTPGet.Host,
			Scheme: corev1.URIScheme(p.HTTPGet.Scheme),
		}
	case p.TCPSocket != nil:
		probe.TCPSocket = &corev1.TCPSocketAction{
			Port: intstr.FromInt(p.TCPSocket.Port),
			Host: p.TCPSocket.Host,
		}
	case p.Exec != nil:
		probe.Exec = &corev1.ExecAction{Command: p.Exec.Command}
	}
	return probe
}
