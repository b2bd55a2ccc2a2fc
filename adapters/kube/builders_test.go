package kube

import (
	"encoding/json"
	"reflect"
	"testing"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/bkpaas/workloads/domain/model"
)

func TestBuildIngressGroupsTLSBySecret(t *testing.T) {
	rules := []IngressRule{
		{Host: "stag-dot-demo.example.com", Paths: []string{"/"}, ServiceName: "web", ServicePort: 80, TLSSecretName: "eng-tls-shared"},
		{Host: "stag-dot-demo.example.org", Paths: []string{"/"}, ServiceName: "web", ServicePort: 80, TLSSecretName: "eng-tls-other"},
		{Host: "custom.demo.com", Paths: []string{"/"}, ServiceName: "web", ServicePort: 80, TLSSecretName: "eng-tls-shared"},
		{Host: "plain.demo.com", Paths: []string{"/"}, ServiceName: "web", ServicePort: 80},
	}
	ing := BuildIngress("demo", "bkapp-demo-stag", nil, nil, rules)

	if len(ing.Spec.Rules) != 4 {
		t.Fatalf("got %d rules, want 4", len(ing.Spec.Rules))
	}
	if len(ing.Spec.TLS) != 2 {
		t.Fatalf("got %d TLS entries, want 2", len(ing.Spec.TLS))
	}
	if ing.Spec.TLS[0].SecretName != "eng-tls-shared" {
		t.Errorf("TLS[0].SecretName = %q", ing.Spec.TLS[0].SecretName)
	}
	wantHosts := []string{"stag-dot-demo.example.com", "custom.demo.com"}
	if !reflect.DeepEqual(ing.Spec.TLS[0].Hosts, wantHosts) {
		t.Errorf("TLS[0].Hosts = %v, want %v", ing.Spec.TLS[0].Hosts, wantHosts)
	}
	if ing.Spec.TLS[1].SecretName != "eng-tls-other" {
		t.Errorf("TLS[1].SecretName = %q", ing.Spec.TLS[1].SecretName)
	}
}

func TestBuildImagePullSecret(t *testing.T) {
	app := &model.WlApp{
		Name:        "bkapp-demo_app-stag",
		AppCode:     "demo_app",
		ModuleName:  "default",
		Environment: model.EnvStag,
	}
	secret, err := BuildImagePullSecret(app, []RegistryCredential{
		{Registry: "registry.example.com", Username: "admin", Password: "pw"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if secret.Name != "bkapp-demo0us0app-stag--dockerconfigjson" {
		t.Errorf("secret name = %q", secret.Name)
	}
	if secret.Type != corev1.SecretTypeDockerConfigJson {
		t.Errorf("secret type = %q", secret.Type)
	}
	var payload struct {
		Auths map[string]struct {
			Username string `json:"username"`
			Auth     string `json:"auth"`
		} `json:"auths"`
	}
	if err := json.Unmarshal(secret.Data[corev1.DockerConfigJsonKey], &payload); err != nil {
		t.Fatal(err)
	}
	entry, ok := payload.Auths["registry.example.com"]
	if !ok {
		t.Fatalf("registry entry missing: %v", payload.Auths)
	}
	if entry.Username != "admin" {
		t.Errorf("username = %q", entry.Username)
	}
	if entry.Auth != "YWRtaW46cHc=" { // base64("admin:pw")
		t.Errorf("auth = %q", entry.Auth)
	}
}

func TestPreserveServiceIdentity(t *testing.T) {
	desired := BuildProcessService("demo--web", "bkapp-demo-stag", nil, map[string]string{"process_name": "web"}, nil)
	current := &unstructured.Unstructured{Object: map[string]any{
		"metadata": map[string]any{"resourceVersion": "4242"},
		"spec": map[string]any{
			"clusterIP":  "10.96.0.7",
			"clusterIPs": []any{"10.96.0.7"},
		},
	}}
	PreserveServiceIdentity(desired, current)
	if desired.Spec.ClusterIP != "10.96.0.7" {
		t.Errorf("clusterIP = %q", desired.Spec.ClusterIP)
	}
	if desired.ResourceVersion != "4242" {
		t.Errorf("resourceVersion = %q", desired.ResourceVersion)
	}
	if len(desired.Spec.Ports) != 1 || desired.Spec.Ports[0].Port != 80 {
		t.Errorf("default port not applied: %v", desired.Spec.Ports)
	}
}

func TestBuildProcessDeployment(t *testing.T) {
	seconds := int64(30)
	dep := BuildProcessDeployment(ProcessDeployment{
		Name:      "bkapp-demo-stag--web",
		Namespace: "bkapp-demo-stag",
		Labels:    map[string]string{LabelWlAppName: "bkapp-demo-stag"},
		Selector:  map[string]string{"module_name": "default", "process_name": "web"},
		DeployID:  "d-123",
		Version:   7,
		Image:     "registry.example.com/demo:latest",
		Command:   []string{"gunicorn"},
		Args:      []string{"app:wsgi", "-b", ":5000"},
		Replicas:  2,
		Resources: &model.ResourceRequirement{CPULimit: "500m", MemoryLimit: "256Mi"},
		Probes: &model.ProbeSet{
			Readiness: &model.Probe{
				ProbeHandler: model.ProbeHandler{HTTPGet: &model.HTTPGetAction{Path: "/healthz", Port: 5000}},
			},
		},
		Tolerations: []model.Toleration{{
			Key: "dedicated", Operator: "Equal", Value: "paas",
			Effect: "NoSchedule", TolerationSeconds: &seconds,
		}},
	})

	if *dep.Spec.Replicas != 2 {
		t.Errorf("replicas = %d", *dep.Spec.Replicas)
	}
	if dep.Annotations[AnnotationDeployID] != "d-123" {
		t.Errorf("deploy annotation = %q", dep.Annotations[AnnotationDeployID])
	}
	if got := dep.Spec.Template.Labels["release_version"]; got != "7" {
		t.Errorf("release_version = %q", got)
	}
	c := dep.Spec.Template.Spec.Containers[0]
	if c.Name != "web" {
		t.Errorf("container name = %q", c.Name)
	}
	if c.ReadinessProbe == nil || c.ReadinessProbe.HTTPGet.Path != "/healthz" {
		t.Errorf("readiness probe = %+v", c.ReadinessProbe)
	}
	if c.LivenessProbe != nil {
		t.Errorf("unexpected liveness probe: %+v", c.LivenessProbe)
	}
	if q := c.Resources.Limits[corev1.ResourceCPU]; q.String() != "500m" {
		t.Errorf("cpu limit = %s", q.String())
	}
	tol := dep.Spec.Template.Spec.Tolerations
	if len(tol) != 1 || tol[0].Key != "dedicated" || *tol[0].TolerationSeconds != 30 {
		t.Errorf("tolerations = %+v", tol)
	}
}

func TestBuildServiceMonitor(t *testing.T) {
	app := &model.WlApp{
		Name:        "bkapp-demo-stag",
		AppCode:     "demo",
		ModuleName:  "default",
		Environment: model.EnvStag,
	}
	sm := BuildServiceMonitor(app, "")
	if sm.Namespace != "bkapp-demo-stag" {
		t.Errorf("namespace = %q", sm.Namespace)
	}
	if len(sm.Spec.Endpoints) != 1 {
		t.Fatalf("endpoints = %d", len(sm.Spec.Endpoints))
	}
	ep := sm.Spec.Endpoints[0]
	if ep.Port != MetricsPortName || ep.Interval != "60s" {
		t.Errorf("endpoint = %+v", ep)
	}
	replacements := map[string]string{}
	for _, r := range ep.MetricRelabelings {
		replacements[r.TargetLabel] = r.Replacement
	}
	if replacements[MonitorLabelAppCode] != "demo" || replacements[MonitorLabelModuleName] != "default" {
		t.Errorf("relabelings = %v", replacements)
	}
	if sm.Spec.Selector.MatchLabels[MonitorLabelEnvironment] != model.EnvStag {
		t.Errorf("selector = %v", sm.Spec.Selector.MatchLabels)
	}
}
