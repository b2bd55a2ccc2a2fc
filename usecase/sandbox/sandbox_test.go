package sandbox

import (
	"context"
	"errors"
	"testing"

	corev1 "k8s.io/api/core/v1"

	"github.com/bkpaas/workloads/domain/model"
)

func TestCreateValidatesInput(t *testing.T) {
	u := New(&Repos{}, nil)
	_, err := u.Create(context.Background(), &CreateInput{AppName: "bkapp-demo-stag"})
	if !errors.Is(err, model.ErrValidationFailed) {
		t.Errorf("missing id/image = %v", err)
	}
}

func TestSandboxHost(t *testing.T) {
	app := &model.WlApp{Name: "bkapp-demo-stag", AppCode: "demo", ModuleName: "backend"}
	cluster := &model.Cluster{
		Name: "main",
		Ingress: model.IngressConfig{AppRootDomains: []model.AppDomainConfig{
			{Name: "reserved.example.com", Reserved: true},
			{Name: "apps.example.com"},
		}},
	}
	host, err := sandboxHost(app, cluster)
	if err != nil {
		t.Fatal(err)
	}
	// non-reserved domains win
	if host != "dev-dot-backend-dot-demo.apps.example.com" {
		t.Errorf("host = %s", host)
	}

	cluster.Ingress.AppRootDomains = nil
	if _, err := sandboxHost(app, cluster); !errors.Is(err, model.ErrValidationFailed) {
		t.Errorf("domainless cluster = %v", err)
	}
}

func TestResourceNameAndLabels(t *testing.T) {
	if got := resourceName("Abc_123"); got != "sandbox-abc-123" {
		t.Errorf("resource name = %s", got)
	}
	app := &model.WlApp{Name: "bkapp-demo-stag", AppCode: "demo"}
	labels := sandboxLabels(app, "abc123")
	if labels["bkapp.paas.bk.tencent.com/sandbox-id"] != "abc123" {
		t.Errorf("labels = %v", labels)
	}
	if labels["bkapp.paas.bk.tencent.com/wl-app-name"] != "bkapp-demo-stag" {
		t.Errorf("labels = %v", labels)
	}
}

func TestStatusOf(t *testing.T) {
	pod := &corev1.Pod{}
	pod.Status.Phase = corev1.PodPending
	if s := statusOf(pod); s != StatusPending {
		t.Errorf("pending pod = %s", s)
	}

	pod.Status.Phase = corev1.PodRunning
	if s := statusOf(pod); s != StatusPending {
		t.Errorf("running pod without ready condition = %s", s)
	}
	pod.Status.Conditions = []corev1.PodCondition{{Type: corev1.PodReady, Status: corev1.ConditionTrue}}
	if s := statusOf(pod); s != StatusReady {
		t.Errorf("ready pod = %s", s)
	}

	pod.Status.Phase = corev1.PodFailed
	if s := statusOf(pod); s != StatusError {
		t.Errorf("failed pod = %s", s)
	}
}

func TestBuildSandboxPod(t *testing.T) {
	in := &CreateInput{
		SandboxID: "abc",
		Image:     "bkpaas/devcontainer:latest",
		Command:   []string{"bash", "-c", "start-devserver"},
		Envs:      map[string]string{"B": "2", "A": "1"},
	}
	pod := buildSandboxPod("sandbox-abc", "bkapp-demo-stag", map[string]string{"x": "y"}, in)
	if pod.Spec.RestartPolicy != corev1.RestartPolicyAlways {
		t.Errorf("restart policy = %s", pod.Spec.RestartPolicy)
	}
	c := pod.Spec.Containers[0]
	if c.Image != in.Image || len(c.Command) != 3 {
		t.Errorf("container = %+v", c)
	}
	if len(c.Env) != 2 || c.Env[0].Name != "A" || c.Env[1].Name != "B" {
		t.Errorf("env not sorted: %+v", c.Env)
	}
	if c.Ports[0].ContainerPort != devServerPort {
		t.Errorf("port = %d", c.Ports[0].ContainerPort)
	}
}
