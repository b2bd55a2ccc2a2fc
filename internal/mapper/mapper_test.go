package mapper

import (
	"errors"
	"testing"

	"github.com/bkpaas/workloads/domain/model"
)

func testApp() *model.WlApp {
	return &model.WlApp{
		Name:        "bkapp-my_app-stag",
		Region:      "default",
		ModuleName:  "backend",
		Environment: model.EnvStag,
	}
}

func TestCommandName(t *testing.T) {
	cases := []struct {
		command string
		want    string
	}{
		{"gunicorn wsgi -w 4", "gunicorn"},
		{"python manage.py celery", "celery"},
		{"/bin/x/foo -g", "foo"},
		{"python3 worker.py", "worker.py"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CommandName(tc.command); got != tc.want {
			t.Fatalf("CommandName(%q) = %q, want %q", tc.command, got, tc.want)
		}
	}
}

func TestV1Names(t *testing.T) {
	m, err := Get("v1")
	if err != nil {
		t.Fatalf("get v1: %v", err)
	}
	app := testApp()
	name := m.DeploymentName(app, "web", "gunicorn wsgi -w 4")
	want := "default-bkapp-my0us0app-stag-web-gunicorn-deployment"
	if name != want {
		t.Fatalf("deployment name = %q, want %q", name, want)
	}
	// command edits rename v1 deployments
	renamed := m.DeploymentName(app, "web", "uwsgi wsgi")
	if renamed == name {
		t.Fatalf("v1 name must depend on the command")
	}
	sel := m.PodSelector(app, "web", "gunicorn wsgi -w 4")
	if sel["pod_selector"] == "" {
		t.Fatalf("v1 selector must use pod_selector, got %v", sel)
	}
}

func TestV2Names(t *testing.T) {
	m, err := Get("v2")
	if err != nil {
		t.Fatalf("get v2: %v", err)
	}
	app := testApp()
	name := m.DeploymentName(app, "web", "gunicorn wsgi -w 4")
	if name != "bkapp-my0us0app-stag--web" {
		t.Fatalf("deployment name = %q", name)
	}
	// command edits keep v2 names stable
	if m.DeploymentName(app, "web", "uwsgi wsgi") != name {
		t.Fatalf("v2 name must not depend on the command")
	}
	sel := m.PodSelector(app, "web", "")
	if sel["module_name"] != "backend" || sel["process_name"] != "web" {
		t.Fatalf("unexpected v2 selector: %v", sel)
	}
}

func TestGetDefaultsAndRejects(t *testing.T) {
	m, err := Get("")
	if err != nil || m.Version() != DefaultVersion {
		t.Fatalf("empty version must yield the default mapper, got %v %v", m, err)
	}
	if _, err := Get("v3"); !errors.Is(err, model.ErrValidationFailed) {
		t.Fatalf("unknown version must fail validation, got %v", err)
	}
}
