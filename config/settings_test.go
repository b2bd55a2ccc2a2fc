package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if s.DatabaseURL != "sqlite://workloads.db" {
		t.Errorf("database url = %q", s.DatabaseURL)
	}
	if s.Build.DefaultSlugbuilderImage == "" {
		t.Error("default slugbuilder image missing")
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yml")
	content := []byte(`
databaseURL: sqlite://custom.db
build:
  pipIndexURL: https://mirror.example.com/simple/
cluster:
  apiServerURLs: [https://10.0.0.1:6443]
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvClusterAPIServerURLs, "https://10.0.0.2:6443; https://10.0.0.3:6443;")
	t.Setenv(EnvClusterNodeSelector, `{"node-type": "app"}`)
	t.Setenv(EnvForceLegacySubPathVar, "true")

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.DatabaseURL != "sqlite://custom.db" {
		t.Errorf("yaml database url lost: %q", s.DatabaseURL)
	}
	if s.Build.PipIndexURL != "https://mirror.example.com/simple/" {
		t.Errorf("pip index = %q", s.Build.PipIndexURL)
	}
	if len(s.Cluster.APIServerURLs) != 2 || s.Cluster.APIServerURLs[0] != "https://10.0.0.2:6443" {
		t.Errorf("env must override yaml api servers: %v", s.Cluster.APIServerURLs)
	}
	if s.Cluster.NodeSelector["node-type"] != "app" {
		t.Errorf("node selector = %v", s.Cluster.NodeSelector)
	}
	if !s.ForceLegacySubPathVar {
		t.Error("legacy subpath flag not applied")
	}
}

func TestLoadRejectsBadJSONEnv(t *testing.T) {
	t.Setenv(EnvClusterNodeSelector, "not-json")
	if _, err := Load(""); err == nil {
		t.Error("invalid JSON env var must fail loading")
	}
}
