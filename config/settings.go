// Package config loads platform settings from an optional YAML file with
// environment variable overrides. Environment names are part of the
// platform contract and stay stable across releases.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bkpaas/workloads/domain/model"
)

// Environment variable names.
const (
	EnvClusterNodeSelector  = "PAAS_WL_CLUSTER_NODE_SELECTOR"
	EnvClusterTolerations   = "PAAS_WL_CLUSTER_TOLERATIONS"
	EnvClusterAPIServerURLs = "PAAS_WL_CLUSTER_API_SERVER_URLS"

	EnvBuildExtraEnvVars       = "BUILD_EXTRA_ENV_VARS"
	EnvPipIndexURL             = "PYTHON_BUILDPACK_PIP_INDEX_URL"
	EnvRegistryHost            = "APP_DOCKER_REGISTRY_HOST"
	EnvRegistryUsername        = "APP_DOCKER_REGISTRY_USERNAME"
	EnvRegistryPassword        = "APP_DOCKER_REGISTRY_PASSWORD"
	EnvDefaultSlugbuilderImage = "DEFAULT_SLUGBUILDER_IMAGE"
	EnvSmartBuilderImage       = "SMART_BUILDER_IMAGE"

	EnvForceLegacySubPathVar = "FORCE_USING_LEGACY_SUB_PATH_VAR_VALUE"

	EnvDatabaseURL = "PAAS_WL_DATABASE_URL"
	EnvKVURL       = "PAAS_WL_KV_URL"
	EnvCallbackURL = "PAAS_WL_PLATFORM_CALLBACK_URL"
)

// ClusterBootstrap seeds the first cluster registration.
type ClusterBootstrap struct {
	NodeSelector  map[string]string  `yaml:"nodeSelector,omitempty"`
	Tolerations   []model.Toleration `yaml:"tolerations,omitempty"`
	APIServerURLs []string           `yaml:"apiServerURLs,omitempty"`
}

// BuildSettings is the build-plumbing configuration.
type BuildSettings struct {
	ExtraEnvVars            map[string]string `yaml:"extraEnvVars,omitempty"`
	PipIndexURL             string            `yaml:"pipIndexURL,omitempty"`
	RegistryHost            string            `yaml:"registryHost,omitempty"`
	RegistryUsername        string            `yaml:"registryUsername,omitempty"`
	RegistryPassword        string            `yaml:"registryPassword,omitempty"`
	DefaultSlugbuilderImage string            `yaml:"defaultSlugbuilderImage,omitempty"`
	SmartBuilderImage       string            `yaml:"smartBuilderImage,omitempty"`
	// Timeout bounds one build run end to end.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Settings is the full platform configuration.
type Settings struct {
	DatabaseURL string `yaml:"databaseURL,omitempty"`
	KVURL       string `yaml:"kvURL,omitempty"`
	// CallbackURL receives terminal release/build statuses; empty
	// disables callbacks.
	CallbackURL string `yaml:"callbackURL,omitempty"`

	Cluster ClusterBootstrap `yaml:"cluster,omitempty"`
	Build   BuildSettings    `yaml:"build,omitempty"`

	// ForceLegacySubPathVar selects the legacy value style for the
	// BKPAAS_SUB_PATH variable injected into app processes.
	ForceLegacySubPathVar bool `yaml:"forceLegacySubPathVar,omitempty"`

	// ReleaseTimeout bounds one release from apply to ready.
	ReleaseTimeout time.Duration `yaml:"releaseTimeout,omitempty"`
}

// Defaults returns settings with platform defaults applied.
func Defaults() *Settings {
	return &Settings{
		DatabaseURL: "sqlite://workloads.db",
		Build: BuildSettings{
			DefaultSlugbuilderImage: "bkpaas/slugbuilder:latest",
			Timeout:                 15 * time.Minute,
		},
		ReleaseTimeout: 15 * time.Minute,
	}
}

// Load reads settings from path (skipped when empty or missing) and then
// applies environment variable overrides.
func Load(path string) (*Settings, error) {
	s := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("reading settings file: %w", err)
		default:
			if err := yaml.Unmarshal(data, s); err != nil {
				return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
			}
		}
	}
	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyEnv() error {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		s.DatabaseURL = v
	}
	if v := os.Getenv(EnvKVURL); v != "" {
		s.KVURL = v
	}
	if v := os.Getenv(EnvCallbackURL); v != "" {
		s.CallbackURL = v
	}
	if v := os.Getenv(EnvClusterNodeSelector); v != "" {
		if err := json.Unmarshal([]byte(v), &s.Cluster.NodeSelector); err != nil {
			return fmt.Errorf("%s is not a JSON object: %w", EnvClusterNodeSelector, err)
		}
	}
	if v := os.Getenv(EnvClusterTolerations); v != "" {
		if err := json.Unmarshal([]byte(v), &s.Cluster.Tolerations); err != nil {
			return fmt.Errorf("%s is not a JSON array: %w", EnvClusterTolerations, err)
		}
	}
	if v := os.Getenv(EnvClusterAPIServerURLs); v != "" {
		s.Cluster.APIServerURLs = splitList(v)
	}
	if v := os.Getenv(EnvBuildExtraEnvVars); v != "" {
		if err := json.Unmarshal([]byte(v), &s.Build.ExtraEnvVars); err != nil {
			return fmt.Errorf("%s is not a JSON object: %w", EnvBuildExtraEnvVars, err)
		}
	}
	if v := os.Getenv(EnvPipIndexURL); v != "" {
		s.Build.PipIndexURL = v
	}
	if v := os.Getenv(EnvRegistryHost); v != "" {
		s.Build.RegistryHost = v
	}
	if v := os.Getenv(EnvRegistryUsername); v != "" {
		s.Build.RegistryUsername = v
	}
	if v := os.Getenv(EnvRegistryPassword); v != "" {
		s.Build.RegistryPassword = v
	}
	if v := os.Getenv(EnvDefaultSlugbuilderImage); v != "" {
		s.Build.DefaultSlugbuilderImage = v
	}
	if v := os.Getenv(EnvSmartBuilderImage); v != "" {
		s.Build.SmartBuilderImage = v
	}
	if v := os.Getenv(EnvForceLegacySubPathVar); v != "" {
		s.ForceLegacySubPathVar = v == "true" || v == "1"
	}
	return nil
}

// splitList splits a semicolon-separated list, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
