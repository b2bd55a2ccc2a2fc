package model

import (
	"time"

	"github.com/bkpaas/workloads/internal/naming"
)

// Environments. Closed set.
const (
	EnvStag = "stag"
	EnvProd = "prod"
)

// Environments lists all environments in deploy order.
var Environments = []string{EnvStag, EnvProd}

// AppType distinguishes the two application flavors.
type AppType string

const (
	// AppTypeDefault is a buildpack-built app rendered as bespoke
	// Deployment/Service resources by the resource mapper.
	AppTypeDefault AppType = "default"
	// AppTypeCloudNative is rendered as a single BkApp custom resource
	// expanded by the in-cluster operator.
	AppTypeCloudNative AppType = "cloud_native"
)

// WlApp is the workload-side projection of one (Application, Module,
// Environment) triple.
type WlApp struct {
	UUID        string
	Name        string
	Region      string
	TenantID    string
	AppCode     string
	ModuleName  string
	Environment string
	Type        AppType
	// Structure maps process name to a replica hint recorded at deploy time.
	Structure map[string]int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Namespace returns the Kubernetes namespace the app's resources live in.
func (a *WlApp) Namespace() string { return naming.Namespace(a.Name) }

// SchedulerSafeName returns the DNS-1123 safe form of the app name for use
// in resource names and label values.
func (a *WlApp) SchedulerSafeName() string { return naming.SafeName(a.Name) }

// Config is one immutable row in the app's config sequence; only the latest
// row is active, earlier rows are kept for audit.
type Config struct {
	UUID    string
	AppUUID string
	// ClusterName binds the app environment to a cluster.
	ClusterName string

	Image           string
	RuntimeEndpoint []string
	RuntimeCommand  []string

	ResourceRequirements map[string]ResourceRequirement
	Tolerations          []Toleration

	// Metadata carries mapper_version, paas_app_code, module_name and
	// environment for resource rendering.
	Metadata map[string]string

	MountLogToHost bool
	IsLatest       bool
	CreatedAt      time.Time
}

// Config metadata keys.
const (
	ConfigKeyMapperVersion = "mapper_version"
	ConfigKeyAppCode       = "paas_app_code"
	ConfigKeyModuleName    = "module_name"
	ConfigKeyEnvironment   = "environment"
)

// ResourceRequirement is an inline CPU/memory requirement pair.
type ResourceRequirement struct {
	CPULimit      string `json:"cpu_limit,omitempty"`
	MemoryLimit   string `json:"memory_limit,omitempty"`
	CPURequest    string `json:"cpu_request,omitempty"`
	MemoryRequest string `json:"memory_request,omitempty"`
}

// MapperVersion returns the resource mapper generation recorded on the
// config, or the platform default when absent.
func (c *Config) MapperVersion(defaultVersion string) string {
	if v := c.Metadata[ConfigKeyMapperVersion]; v != "" {
		return v
	}
	return defaultVersion
}
