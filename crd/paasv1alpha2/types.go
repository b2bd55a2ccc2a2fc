package paasv1alpha2

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/bkpaas/workloads/crd/paasv1alpha1"
)

const (
	// Group is the API group of the PaaS CRDs.
	Group = "paas.bk.tencent.com"
	// Version is this package's API version.
	Version = "v1alpha2"
	// KindBkApp is the cloud-native application kind.
	KindBkApp = "BkApp"
	// KindDomainGroupMapping publishes app addresses to the operator.
	KindDomainGroupMapping = "DomainGroupMapping"
)

// APIVersion is the fully qualified apiVersion string.
const APIVersion = Group + "/" + Version

// Resource quota plans. v1alpha2 replaces per-process cpu/memory strings
// with one plan value per process.
const (
	ResQuotaPlanDefault = "default"
	ResQuotaPlan1C512M  = "1C512M"
	ResQuotaPlan2C1G    = "2C1G"
	ResQuotaPlan2C2G    = "2C2G"
	ResQuotaPlan4C1G    = "4C1G"
	ResQuotaPlan4C2G    = "4C2G"
)

// Sub-structures unchanged between v1alpha1 and v1alpha2.
type (
	AppConfig          = paasv1alpha1.AppConfig
	AppEnvVar          = paasv1alpha1.AppEnvVar
	AppHooks           = paasv1alpha1.AppHooks
	Hook               = paasv1alpha1.Hook
	Addon              = paasv1alpha1.Addon
	Mount              = paasv1alpha1.Mount
	MountSource        = paasv1alpha1.MountSource
	ConfigMapSource    = paasv1alpha1.ConfigMapSource
	EnvOverlay         = paasv1alpha1.EnvOverlay
	EnvVarOverlay      = paasv1alpha1.EnvVarOverlay
	ReplicasOverlay    = paasv1alpha1.ReplicasOverlay
	ResQuotaOverlay    = paasv1alpha1.ResQuotaOverlay
	AutoscalingOverlay = paasv1alpha1.AutoscalingOverlay
	AutoscalingSpec    = paasv1alpha1.AutoscalingSpec
	ProbeSet           = paasv1alpha1.ProbeSet
	DomainResolution   = paasv1alpha1.DomainResolution
	SvcDiscovery       = paasv1alpha1.SvcDiscovery
	Observability      = paasv1alpha1.Observability
	BkAppStatus        = paasv1alpha1.BkAppStatus
)

// BkApp is the cloud-native application resource at v1alpha2: build
// configuration is global and process quotas are plan values.
type BkApp struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   BkAppSpec   `json:"spec,omitempty"`
	Status BkAppStatus `json:"status,omitempty"`
}

// BkAppSpec defines the desired state of a cloud-native app.
type BkAppSpec struct {
	Build            *BuildConfig      `json:"build,omitempty"`
	Processes        []Process         `json:"processes,omitempty"`
	Configuration    AppConfig         `json:"configuration,omitempty"`
	EnvOverlay       *EnvOverlay       `json:"envOverlay,omitempty"`
	Hooks            *AppHooks         `json:"hooks,omitempty"`
	Addons           []Addon           `json:"addons,omitempty"`
	Mounts           []Mount           `json:"mounts,omitempty"`
	DomainResolution *DomainResolution `json:"domainResolution,omitempty"`
	SvcDiscovery     *SvcDiscovery     `json:"svcDiscovery,omitempty"`
	Observability    *Observability    `json:"observability,omitempty"`
}

// BuildConfig is the app-wide build configuration.
type BuildConfig struct {
	Image                string `json:"image,omitempty"`
	ImagePullPolicy      string `json:"imagePullPolicy,omitempty"`
	ImageCredentialsName string `json:"imageCredentialsName,omitempty"`
}

// Process is one process of the app. The image comes from spec.build; the
// quota comes from ResQuotaPlan.
type Process struct {
	Name         string           `json:"name"`
	Command      []string         `json:"command,omitempty"`
	Args         []string         `json:"args,omitempty"`
	Replicas     *int32           `json:"replicas,omitempty"`
	TargetPort   int32            `json:"targetPort,omitempty"`
	ResQuotaPlan string           `json:"resQuotaPlan,omitempty"`
	Autoscaling  *AutoscalingSpec `json:"autoscaling,omitempty"`
	Probes       *ProbeSet        `json:"probes,omitempty"`
}

// DomainGroupMapping publishes the exposed addresses of one app
// environment for the in-cluster operator to reconcile.
type DomainGroupMapping struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec DomainGroupMappingSpec `json:"spec,omitempty"`
}

// DomainGroupMappingSpec groups addresses by source type.
type DomainGroupMappingSpec struct {
	Ref  MappingRef    `json:"ref"`
	Data []DomainGroup `json:"data,omitempty"`
}

// MappingRef points the mapping at its owning BkApp.
type MappingRef struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
}

// DomainGroup holds the domains of one source type.
type DomainGroup struct {
	SourceType string         `json:"sourceType"`
	Domains    []MappedDomain `json:"domains,omitempty"`
}

// Domain group source types.
const (
	SourceTypeSubDomain = "subdomain"
	SourceTypeSubPath   = "subpath"
	SourceTypeCustom    = "custom"
)

// MappedDomain is one host with its path prefixes and optional TLS secret.
type MappedDomain struct {
	Host           string   `json:"host"`
	PathPrefixList []string `json:"pathPrefixList,omitempty"`
	TLSSecretName  string   `json:"tlsSecretName,omitempty"`
}
