package paasv1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// Group is the API group of the PaaS CRDs.
	Group = "paas.bk.tencent.com"
	// Version is this package's API version.
	Version = "v1alpha1"
	// KindBkApp is the cloud-native application kind.
	KindBkApp = "BkApp"
)

// APIVersion is the fully qualified apiVersion string.
const APIVersion = Group + "/" + Version

// BkApp is the single custom resource representing a cloud-native
// application. In v1alpha1 every process carries its own image and
// cpu/memory strings.
type BkApp struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   BkAppSpec   `json:"spec,omitempty"`
	Status BkAppStatus `json:"status,omitempty"`
}

// BkAppSpec defines the desired state of a cloud-native app.
type BkAppSpec struct {
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

// Process is one process of the app. Image and cpu/memory are per-process
// in this API version.
type Process struct {
	Name        string           `json:"name"`
	Image       string           `json:"image,omitempty"`
	Command     []string         `json:"command,omitempty"`
	Args        []string         `json:"args,omitempty"`
	Replicas    *int32           `json:"replicas,omitempty"`
	TargetPort  int32            `json:"targetPort,omitempty"`
	CPU         string           `json:"cpu,omitempty"`
	Memory      string           `json:"memory,omitempty"`
	Autoscaling *AutoscalingSpec `json:"autoscaling,omitempty"`
	Probes      *ProbeSet        `json:"probes,omitempty"`
}

// AutoscalingSpec configures horizontal scaling of one process.
type AutoscalingSpec struct {
	MinReplicas int32  `json:"minReplicas"`
	MaxReplicas int32  `json:"maxReplicas"`
	Policy      string `json:"policy,omitempty"`
}

// ProbeSet groups the probes of one process.
type ProbeSet struct {
	Liveness  *Probe `json:"liveness,omitempty"`
	Readiness *Probe `json:"readiness,omitempty"`
	Startup   *Probe `json:"startup,omitempty"`
}

// Probe configures one health probe.
type Probe struct {
	HTTPGet   *HTTPGetAction   `json:"httpGet,omitempty"`
	TCPSocket *TCPSocketAction `json:"tcpSocket,omitempty"`
	Exec      *ExecAction      `json:"exec,omitempty"`

	InitialDelaySeconds int32 `json:"initialDelaySeconds,omitempty"`
	TimeoutSeconds      int32 `json:"timeoutSeconds,omitempty"`
	PeriodSeconds       int32 `json:"periodSeconds,omitempty"`
	SuccessThreshold    int32 `json:"successThreshold,omitempty"`
	FailureThreshold    int32 `json:"failureThreshold,omitempty"`
}

// HTTPGetAction probes an HTTP endpoint.
type HTTPGetAction struct {
	Path   string `json:"path,omitempty"`
	Port   int32  `json:"port"`
	Host   string `json:"host,omitempty"`
	Scheme string `json:"scheme,omitempty"`
}

// TCPSocketAction probes a TCP port.
type TCPSocketAction struct {
	Port int32  `json:"port"`
	Host string `json:"host,omitempty"`
}

// ExecAction probes by running a command.
type ExecAction struct {
	Command []string `json:"command,omitempty"`
}

// AppConfig holds app-scope configuration.
type AppConfig struct {
	Env []AppEnvVar `json:"env,omitempty"`
}

// AppEnvVar is one environment variable for every process.
type AppEnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// EnvOverlay overrides app-scope configuration per environment.
type EnvOverlay struct {
	EnvVariables []EnvVarOverlay      `json:"envVariables,omitempty"`
	Replicas     []ReplicasOverlay    `json:"replicas,omitempty"`
	ResQuotas    []ResQuotaOverlay    `json:"resQuotas,omitempty"`
	Autoscaling  []AutoscalingOverlay `json:"autoscaling,omitempty"`
	Mounts       []MountOverlay       `json:"mounts,omitempty"`
}

// EnvVarOverlay overrides one env var in one environment.
type EnvVarOverlay struct {
	EnvName string `json:"envName"`
	Name    string `json:"name"`
	Value   string `json:"value"`
}

// ReplicasOverlay overrides one process's replicas in one environment.
type ReplicasOverlay struct {
	EnvName string `json:"envName"`
	Process string `json:"process"`
	Count   int32  `json:"count"`
}

// ResQuotaOverlay overrides one process's resource quota in one environment.
type ResQuotaOverlay struct {
	EnvName string `json:"envName"`
	Process string `json:"process"`
	Plan    string `json:"plan"`
}

// AutoscalingOverlay overrides one process's autoscaling in one environment.
type AutoscalingOverlay struct {
	EnvName string          `json:"envName"`
	Process string          `json:"process"`
	Spec    AutoscalingSpec `json:",inline"`
}

// MountOverlay adds a mount for one environment.
type MountOverlay struct {
	EnvName   string      `json:"envName"`
	Name      string      `json:"name"`
	MountPath string      `json:"mountPath"`
	Source    MountSource `json:"source"`
}

// AppHooks configures lifecycle hooks.
type AppHooks struct {
	PreRelease *Hook `json:"preRelease,omitempty"`
}

// Hook is one lifecycle hook command.
type Hook struct {
	Command []string `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
}

// Addon declares a backing service the app depends on.
type Addon struct {
	Name string `json:"name"`
	// Specs carries provider-specific parameters.
	Specs []AddonSpec `json:"specs,omitempty"`
}

// AddonSpec is one named addon parameter.
type AddonSpec struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Mount maps a volume source into every process container.
type Mount struct {
	Name      string      `json:"name"`
	MountPath string      `json:"mountPath"`
	Source    MountSource `json:"source"`
}

// MountSource references a ConfigMap or persistent storage.
type MountSource struct {
	ConfigMap         *ConfigMapSource         `json:"configMap,omitempty"`
	PersistentStorage *PersistentStorageSource `json:"persistentStorage,omitempty"`
}

// ConfigMapSource mounts a ConfigMap.
type ConfigMapSource struct {
	Name string `json:"name"`
}

// PersistentStorageSource mounts a persistent volume claim.
type PersistentStorageSource struct {
	Name string `json:"name"`
}

// DomainResolution customises DNS of app pods.
type DomainResolution struct {
	Nameservers []string    `json:"nameservers,omitempty"`
	HostAliases []HostAlias `json:"hostAliases,omitempty"`
}

// HostAlias adds /etc/hosts entries to app pods.
type HostAlias struct {
	IP        string   `json:"ip"`
	Hostnames []string `json:"hostnames"`
}

// SvcDiscovery configures discovery of other platform apps.
type SvcDiscovery struct {
	BkSaaS []SvcDiscoveryEntry `json:"bkSaaS,omitempty"`
}

// SvcDiscoveryEntry names one discoverable app module.
type SvcDiscoveryEntry struct {
	BkAppCode  string `json:"bkAppCode"`
	ModuleName string `json:"moduleName,omitempty"`
}

// Observability configures metric collection.
type Observability struct {
	Monitoring *Monitoring `json:"monitoring,omitempty"`
}

// Monitoring declares metric endpoints to scrape.
type Monitoring struct {
	Metrics []Metric `json:"metrics,omitempty"`
}

// Metric is one scrape target.
type Metric struct {
	Process     string `json:"process"`
	ServicePort string `json:"servicePort"`
	Path        string `json:"path,omitempty"`
}

// BkAppStatus is the observed state reported by the in-cluster operator.
type BkAppStatus struct {
	Phase              string             `json:"phase,omitempty"`
	ObservedGeneration int64              `json:"observedGeneration,omitempty"`
	Conditions         []metav1.Condition `json:"conditions,omitempty"`
}

// BkApp status phases.
const (
	PhasePending     = "Pending"
	PhaseProgressing = "Progressing"
	PhaseRunning     = "Running"
	PhaseReady       = "Ready"
	PhaseError       = "Error"
)
