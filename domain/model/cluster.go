package model

import (
	"sort"
	"time"
)

// TenantIDAll marks a cluster as available to every tenant.
const TenantIDAll = "*"

// Cluster feature flag names. Values are persisted, do not rename.
const (
	FeatureIngressUseRegex               = "INGRESS_USE_REGEX"
	FeatureEnableBCSEgress               = "ENABLE_BCS_EGRESS"
	FeatureEnableMountLogToHost          = "ENABLE_MOUNT_LOG_TO_HOST"
	FeatureEnableAutoscaling             = "ENABLE_AUTOSCALING"
	FeatureEnableBKLogCollector          = "ENABLE_BK_LOG_COLLECTOR"
	FeatureDisableBuiltinImageCredential = "SKIP_INJECT_BUILTIN_IMAGE_CREDENTIAL"
)

// ExposedURLType determines how an app is exposed through cluster ingress.
type ExposedURLType string

const (
	ExposedURLTypeSubPath   ExposedURLType = "subpath"
	ExposedURLTypeSubDomain ExposedURLType = "subdomain"
)

// Cluster is a registered Kubernetes cluster.
type Cluster struct {
	UUID        string
	Name        string
	Description string
	TenantID    string
	// AvailableTenantIDs lists tenants whose workloads may land on this
	// cluster; a single TenantIDAll entry opens it to everyone.
	AvailableTenantIDs []string

	Ingress IngressConfig

	// APIServers holds at least one endpoint.
	APIServers []APIServer

	// TLS material or bearer token; either may be empty in trusted networks.
	CAData   string
	CertData string
	KeyData  string
	Token    string

	FeatureFlags        map[string]bool
	Annotations         map[string]string
	DefaultNodeSelector map[string]string
	DefaultTolerations  []Toleration

	ExposedURLType     ExposedURLType
	ComponentRegistry  string
	ComponentNamespace string

	ElasticSearch *ElasticSearchConfig

	CreatedAt time.Time
	UpdatedAt time.Time
}

// APIServer is one endpoint of a cluster.
type APIServer struct {
	Host string
	// OverriddenHostname keeps TLS SNI and the Host header on this value
	// while connecting to Host.
	OverriddenHostname string
}

// Toleration mirrors the Kubernetes toleration shape for persisted cluster
// and config defaults.
type Toleration struct {
	Key               string `json:"key,omitempty"`
	Operator          string `json:"operator,omitempty"`
	Value             string `json:"value,omitempty"`
	Effect            string `json:"effect,omitempty"`
	TolerationSeconds *int64 `json:"tolerationSeconds,omitempty"`
}

// ElasticSearchConfig configures per-cluster log collection storage.
type ElasticSearchConfig struct {
	Scheme   string `json:"scheme"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// IngressConfig is the cluster-level ingress configuration.
type IngressConfig struct {
	AppRootDomains           []AppDomainConfig `json:"app_root_domains"`
	SubPathDomains           []AppDomainConfig `json:"sub_path_domains"`
	DefaultIngressDomainTmpl string            `json:"default_ingress_domain_tmpl"`
	FrontendIngressIP        string            `json:"frontend_ingress_ip"`
	PortMap                  PortMap           `json:"port_map"`
}

// AppDomainConfig is one root domain entry of an ingress config.
type AppDomainConfig struct {
	Name         string `json:"name"`
	Reserved     bool   `json:"reserved"`
	HTTPSEnabled bool   `json:"https_enabled"`
}

// PortMap holds the external ports the ingress frontend listens on.
type PortMap struct {
	HTTP  int `json:"http"`
	HTTPS int `json:"https"`
}

// PortFor returns the external port for a scheme, defaulting to the
// conventional value when unset.
func (m PortMap) PortFor(https bool) int {
	if https {
		if m.HTTPS != 0 {
			return m.HTTPS
		}
		return 443
	}
	if m.HTTP != 0 {
		return m.HTTP
	}
	return 80
}

// SortedRootDomains returns root domains with non-reserved entries first,
// preserving relative order within each group.
func SortedRootDomains(domains []AppDomainConfig) []AppDomainConfig {
	out := make([]AppDomainConfig, len(domains))
	copy(out, domains)
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].Reserved && out[j].Reserved
	})
	return out
}

// HasFeature reports whether a named feature flag is enabled.
func (c *Cluster) HasFeature(name string) bool {
	return c.FeatureFlags[name]
}

// AllowsTenant reports whether a tenant's workloads may land on this cluster.
func (c *Cluster) AllowsTenant(tenantID string) bool {
	for _, t := range c.AvailableTenantIDs {
		if t == TenantIDAll || t == tenantID {
			return true
		}
	}
	return false
}

// Validate enforces cluster record invariants.
func (c *Cluster) Validate() error {
	if c.Name == "" {
		return wrapValidation("cluster name is required")
	}
	if len(c.APIServers) == 0 {
		return wrapValidation("cluster requires at least one api server")
	}
	seen := map[string]struct{}{}
	for _, s := range c.APIServers {
		if s.Host == "" {
			return wrapValidation("api server host is required")
		}
		if _, dup := seen[s.Host]; dup {
			return wrapValidation("duplicate api server host: " + s.Host)
		}
		seen[s.Host] = struct{}{}
	}
	if len(c.AvailableTenantIDs) == 0 {
		return wrapValidation("available tenant ids must not be empty")
	}
	return nil
}
