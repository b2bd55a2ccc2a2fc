package rdb

import (
	"encoding/json"
	"time"
)

// ClusterRecord is the RDB persistence model for domain Cluster.
// Table name: clusters
type ClusterRecord struct {
	UUID        string `gorm:"primaryKey;type:text;not null"`
	Name        string `gorm:"type:text;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	TenantID    string `gorm:"type:text;not null;index"`
	Tenants     string `gorm:"type:text"` // JSON encoded []string

	Ingress    string `gorm:"type:text"`          // JSON encoded model.IngressConfig
	APIServers string `gorm:"type:text;not null"` // JSON encoded []model.APIServer

	CAData   string `gorm:"type:text"`
	CertData string `gorm:"type:text"`
	KeyData  string `gorm:"type:text"`
	Token    string `gorm:"type:text"`

	FeatureFlags  string `gorm:"type:text"` // JSON encoded map[string]bool
	Annotations   string `gorm:"type:text"` // JSON encoded map[string]string
	NodeSelector  string `gorm:"type:text"` // JSON encoded map[string]string
	Tolerations   string `gorm:"type:text"` // JSON encoded []model.Toleration
	ElasticSearch string `gorm:"type:text"` // JSON encoded *model.ElasticSearchConfig

	ExposedURLType     string `gorm:"type:text"`
	ComponentRegistry  string `gorm:"type:text"`
	ComponentNamespace string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (ClusterRecord) TableName() string { return "clusters" }

// PolicyRecord persistence model. One row per tenant.
type PolicyRecord struct {
	UUID     string `gorm:"primaryKey;type:text;not null"`
	TenantID string `gorm:"type:text;not null;uniqueIndex"`
	Type     string `gorm:"type:text;not null"`
	Manual   string `gorm:"type:text"` // JSON encoded *model.ManualAllocation
	Rules    string `gorm:"type:text"` // JSON encoded []model.AllocationRule

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (PolicyRecord) TableName() string { return "allocation_policies" }

// WlAppRecord persistence model
type WlAppRecord struct {
	UUID        string `gorm:"primaryKey;type:text;not null"`
	Name        string `gorm:"type:text;not null;uniqueIndex"`
	Region      string `gorm:"type:text"`
	TenantID    string `gorm:"type:text;not null;index"`
	AppCode     string `gorm:"type:text;not null;index"`
	ModuleName  string `gorm:"type:text;not null"`
	Environment string `gorm:"type:text;not null"`
	Type        string `gorm:"type:text;not null"`
	Structure   string `gorm:"type:text"` // JSON encoded map[string]int

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (WlAppRecord) TableName() string { return "wl_apps" }

// ConfigRecord persistence model. Append-only; the latest row carries
// is_latest=true.
type ConfigRecord struct {
	UUID        string `gorm:"primaryKey;type:text;not null"`
	AppUUID     string `gorm:"type:text;not null;index"`
	ClusterName string `gorm:"type:text;not null;index"`

	Image           string `gorm:"type:text"`
	RuntimeEndpoint string `gorm:"type:text"` // JSON encoded []string
	RuntimeCommand  string `gorm:"type:text"` // JSON encoded []string

	Resources   string `gorm:"type:text"` // JSON encoded map[string]model.ResourceRequirement
	Tolerations string `gorm:"type:text"` // JSON encoded []model.Toleration
	Metadata    string `gorm:"type:text"` // JSON encoded map[string]string

	MountLogToHost bool `gorm:"not null"`
	IsLatest       bool `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
}

func (ConfigRecord) TableName() string { return "configs" }

// ReleaseRecord persistence model
type ReleaseRecord struct {
	UUID       string `gorm:"primaryKey;type:text;not null"`
	AppUUID    string `gorm:"type:text;not null;index"`
	Version    int    `gorm:"not null"`
	BuildID    string `gorm:"type:text"`
	Procfile   string `gorm:"type:text"` // JSON encoded map[string]string
	ConfigUUID string `gorm:"type:text"`
	Failed     bool   `gorm:"not null"`
	Summary    string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
}

func (ReleaseRecord) TableName() string { return "releases" }

// BuildRecord persistence model
type BuildRecord struct {
	UUID             string `gorm:"primaryKey;type:text;not null"`
	AppUUID          string `gorm:"type:text;not null;index"`
	Image            string `gorm:"type:text"`
	SlugURL          string `gorm:"type:text"`
	Procfile         string `gorm:"type:text"` // JSON encoded map[string]string
	ArtifactMetadata string `gorm:"type:text"` // JSON encoded map[string]string
	Buildpacks       string `gorm:"type:text"` // JSON encoded []model.Buildpack

	CreatedAt time.Time `gorm:"not null"`
}

func (BuildRecord) TableName() string { return "builds" }

// BuildProcessRecord persistence model
type BuildProcessRecord struct {
	UUID          string `gorm:"primaryKey;type:text;not null"`
	AppUUID       string `gorm:"type:text;not null;index"`
	SourceTarPath string `gorm:"type:text"`
	Branch        string `gorm:"type:text"`
	Revision      string `gorm:"type:text"`
	Buildpacks    string `gorm:"type:text"` // JSON encoded []model.Buildpack
	OutputBuildID string `gorm:"type:text"`
	Status        string `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (BuildProcessRecord) TableName() string { return "build_processes" }

// ProcessSpecRecord persistence model
type ProcessSpecRecord struct {
	UUID    string `gorm:"primaryKey;type:text;not null"`
	AppUUID string `gorm:"type:text;not null;index:idx_process_app_name,unique"`
	Name    string `gorm:"type:text;not null;index:idx_process_app_name,unique"`

	Command string `gorm:"type:text"` // JSON encoded []string
	Args    string `gorm:"type:text"` // JSON encoded []string
	Image   string `gorm:"type:text"`

	TargetReplicas int    `gorm:"not null"`
	TargetStatus   string `gorm:"type:text"`

	PlanName    string `gorm:"type:text"`
	Resources   string `gorm:"type:text"` // JSON encoded *model.ResourceRequirement
	TargetPort  int    `gorm:"not null"`
	Probes      string `gorm:"type:text"` // JSON encoded *model.ProbeSet
	Autoscaling string `gorm:"type:text"` // JSON encoded *model.AutoscalingSpec

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (ProcessSpecRecord) TableName() string { return "process_specs" }

// DeploymentRecord persistence model
type DeploymentRecord struct {
	UUID    string `gorm:"primaryKey;type:text;not null"`
	AppUUID string `gorm:"type:text;not null;index"`

	SourceVersionType string `gorm:"type:text"`
	SourceVersionName string `gorm:"type:text"`
	SourceRevision    string `gorm:"type:text"`

	BuildID   string `gorm:"type:text"`
	ReleaseID string `gorm:"type:text"`

	PreReleaseHook string `gorm:"type:text"` // JSON encoded []string
	HookEnabled    bool   `gorm:"not null"`

	Status      string `gorm:"type:text;not null"`
	ErrorDetail string `gorm:"type:text"`
	Phases      string `gorm:"type:text"` // JSON encoded []model.DeployPhase

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (DeploymentRecord) TableName() string { return "deployments" }

// AppDomainRecord persistence model
type AppDomainRecord struct {
	UUID         string `gorm:"primaryKey;type:text;not null"`
	AppUUID      string `gorm:"type:text;not null;index"`
	TenantID     string `gorm:"type:text;not null"`
	Host         string `gorm:"type:text;not null"`
	HTTPSEnabled bool   `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

func (AppDomainRecord) TableName() string { return "app_domains" }

// AppSubpathRecord persistence model
type AppSubpathRecord struct {
	UUID     string `gorm:"primaryKey;type:text;not null"`
	AppUUID  string `gorm:"type:text;not null;index"`
	TenantID string `gorm:"type:text;not null"`
	Subpath  string `gorm:"type:text;not null;uniqueIndex"`

	CreatedAt time.Time `gorm:"not null"`
}

func (AppSubpathRecord) TableName() string { return "app_subpaths" }

// CustomDomainRecord persistence model
type CustomDomainRecord struct {
	UUID         string `gorm:"primaryKey;type:text;not null"`
	AppUUID      string `gorm:"type:text;not null;index"`
	TenantID     string `gorm:"type:text;not null"`
	Host         string `gorm:"type:text;not null"`
	PathPrefix   string `gorm:"type:text"`
	HTTPSEnabled bool   `gorm:"not null"`

	CertName       string `gorm:"type:text"`
	SharedCertName string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
}

func (CustomDomainRecord) TableName() string { return "custom_domains" }

// CertRecord persistence model
type CertRecord struct {
	UUID     string `gorm:"primaryKey;type:text;not null"`
	TenantID string `gorm:"type:text;not null;index:idx_cert_tenant_name,unique"`
	Name     string `gorm:"type:text;not null;index:idx_cert_tenant_name,unique"`
	CertData string `gorm:"type:text"`
	KeyData  string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
}

func (CertRecord) TableName() string { return "certs" }

// SharedCertRecord persistence model
type SharedCertRecord struct {
	UUID         string `gorm:"primaryKey;type:text;not null"`
	TenantID     string `gorm:"type:text;not null;index:idx_shared_cert_tenant_name,unique"`
	Name         string `gorm:"type:text;not null;index:idx_shared_cert_tenant_name,unique"`
	CertData     string `gorm:"type:text"`
	KeyData      string `gorm:"type:text"`
	AutoMatchCNs string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
}

func (SharedCertRecord) TableName() string { return "shared_certs" }

// AppModelResourceRecord persistence model
type AppModelResourceRecord struct {
	UUID       string `gorm:"primaryKey;type:text;not null"`
	TenantID   string `gorm:"type:text;not null"`
	AppCode    string `gorm:"type:text;not null;index:idx_appmodel_code_module,unique"`
	ModuleName string `gorm:"type:text;not null;index:idx_appmodel_code_module,unique"`
	Manifest   string `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (AppModelResourceRecord) TableName() string { return "app_model_resources" }

// AppModelRevisionRecord persistence model
type AppModelRevisionRecord struct {
	UUID         string `gorm:"primaryKey;type:text;not null"`
	ResourceUUID string `gorm:"type:text;not null;index"`
	Version      int    `gorm:"not null"`
	Manifest     string `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"not null"`
}

func (AppModelRevisionRecord) TableName() string { return "app_model_revisions" }

// AppModelDeployRecord persistence model
type AppModelDeployRecord struct {
	UUID         string `gorm:"primaryKey;type:text;not null"`
	ResourceUUID string `gorm:"type:text;not null;index"`
	RevisionUUID string `gorm:"type:text"`
	Environment  string `gorm:"type:text;not null"`
	Status       string `gorm:"type:text;not null"`
	Conditions   string `gorm:"type:text"` // JSON encoded []model.DeployCondition

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (AppModelDeployRecord) TableName() string { return "app_model_deploys" }

// MountRecord persistence model
type MountRecord struct {
	UUID        string `gorm:"primaryKey;type:text;not null"`
	AppCode     string `gorm:"type:text;not null;index"`
	ModuleName  string `gorm:"type:text;not null"`
	Environment string `gorm:"type:text"`
	Name        string `gorm:"type:text;not null"`
	MountPath   string `gorm:"type:text;not null"`
	SourceType  string `gorm:"type:text;not null"`
	SourceName  string `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"not null"`
}

func (MountRecord) TableName() string { return "mounts" }

// ConfigVarRecord persistence model
type ConfigVarRecord struct {
	UUID        string `gorm:"primaryKey;type:text;not null"`
	AppCode     string `gorm:"type:text;not null;index:idx_config_var_key,unique"`
	ModuleName  string `gorm:"type:text;not null;index:idx_config_var_key,unique"`
	Environment string `gorm:"type:text;index:idx_config_var_key,unique"`
	Key         string `gorm:"type:text;not null;index:idx_config_var_key,unique"`
	Value       string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
}

func (ConfigVarRecord) TableName() string { return "config_vars" }

// ImageCredentialRecord persistence model
type ImageCredentialRecord struct {
	UUID     string `gorm:"primaryKey;type:text;not null"`
	AppUUID  string `gorm:"type:text;not null;index:idx_image_cred_app_registry,unique"`
	Registry string `gorm:"type:text;not null;index:idx_image_cred_app_registry,unique"`
	Username string `gorm:"type:text"`
	Password string `gorm:"type:text"`
}

func (ImageCredentialRecord) TableName() string { return "image_credentials" }

// encodeJSON serialises a value into a text column. Nil-ish values collapse
// to the empty string so the column stays readable.
func encodeJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	s := string(b)
	if s == "null" {
		return ""
	}
	return s
}

// decodeJSON fills v from a text column, treating the empty string as a
// zero value.
func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}
