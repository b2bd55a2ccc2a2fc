package model

import "time"

// AppModelResource stores the current cloud-native application model (the
// BkApp custom resource) of a module.
type AppModelResource struct {
	UUID       string
	TenantID   string
	AppCode    string
	ModuleName string
	// Manifest is the JSON-encoded BkApp resource, normalised to the
	// latest API version on write.
	Manifest  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppModelRevision is one immutable version of an AppModelResource.
type AppModelRevision struct {
	UUID         string
	ResourceUUID string
	Version      int
	Manifest     string
	CreatedAt    time.Time
}

// AppModelDeploy records one environment deploy of an app model.
type AppModelDeploy struct {
	UUID         string
	ResourceUUID string
	RevisionUUID string
	Environment  string
	// Status mirrors the CRD phase: pending, progressing, ready, error.
	Status     string
	Conditions []DeployCondition
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AppModelDeploy statuses.
const (
	AppModelDeployPending     = "pending"
	AppModelDeployProgressing = "progressing"
	AppModelDeployReady       = "ready"
	AppModelDeployError       = "error"
)

// DeployCondition is one observed condition of a cloud-native deploy.
type DeployCondition struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// Mount maps a ConfigMap or persistent storage source into the containers
// of a cloud-native module.
type Mount struct {
	UUID       string
	AppCode    string
	ModuleName string
	// Environment is empty for all-env mounts.
	Environment string
	Name        string
	MountPath   string
	// SourceType is "ConfigMap" or "PersistentStorage".
	SourceType string
	SourceName string
	CreatedAt  time.Time
}

// Mount source types.
const (
	MountSourceConfigMap         = "ConfigMap"
	MountSourcePersistentStorage = "PersistentStorage"
)

// ConfigVar is one environment variable row of a module, the relational
// source of truth env vars are synced from.
type ConfigVar struct {
	UUID       string
	AppCode    string
	ModuleName string
	// Environment is empty for all-env vars.
	Environment string
	Key         string
	Value       string
	CreatedAt   time.Time
}

// AppImageCredential is one registry credential row of a workload app,
// merged into the namespace image-pull Secret.
type AppImageCredential struct {
	UUID     string
	AppUUID  string
	Registry string
	Username string
	Password string
}
