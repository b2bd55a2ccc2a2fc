package model

import "time"

// Release is a deployable revision of a workload app. Versions are
// contiguous and monotonically increasing per app.
type Release struct {
	UUID    string
	AppUUID string
	Version int
	BuildID string
	// Procfile maps process name to command line.
	Procfile map[string]string
	// ConfigUUID snapshots the Config row active at release time.
	ConfigUUID string
	Failed     bool
	Summary    string
	CreatedAt  time.Time
}

// Build is the artifact of one build run: an OCI image or a slug tarball.
type Build struct {
	UUID    string
	AppUUID string
	// Image is the OCI reference; empty for slug builds.
	Image string
	// SlugURL points to the slug tarball in the blob store; empty for
	// image builds.
	SlugURL  string
	Procfile map[string]string
	// ArtifactMetadata includes the use_cnb flag and builder details.
	ArtifactMetadata map[string]string
	Buildpacks       []Buildpack
	CreatedAt        time.Time
}

// ArtifactMetadata keys.
const (
	ArtifactKeyUseCNB = "use_cnb"
)

// UsesCNB reports whether the build was produced by a cloud-native
// buildpacks builder.
func (b *Build) UsesCNB() bool {
	return b.ArtifactMetadata[ArtifactKeyUseCNB] == "true"
}

// Buildpack identifies one buildpack used in a build.
type Buildpack struct {
	Type    string            `json:"type"`
	Name    string            `json:"name"`
	URL     string            `json:"url"`
	Version string            `json:"version"`
	Env     map[string]string `json:"env,omitempty"`
}

// BuildProcess is an in-progress or finished build run.
type BuildProcess struct {
	UUID          string
	AppUUID       string
	SourceTarPath string
	Branch        string
	Revision      string
	Buildpacks    []Buildpack
	// OutputBuildID is set when the run completes successfully.
	OutputBuildID string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Build process statuses.
const (
	BuildStatusPending    = "pending"
	BuildStatusRunning    = "running"
	BuildStatusSuccessful = "successful"
	BuildStatusFailed     = "failed"
)

// Deployment drives one release of one app environment through ordered
// phases.
type Deployment struct {
	UUID    string
	AppUUID string

	SourceVersionType string
	SourceVersionName string
	SourceRevision    string

	// BuildID and ReleaseID are filled as the corresponding phases finish.
	BuildID   string
	ReleaseID string

	// PreReleaseHook is the command run before the release phase; empty
	// disables the hook.
	PreReleaseHook []string
	HookEnabled    bool

	Status      string
	ErrorDetail string

	Phases []DeployPhase

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deployment statuses reported through the platform callback.
const (
	DeployStatusPending     = "pending"
	DeployStatusProgressing = "progressing"
	DeployStatusSuccessful  = "successful"
	DeployStatusFailed      = "failed"
	DeployStatusInterrupted = "interrupted"
)

// Deploy phase types, totally ordered.
const (
	PhasePreparation = "preparation"
	PhaseBuild       = "build"
	PhaseRelease     = "release"
)

// PhaseOrder lists deploy phases in execution order.
var PhaseOrder = []string{PhasePreparation, PhaseBuild, PhaseRelease}

// DeployPhase is a coarse progress marker of a deployment.
type DeployPhase struct {
	Type         string
	Status       string
	StartTime    *time.Time
	CompleteTime *time.Time
	Steps        []DeployStep
}

// DeployStep is a fine progress marker inside a phase.
type DeployStep struct {
	Name         string
	Status       string
	StartTime    *time.Time
	CompleteTime *time.Time
}

// Step and phase statuses.
const (
	StepPending    = "pending"
	StepRunning    = "running"
	StepSuccessful = "successful"
	StepFailed     = "failed"
	StepSkipped    = "skipped"
)
