package model

import "time"

// Predefined resource plan names. "custom" requires inline resources.
const (
	PlanDefault = "default"
	PlanCustom  = "custom"
	Plan4C1G    = "4C1G"
	Plan4C2G    = "4C2G"
	Plan2C1G    = "2C1G"
	Plan2C2G    = "2C2G"
	Plan1C512M  = "1C512M"
)

// DefaultMaxReplicasPerProcess caps a single process of a cloud-native app.
const DefaultMaxReplicasPerProcess = 5

// Process target statuses.
const (
	ProcessStart = "start"
	ProcessStop  = "stop"
)

// ProbeHandler describes exactly one probe mechanism; the three fields are
// mutually exclusive.
type ProbeHandler struct {
	HTTPGet   *HTTPGetAction   `json:"http_get,omitempty"`
	TCPSocket *TCPSocketAction `json:"tcp_socket,omitempty"`
	Exec      *ExecAction      `json:"exec,omitempty"`
}

// HTTPGetAction probes an HTTP endpoint.
type HTTPGetAction struct {
	Path   string `json:"path,omitempty"`
	Port   int    `json:"port"`
	Host   string `json:"host,omitempty"`
	Scheme string `json:"scheme,omitempty"`
}

// TCPSocketAction probes a TCP port.
type TCPSocketAction struct {
	Port int    `json:"port"`
	Host string `json:"host,omitempty"`
}

// ExecAction probes by running a command inside the container.
type ExecAction struct {
	Command []string `json:"command,omitempty"`
}

// Probe configures one liveness/readiness/startup probe.
type Probe struct {
	ProbeHandler        `json:",inline"`
	InitialDelaySeconds int32 `json:"initial_delay_seconds,omitempty"`
	TimeoutSeconds      int32 `json:"timeout_seconds,omitempty"`
	PeriodSeconds       int32 `json:"period_seconds,omitempty"`
	SuccessThreshold    int32 `json:"success_threshold,omitempty"`
	FailureThreshold    int32 `json:"failure_threshold,omitempty"`
}

// Validate enforces probe handler exclusivity.
func (p *Probe) Validate() error {
	n := 0
	if p.HTTPGet != nil {
		n++
	}
	if p.TCPSocket != nil {
		n++
	}
	if p.Exec != nil {
		n++
	}
	if n != 1 {
		return wrapValidation("a probe requires exactly one handler")
	}
	return nil
}

// ProbeSet groups the three probes of a process.
type ProbeSet struct {
	Liveness  *Probe `json:"liveness,omitempty"`
	Readiness *Probe `json:"readiness,omitempty"`
	Startup   *Probe `json:"startup,omitempty"`
}

// AutoscalingSpec configures horizontal scaling for a process.
type AutoscalingSpec struct {
	Enabled     bool   `json:"enabled"`
	MinReplicas int    `json:"min_replicas"`
	MaxReplicas int    `json:"max_replicas"`
	Policy      string `json:"policy"`
}

// ProcessSpec is the per-process target state of a workload app.
type ProcessSpec struct {
	UUID    string
	AppUUID string
	Name    string

	Command []string
	Args    []string
	Image   string

	TargetReplicas int
	// TargetStatus is "start" or "stop"; stop forces zero replicas without
	// removing the process.
	TargetStatus string

	// PlanName is a predefined plan key or PlanCustom with inline resources.
	PlanName  string
	Resources *ResourceRequirement

	TargetPort  int
	Probes      *ProbeSet
	Autoscaling *AutoscalingSpec

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces process spec invariants.
func (s *ProcessSpec) Validate() error {
	if s.Name == "" {
		return wrapValidation("process name is required")
	}
	if s.TargetReplicas < 0 {
		return wrapValidation("target replicas must be >= 0")
	}
	switch s.PlanName {
	case "", PlanDefault, Plan4C1G, Plan4C2G, Plan2C1G, Plan2C2G, Plan1C512M:
	case PlanCustom:
		if s.Resources == nil {
			return wrapValidation("custom plan requires inline resources")
		}
	default:
		return wrapValidation("unknown resource plan: " + s.PlanName)
	}
	if s.Probes != nil {
		for _, p := range []*Probe{s.Probes.Liveness, s.Probes.Readiness, s.Probes.Startup} {
			if p == nil {
				continue
			}
			if err := p.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Process is the runtime state of one process type, resolved from the live
// Deployment the mapper materialises.
type Process struct {
	Type    string
	Command string

	Replicas        int
	SuccessReplicas int
	FailedReplicas  int

	// Version is the release version label stamped on the Deployment.
	Version int
	// ResourceVersion allows resuming a watch from this read.
	ResourceVersion string

	Instances []Instance
}

// Instance is one Pod of a process.
type Instance struct {
	Name         string
	ProcessType  string
	Ready        bool
	RestartCount int32
	Version      int
	State        string
}
