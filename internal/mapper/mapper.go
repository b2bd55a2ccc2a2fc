package mapper

// Package mapper derives Kubernetes resource names and selector labels from
// process specifications. Two generations coexist: v1 names embed the
// procfile command basename (so command edits rename the Deployment), v2
// names depend only on the app and process names. Both are pure.

import (
	"fmt"

	"github.com/bkpaas/workloads/domain/model"
)

// Version identifies a mapper generation.
type Version string

const (
	V1 Version = "v1"
	V2 Version = "v2"
)

// DefaultVersion applies to configs that do not record a mapper version.
// Fresh apps always get v2; v1 survives only for clusters still hosting
// apps deployed before the v2 rollout.
const DefaultVersion = V2

// Mapper translates one process of a workload app into resource names and
// selector labels.
type Mapper interface {
	DeploymentName(app *model.WlApp, procType, command string) string
	PodName(app *model.WlApp, procType, command string) string
	ServiceName(app *model.WlApp, procType, command string) string
	// PodSelector returns the labels that select the process's pods.
	PodSelector(app *model.WlApp, procType, command string) map[string]string
	// Labels returns the full label set stamped on rendered resources.
	Labels(app *model.WlApp, procType, command string) map[string]string
	Version() Version
}

// Get returns the mapper for a version string, falling back to the default
// for empty input. Unknown versions fail with model.ErrValidationFailed.
func Get(version string) (Mapper, error) {
	switch Version(version) {
	case V1:
		return v1Mapper{}, nil
	case V2, Version(""):
		return v2Mapper{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mapper version %q", model.ErrValidationFailed, version)
	}
}
