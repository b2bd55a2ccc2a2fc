package cnative

import "github.com/bkpaas/workloads/crd/paasv1alpha2"

// Replica count sources, distinguishing base spec values from env overlay
// overrides for UI display.
const (
	ReplicasSourceSpec    = "spec"
	ReplicasSourceOverlay = "overlay"
)

// ReplicasEntry is the resolved replica count of one process.
type ReplicasEntry struct {
	Count  int32
	Source string
}

// ReplicasReader resolves per-environment replica counts of a BkApp.
type ReplicasReader struct {
	res *paasv1alpha2.BkApp
}

// NewReplicasReader wraps a resource for replica resolution.
func NewReplicasReader(res *paasv1alpha2.BkApp) *ReplicasReader {
	return &ReplicasReader{res: res}
}

// ReadAll returns the effective replica count per process for one
// environment: the base spec value, overridden by any envOverlay entry
// matching the environment.
func (r *ReplicasReader) ReadAll(envName string) map[string]ReplicasEntry {
	out := map[string]ReplicasEntry{}
	for _, p := range r.res.Spec.Processes {
		count := int32(1)
		if p.Replicas != nil {
			count = *p.Replicas
		}
		out[p.Name] = ReplicasEntry{Count: count, Source: ReplicasSourceSpec}
	}
	overlay := r.res.Spec.EnvOverlay
	if overlay == nil {
		return out
	}
	for _, o := range overlay.Replicas {
		if o.EnvName != envName {
			continue
		}
		if _, ok := out[o.Process]; !ok {
			continue
		}
		out[o.Process] = ReplicasEntry{Count: o.Count, Source: ReplicasSourceOverlay}
	}
	return out
}
