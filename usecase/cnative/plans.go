package cnative

import (
	"sync/atomic"

	"github.com/bkpaas/workloads/crd/paasv1alpha2"
)

// PlanLimits is the resource envelope of one quota plan.
type PlanLimits struct {
	CPULimit      string
	MemoryLimit   string
	CPURequest    string
	MemoryRequest string
}

// builtinPlans always exist and cannot be removed.
var builtinPlans = map[string]PlanLimits{
	paasv1alpha2.ResQuotaPlanDefault: {CPULimit: "4000m", MemoryLimit: "1024Mi", CPURequest: "200m", MemoryRequest: "256Mi"},
	paasv1alpha2.ResQuotaPlan1C512M:  {CPULimit: "1000m", MemoryLimit: "512Mi", CPURequest: "100m", MemoryRequest: "256Mi"},
	paasv1alpha2.ResQuotaPlan2C1G:    {CPULimit: "2000m", MemoryLimit: "1024Mi", CPURequest: "200m", MemoryRequest: "256Mi"},
	paasv1alpha2.ResQuotaPlan2C2G:    {CPULimit: "2000m", MemoryLimit: "2048Mi", CPURequest: "200m", MemoryRequest: "512Mi"},
	paasv1alpha2.ResQuotaPlan4C1G:    {CPULimit: "4000m", MemoryLimit: "1024Mi", CPURequest: "400m", MemoryRequest: "256Mi"},
	paasv1alpha2.ResQuotaPlan4C2G:    {CPULimit: "4000m", MemoryLimit: "2048Mi", CPURequest: "400m", MemoryRequest: "512Mi"},
}

// PlanRegistry resolves quota plan names to limits. Reads hit an atomic
// snapshot so hot paths never lock; every mutation swaps in a fresh copy.
type PlanRegistry struct {
	snapshot atomic.Pointer[map[string]PlanLimits]
}

// NewPlanRegistry seeds a registry with the built-in plans.
func NewPlanRegistry() *PlanRegistry {
	r := &PlanRegistry{}
	m := make(map[string]PlanLimits, len(builtinPlans))
	for k, v := range builtinPlans {
		m[k] = v
	}
	r.snapshot.Store(&m)
	return r
}

// Get resolves a plan name. Empty resolves to the default plan.
func (r *PlanRegistry) Get(name string) (PlanLimits, bool) {
	if name == "" {
		name = paasv1alpha2.ResQuotaPlanDefault
	}
	m := *r.snapshot.Load()
	v, ok := m[name]
	return v, ok
}

// Set registers or replaces a custom plan.
func (r *PlanRegistry) Set(name string, limits PlanLimits) {
	old := *r.snapshot.Load()
	m := make(map[string]PlanLimits, len(old)+1)
	for k, v := range old {
		m[k] = v
	}
	m[name] = limits
	r.snapshot.Store(&m)
}

// Delete removes a custom plan. Built-in plans are restored, not removed.
func (r *PlanRegistry) Delete(name string) {
	old := *r.snapshot.Load()
	m := make(map[string]PlanLimits, len(old))
	for k, v := range old {
		if k != name {
			m[k] = v
		}
	}
	if v, ok := builtinPlans[name]; ok {
		m[name] = v
	}
	r.snapshot.Store(&m)
}
