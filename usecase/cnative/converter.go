package cnative

import (
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/bkpaas/workloads/crd/paasv1alpha1"
	"github.com/bkpaas/workloads/crd/paasv1alpha2"
)

// ConvertResult is a converted resource plus what the conversion touched.
type ConvertResult struct {
	Resource *paasv1alpha2.BkApp
	// VersionChanged is false when the input already was v1alpha2.
	VersionChanged bool
	// ProcessesConverted reports whether any per-process image or
	// cpu/memory value had to be rewritten into the v1alpha2 shape.
	ProcessesConverted bool
}

// quotaLadder orders the plans a cpu/memory pair can collapse into, from
// smallest to largest envelope.
var quotaLadder = []struct {
	plan   string
	cpu    resource.Quantity
	memory resource.Quantity
}{
	{paasv1alpha2.ResQuotaPlan1C512M, resource.MustParse("1000m"), resource.MustParse("512Mi")},
	{paasv1alpha2.ResQuotaPlan2C1G, resource.MustParse("2000m"), resource.MustParse("1024Mi")},
	{paasv1alpha2.ResQuotaPlan2C2G, resource.MustParse("2000m"), resource.MustParse("2048Mi")},
	{paasv1alpha2.ResQuotaPlan4C1G, resource.MustParse("4000m"), resource.MustParse("1024Mi")},
	{paasv1alpha2.ResQuotaPlan4C2G, resource.MustParse("4000m"), resource.MustParse("2048Mi")},
}

// QuotaPlanFor collapses cpu/memory strings to the smallest plan that
// covers both, falling back to the largest plan for oversized requests and
// to the default plan when both strings are empty or unparseable.
func QuotaPlanFor(cpu, memory string) string {
	if cpu == "" && memory == "" {
		return paasv1alpha2.ResQuotaPlanDefault
	}
	wantCPU, errC := resource.ParseQuantity(cpu)
	wantMem, errM := resource.ParseQuantity(memory)
	if errC != nil && errM != nil {
		return paasv1alpha2.ResQuotaPlanDefault
	}
	for _, step := range quotaLadder {
		if errC == nil && step.cpu.Cmp(wantCPU) < 0 {
			continue
		}
		if errM == nil && step.memory.Cmp(wantMem) < 0 {
			continue
		}
		return step.plan
	}
	return quotaLadder[len(quotaLadder)-1].plan
}

// ConvertBkAppResource rewrites a v1alpha1 BkApp into the v1alpha2 shape:
// the shared process image is hoisted into spec.build and per-process
// cpu/memory strings collapse into quota plans. A v1alpha2 input passes
// through unchanged.
func ConvertBkAppResource(src *paasv1alpha1.BkApp) *ConvertResult {
	out := &paasv1alpha2.BkApp{
		TypeMeta:   src.TypeMeta,
		ObjectMeta: src.ObjectMeta,
		Status:     src.Status,
	}
	out.APIVersion = paasv1alpha2.APIVersion
	out.Kind = paasv1alpha2.KindBkApp

	res := &ConvertResult{
		Resource:       out,
		VersionChanged: src.APIVersion != paasv1alpha2.APIVersion,
	}

	out.Spec = paasv1alpha2.BkAppSpec{
		Configuration:    src.Spec.Configuration,
		EnvOverlay:       src.Spec.EnvOverlay,
		Hooks:            src.Spec.Hooks,
		Addons:           src.Spec.Addons,
		Mounts:           src.Spec.Mounts,
		DomainResolution: src.Spec.DomainResolution,
		SvcDiscovery:     src.Spec.SvcDiscovery,
		Observability:    src.Spec.Observability,
	}
	for _, p := range src.Spec.Processes {
		proc := paasv1alpha2.Process{
			Name:        p.Name,
			Command:     p.Command,
			Args:        p.Args,
			Replicas:    p.Replicas,
			TargetPort:  p.TargetPort,
			Autoscaling: p.Autoscaling,
			Probes:      p.Probes,
		}
		if p.Image != "" {
			if out.Spec.Build == nil {
				out.Spec.Build = &paasv1alpha2.BuildConfig{Image: p.Image}
			}
			if p.Image != out.Spec.Build.Image {
				// v1alpha2 has no per-process image field; divergent
				// images survive as annotations until the app migrates.
				if out.Annotations == nil {
					out.Annotations = map[string]string{}
				}
				out.Annotations[legacyProcImageAnnoPrefix+p.Name] = p.Image
			}
			res.ProcessesConverted = true
		}
		if p.CPU != "" || p.Memory != "" {
			proc.ResQuotaPlan = QuotaPlanFor(p.CPU, p.Memory)
			res.ProcessesConverted = true
		}
		out.Spec.Processes = append(out.Spec.Processes, proc)
	}
	return res
}

const legacyProcImageAnnoPrefix = "bkapp.paas.bk.tencent.com/legacy-proc-image-"
