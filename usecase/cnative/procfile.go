package cnative

import (
	"strings"

	"github.com/bkpaas/workloads/crd/paasv1alpha2"
)

// ParseProcfile flattens each process's command and args into one shell
// line, keyed by process name.
func ParseProcfile(res *paasv1alpha2.BkApp) map[string]string {
	out := make(map[string]string, len(res.Spec.Processes))
	for _, p := range res.Spec.Processes {
		parts := make([]string, 0, len(p.Command)+len(p.Args))
		parts = append(parts, p.Command...)
		parts = append(parts, p.Args...)
		out[p.Name] = strings.Join(parts, " ")
	}
	return out
}
