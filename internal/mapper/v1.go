package mapper

import (
	"fmt"
	"path"
	"strings"

	"github.com/bkpaas/workloads/domain/model"
)

// v1Mapper is the legacy generation. Resource names carry the command
// basename, so editing a process command renames its Deployment. Kept only
// for apps whose Config already records v1.
type v1Mapper struct{}

func (v1Mapper) Version() Version { return V1 }

func (v1Mapper) DeploymentName(app *model.WlApp, procType, command string) string {
	return fmt.Sprintf("%s-%s-%s-%s-deployment", app.Region, app.SchedulerSafeName(), procType, CommandName(command))
}

func (m v1Mapper) PodName(app *model.WlApp, procType, command string) string {
	return strings.TrimSuffix(m.DeploymentName(app, procType, command), "-deployment")
}

func (m v1Mapper) ServiceName(app *model.WlApp, procType, command string) string {
	return m.PodName(app, procType, command)
}

func (m v1Mapper) PodSelector(app *model.WlApp, procType, command string) map[string]string {
	return map[string]string{
		"pod_selector": fmt.Sprintf("%s-%s-%s-%s", app.Region, app.SchedulerSafeName(), procType, CommandName(command)),
	}
}

func (m v1Mapper) Labels(app *model.WlApp, procType, command string) map[string]string {
	labels := m.PodSelector(app, procType, command)
	labels["app"] = fmt.Sprintf("%s-%s", app.Region, app.SchedulerSafeName())
	labels["process_id"] = procType
	return labels
}

// CommandName extracts the representative basename from a procfile command
// line. Interpreter launches (python) take the last argument's basename so
// "python manage.py celery" yields "celery"; anything else takes the first
// token's basename.
func CommandName(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	first := path.Base(fields[0])
	if strings.HasPrefix(first, "python") {
		return path.Base(fields[len(fields)-1])
	}
	return first
}
