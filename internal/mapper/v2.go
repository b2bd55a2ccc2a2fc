package mapper

import (
	"fmt"

	"github.com/bkpaas/workloads/domain/model"
)

// v2Mapper names resources from the app and process names only, so command
// edits update Deployments in place.
type v2Mapper struct{}

func (v2Mapper) Version() Version { return V2 }

func (v2Mapper) DeploymentName(app *model.WlApp, procType, _ string) string {
	return fmt.Sprintf("%s--%s", app.SchedulerSafeName(), procType)
}

func (m v2Mapper) PodName(app *model.WlApp, procType, command string) string {
	return m.DeploymentName(app, procType, command)
}

func (m v2Mapper) ServiceName(app *model.WlApp, procType, command string) string {
	return m.DeploymentName(app, procType, command)
}

func (v2Mapper) PodSelector(app *model.WlApp, procType, _ string) map[string]string {
	return map[string]string{
		"module_name":  app.ModuleName,
		"process_name": procType,
	}
}

func (m v2Mapper) Labels(app *model.WlApp, procType, command string) map[string]string {
	labels := m.PodSelector(app, procType, command)
	labels["app"] = app.SchedulerSafeName()
	labels["category"] = "bkapp"
	labels["mapper_version"] = string(V2)
	return labels
}
