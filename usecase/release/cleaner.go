package release

import (
	"context"
	"sort"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/logging"
	"github.com/bkpaas/workloads/internal/mapper"
)

// CleanupAction removes one leftover workload after a release.
type CleanupAction struct {
	ProcessType    string
	DeploymentName string
	ServiceName    string
	// Reason is "removed" for processes gone from the procfile, "renamed"
	// for v1-mapped processes whose command change renamed the Deployment.
	Reason string
}

// ObsoleteProcesses diffs the previous procfile against the new one. A
// process type that no longer exists loses its Deployment and Service.
// Under the v1 mapper a command edit renames the Deployment, so the old
// name is removed too; v2 names are command-independent and update in
// place.
func ObsoleteProcesses(app *model.WlApp, prev, next map[string]string, m mapper.Mapper) []CleanupAction {
	var actions []CleanupAction
	for procType, prevCmd := range prev {
		nextCmd, ok := next[procType]
		if !ok {
			actions = append(actions, CleanupAction{
				ProcessType:    procType,
				DeploymentName: m.DeploymentName(app, procType, prevCmd),
				ServiceName:    m.ServiceName(app, procType, prevCmd),
				Reason:         "removed",
			})
			continue
		}
		if m.Version() != mapper.V1 || prevCmd == nextCmd {
			continue
		}
		oldName := m.DeploymentName(app, procType, prevCmd)
		if oldName == m.DeploymentName(app, procType, nextCmd) {
			continue
		}
		actions = append(actions, CleanupAction{
			ProcessType:    procType,
			DeploymentName: oldName,
			ServiceName:    m.ServiceName(app, procType, prevCmd),
			Reason:         "renamed",
		})
	}
	sort.Slice(actions, func(i, j int) bool {
		if actions[i].ProcessType != actions[j].ProcessType {
			return actions[i].ProcessType < actions[j].ProcessType
		}
		return actions[i].DeploymentName < actions[j].DeploymentName
	})
	return actions
}

// cleanupObsolete deletes the workloads named by the diff. The service
// sweep in SyncProcessServices already removes most stale Services; the
// explicit delete here covers v1 renames whose labels no longer match.
func (u *UseCase) cleanupObsolete(ctx context.Context, client *kube.Client, app *model.WlApp, actions []CleanupAction) error {
	if len(actions) == 0 {
		return nil
	}
	deployments := kube.NewEntityManager(client, kube.TypeDeployment)
	services := kube.NewEntityManager(client, kube.TypeService)
	for _, a := range actions {
		if err := deployments.Delete(ctx, app.Namespace(), a.DeploymentName, nil); err != nil {
			return err
		}
		if err := services.Delete(ctx, app.Namespace(), a.ServiceName, nil); err != nil {
			return err
		}
		logging.FromContext(ctx).Info(ctx, "obsolete process cleaned",
			"app", app.Name, "process", a.ProcessType, "reason", a.Reason)
	}
	return nil
}
