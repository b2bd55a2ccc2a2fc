package network

import (
	"context"
	"fmt"

	"github.com/bkpaas/workloads/adapters/kube"
)

// SyncServiceMonitor publishes the ServiceMonitor of an app environment so
// the monitoring stack scrapes its metrics Service. Updates go through
// merge patch; the resource is created on first sync.
func (u *UseCase) SyncServiceMonitor(ctx context.Context, appName, interval string) error {
	app, err := u.Repos.App.GetByName(ctx, appName)
	if err != nil {
		return err
	}
	client, err := u.Registry.ClientForApp(ctx, u.Repos.App, app)
	if err != nil {
		return err
	}
	monitor := kube.BuildServiceMonitor(app, interval)
	obj, err := kube.ToUnstructured(monitor)
	if err != nil {
		return fmt.Errorf("render service monitor: %w", err)
	}
	return kube.NewEntityManager(client, kube.TypeServiceMonitor).Save(ctx, obj)
}

// RemoveServiceMonitor deletes the ServiceMonitor, tolerating absence.
func (u *UseCase) RemoveServiceMonitor(ctx context.Context, appName string) error {
	app, err := u.Repos.App.GetByName(ctx, appName)
	if err != nil {
		return err
	}
	client, err := u.Registry.ClientForApp(ctx, u.Repos.App, app)
	if err != nil {
		return err
	}
	return kube.NewEntityManager(client, kube.TypeServiceMonitor).
		Delete(ctx, app.Namespace(), app.SchedulerSafeName(), nil)
}
