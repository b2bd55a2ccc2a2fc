package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain/model"
	"github.com/bkpaas/workloads/internal/mapper"
)

// SyncProcessServices reconciles one Service per process of the latest
// release. Existing Services keep their cluster IP; Services of removed
// processes are deleted.
func (u *UseCase) SyncProcessServices(ctx context.Context, appName string, procfile map[string]string, targetPorts map[string]int) error {
	app, err := u.Repos.App.GetByName(ctx, appName)
	if err != nil {
		return err
	}
	m, err := u.appMapper(ctx, app)
	if err != nil {
		return err
	}
	client, err := u.Registry.ClientForApp(ctx, u.Repos.App, app)
	if err != nil {
		return err
	}
	mgr := kube.NewEntityManager(client, kube.TypeService)

	want := map[string]bool{}
	for procType, command := range procfile {
		name := m.ServiceName(app, procType, command)
		want[name] = true

		ports := []kube.ServicePort{kube.DefaultServicePort}
		if p := targetPorts[procType]; p != 0 {
			ports = []kube.ServicePort{{Name: "http", Port: 80, TargetPort: int32(p)}}
		}
		labels := m.Labels(app, procType, command)
		labels[kube.LabelWlAppName] = app.SchedulerSafeName()
		desired := kube.BuildProcessService(name, app.Namespace(), labels, m.PodSelector(app, procType, command), ports)

		current, err := mgr.Get(ctx, app.Namespace(), name)
		switch {
		case err == nil:
			kube.PreserveServiceIdentity(desired, current)
		case !errors.Is(err, model.ErrAppEntityNotFound):
			return err
		}
		obj, err := kube.ToUnstructured(desired)
		if err != nil {
			return fmt.Errorf("render service %s: %w", name, err)
		}
		if err := mgr.Save(ctx, obj); err != nil {
			return err
		}
	}

	existing, err := mgr.ListByApp(ctx, app, nil)
	if err != nil {
		return err
	}
	for i := range existing.Items {
		name := existing.Items[i].GetName()
		if want[name] {
			continue
		}
		if err := mgr.Delete(ctx, app.Namespace(), name, nil); err != nil {
			return err
		}
	}
	return nil
}

// DeleteProcessServices removes every Service of the app environment.
func (u *UseCase) DeleteProcessServices(ctx context.Context, appName string) error {
	app, err := u.Repos.App.GetByName(ctx, appName)
	if err != nil {
		return err
	}
	client, err := u.Registry.ClientForApp(ctx, u.Repos.App, app)
	if err != nil {
		return err
	}
	mgr := kube.NewEntityManager(client, kube.TypeService)
	existing, err := mgr.ListByApp(ctx, app, nil)
	if err != nil {
		return err
	}
	for i := range existing.Items {
		if err := mgr.Delete(ctx, app.Namespace(), existing.Items[i].GetName(), nil); err != nil {
			return err
		}
	}
	return nil
}

// appMapper resolves the mapper generation of the app's active config.
func (u *UseCase) appMapper(ctx context.Context, app *model.WlApp) (mapper.Mapper, error) {
	cfg, err := u.Repos.App.LatestConfig(ctx, app.UUID)
	if err != nil {
		return nil, err
	}
	return mapper.Get(cfg.MapperVersion(string(u.DefaultMapperVersion)))
}
