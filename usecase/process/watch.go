package process

import (
	"context"

	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/bkpaas/workloads/adapters/kube"
	"github.com/bkpaas/workloads/domain/model"
)

// WatchInput opens a process watch from the resource versions a previous
// List returned.
type WatchInput struct {
	AppName string
	RVProc  string
	RVInst  string
	// Operator is the acting user, used for rate limiting watch opens.
	// Empty skips the guard.
	Operator string
}

// Watch streams process and instance events derived from two parallel
// watches on the app's Deployments and Pods. The channel closes when the
// context is cancelled or the API server ends either stream.
func (u *UseCase) Watch(ctx context.Context, in *WatchInput) (<-chan Event, error) {
	if u.ActionBucket != nil && in.Operator != "" {
		if err := u.ActionBucket.Acquire(ctx, "watch:"+in.Operator); err != nil {
			return nil, err
		}
	}
	app, err := u.Repos.App.GetByName(ctx, in.AppName)
	if err != nil {
		return nil, err
	}
	client, err := u.Registry.ClientForApp(ctx, u.Repos.App, app)
	if err != nil {
		return nil, err
	}
	procWatch, err := kube.NewEntityManager(client, kube.TypeDeployment).Watch(ctx, app, nil, in.RVProc)
	if err != nil {
		return nil, err
	}
	instWatch, err := kube.NewEntityManager(client, kube.TypePod).Watch(ctx, app, nil, in.RVInst)
	if err != nil {
		procWatch.Stop()
		return nil, err
	}

	out := make(chan Event, 32)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return pumpProcessEvents(ctx, procWatch, out) })
	g.Go(func() error { return pumpInstanceEvents(ctx, instWatch, out) })
	go func() {
		// Stream close or cancellation is a clean end of the watch.
		_ = g.Wait()
		procWatch.Stop()
		instWatch.Stop()
		close(out)
	}()
	return out, nil
}

func pumpProcessEvents(ctx context.Context, w watch.Interface, out chan<- Event) error {
	known := map[string]*model.Process{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-w.ResultChan():
			if !ok {
				return nil
			}
			obj, ok := evt.Object.(*unstructured.Unstructured)
			if !ok {
				continue
			}
			proc, err := deploymentToProcess(obj)
			if err != nil || proc.Type == "" {
				continue
			}
			for _, e := range processEvents(evt.Type, known, proc) {
				select {
				case out <- e:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

func processEvents(typ watch.EventType, known map[string]*model.Process, cur *model.Process) []Event {
	switch typ {
	case watch.Added:
		known[cur.Type] = cur
		return []Event{{Type: EvtProcessCreated, ProcessType: cur.Type, Replicas: cur.Replicas}}
	case watch.Deleted:
		delete(known, cur.Type)
		return []Event{{Type: EvtProcessRemoved, ProcessType: cur.Type}}
	case watch.Modified:
		old := known[cur.Type]
		known[cur.Type] = cur
		if old == nil {
			return []Event{{Type: EvtProcessCreated, ProcessType: cur.Type, Replicas: cur.Replicas}}
		}
		var out []Event
		if cur.Replicas != old.Replicas {
			out = append(out, Event{Type: EvtProcessUpdatedReplicas, ProcessType: cur.Type, Replicas: cur.Replicas})
		}
		if cur.Command != old.Command {
			out = append(out, Event{Type: EvtProcessUpdatedCommand, ProcessType: cur.Type, Command: cur.Command})
		}
		return out
	}
	return nil
}

func pumpInstanceEvents(ctx context.Context, w watch.Interface, out chan<- Event) error {
	known := map[string]*model.Instance{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-w.ResultChan():
			if !ok {
				return nil
			}
			obj, ok := evt.Object.(*unstructured.Unstructured)
			if !ok {
				continue
			}
			inst, err := podToInstance(obj)
			if err != nil || inst.ProcessType == "" {
				continue
			}
			for _, e := range instanceEvents(evt.Type, known, inst) {
				select {
				case out <- e:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

func instanceEvents(typ watch.EventType, known map[string]*model.Instance, cur *model.Instance) []Event {
	switch typ {
	case watch.Added:
		known[cur.Name] = cur
		return []Event{{Type: EvtInstCreated, ProcessType: cur.ProcessType, Instance: cur.Name}}
	case watch.Deleted:
		delete(known, cur.Name)
		return []Event{{Type: EvtInstRemoved, ProcessType: cur.ProcessType, Instance: cur.Name}}
	case watch.Modified:
		old := known[cur.Name]
		known[cur.Name] = cur
		if old == nil {
			return []Event{{Type: EvtInstCreated, ProcessType: cur.ProcessType, Instance: cur.Name}}
		}
		var out []Event
		if cur.RestartCount > old.RestartCount {
			out = append(out, Event{
				Type: EvtInstRestarted, ProcessType: cur.ProcessType,
				Instance: cur.Name, RestartCount: cur.RestartCount,
			})
		}
		if cur.Ready != old.Ready {
			t := EvtInstBecomeNotReady
			if cur.Ready {
				t = EvtInstBecomeReady
			}
			out = append(out, Event{Type: t, ProcessType: cur.ProcessType, Instance: cur.Name})
		}
		return out
	}
	return nil
}
