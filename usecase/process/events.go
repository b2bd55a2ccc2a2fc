package process

import "github.com/bkpaas/workloads/domain/model"

// EventType enumerates the process and instance change events a watch can
// deliver.
type EventType string

const (
	EvtProcessCreated         EventType = "process.created"
	EvtProcessRemoved         EventType = "process.removed"
	EvtProcessUpdatedReplicas EventType = "process.updated_replicas"
	EvtProcessUpdatedCommand  EventType = "process.updated_command"

	EvtInstCreated        EventType = "inst.created"
	EvtInstRemoved        EventType = "inst.removed"
	EvtInstRestarted      EventType = "inst.updated_restarted"
	EvtInstBecomeReady    EventType = "inst.updated_become_ready"
	EvtInstBecomeNotReady EventType = "inst.updated_become_not_ready"
)

// Event is one observed change of a process or one of its instances.
type Event struct {
	Type        EventType
	ProcessType string
	// Instance names the affected pod for inst.* events.
	Instance string
	// Replicas carries the new count on process.updated_replicas.
	Replicas int
	// Command carries the new command on process.updated_command.
	Command string
	// RestartCount carries the new count on inst.updated_restarted.
	RestartCount int32
}

// ProcEventsProducer diffs two process snapshots into an ordered event
// sequence: new processes first (with their instances), then updates in
// the after snapshot's order, then removals.
func ProcEventsProducer(before, after []model.Process) []Event {
	prev := map[string]*model.Process{}
	for i := range before {
		prev[before[i].Type] = &before[i]
	}

	var out []Event
	seen := map[string]bool{}
	for i := range after {
		cur := &after[i]
		seen[cur.Type] = true
		old, ok := prev[cur.Type]
		if !ok {
			out = append(out, Event{Type: EvtProcessCreated, ProcessType: cur.Type, Replicas: cur.Replicas})
			for _, inst := range cur.Instances {
				out = append(out, Event{Type: EvtInstCreated, ProcessType: cur.Type, Instance: inst.Name})
			}
			continue
		}
		if cur.Replicas != old.Replicas {
			out = append(out, Event{Type: EvtProcessUpdatedReplicas, ProcessType: cur.Type, Replicas: cur.Replicas})
		}
		if cur.Command != old.Command {
			out = append(out, Event{Type: EvtProcessUpdatedCommand, ProcessType: cur.Type, Command: cur.Command})
		}
		out = append(out, diffInstances(cur.Type, old.Instances, cur.Instances)...)
	}
	for i := range before {
		old := &before[i]
		if seen[old.Type] {
			continue
		}
		out = append(out, Event{Type: EvtProcessRemoved, ProcessType: old.Type})
		for _, inst := range old.Instances {
			out = append(out, Event{Type: EvtInstRemoved, ProcessType: old.Type, Instance: inst.Name})
		}
	}
	return out
}

func diffInstances(procType string, before, after []model.Instance) []Event {
	prev := map[string]*model.Instance{}
	for i := range before {
		prev[before[i].Name] = &before[i]
	}

	var out []Event
	seen := map[string]bool{}
	for i := range after {
		cur := &after[i]
		seen[cur.Name] = true
		old, ok := prev[cur.Name]
		if !ok {
			out = append(out, Event{Type: EvtInstCreated, ProcessType: procType, Instance: cur.Name})
			continue
		}
		if cur.RestartCount > old.RestartCount {
			out = append(out, Event{
				Type: EvtInstRestarted, ProcessType: procType,
				Instance: cur.Name, RestartCount: cur.RestartCount,
			})
		}
		if cur.Ready != old.Ready {
			typ := EvtInstBecomeNotReady
			if cur.Ready {
				typ = EvtInstBecomeReady
			}
			out = append(out, Event{Type: typ, ProcessType: procType, Instance: cur.Name})
		}
	}
	for i := range before {
		if !seen[before[i].Name] {
			out = append(out, Event{Type: EvtInstRemoved, ProcessType: procType, Instance: before[i].Name})
		}
	}
	return out
}
