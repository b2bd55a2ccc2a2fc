package release

import (
	"fmt"
	"time"

	"github.com/bkpaas/workloads/domain/model"
)

// Step names per phase. The set a deployment gets depends on whether a
// build is required; image-only deploys skip every build step.
var (
	preparationSteps = []string{"parse_app_processes", "apply_cluster_binding"}
	buildSteps       = []string{"upload_source", "run_slugbuilder", "collect_artifact"}
	releaseSteps     = []string{"run_pre_release_hook", "write_release", "sync_workloads", "wait_ready"}
)

// InitialPhases renders the pending phase skeleton of a new deployment.
// Build-phase steps are marked skipped when the deploy carries a ready
// image.
func InitialPhases(needBuild bool) []model.DeployPhase {
	stepsOf := func(names []string, status string) []model.DeployStep {
		steps := make([]model.DeployStep, 0, len(names))
		for _, n := range names {
			steps = append(steps, model.DeployStep{Name: n, Status: status})
		}
		return steps
	}
	buildStatus := model.StepPending
	if !needBuild {
		buildStatus = model.StepSkipped
	}
	return []model.DeployPhase{
		{Type: model.PhasePreparation, Status: model.StepPending, Steps: stepsOf(preparationSteps, model.StepPending)},
		{Type: model.PhaseBuild, Status: buildStatus, Steps: stepsOf(buildSteps, buildStatus)},
		{Type: model.PhaseRelease, Status: model.StepPending, Steps: stepsOf(releaseSteps, model.StepPending)},
	}
}

// StartPhase marks a phase running. Phases are totally ordered: starting
// one requires every earlier phase to be terminal.
func StartPhase(d *model.Deployment, phaseType string) error {
	for i := range d.Phases {
		p := &d.Phases[i]
		if p.Type != phaseType {
			if !phaseTerminal(p.Status) {
				return fmt.Errorf("phase %s is still %s", p.Type, p.Status)
			}
			continue
		}
		now := time.Now()
		p.Status = model.StepRunning
		p.StartTime = &now
		return nil
	}
	return fmt.Errorf("unknown phase %q", phaseType)
}

// FinishPhase marks a phase terminal with the given status. A failed phase
// cascades: every later non-terminal phase and step becomes skipped.
func FinishPhase(d *model.Deployment, phaseType, status string) error {
	idx := -1
	for i := range d.Phases {
		if d.Phases[i].Type == phaseType {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("unknown phase %q", phaseType)
	}
	now := time.Now()
	p := &d.Phases[idx]
	p.Status = status
	p.CompleteTime = &now
	for i := range p.Steps {
		if !phaseTerminal(p.Steps[i].Status) {
			p.Steps[i].Status = model.StepSkipped
		}
	}
	if status != model.StepFailed {
		return nil
	}
	for i := idx + 1; i < len(d.Phases); i++ {
		later := &d.Phases[i]
		if !phaseTerminal(later.Status) {
			later.Status = model.StepSkipped
		}
		for j := range later.Steps {
			if !phaseTerminal(later.Steps[j].Status) {
				later.Steps[j].Status = model.StepSkipped
			}
		}
	}
	return nil
}

// StartStep marks one step of a running phase as running.
func StartStep(d *model.Deployment, phaseType, stepName string) error {
	return setStep(d, phaseType, stepName, func(s *model.DeployStep) {
		now := time.Now()
		s.Status = model.StepRunning
		s.StartTime = &now
	})
}

// FinishStep marks one step terminal.
func FinishStep(d *model.Deployment, phaseType, stepName, status string) error {
	return setStep(d, phaseType, stepName, func(s *model.DeployStep) {
		now := time.Now()
		s.Status = status
		s.CompleteTime = &now
	})
}

func setStep(d *model.Deployment, phaseType, stepName string, apply func(*model.DeployStep)) error {
	for i := range d.Phases {
		if d.Phases[i].Type != phaseType {
			continue
		}
		for j := range d.Phases[i].Steps {
			if d.Phases[i].Steps[j].Name == stepName {
				apply(&d.Phases[i].Steps[j])
				return nil
			}
		}
		return fmt.Errorf("phase %s has no step %q", phaseType, stepName)
	}
	return fmt.Errorf("unknown phase %q", phaseType)
}

func phaseTerminal(status string) bool {
	switch status {
	case model.StepSuccessful, model.StepFailed, model.StepSkipped:
		return true
	}
	return false
}
