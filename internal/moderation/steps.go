package moderation

import (
	"context"
	"time"
)

// State names a point in the exile or release sequence.
type State string

const (
	StateRenamed              State = "renamed"
	StateRoleGranted          State = "role_granted"
	StateSecondaryRoleRevoked State = "secondary_role_revoked"
	StatePersisted            State = "persisted"
	StateNotified             State = "notified"
	StateAcknowledged         State = "acknowledged"
	StateNicknameRestored     State = "nickname_restored"
	StateRoleRevoked          State = "role_revoked"
	StateDeleted              State = "deleted"

	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

type StepResult int

const (
	StepOK StepResult = iota
	StepFailed
	StepSkipped
)

func (r StepResult) String() string {
	switch r {
	case StepOK:
		return "ok"
	case StepFailed:
		return "failed"
	default:
		return "skipped"
	}
}

type StepReport struct {
	State  State
	Result StepResult
}

// Outcome is the result of one pipeline run. Final is StateCompleted or
// StateAborted; Err is set only when the run aborted.
type Outcome struct {
	Final State
	Steps []StepReport
	Err   error
}

func (o Outcome) Completed() bool {
	return o.Final == StateCompleted
}

// Result returns how the step for s ended, and false if it never ran.
func (o Outcome) Result(s State) (StepResult, bool) {
	for _, st := range o.Steps {
		if st.State == s {
			return st.Result, true
		}
	}
	return 0, false
}

// step is one transition. A non-nil error aborts the run; platform failures
// report StepFailed with a nil error and the run continues.
type step struct {
	state State
	run   func(ctx context.Context) (StepResult, error)
}

func runSteps(ctx context.Context, pipeline string, steps []step) Outcome {
	start := time.Now()
	var out Outcome
	for _, s := range steps {
		res, err := s.run(ctx)
		out.Steps = append(out.Steps, StepReport{State: s.state, Result: res})
		if err != nil {
			out.Final = StateAborted
			out.Err = err
			break
		}
	}
	if out.Err == nil {
		out.Final = StateCompleted
	}

	pipelineRuns.WithLabelValues(pipeline, string(out.Final)).Inc()
	pipelineDuration.WithLabelValues(pipeline).Observe(time.Since(start).Seconds())
	return out
}

func resultOf(ok bool) StepResult {
	if ok {
		return StepOK
	}
	return StepFailed
}
