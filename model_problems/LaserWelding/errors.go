package LaserWelding

import "fmt"

type Phase uint8

const (
	ForwardPhase Phase = iota
	AdjointPhase
)

func (ph Phase) String() string {
	if ph == AdjointPhase {
		return "adjoint"
	}
	return "forward"
}

// SolveDivergedError reports a failed nonlinear or linear solve at a time step
type SolveDivergedError struct {
	Step  int
	Phase Phase
	Err   error
}

func (e *SolveDivergedError) Error() string {
	return fmt.Sprintf("%s solve diverged at step %d: %v", e.Phase, e.Step, e.Err)
}

func (e *SolveDivergedError) Unwrap() error {
	return e.Err
}
