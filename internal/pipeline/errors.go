package pipeline

import "fmt"

// Pipeline stages, in execution order.
const (
	StageHistory     = "history"
	StageReformulate = "reformulate"
	StageRetrieve    = "retrieve"
	StageSynthesize  = "synthesize"
)

// PipelineError reports which stage of answering failed. When it is returned,
// no history has been written for the turn.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// PersistenceError reports that an answer was produced but recording the
// exchange failed. The answer is still valid and returned to the caller.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist exchange: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
