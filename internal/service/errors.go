package service

import (
	"fmt"

	"vidops/internal/model/video"
)

// PipelineError wraps a stage failure so callers see exactly where the
// pipeline stopped and why. Verbose by intent: this is an internal
// operations tool and operators debug from these messages.
type PipelineError struct {
	Stage video.Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func stageErr(stage video.Stage, err error) *PipelineError {
	return &PipelineError{Stage: stage, Err: err}
}
