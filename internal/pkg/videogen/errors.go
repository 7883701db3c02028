package videogen

import (
	"fmt"
	"strings"
)

// SelectionError means no provider could be resolved for a request, even
// after the correction pass. It carries the attempted identifier and the
// valid ones so operators never have to guess.
type SelectionError struct {
	Attempted string
	ValidIDs  []string
	Reason    string
}

func (e *SelectionError) Error() string {
	if e.Attempted == "" {
		return fmt.Sprintf("provider selection failed: %s (valid providers: %s)",
			e.Reason, strings.Join(e.ValidIDs, ", "))
	}
	return fmt.Sprintf("provider selection failed: %s: %q is not a valid provider (valid providers: %s)",
		e.Reason, e.Attempted, strings.Join(e.ValidIDs, ", "))
}

// GenerationError means the render gateway reported an explicit failure
// state for a task.
type GenerationError struct {
	TaskID string
	Reason string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("video generation failed: task %s: %s", e.TaskID, e.Reason)
}
