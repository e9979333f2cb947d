package cultivation

import "fmt"

// ErrInvalidTaskTransition indicates a status change the task state machine forbids
type ErrInvalidTaskTransition struct {
	TaskID      string
	From        TaskStatus
	To          TaskStatus
	Description string
}

func (e *ErrInvalidTaskTransition) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("invalid transition for task %s: %s -> %s (%s)", e.TaskID, e.From, e.To, e.Description)
	}
	return fmt.Sprintf("invalid transition for task %s: %s -> %s", e.TaskID, e.From, e.To)
}
