package plan

import "fmt"

// ErrPlanNotFound represents errors when a production plan cannot be found
type ErrPlanNotFound struct {
	ID string
}

func (e *ErrPlanNotFound) Error() string {
	return fmt.Sprintf("production plan not found: id=%s", e.ID)
}

// ErrGroupNotFound is returned when the plan's owning group is missing
type ErrGroupNotFound struct {
	PlanID  string
	GroupID string
}

func (e *ErrGroupNotFound) Error() string {
	return fmt.Sprintf("group %s of plan %s not found", e.GroupID, e.PlanID)
}
