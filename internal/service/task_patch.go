package service

import (
	"time"

	"taskpulse/internal/model"
)

// TaskPatch is the closed set of fields a task update may touch. A nil
// field is "leave unchanged"; the engine never accepts arbitrary keys.
type TaskPatch struct {
	Title            *string
	Description      *string
	Completed        *bool
	Priority         *model.Priority
	DueDate          *time.Time
	CompletedAt      *time.Time
	IsRoutine        *bool
	RoutineFrequency *model.Frequency
	RoutineTime      *string
}

// IsEmpty reports whether the patch carries no recognized fields.
func (p *TaskPatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Completed == nil &&
		p.Priority == nil &&
		p.DueDate == nil &&
		p.CompletedAt == nil &&
		p.IsRoutine == nil &&
		p.RoutineFrequency == nil &&
		p.RoutineTime == nil
}
