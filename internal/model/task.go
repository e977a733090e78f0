package model

import "time"

// Priority tiers in descending order of importance.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists all tiers in fixed display order, most important first.
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Frequency is the recurrence cadence of a routine task.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Task is a single to-do item. A task flagged IsRoutine recurs on its
// RoutineFrequency: the same row is reused across periods, with Completed
// and CompletedAt reset at each period rollover. History therefore lives
// in CompletedAt timestamps, not in row counts.
type Task struct {
	ID               uint     `gorm:"primaryKey"`
	UserID           uint     `gorm:"not null;index"`
	Title            string   `gorm:"size:255;not null"`
	Description      string   `gorm:"type:text"`
	Completed        bool     `gorm:"not null;default:false"`
	Priority         Priority `gorm:"size:16;not null;default:low"`
	DueDate          *time.Time
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	CompletedAt      *time.Time
	IsRoutine        bool       `gorm:"not null;default:false"`
	RoutineFrequency *Frequency `gorm:"size:16"`
	RoutineTime      *string    `gorm:"size:5"` // "HH:MM" anchor within the period

	User User `gorm:"foreignKey:UserID"`
}
