package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskpulse/internal/model"
)

// RoutineState describes where a routine task sits in its current period.
type RoutineState string

const (
	// RoutineIdle means the task is not a routine and has no pending occurrence.
	RoutineIdle RoutineState = "idle"
	// RoutineDue means the current period's occurrence has not been completed.
	RoutineDue RoutineState = "due"
	// RoutineCompleted means the current period's occurrence was completed
	// and the task is waiting for the next period to begin.
	RoutineCompleted RoutineState = "completed"
)

// RoutineScheduler decides period boundaries for recurring tasks. It
// holds no per-task state: everything is recomputed from persisted
// fields on each call. Daily periods are calendar days, weekly periods
// are calendar weeks starting on the configured weekday, monthly
// periods are calendar months, all in the configured location.
type RoutineScheduler struct {
	loc       *time.Location
	weekStart time.Weekday
}

func NewRoutineScheduler(loc *time.Location, weekStart time.Weekday) *RoutineScheduler {
	return &RoutineScheduler{loc: loc, weekStart: weekStart}
}

// PeriodStart returns the start of the period containing now for the
// given frequency.
func (s *RoutineScheduler) PeriodStart(freq model.Frequency, now time.Time) time.Time {
	t := now.In(s.loc)
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, s.loc)

	switch freq {
	case model.FrequencyWeekly:
		back := (int(midnight.Weekday()) - int(s.weekStart) + 7) % 7
		return midnight.AddDate(0, 0, -back)
	case model.FrequencyMonthly:
		return time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	default:
		return midnight
	}
}

// State reports the routine state of a task at the given instant.
func (s *RoutineScheduler) State(task *model.Task, now time.Time) RoutineState {
	if !task.IsRoutine || task.RoutineFrequency == nil {
		return RoutineIdle
	}
	start := s.PeriodStart(*task.RoutineFrequency, now)
	if task.Completed && task.CompletedAt != nil && !task.CompletedAt.In(s.loc).Before(start) {
		return RoutineCompleted
	}
	return RoutineDue
}

// NextDue returns the timestamp the routine's occurrence is anchored
// to: the RoutineTime anchor within the current period, or within the
// following period when the current occurrence is already completed.
func (s *RoutineScheduler) NextDue(task *model.Task, now time.Time) (time.Time, error) {
	if !task.IsRoutine || task.RoutineFrequency == nil {
		return time.Time{}, fmt.Errorf("task %d is not a routine", task.ID)
	}
	freq := *task.RoutineFrequency

	start := s.PeriodStart(freq, now)
	if s.State(task, now) == RoutineCompleted {
		start = s.nextPeriodStart(freq, start)
	}

	hour, minute, err := parseRoutineTime(task.RoutineTime)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), nil
}

// Rollover applies the lazy Completed→Due transition: when a completed
// routine's CompletedAt predates the current period, the completion
// flag and timestamp are reset so the occurrence is due again. At most
// one reset is applied per check; periods missed in between collapse
// rather than being backfilled. Reports whether the task was mutated.
func (s *RoutineScheduler) Rollover(task *model.Task, now time.Time) bool {
	if !task.IsRoutine || task.RoutineFrequency == nil {
		return false
	}
	if !task.Completed || task.CompletedAt == nil {
		return false
	}
	start := s.PeriodStart(*task.RoutineFrequency, now)
	if !task.CompletedAt.In(s.loc).Before(start) {
		return false
	}
	task.Completed = false
	task.CompletedAt = nil
	return true
}

func (s *RoutineScheduler) nextPeriodStart(freq model.Frequency, start time.Time) time.Time {
	switch freq {
	case model.FrequencyWeekly:
		return start.AddDate(0, 0, 7)
	case model.FrequencyMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// parseRoutineTime parses the "HH:MM" anchor. A nil anchor means the
// start of the period.
func parseRoutineTime(raw *string) (hour, minute int, err error) {
	if raw == nil || *raw == "" {
		return 0, 0, nil
	}
	parts := strings.Split(*raw, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid routine time %q, expected HH:MM", *raw)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", *raw)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", *raw)
	}
	return hour, minute, nil
}
