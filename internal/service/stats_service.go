package service

import (
	"context"
	"time"

	"taskpulse/internal/model"
)

// streakHorizon bounds how far back the streak walk goes. Streaks
// longer than this stop counting rather than failing.
const streakHorizon = 100

// DefaultTimeseriesDays is the completion chart's default window.
const DefaultTimeseriesDays = 7

// DayCount is one point of the completion timeseries.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD in the reference timezone
	Count int    `json:"count"`
}

// PriorityCount is a pending-task count for one priority tier.
type PriorityCount struct {
	Priority model.Priority `json:"priority"`
	Count    int            `json:"count"`
}

// Summary aggregates a user's headline numbers.
type Summary struct {
	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`
	PendingTasks   int `json:"pendingTasks"`
	Streak         int `json:"streak"`
}

// RoutineStats counts a user's routines per cadence.
type RoutineStats struct {
	DailyTotal     int `json:"dailyTotal"`
	DailyCompleted int `json:"dailyCompleted"`
	WeeklyTotal    int `json:"weeklyTotal"`
	MonthlyTotal   int `json:"monthlyTotal"`
}

// StatsService derives temporal analytics from a user's task history.
// All queries are read-only and scoped per user, so they need no
// coordination with each other.
type StatsService struct {
	store    TaskStore
	routines *RoutineScheduler
	clock    Clock
	loc      *time.Location
}

func NewStatsService(store TaskStore, routines *RoutineScheduler, clock Clock, loc *time.Location) *StatsService {
	return &StatsService{store: store, routines: routines, clock: clock, loc: loc}
}

// Streak returns the number of consecutive calendar days ending today
// on which the user completed at least one task. A day without a
// completion breaks the streak; a streak whose most recent day is not
// today counts as zero.
func (s *StatsService) Streak(ctx context.Context, ownerID uint) (int, error) {
	tasks, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		return 0, storeErr("select", err)
	}
	return s.streakFrom(tasks), nil
}

func (s *StatsService) streakFrom(tasks []model.Task) int {
	days := make(map[string]bool)
	for _, task := range tasks {
		if task.Completed && task.CompletedAt != nil {
			days[s.dayKey(*task.CompletedAt)] = true
		}
	}

	today := s.startOfDay(s.clock.Now())
	if !days[s.dayKey(today)] {
		return 0
	}

	streak := 1
	for streak < streakHorizon {
		prev := today.AddDate(0, 0, -streak)
		if !days[s.dayKey(prev)] {
			break
		}
		streak++
	}
	return streak
}

// Timeseries returns completion counts for the last `days` calendar
// days including today, oldest first. Every day in the window is
// present, zero-filled, so charts render without gaps.
func (s *StatsService) Timeseries(ctx context.Context, ownerID uint, days int) ([]DayCount, error) {
	if days <= 0 {
		days = DefaultTimeseriesDays
	}

	tasks, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeErr("select", err)
	}

	counts := make(map[string]int)
	for _, task := range tasks {
		if task.Completed && task.CompletedAt != nil {
			counts[s.dayKey(*task.CompletedAt)]++
		}
	}

	series := make([]DayCount, 0, days)
	start := s.startOfDay(s.clock.Now()).AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		key := s.dayKey(day)
		series = append(series, DayCount{Date: key, Count: counts[key]})
	}
	return series, nil
}

// PriorityBuckets counts the user's pending tasks per priority tier.
// Every tier appears in fixed order, zero tiers included.
func (s *StatsService) PriorityBuckets(ctx context.Context, ownerID uint) ([]PriorityCount, error) {
	tasks, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeErr("select", err)
	}

	pending := make(map[model.Priority]int)
	for _, task := range tasks {
		if !task.Completed {
			pending[task.Priority]++
		}
	}

	buckets := make([]PriorityCount, 0, len(model.Priorities))
	for _, tier := range model.Priorities {
		buckets = append(buckets, PriorityCount{Priority: tier, Count: pending[tier]})
	}
	return buckets, nil
}

// Summarize returns the user's headline totals along with the current
// streak.
func (s *StatsService) Summarize(ctx context.Context, ownerID uint) (*Summary, error) {
	tasks, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeErr("select", err)
	}

	summary := &Summary{TotalTasks: len(tasks), Streak: s.streakFrom(tasks)}
	for _, task := range tasks {
		if task.Completed {
			summary.CompletedTasks++
		} else {
			summary.PendingTasks++
		}
	}
	return summary, nil
}

// Routines counts the user's routines per cadence and how many daily
// routines were completed within the current day.
func (s *StatsService) Routines(ctx context.Context, ownerID uint) (*RoutineStats, error) {
	tasks, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeErr("select", err)
	}

	now := s.clock.Now()
	stats := &RoutineStats{}
	for i := range tasks {
		task := &tasks[i]
		if !task.IsRoutine || task.RoutineFrequency == nil {
			continue
		}
		switch *task.RoutineFrequency {
		case model.FrequencyDaily:
			stats.DailyTotal++
			if s.routines.State(task, now) == RoutineCompleted {
				stats.DailyCompleted++
			}
		case model.FrequencyWeekly:
			stats.WeeklyTotal++
		case model.FrequencyMonthly:
			stats.MonthlyTotal++
		}
	}
	return stats, nil
}

func (s *StatsService) startOfDay(t time.Time) time.Time {
	year, month, day := t.In(s.loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, s.loc)
}

func (s *StatsService) dayKey(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02")
}
