package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"taskpulse/internal/model"
	"taskpulse/internal/repository"
)

const (
	titleMinLen = 5
	titleMaxLen = 30
)

// TaskStore is the persistence surface the lifecycle controller needs.
// *repository.TaskRepository satisfies it; tests substitute an
// in-memory fake.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uint) (*model.Task, error)
	GetByOwner(ctx context.Context, ownerID uint) ([]model.Task, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) (*model.Task, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

var _ TaskStore = (*repository.TaskRepository)(nil)

// TaskService orchestrates task create/update/complete/delete against
// the store, enforcing the completed/completedAt pairing and the
// routine field cascade on every write.
type TaskService struct {
	store    TaskStore
	routines *RoutineScheduler
	clock    Clock
	logger   *zap.Logger
}

func NewTaskService(store TaskStore, routines *RoutineScheduler, clock Clock, logger *zap.Logger) *TaskService {
	return &TaskService{store: store, routines: routines, clock: clock, logger: logger}
}

// CreateTaskInput holds the fields accepted when creating a task.
type CreateTaskInput struct {
	Title            string
	Description      string
	Priority         model.Priority
	DueDate          *time.Time
	IsRoutine        bool
	RoutineFrequency *model.Frequency
	RoutineTime      *string
}

// Create validates the input and inserts a new pending task owned by
// ownerID. Routines start in the due state for the current period;
// their dueDate is ignored because the schedule derives from the
// recurrence fields.
func (s *TaskService) Create(ctx context.Context, ownerID uint, input CreateTaskInput) (*model.Task, error) {
	if ownerID == 0 {
		return nil, ErrUnauthorized
	}
	if n := utf8.RuneCountInString(input.Title); n < titleMinLen || n > titleMaxLen {
		return nil, validationErr("title", "must be between 5 and 30 characters")
	}
	if !input.Priority.Valid() {
		return nil, validationErr("priority", "unknown priority tier")
	}

	task := &model.Task{
		UserID:      ownerID,
		Title:       input.Title,
		Description: input.Description,
		Completed:   false,
		Priority:    input.Priority,
		CreatedAt:   s.clock.Now(),
		IsRoutine:   input.IsRoutine,
	}

	if input.IsRoutine {
		if input.RoutineFrequency == nil {
			return nil, validationErr("routineFrequency", "required for routine tasks")
		}
		if !input.RoutineFrequency.Valid() {
			return nil, validationErr("routineFrequency", "must be daily, weekly or monthly")
		}
		if _, _, err := parseRoutineTime(input.RoutineTime); err != nil {
			return nil, validationErr("routineTime", err.Error())
		}
		task.RoutineFrequency = input.RoutineFrequency
		task.RoutineTime = input.RoutineTime
	} else {
		if input.DueDate == nil {
			return nil, validationErr("dueDate", "required for one-off tasks")
		}
		task.DueDate = input.DueDate
	}

	if err := s.store.Create(ctx, task); err != nil {
		return nil, storeErr("insert", err)
	}
	return task, nil
}

// Update applies a partial field set to an owned task. A pending
// routine rollover is settled first, so a completion landing in a new
// period starts from the due state and gets a fresh timestamp. All
// recognized fields then land in a single store write so that the
// completed/completedAt pairing and the isRoutine=false cascade cannot
// be torn apart by a concurrent update.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID uint, patch TaskPatch) (*model.Task, error) {
	if ownerID == 0 {
		return nil, ErrUnauthorized
	}
	if patch.IsEmpty() {
		return nil, validationErr("", "no recognized fields to update")
	}

	task, err := s.fetchOwned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.persistRollover(ctx, task, s.clock.Now()); err != nil {
		return nil, err
	}

	fields, err := s.resolvePatch(task, patch)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, taskID, fields)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("update", err)
	}
	return updated, nil
}

// Complete marks an owned task done or not done, keeping completedAt in
// step. For routines the scheduler computes the next occurrence in the
// background so the response is not held up.
func (s *TaskService) Complete(ctx context.Context, ownerID, taskID uint, done bool) (*model.Task, error) {
	task, err := s.Update(ctx, ownerID, taskID, TaskPatch{Completed: &done})
	if err != nil {
		return nil, err
	}

	if done && task.IsRoutine {
		snapshot := *task
		go func() {
			next, err := s.routines.NextDue(&snapshot, s.clock.Now())
			if err != nil {
				s.logger.Warn("next occurrence not computed",
					zap.Uint("task_id", snapshot.ID), zap.Error(err))
				return
			}
			s.logger.Info("routine occurrence completed",
				zap.Uint("task_id", snapshot.ID),
				zap.String("frequency", string(*snapshot.RoutineFrequency)),
				zap.Time("next_due", next))
		}()
	}
	return task, nil
}

// Delete removes an owned task. A task that is already gone counts as
// success so concurrent deletes cannot fail each other.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uint) error {
	if ownerID == 0 {
		return ErrUnauthorized
	}

	task, err := s.store.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil
		}
		return storeErr("select", err)
	}
	if task.UserID != ownerID {
		return ErrForbidden
	}

	if _, err := s.store.Delete(ctx, taskID); err != nil {
		return storeErr("delete", err)
	}
	return nil
}

// List returns all tasks owned by ownerID, applying any pending routine
// rollover first so a completed routine from a previous period reads as
// due again.
func (s *TaskService) List(ctx context.Context, ownerID uint) ([]model.Task, error) {
	if ownerID == 0 {
		return nil, ErrUnauthorized
	}

	tasks, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeErr("select", err)
	}

	now := s.clock.Now()
	for i := range tasks {
		if err := s.persistRollover(ctx, &tasks[i], now); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// Get returns a single owned task, rolling its routine state over if a
// new period has begun since the last completion.
func (s *TaskService) Get(ctx context.Context, ownerID, taskID uint) (*model.Task, error) {
	if ownerID == 0 {
		return nil, ErrUnauthorized
	}

	task, err := s.fetchOwned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.persistRollover(ctx, task, s.clock.Now()); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) fetchOwned(ctx context.Context, ownerID, taskID uint) (*model.Task, error) {
	task, err := s.store.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("select", err)
	}
	if task.UserID != ownerID {
		return nil, ErrForbidden
	}
	return task, nil
}

// persistRollover writes the Completed→Due reset back to the store when
// the scheduler detects a crossed period boundary.
func (s *TaskService) persistRollover(ctx context.Context, task *model.Task, now time.Time) error {
	if !s.routines.Rollover(task, now) {
		return nil
	}
	if _, err := s.store.Update(ctx, task.ID, map[string]interface{}{
		"completed":    false,
		"completed_at": nil,
	}); err != nil {
		return storeErr("rollover", err)
	}
	s.logger.Debug("routine rolled over", zap.Uint("task_id", task.ID))
	return nil
}

// resolvePatch turns a validated patch into the column set for a single
// UPDATE. The completed/completedAt pairing and the routine cascade are
// resolved here so the write is atomic.
func (s *TaskService) resolvePatch(task *model.Task, patch TaskPatch) (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	if patch.Title != nil {
		if n := utf8.RuneCountInString(*patch.Title); n < titleMinLen || n > titleMaxLen {
			return nil, validationErr("title", "must be between 5 and 30 characters")
		}
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, validationErr("priority", "unknown priority tier")
		}
		fields["priority"] = *patch.Priority
	}
	if patch.DueDate != nil {
		fields["due_date"] = *patch.DueDate
	}

	// Resolve the will-be completed flag, then derive completedAt from
	// it. A completedAt supplied against a pending task is dropped
	// rather than breaking the pairing.
	completed := task.Completed
	if patch.Completed != nil {
		completed = *patch.Completed
	}
	if patch.Completed != nil || patch.CompletedAt != nil {
		fields["completed"] = completed
		switch {
		case !completed:
			fields["completed_at"] = nil
		case patch.CompletedAt != nil:
			fields["completed_at"] = *patch.CompletedAt
		case !task.Completed:
			fields["completed_at"] = s.clock.Now()
		}
	}

	routine := task.IsRoutine
	if patch.IsRoutine != nil {
		routine = *patch.IsRoutine
		fields["is_routine"] = routine
	}
	if !routine {
		// Detaching the scheduler nulls both recurrence columns in the
		// same write, overriding any values also present in the patch.
		if patch.IsRoutine != nil {
			fields["routine_frequency"] = nil
			fields["routine_time"] = nil
		} else if patch.RoutineFrequency != nil || patch.RoutineTime != nil {
			return nil, validationErr("isRoutine", "recurrence fields require a routine task")
		}
	} else {
		freq := task.RoutineFrequency
		if patch.RoutineFrequency != nil {
			if !patch.RoutineFrequency.Valid() {
				return nil, validationErr("routineFrequency", "must be daily, weekly or monthly")
			}
			freq = patch.RoutineFrequency
			fields["routine_frequency"] = *patch.RoutineFrequency
		}
		if freq == nil {
			return nil, validationErr("routineFrequency", "required for routine tasks")
		}
		if patch.RoutineTime != nil {
			if _, _, err := parseRoutineTime(patch.RoutineTime); err != nil {
				return nil, validationErr("routineTime", err.Error())
			}
			fields["routine_time"] = *patch.RoutineTime
		}
	}

	return fields, nil
}
