package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"taskpulse/internal/model"
	"taskpulse/internal/repository"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	assert.NoError(t, err)

	return gormDB, mock
}

func taskColumns() []string {
	return []string{"id", "user_id", "title", "description", "completed", "priority",
		"due_date", "created_at", "completed_at", "is_routine", "routine_frequency", "routine_time"}
}

func TestTaskRepository_Create(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	task := &model.Task{
		UserID:    1,
		Title:     "Water the plants",
		Priority:  model.PriorityMedium,
		CreatedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	// Act
	err := taskRepo.Create(context.Background(), task)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, uint(1), task.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetByID_Found(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	createdAt := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .*`).
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows(taskColumns()).
			AddRow(1, 1, "Water the plants", "", false, "medium", nil, createdAt, nil, false, nil, nil))

	// Act
	task, err := taskRepo.GetByID(context.Background(), 1)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, task)
	assert.Equal(t, uint(1), task.ID)
	assert.Equal(t, "Water the plants", task.Title)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetByID_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .*`).
		WithArgs(99, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	task, err := taskRepo.GetByID(context.Background(), 99)

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetByOwner(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	createdAt := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE user_id = .*`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(taskColumns()).
			AddRow(1, 1, "Water the plants", "", false, "medium", nil, createdAt, nil, false, nil, nil).
			AddRow(2, 1, "Morning stretch", "", false, "low", nil, createdAt, nil, true, "daily", "09:00"))

	// Act
	tasks, err := taskRepo.GetByOwner(context.Background(), 1)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.True(t, tasks[1].IsRoutine)
	assert.Equal(t, model.FrequencyDaily, *tasks[1].RoutineFrequency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Update(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	createdAt := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	completedAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .*`).
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows(taskColumns()).
			AddRow(1, 1, "Water the plants", "", true, "medium", nil, createdAt, completedAt, false, nil, nil))

	// Act
	task, err := taskRepo.Update(context.Background(), 1, map[string]interface{}{
		"completed":    true,
		"completed_at": completedAt,
	})

	// Assert
	assert.NoError(t, err)
	assert.True(t, task.Completed)
	assert.NotNil(t, task.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Update_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	task, err := taskRepo.Update(context.Background(), 99, map[string]interface{}{"completed": true})

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	deleted, err := taskRepo.Delete(context.Background(), 1)

	// Assert
	assert.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete_AbsentRow(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	deleted, err := taskRepo.Delete(context.Background(), 99)

	// Assert
	assert.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
