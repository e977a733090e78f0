package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskpulse/internal/middleware"
	"taskpulse/internal/model"
	"taskpulse/internal/service"
)

type TaskHandler struct {
	tasks    *service.TaskService
	routines *service.RoutineScheduler
	clock    service.Clock
}

func NewTaskHandler(tasks *service.TaskService, routines *service.RoutineScheduler, clock service.Clock) *TaskHandler {
	return &TaskHandler{tasks: tasks, routines: routines, clock: clock}
}

// createTaskRequest carries the fields accepted when creating a task
type createTaskRequest struct {
	Title            string           `json:"title" binding:"required"`
	Description      string           `json:"description"`
	Priority         model.Priority   `json:"priority" binding:"required"`
	DueDate          *time.Time       `json:"dueDate"`
	IsRoutine        bool             `json:"isRoutine"`
	RoutineFrequency *model.Frequency `json:"routineFrequency"`
	RoutineTime      *string          `json:"routineTime"`
}

// updateTaskRequest is the closed set of updatable fields; unknown keys
// are rejected at decode time
type updateTaskRequest struct {
	Title            *string          `json:"title"`
	Description      *string          `json:"description"`
	Completed        *bool            `json:"completed"`
	Priority         *model.Priority  `json:"priority"`
	DueDate          *time.Time       `json:"dueDate"`
	CompletedAt      *time.Time       `json:"completedAt"`
	IsRoutine        *bool            `json:"isRoutine"`
	RoutineFrequency *model.Frequency `json:"routineFrequency"`
	RoutineTime      *string          `json:"routineTime"`
}

type completeTaskRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// taskResponse is the task shape returned to the UI layer
type taskResponse struct {
	ID               uint             `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	Completed        bool             `json:"completed"`
	Priority         model.Priority   `json:"priority"`
	DueDate          *time.Time       `json:"dueDate,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	CompletedAt      *time.Time       `json:"completedAt,omitempty"`
	IsRoutine        bool             `json:"isRoutine"`
	RoutineFrequency *model.Frequency `json:"routineFrequency,omitempty"`
	RoutineTime      *string          `json:"routineTime,omitempty"`
	RoutineState     string           `json:"routineState,omitempty"`
	NextDueAt        *time.Time       `json:"nextDueAt,omitempty"`
}

func (h *TaskHandler) toResponse(task *model.Task) taskResponse {
	resp := taskResponse{
		ID:               task.ID,
		Title:            task.Title,
		Description:      task.Description,
		Completed:        task.Completed,
		Priority:         task.Priority,
		DueDate:          task.DueDate,
		CreatedAt:        task.CreatedAt,
		CompletedAt:      task.CompletedAt,
		IsRoutine:        task.IsRoutine,
		RoutineFrequency: task.RoutineFrequency,
		RoutineTime:      task.RoutineTime,
	}

	if task.IsRoutine {
		now := h.clock.Now()
		resp.RoutineState = string(h.routines.State(task, now))
		if next, err := h.routines.NextDue(task, now); err == nil {
			resp.NextDueAt = &next
		}
	}
	return resp
}

// Create handles POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), ownerID, service.CreateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		Priority:         req.Priority,
		DueDate:          req.DueDate,
		IsRoutine:        req.IsRoutine,
		RoutineFrequency: req.RoutineFrequency,
		RoutineTime:      req.RoutineTime,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(task))
}

// GetAll handles GET /tasks
func (h *TaskHandler) GetAll(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), ownerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	responses := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, h.toResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": responses})
}

// GetByID handles GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), ownerID, taskID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(task))
}

// Update handles PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), ownerID, taskID, service.TaskPatch{
		Title:            req.Title,
		Description:      req.Description,
		Completed:        req.Completed,
		Priority:         req.Priority,
		DueDate:          req.DueDate,
		CompletedAt:      req.CompletedAt,
		IsRoutine:        req.IsRoutine,
		RoutineFrequency: req.RoutineFrequency,
		RoutineTime:      req.RoutineTime,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(task))
}

// Complete handles POST /tasks/:id/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	var req completeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.tasks.Complete(c.Request.Context(), ownerID, taskID, *req.Completed)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(task))
}

// Delete handles DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), ownerID, taskID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func parseTaskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return 0, false
	}
	return uint(id), true
}
