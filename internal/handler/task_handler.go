package handler

import (
	"errors"
	"net/http"
	"time"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/ordering"
	"taskboard/internal/permission"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	taskRepo    repository.TaskRepositoryInterface
	sectionRepo repository.SectionRepositoryInterface
	boardRepo   repository.BoardRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	locks       *ordering.Locks
}

func NewTaskHandler(
	taskRepo repository.TaskRepositoryInterface,
	sectionRepo repository.SectionRepositoryInterface,
	boardRepo repository.BoardRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	locks *ordering.Locks,
) *TaskHandler {
	return &TaskHandler{
		taskRepo:    taskRepo,
		sectionRepo: sectionRepo,
		boardRepo:   boardRepo,
		userRepo:    userRepo,
		locks:       locks,
	}
}

// CreateTaskRequest представляет запрос на создание задачи
type CreateTaskRequest struct {
	SectionID string     `json:"section_id" binding:"required,uuid"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Deadline  *time.Time `json:"deadline"`
}

// UpdateTaskRequest представляет запрос на обновление задачи
type UpdateTaskRequest struct {
	Title      *string    `json:"title"`
	Content    *string    `json:"content"`
	AssignedTo *string    `json:"assigned_to"`
	Deadline   *time.Time `json:"deadline"`
}

// MoveTaskRequest представляет запрос на перемещение задачи в другую секцию
type MoveTaskRequest struct {
	SectionID string `json:"section_id" binding:"required,uuid"`
}

type ReorderTasksRequest struct {
	// Tasks holds the section's full task set, listed from
	// most-recently-displayed to least.
	Tasks []string `json:"tasks" binding:"required"`
}

// TaskResponse представляет ответ с данными задачи
type TaskResponse struct {
	ID           string  `json:"id"`
	SectionID    string  `json:"section_id"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	Position     int     `json:"position"`
	AssignedTo   *string `json:"assigned_to,omitempty"`
	AssigneeName *string `json:"assignee_name,omitempty"`
	Deadline     *string `json:"deadline,omitempty"`
}

func taskResponse(task *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:        task.ID.String(),
		SectionID: task.SectionID.String(),
		Title:     task.Title,
		Content:   task.Content,
		Position:  task.Position,
	}
	if task.AssignedTo != nil {
		assignedTo := task.AssignedTo.String()
		resp.AssignedTo = &assignedTo
		if task.Assignee.Name != "" {
			name := task.Assignee.Name
			resp.AssigneeName = &name
		}
	}
	if task.Deadline != nil {
		deadline := task.Deadline.Format(time.RFC3339)
		resp.Deadline = &deadline
	}
	return resp
}

// authorizeSection разрешает доступ к секции через права её доски
func (h *TaskHandler) authorizeSection(c *gin.Context, sectionID, userID uuid.UUID, action permission.Action) *model.Section {
	section, err := h.sectionRepo.GetByID(c.Request.Context(), sectionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve section"})
		return nil
	}

	if section == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Section not found"})
		return nil
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), section.BoardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return nil
	}

	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return nil
	}

	if err := permission.Authorize(board, userID, action); err != nil {
		if errors.Is(err, permission.ErrNotAMember) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this board"})
		} else {
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to perform this action"})
		}
		return nil
	}

	return section
}

// Create создает новую задачу в конце секции
func (h *TaskHandler) Create(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	authenticatedUserID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	sectionID, err := uuid.Parse(req.SectionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid section ID format"})
		return
	}

	section := h.authorizeSection(c, sectionID, authenticatedUserID, permission.ActionUpdate)
	if section == nil {
		return
	}

	task := &model.Task{
		SectionID: sectionID,
		Title:     req.Title,
		Content:   req.Content,
		Deadline:  req.Deadline,
	}

	unlock := h.locks.Lock(ordering.TaskScope(sectionID))
	defer unlock()

	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, taskResponse(task))
}

// GetByID возвращает задачу по идентификатору
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	authenticatedUserID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	if h.authorizeSection(c, task.SectionID, authenticatedUserID, permission.ActionRead) == nil {
		return
	}

	c.JSON(http.StatusOK, taskResponse(task))
}

// Update обновляет поля задачи, включая назначенного пользователя и дедлайн
func (h *TaskHandler) Update(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	authenticatedUserID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	if h.authorizeSection(c, task.SectionID, authenticatedUserID, permission.ActionUpdate) == nil {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Content != nil {
		task.Content = *req.Content
	}
	if req.AssignedTo != nil {
		if *req.AssignedTo == "" {
			task.AssignedTo = nil
		} else {
			assigneeID, err := uuid.Parse(*req.AssignedTo)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
				return
			}

			// Назначать можно только существующего пользователя
			user, err := h.userRepo.GetByID(c.Request.Context(), assigneeID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
				return
			}
			if user == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			task.AssignedTo = &assigneeID
		}
	}
	if req.Deadline != nil {
		task.Deadline = req.Deadline
	}

	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, taskResponse(task))
}

// Delete удаляет задачу и уплотняет позиции оставшихся задач секции
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	authenticatedUserID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	if h.authorizeSection(c, task.SectionID, authenticatedUserID, permission.ActionUpdate) == nil {
		return
	}

	unlock := h.locks.Lock(ordering.TaskScope(task.SectionID))
	defer unlock()

	if err := h.taskRepo.DeleteCompact(c.Request.Context(), taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// Move перемещает задачу в конец другой секции той же доски
func (h *TaskHandler) Move(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	authenticatedUserID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	destSectionID, err := uuid.Parse(req.SectionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid section ID format"})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	source := h.authorizeSection(c, task.SectionID, authenticatedUserID, permission.ActionUpdate)
	if source == nil {
		return
	}

	dest, err := h.sectionRepo.GetByID(c.Request.Context(), destSectionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve section"})
		return
	}

	if dest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Section not found"})
		return
	}

	if dest.BoardID != source.BoardID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Destination section must belong to the same board"})
		return
	}

	unlock := h.locks.LockBoth(ordering.TaskScope(task.SectionID), ordering.TaskScope(destSectionID))
	defer unlock()

	if err := h.taskRepo.Move(c.Request.Context(), taskID, destSectionID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task moved successfully"})
}

// Reorder переписывает порядок задач внутри секции
func (h *TaskHandler) Reorder(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	authenticatedUserID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid section ID format"})
		return
	}

	var req ReorderTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	orderedIDs, ok := parseIDList(c, req.Tasks)
	if !ok {
		return
	}

	if h.authorizeSection(c, sectionID, authenticatedUserID, permission.ActionUpdate) == nil {
		return
	}

	unlock := h.locks.Lock(ordering.TaskScope(sectionID))
	defer unlock()

	current, err := h.taskRepo.GetIDsBySectionID(c.Request.Context(), sectionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	assignments, err := ordering.Assign(current, orderedIDs)
	if err != nil {
		respondOrderingError(c, err)
		return
	}

	if err := h.taskRepo.UpdatePositions(c.Request.Context(), assignments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tasks reordered successfully"})
}
