package handler

import (
	"net/http"
	"strings"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/permission"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	repo      repository.UserRepositoryInterface
	boardRepo repository.BoardRepositoryInterface
	taskRepo  repository.TaskRepositoryInterface
}

func NewUserHandler(
	repo repository.UserRepositoryInterface,
	boardRepo repository.BoardRepositoryInterface,
	taskRepo repository.TaskRepositoryInterface,
) *UserHandler {
	return &UserHandler{
		repo:      repo,
		boardRepo: boardRepo,
		taskRepo:  taskRepo,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// DashboardResponse сводит показатели пользователя по доскам и задачам
type DashboardResponse struct {
	AdminBoards  int                `json:"admin_boards"`
	MemberBoards int                `json:"member_boards"`
	Tasks        int64              `json:"tasks"`
	Deadlines    []DashboardDeadline `json:"deadlines"`
}

type DashboardDeadline struct {
	Date    string `json:"date"`
	Project string `json:"project"`
	Task    string `json:"task"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	req.Email = strings.ToLower(req.Email)

	existing, err := h.repo.FindByEmail(c, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Hash error"})
		return
	}

	user := &model.User{
		ID:             uuid.New(),
		Email:          req.Email,
		Name:           req.Name,
		HashedPassword: string(hash),
	}

	if err := h.repo.Create(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create failed"})
		return
	}

	token, err := auth.GenerateToken(user.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token error"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token: token,
		User: UserResponse{
			ID:    user.ID.String(),
			Email: user.Email,
			Name:  user.Name,
		},
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	req.Email = strings.ToLower(req.Email)

	user, err := h.repo.FindByEmail(c, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(user.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token error"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User: UserResponse{
			ID:    user.ID.String(),
			Email: user.Email,
			Name:  user.Name,
		},
	})
}

// GetAll возвращает справочник пользователей для выбора участников доски
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	response := make([]UserResponse, len(users))
	for i, user := range users {
		response[i] = UserResponse{
			ID:    user.ID.String(),
			Email: user.Email,
			Name:  user.Name,
		}
	}

	c.JSON(http.StatusOK, response)
}

// Dashboard возвращает сводку: количество досок по ролям, назначенные задачи
// и ближайшие дедлайны
func (h *UserHandler) Dashboard(c *gin.Context) {
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

	boards, err := h.boardRepo.GetAccessible(c.Request.Context(), authenticatedUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}

	adminBoards := 0
	memberBoards := 0
	for i := range boards {
		if boards[i].OwnerID == authenticatedUserID || permission.IsAdmin(&boards[i], authenticatedUserID) {
			adminBoards++
			continue
		}
		for _, member := range boards[i].Members {
			if member.UserID == authenticatedUserID && member.Role == model.RoleMember {
				memberBoards++
				break
			}
		}
	}

	tasksCount, err := h.taskRepo.CountAssigned(c.Request.Context(), authenticatedUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count tasks"})
		return
	}

	upcoming, err := h.taskRepo.GetUpcomingDeadlines(c.Request.Context(), 5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve deadlines"})
		return
	}

	deadlines := make([]DashboardDeadline, len(upcoming))
	for i, task := range upcoming {
		deadlines[i] = DashboardDeadline{
			Date:    task.Deadline.Format(time.RFC3339),
			Project: task.Section.Board.Title,
			Task:    task.Title,
		}
	}

	c.JSON(http.StatusOK, DashboardResponse{
		AdminBoards:  adminBoards,
		MemberBoards: memberBoards,
		Tasks:        tasksCount,
		Deadlines:    deadlines,
	})
}
