package handler

import (
	"errors"
	"net/http"

	"taskboard/internal/middleware"
	"taskboard/internal/permission"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MemberHandler struct {
	boardRepo  repository.BoardRepositoryInterface
	userRepo   repository.UserRepositoryInterface
	memberRepo repository.MemberRepositoryInterface
}

func NewMemberHandler(
	boardRepo repository.BoardRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	memberRepo repository.MemberRepositoryInterface,
) *MemberHandler {
	return &MemberHandler{
		boardRepo:  boardRepo,
		userRepo:   userRepo,
		memberRepo: memberRepo,
	}
}

// AddMemberRequest представляет запрос на добавление участника доски
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role" binding:"required,oneof=Admin Member Viewer"`
}

// MemberResponse представляет информацию об участнике доски
type MemberResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AddMember добавляет пользователя к доске с указанной ролью
func (h *MemberHandler) AddMember(c *gin.Context) {
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

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role or user ID"})
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}

	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	if err := permission.Authorize(board, authenticatedUserID, permission.ActionUpdate); err != nil {
		if errors.Is(err, permission.ErrNotAMember) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this board"})
		} else {
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to add members"})
		}
		return
	}

	newMemberID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	// Проверяем, что приглашаемый пользователь существует
	user, err := h.userRepo.GetByID(c.Request.Context(), newMemberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.memberRepo.Add(c.Request.Context(), boardID, newMemberID, req.Role); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyMember):
			c.JSON(http.StatusBadRequest, gin.H{"error": "User is already a member of this board"})
		case errors.Is(err, repository.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member added successfully"})
}

// GetMembers возвращает участников доски с именами пользователей
func (h *MemberHandler) GetMembers(c *gin.Context) {
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

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}

	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	if err := permission.Authorize(board, authenticatedUserID, permission.ActionUpdate); err != nil {
		if errors.Is(err, permission.ErrNotAMember) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this board"})
		} else {
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to view members"})
		}
		return
	}

	members, err := h.memberRepo.ListByBoardID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return
	}

	response := make([]MemberResponse, len(members))
	for i, member := range members {
		response[i] = MemberResponse{
			UserID:   member.UserID.String(),
			Username: member.User.Name,
			Role:     member.Role,
		}
	}

	c.JSON(http.StatusOK, response)
}
