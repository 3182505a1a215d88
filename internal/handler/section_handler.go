package handler

import (
	"errors"
	"net/http"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/ordering"
	"taskboard/internal/permission"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SectionHandler struct {
	sectionRepo repository.SectionRepositoryInterface
	boardRepo   repository.BoardRepositoryInterface
	locks       *ordering.Locks
}

func NewSectionHandler(
	sectionRepo repository.SectionRepositoryInterface,
	boardRepo repository.BoardRepositoryInterface,
	locks *ordering.Locks,
) *SectionHandler {
	return &SectionHandler{
		sectionRepo: sectionRepo,
		boardRepo:   boardRepo,
		locks:       locks,
	}
}

type CreateSectionRequest struct {
	Title string `json:"title"`
}

type UpdateSectionRequest struct {
	Title *string `json:"title"`
}

type ReorderSectionsRequest struct {
	// Sections holds the board's full section set, listed from
	// most-recently-displayed to least.
	Sections []string `json:"sections" binding:"required"`
}

type SectionResponse struct {
	ID       string `json:"id"`
	BoardID  string `json:"board_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

func sectionResponse(section *model.Section) SectionResponse {
	return SectionResponse{
		ID:       section.ID.String(),
		BoardID:  section.BoardID.String(),
		Title:    section.Title,
		Position: section.Position,
	}
}

func (h *SectionHandler) authorizeBoard(c *gin.Context, boardID, userID uuid.UUID, action permission.Action) bool {
	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return false
	}

	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return false
	}

	if err := permission.Authorize(board, userID, action); err != nil {
		if errors.Is(err, permission.ErrNotAMember) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this board"})
		} else {
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to perform this action"})
		}
		return false
	}

	return true
}

// Create appends a new section at the end of the board's position range.
func (h *SectionHandler) Create(c *gin.Context) {
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

	var req CreateSectionRequest
	_ = c.ShouldBindJSON(&req)

	if !h.authorizeBoard(c, boardID, authenticatedUserID, permission.ActionUpdate) {
		return
	}

	section := &model.Section{
		BoardID: boardID,
		Title:   req.Title,
	}

	unlock := h.locks.Lock(ordering.SectionScope(boardID))
	defer unlock()

	if err := h.sectionRepo.Create(c.Request.Context(), section); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create section"})
		return
	}

	c.JSON(http.StatusCreated, sectionResponse(section))
}

// GetAll returns the board's sections ordered by descending position.
func (h *SectionHandler) GetAll(c *gin.Context) {
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

	if !h.authorizeBoard(c, boardID, authenticatedUserID, permission.ActionRead) {
		return
	}

	sections, err := h.sectionRepo.GetByBoardID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sections"})
		return
	}

	response := make([]SectionResponse, len(sections))
	for i := range sections {
		response[i] = sectionResponse(&sections[i])
	}

	c.JSON(http.StatusOK, response)
}

func (h *SectionHandler) Update(c *gin.Context) {
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

	section, err := h.sectionRepo.GetByID(c.Request.Context(), sectionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve section"})
		return
	}

	if section == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Section not found"})
		return
	}

	if !h.authorizeBoard(c, section.BoardID, authenticatedUserID, permission.ActionUpdate) {
		return
	}

	var req UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Title != nil {
		section.Title = *req.Title
	}

	if err := h.sectionRepo.Update(c.Request.Context(), section); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update section"})
		return
	}

	c.JSON(http.StatusOK, sectionResponse(section))
}

// Delete removes the section and its tasks, then compacts the surviving
// sections of the board.
func (h *SectionHandler) Delete(c *gin.Context) {
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

	section, err := h.sectionRepo.GetByID(c.Request.Context(), sectionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve section"})
		return
	}

	if section == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Section not found"})
		return
	}

	if !h.authorizeBoard(c, section.BoardID, authenticatedUserID, permission.ActionUpdate) {
		return
	}

	unlock := h.locks.Lock(ordering.SectionScope(section.BoardID))
	defer unlock()

	if err := h.sectionRepo.DeleteCascade(c.Request.Context(), sectionID); err != nil {
		if errors.Is(err, repository.ErrSectionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Section not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete section"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Section deleted successfully"})
}

// Reorder rewrites the board's section order from the caller-supplied
// descending display order.
func (h *SectionHandler) Reorder(c *gin.Context) {
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

	var req ReorderSectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	orderedIDs, ok := parseIDList(c, req.Sections)
	if !ok {
		return
	}

	if !h.authorizeBoard(c, boardID, authenticatedUserID, permission.ActionUpdate) {
		return
	}

	unlock := h.locks.Lock(ordering.SectionScope(boardID))
	defer unlock()

	current, err := h.sectionRepo.GetIDsByBoardID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sections"})
		return
	}

	assignments, err := ordering.Assign(current, orderedIDs)
	if err != nil {
		respondOrderingError(c, err)
		return
	}

	if err := h.sectionRepo.UpdatePositions(c.Request.Context(), assignments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder sections"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sections reordered successfully"})
}
