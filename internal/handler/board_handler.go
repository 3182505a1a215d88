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

type BoardHandler struct {
	boardRepo   repository.BoardRepositoryInterface
	sectionRepo repository.SectionRepositoryInterface
	taskRepo    repository.TaskRepositoryInterface
	locks       *ordering.Locks
}

func NewBoardHandler(
	boardRepo repository.BoardRepositoryInterface,
	sectionRepo repository.SectionRepositoryInterface,
	taskRepo repository.TaskRepositoryInterface,
	locks *ordering.Locks,
) *BoardHandler {
	return &BoardHandler{
		boardRepo:   boardRepo,
		sectionRepo: sectionRepo,
		taskRepo:    taskRepo,
		locks:       locks,
	}
}

type CreateBoardRequest struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdateBoardRequest struct {
	Icon        *string `json:"icon"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Favourite   *bool   `json:"favourite"`
}

type ReorderBoardsRequest struct {
	// Boards holds the full sibling set, listed from most-recently-displayed
	// to least (descending intended position).
	Boards []string `json:"boards" binding:"required"`
}

type BoardResponse struct {
	ID                string `json:"id"`
	OwnerID           string `json:"owner_id"`
	Icon              string `json:"icon"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	Position          int    `json:"position"`
	Favourite         bool   `json:"favourite"`
	FavouritePosition int    `json:"favourite_position"`
	CreatedAt         string `json:"created_at"`
}

type BoardViewResponse struct {
	BoardResponse
	IsAdmin  bool              `json:"is_admin"`
	Sections []SectionViewItem `json:"sections"`
}

type SectionViewItem struct {
	ID       string         `json:"id"`
	BoardID  string         `json:"board_id"`
	Title    string         `json:"title"`
	Position int            `json:"position"`
	Tasks    []TaskResponse `json:"tasks"`
}

func boardResponse(board *model.Board) BoardResponse {
	return BoardResponse{
		ID:                board.ID.String(),
		OwnerID:           board.OwnerID.String(),
		Icon:              board.Icon,
		Title:             board.Title,
		Description:       board.Description,
		Position:          board.Position,
		Favourite:         board.Favourite,
		FavouritePosition: board.FavouritePosition,
		CreatedAt:         board.CreatedAt.Format(http.TimeFormat),
	}
}

// getBoardAuthorized loads the board and checks the caller's role against
// the requested action. On failure the response is already written and nil
// is returned.
func (h *BoardHandler) getBoardAuthorized(c *gin.Context, boardID, userID uuid.UUID, action permission.Action) *model.Board {
	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
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

	return board
}

// Create creates a new board for the authenticated user. The board is
// appended at the end of the global position range and the creator becomes
// its permanent Admin member.
func (h *BoardHandler) Create(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ownerID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	// Body is optional; missing fields fall back to the defaults
	var req CreateBoardRequest
	_ = c.ShouldBindJSON(&req)

	board := &model.Board{
		OwnerID:     ownerID,
		Icon:        req.Icon,
		Title:       req.Title,
		Description: req.Description,
	}
	if board.Icon == "" {
		board.Icon = model.DefaultIcon
	}
	if board.Title == "" {
		board.Title = model.DefaultTitle
	}
	if board.Description == "" {
		board.Description = model.DefaultDescription
	}

	unlock := h.locks.Lock(ordering.BoardScope())
	defer unlock()

	if err := h.boardRepo.CreateWithOwner(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}

	c.JSON(http.StatusCreated, boardResponse(board))
}

// GetAll returns the boards the user owns or is a member of, ordered by
// descending position.
func (h *BoardHandler) GetAll(c *gin.Context) {
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

	response := make([]BoardResponse, len(boards))
	for i := range boards {
		response[i] = boardResponse(&boards[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetByID returns the aggregated board view: the board fields, its sections
// ordered by descending position, each section's tasks ordered by descending
// position with assignee display fields, and the caller's is_admin flag.
func (h *BoardHandler) GetByID(c *gin.Context) {
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

	// Read access: owner or any membership entry
	if board.OwnerID != authenticatedUserID && !permission.IsMember(board, authenticatedUserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this board"})
		return
	}

	sections, err := h.sectionRepo.GetByBoardID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sections"})
		return
	}

	view := BoardViewResponse{
		BoardResponse: boardResponse(board),
		IsAdmin:       permission.IsAdmin(board, authenticatedUserID),
		Sections:      make([]SectionViewItem, len(sections)),
	}

	for i := range sections {
		tasks, err := h.taskRepo.GetBySectionID(c.Request.Context(), sections[i].ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
			return
		}
		taskItems := make([]TaskResponse, len(tasks))
		for j := range tasks {
			taskItems[j] = taskResponse(&tasks[j])
		}
		view.Sections[i] = SectionViewItem{
			ID:       sections[i].ID.String(),
			BoardID:  sections[i].BoardID.String(),
			Title:    sections[i].Title,
			Position: sections[i].Position,
			Tasks:    taskItems,
		}
	}

	c.JSON(http.StatusOK, view)
}

// Update modifies board fields. Toggling favourite keeps the owner's
// favourite ordering dense: switching it off compacts the surviving
// favourites, switching it on appends the board at the end of the range.
func (h *BoardHandler) Update(c *gin.Context) {
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

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board := h.getBoardAuthorized(c, boardID, authenticatedUserID, permission.ActionUpdate)
	if board == nil {
		return
	}

	fields := map[string]interface{}{}
	if req.Icon != nil {
		fields["icon"] = *req.Icon
	}
	if req.Title != nil {
		if *req.Title == "" {
			*req.Title = model.DefaultTitle
		}
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		if *req.Description == "" {
			*req.Description = model.DefaultDescription
		}
		fields["description"] = *req.Description
	}

	if req.Favourite != nil && *req.Favourite != board.Favourite {
		unlock := h.locks.Lock(ordering.FavouriteScope(board.OwnerID))
		defer unlock()

		if *req.Favourite {
			count, err := h.boardRepo.CountFavourites(c.Request.Context(), board.OwnerID, &boardID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update favourites"})
				return
			}
			fields["favourite_position"] = int(count)
		} else {
			survivors, err := h.boardRepo.GetFavouriteIDs(c.Request.Context(), board.OwnerID, &boardID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update favourites"})
				return
			}
			if err := h.boardRepo.UpdateFavouritePositions(c.Request.Context(), ordering.Compact(survivors)); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update favourites"})
				return
			}
			fields["favourite_position"] = 0
		}
		fields["favourite"] = *req.Favourite
	}

	if len(fields) > 0 {
		if err := h.boardRepo.UpdateFields(c.Request.Context(), boardID, fields); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update board"})
			return
		}
	}

	updated, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil || updated == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}

	c.JSON(http.StatusOK, boardResponse(updated))
}

// Reorder rewrites the global board order from the caller-supplied
// descending display order. The list must contain every board exactly once.
func (h *BoardHandler) Reorder(c *gin.Context) {
	if _, exists := c.Get(middleware.UserIDKey); !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req ReorderBoardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	orderedIDs, ok := parseIDList(c, req.Boards)
	if !ok {
		return
	}

	unlock := h.locks.Lock(ordering.BoardScope())
	defer unlock()

	current, err := h.boardRepo.GetAllIDs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}

	assignments, err := ordering.Assign(current, orderedIDs)
	if err != nil {
		respondOrderingError(c, err)
		return
	}

	if err := h.boardRepo.UpdatePositions(c.Request.Context(), assignments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder boards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Boards reordered successfully"})
}

// GetFavourites returns the caller's favourited boards ordered by descending
// favourite position.
func (h *BoardHandler) GetFavourites(c *gin.Context) {
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

	boards, err := h.boardRepo.GetFavourites(c.Request.Context(), authenticatedUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve favourites"})
		return
	}

	response := make([]BoardResponse, len(boards))
	for i := range boards {
		response[i] = boardResponse(&boards[i])
	}

	c.JSON(http.StatusOK, response)
}

// ReorderFavourites rewrites the caller's favourite ordering. The favourite
// scope is independent of the primary board positions.
func (h *BoardHandler) ReorderFavourites(c *gin.Context) {
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

	var req ReorderBoardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	orderedIDs, ok := parseIDList(c, req.Boards)
	if !ok {
		return
	}

	unlock := h.locks.Lock(ordering.FavouriteScope(authenticatedUserID))
	defer unlock()

	current, err := h.boardRepo.GetFavouriteIDs(c.Request.Context(), authenticatedUserID, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve favourites"})
		return
	}

	assignments, err := ordering.Assign(current, orderedIDs)
	if err != nil {
		respondOrderingError(c, err)
		return
	}

	if err := h.boardRepo.UpdateFavouritePositions(c.Request.Context(), assignments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder favourites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favourites reordered successfully"})
}

// Delete removes the board with its sections and tasks, then renumbers the
// surviving boards (and the owner's favourites if needed) back to dense
// ranges.
func (h *BoardHandler) Delete(c *gin.Context) {
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

	board := h.getBoardAuthorized(c, boardID, authenticatedUserID, permission.ActionDelete)
	if board == nil {
		return
	}

	// The cascade renumbers both the global scope and the owner's favourites
	unlockBoards := h.locks.Lock(ordering.BoardScope())
	defer unlockBoards()
	unlockFavourites := h.locks.Lock(ordering.FavouriteScope(board.OwnerID))
	defer unlockFavourites()

	if err := h.boardRepo.DeleteCascade(c.Request.Context(), boardID); err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Board deleted successfully"})
}

func parseIDList(c *gin.Context, raw []string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, len(raw))
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format in list"})
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

func respondOrderingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ordering.ErrUnknownID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reorder list references an unknown ID"})
	case errors.Is(err, ordering.ErrIncompleteScope):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reorder list must contain every item exactly once"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder"})
	}
}
