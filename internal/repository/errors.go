package repository

import "errors"

// Common repository errors
var (
	// ErrBoardNotFound is returned when a board is not found
	ErrBoardNotFound = errors.New("board not found")

	// ErrSectionNotFound is returned when a section is not found
	ErrSectionNotFound = errors.New("section not found")

	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrAlreadyMember is returned when a user already has a membership entry on a board
	ErrAlreadyMember = errors.New("user is already a member of this board")

	// ErrInvalidRole is returned when a membership role is outside the known set
	ErrInvalidRole = errors.New("invalid role")
)
