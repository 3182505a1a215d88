// Package permission evaluates board membership roles against the fixed
// action vocabulary. It is a pure lookup: callers resolve the board (with
// its members preloaded) first, so authorization never touches the store.
package permission

import (
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var (
	// ErrNotAMember is returned when the user has no membership entry on the board
	ErrNotAMember = errors.New("user is not a member of this board")

	// ErrForbidden is returned when the user's role does not allow the action
	ErrForbidden = errors.New("user does not have permission to perform this action")
)

// rolePermissions maps each role to the actions it may perform.
var rolePermissions = map[string][]Action{
	model.RoleAdmin:  {ActionRead, ActionUpdate, ActionDelete},
	model.RoleMember: {ActionRead, ActionUpdate},
	model.RoleViewer: {ActionRead},
}

// Authorize checks whether userID may perform action on board. Access is
// granted through the membership list only; the board creator is written as
// an Admin member at creation time, so ownership never needs a special case
// here.
func Authorize(board *model.Board, userID uuid.UUID, action Action) error {
	member := findMember(board, userID)
	if member == nil {
		return ErrNotAMember
	}

	for _, allowed := range rolePermissions[member.Role] {
		if allowed == action {
			return nil
		}
	}
	return ErrForbidden
}

// IsAdmin reports whether userID holds an Admin membership entry on board.
func IsAdmin(board *model.Board, userID uuid.UUID) bool {
	member := findMember(board, userID)
	return member != nil && member.Role == model.RoleAdmin
}

// IsMember reports whether userID has any membership entry on board.
func IsMember(board *model.Board, userID uuid.UUID) bool {
	return findMember(board, userID) != nil
}

func findMember(board *model.Board, userID uuid.UUID) *model.BoardMember {
	for i := range board.Members {
		if board.Members[i].UserID == userID {
			return &board.Members[i]
		}
	}
	return nil
}
