package model

import (
	"time"

	"github.com/google/uuid"
)

// BoardMember представляет связь между пользователем и доской
type BoardMember struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_board_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_board_user"`
	Role      string    `gorm:"not null;check:role IN ('Admin', 'Member', 'Viewer')"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Board Board `gorm:"foreignKey:BoardID"`
	User  User  `gorm:"foreignKey:UserID"`
}

// Роли пользователей для доски
const (
	RoleAdmin  = "Admin"  // полный доступ, включая удаление доски
	RoleMember = "Member" // может просматривать и редактировать
	RoleViewer = "Viewer" // может только просматривать
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMember || role == RoleViewer
}
