package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultIcon        = "📃"
	DefaultTitle       = "Untitled"
	DefaultDescription = "Add description here\n🟢 You can add multiline description\n🟢 Let's start..."
)

type Board struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Icon        string    `gorm:"not null"`
	Title       string    `gorm:"not null"`
	Description string
	// Position is dense and zero-based across all boards in the system.
	Position  int  `gorm:"not null"`
	Favourite bool `gorm:"not null;default:false"`
	// FavouritePosition is dense across one owner's favourited boards and
	// only meaningful while Favourite is true.
	FavouritePosition int `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Owner   User          `gorm:"foreignKey:OwnerID"`
	Members []BoardMember `gorm:"foreignKey:BoardID"`
}
