package model

import (
	"github.com/google/uuid"
)

type Section struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BoardID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title   string
	// Position is dense and zero-based among sections of the same board.
	Position int `gorm:"not null"`

	Board Board `gorm:"foreignKey:BoardID"`
}
