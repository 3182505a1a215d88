package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	SectionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string
	Content   string
	// Position is dense and zero-based among tasks of the same section.
	Position   int        `gorm:"not null"`
	AssignedTo *uuid.UUID `gorm:"type:uuid"`
	Deadline   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Section  Section `gorm:"foreignKey:SectionID"`
	Assignee User    `gorm:"foreignKey:AssignedTo"`
}
