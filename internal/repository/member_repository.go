package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

type MemberRepositoryInterface interface {
	Add(ctx context.Context, boardID, userID uuid.UUID, role string) error
	ListByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.BoardMember, error)
}

var _ MemberRepositoryInterface = (*MemberRepository)(nil)

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Add добавляет пользователя к доске с указанной ролью
func (r *MemberRepository) Add(ctx context.Context, boardID, userID uuid.UUID, role string) error {
	if !model.ValidRole(role) {
		return ErrInvalidRole
	}

	// Используем транзакцию для предотвращения гонок
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.BoardMember
		err := tx.Where("board_id = ? AND user_id = ?", boardID, userID).First(&existing).Error

		// Каждый пользователь может иметь только одну запись на доске
		if err == nil {
			return ErrAlreadyMember
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		member := model.BoardMember{
			BoardID: boardID,
			UserID:  userID,
			Role:    role,
		}
		return tx.Create(&member).Error
	})
}

// ListByBoardID возвращает участников доски в порядке добавления
func (r *MemberRepository) ListByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.BoardMember, error) {
	var members []model.BoardMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("board_id = ?", boardID).
		Order("created_at").
		Find(&members).Error
	return members, err
}
