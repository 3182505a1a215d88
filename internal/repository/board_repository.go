package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"
	"taskboard/internal/ordering"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

type BoardRepositoryInterface interface {
	CreateWithOwner(ctx context.Context, board *model.Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
	GetAccessible(ctx context.Context, userID uuid.UUID) ([]model.Board, error)
	GetFavourites(ctx context.Context, ownerID uuid.UUID) ([]model.Board, error)
	GetAllIDs(ctx context.Context) ([]uuid.UUID, error)
	GetFavouriteIDs(ctx context.Context, ownerID uuid.UUID, exclude *uuid.UUID) ([]uuid.UUID, error)
	CountFavourites(ctx context.Context, ownerID uuid.UUID, exclude *uuid.UUID) (int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdatePositions(ctx context.Context, assignments []ordering.Assignment) error
	UpdateFavouritePositions(ctx context.Context, assignments []ordering.Assignment) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

var _ BoardRepositoryInterface = (*BoardRepository)(nil)

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// CreateWithOwner inserts the board at the end of the global position range
// and writes the creator as a permanent Admin member, all in one transaction.
func (r *BoardRepository) CreateWithOwner(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Board{}).Count(&count).Error; err != nil {
			return err
		}
		board.Position = int(count)

		if err := tx.Create(board).Error; err != nil {
			return err
		}

		member := model.BoardMember{
			BoardID: board.ID,
			UserID:  board.OwnerID,
			Role:    model.RoleAdmin,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		board.Members = []model.BoardMember{member}
		return nil
	})
}

func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	err := r.db.WithContext(ctx).Preload("Members").Where("id = ?", id).First(&board).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &board, nil
}

// GetAccessible returns boards the user owns or is a member of, ordered by
// descending position.
func (r *BoardRepository) GetAccessible(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Preload("Members").
		Where("owner_id = ? OR id IN (SELECT board_id FROM board_members WHERE user_id = ?)", userID, userID).
		Order("position DESC").
		Find(&boards).Error
	return boards, err
}

func (r *BoardRepository) GetFavourites(ctx context.Context, ownerID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND favourite = ?", ownerID, true).
		Order("favourite_position DESC").
		Find(&boards).Error
	return boards, err
}

// GetAllIDs returns every board id ordered by ascending position. The result
// is both the reorder scope snapshot and the renumbering order.
func (r *BoardRepository) GetAllIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Board{}).
		Order("position").
		Pluck("id", &ids).Error
	return ids, err
}

// GetFavouriteIDs returns the owner's favourited board ids ordered by
// ascending favourite position, optionally excluding one board.
func (r *BoardRepository) GetFavouriteIDs(ctx context.Context, ownerID uuid.UUID, exclude *uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := r.db.WithContext(ctx).Model(&model.Board{}).
		Where("owner_id = ? AND favourite = ?", ownerID, true)
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}
	err := query.Order("favourite_position").Pluck("id", &ids).Error
	return ids, err
}

func (r *BoardRepository) CountFavourites(ctx context.Context, ownerID uuid.UUID, exclude *uuid.UUID) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.Board{}).
		Where("owner_id = ? AND favourite = ?", ownerID, true)
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *BoardRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Board{}).Where("id = ?", id).Updates(fields).Error
}

// UpdatePositions applies computed position assignments atomically.
func (r *BoardRepository) UpdatePositions(ctx context.Context, assignments []ordering.Assignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range assignments {
			if err := tx.Model(&model.Board{}).Where("id = ?", a.ID).
				Update("position", a.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *BoardRepository) UpdateFavouritePositions(ctx context.Context, assignments []ordering.Assignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range assignments {
			if err := tx.Model(&model.Board{}).Where("id = ?", a.ID).
				Update("favourite_position", a.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteCascade removes the board together with its sections and their
// tasks, then restores contiguity: the owner's surviving favourites are
// renumbered if the board was favourited, and every surviving board is
// renumbered by its current position. The whole cascade runs in a single
// transaction, so a failing step leaves no orphaned children behind.
func (r *BoardRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var board model.Board
		if err := tx.Where("id = ?", id).First(&board).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBoardNotFound
			}
			return err
		}

		var sectionIDs []uuid.UUID
		if err := tx.Model(&model.Section{}).Where("board_id = ?", id).
			Pluck("id", &sectionIDs).Error; err != nil {
			return err
		}

		if len(sectionIDs) > 0 {
			if err := tx.Where("section_id IN ?", sectionIDs).Delete(&model.Task{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.Section{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.BoardMember{}).Error; err != nil {
			return err
		}

		if board.Favourite {
			var favouriteIDs []uuid.UUID
			if err := tx.Model(&model.Board{}).
				Where("owner_id = ? AND favourite = ? AND id <> ?", board.OwnerID, true, id).
				Order("favourite_position").
				Pluck("id", &favouriteIDs).Error; err != nil {
				return err
			}
			for _, a := range ordering.Compact(favouriteIDs) {
				if err := tx.Model(&model.Board{}).Where("id = ?", a.ID).
					Update("favourite_position", a.Position).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.Where("id = ?", id).Delete(&model.Board{}).Error; err != nil {
			return err
		}

		var survivorIDs []uuid.UUID
		if err := tx.Model(&model.Board{}).
			Order("position").
			Pluck("id", &survivorIDs).Error; err != nil {
			return err
		}
		for _, a := range ordering.Compact(survivorIDs) {
			if err := tx.Model(&model.Board{}).Where("id = ?", a.ID).
				Update("position", a.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
