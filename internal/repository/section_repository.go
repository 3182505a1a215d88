package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"
	"taskboard/internal/ordering"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SectionRepository struct {
	db *gorm.DB
}

type SectionRepositoryInterface interface {
	Create(ctx context.Context, section *model.Section) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Section, error)
	GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Section, error)
	GetIDsByBoardID(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error)
	Update(ctx context.Context, section *model.Section) error
	UpdatePositions(ctx context.Context, assignments []ordering.Assignment) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

var _ SectionRepositoryInterface = (*SectionRepository)(nil)

func NewSectionRepository(db *gorm.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// Create appends the section at the end of the board's position range.
func (r *SectionRepository) Create(ctx context.Context, section *model.Section) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Section{}).Where("board_id = ?", section.BoardID).
			Count(&count).Error; err != nil {
			return err
		}
		section.Position = int(count)
		return tx.Create(section).Error
	})
}

func (r *SectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Section, error) {
	var section model.Section
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &section, nil
}

// GetByBoardID returns the board's sections ordered by descending position.
func (r *SectionRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Section, error) {
	var sections []model.Section
	err := r.db.WithContext(ctx).Where("board_id = ?", boardID).
		Order("position DESC").Find(&sections).Error
	return sections, err
}

func (r *SectionRepository) GetIDsByBoardID(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Section{}).
		Where("board_id = ?", boardID).
		Order("position").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *SectionRepository) Update(ctx context.Context, section *model.Section) error {
	return r.db.WithContext(ctx).Save(section).Error
}

func (r *SectionRepository) UpdatePositions(ctx context.Context, assignments []ordering.Assignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range assignments {
			if err := tx.Model(&model.Section{}).Where("id = ?", a.ID).
				Update("position", a.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteCascade removes the section and its tasks, then compacts the
// surviving sections of the board back to a dense range.
func (r *SectionRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var section model.Section
		if err := tx.Where("id = ?", id).First(&section).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSectionNotFound
			}
			return err
		}

		if err := tx.Where("section_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&model.Section{}).Error; err != nil {
			return err
		}

		var survivorIDs []uuid.UUID
		if err := tx.Model(&model.Section{}).
			Where("board_id = ?", section.BoardID).
			Order("position").
			Pluck("id", &survivorIDs).Error; err != nil {
			return err
		}
		for _, a := range ordering.Compact(survivorIDs) {
			if err := tx.Model(&model.Section{}).Where("id = ?", a.ID).
				Update("position", a.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
