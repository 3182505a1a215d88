package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/ordering"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	GetBySectionID(ctx context.Context, sectionID uuid.UUID) ([]model.Task, error)
	GetIDsBySectionID(ctx context.Context, sectionID uuid.UUID) ([]uuid.UUID, error)
	Update(ctx context.Context, task *model.Task) error
	UpdatePositions(ctx context.Context, assignments []ordering.Assignment) error
	Move(ctx context.Context, taskID, destSectionID uuid.UUID) error
	DeleteCompact(ctx context.Context, id uuid.UUID) error
	CountAssigned(ctx context.Context, userID uuid.UUID) (int64, error)
	GetUpcomingDeadlines(ctx context.Context, limit int) ([]model.Task, error)
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create appends the task at the end of the section's position range.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Task{}).Where("section_id = ?", task.SectionID).
			Count(&count).Error; err != nil {
			return err
		}
		task.Position = int(count)
		return tx.Create(task).Error
	})
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// GetBySectionID returns the section's tasks ordered by descending position,
// with the assignee preloaded for display enrichment.
func (r *TaskRepository) GetBySectionID(ctx context.Context, sectionID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("Assignee").
		Where("section_id = ?", sectionID).
		Order("position DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) GetIDsBySectionID(ctx context.Context, sectionID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("section_id = ?", sectionID).
		Order("position").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *TaskRepository) UpdatePositions(ctx context.Context, assignments []ordering.Assignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range assignments {
			if err := tx.Model(&model.Task{}).Where("id = ?", a.ID).
				Update("position", a.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Move reparents the task to destSectionID: it is appended at the end of the
// destination range and the source section's survivors are compacted.
func (r *TaskRepository) Move(ctx context.Context, taskID, destSectionID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.Where("id = ?", taskID).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		sourceSectionID := task.SectionID

		var count int64
		if err := tx.Model(&model.Task{}).Where("section_id = ?", destSectionID).
			Count(&count).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Task{}).Where("id = ?", taskID).
			Updates(map[string]interface{}{
				"section_id": destSectionID,
				"position":   int(count),
			}).Error; err != nil {
			return err
		}

		var survivorIDs []uuid.UUID
		if err := tx.Model(&model.Task{}).
			Where("section_id = ?", sourceSectionID).
			Order("position").
			Pluck("id", &survivorIDs).Error; err != nil {
			return err
		}
		for _, a := range ordering.Compact(survivorIDs) {
			if err := tx.Model(&model.Task{}).Where("id = ?", a.ID).
				Update("position", a.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteCompact removes the task and compacts the surviving tasks of its
// section back to a dense range.
func (r *TaskRepository) DeleteCompact(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.Where("id = ?", id).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if err := tx.Where("id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}

		var survivorIDs []uuid.UUID
		if err := tx.Model(&model.Task{}).
			Where("section_id = ?", task.SectionID).
			Order("position").
			Pluck("id", &survivorIDs).Error; err != nil {
			return err
		}
		for _, a := range ordering.Compact(survivorIDs) {
			if err := tx.Model(&model.Task{}).Where("id = ?", a.ID).
				Update("position", a.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TaskRepository) CountAssigned(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("assigned_to = ?", userID).Count(&count).Error
	return count, err
}

// GetUpcomingDeadlines returns the nearest tasks with a deadline not yet
// passed, soonest first. The section and its board are preloaded for the
// dashboard's project column.
func (r *TaskRepository) GetUpcomingDeadlines(ctx context.Context, limit int) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("Section.Board").
		Where("deadline >= ?", time.Now()).
		Order("deadline").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}
