package handler_test

import (
	"context"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/ordering"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// authAs подменяет auth middleware, помещая userID в контекст запроса
func authAs(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

// Мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users := args.Get(0)
	if users == nil {
		return nil, args.Error(1)
	}
	return users.([]model.User), args.Error(1)
}

// Мок репозитория досок
type MockBoardRepository struct {
	mock.Mock
}

func (m *MockBoardRepository) CreateWithOwner(ctx context.Context, board *model.Board) error {
	args := m.Called(ctx, board)
	return args.Error(0)
}

func (m *MockBoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	args := m.Called(ctx, id)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

func (m *MockBoardRepository) GetAccessible(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	args := m.Called(ctx, userID)
	boards := args.Get(0)
	if boards == nil {
		return nil, args.Error(1)
	}
	return boards.([]model.Board), args.Error(1)
}

func (m *MockBoardRepository) GetFavourites(ctx context.Context, ownerID uuid.UUID) ([]model.Board, error) {
	args := m.Called(ctx, ownerID)
	boards := args.Get(0)
	if boards == nil {
		return nil, args.Error(1)
	}
	return boards.([]model.Board), args.Error(1)
}

func (m *MockBoardRepository) GetAllIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	ids := args.Get(0)
	if ids == nil {
		return nil, args.Error(1)
	}
	return ids.([]uuid.UUID), args.Error(1)
}

func (m *MockBoardRepository) GetFavouriteIDs(ctx context.Context, ownerID uuid.UUID, exclude *uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, ownerID, exclude)
	ids := args.Get(0)
	if ids == nil {
		return nil, args.Error(1)
	}
	return ids.([]uuid.UUID), args.Error(1)
}

func (m *MockBoardRepository) CountFavourites(ctx context.Context, ownerID uuid.UUID, exclude *uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID, exclude)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBoardRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockBoardRepository) UpdatePositions(ctx context.Context, assignments []ordering.Assignment) error {
	args := m.Called(ctx, assignments)
	return args.Error(0)
}

func (m *MockBoardRepository) UpdateFavouritePositions(ctx context.Context, assignments []ordering.Assignment) error {
	args := m.Called(ctx, assignments)
	return args.Error(0)
}

func (m *MockBoardRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Мок репозитория секций
type MockSectionRepository struct {
	mock.Mock
}

func (m *MockSectionRepository) Create(ctx context.Context, section *model.Section) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockSectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Section, error) {
	args := m.Called(ctx, id)
	section := args.Get(0)
	if section == nil {
		return nil, args.Error(1)
	}
	return section.(*model.Section), args.Error(1)
}

func (m *MockSectionRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Section, error) {
	args := m.Called(ctx, boardID)
	sections := args.Get(0)
	if sections == nil {
		return nil, args.Error(1)
	}
	return sections.([]model.Section), args.Error(1)
}

func (m *MockSectionRepository) GetIDsByBoardID(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, boardID)
	ids := args.Get(0)
	if ids == nil {
		return nil, args.Error(1)
	}
	return ids.([]uuid.UUID), args.Error(1)
}

func (m *MockSectionRepository) Update(ctx context.Context, section *model.Section) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockSectionRepository) UpdatePositions(ctx context.Context, assignments []ordering.Assignment) error {
	args := m.Called(ctx, assignments)
	return args.Error(0)
}

func (m *MockSectionRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetBySectionID(ctx context.Context, sectionID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, sectionID)
	tasks := args.Get(0)
	if tasks == nil {
		return nil, args.Error(1)
	}
	return tasks.([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetIDsBySectionID(ctx context.Context, sectionID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, sectionID)
	ids := args.Get(0)
	if ids == nil {
		return nil, args.Error(1)
	}
	return ids.([]uuid.UUID), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) UpdatePositions(ctx context.Context, assignments []ordering.Assignment) error {
	args := m.Called(ctx, assignments)
	return args.Error(0)
}

func (m *MockTaskRepository) Move(ctx context.Context, taskID, destSectionID uuid.UUID) error {
	args := m.Called(ctx, taskID, destSectionID)
	return args.Error(0)
}

func (m *MockTaskRepository) DeleteCompact(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) CountAssigned(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) GetUpcomingDeadlines(ctx context.Context, limit int) ([]model.Task, error) {
	args := m.Called(ctx, limit)
	tasks := args.Get(0)
	if tasks == nil {
		return nil, args.Error(1)
	}
	return tasks.([]model.Task), args.Error(1)
}

// Мок репозитория участников
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Add(ctx context.Context, boardID, userID uuid.UUID, role string) error {
	args := m.Called(ctx, boardID, userID, role)
	return args.Error(0)
}

func (m *MockMemberRepository) ListByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.BoardMember, error) {
	args := m.Called(ctx, boardID)
	members := args.Get(0)
	if members == nil {
		return nil, args.Error(1)
	}
	return members.([]model.BoardMember), args.Error(1)
}
