package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"taskboard/internal/handler"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func setupUserTest(userID uuid.UUID) (*gin.Engine, *MockUserRepository, *MockBoardRepository, *MockTaskRepository) {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	userRepo := new(MockUserRepository)
	boardRepo := new(MockBoardRepository)
	taskRepo := new(MockTaskRepository)

	userHandler := handler.NewUserHandler(userRepo, boardRepo, taskRepo)

	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	authorized := r.Group("/", authAs(userID))
	authorized.GET("/users", userHandler.GetAll)
	authorized.GET("/dashboard", userHandler.Dashboard)

	return r, userRepo, boardRepo, taskRepo
}

func TestRegister(t *testing.T) {
	// Arrange
	router, userRepo, _, _ := setupUserTest(uuid.New())

	userRepo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(user *model.User) bool {
		// Пароль хранится только в виде bcrypt-хеша
		return user.Email == "new@example.com" &&
			user.Name == "Newcomer" &&
			bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("secret123")) == nil
	})).Return(nil)

	// Act
	resp := doJSON(router, "POST", "/register", handler.RegisterRequest{
		Email:    "New@Example.com",
		Name:     "Newcomer",
		Password: "secret123",
	})

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var auth handler.AuthResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &auth))
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "new@example.com", auth.User.Email)
	userRepo.AssertExpectations(t)
}

func TestRegister_Conflict(t *testing.T) {
	// Arrange
	router, userRepo, _, _ := setupUserTest(uuid.New())

	existing := &model.User{ID: uuid.New(), Email: "taken@example.com", Name: "Old"}
	userRepo.On("FindByEmail", mock.Anything, "taken@example.com").Return(existing, nil)

	// Act
	resp := doJSON(router, "POST", "/register", handler.RegisterRequest{
		Email:    "taken@example.com",
		Name:     "Newcomer",
		Password: "secret123",
	})

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_InvalidInput(t *testing.T) {
	// Arrange
	router, userRepo, _, _ := setupUserTest(uuid.New())

	// Пароль короче минимума
	resp := doJSON(router, "POST", "/register", handler.RegisterRequest{
		Email:    "new@example.com",
		Name:     "Newcomer",
		Password: "123",
	})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	userRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	// Arrange
	router, userRepo, _, _ := setupUserTest(uuid.New())

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	user := &model.User{
		ID:             uuid.New(),
		Email:          "user@example.com",
		Name:           "User",
		HashedPassword: string(hash),
	}
	userRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(user, nil)

	// Act
	resp := doJSON(router, "POST", "/login", handler.LoginRequest{
		Email:    "user@example.com",
		Password: "secret123",
	})

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var auth handler.AuthResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &auth))
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, user.ID.String(), auth.User.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	// Arrange
	router, userRepo, _, _ := setupUserTest(uuid.New())

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	user := &model.User{
		ID:             uuid.New(),
		Email:          "user@example.com",
		HashedPassword: string(hash),
	}
	userRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(user, nil)

	// Act
	resp := doJSON(router, "POST", "/login", handler.LoginRequest{
		Email:    "user@example.com",
		Password: "wrong-password",
	})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	// Arrange
	router, userRepo, _, _ := setupUserTest(uuid.New())

	userRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	// Act
	resp := doJSON(router, "POST", "/login", handler.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})

	// Assert: тот же ответ, что и при неверном пароле
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestDashboard(t *testing.T) {
	// Arrange
	userID := uuid.New()
	router, _, boardRepo, taskRepo := setupUserTest(userID)

	adminBoardID := uuid.New()
	memberBoardID := uuid.New()
	boards := []model.Board{
		{
			ID:      adminBoardID,
			OwnerID: userID,
			Members: []model.BoardMember{
				{BoardID: adminBoardID, UserID: userID, Role: model.RoleAdmin},
			},
		},
		{
			ID:      memberBoardID,
			OwnerID: uuid.New(),
			Members: []model.BoardMember{
				{BoardID: memberBoardID, UserID: userID, Role: model.RoleMember},
			},
		},
	}
	boardRepo.On("GetAccessible", mock.Anything, userID).Return(boards, nil)
	taskRepo.On("CountAssigned", mock.Anything, userID).Return(int64(4), nil)

	deadline := time.Now().Add(48 * time.Hour)
	taskRepo.On("GetUpcomingDeadlines", mock.Anything, 5).Return([]model.Task{
		{
			ID:       uuid.New(),
			Title:    "Ship release",
			Deadline: &deadline,
			// Колонка project на дашборде - это название доски, не секции
			Section: model.Section{
				Title: "In progress",
				Board: model.Board{Title: "Big launch"},
			},
		},
	}, nil)

	// Act
	resp := doJSON(router, "GET", "/dashboard", nil)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var dashboard handler.DashboardResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &dashboard))
	assert.Equal(t, 1, dashboard.AdminBoards)
	assert.Equal(t, 1, dashboard.MemberBoards)
	assert.Equal(t, int64(4), dashboard.Tasks)
	assert.Len(t, dashboard.Deadlines, 1)
	assert.Equal(t, "Big launch", dashboard.Deadlines[0].Project)
	assert.Equal(t, "Ship release", dashboard.Deadlines[0].Task)
}

func TestGetAllUsers(t *testing.T) {
	// Arrange
	router, userRepo, _, _ := setupUserTest(uuid.New())

	userRepo.On("GetAll", mock.Anything).Return([]model.User{
		{ID: uuid.New(), Email: "a@example.com", Name: "Alpha"},
		{ID: uuid.New(), Email: "b@example.com", Name: "Beta"},
	}, nil)

	// Act
	resp := doJSON(router, "GET", "/users", nil)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var users []handler.UserResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &users))
	assert.Len(t, users, 2)
	assert.Equal(t, "Alpha", users[0].Name)
}
