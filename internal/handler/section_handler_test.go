package handler_test

import (
	"net/http"
	"testing"

	"taskboard/internal/handler"
	"taskboard/internal/model"
	"taskboard/internal/ordering"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupSectionTest(userID uuid.UUID) (*gin.Engine, *MockSectionRepository, *MockBoardRepository) {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	sectionRepo := new(MockSectionRepository)
	boardRepo := new(MockBoardRepository)

	sectionHandler := handler.NewSectionHandler(sectionRepo, boardRepo, ordering.NewLocks())

	r.Use(authAs(userID))
	r.POST("/boards/:id/sections", sectionHandler.Create)
	r.GET("/boards/:id/sections", sectionHandler.GetAll)
	r.PUT("/boards/:id/sections", sectionHandler.Reorder)
	r.PUT("/sections/:id", sectionHandler.Update)
	r.DELETE("/sections/:id", sectionHandler.Delete)

	return r, sectionRepo, boardRepo
}

func TestCreateSection(t *testing.T) {
	// Arrange
	userID := uuid.New()
	boardID := uuid.New()
	router, sectionRepo, boardRepo := setupSectionTest(userID)

	boardRepo.On("GetByID", mock.Anything, boardID).
		Return(memberBoard(boardID, userID, model.RoleMember), nil)
	sectionRepo.On("Create", mock.Anything, mock.MatchedBy(func(section *model.Section) bool {
		return section.BoardID == boardID && section.Title == "Backlog"
	})).Return(nil)

	// Act
	resp := doJSON(router, "POST", "/boards/"+boardID.String()+"/sections", handler.CreateSectionRequest{
		Title: "Backlog",
	})

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)
	sectionRepo.AssertExpectations(t)
}

func TestCreateSection_ViewerForbidden(t *testing.T) {
	// Arrange
	userID := uuid.New()
	boardID := uuid.New()
	router, sectionRepo, boardRepo := setupSectionTest(userID)

	boardRepo.On("GetByID", mock.Anything, boardID).
		Return(memberBoard(boardID, userID, model.RoleViewer), nil)

	// Act
	resp := doJSON(router, "POST", "/boards/"+boardID.String()+"/sections", handler.CreateSectionRequest{
		Title: "Backlog",
	})

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)
	sectionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReorderSections(t *testing.T) {
	// Arrange
	userID := uuid.New()
	boardID := uuid.New()
	router, sectionRepo, boardRepo := setupSectionTest(userID)

	boardRepo.On("GetByID", mock.Anything, boardID).
		Return(memberBoard(boardID, userID, model.RoleMember), nil)

	a := uuid.New()
	b := uuid.New()
	c := uuid.New()
	sectionRepo.On("GetIDsByBoardID", mock.Anything, boardID).
		Return([]uuid.UUID{a, b, c}, nil)

	// Список в порядке убывания: первый элемент получает наибольшую позицию
	sectionRepo.On("UpdatePositions", mock.Anything, mock.MatchedBy(func(assignments []ordering.Assignment) bool {
		positions := map[uuid.UUID]int{}
		for _, x := range assignments {
			positions[x.ID] = x.Position
		}
		return len(assignments) == 3 && positions[c] == 2 && positions[a] == 1 && positions[b] == 0
	})).Return(nil)

	// Act
	resp := doJSON(router, "PUT", "/boards/"+boardID.String()+"/sections", handler.ReorderSectionsRequest{
		Sections: []string{c.String(), a.String(), b.String()},
	})

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	sectionRepo.AssertExpectations(t)
}

func TestReorderSections_ForeignSection(t *testing.T) {
	// Arrange
	userID := uuid.New()
	boardID := uuid.New()
	router, sectionRepo, boardRepo := setupSectionTest(userID)

	boardRepo.On("GetByID", mock.Anything, boardID).
		Return(memberBoard(boardID, userID, model.RoleMember), nil)

	a := uuid.New()
	sectionRepo.On("GetIDsByBoardID", mock.Anything, boardID).
		Return([]uuid.UUID{a}, nil)

	// Секция другой доски в списке - отказ без записи
	resp := doJSON(router, "PUT", "/boards/"+boardID.String()+"/sections", handler.ReorderSectionsRequest{
		Sections: []string{a.String(), uuid.New().String()},
	})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	sectionRepo.AssertNotCalled(t, "UpdatePositions", mock.Anything, mock.Anything)
}

func TestDeleteSection(t *testing.T) {
	// Arrange
	userID := uuid.New()
	boardID := uuid.New()
	sectionID := uuid.New()
	router, sectionRepo, boardRepo := setupSectionTest(userID)

	section := &model.Section{ID: sectionID, BoardID: boardID, Title: "Done", Position: 2}
	sectionRepo.On("GetByID", mock.Anything, sectionID).Return(section, nil)
	boardRepo.On("GetByID", mock.Anything, boardID).
		Return(memberBoard(boardID, userID, model.RoleMember), nil)
	sectionRepo.On("DeleteCascade", mock.Anything, sectionID).Return(nil)

	// Act
	resp := doJSON(router, "DELETE", "/sections/"+sectionID.String(), nil)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)
	sectionRepo.AssertExpectations(t)
}

func TestDeleteSection_NotFound(t *testing.T) {
	// Arrange
	userID := uuid.New()
	sectionID := uuid.New()
	router, sectionRepo, _ := setupSectionTest(userID)

	sectionRepo.On("GetByID", mock.Anything, sectionID).Return(nil, nil)

	// Act
	resp := doJSON(router, "DELETE", "/sections/"+sectionID.String(), nil)

	// Assert
	assert.Equal(t, http.StatusNotFound, resp.Code)
	sectionRepo.AssertNotCalled(t, "DeleteCascade", mock.Anything, mock.Anything)
}
