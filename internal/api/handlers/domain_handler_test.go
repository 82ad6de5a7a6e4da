package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opensky-suite/openmail-backend/internal/models"
	"github.com/opensky-suite/openmail-backend/internal/repository"
	"github.com/opensky-suite/openmail-backend/tests/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// DomainHandlerTestSuite is the test suite for DomainHandler
type DomainHandlerTestSuite struct {
	suite.Suite
	echo     *echo.Echo
	handler  *DomainHandler
	mockRepo *mocks.MockDomainRepository
}

// SetupTest runs before each test
func (s *DomainHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.mockRepo = new(mocks.MockDomainRepository)
	s.handler = NewDomainHandler(s.mockRepo)
}

// TearDownTest runs after each test
func (s *DomainHandlerTestSuite) TearDownTest() {
	s.mockRepo.AssertExpectations(s.T())
}

// TestDomainHandlerTestSuite runs the test suite
func TestDomainHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(DomainHandlerTestSuite))
}

// Helper function to create a test context
func (s *DomainHandlerTestSuite) createContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	return c, rec
}

// Helper function to create a test domain
func (s *DomainHandlerTestSuite) createTestDomain(id uint, name string, active bool) *models.Domain {
	now := time.Now()
	return &models.Domain{
		ID:        id,
		Name:      name,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ==================== Create Tests ====================

// TestCreate_ValidInput tests creating a domain, active by default
func (s *DomainHandlerTestSuite) TestCreate_ValidInput() {
	// Arrange
	s.mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *models.Domain) bool {
		return d.Name == "example.com" && d.IsActive
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Domain).ID = 1
	}).Return(nil)

	c, rec := s.createContext(http.MethodPost, "/api/domains", `{"name": "example.com"}`)

	// Act
	err := s.handler.Create(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusCreated, rec.Code)
	s.Contains(rec.Body.String(), `"name":"example.com"`)
}

// TestCreate_ExplicitlyInactive tests that is_active=false is honored on create
func (s *DomainHandlerTestSuite) TestCreate_ExplicitlyInactive() {
	// Arrange
	s.mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *models.Domain) bool {
		return !d.IsActive
	})).Return(nil)

	c, rec := s.createContext(http.MethodPost, "/api/domains", `{"name": "parked.com", "is_active": false}`)

	// Act
	err := s.handler.Create(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusCreated, rec.Code)
}

// TestCreate_BadInput tests the request validation failure modes of Create
func (s *DomainHandlerTestSuite) TestCreate_BadInput() {
	for _, body := range []string{`{"name": ""}`, `{}`, `{"name": `, `{"name": "-bad-.com"}`, `{"name": "has spaces.com"}`} {
		// Arrange
		c, rec := s.createContext(http.MethodPost, "/api/domains", body)

		// Act
		err := s.handler.Create(c)

		// Assert
		s.NoError(err)
		s.Equal(http.StatusBadRequest, rec.Code)
	}
}

// TestCreate_DuplicateName tests the conflict response on duplicate names
func (s *DomainHandlerTestSuite) TestCreate_DuplicateName() {
	// Arrange
	s.mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Domain")).
		Return(repository.ErrDuplicateEntry)
	c, rec := s.createContext(http.MethodPost, "/api/domains", `{"name": "example.com"}`)

	// Act
	err := s.handler.Create(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusConflict, rec.Code)
}

// ==================== List Tests ====================

// TestList_All tests listing every domain
func (s *DomainHandlerTestSuite) TestList_All() {
	// Arrange
	domains := []models.Domain{
		*s.createTestDomain(1, "active.com", true),
		*s.createTestDomain(2, "parked.com", false),
	}
	s.mockRepo.On("List", mock.Anything, false).Return(domains, nil)
	c, rec := s.createContext(http.MethodGet, "/api/domains", "")

	// Act
	err := s.handler.List(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp struct {
		Success bool            `json:"success"`
		Data    []models.Domain `json:"data"`
	}
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.True(resp.Success)
	s.Len(resp.Data, 2)
}

// TestList_ActiveOnly tests the active_only query filter
func (s *DomainHandlerTestSuite) TestList_ActiveOnly() {
	// Arrange
	domains := []models.Domain{*s.createTestDomain(1, "active.com", true)}
	s.mockRepo.On("List", mock.Anything, true).Return(domains, nil)
	c, rec := s.createContext(http.MethodGet, "/api/domains?active_only=true", "")

	// Act
	err := s.handler.List(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
}

// TestList_InternalError tests listing when the repository fails
func (s *DomainHandlerTestSuite) TestList_InternalError() {
	// Arrange
	s.mockRepo.On("List", mock.Anything, false).Return(nil, errors.New("database error"))
	c, rec := s.createContext(http.MethodGet, "/api/domains", "")

	// Act
	err := s.handler.List(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusInternalServerError, rec.Code)
}

// ==================== Get Tests ====================

// TestGet tests the get endpoint across its outcomes
func (s *DomainHandlerTestSuite) TestGet() {
	tests := []struct {
		name       string
		id         string
		domain     *models.Domain
		repoErr    error
		wantStatus int
	}{
		{"existing domain", "1", s.createTestDomain(1, "example.com", true), nil, http.StatusOK},
		{"unknown domain", "999", nil, repository.ErrNotFound, http.StatusNotFound},
		{"repository failure", "1", nil, errors.New("database error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			// Arrange
			s.SetupTest()
			c, rec := s.createContext(http.MethodGet, "/api/domains/"+tt.id, "")
			c.SetParamNames("id")
			c.SetParamValues(tt.id)
			s.mockRepo.On("GetByID", mock.Anything, mock.AnythingOfType("uint")).Return(tt.domain, tt.repoErr)

			// Act
			err := s.handler.Get(c)

			// Assert
			s.NoError(err)
			s.Equal(tt.wantStatus, rec.Code)
		})
	}
}

// TestGet_InvalidID tests getting a domain with a malformed ID
func (s *DomainHandlerTestSuite) TestGet_InvalidID() {
	// Arrange
	c, rec := s.createContext(http.MethodGet, "/api/domains/invalid", "")
	c.SetParamNames("id")
	c.SetParamValues("invalid")

	// Act
	err := s.handler.Get(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
}

// ==================== Update Tests ====================

// TestUpdate_Rename tests updating a domain's name
func (s *DomainHandlerTestSuite) TestUpdate_Rename() {
	// Arrange
	existing := s.createTestDomain(1, "old.com", true)
	s.mockRepo.On("GetByID", mock.Anything, uint(1)).Return(existing, nil)
	s.mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(d *models.Domain) bool {
		return d.Name == "new.com" && d.IsActive
	})).Return(nil)

	c, rec := s.createContext(http.MethodPut, "/api/domains/1", `{"name": "new.com"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")

	// Act
	err := s.handler.Update(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"name":"new.com"`)
}

// TestUpdate_Deactivate tests flipping is_active off without renaming
func (s *DomainHandlerTestSuite) TestUpdate_Deactivate() {
	// Arrange
	existing := s.createTestDomain(1, "example.com", true)
	s.mockRepo.On("GetByID", mock.Anything, uint(1)).Return(existing, nil)
	s.mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(d *models.Domain) bool {
		return d.Name == "example.com" && !d.IsActive
	})).Return(nil)

	c, rec := s.createContext(http.MethodPut, "/api/domains/1", `{"is_active": false}`)
	c.SetParamNames("id")
	c.SetParamValues("1")

	// Act
	err := s.handler.Update(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
}

// TestUpdate_UnknownDomain tests updating a non-existent domain
func (s *DomainHandlerTestSuite) TestUpdate_UnknownDomain() {
	// Arrange
	s.mockRepo.On("GetByID", mock.Anything, uint(999)).Return(nil, repository.ErrNotFound)
	c, rec := s.createContext(http.MethodPut, "/api/domains/999", `{"name": "new.com"}`)
	c.SetParamNames("id")
	c.SetParamValues("999")

	// Act
	err := s.handler.Update(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusNotFound, rec.Code)
}

// TestUpdate_DuplicateName tests renaming onto an already-taken name
func (s *DomainHandlerTestSuite) TestUpdate_DuplicateName() {
	// Arrange
	existing := s.createTestDomain(1, "old.com", true)
	s.mockRepo.On("GetByID", mock.Anything, uint(1)).Return(existing, nil)
	s.mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Domain")).
		Return(repository.ErrDuplicateEntry)

	c, rec := s.createContext(http.MethodPut, "/api/domains/1", `{"name": "taken.com"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")

	// Act
	err := s.handler.Update(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusConflict, rec.Code)
}

// TestUpdate_InvalidID tests updating with a malformed ID
func (s *DomainHandlerTestSuite) TestUpdate_InvalidID() {
	// Arrange
	c, rec := s.createContext(http.MethodPut, "/api/domains/invalid", `{"name": "new.com"}`)
	c.SetParamNames("id")
	c.SetParamValues("invalid")

	// Act
	err := s.handler.Update(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
}

// ==================== Delete Tests ====================

// TestDelete tests the delete endpoint across its outcomes
func (s *DomainHandlerTestSuite) TestDelete() {
	tests := []struct {
		name       string
		id         string
		repoErr    error
		wantStatus int
	}{
		{"existing domain", "1", nil, http.StatusNoContent},
		{"unknown domain", "999", repository.ErrNotFound, http.StatusNotFound},
		{"repository failure", "1", errors.New("database error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			// Arrange
			s.SetupTest()
			c, rec := s.createContext(http.MethodDelete, "/api/domains/"+tt.id, "")
			c.SetParamNames("id")
			c.SetParamValues(tt.id)
			s.mockRepo.On("Delete", mock.Anything, mock.AnythingOfType("uint")).Return(tt.repoErr)

			// Act
			err := s.handler.Delete(c)

			// Assert
			s.NoError(err)
			s.Equal(tt.wantStatus, rec.Code)
		})
	}
}

// TestDelete_InvalidID tests deleting with a malformed ID
func (s *DomainHandlerTestSuite) TestDelete_InvalidID() {
	// Arrange
	c, rec := s.createContext(http.MethodDelete, "/api/domains/invalid", "")
	c.SetParamNames("id")
	c.SetParamValues("invalid")

	// Act
	err := s.handler.Delete(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
}
