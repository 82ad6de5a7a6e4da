package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
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

// AttachmentHandlerTestSuite is the test suite for AttachmentHandler
type AttachmentHandlerTestSuite struct {
	suite.Suite
	echo               *echo.Echo
	handler            *AttachmentHandler
	mockAttachmentRepo *mocks.MockAttachmentRepository
	mockMessageRepo    *mocks.MockMessageRepository
	mockFileStorage    *mocks.MockFileStorage
}

// SetupTest runs before each test
func (s *AttachmentHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.mockAttachmentRepo = new(mocks.MockAttachmentRepository)
	s.mockMessageRepo = new(mocks.MockMessageRepository)
	s.mockFileStorage = new(mocks.MockFileStorage)
	s.handler = NewAttachmentHandler(s.mockAttachmentRepo, s.mockMessageRepo, s.mockFileStorage)
}

// TearDownTest runs after each test
func (s *AttachmentHandlerTestSuite) TearDownTest() {
	s.mockAttachmentRepo.AssertExpectations(s.T())
	s.mockMessageRepo.AssertExpectations(s.T())
	s.mockFileStorage.AssertExpectations(s.T())
}

// TestAttachmentHandlerTestSuite runs the test suite
func TestAttachmentHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AttachmentHandlerTestSuite))
}

// Helper function to create a test context
func (s *AttachmentHandlerTestSuite) createContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	return c, rec
}

// Helper function to create a classified, threaded test message
func (s *AttachmentHandlerTestSuite) createTestMessage(id uint) *models.Message {
	return &models.Message{
		ID:             id,
		MailboxID:      1,
		SenderEmail:    "sender@external.com",
		Subject:        "Invoice attached",
		ThreadID:       "thread-invoice",
		SpamScore:      0.02,
		HasAttachments: true,
		ReceivedAt:     time.Now(),
	}
}

// Helper function to create a test attachment
func (s *AttachmentHandlerTestSuite) createTestAttachment(id uint) *models.Attachment {
	return &models.Attachment{
		ID:          id,
		MessageID:   1,
		Filename:    "invoice.pdf",
		ContentType: "application/pdf",
		FilePath:    "/attachments/abc123.pdf",
		SizeBytes:   1024,
	}
}

// nopReadCloser wraps a byte slice as the io.ReadCloser storage returns
func nopReadCloser(data []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(data))
}

// ==================== List Tests ====================

// TestList_Success tests listing a message's attachments
func (s *AttachmentHandlerTestSuite) TestList_Success() {
	// Arrange
	s.mockMessageRepo.On("GetByID", mock.Anything, uint(1)).Return(s.createTestMessage(1), nil)
	s.mockAttachmentRepo.On("ListByMessage", mock.Anything, uint(1)).Return([]models.Attachment{
		*s.createTestAttachment(1),
		{ID: 2, MessageID: 1, Filename: "photo.png", ContentType: "image/png", FilePath: "/attachments/def456.png", SizeBytes: 2048},
	}, nil)

	c, rec := s.createContext(http.MethodGet, "/api/messages/1/attachments")
	c.SetParamNames("message_id")
	c.SetParamValues("1")

	// Act
	err := s.handler.List(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp struct {
		Success bool                `json:"success"`
		Data    []models.Attachment `json:"data"`
	}
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.True(resp.Success)
	s.Len(resp.Data, 2)
	s.Equal("invoice.pdf", resp.Data[0].Filename)
}

// TestList_MessageNotFound tests listing attachments for an unknown message
func (s *AttachmentHandlerTestSuite) TestList_MessageNotFound() {
	// Arrange
	s.mockMessageRepo.On("GetByID", mock.Anything, uint(999)).Return(nil, repository.ErrNotFound)
	c, rec := s.createContext(http.MethodGet, "/api/messages/999/attachments")
	c.SetParamNames("message_id")
	c.SetParamValues("999")

	// Act
	err := s.handler.List(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusNotFound, rec.Code)
}

// TestList_InvalidMessageID tests listing with a malformed message ID
func (s *AttachmentHandlerTestSuite) TestList_InvalidMessageID() {
	// Arrange
	c, rec := s.createContext(http.MethodGet, "/api/messages/invalid/attachments")
	c.SetParamNames("message_id")
	c.SetParamValues("invalid")

	// Act
	err := s.handler.List(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
}

// TestList_RepositoryError tests listing when the attachment lookup fails
func (s *AttachmentHandlerTestSuite) TestList_RepositoryError() {
	// Arrange
	s.mockMessageRepo.On("GetByID", mock.Anything, uint(1)).Return(s.createTestMessage(1), nil)
	s.mockAttachmentRepo.On("ListByMessage", mock.Anything, uint(1)).Return(nil, errors.New("database error"))

	c, rec := s.createContext(http.MethodGet, "/api/messages/1/attachments")
	c.SetParamNames("message_id")
	c.SetParamValues("1")

	// Act
	err := s.handler.List(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusInternalServerError, rec.Code)
}

// ==================== Get Tests ====================

// TestGet tests attachment metadata retrieval across its outcomes
func (s *AttachmentHandlerTestSuite) TestGet() {
	tests := []struct {
		name       string
		id         string
		attachment *models.Attachment
		repoErr    error
		wantStatus int
	}{
		{"existing attachment", "1", s.createTestAttachment(1), nil, http.StatusOK},
		{"unknown attachment", "999", nil, repository.ErrNotFound, http.StatusNotFound},
		{"repository failure", "1", nil, errors.New("database error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			// Arrange
			s.SetupTest()
			c, rec := s.createContext(http.MethodGet, "/api/attachments/"+tt.id)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)
			s.mockAttachmentRepo.On("GetByID", mock.Anything, mock.AnythingOfType("uint")).Return(tt.attachment, tt.repoErr)

			// Act
			err := s.handler.Get(c)

			// Assert
			s.NoError(err)
			s.Equal(tt.wantStatus, rec.Code)
		})
	}
}

// TestGet_InvalidID tests getting an attachment with a malformed ID
func (s *AttachmentHandlerTestSuite) TestGet_InvalidID() {
	// Arrange
	c, rec := s.createContext(http.MethodGet, "/api/attachments/invalid")
	c.SetParamNames("id")
	c.SetParamValues("invalid")

	// Act
	err := s.handler.Get(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
}

// ==================== Download Tests ====================

// TestDownload_Success tests streaming a stored file with its headers
func (s *AttachmentHandlerTestSuite) TestDownload_Success() {
	// Arrange
	attachment := s.createTestAttachment(1)
	content := []byte("%PDF-1.4 fake invoice body")
	s.mockAttachmentRepo.On("GetByID", mock.Anything, uint(1)).Return(attachment, nil)
	s.mockFileStorage.On("Get", attachment.FilePath).Return(nopReadCloser(content), nil)

	c, rec := s.createContext(http.MethodGet, "/api/attachments/1/download")
	c.SetParamNames("id")
	c.SetParamValues("1")

	// Act
	err := s.handler.Download(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(content, rec.Body.Bytes())
	s.Equal("application/pdf", rec.Header().Get("Content-Type"))
	s.Equal(`attachment; filename="invoice.pdf"`, rec.Header().Get("Content-Disposition"))
	s.Equal("1024", rec.Header().Get("Content-Length"))
}

// TestDownload_NotFound tests downloading an unknown attachment
func (s *AttachmentHandlerTestSuite) TestDownload_NotFound() {
	// Arrange
	s.mockAttachmentRepo.On("GetByID", mock.Anything, uint(999)).Return(nil, repository.ErrNotFound)
	c, rec := s.createContext(http.MethodGet, "/api/attachments/999/download")
	c.SetParamNames("id")
	c.SetParamValues("999")

	// Act
	err := s.handler.Download(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusNotFound, rec.Code)
}

// TestDownload_StorageError tests downloading when the blob store fails
func (s *AttachmentHandlerTestSuite) TestDownload_StorageError() {
	// Arrange
	attachment := s.createTestAttachment(1)
	s.mockAttachmentRepo.On("GetByID", mock.Anything, uint(1)).Return(attachment, nil)
	s.mockFileStorage.On("Get", attachment.FilePath).Return(nil, errors.New("file missing"))

	c, rec := s.createContext(http.MethodGet, "/api/attachments/1/download")
	c.SetParamNames("id")
	c.SetParamValues("1")

	// Act
	err := s.handler.Download(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusInternalServerError, rec.Code)
}
