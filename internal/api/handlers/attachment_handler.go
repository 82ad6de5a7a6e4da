package handlers

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/opensky-suite/openmail-backend/internal/api/response"
	"github.com/opensky-suite/openmail-backend/internal/models"
	"github.com/opensky-suite/openmail-backend/internal/repository"
	"github.com/opensky-suite/openmail-backend/internal/storage"
)

// AttachmentHandler serves attachment metadata and streams file downloads
// from blob storage.
type AttachmentHandler struct {
	attachmentRepo repository.AttachmentRepository
	messageRepo    repository.MessageRepository
	fileStorage    storage.FileStorage
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(
	attachmentRepo repository.AttachmentRepository,
	messageRepo repository.MessageRepository,
	fileStorage storage.FileStorage,
) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentRepo: attachmentRepo,
		messageRepo:    messageRepo,
		fileStorage:    fileStorage,
	}
}

// List handles GET /api/messages/:message_id/attachments
func (h *AttachmentHandler) List(c echo.Context) error {
	messageID, err := strconv.ParseUint(c.Param("message_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	// Distinguish "message gone" from "message has no attachments"
	if _, err := h.messageRepo.GetByID(c.Request().Context(), uint(messageID)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to get message")
	}

	attachments, err := h.attachmentRepo.ListByMessage(c.Request().Context(), uint(messageID))
	if err != nil {
		return response.InternalError(c, "failed to list attachments")
	}

	return response.Success(c, attachments)
}

// Get handles GET /api/attachments/:id
func (h *AttachmentHandler) Get(c echo.Context) error {
	attachment, err := h.loadAttachment(c)
	if attachment == nil {
		return err
	}
	return response.Success(c, attachment)
}

// Download handles GET /api/attachments/:id/download, streaming the stored
// file with its original filename and content type.
func (h *AttachmentHandler) Download(c echo.Context) error {
	attachment, err := h.loadAttachment(c)
	if attachment == nil {
		return err
	}

	file, err := h.fileStorage.Get(attachment.FilePath)
	if err != nil {
		return response.InternalError(c, "failed to retrieve file")
	}
	defer file.Close()

	header := c.Response().Header()
	header.Set("Content-Type", attachment.ContentType)
	header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, attachment.Filename))
	if attachment.SizeBytes > 0 {
		header.Set("Content-Length", strconv.FormatInt(attachment.SizeBytes, 10))
	}

	if _, err := io.Copy(c.Response().Writer, file); err != nil {
		return response.InternalError(c, "failed to send file")
	}

	return nil
}

// loadAttachment parses the :id param and fetches the record, writing the
// error response itself when the lookup fails
func (h *AttachmentHandler) loadAttachment(c echo.Context) (*models.Attachment, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, response.BadRequest(c, "invalid attachment ID")
	}

	attachment, err := h.attachmentRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, response.NotFound(c, "attachment not found")
		}
		return nil, response.InternalError(c, "failed to get attachment")
	}
	return attachment, nil
}
