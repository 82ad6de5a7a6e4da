package handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/opensky-suite/openmail-backend/internal/api/response"
	"github.com/opensky-suite/openmail-backend/internal/repository"
	"github.com/opensky-suite/openmail-backend/internal/services"
	"github.com/opensky-suite/openmail-backend/internal/validator"
)

// MessageHandler handles message-related HTTP requests, including the spam
// correction endpoints that drive classifier training.
type MessageHandler struct {
	messageRepo repository.MessageRepository
	mailboxRepo repository.MailboxRepository
	processor   services.MailProcessor
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageRepo repository.MessageRepository, mailboxRepo repository.MailboxRepository, processor services.MailProcessor) *MessageHandler {
	return &MessageHandler{
		messageRepo: messageRepo,
		mailboxRepo: mailboxRepo,
		processor:   processor,
	}
}

// List handles GET /api/mailboxes/:mailbox_id/messages
func (h *MessageHandler) List(c echo.Context) error {
	mailboxID, err := strconv.ParseUint(c.Param("mailbox_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid mailbox ID")
	}

	// Verify mailbox exists
	_, err = h.mailboxRepo.GetByID(c.Request().Context(), uint(mailboxID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "mailbox not found")
		}
		return response.InternalError(c, "failed to get mailbox")
	}

	limit, offset := paginationParams(c)
	messages, total, err := h.messageRepo.ListByMailbox(c.Request().Context(), uint(mailboxID), limit, offset)
	if err != nil {
		return response.InternalError(c, "failed to list messages")
	}

	return response.Paginated(c, messages, total, limit, offset)
}

// Get handles GET /api/messages/:id
func (h *MessageHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	message, err := h.messageRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to get message")
	}

	// Auto mark as read
	if !message.IsRead {
		_ = h.messageRepo.MarkAsRead(c.Request().Context(), uint(id))
		message.IsRead = true
	}

	return response.Success(c, message)
}

// MarkAsRead handles PATCH /api/messages/:id/read
func (h *MessageHandler) MarkAsRead(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	if err := h.messageRepo.MarkAsRead(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to mark message as read")
	}

	return response.SuccessWithMessage(c, nil, "message marked as read")
}

// MarkAsSpam handles PATCH /api/messages/:id/spam. The correction trains the
// classifier in addition to flipping the flag.
func (h *MessageHandler) MarkAsSpam(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	message, err := h.processor.MarkAsSpam(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to mark message as spam")
	}

	return response.SuccessWithMessage(c, message, "message marked as spam")
}

// MarkAsNotSpam handles PATCH /api/messages/:id/not-spam
func (h *MessageHandler) MarkAsNotSpam(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	message, err := h.processor.MarkAsNotSpam(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to mark message as not spam")
	}

	return response.SuccessWithMessage(c, message, "message marked as not spam")
}

// SetFlag handles PATCH /api/messages/:id/flags/:flag with body {"value": bool}
func (h *MessageHandler) SetFlag(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	var body struct {
		Value bool `json:"value"`
	}
	if err := c.Bind(&body); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	flag := c.Param("flag")
	if err := h.messageRepo.SetFlag(c.Request().Context(), uint(id), flag, body.Value); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		if errors.Is(err, repository.ErrInvalidInput) {
			return response.BadRequest(c, "unknown message flag")
		}
		return response.InternalError(c, "failed to update message flag")
	}

	// Flag changes alter the thread aggregate (star/archive/trash are
	// OR/AND folds over members), so recompute it.
	if message, err := h.messageRepo.GetByID(c.Request().Context(), uint(id)); err == nil && message.ThreadID != "" {
		_ = h.processor.RefreshThread(c.Request().Context(), message.ThreadID)
	}

	return response.SuccessWithMessage(c, nil, "message flag updated")
}

// Delete handles DELETE /api/messages/:id
func (h *MessageHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	message, err := h.messageRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to get message")
	}

	if err := h.messageRepo.Delete(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to delete message")
	}

	if message.ThreadID != "" {
		_ = h.processor.RefreshThread(c.Request().Context(), message.ThreadID)
	}

	return response.NoContent(c)
}

// paginationParams reads limit/offset query parameters and clamps them to
// the validator's bounds
func paginationParams(c echo.Context) (limit, offset int) {
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil {
			offset = parsed
		}
	}
	return validator.ValidatePagination(limit, offset)
}
