package handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/opensky-suite/openmail-backend/internal/api/response"
	"github.com/opensky-suite/openmail-backend/internal/models"
	"github.com/opensky-suite/openmail-backend/internal/repository"
)

// ThreadHandler handles conversation thread HTTP requests
type ThreadHandler struct {
	threadRepo  repository.ThreadRepository
	messageRepo repository.MessageRepository
	mailboxRepo repository.MailboxRepository
}

// NewThreadHandler creates a new ThreadHandler
func NewThreadHandler(threadRepo repository.ThreadRepository, messageRepo repository.MessageRepository, mailboxRepo repository.MailboxRepository) *ThreadHandler {
	return &ThreadHandler{
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		mailboxRepo: mailboxRepo,
	}
}

// List handles GET /api/mailboxes/:mailbox_id/threads
func (h *ThreadHandler) List(c echo.Context) error {
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
	threads, total, err := h.threadRepo.ListByMailbox(c.Request().Context(), uint(mailboxID), limit, offset)
	if err != nil {
		return response.InternalError(c, "failed to list threads")
	}

	return response.Paginated(c, threads, total, limit, offset)
}

// threadDetail pairs the aggregate row with the member messages in
// chronological order
type threadDetail struct {
	Thread   *models.Thread    `json:"thread"`
	Messages []*models.Message `json:"messages"`
}

// Get handles GET /api/threads/:id
func (h *ThreadHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return response.BadRequest(c, "invalid thread ID")
	}

	thread, err := h.threadRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "thread not found")
		}
		return response.InternalError(c, "failed to get thread")
	}

	messages, err := h.messageRepo.ListByThread(c.Request().Context(), id)
	if err != nil {
		return response.InternalError(c, "failed to list thread messages")
	}

	return response.Success(c, &threadDetail{Thread: thread, Messages: messages})
}

// Delete handles DELETE /api/threads/:id. Only the aggregate row is removed;
// member messages keep their thread_id and can be re-aggregated.
func (h *ThreadHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return response.BadRequest(c, "invalid thread ID")
	}

	if err := h.threadRepo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "thread not found")
		}
		return response.InternalError(c, "failed to delete thread")
	}

	return response.NoContent(c)
}
