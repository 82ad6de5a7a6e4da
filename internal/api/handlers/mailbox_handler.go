package handlers

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/opensky-suite/openmail-backend/internal/api/response"
	"github.com/opensky-suite/openmail-backend/internal/models"
	"github.com/opensky-suite/openmail-backend/internal/repository"
	"github.com/opensky-suite/openmail-backend/internal/validator"
)

const randomLocalPartLength = 8

// MailboxHandler handles mailbox-related HTTP requests. Listings are served
// as summaries carrying per-mailbox unread and spam counts.
type MailboxHandler struct {
	mailboxRepo repository.MailboxRepository
	domainRepo  repository.DomainRepository
}

// NewMailboxHandler creates a new MailboxHandler
func NewMailboxHandler(mailboxRepo repository.MailboxRepository, domainRepo repository.DomainRepository) *MailboxHandler {
	return &MailboxHandler{
		mailboxRepo: mailboxRepo,
		domainRepo:  domainRepo,
	}
}

// CreateMailboxRequest represents the request body for creating a mailbox
type CreateMailboxRequest struct {
	LocalPart string `json:"local_part" validate:"required"`
	DomainID  uint   `json:"domain_id" validate:"required"`
}

// CreateRandomMailboxRequest represents the request body for creating a random mailbox
type CreateRandomMailboxRequest struct {
	DomainID uint `json:"domain_id" validate:"required"`
}

// activeDomain loads a domain and rejects the request when it is missing or
// disabled. Mailboxes can only be created under active domains.
func (h *MailboxHandler) activeDomain(c echo.Context, domainID uint) (*models.Domain, error) {
	domain, err := h.domainRepo.GetByID(c.Request().Context(), domainID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, response.NotFound(c, "domain not found")
		}
		return nil, response.InternalError(c, "failed to get domain")
	}
	if !domain.IsActive {
		return nil, response.BadRequest(c, "domain is not active")
	}
	return domain, nil
}

// Create handles POST /api/mailboxes
func (h *MailboxHandler) Create(c echo.Context) error {
	var req CreateMailboxRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.LocalPart == "" {
		return response.BadRequest(c, "local_part is required")
	}
	if err := validator.ValidateLocalPart(req.LocalPart); err != nil {
		return response.BadRequest(c, "invalid local part")
	}
	if req.DomainID == 0 {
		return response.BadRequest(c, "domain_id is required")
	}

	domain, err := h.activeDomain(c, req.DomainID)
	if domain == nil {
		return err
	}

	mailbox := &models.Mailbox{
		LocalPart:   req.LocalPart,
		DomainID:    req.DomainID,
		FullAddress: req.LocalPart + "@" + domain.Name,
	}

	if err := h.mailboxRepo.Create(c.Request().Context(), mailbox); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return response.Conflict(c, "mailbox already exists")
		}
		return response.InternalError(c, "failed to create mailbox")
	}

	return response.Created(c, mailbox)
}

// CreateRandom handles POST /api/mailboxes/random. The local part is a random
// alphanumeric string; a duplicate-address collision is retried once.
func (h *MailboxHandler) CreateRandom(c echo.Context) error {
	var req CreateRandomMailboxRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.DomainID == 0 {
		return response.BadRequest(c, "domain_id is required")
	}

	domain, err := h.activeDomain(c, req.DomainID)
	if domain == nil {
		return err
	}

	localPart := randomLocalPart(randomLocalPartLength)
	mailbox := &models.Mailbox{
		LocalPart:   localPart,
		DomainID:    req.DomainID,
		FullAddress: localPart + "@" + domain.Name,
	}

	if err := h.mailboxRepo.Create(c.Request().Context(), mailbox); err != nil {
		if !errors.Is(err, repository.ErrDuplicateEntry) {
			return response.InternalError(c, "failed to create mailbox")
		}
		localPart = randomLocalPart(randomLocalPartLength)
		mailbox.LocalPart = localPart
		mailbox.FullAddress = localPart + "@" + domain.Name
		if err := h.mailboxRepo.Create(c.Request().Context(), mailbox); err != nil {
			return response.InternalError(c, "failed to create mailbox")
		}
	}

	return response.Created(c, mailbox)
}

// List handles GET /api/mailboxes. Each item is a models.MailboxSummary with
// unread_count and spam_count populated.
func (h *MailboxHandler) List(c echo.Context) error {
	domainIDStr := c.QueryParam("domain_id")
	if domainIDStr == "" {
		return response.BadRequest(c, "domain_id is required")
	}

	domainID, err := strconv.ParseUint(domainIDStr, 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid domain_id")
	}

	limit, offset := paginationParams(c)
	summaries, total, err := h.mailboxRepo.ListByDomain(c.Request().Context(), uint(domainID), limit, offset)
	if err != nil {
		return response.InternalError(c, "failed to list mailboxes")
	}

	return response.Paginated(c, summaries, total, limit, offset)
}

// Get handles GET /api/mailboxes/:id and refreshes the last-accessed
// timestamp as a side effect
func (h *MailboxHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid mailbox ID")
	}

	mailbox, err := h.mailboxRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "mailbox not found")
		}
		return response.InternalError(c, "failed to get mailbox")
	}

	_ = h.mailboxRepo.UpdateLastAccessed(c.Request().Context(), uint(id))

	return response.Success(c, mailbox)
}

// Delete handles DELETE /api/mailboxes/:id
func (h *MailboxHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid mailbox ID")
	}

	if err := h.mailboxRepo.Delete(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "mailbox not found")
		}
		return response.InternalError(c, "failed to delete mailbox")
	}

	return response.NoContent(c)
}

// randomLocalPart builds a lowercase alphanumeric local part using crypto/rand
func randomLocalPart(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	result := make([]byte, length)
	for i := range result {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[n.Int64()]
	}
	return string(result)
}
