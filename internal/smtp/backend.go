package smtp

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/opensky-suite/openmail-backend/internal/repository"
	"github.com/opensky-suite/openmail-backend/internal/services"
	"github.com/opensky-suite/openmail-backend/internal/storage"
	"github.com/opensky-suite/openmail-backend/internal/websocket"
)

// Backend implements the go-smtp Backend interface. Inbound messages are
// parsed here and handed to the processing pipeline, which threads,
// classifies and stores them.
type Backend struct {
	domainRepo    repository.DomainRepository
	mailboxRepo   repository.MailboxRepository
	processor     services.MailProcessor
	fileStorage   storage.FileStorage
	wsHub         *websocket.Hub
	logger        *slog.Logger
	autoProvision bool
}

// BackendConfig holds dependencies for the SMTP backend
type BackendConfig struct {
	DomainRepo    repository.DomainRepository
	MailboxRepo   repository.MailboxRepository
	Processor     services.MailProcessor
	FileStorage   storage.FileStorage
	WSHub         *websocket.Hub
	Logger        *slog.Logger
	AutoProvision bool
}

// NewBackend creates a new SMTP backend
func NewBackend(cfg BackendConfig) *Backend {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		domainRepo:    cfg.DomainRepo,
		mailboxRepo:   cfg.MailboxRepo,
		processor:     cfg.Processor,
		fileStorage:   cfg.FileStorage,
		wsHub:         cfg.WSHub,
		logger:        logger,
		autoProvision: cfg.AutoProvision,
	}
}

// NewSession is called for each new SMTP connection
func (b *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return NewSession(b), nil
}

// NewServer creates a configured go-smtp server around the backend
func NewServer(backend *Backend, port int, domain string) *smtp.Server {
	server := smtp.NewServer(backend)
	server.Addr = fmt.Sprintf(":%d", port)
	server.Domain = domain
	server.ReadTimeout = 60 * time.Second
	server.WriteTimeout = 60 * time.Second
	server.MaxMessageBytes = 25 * 1024 * 1024
	server.MaxRecipients = 100
	server.AllowInsecureAuth = true
	return server
}
