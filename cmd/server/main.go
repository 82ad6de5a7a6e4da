package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opensky-suite/openmail-backend/internal/api"
	"github.com/opensky-suite/openmail-backend/internal/config"
	"github.com/opensky-suite/openmail-backend/internal/database"
	"github.com/opensky-suite/openmail-backend/internal/repository"
	"github.com/opensky-suite/openmail-backend/internal/services"
	"github.com/opensky-suite/openmail-backend/internal/smtp"
	"github.com/opensky-suite/openmail-backend/internal/spamfilter"
	"github.com/opensky-suite/openmail-backend/internal/storage"
	"github.com/opensky-suite/openmail-backend/internal/threading"
	"github.com/opensky-suite/openmail-backend/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting OpenMail Backend Server...")

	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	cfg.LogConfig(logger)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.AttachmentStoragePath)
	if err != nil {
		slog.Error("failed to initialize file storage", slog.Any("error", err))
		os.Exit(1)
	}

	// Repositories
	domainRepo := repository.NewDomainRepository(db)
	mailboxRepo := repository.NewMailboxRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	classifierRepo := repository.NewClassifierRepository(db)

	// Classification and threading core
	classifier := spamfilter.New(spamfilter.Config{
		Threshold:         cfg.SpamThreshold,
		BayesianEnabled:   cfg.SpamBayesianEnabled,
		PatternsEnabled:   cfg.SpamPatternsEnabled,
		ReputationEnabled: cfg.SpamReputationEnabled,
	})
	matcher := threading.NewMatcher(threading.Config{
		MaxThreadAge:                time.Duration(cfg.ThreadMaxAgeDays) * 24 * time.Hour,
		DisableSubjectNormalization: !cfg.ThreadNormalizeSubjects,
	})

	processor := services.NewMailProcessor(
		messageRepo, threadRepo, classifierRepo,
		classifier, matcher,
		services.MailProcessorConfig{
			CandidateWindow: time.Duration(cfg.CandidateWindowDays) * 24 * time.Hour,
			CandidateLimit:  cfg.CandidateLimit,
		},
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := processor.LoadModel(ctx); err != nil {
		slog.Error("failed to load classifier model", slog.Any("error", err))
		os.Exit(1)
	}

	// WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	// HTTP API
	router := api.NewRouter(&api.RouterConfig{
		DB:             db,
		FileStorage:    fileStorage,
		Processor:      processor,
		Logger:         logger,
		APIKey:         cfg.APIKey,
		AllowedOrigins: splitOrigins(cfg.AllowedOrigins),
		RateLimit:      int(cfg.RateLimitRequests),
		RateBurst:      cfg.RateLimitBurst,
		EnableAuth:     cfg.APIKey != "",
	})
	registerWebSocket(router, wsHub, logger)

	go func() {
		addr := ":" + strconv.Itoa(cfg.APIPort)
		slog.Info("HTTP server listening", slog.String("addr", addr))
		if err := router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", slog.Any("error", err))
			cancel()
		}
	}()

	// SMTP server
	smtpBackend := smtp.NewBackend(smtp.BackendConfig{
		DomainRepo:    domainRepo,
		MailboxRepo:   mailboxRepo,
		Processor:     processor,
		FileStorage:   fileStorage,
		WSHub:         wsHub,
		Logger:        logger,
		AutoProvision: cfg.AutoProvisioningEnabled,
	})
	smtpServer := smtp.NewServer(smtpBackend, cfg.SMTPPort, "openmail")

	go func() {
		slog.Info("SMTP server listening", slog.String("addr", smtpServer.Addr))
		if err := smtpServer.ListenAndServe(); err != nil {
			slog.Error("SMTP server error", slog.Any("error", err))
			cancel()
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case <-ctx.Done():
	}
	slog.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := smtpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("SMTP server shutdown error", slog.Any("error", err))
	}
	if err := router.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", slog.Any("error", err))
	}

	// Persist the trained classifier state before exiting
	if err := processor.SaveModel(shutdownCtx); err != nil {
		slog.Error("failed to save classifier model", slog.Any("error", err))
	}

	slog.Info("Server stopped")
}

// registerWebSocket mounts the realtime notification endpoint
func registerWebSocket(e *echo.Echo, hub *websocket.Hub, logger *slog.Logger) {
	upgrader := websocket.NewSecureUpgrader(logger)
	e.GET("/ws", func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}
		client := websocket.NewClient(hub, conn, logger)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
		return nil
	})
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
