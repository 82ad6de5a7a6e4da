package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/opensky-suite/openmail-backend/internal/errors"
	seclog "github.com/opensky-suite/openmail-backend/internal/logger"
	"github.com/opensky-suite/openmail-backend/internal/models"
	"github.com/opensky-suite/openmail-backend/internal/repository"
	"github.com/opensky-suite/openmail-backend/internal/spamfilter"
	"github.com/opensky-suite/openmail-backend/internal/threading"
)

// Candidate prefetch defaults. Threading candidates are bounded here, not in
// the core: the matcher itself never limits candidate-set size.
const (
	DefaultCandidateWindow = 90 * 24 * time.Hour
	DefaultCandidateLimit  = 200
)

// MailProcessorConfig holds configuration for the processing pipeline.
type MailProcessorConfig struct {
	CandidateWindow time.Duration
	CandidateLimit  int
}

// MailProcessor runs the classification and conversation-assembly pipeline:
// each inbound message is threaded, then scored, then persisted, and the
// affected thread aggregate is rebuilt. It also applies human spam
// corrections to the trained model and handles model persistence.
type MailProcessor interface {
	// ProcessIncoming threads and classifies the message, stores it with
	// its attachments, and refreshes the thread aggregate.
	ProcessIncoming(ctx context.Context, message *models.Message, attachments []models.Attachment) error

	// MarkAsSpam applies a human spam correction: train the model on the
	// message and flip its verdict.
	MarkAsSpam(ctx context.Context, messageID uint) (*models.Message, error)

	// MarkAsNotSpam reverses a spam verdict: untrain spam, train ham, and
	// clear the flag.
	MarkAsNotSpam(ctx context.Context, messageID uint) (*models.Message, error)

	// RefreshThread recomputes and stores a thread's aggregate row.
	RefreshThread(ctx context.Context, threadID string) error

	ClassifierStats() spamfilter.Stats
	ExportModel() spamfilter.Snapshot
	ImportModel(ctx context.Context, snapshot spamfilter.Snapshot) error
	LoadModel(ctx context.Context) error
	SaveModel(ctx context.Context) error
}

// mailProcessor implements MailProcessor
type mailProcessor struct {
	messageRepo    repository.MessageRepository
	threadRepo     repository.ThreadRepository
	classifierRepo repository.ClassifierRepository

	classifier *spamfilter.Classifier
	matcher    *threading.Matcher
	cfg        MailProcessorConfig
	logger     *slog.Logger
	security   *seclog.SecurityLogger

	// The classifier model is mutable shared state and not internally
	// synchronized; every train/untrain/score path goes through this mutex.
	mu sync.Mutex
}

// NewMailProcessor creates a MailProcessor instance
func NewMailProcessor(
	messageRepo repository.MessageRepository,
	threadRepo repository.ThreadRepository,
	classifierRepo repository.ClassifierRepository,
	classifier *spamfilter.Classifier,
	matcher *threading.Matcher,
	cfg MailProcessorConfig,
	logger *slog.Logger,
) MailProcessor {
	if cfg.CandidateWindow <= 0 {
		cfg.CandidateWindow = DefaultCandidateWindow
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = DefaultCandidateLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &mailProcessor{
		messageRepo:    messageRepo,
		threadRepo:     threadRepo,
		classifierRepo: classifierRepo,
		classifier:     classifier,
		matcher:        matcher,
		cfg:            cfg,
		logger:         logger,
		security:       seclog.NewSecurityLoggerWithHandler(logger.Handler()),
	}
}

// ProcessIncoming threads the message, scores it, persists it and refreshes
// the thread aggregate. Classification and threading are advisory: an
// aggregate-maintenance failure is logged and does not block storage.
func (p *mailProcessor) ProcessIncoming(ctx context.Context, message *models.Message, attachments []models.Attachment) error {
	since := time.Now().Add(-p.cfg.CandidateWindow)
	candidates, err := p.messageRepo.ListRecentByMailbox(ctx, message.MailboxID, since, p.cfg.CandidateLimit)
	if err != nil {
		return fmt.Errorf("failed to load threading candidates: %w", err)
	}

	if message.ReceivedAt.IsZero() {
		message.ReceivedAt = time.Now()
	}

	threadID := p.matcher.FindThreadForEmail(message, candidates)
	if threadID == "" {
		threadID = uuid.NewString()
	}
	message.ThreadID = threadID

	p.mu.Lock()
	verdict := p.classifier.Score(message)
	p.mu.Unlock()
	message.SpamScore = verdict.Score
	message.IsSpam = verdict.IsSpam
	message.Snippet = threading.ThreadSnippet(message, threading.DefaultSnippetLength)

	if err := p.messageRepo.CreateWithAttachments(ctx, message, attachments); err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}

	if verdict.IsSpam {
		p.security.SpamDetected(message.MailboxID, message.SenderEmail, verdict.Score, verdict.Reasons)
	}

	if err := p.RefreshThread(ctx, threadID); err != nil {
		p.logger.Error("failed to refresh thread aggregate",
			slog.String("thread_id", threadID),
			slog.Any("error", err))
	}

	return nil
}

// MarkAsSpam trains the classifier on the message, flips its verdict and
// refreshes the thread aggregate
func (p *mailProcessor) MarkAsSpam(ctx context.Context, messageID uint) (*models.Message, error) {
	message, err := p.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.classifier.TrainSpam(message)
	p.mu.Unlock()

	if err := p.messageRepo.SetSpam(ctx, messageID, true, 100); err != nil {
		return nil, err
	}
	message.IsSpam = true
	message.SpamScore = 100

	if message.ThreadID != "" {
		if err := p.RefreshThread(ctx, message.ThreadID); err != nil {
			p.logger.Error("failed to refresh thread aggregate",
				slog.String("thread_id", message.ThreadID),
				slog.Any("error", err))
		}
	}

	if err := p.SaveModel(ctx); err != nil {
		p.logger.Error("failed to persist classifier model", slog.Any("error", err))
	}
	return message, nil
}

// MarkAsNotSpam untrains the spam example, trains the message as ham, and
// clears the verdict. Untraining a message that was never trained is
// absorbed by the model's zero floor.
func (p *mailProcessor) MarkAsNotSpam(ctx context.Context, messageID uint) (*models.Message, error) {
	message, err := p.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.classifier.UntrainSpam(message)
	p.classifier.TrainHam(message)
	p.mu.Unlock()

	if err := p.messageRepo.SetSpam(ctx, messageID, false, 0); err != nil {
		return nil, err
	}
	message.IsSpam = false
	message.SpamScore = 0

	if message.ThreadID != "" {
		if err := p.RefreshThread(ctx, message.ThreadID); err != nil {
			p.logger.Error("failed to refresh thread aggregate",
				slog.String("thread_id", message.ThreadID),
				slog.Any("error", err))
		}
	}

	if err := p.SaveModel(ctx); err != nil {
		p.logger.Error("failed to persist classifier model", slog.Any("error", err))
	}
	return message, nil
}

// RefreshThread recomputes the derived aggregate from the thread's member
// messages. A thread whose last message disappeared is left for the caller
// to clean up.
func (p *mailProcessor) RefreshThread(ctx context.Context, threadID string) error {
	members, err := p.messageRepo.ListByThread(ctx, threadID)
	if err != nil {
		return err
	}

	data, err := threading.BuildThreadData(members)
	if err != nil {
		if errors.Is(err, threading.ErrNoMessages) {
			return nil
		}
		return err
	}

	thread := &models.Thread{
		ID:             threadID,
		MailboxID:      members[0].MailboxID,
		Subject:        data.Subject,
		Snippet:        data.Snippet,
		MessageCount:   data.MessageCount,
		UnreadCount:    data.UnreadCount,
		HasAttachments: data.HasAttachments,
		IsStarred:      data.IsStarred,
		IsImportant:    data.IsImportant,
		IsArchived:     data.IsArchived,
		IsTrashed:      data.IsTrashed,
		LastMessageAt:  data.LastMessageAt,
	}
	return p.threadRepo.Upsert(ctx, thread)
}

// ClassifierStats reports model dimensions for monitoring
func (p *mailProcessor) ClassifierStats() spamfilter.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.classifier.Stats()
}

// ExportModel snapshots the trained model
func (p *mailProcessor) ExportModel() spamfilter.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.classifier.Export()
}

// ImportModel replaces the trained model wholesale and persists it
func (p *mailProcessor) ImportModel(ctx context.Context, snapshot spamfilter.Snapshot) error {
	p.mu.Lock()
	p.classifier.Import(snapshot)
	p.mu.Unlock()
	return p.SaveModel(ctx)
}

// LoadModel restores the persisted model, if any. A missing row means a
// fresh deployment and is not an error.
func (p *mailProcessor) LoadModel(ctx context.Context) error {
	raw, err := p.classifierRepo.Load(ctx, models.DefaultClassifierStateName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	var snapshot spamfilter.Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidModelSnapshot, err)
	}

	p.mu.Lock()
	p.classifier.Import(snapshot)
	p.mu.Unlock()

	p.logger.Info("classifier model restored",
		slog.Int("tokens", len(snapshot.Tokens)),
		slog.Int("spam_trained", snapshot.SpamCount),
		slog.Int("ham_trained", snapshot.HamCount))
	return nil
}

// SaveModel persists the current model snapshot
func (p *mailProcessor) SaveModel(ctx context.Context) error {
	p.mu.Lock()
	snapshot := p.classifier.Export()
	p.mu.Unlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode classifier snapshot: %w", err)
	}
	return p.classifierRepo.Save(ctx, models.DefaultClassifierStateName, string(data))
}
