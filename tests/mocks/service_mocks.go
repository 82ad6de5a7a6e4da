package mocks

import (
	"context"

	"github.com/opensky-suite/openmail-backend/internal/models"
	"github.com/opensky-suite/openmail-backend/internal/spamfilter"
	"github.com/stretchr/testify/mock"
)

// MockMailProcessor implements services.MailProcessor
type MockMailProcessor struct {
	mock.Mock
}

// ProcessIncoming threads, classifies and stores a message
func (m *MockMailProcessor) ProcessIncoming(ctx context.Context, message *models.Message, attachments []models.Attachment) error {
	args := m.Called(ctx, message, attachments)
	return args.Error(0)
}

// MarkAsSpam trains the model on the message and flags it as spam
func (m *MockMailProcessor) MarkAsSpam(ctx context.Context, messageID uint) (*models.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// MarkAsNotSpam reverses a spam verdict
func (m *MockMailProcessor) MarkAsNotSpam(ctx context.Context, messageID uint) (*models.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// RefreshThread recomputes and stores a thread's aggregate row
func (m *MockMailProcessor) RefreshThread(ctx context.Context, threadID string) error {
	args := m.Called(ctx, threadID)
	return args.Error(0)
}

// ClassifierStats returns the trained model's counters
func (m *MockMailProcessor) ClassifierStats() spamfilter.Stats {
	args := m.Called()
	return args.Get(0).(spamfilter.Stats)
}

// ExportModel returns a snapshot of the trained model
func (m *MockMailProcessor) ExportModel() spamfilter.Snapshot {
	args := m.Called()
	return args.Get(0).(spamfilter.Snapshot)
}

// ImportModel replaces the trained model and persists it
func (m *MockMailProcessor) ImportModel(ctx context.Context, snapshot spamfilter.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

// LoadModel restores the trained model from storage
func (m *MockMailProcessor) LoadModel(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// SaveModel persists the trained model
func (m *MockMailProcessor) SaveModel(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
