// Package logger provides secure logging functionality for the OpenMail backend.
package logger

import (
	"log/slog"
	"os"
	"time"
)

// sensitiveKeys are attribute names that must never reach the log output
var sensitiveKeys = map[string]bool{
	"password":      true,
	"api_key":       true,
	"apikey":        true,
	"token":         true,
	"secret":        true,
	"authorization": true,
	"auth":          true,
	"credential":    true,
	"credentials":   true,
	"session":       true,
	"cookie":        true,
}

// SecurityLogger emits structured security events. Credentials and message
// bodies are never logged.
type SecurityLogger struct {
	logger *slog.Logger
}

// NewSecurityLogger creates a SecurityLogger writing JSON to stdout
func NewSecurityLogger() *SecurityLogger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return &SecurityLogger{logger: slog.New(handler)}
}

// NewSecurityLoggerWithHandler creates a SecurityLogger with a custom handler
func NewSecurityLoggerWithHandler(handler slog.Handler) *SecurityLogger {
	return &SecurityLogger{logger: slog.New(handler)}
}

// event emits one warning-level security event with a UTC timestamp
func (s *SecurityLogger) event(msg, eventType string, attrs ...any) {
	base := []any{
		slog.String("event_type", eventType),
		slog.Time("timestamp", time.Now().UTC()),
	}
	s.logger.Warn(msg, append(base, attrs...)...)
}

// AuthFailure records a failed authentication attempt without the
// presented credentials
func (s *SecurityLogger) AuthFailure(ip, path, reason string) {
	s.event("authentication_failure", "auth_failure",
		slog.String("ip", ip),
		slog.String("path", path),
		slog.String("reason", reason))
}

// RateLimitExceeded records a client running into the rate limiter
func (s *SecurityLogger) RateLimitExceeded(ip, path string) {
	s.event("rate_limit_exceeded", "rate_limit",
		slog.String("ip", ip),
		slog.String("path", path))
}

// SuspiciousActivity records potentially malicious behavior
func (s *SecurityLogger) SuspiciousActivity(ip, path, activity string) {
	s.event("suspicious_activity", "suspicious",
		slog.String("ip", ip),
		slog.String("path", path),
		slog.String("activity", activity))
}

// PathTraversalAttempt records a rejected storage path
func (s *SecurityLogger) PathTraversalAttempt(ip, path, attemptedPath string) {
	s.event("path_traversal_attempt", "path_traversal",
		slog.String("ip", ip),
		slog.String("path", path),
		slog.String("attempted_path", attemptedPath))
}

// InvalidOrigin records a WebSocket connection rejected on its Origin header
func (s *SecurityLogger) InvalidOrigin(ip, origin string) {
	s.event("invalid_origin", "invalid_origin",
		slog.String("ip", ip),
		slog.String("origin", origin))
}

// BlockedFileUpload records an attachment refused by the storage layer
func (s *SecurityLogger) BlockedFileUpload(ip, filename, reason string) {
	s.event("blocked_file_upload", "blocked_upload",
		slog.String("ip", ip),
		slog.String("filename", filename),
		slog.String("reason", reason))
}

// SpamDetected records an inbound message classified as spam. Only the
// sender, score, and reason labels are logged, never the body.
func (s *SecurityLogger) SpamDetected(mailboxID uint, sender string, score float64, reasons []string) {
	s.event("spam_detected", "spam_detected",
		slog.Uint64("mailbox_id", uint64(mailboxID)),
		slog.String("sender", sender),
		slog.Float64("score", score),
		slog.Any("reasons", reasons))
}

// SecurityEvent records a generic event, dropping any detail whose key
// looks credential-like
func (s *SecurityLogger) SecurityEvent(eventType, ip string, details map[string]string) {
	attrs := []any{slog.String("ip", ip)}
	for k, v := range details {
		if sensitiveKeys[k] {
			continue
		}
		attrs = append(attrs, slog.String(k, v))
	}
	s.event("security_event", eventType, attrs...)
}

// Info logs an informational message
func (s *SecurityLogger) Info(msg string, args ...any) {
	s.logger.Info(msg, args...)
}

// Error logs an error message
func (s *SecurityLogger) Error(msg string, args ...any) {
	s.logger.Error(msg, args...)
}

// GetLogger returns the underlying slog.Logger for use with middleware
func (s *SecurityLogger) GetLogger() *slog.Logger {
	return s.logger
}
