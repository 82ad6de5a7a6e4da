package smtp

import (
	"io"
	"log/slog"
	"testing"
	"time"

	gosmtp "github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBackend() *Backend {
	return NewBackend(BackendConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestNewBackend_DefaultLogger(t *testing.T) {
	backend := NewBackend(BackendConfig{})

	assert.NotNil(t, backend.logger, "nil logger config falls back to slog default")
}

func TestNewServer(t *testing.T) {
	server := NewServer(testBackend(), 2525, "openmail")

	assert.Equal(t, ":2525", server.Addr)
	assert.Equal(t, "openmail", server.Domain)
	assert.Equal(t, 60*time.Second, server.ReadTimeout)
	assert.Equal(t, 60*time.Second, server.WriteTimeout)
	assert.Equal(t, int64(25*1024*1024), server.MaxMessageBytes)
	assert.Equal(t, 100, server.MaxRecipients)
	assert.True(t, server.AllowInsecureAuth)
}

func TestSession_MailSetsEnvelopeSender(t *testing.T) {
	session := NewSession(testBackend())

	err := session.Mail("sender@example.com", nil)

	assert.NoError(t, err)
	assert.Equal(t, "sender@example.com", session.from)
}

func TestSession_RcptRejectsInvalidAddress(t *testing.T) {
	session := NewSession(testBackend())

	err := session.Rcpt("not-an-address", nil)

	require.Error(t, err)
	smtpErr, ok := err.(*gosmtp.SMTPError)
	require.True(t, ok)
	assert.Equal(t, 550, smtpErr.Code)
	assert.Empty(t, session.recipients)
}

func TestSession_DataWithoutRecipients(t *testing.T) {
	session := NewSession(testBackend())

	err := session.Data(nil)

	require.Error(t, err)
	smtpErr, ok := err.(*gosmtp.SMTPError)
	require.True(t, ok)
	assert.Equal(t, 503, smtpErr.Code)
}

func TestSession_Reset(t *testing.T) {
	session := NewSession(testBackend())
	session.from = "sender@example.com"
	session.recipients = []string{"user@test.com"}

	session.Reset()

	assert.Empty(t, session.from)
	assert.Empty(t, session.recipients)
}

func TestParseEmailAddress(t *testing.T) {
	tests := []struct {
		name       string
		address    string
		wantLocal  string
		wantDomain string
		wantErr    bool
	}{
		{"plain address", "user@test.com", "user", "test.com", false},
		{"angle brackets stripped", "<user@test.com>", "user", "test.com", false},
		{"lowercased", "User@Test.COM", "user", "test.com", false},
		{"surrounding whitespace", " user@test.com ", "user", "test.com", false},
		{"missing domain", "user@", "", "", true},
		{"missing local part", "@test.com", "", "", true},
		{"no at sign", "user.test.com", "", "", true},
		{"multiple at signs", "user@foo@test.com", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local, domain, err := parseEmailAddress(tt.address)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLocal, local)
			assert.Equal(t, tt.wantDomain, domain)
		})
	}
}
