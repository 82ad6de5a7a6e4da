// Package validator provides input validation and sanitization functions
// for the OpenMail backend security layer.
package validator

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInvalidDomain    = errors.New("invalid domain format")
	ErrInvalidLocalPart = errors.New("invalid local part format")
	ErrInputTooLong     = errors.New("input exceeds maximum length")
	ErrInvalidCharacter = errors.New("input contains invalid characters")
	ErrEmptyInput       = errors.New("input cannot be empty")
)

var (
	// DNS labels: lowercase alphanumeric plus interior hyphens, 63 chars max
	domainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*$`)

	// Local parts: lowercase alphanumeric start, then dots, underscores, hyphens
	localPartRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)
)

// ValidateEmail checks a full address: lowercased, trimmed, at most 254
// characters (RFC 5321), and parseable per RFC 5322
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(email) > 254 {
		return ErrInputTooLong
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateDomain checks a domain name against DNS naming rules, capped at
// 253 characters (RFC 1035)
func ValidateDomain(domain string) error {
	domain = strings.TrimSpace(strings.ToLower(domain))

	if domain == "" {
		return ErrEmptyInput
	}
	if len(domain) > 253 {
		return ErrInputTooLong
	}
	if !domainRegex.MatchString(domain) {
		return ErrInvalidDomain
	}
	return nil
}

// ValidateLocalPart checks the part before the @, capped at 64 characters
// (RFC 5321)
func ValidateLocalPart(localPart string) error {
	localPart = strings.TrimSpace(strings.ToLower(localPart))

	if localPart == "" {
		return ErrEmptyInput
	}
	if len(localPart) > 64 {
		return ErrInputTooLong
	}
	if !localPartRegex.MatchString(localPart) {
		return ErrInvalidLocalPart
	}
	return nil
}

// Pagination bounds applied to every list endpoint
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ValidatePagination clamps limit into [1, MaxLimit] (defaulting when
// unset) and offset to non-negative
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// stripControlChars drops ASCII control characters including DEL
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// SanitizeFilename neutralizes attachment filenames before they reach the
// filesystem: path separators and dot-dot sequences become underscores,
// control characters are dropped, and the result is capped at 255 runes
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")
	filename = strings.ReplaceAll(filename, "\x00", "")
	filename = strings.TrimSpace(stripControlChars(filename))

	if utf8.RuneCountInString(filename) > 255 {
		filename = string([]rune(filename)[:255])
	}
	if filename == "" {
		return "unnamed"
	}
	return filename
}

// SanitizeString drops control characters, trims whitespace, and caps the
// result at maxLength runes (0 means unlimited)
func SanitizeString(input string, maxLength int) string {
	input = strings.TrimSpace(stripControlChars(input))

	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		input = string([]rune(input)[:maxLength])
	}
	return input
}
