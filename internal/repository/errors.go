package repository

import (
	"errors"
	"strings"
)

// Sentinel errors shared by all repositories. Handlers map these onto HTTP
// statuses; wrapped driver errors stay internal.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrInvalidInput   = errors.New("invalid input")
)

// uniqueViolationMarkers covers postgres (message and SQLSTATE 23505) and the
// sqlite constraint wording used in tests
var uniqueViolationMarkers = []string{
	"duplicate key",
	"UNIQUE constraint",
	"23505",
}

// isDuplicateKeyError reports whether err is a unique-constraint violation
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range uniqueViolationMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
