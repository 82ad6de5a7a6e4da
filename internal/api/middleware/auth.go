// Package middleware provides HTTP middleware for the OpenMail API.
package middleware

import (
	"crypto/subtle"
	"log/slog"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
)

// unauthorized builds the 401 payload shared by every auth failure
func unauthorized(message string) *echo.HTTPError {
	return echo.NewHTTPError(401, map[string]string{
		"error": message,
		"code":  "UNAUTHORIZED",
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(authHeader string) string {
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// APIKeyAuth validates the Authorization header against API_KEY using a
// constant-time comparison. Health and readiness probes bypass auth; an
// empty API_KEY disables it entirely.
func APIKeyAuth(logger *slog.Logger) echo.MiddlewareFunc {
	validAPIKey := os.Getenv("API_KEY")
	if validAPIKey == "" && logger != nil {
		logger.Warn("API_KEY not set - API is UNSECURED")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/ready") {
				return next(c)
			}
			if validAPIKey == "" {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if logger != nil {
					logger.Warn("missing authorization header",
						slog.String("ip", c.RealIP()),
						slog.String("path", path))
				}
				return unauthorized("missing authorization header")
			}

			token := bearerToken(authHeader)
			if subtle.ConstantTimeCompare([]byte(token), []byte(validAPIKey)) != 1 {
				if logger != nil {
					logger.Warn("invalid API key attempt",
						slog.String("ip", c.RealIP()),
						slog.String("path", path))
				}
				return unauthorized("invalid API key")
			}

			return next(c)
		}
	}
}
