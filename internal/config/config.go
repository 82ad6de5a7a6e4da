package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Defaults for the classification and threading core.
const (
	DefaultSpamThreshold       = 50.0
	DefaultThreadMaxAgeDays    = 30
	DefaultCandidateWindowDays = 90
	DefaultCandidateLimit      = 200
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server ports
	APIPort  int
	SMTPPort int

	// Features
	AutoProvisioningEnabled bool

	// Storage
	AttachmentStoragePath string

	// Spam classifier
	SpamThreshold         float64
	SpamBayesianEnabled   bool
	SpamPatternsEnabled   bool
	SpamReputationEnabled bool

	// Conversation threading
	ThreadMaxAgeDays        int
	ThreadNormalizeSubjects bool
	CandidateWindowDays     int
	CandidateLimit          int

	// Logging
	LogLevel string

	// Security
	APIKey         string
	AllowedOrigins string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Required: DATABASE_URL
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	var err error
	if cfg.APIPort, err = intEnv("API_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = intEnv("SMTP_PORT", 2525); err != nil {
		return nil, err
	}
	if cfg.AutoProvisioningEnabled, err = boolEnv("AUTO_PROVISIONING_ENABLED", true); err != nil {
		return nil, err
	}

	cfg.AttachmentStoragePath = os.Getenv("ATTACHMENT_STORAGE_PATH")
	if cfg.AttachmentStoragePath == "" {
		cfg.AttachmentStoragePath = "./attachments"
	}

	// Classifier options
	if cfg.SpamThreshold, err = floatEnv("SPAM_THRESHOLD", DefaultSpamThreshold); err != nil {
		return nil, err
	}
	if cfg.SpamBayesianEnabled, err = boolEnv("SPAM_BAYESIAN_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.SpamPatternsEnabled, err = boolEnv("SPAM_PATTERNS_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.SpamReputationEnabled, err = boolEnv("SPAM_REPUTATION_ENABLED", true); err != nil {
		return nil, err
	}

	// Threading options
	if cfg.ThreadMaxAgeDays, err = intEnv("THREAD_MAX_AGE_DAYS", DefaultThreadMaxAgeDays); err != nil {
		return nil, err
	}
	if cfg.ThreadNormalizeSubjects, err = boolEnv("THREAD_NORMALIZE_SUBJECTS", true); err != nil {
		return nil, err
	}
	if cfg.CandidateWindowDays, err = intEnv("THREAD_CANDIDATE_WINDOW_DAYS", DefaultCandidateWindowDays); err != nil {
		return nil, err
	}
	if cfg.CandidateLimit, err = intEnv("THREAD_CANDIDATE_LIMIT", DefaultCandidateLimit); err != nil {
		return nil, err
	}

	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.APIKey = os.Getenv("API_KEY")
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = os.Getenv("APP_ENV")
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	if cfg.RateLimitRequests, err = floatEnv("RATE_LIMIT_REQUESTS", 10.0); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = intEnv("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTPPort must be between 1 and 65535")
	}
	if c.AttachmentStoragePath == "" {
		return fmt.Errorf("AttachmentStoragePath cannot be empty")
	}
	if c.SpamThreshold <= 0 || c.SpamThreshold > 100 {
		return fmt.Errorf("SpamThreshold must be between 1 and 100")
	}
	if c.ThreadMaxAgeDays <= 0 {
		return fmt.Errorf("ThreadMaxAgeDays must be positive")
	}
	if c.CandidateWindowDays <= 0 || c.CandidateLimit <= 0 {
		return fmt.Errorf("threading candidate window and limit must be positive")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	if strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	return nil
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.Int("smtp_port", c.SMTPPort),
		slog.Bool("auto_provisioning", c.AutoProvisioningEnabled),
		slog.String("storage_path", c.AttachmentStoragePath),
		slog.Float64("spam_threshold", c.SpamThreshold),
		slog.Bool("spam_bayesian", c.SpamBayesianEnabled),
		slog.Bool("spam_patterns", c.SpamPatternsEnabled),
		slog.Bool("spam_reputation", c.SpamReputationEnabled),
		slog.Int("thread_max_age_days", c.ThreadMaxAgeDays),
		slog.Bool("thread_normalize_subjects", c.ThreadNormalizeSubjects),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("api_key_set", c.APIKey != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a valid boolean: %w", key, err)
	}
	return v, nil
}
