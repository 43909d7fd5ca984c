package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds application configuration read from the environment.
type Config struct {
	Token           string `env:"GH_TOKEN"`
	Org             string `env:"GITHUB_ORG"`
	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	LogLevel        string `env:"LOG_LEVEL" env-default:"INFO"`

	// MaxPRAgeDays is kept as a string on purpose: an unparseable value
	// disables the old-PR windowing feature instead of failing the run.
	MaxPRAgeDays string `env:"MAX_PR_AGE_DAYS" env-default:"30"`

	DefaultRequiredApprovals int  `env:"DEFAULT_REQUIRED_APPROVALS" env-default:"1"`
	InvalidateOnPush         bool `env:"INVALIDATE_ON_PUSH" env-default:"true"`
	OldReportAttributeAuthor bool `env:"OLD_REPORT_ATTRIBUTE_AUTHOR" env-default:"true"`
	MaxPRsTotal              int  `env:"MAX_PRS_TOTAL" env-default:"30"`
	APITimeoutSeconds        int  `env:"API_TIMEOUT" env-default:"30"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// Overriding already-exported variables is left to the caller's
	// shell; .env only fills gaps.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Token == "" {
		return fmt.Errorf("GH_TOKEN is required: create a GitHub token with repo and read:org scopes")
	}
	if c.Org == "" {
		return fmt.Errorf("GITHUB_ORG is required: set the organization to scan")
	}
	if c.SlackWebhookURL != "" && !strings.HasPrefix(c.SlackWebhookURL, "https://hooks.slack.com/") {
		return fmt.Errorf("SLACK_WEBHOOK_URL must start with https://hooks.slack.com/")
	}
	if c.APITimeoutSeconds <= 0 {
		return fmt.Errorf("API_TIMEOUT must be a positive number of seconds")
	}
	if c.DefaultRequiredApprovals < 1 {
		return fmt.Errorf("DEFAULT_REQUIRED_APPROVALS must be at least 1")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q: must be DEBUG, INFO, WARN or ERROR", c.LogLevel)
	}
	return nil
}

// APITimeout returns the configured request timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

// WindowDays parses the old-PR age window. Invalid or non-positive
// values disable windowing (returns 0) with a warning rather than
// failing the run.
func (c *Config) WindowDays(log *slog.Logger) int {
	raw := strings.TrimSpace(c.MaxPRAgeDays)
	if raw == "" {
		return 0
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		log.Warn("invalid MAX_PR_AGE_DAYS, disabling old-PR windowing",
			slog.String("value", c.MaxPRAgeDays),
		)
		return 0
	}
	return days
}
