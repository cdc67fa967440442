package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/Veraticus/finboard/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	API     APIConfig
	Session SessionConfig
	Google  GoogleConfig
	Logging LoggingConfig
	TUI     TUIConfig
}

// APIConfig configures the backend gateway.
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

// SessionConfig configures local identity persistence.
type SessionConfig struct {
	DBPath string
}

// GoogleConfig holds the OAuth client used for sign-in.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackPort int
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// TUIConfig configures the dashboard.
type TUIConfig struct {
	Theme string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.rate_limit", 10.0)
	v.SetDefault("api.burst", 5)
	v.SetDefault("session.db_path", "~/.local/share/finboard/session.db")
	v.SetDefault("google.callback_port", 8080)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "~/.local/share/finboard/finboard.log")
	v.SetDefault("tui.theme", "default")
	v.SetDefault("sheets.token_file", "~/.config/finboard/sheets-token.json")
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(ExpandPath(p)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load resolves a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURL:   v.GetString("api.base_url"),
			Timeout:   v.GetDuration("api.timeout"),
			RateLimit: v.GetFloat64("api.rate_limit"),
			Burst:     v.GetInt("api.burst"),
		},
		Session: SessionConfig{
			DBPath: ExpandPath(v.GetString("session.db_path")),
		},
		Google: GoogleConfig{
			ClientID:     v.GetString("google.client_id"),
			ClientSecret: v.GetString("google.client_secret"),
			CallbackPort: v.GetInt("google.callback_port"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
			File:   ExpandPath(v.GetString("logging.file")),
		},
		TUI: TUIConfig{
			Theme: v.GetString("tui.theme"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api.base_url %q is not an absolute URL", common.ErrInvalidConfig, c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", common.ErrInvalidConfig)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("%w: api.rate_limit cannot be negative", common.ErrInvalidConfig)
	}
	if c.API.RateLimit > 0 && c.API.Burst <= 0 {
		return fmt.Errorf("%w: api.burst must be positive when rate limiting", common.ErrInvalidConfig)
	}
	if c.Session.DBPath == "" {
		return fmt.Errorf("%w: session.db_path", common.ErrMissingConfig)
	}
	return nil
}

// HasGoogleClient reports whether interactive Google sign-in is configured.
func (c *Config) HasGoogleClient() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != ""
}
