package tui

import (
	"log/slog"
	"time"

	"github.com/Veraticus/finboard/internal/dashboard"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/networth"
	"github.com/Veraticus/finboard/internal/signal"
	"github.com/Veraticus/finboard/internal/tui/themes"
)

// Identity is the signed-in user as the dashboard sees it.
type Identity interface {
	Current() (model.Identity, bool)
	Email() string
}

// Stores are the screens' state. A nil store leaves its tab out.
type Stores struct {
	Identity      Identity
	Changes       *signal.Signal
	Transactions  *dashboard.Transactions
	Summaries     *dashboard.Summaries
	CategoryChart *dashboard.CategoryChart
	YearChart     *dashboard.YearChart
	UploadForm    *dashboard.Form[model.StatementUpload]
	RuleForm      *dashboard.Form[model.CategoryRule]
	DeleteForm    *dashboard.Form[model.DeleteRange]
	FeedbackForm  *dashboard.Form[model.Feedback]
	Profiles      *networth.Profiles
	Incomes       *networth.Ledger[model.Income]
	Expenses      *networth.Ledger[model.Expense]
	Investments   *networth.Ledger[model.Investment]
	Savings       *networth.Ledger[model.Saving]
	Dependents    *networth.Dependents
	Projection    *networth.Projection
}

// Config holds TUI configuration.
type Config struct {
	Theme        themes.Theme
	Logger       *slog.Logger
	ExportDir    string
	Timeout      time.Duration
	Width        int
	Height       int
	MouseSupport bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		Width:        100,
		Height:       30,
		Timeout:      30 * time.Second,
		ExportDir:    ".",
		MouseSupport: true,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithMouse enables or disables mouse tracking.
func WithMouse(enabled bool) Option {
	return func(c *Config) {
		c.MouseSupport = enabled
	}
}

// WithTimeout bounds every backend call started from the dashboard.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithExportDir sets where net-worth exports are saved.
func WithExportDir(dir string) Option {
	return func(c *Config) {
		c.ExportDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
