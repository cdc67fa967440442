package tui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/finboard/internal/signal"
	"github.com/Veraticus/finboard/internal/tui/themes"
)

// env is what every screen shares: the program context and the settings
// that shape commands and rendering.
type env struct {
	ctx       context.Context
	logger    *slog.Logger
	theme     themes.Theme
	exportDir string
	timeout   time.Duration
}

// task runs fn off the event loop under the request timeout and delivers
// its result as the message.
func task[T any](e *env, fn func(context.Context) T) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(e.ctx, e.timeout)
		defer cancel()
		return fn(ctx)
	}
}

// watch waits for the next notification on sub and delivers msg. It must be
// re-armed after every delivery.
func watch(ctx context.Context, sub *signal.Subscription, msg tea.Msg) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-sub.C:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}
