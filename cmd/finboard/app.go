package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/Veraticus/finboard/internal/api"
	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/config"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/networth"
	"github.com/Veraticus/finboard/internal/session"
	"github.com/Veraticus/finboard/internal/storage"
)

// app is what every command needs: configuration, the backend client and
// the restored sign-in.
type app struct {
	cfg     *config.Config
	store   *storage.SQLiteStorage
	client  *api.Client
	session *session.Manager
	logger  *slog.Logger
}

type appOptions struct {
	registry prometheus.Registerer
}

type appOption func(*appOptions)

// withMetrics records gateway metrics on reg.
func withMetrics(reg prometheus.Registerer) appOption {
	return func(o *appOptions) { o.registry = reg }
}

// newApp loads the configuration, opens the session database and restores
// the last sign-in.
func newApp(ctx context.Context, opts ...appOption) (*app, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.Session.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger := slog.Default()
	clientOpts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
	}
	if cfg.API.RateLimit > 0 {
		clientOpts = append(clientOpts, api.WithRateLimit(cfg.API.RateLimit, cfg.API.Burst))
	}
	if o.registry != nil {
		clientOpts = append(clientOpts, api.WithMetrics(api.NewMetrics(o.registry)))
	}
	client, err := api.New(cfg.API.BaseURL, clientOpts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	mgr := session.NewManager(store, client, logger)
	if err := mgr.Restore(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to restore sign-in: %w", err)
	}

	common.LogDebug("session restored", common.Fields{"db": store.Path(), "signed_in": mgr.Email() != ""})
	return &app{cfg: cfg, store: store, client: client, session: mgr, logger: logger}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		common.LogError(err, "failed to close session database", common.Fields{"path": a.store.Path()})
	}
}

// email returns the signed-in email or a sign-in hint.
func (a *app) email() (string, error) {
	id, err := a.session.Require()
	if err != nil {
		return "", err
	}
	return id.Email, nil
}

// profiles fetches the profile list and selects ref, which is a profile id or
// name. An empty ref keeps the default selection, the first profile.
func (a *app) profiles(ctx context.Context, ref string) (*networth.Profiles, error) {
	if _, err := a.email(); err != nil {
		return nil, err
	}
	p := networth.NewProfiles(a.client, a.session, a.logger)
	if err := p.Fetch(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}
	if ref == "" {
		if _, ok := p.Selected(); !ok {
			return nil, common.NewUserError("No profiles yet. Create one with `finboard profiles add <name>`.", common.ErrNoProfile)
		}
		return p, nil
	}

	prof, ok := findProfile(p.List(), ref)
	if !ok {
		return nil, common.NewUserError(fmt.Sprintf("No profile matches %q.", ref), common.ErrNotFound)
	}
	if err := p.Select(prof.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func findProfile(profiles []model.Profile, ref string) (model.Profile, bool) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, p := range profiles {
			if p.ID == id {
				return p, true
			}
		}
	}
	for _, p := range profiles {
		if strings.EqualFold(p.Name, ref) {
			return p, true
		}
	}
	return model.Profile{}, false
}
