package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/finboard/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("FINBOARD_TEST_DIR", "/tmp/fb")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde", in: "~", want: home},
		{name: "tilde path", in: "~/data/session.db", want: filepath.Join(home, "data/session.db")},
		{name: "env var", in: "$FINBOARD_TEST_DIR/x.db", want: "/tmp/fb/x.db"},
		{name: "absolute", in: "/var/lib/x.db", want: "/var/lib/x.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5, cfg.API.Burst)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.NotContains(t, cfg.Session.DBPath, "~")
	assert.False(t, cfg.HasGoogleClient())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
	}{
		{name: "relative base url", set: map[string]any{"api.base_url": "localhost"}},
		{name: "zero timeout", set: map[string]any{"api.timeout": 0}},
		{name: "negative rate", set: map[string]any{"api.rate_limit": -1}},
		{name: "rate without burst", set: map[string]any{"api.burst": 0}},
		{name: "no db path", set: map[string]any{"session.db_path": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidConfig) || errors.Is(err, common.ErrMissingConfig))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FINBOARD_DOTENV_PROBE=loaded\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("FINBOARD_DOTENV_PROBE") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "loaded", os.Getenv("FINBOARD_DOTENV_PROBE"))
}

func TestLoadSheetsConfig(t *testing.T) {
	v := viper.New()
	v.Set("sheets.service_account_path", "/keys/sa.json")
	v.Set("sheets.spreadsheet_name", "Projection")

	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
	assert.Equal(t, "Projection", cfg.SpreadsheetName)

	_, err = LoadSheetsConfig(viper.New())
	if os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH") == "" && os.Getenv("GOOGLE_SHEETS_CLIENT_ID") == "" {
		assert.Error(t, err)
	}
}

func TestLoadSheetsConfigReadsSavedToken(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "")
	tokenFile := filepath.Join(t.TempDir(), "sheets-token.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte(`{"access_token":"a","refresh_token":"saved-refresh"}`), 0600))

	v := viper.New()
	v.Set("sheets.client_id", "client")
	v.Set("sheets.client_secret", "secret")
	v.Set("sheets.token_file", tokenFile)

	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "saved-refresh", cfg.RefreshToken)
	assert.True(t, cfg.HasOAuth())
}
