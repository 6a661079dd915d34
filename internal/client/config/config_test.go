package config

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate pins the environment-dependent seams for one test.
func isolate(t *testing.T, env map[string]string) {
	t.Helper()
	origDotEnv, origLookuper, origDir := loadDotEnv, envLookuper, userConfigDir
	t.Cleanup(func() {
		loadDotEnv, envLookuper, userConfigDir = origDotEnv, origLookuper, origDir
	})

	loadDotEnv = func() error { return errors.New("no .env") }
	envLookuper = envconfig.MapLookuper(env)
	userConfigDir = func() (string, error) { return "/home/jo/.config", nil }
}

func defaults() *Config {
	return &Config{
		APIBaseURL:          DefaultAPIBaseURL,
		RequestTimeout:      15 * time.Second,
		DBPath:              filepath.Join("/home/jo/.config", "findash", "findash.db"),
		KeyPath:             filepath.Join("/home/jo/.config", "findash", "token.key"),
		LogLevel:            "warn",
		VerifyFailurePolicy: "logout",
		PresenceErrorPolicy: "permissive",
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t, nil)

	var c Config
	c.LoadDefaults()
	assert.Empty(t, cmp.Diff(defaults(), &c))
	require.NoError(t, c.Validate())
}

func TestLoadDefaults_NoUserConfigDir(t *testing.T) {
	isolate(t, nil)
	userConfigDir = func() (string, error) { return "", errors.New("$HOME is not defined") }

	var c Config
	c.LoadDefaults()
	assert.Equal(t, filepath.Join(".findash", "findash.db"), c.DBPath)
}

func TestLoadConfig_DefaultsOnly(t *testing.T) {
	isolate(t, nil)

	cfg, err := LoadConfig(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
	assert.False(t, cfg.Archive.Enabled())
}

func TestLoadConfig_Precedence(t *testing.T) {
	isolate(t, map[string]string{
		"FINDASH_API_URL":         "http://env:8000/api/v1",
		"FINDASH_LOG_LEVEL":       "info",
		"FINDASH_REQUEST_TIMEOUT": "20s",
		"FINDASH_ARCHIVE_BUCKET":  "env-bucket",
		"FINDASH_VERIFY_POLICY":   "keep",
	})
	path := writeTempJSON(t, "", "", map[string]any{
		"api_base_url":    "http://json:8000/api/v1",
		"request_timeout": "30s",
		"archive":         map[string]any{"region": "eu-central-1"},
	})

	cfg, err := LoadConfig(context.Background(), []string{"-c", path, "-a", "https://flag.example/api/v1", "-l", "debug"})
	require.NoError(t, err)

	want := defaults()
	want.APIBaseURL = "https://flag.example/api/v1"
	want.RequestTimeout = 30 * time.Second
	want.LogLevel = "debug"
	want.VerifyFailurePolicy = "keep"
	want.Archive.Bucket = "env-bucket"
	want.Archive.Region = "eu-central-1"
	assert.Empty(t, cmp.Diff(want, cfg))
	assert.True(t, cfg.Archive.Enabled())
}

func TestLoadConfig_DBFlagMovesKeyFile(t *testing.T) {
	isolate(t, nil)

	cfg, err := LoadConfig(context.Background(), []string{"-d", "/srv/findash/work.db"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/findash/work.db", cfg.DBPath)
	assert.Equal(t, "/srv/findash/token.key", cfg.KeyPath)
}

func TestLoadConfig_BadEnv(t *testing.T) {
	isolate(t, map[string]string{"FINDASH_REQUEST_TIMEOUT": "soon"})

	_, err := LoadConfig(context.Background(), nil)
	require.Error(t, err)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	isolate(t, nil)

	c := defaults()
	c.APIBaseURL = "not a url"
	c.RequestTimeout = 0
	c.VerifyFailurePolicy = "retry"
	c.Archive.Endpoint = "::"

	err := c.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "APIBaseURL must be a valid URL")
	assert.Contains(t, msg, "RequestTimeout must be greater than 0")
	assert.Contains(t, msg, "VerifyFailurePolicy must be one of: logout keep")
	assert.Contains(t, msg, "Archive.Endpoint must be a valid URL")
}
