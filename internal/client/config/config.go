package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const DefaultAPIBaseURL = "http://127.0.0.1:8000/api/v1"

const defaultKeyFile = "token.key"

// Config holds runtime settings for the findash CLI.
type Config struct {
	APIBaseURL     string        `env:"FINDASH_API_URL, overwrite" validate:"required,url"`
	RequestTimeout time.Duration `env:"FINDASH_REQUEST_TIMEOUT, overwrite" validate:"gt=0"`
	DBPath         string        `env:"FINDASH_DB_PATH, overwrite" validate:"required"`
	KeyPath        string        `env:"FINDASH_KEY_PATH, overwrite" validate:"required"`
	LogLevel       string        `env:"FINDASH_LOG_LEVEL, overwrite" validate:"oneof=debug info warn error"`

	VerifyFailurePolicy string `env:"FINDASH_VERIFY_POLICY, overwrite" validate:"oneof=logout keep"`
	PresenceErrorPolicy string `env:"FINDASH_PRESENCE_POLICY, overwrite" validate:"oneof=permissive strict"`

	Archive ArchiveConfig
}

// ArchiveConfig enables copying uploaded statements to S3 when Bucket is set.
type ArchiveConfig struct {
	Bucket          string `env:"FINDASH_ARCHIVE_BUCKET, overwrite"`
	Region          string `env:"FINDASH_ARCHIVE_REGION, overwrite"`
	Endpoint        string `env:"FINDASH_ARCHIVE_ENDPOINT, overwrite" validate:"omitempty,url"`
	AccessKeyID     string `env:"FINDASH_ARCHIVE_ACCESS_KEY_ID, overwrite"`
	SecretAccessKey string `env:"FINDASH_ARCHIVE_SECRET_ACCESS_KEY, overwrite"`
}

// Enabled reports whether an archive bucket is configured.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// Overridable in tests.
var (
	loadDotEnv    = func() error { return godotenv.Load() }
	envLookuper   = envconfig.OsLookuper()
	userConfigDir = os.UserConfigDir
)

func defaultDir() string {
	dir, err := userConfigDir()
	if err != nil || dir == "" {
		return ".findash"
	}
	return filepath.Join(dir, "findash")
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	dir := defaultDir()
	c.APIBaseURL = DefaultAPIBaseURL
	c.RequestTimeout = 15 * time.Second
	c.DBPath = filepath.Join(dir, "findash.db")
	c.KeyPath = filepath.Join(dir, defaultKeyFile)
	c.LogLevel = "warn"
	c.VerifyFailurePolicy = "logout"
	c.PresenceErrorPolicy = "permissive"
}

// LoadConfig builds a Config from defaults, the environment, an optional
// JSON file and args (os.Args[1:] in production). Later sources take
// precedence over earlier ones.
func LoadConfig(ctx context.Context, args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(ctx, cfg); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseEnv overlays FINDASH_* variables. A missing .env file is not an error.
func parseEnv(ctx context.Context, cfg *Config) error {
	_ = loadDotEnv()

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envLookuper,
	}); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	errs := make([]error, 0, len(ve))
	for _, fe := range ve {
		errs = append(errs, fieldError(fe))
	}
	return errors.Join(errs...)
}

func fieldError(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "url":
		return fmt.Errorf("%s must be a valid URL, got %q", field, fe.Value())
	case "gt":
		return fmt.Errorf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s, got %q", field, fe.Param(), fe.Value())
	}
	return fmt.Errorf("%s failed validation (%s)", field, fe.Tag())
}
