package config

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/findash/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-d", "-k", "-l", "-verify-policy", "-presence-policy"}

// parseFlags populates selected Config fields from command-line flags.
// Only the flags listed in knownFlags are looked at, so -c/-config and
// anything else in args are left alone.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("findash", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	fs.StringVar(&cfg.KeyPath, "k", cfg.KeyPath, "token encryption key path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.VerifyFailurePolicy, "verify-policy", cfg.VerifyFailurePolicy, "logout|keep")
	fs.StringVar(&cfg.PresenceErrorPolicy, "presence-policy", cfg.PresenceErrorPolicy, "permissive|strict")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("config: flags: %w", err)
	}

	var dbSet, keySet bool
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "d":
			dbSet = true
		case "k":
			keySet = true
		}
	})

	// The key file lives next to the database unless -k says otherwise.
	if dbSet && !keySet {
		cfg.KeyPath = filepath.Join(filepath.Dir(cfg.DBPath), defaultKeyFile)
	}
	return nil
}
