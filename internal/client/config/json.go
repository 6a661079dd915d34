package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/findash/internal/flagx"
	"github.com/dmitrijs2005/findash/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Zero values
// leave the corresponding Config field untouched.
type JsonConfig struct {
	APIBaseURL          string         `json:"api_base_url"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	DBPath              string         `json:"db_path"`
	KeyPath             string         `json:"key_path"`
	LogLevel            string         `json:"log_level"`
	VerifyFailurePolicy string         `json:"verify_failure_policy"`
	PresenceErrorPolicy string         `json:"presence_error_policy"`
	Archive             struct {
		Bucket          string `json:"bucket"`
		Region          string `json:"region"`
		Endpoint        string `json:"endpoint"`
		AccessKeyID     string `json:"access_key_id"`
		SecretAccessKey string `json:"secret_access_key"`
	} `json:"archive"`
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays cfg with the JSON file named by -c/-config in args.
// Without such a flag nothing happens.
func parseJson(cfg *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFilePath(args)
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("config: %s: %w", jsonConfigFile, err)
	}

	overlay(&cfg.APIBaseURL, jc.APIBaseURL)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	overlay(&cfg.DBPath, jc.DBPath)
	overlay(&cfg.KeyPath, jc.KeyPath)
	overlay(&cfg.LogLevel, jc.LogLevel)
	overlay(&cfg.VerifyFailurePolicy, jc.VerifyFailurePolicy)
	overlay(&cfg.PresenceErrorPolicy, jc.PresenceErrorPolicy)
	overlay(&cfg.Archive.Bucket, jc.Archive.Bucket)
	overlay(&cfg.Archive.Region, jc.Archive.Region)
	overlay(&cfg.Archive.Endpoint, jc.Archive.Endpoint)
	overlay(&cfg.Archive.AccessKeyID, jc.Archive.AccessKeyID)
	overlay(&cfg.Archive.SecretAccessKey, jc.Archive.SecretAccessKey)
	return nil
}
