// Package config loads runtime configuration for the findash CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory (optional) and FINDASH_*
//     environment variables.
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string                API base URL, e.g. http://127.0.0.1:8000/api/v1
//	-t int                   request timeout (seconds)
//	-d string                path of the local sqlite database
//	-l string                log level: debug, info, warn, error
//	-verify-policy string    logout | keep
//	-presence-policy string  permissive | strict
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "15s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "https://finance.example.com/api/v1",
//	  "request_timeout": "15s",
//	  "db_path": "/home/jo/.config/findash/findash.db",
//	  "archive": {"bucket": "statements", "region": "eu-central-1"}
//	}
package config
