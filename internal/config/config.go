// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables, and
// an optional YAML config file.
package config

import (
	"flag"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `yaml:"addr"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `yaml:"database_dsn"`

	// SecretKey is the process-wide value the data encryption key is
	// derived from. Required; never logged.
	SecretKey string `yaml:"secret_key"`

	// SessionKey is the HMAC key used to verify bearer session tokens.
	SessionKey string `yaml:"session_key"`

	// CronToken guards the cleanup endpoint. Empty disables the check.
	CronToken string `yaml:"cron_token"`

	// CleanupInterval is how often the expiry cleaner runs.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`

	// Config is the path to the config file.
	Config string `yaml:"-"`
}

// options holds the current configuration values.
var options = &Options{CleanupInterval: time.Hour}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.Config, "config", "config.yaml", "path to config file")
	flag.StringVar(&options.Config, "c", "config.yaml", "path to config file (shorthand)")
}

// Parse parses the command-line flags, config file, and environment
// variables to set configuration values. Environment variables win over
// the file, which wins over flag defaults. It returns a pointer to the
// Options struct containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := yaml.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if key := os.Getenv("SECRET_KEY"); key != "" {
		options.SecretKey = key
	}
	if key := os.Getenv("SESSION_KEY"); key != "" {
		options.SessionKey = key
	}
	if token := os.Getenv("CRON_SECRET"); token != "" {
		options.CronToken = token
	}
	if interval := os.Getenv("CLEANUP_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			log.Fatalf("invalid CLEANUP_INTERVAL: %v", err)
		}
		options.CleanupInterval = d
	}

	return options
}
