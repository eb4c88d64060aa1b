// Package config provides functionality for managing configuration options
// for the application using command-line flags, a config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address" yaml:"address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn"`

	// SecretKey signs session tokens. It has no default and must be provided.
	SecretKey string `json:"secret_key" yaml:"secret_key"`

	// RedisAddr enables the Redis-backed token revocation store when set.
	RedisAddr string `json:"redis_addr" yaml:"redis_addr"`

	// LogLevel is passed to the logger (debug, info, warn, error).
	LogLevel string `json:"log_level" yaml:"log_level"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert" yaml:"tls_cert"`
	TLSKey  string `json:"tls_key" yaml:"tls_key"`

	// Config is the path to the Config file.
	Config string `json:"-" yaml:"-"`
}

// ErrNoSecretKey is returned when no signing secret was configured.
var ErrNoSecretKey = errors.New("secret key is not configured")

// TLSEnabled reports whether both a certificate and a key were configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// Parse parses the process command line and environment. It exits the
// process if the configuration cannot be loaded.
func Parse() *Options {
	opts, err := Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("error while loading config: %v", err)
	}
	return opts
}

// Load builds Options from args, then the config file, then environment
// variables looked up through getenv. Later sources override earlier ones.
func Load(args []string, getenv func(string) string) (*Options, error) {
	opts := &Options{}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&opts.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&opts.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&opts.SecretKey, "k", "", "token signing secret")
	fs.StringVar(&opts.RedisAddr, "r", "", "redis address for token revocation")
	fs.StringVar(&opts.LogLevel, "l", "info", "log level")
	fs.StringVar(&opts.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&opts.TLSKey, "tls-key", "", "path to TLS key")
	fs.StringVar(&opts.Config, "config", "config.json", "path to config file")
	fs.StringVar(&opts.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}

	if opts.Config != "" {
		if _, err := os.Stat(opts.Config); err == nil {
			if err := readFile(opts.Config, opts); err != nil {
				return nil, err
			}
		}
	}

	overrides := map[string]*string{
		"SERVER_ADDRESS": &opts.Port,
		"DATABASE_DSN":   &opts.DatabaseDSN,
		"SECRET_KEY":     &opts.SecretKey,
		"REDIS_ADDR":     &opts.RedisAddr,
		"LOG_LEVEL":      &opts.LogLevel,
	}
	for key, dst := range overrides {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if opts.SecretKey == "" {
		return nil, ErrNoSecretKey
	}

	return opts, nil
}

func readFile(path string, opts *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, opts)
	default:
		err = json.Unmarshal(data, opts)
	}
	if err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
