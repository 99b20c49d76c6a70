// Package config loads runtime configuration for the GophDocs watch client.
//
// Sources, in increasing precedence: built-in defaults, an optional JSON
// file named by -c or -config, then command-line flags.
package config

import "time"

// Config holds runtime settings for the watch client.
//
// Fields:
//   - ServerURL: base URL of the GophDocs HTTP API.
//   - Token: bearer session token issued by the auth service.
//   - RefreshInterval: how often sections and stats are re-read.
//   - RequestTimeout: upper bound for one HTTP request.
//   - UploadFile: optional local file uploaded once before watching.
type Config struct {
	ServerURL       string
	Token           string
	UploadFile      string
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	LogLevel        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RefreshInterval = 30 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then JSON, then flags. args excludes the
// program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
