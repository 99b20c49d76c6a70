package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophdocs/internal/flagx"
	"github.com/dmitrijs2005/gophdocs/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// "30s" strings and integer nanoseconds.
type JsonConfig struct {
	HTTPAddress     string         `json:"http_address"`
	DatabaseDSN     string         `json:"database_dsn"`
	JWTSecret       string         `json:"jwt_secret"`
	ShareLinkSecret string         `json:"share_link_secret"`
	S3RootUser      string         `json:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	PresignTTL      timex.Duration `json:"presign_ttl"`
	RecentWindow    timex.Duration `json:"recent_window"`
	RecentCap       int            `json:"recent_cap"`
	DefaultPageSize int            `json:"default_page_size"`
	StatsCacheSize  int            `json:"stats_cache_size"`
	StatsCacheTTL   timex.Duration `json:"stats_cache_ttl"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
	LogLevel        string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config onto config. Keys absent
// from the file keep their current value. No flag means nothing to load.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.HTTPAddress, c.HTTPAddress)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.JWTSecret, c.JWTSecret)
	setString(&config.ShareLinkSecret, c.ShareLinkSecret)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	setPositive(&config.PresignTTL, c.PresignTTL.Duration)
	setPositive(&config.RecentWindow, c.RecentWindow.Duration)
	setPositive(&config.StatsCacheTTL, c.StatsCacheTTL.Duration)
	setPositive(&config.ShutdownTimeout, c.ShutdownTimeout.Duration)
	setPositive(&config.RecentCap, c.RecentCap)
	setPositive(&config.DefaultPageSize, c.DefaultPageSize)
	setPositive(&config.StatsCacheSize, c.StatsCacheSize)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setPositive[T ~int | ~int64](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}
