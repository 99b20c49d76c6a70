package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophdocs/internal/flagx"
)

// parseFlags overlays command-line flags onto cfg.
//
// Supported flags:
//
//	-a string    server base URL
//	-t string    bearer session token
//	-i duration  refresh interval (e.g., "30s")
//	-v string    log level
//	-f string    file to upload before watching
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-i", "-v", "-f"})

	fs := flag.NewFlagSet("gophdocs-client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.Token, "t", cfg.Token, "session token")
	fs.DurationVar(&cfg.RefreshInterval, "i", cfg.RefreshInterval, "refresh interval")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.UploadFile, "f", cfg.UploadFile, "file to upload")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
