package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophdocs/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-s", "-l", "-u", "-p", "-b", "-g", "-e", "-t", "-w", "-n", "-z", "-v"}

// parseFlags overlays command-line flags onto config.
//
// Supported flags:
//
//	-a string    HTTP bind address (e.g., ":8080")
//	-d string    PostgreSQL DSN, or "memory://"
//	-s string    JWT HMAC secret
//	-l string    share link secret
//	-u, -p       S3 root user and password
//	-b, -g, -e   S3 bucket, region and base endpoint
//	-t duration  presigned URL lifetime
//	-w duration  recent section window
//	-n int       recent section cap
//	-z int       default page size
//	-v string    log level (debug, info, warn, error)
//
// Arguments not listed above are ignored so that -c can share the command line.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("gophdocs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddress, "a", config.HTTPAddress, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "JWT secret")
	fs.StringVar(&config.ShareLinkSecret, "l", config.ShareLinkSecret, "share link secret")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.DurationVar(&config.PresignTTL, "t", config.PresignTTL, "presigned URL lifetime")

	fs.DurationVar(&config.RecentWindow, "w", config.RecentWindow, "recent section window")
	fs.IntVar(&config.RecentCap, "n", config.RecentCap, "recent section cap")
	fs.IntVar(&config.DefaultPageSize, "z", config.DefaultPageSize, "default page size")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
