// Command client keeps a user's sections and stats fresh by polling the
// GophDocs snapshot endpoint and logging a summary after each refresh. With
// -f it first uploads a local file.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/gophdocs/internal/client/api"
	"github.com/dmitrijs2005/gophdocs/internal/client/config"
	"github.com/dmitrijs2005/gophdocs/internal/client/watch"
	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
	"github.com/dmitrijs2005/gophdocs/internal/revalidate"
)

func main() {

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("log level: %v", err)
	}
	logger := logging.NewJSONLogger(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := api.New(cfg.ServerURL, cfg.Token, cfg.RequestTimeout)
	if cfg.UploadFile != "" {
		if err := upload(ctx, client, cfg.UploadFile, logger); err != nil {
			logger.Error(ctx, "upload failed", "file", cfg.UploadFile, "error", err)
			os.Exit(1)
		}
	}

	w := watch.New(client, logger)
	task := revalidate.New(cfg.RefreshInterval, w.Refresh, func(err error) {
		logger.Error(ctx, "refresh failed", "error", err)
		if errors.Is(err, common.ErrInvalidToken) {
			// a new token is needed, polling will not fix it
			stop()
		}
	})

	logger.Info(ctx, "Watching", "server", cfg.ServerURL, "interval", cfg.RefreshInterval)
	if err := task.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "watch stopped", "error", err)
		os.Exit(1)
	}
}

func upload(ctx context.Context, client *api.Client, path string, logger logging.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	doc, err := client.Upload(ctx, strings.TrimSuffix(name, filepath.Ext(name)), name, mime.TypeByExtension(filepath.Ext(name)), data)
	if err != nil {
		return err
	}
	logger.Info(ctx, "Uploaded", "document_id", doc.ID, "size", len(data))
	return nil
}
