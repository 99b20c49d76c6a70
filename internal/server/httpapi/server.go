// Package httpapi exposes the document services over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/logging"
	"github.com/dmitrijs2005/gophdocs/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether the metadata store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the domain services the handlers call.
type Services struct {
	Documents   *services.Documents
	Permissions *services.Permissions
	ShareLinks  *services.ShareLinks
	Sections    *services.Sections
	Stats       *services.Stats
	Admin       *services.Admin
	Folders     *services.Folders
}

type Server struct {
	address         string
	svc             Services
	db              Pinger
	logger          logging.Logger
	jwtSecret       []byte
	shutdownTimeout time.Duration
}

func NewServer(address string, svc Services, db Pinger, l logging.Logger, jwtSecret string, shutdownTimeout time.Duration) *Server {
	return &Server{
		address:         address,
		svc:             svc,
		db:              db,
		logger:          l.With("module", "http_server"),
		jwtSecret:       []byte(jwtSecret),
		shutdownTimeout: shutdownTimeout,
	}
}

// Router builds the route tree. Health, metrics and share-link resolution
// are public; everything else needs a session token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.metrics)
	r.Use(s.requestLogger)

	r.Get("/health/live", s.healthLive)
	r.Get("/health/ready", s.healthReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/share/{linkId}", func(r chi.Router) {
			r.Get("/", s.resolveShareLink)
			r.Get("/view", s.viewSharedBytes)
			r.Get("/download", s.downloadSharedBytes)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/documents", s.createDocument)
			r.Route("/documents/{id}", func(r chi.Router) {
				r.Get("/", s.getDocument)
				r.Patch("/", s.renameDocument)
				r.Delete("/", s.deleteDocument)
				r.Post("/trash", s.trashDocument)
				r.Post("/restore", s.restoreDocument)
				r.Get("/upload-url", s.uploadURL)
				r.Get("/view", s.viewBytes)
				r.Get("/download", s.downloadBytes)

				r.Get("/permissions", s.listPermissions)
				r.Put("/permissions/{userId}", s.grantPermission)
				r.Patch("/permissions/{userId}", s.updatePermission)
				r.Delete("/permissions/{userId}", s.revokePermission)

				r.Put("/share-link", s.ensureShareLink)
				r.Put("/folder", s.moveDocument)
			})

			r.Get("/folders", s.listFolders)
			r.Post("/folders", s.createFolder)
			r.Route("/folders/{id}", func(r chi.Router) {
				r.Get("/", s.getFolder)
				r.Put("/", s.updateFolder)
				r.Delete("/", s.deleteFolder)
			})

			r.Route("/sections", func(r chi.Router) {
				r.Get("/home", s.homeSection)
				r.Get("/recent", s.recentSection)
				r.Get("/shared", s.sharedSection)
				r.Get("/trash", s.trashSection)
				r.Get("/type/{category}", s.byTypeSection)
				r.Get("/snapshot", s.snapshot)
			})
			r.Get("/stats", s.stats)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/users", s.adminListUsers)
				r.Post("/users/bulk-delete", s.adminBulkDeleteUsers)
				r.Put("/users/{id}", s.adminSyncUser)
				r.Patch("/users/{id}/status", s.adminUpdateUserStatus)
				r.Delete("/users/{id}", s.adminDeleteUser)
				r.Get("/documents", s.adminListDocuments)
				r.Get("/settings", s.adminGetSettings)
				r.Put("/settings", s.adminUpdateSettings)
				r.Get("/stats", s.adminStats)
				r.Get("/activities", s.adminListActivities)
				r.Post("/trash/purge", s.adminPurgeExpiredTrash)
			})
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// fail logs a request failure and writes the error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "code", code, "error", err)
	} else {
		s.logger.Warn(r.Context(), "request rejected", "path", r.URL.Path, "code", code, "error", err)
	}
	WriteError(w, err)
}
