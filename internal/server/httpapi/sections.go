package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (s *Server) homeSection(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r, "sections.Home")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	result, err := s.svc.Sections.Home(r.Context(), actorFrom(r.Context()), services.HomeQuery{
		PageRequest: page,
		SortBy:      q.Get("sortBy"),
		SortDir:     q.Get("sortDir"),
		Search:      q.Get("search"),
		FolderID:    q.Get("folderId"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) recentSection(w http.ResponseWriter, r *http.Request) {
	s.list(w, r, s.svc.Sections.Recent)
}

func (s *Server) sharedSection(w http.ResponseWriter, r *http.Request) {
	s.list(w, r, s.svc.Sections.Shared)
}

func (s *Server) trashSection(w http.ResponseWriter, r *http.Request) {
	s.list(w, r, s.svc.Sections.Trash)
}

func (s *Server) byTypeSection(w http.ResponseWriter, r *http.Request) {
	docs, err := s.svc.Sections.ByType(r.Context(), actorFrom(r.Context()), models.Category(chi.URLParam(r, "category")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, section func(context.Context, models.Actor) ([]*models.Document, error)) {
	docs, err := section(r.Context(), actorFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Sections.Snapshot(r.Context(), actorFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Stats.Get(r.Context(), actorFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
