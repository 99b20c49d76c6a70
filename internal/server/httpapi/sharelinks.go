package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type shareLinkRequest struct {
	AccessLevel models.AccessLevel `json:"accessLevel"`
}

func (s *Server) ensureShareLink(w http.ResponseWriter, r *http.Request) {
	var req shareLinkRequest
	if err := decodeJSON(r, "sharelinks.EnsureLink", &req); err != nil {
		s.fail(w, r, err)
		return
	}
	link, err := s.svc.ShareLinks.EnsureLink(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), req.AccessLevel)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (s *Server) resolveShareLink(w http.ResponseWriter, r *http.Request) {
	shared, err := s.svc.ShareLinks.Resolve(r.Context(), chi.URLParam(r, "linkId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shared)
}

func (s *Server) viewSharedBytes(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.ShareLinks.ViewBytes(r.Context(), chi.URLParam(r, "linkId"))
	s.stream(w, r, c, err, "inline")
}

func (s *Server) downloadSharedBytes(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.ShareLinks.DownloadBytes(r.Context(), chi.URLParam(r, "linkId"))
	s.stream(w, r, c, err, "attachment")
}
