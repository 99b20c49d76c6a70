package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type levelRequest struct {
	Level models.AccessLevel `json:"level"`
}

func (s *Server) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := s.svc.Permissions.List(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, perms)
}

func (s *Server) grantPermission(w http.ResponseWriter, r *http.Request) {
	var req levelRequest
	if err := decodeJSON(r, "permissions.Grant", &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.svc.Permissions.Grant(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "userId"), req.Level)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updatePermission(w http.ResponseWriter, r *http.Request) {
	var req levelRequest
	if err := decodeJSON(r, "permissions.Update", &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.svc.Permissions.Update(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "userId"), req.Level)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) revokePermission(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Permissions.Revoke(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "userId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
