package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophdocs/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (s *Server) listFolders(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Folders.List(r.Context(), actorFrom(r.Context()), r.URL.Query().Get("parentId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createFolder(w http.ResponseWriter, r *http.Request) {
	var in services.FolderInput
	if err := decodeJSON(r, "folders.Create", &in); err != nil {
		s.fail(w, r, err)
		return
	}
	f, err := s.svc.Folders.Create(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) getFolder(w http.ResponseWriter, r *http.Request) {
	f, err := s.svc.Folders.Get(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) updateFolder(w http.ResponseWriter, r *http.Request) {
	var in services.FolderInput
	if err := decodeJSON(r, "folders.Update", &in); err != nil {
		s.fail(w, r, err)
		return
	}
	f, err := s.svc.Folders.Update(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) deleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Folders.Delete(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
