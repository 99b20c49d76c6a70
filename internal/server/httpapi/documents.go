package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type renameRequest struct {
	Title string `json:"title"`
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var in services.CreateDocumentInput
	if err := decodeJSON(r, "documents.Create", &in); err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := s.svc.Documents.Create(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Documents.Get(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) renameDocument(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(r, "documents.Rename", &req); err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := s.svc.Documents.Rename(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), req.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type moveRequest struct {
	FolderID string `json:"folderId"`
}

func (s *Server) moveDocument(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, "documents.Move", &req); err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := s.svc.Documents.Move(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), req.FolderID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) trashDocument(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.svc.Documents.MoveToTrash)
}

func (s *Server) restoreDocument(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.svc.Documents.Restore)
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, move func(context.Context, models.Actor, string) (*models.Document, error)) {
	doc, err := move(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Documents.PermanentlyDelete(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) uploadURL(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Documents.UploadURL(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) viewBytes(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Documents.ViewBytes(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"))
	s.stream(w, r, c, err, "inline")
}

func (s *Server) downloadBytes(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Documents.DownloadBytes(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"))
	s.stream(w, r, c, err, "attachment")
}

func (s *Server) stream(w http.ResponseWriter, r *http.Request, c *services.Content, err error, disposition string) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := writeContent(w, c, disposition); err != nil {
		// headers are already out, so only log
		s.logger.Warn(r.Context(), "streaming interrupted", "document_id", c.Document.ID, "error", err)
	}
}
