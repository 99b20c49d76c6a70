package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type syncUserRequest struct {
	Username string            `json:"username"`
	Email    string            `json:"email"`
	Role     models.Role       `json:"role"`
	Status   models.UserStatus `json:"status"`
}

type userStatusRequest struct {
	Status models.UserStatus `json:"status"`
}

type bulkDeleteRequest struct {
	UserIDs []string `json:"userIds"`
}

func (s *Server) adminListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r, "admin.ListUsers")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	result, err := s.svc.Admin.ListUsers(r.Context(), actorFrom(r.Context()), services.UserListQuery{
		PageRequest: page,
		SortBy:      q.Get("sortBy"),
		SortDir:     q.Get("sortDir"),
		Role:        q.Get("role"),
		Status:      q.Get("status"),
		Search:      q.Get("search"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) adminSyncUser(w http.ResponseWriter, r *http.Request) {
	var req syncUserRequest
	if err := decodeJSON(r, "admin.SyncUser", &req); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.svc.Admin.SyncUser(r.Context(), actorFrom(r.Context()), models.User{
		ID:       chi.URLParam(r, "id"),
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) adminUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	var req userStatusRequest
	if err := decodeJSON(r, "admin.UpdateUserStatus", &req); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.svc.Admin.UpdateUserStatus(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Admin.DeleteUser(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminBulkDeleteUsers(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeJSON(r, "admin.BulkDeleteUsers", &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.svc.Admin.BulkDeleteUsers(r.Context(), actorFrom(r.Context()), req.UserIDs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) adminListDocuments(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r, "admin.ListDocuments")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	result, err := s.svc.Admin.ListDocuments(r.Context(), actorFrom(r.Context()), services.DocumentListQuery{
		PageRequest: page,
		SortBy:      q.Get("sortBy"),
		SortDir:     q.Get("sortDir"),
		Status:      q.Get("status"),
		OwnerID:     q.Get("ownerId"),
		Search:      q.Get("search"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) adminGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.Admin.GetSettings(r.Context(), actorFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) adminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in services.SettingsInput
	if err := decodeJSON(r, "admin.UpdateSettings", &in); err != nil {
		s.fail(w, r, err)
		return
	}
	settings, err := s.svc.Admin.UpdateSettings(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) adminStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Admin.Stats(r.Context(), actorFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) adminListActivities(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r, "admin.ListActivities")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := s.svc.Admin.ListActivities(r.Context(), actorFrom(r.Context()), page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) adminPurgeExpiredTrash(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Admin.PurgeExpiredTrash(r.Context(), actorFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
