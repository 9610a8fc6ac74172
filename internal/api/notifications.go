package api

import (
	"net/http"
	"strconv"

	"github.com/Kerhoff/dibs/internal/repository"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	filters := repository.NotificationFilters{
		Limit:  queryInt(r, "limit", defaultNotificationLimit),
		Offset: queryInt(r, "offset", 0),
	}
	if filters.Limit == 0 || filters.Limit > maxNotificationLimit {
		filters.Limit = maxNotificationLimit
	}
	if raw := r.URL.Query().Get("unread"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "unread must be a boolean")
			return
		}
		filters.UnreadOnly = unread
	}

	notifications, err := s.svc.ListNotifications(r.Context(), UserIDFrom(r.Context()), filters)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, notifications)
}

type markReadRequest struct {
	IsRead bool `json:"isRead"`
}

func (s *Server) handleMarkNotification(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	n, err := s.svc.MarkNotificationRead(r.Context(), UserIDFrom(r.Context()), pathID(r), req.IsRead)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, n)
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteNotification(r.Context(), UserIDFrom(r.Context()), pathID(r)); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
