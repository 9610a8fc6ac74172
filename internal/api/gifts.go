package api

import (
	"net/http"

	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/service"
)

func (s *Server) handleUpdateGift(w http.ResponseWriter, r *http.Request) {
	var input service.GiftInput
	if !s.decodeJSON(w, r, &input) {
		return
	}
	gift, err := s.svc.UpdateGift(r.Context(), UserIDFrom(r.Context()), pathID(r), input)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, gift)
}

func (s *Server) handleDeleteGift(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteGift(r.Context(), UserIDFrom(r.Context()), pathID(r)); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type receivedRequest struct {
	IsReceived bool `json:"isReceived"`
}

func (s *Server) handleSetReceived(w http.ResponseWriter, r *http.Request) {
	var req receivedRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	gift, err := s.svc.SetReceived(r.Context(), UserIDFrom(r.Context()), pathID(r), req.IsReceived)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, gift)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.svc.ListComments(r.Context(), UserIDFrom(r.Context()), pathID(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	s.respondJSON(w, http.StatusOK, comments)
}

type commentRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	comment, err := s.svc.AddComment(r.Context(), UserIDFrom(r.Context()), pathID(r), req.Body)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteComment(r.Context(), UserIDFrom(r.Context()), pathID(r)); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
