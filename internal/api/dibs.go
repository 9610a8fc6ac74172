package api

import (
	"net/http"

	"github.com/Kerhoff/dibs/internal/dibs"
	"github.com/Kerhoff/dibs/internal/service"
)

func (s *Server) handleCreateDib(w http.ResponseWriter, r *http.Request) {
	var input service.DibInput
	if !s.decodeOptionalJSON(w, r, &input) {
		return
	}
	dib, err := s.svc.CreateDib(r.Context(), UserIDFrom(r.Context()), pathID(r), input)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, dib)
}

func (s *Server) handleUpdateDib(w http.ResponseWriter, r *http.Request) {
	var input service.DibUpdate
	if !s.decodeJSON(w, r, &input) {
		return
	}
	dib, err := s.svc.UpdateDib(r.Context(), UserIDFrom(r.Context()), pathID(r), input)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, dib)
}

func (s *Server) handleDeleteDib(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteDib(r.Context(), UserIDFrom(r.Context()), pathID(r)); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := s.svc.Recipients(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if recipients == nil {
		recipients = []dibs.Recipient{}
	}
	s.respondJSON(w, http.StatusOK, recipients)
}
