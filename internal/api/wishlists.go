package api

import (
	"net/http"

	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/service"
)

func (s *Server) handleUserWishLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.svc.ListWishLists(r.Context(), UserIDFrom(r.Context()), pathID(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if lists == nil {
		lists = []*models.WishList{}
	}
	s.respondJSON(w, http.StatusOK, lists)
}

func (s *Server) handleCreateWishList(w http.ResponseWriter, r *http.Request) {
	var input service.WishListInput
	if !s.decodeJSON(w, r, &input) {
		return
	}
	list, err := s.svc.CreateWishList(r.Context(), UserIDFrom(r.Context()), input)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, list)
}

func (s *Server) handleGetWishList(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.GetWishList(r.Context(), UserIDFrom(r.Context()), pathID(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleUpdateWishList(w http.ResponseWriter, r *http.Request) {
	var input service.WishListInput
	if !s.decodeJSON(w, r, &input) {
		return
	}
	list, err := s.svc.UpdateWishList(r.Context(), UserIDFrom(r.Context()), pathID(r), input)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteWishList(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteWishList(r.Context(), UserIDFrom(r.Context()), pathID(r)); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGifts(w http.ResponseWriter, r *http.Request) {
	gifts, err := s.svc.ListGifts(r.Context(), UserIDFrom(r.Context()), pathID(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if gifts == nil {
		gifts = []models.Gift{}
	}
	s.respondJSON(w, http.StatusOK, gifts)
}

func (s *Server) handleCreateGift(w http.ResponseWriter, r *http.Request) {
	var input service.GiftInput
	if !s.decodeJSON(w, r, &input) {
		return
	}
	gift, err := s.svc.CreateGift(r.Context(), UserIDFrom(r.Context()), pathID(r), input)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, gift)
}
