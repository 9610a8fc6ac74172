package api

import (
	"net/http"
	"time"

	"github.com/Kerhoff/dibs/internal/models"
	"github.com/Kerhoff/dibs/internal/service"
)

// publicProfile is what other users see of an account.
type publicProfile struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func profileOf(u *models.User) publicProfile {
	return publicProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	user, err := s.svc.GetUser(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if id == UserIDFrom(r.Context()) {
		s.respondJSON(w, http.StatusOK, user)
		return
	}
	s.respondJSON(w, http.StatusOK, profileOf(user))
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var input service.ProfileInput
	if !s.decodeJSON(w, r, &input) {
		return
	}
	user, err := s.svc.UpdateProfile(r.Context(), UserIDFrom(r.Context()), input)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteAccount(r.Context(), UserIDFrom(r.Context())); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	conns, err := s.svc.Following(r.Context(), pathID(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, connectionsOrEmpty(conns))
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	conns, err := s.svc.Followers(r.Context(), pathID(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, connectionsOrEmpty(conns))
}

func connectionsOrEmpty(conns []service.Connection) []service.Connection {
	if conns == nil {
		return []service.Connection{}
	}
	return conns
}

type followRequest struct {
	FriendID int64 `json:"friendId"`
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	var req followRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	friendship, err := s.svc.Follow(r.Context(), UserIDFrom(r.Context()), req.FriendID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, friendship)
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Unfollow(r.Context(), UserIDFrom(r.Context()), pathID(r)); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTelegramLinkCode(w http.ResponseWriter, r *http.Request) {
	code, err := s.svc.IssueTelegramLinkCode(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{
		"code":    code,
		"command": "/link " + code,
	})
}
