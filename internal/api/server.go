package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dibs/internal/apperr"
	"github.com/Kerhoff/dibs/internal/metrics"
	"github.com/Kerhoff/dibs/internal/service"
)

// Options configures the HTTP layer.
type Options struct {
	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server provides the HTTP API.
type Server struct {
	svc     *service.Service
	logger  *logrus.Logger
	router  *mux.Router
	auth    *AuthMiddleware
	limiter *RateLimiter
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, logger *logrus.Logger, opts Options) *Server {
	s := &Server{
		svc:     svc,
		logger:  logger,
		router:  mux.NewRouter(),
		auth:    NewAuthMiddleware([]byte(opts.JWTSecret), logger),
		limiter: NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, logger),
	}
	s.routes()
	return s
}

// StartBackground runs housekeeping until ctx is cancelled.
func (s *Server) StartBackground(ctx context.Context) {
	s.limiter.StartCleanup(ctx, time.Minute, 10*time.Minute)
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	s.router.Use(metrics.Middleware, s.logRequests)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.auth.Handler, s.limiter.Handler)

	// Users & follow graph
	api.HandleFunc("/users/me", s.handleUpdateMe).Methods(http.MethodPut)
	api.HandleFunc("/users/me", s.handleDeleteMe).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/following", s.handleFollowing).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/followers", s.handleFollowers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/wish-lists", s.handleUserWishLists).Methods(http.MethodGet)
	api.HandleFunc("/friendships", s.handleFollow).Methods(http.MethodPost)
	api.HandleFunc("/friendships/{id:[0-9]+}", s.handleUnfollow).Methods(http.MethodDelete)

	// Wish lists
	api.HandleFunc("/wish-lists", s.handleCreateWishList).Methods(http.MethodPost)
	api.HandleFunc("/wish-lists/{id:[0-9]+}", s.handleGetWishList).Methods(http.MethodGet)
	api.HandleFunc("/wish-lists/{id:[0-9]+}", s.handleUpdateWishList).Methods(http.MethodPut)
	api.HandleFunc("/wish-lists/{id:[0-9]+}", s.handleDeleteWishList).Methods(http.MethodDelete)
	api.HandleFunc("/wish-lists/{id:[0-9]+}/gifts", s.handleListGifts).Methods(http.MethodGet)
	api.HandleFunc("/wish-lists/{id:[0-9]+}/gifts", s.handleCreateGift).Methods(http.MethodPost)

	// Gifts & comments
	api.HandleFunc("/gifts/{id:[0-9]+}", s.handleUpdateGift).Methods(http.MethodPut)
	api.HandleFunc("/gifts/{id:[0-9]+}", s.handleDeleteGift).Methods(http.MethodDelete)
	api.HandleFunc("/gifts/{id:[0-9]+}/received", s.handleSetReceived).Methods(http.MethodPut)
	api.HandleFunc("/gifts/{id:[0-9]+}/comments", s.handleListComments).Methods(http.MethodGet)
	api.HandleFunc("/gifts/{id:[0-9]+}/comments", s.handleAddComment).Methods(http.MethodPost)
	api.HandleFunc("/comments/{id:[0-9]+}", s.handleDeleteComment).Methods(http.MethodDelete)

	// Dibs
	api.HandleFunc("/gifts/{id:[0-9]+}/dibs", s.handleCreateDib).Methods(http.MethodPost)
	api.HandleFunc("/dibs/{id:[0-9]+}", s.handleUpdateDib).Methods(http.MethodPut)
	api.HandleFunc("/dibs/{id:[0-9]+}", s.handleDeleteDib).Methods(http.MethodDelete)
	api.HandleFunc("/recipients", s.handleRecipients).Methods(http.MethodGet)

	// Notifications
	api.HandleFunc("/notifications", s.handleListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id:[0-9]+}", s.handleMarkNotification).Methods(http.MethodPut)
	api.HandleFunc("/notifications/{id:[0-9]+}", s.handleDeleteNotification).Methods(http.MethodDelete)

	// Telegram
	api.HandleFunc("/telegram/link-code", s.handleTelegramLinkCode).Methods(http.MethodPost)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps err to its status code. Infrastructure errors are
// logged and hidden from the client.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": w.Header().Get(requestIDHeader),
		}).WithError(err).Error("request failed")
		s.respondError(w, status, "internal server error")
		return
	}
	s.respondJSON(w, status, errorResponse{Error: err.Error(), Fields: apperr.FieldsOf(err)})
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst and writes a 400 on failure.
// The caller should return immediately when it returns false.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return s.decodeBody(w, r, dst, false)
}

// decodeOptionalJSON is decodeJSON but leaves dst untouched when the body is
// empty.
func (s *Server) decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return s.decodeBody(w, r, dst, true)
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	if r.Body == nil || r.Body == http.NoBody {
		if optional {
			return true
		}
		s.respondError(w, http.StatusBadRequest, "request body is empty")
		return false
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			if optional {
				return true
			}
			s.respondError(w, http.StatusBadRequest, "request body is empty")
		case errors.As(err, &tooLarge):
			s.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		default:
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		}
		return false
	}
	return true
}

// pathID extracts the {id} route variable.
func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

// queryInt reads a non-negative integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
