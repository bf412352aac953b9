package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"socialhub/config"
	"socialhub/database"
	"socialhub/middleware"
	"socialhub/realtime"
)

// API bundles the handlers with the presence hub and token settings they
// need. The hub is injected rather than shared as a package global so the
// registry can be swapped without touching call sites.
type API struct {
	hub           *realtime.Hub
	secret        []byte
	tokenValidity time.Duration
}

// New builds the handler set
func New(hub *realtime.Hub, cfg *config.Config) *API {
	return &API{
		hub:           hub,
		secret:        []byte(cfg.JWTSecret),
		tokenValidity: cfg.TokenValidity,
	}
}

// Routes wires every endpoint onto a router
func (a *API) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/ws", a.ServeWS)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", a.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", a.Login).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.Auth(a.secret))

	authed.HandleFunc("/auth/me", a.Me).Methods(http.MethodGet)

	authed.HandleFunc("/users", a.SearchUsers).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id:[0-9]+}", a.GetUser).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id:[0-9]+}/follow", a.FollowUser).Methods(http.MethodPost)
	authed.HandleFunc("/users/{id:[0-9]+}/unfollow", a.UnfollowUser).Methods(http.MethodPost)

	authed.HandleFunc("/messages/conversations", a.GetConversations).Methods(http.MethodGet)
	authed.HandleFunc("/messages/{peerId:[0-9]+}", a.GetMessages).Methods(http.MethodGet)
	authed.HandleFunc("/messages", a.SendMessage).Methods(http.MethodPost)
	authed.HandleFunc("/messages/{id:[0-9]+}", a.DeleteMessage).Methods(http.MethodDelete)

	authed.HandleFunc("/notifications", a.GetNotifications).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/unread-count", a.UnreadCount).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/{id:[0-9]+}/read", a.MarkNotificationRead).Methods(http.MethodPut)
	authed.HandleFunc("/notifications/mark-all-read", a.MarkAllNotificationsRead).Methods(http.MethodPut)

	authed.HandleFunc("/posts", a.CreatePost).Methods(http.MethodPost)
	authed.HandleFunc("/posts/{id:[0-9]+}", a.GetPost).Methods(http.MethodGet)
	authed.HandleFunc("/posts/{id:[0-9]+}/react", a.ReactToPost).Methods(http.MethodPost)
	authed.HandleFunc("/posts/{id:[0-9]+}/share", a.SharePost).Methods(http.MethodPost)

	return r
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondStoreError maps the store error taxonomy onto HTTP statuses
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	default:
		log.Error().Err(err).Msg("store failure")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
