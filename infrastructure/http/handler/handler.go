// Package handler exposes the chat, profile and feed services over HTTP and WebSocket.
package handler

import (
	"chat-sync/auth"
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"chat-sync/services"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type Config struct {
	AllowedOrigins   []string
	MaxUploadBytes   int64
	DefaultFeedLimit int
	WriteTimeout     time.Duration
}

// Handler holds application dependencies
type Handler struct {
	log      *slog.Logger
	config   Config
	tokens   *auth.TokenManager
	chat     services.IChatService
	profiles services.IProfileService
	feed     services.IFeedService
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader
}

func New(log *slog.Logger, config Config, tokens *auth.TokenManager, chat services.IChatService,
	profiles services.IProfileService, feed services.IFeedService, gatherer prometheus.Gatherer) *Handler {
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 5 << 20
	}
	if config.DefaultFeedLimit <= 0 {
		config.DefaultFeedLimit = 50
	}
	return &Handler{
		log:      log,
		config:   config,
		tokens:   tokens,
		chat:     chat,
		profiles: profiles,
		feed:     feed,
		gatherer: gatherer,
		upgrader: createUpgrader(config.AllowedOrigins),
	}
}

// SetupRouter configures and returns the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(auth.Middleware(h.tokens), h.ensureProfile)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Direct messages
	r.HandleFunc("/threads/{other}/messages", h.GetMessages).Methods(http.MethodGet)
	r.HandleFunc("/threads/{other}/messages", h.SendMessage).Methods(http.MethodPost)
	r.HandleFunc("/threads/{other}/live", h.LiveThread).Methods(http.MethodGet)

	// Directory and profile
	r.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	r.HandleFunc("/profile", h.GetProfile).Methods(http.MethodGet)
	r.HandleFunc("/profile", h.UpdateProfile).Methods(http.MethodPut)
	r.HandleFunc("/profile/picture", h.UploadPicture).Methods(http.MethodPost)
	r.HandleFunc("/profile/theme", h.SetTheme).Methods(http.MethodPut)
	r.HandleFunc("/profile/theme/toggle", h.ToggleTheme).Methods(http.MethodPost)

	// Feed
	r.HandleFunc("/posts", h.ListPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts", h.CreatePost).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id}/like", h.ToggleLike).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id}/comments", h.AddComment).Methods(http.MethodPost)

	return r
}

// Handler wraps the router with CORS.
func (h *Handler) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   h.config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           300,
		AllowCredentials: true,
	})
	return c.Handler(h.SetupRouter())
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ensureProfile gives every authenticated participant a profile document on
// first contact. A failure is logged and the request goes on.
func (h *Handler) ensureProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if participant, ok := auth.ParticipantFromContext(r.Context()); ok && h.profiles != nil {
			if err := h.profiles.EnsureProfile(r.Context(), participant); err != nil {
				h.log.Warn("Could not ensure profile", "participant", participant, "error", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// self returns the authenticated participant, answering 401 when absent.
func (h *Handler) self(w http.ResponseWriter, r *http.Request) (chat.Participant, bool) {
	participant, ok := auth.ParticipantFromContext(r.Context())
	if !ok {
		h.writeError(w, r, errors.ErrInvalidToken)
	}
	return participant, ok
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		h.log.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errors.ErrEmptyInput, err)
	}
	return nil
}
