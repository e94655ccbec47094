package handler

import (
	"chat-sync/domain/feed"
	"chat-sync/errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

// ListPosts handles GET /posts?limit=
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	self, ok := h.self(w, r)
	if !ok {
		return
	}
	limit := h.config.DefaultFeedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, r, fmt.Errorf("%w: limit must be a positive integer", errors.ErrEmptyInput))
			return
		}
		limit = parsed
	}
	posts, err := h.feed.ListPosts(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(posts, func(p feed.Post, _ int) postResponse {
		return toPostResponse(p, self)
	}))
}

// CreatePost handles POST /posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	self, ok := h.self(w, r)
	if !ok {
		return
	}
	var body postRequest
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	post, err := h.feed.CreatePost(r.Context(), self, body.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPostResponse(post, self))
}

// ToggleLike handles POST /posts/{id}/like
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	self, ok := h.self(w, r)
	if !ok {
		return
	}
	id, err := postID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	post, err := h.feed.ToggleLike(r.Context(), id, self)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(post, self))
}

// AddComment handles POST /posts/{id}/comments
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	self, ok := h.self(w, r)
	if !ok {
		return
	}
	id, err := postID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body textRequest
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	post, err := h.feed.AddComment(r.Context(), id, self, body.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPostResponse(post, self))
}

// An unparsable id cannot name an existing post.
func postID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: post %s", errors.ErrNotFound, mux.Vars(r)["id"])
	}
	return id, nil
}
