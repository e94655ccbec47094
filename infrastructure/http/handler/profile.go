package handler

import (
	"chat-sync/domain/account"
	"chat-sync/errors"
	"fmt"
	"io"
	"net/http"

	"github.com/samber/lo"
)

// ListUsers handles GET /users?q=
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	self, ok := h.self(w, r)
	if !ok {
		return
	}
	profiles, err := h.profiles.Directory(r.Context(), self, r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(profiles, func(p account.Profile, _ int) profileResponse {
		return toProfileResponse(p)
	}))
}

// GetProfile handles GET /profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	self, ok := h.self(w, r)
	if !ok {
		return
	}
	h.writeProfile(w, r)(h.profiles.Get(r.Context(), self))
}

// UpdateProfile handles PUT /profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	self, ok := h.self(w, r)
	if !ok {
		return
	}
	var body profileRequest
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeProfile(w, r)(h.profiles.Update(r.Context(), self, body.Name, body.PhotoURL))
}

// UploadPicture handles POST /profile/picture, multipart field "file".
func (h *Handler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	self, ok := h.self(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", errors.ErrInvalidImage, err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: missing file field", errors.ErrInvalidImage))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.config.MaxUploadBytes+1))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", errors.ErrInvalidImage, err))
		return
	}
	if int64(len(content)) > h.config.MaxUploadBytes {
		h.writeError(w, r, fmt.Errorf("%w: picture too large", errors.ErrInvalidImage))
		return
	}
	h.writeProfile(w, r)(h.profiles.UploadPicture(r.Context(), self, header.Filename, content))
}

// SetTheme handles PUT /profile/theme
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	self, ok := h.self(w, r)
	if !ok {
		return
	}
	var body themeRequest
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	theme, err := account.ParseTheme(body.Theme)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeProfile(w, r)(h.profiles.SetTheme(r.Context(), self, theme))
}

// ToggleTheme handles POST /profile/theme/toggle
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	self, ok := h.self(w, r)
	if !ok {
		return
	}
	h.writeProfile(w, r)(h.profiles.ToggleTheme(r.Context(), self))
}

func (h *Handler) writeProfile(w http.ResponseWriter, r *http.Request) func(account.Profile, error) {
	return func(profile account.Profile, err error) {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(profile))
	}
}
