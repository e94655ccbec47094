package auth

import (
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// Paths that do not require a token.
var publicPaths = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

func WithParticipant(ctx context.Context, participant chat.Participant) context.Context {
	return context.WithValue(ctx, UserIDKey, participant)
}

func ParticipantFromContext(ctx context.Context) (chat.Participant, bool) {
	participant, ok := ctx.Value(UserIDKey).(chat.Participant)
	return participant, ok && participant != ""
}

// Middleware validates the bearer token and injects the participant into the
// request context. Browsers cannot set headers on a WebSocket handshake, so
// the token is also accepted from the access_token query parameter.
func Middleware(tokens *TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr := bearerToken(r)
			if tokenStr == "" {
				unauthorized(w, "authorization token is missing")
				return
			}
			participant, err := tokens.ValidateToken(tokenStr)
			if err != nil {
				unauthorized(w, errors.ErrInvalidToken.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithParticipant(r.Context(), participant)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("access_token")
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
