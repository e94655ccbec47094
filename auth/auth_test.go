package auth

import (
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

const secret = "a_test_secret_that_is_long_enough"

func TestTokenManager_RoundTrip(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager(secret, "chat-sync")

	token, err := tokens.GenerateToken("alice", time.Hour)
	req.NoError(err)

	participant, err := tokens.ValidateToken(token)
	req.NoError(err)
	req.Equal(chat.Participant("alice"), participant)
}

func TestTokenManager_Rejections(t *testing.T) {
	tokens := NewTokenManager(secret, "chat-sync")

	expired, err := tokens.GenerateToken("alice", -time.Minute)
	require.NoError(t, err)
	foreign, err := NewTokenManager("another_secret_entirely", "chat-sync").GenerateToken("alice", time.Hour)
	require.NoError(t, err)
	otherIssuer, err := NewTokenManager(secret, "someone-else").GenerateToken("alice", time.Hour)
	require.NoError(t, err)
	noIssuer, err := NewTokenManager(secret, "").GenerateToken("alice", time.Hour)
	require.NoError(t, err)
	badSubject, err := tokens.GenerateToken("ali_ce", time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &CustomClaims{UserID: "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "invalid-token-string"},
		{"expired", expired},
		{"wrong secret", foreign},
		{"wrong issuer", otherIssuer},
		{"missing issuer", noIssuer},
		{"participant not usable in a thread key", badSubject},
		{"unsigned", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.ValidateToken(tt.token)
			require.ErrorIs(t, err, errors.ErrInvalidToken)
		})
	}
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokenManager(secret, "chat-sync")
	token, err := tokens.GenerateToken("alice", time.Hour)
	require.NoError(t, err)

	router := mux.NewRouter()
	router.Use(Middleware(tokens))
	whoami := func(w http.ResponseWriter, r *http.Request) {
		participant, ok := ParticipantFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(participant))
	}
	router.HandleFunc("/whoami", whoami)
	router.HandleFunc("/healthz", whoami)

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"bearer header", "/whoami", "Bearer " + token, http.StatusOK, "alice"},
		{"query parameter", "/whoami?access_token=" + token, "", http.StatusOK, "alice"},
		{"missing token", "/whoami", "", http.StatusUnauthorized, ""},
		{"invalid token", "/whoami", "Bearer nope", http.StatusUnauthorized, ""},
		{"public path", "/healthz", "", http.StatusTeapot, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)
			require.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				require.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}
