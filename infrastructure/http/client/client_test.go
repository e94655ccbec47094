package client

import (
	"bytes"
	"chat-sync/auth"
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"chat-sync/infrastructure/http/handler"
	"chat-sync/observability"
	"chat-sync/repositories"
	"chat-sync/runtime"
	"chat-sync/services"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testSecret = "client_test_secret_long_enough"

type fixture struct {
	server *httptest.Server
	tokens *auth.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	registry := prometheus.NewRegistry()
	synchronizer := runtime.NewSynchronizer(log, runtime.NewWatchers(),
		repositories.NewMessageRepository(db, log, nil), observability.NewMetrics(registry), nil, 20)
	tokens := auth.NewTokenManager(testSecret, "chat-sync")
	h := handler.New(log, handler.Config{}, tokens, services.NewChatService(synchronizer), nil, nil, registry)
	server := httptest.NewServer(h.Handler())
	t.Cleanup(server.Close)
	return &fixture{server: server, tokens: tokens}
}

func (f *fixture) remote(t *testing.T, who chat.Participant) *Remote {
	t.Helper()
	token, err := f.tokens.GenerateToken(who, time.Hour)
	require.NoError(t, err)
	return NewRemote(logs.GetLoggerFromLevel(slog.LevelDebug), f.server.URL, token, nil)
}

func next(t *testing.T, sub interface{ Snapshots() <-chan chat.Snapshot }) chat.Snapshot {
	t.Helper()
	select {
	case snapshot, open := <-sub.Snapshots():
		require.True(t, open, "live thread closed")
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
		return chat.Snapshot{}
	}
}

func TestRemote_Composer_Round_Trip(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	alice := f.remote(t, "alice")

	key, sub, err := alice.OpenThread(t.Context(), "alice", "bob")
	req.NoError(err)
	defer sub.Cancel()
	req.Equal(chat.ThreadKey("bob_alice"), key)

	var out bytes.Buffer
	transcript := NewTranscript(&out, "alice")
	req.Equal(0, transcript.Apply(next(t, sub)))
	req.Equal(chat.StateActive, sub.State())

	composer := services.NewComposer(alice, "alice", "bob")
	composer.SetInput("hello bob")
	sent, err := composer.Submit(t.Context())
	req.NoError(err)
	req.Empty(composer.Input())
	req.Equal(chat.Participant("alice"), sent.SenderID)
	req.Equal(key, sent.Thread)
	req.False(sent.CreatedAt.IsZero())

	req.Equal(1, transcript.Apply(next(t, sub)))
	req.Contains(out.String(), "hello bob")
	entries := transcript.Timeline().Entries()
	req.Len(entries, 1)
	req.True(entries[0].Mine)
	req.Equal(sent.ID, entries[0].ID)

	history, err := f.remote(t, "bob").History(t.Context(), "bob", "alice")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("hello bob", history[0].Text)
	req.Equal(chat.Participant("alice"), history[0].SenderID)
}

func TestRemote_Rejected_Input_Is_Kept(t *testing.T) {
	req := require.New(t)
	alice := newFixture(t).remote(t, "alice")
	composer := services.NewComposer(alice, "alice", "bob")

	composer.SetInput("   ")
	_, err := composer.Submit(t.Context())
	req.ErrorIs(err, errors.ErrEmptyInput)

	long := strings.Repeat("a", 21)
	composer.SetInput(long)
	_, err = composer.Submit(t.Context())
	req.ErrorIs(err, errors.ErrContentTooLong)
	req.Equal(long, composer.Input())

	_, err = alice.Send(t.Context(), "alice", "bob_", "hi")
	req.ErrorIs(err, errors.ErrInvalidParticipant)
}

func TestRemote_OpenThread_Errors(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	_, _, err := NewRemote(slog.Default(), f.server.URL, "not-a-token", nil).OpenThread(t.Context(), "alice", "bob")
	req.ErrorIs(err, errors.ErrInvalidToken)

	_, _, err = f.remote(t, "alice").OpenThread(t.Context(), "alice", "")
	req.ErrorIs(err, errors.ErrInvalidParticipant)
}

func TestRemote_Cancel_Closes_Snapshots(t *testing.T) {
	req := require.New(t)
	_, sub, err := newFixture(t).remote(t, "alice").OpenThread(t.Context(), "alice", "bob")
	req.NoError(err)
	next(t, sub)

	sub.Cancel()
	sub.Cancel()
	req.Equal(chat.StateCancelled, sub.State())
	req.NoError(sub.Err())
	_, open := <-sub.Snapshots()
	req.False(open)
}
