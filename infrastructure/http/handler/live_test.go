package handler

import (
	"chat-sync/auth"
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"chat-sync/mocks"
	"chat-sync/observability"
	"chat-sync/repositories"
	"chat-sync/runtime"
	"chat-sync/services"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func dialLive(t *testing.T, server *httptest.Server, token, other string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/threads/" + other + "/live?access_token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame[T any](t *testing.T, conn *websocket.Conn) T {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var v T
	require.NoError(t, conn.ReadJSON(&v))
	return v
}

// The sender sees its own message through the live stream, as does the receiver.
func TestLiveThread_Sender_Receives_Own_Message(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	registry := prometheus.NewRegistry()
	synchronizer := runtime.NewSynchronizer(log, runtime.NewWatchers(),
		repositories.NewMessageRepository(db, log, nil), observability.NewMetrics(registry), nil, 1000)
	tokens := auth.NewTokenManager(testSecret, "chat-sync")
	h := New(log, Config{}, tokens, services.NewChatService(synchronizer), nil, nil, registry)
	server := httptest.NewServer(h.Handler())
	t.Cleanup(server.Close)

	aliceToken, err := tokens.GenerateToken("alice", time.Hour)
	req.NoError(err)
	bobToken, err := tokens.GenerateToken("bob", time.Hour)
	req.NoError(err)

	alice := dialLive(t, server, aliceToken, "bob")
	bob := dialLive(t, server, bobToken, "alice")

	// First frame is the current, empty, collection
	req.Empty(readFrame[threadResponse](t, alice).Messages)
	req.Empty(readFrame[threadResponse](t, bob).Messages)

	_, err = synchronizer.Send(t.Context(), chat.SendMessageCommand{Thread: "bob_alice", SenderID: "alice", ReceiverID: "bob", Text: "hello"})
	req.NoError(err)

	own := readFrame[threadResponse](t, alice)
	req.Equal("bob_alice", own.ThreadKey)
	req.Len(own.Messages, 1)
	req.Equal("hello", own.Messages[0].Text)
	req.True(own.Messages[0].Mine)

	received := readFrame[threadResponse](t, bob)
	req.Len(received.Messages, 1)
	req.False(received.Messages[0].Mine)
	req.Greater(received.Sequence, uint64(1))
}

func TestLiveThread_Failure_Sends_Error_Frame(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	snapshots := make(chan chat.Snapshot)
	close(snapshots)
	subscription := mocks.NewMockISubscription(ctrl)
	subscription.EXPECT().Snapshots().Return((<-chan chat.Snapshot)(snapshots)).AnyTimes()
	subscription.EXPECT().Err().Return(errors.ErrStoreUnavailable)
	subscription.EXPECT().Cancel().AnyTimes()

	chatService := mocks.NewMockIChatService(ctrl)
	chatService.EXPECT().
		OpenThread(gomock.Any(), chat.Participant("alice"), chat.Participant("bob")).
		Return(chat.ThreadKey("bob_alice"), subscription, nil)

	tokens := auth.NewTokenManager(testSecret, "chat-sync")
	h := New(slog.Default(), Config{}, tokens, chatService, nil, nil, prometheus.NewRegistry())
	server := httptest.NewServer(h.Handler())
	defer server.Close()

	token, err := tokens.GenerateToken("alice", time.Hour)
	req.NoError(err)
	conn := dialLive(t, server, token, "bob")

	frame := readFrame[errorResponse](t, conn)
	req.Equal(errors.ErrStoreUnavailable.Error(), frame.Error)

	_, _, err = conn.ReadMessage()
	req.True(websocket.IsCloseError(err, websocket.CloseInternalServerErr))
}

func TestLiveThread_Invalid_Participant_Is_Not_Upgraded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	chatService := mocks.NewMockIChatService(ctrl)
	chatService.EXPECT().OpenThread(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(chat.ThreadKey(""), nil, errors.ErrInvalidParticipant)

	tokens := auth.NewTokenManager(testSecret, "chat-sync")
	server := httptest.NewServer(New(slog.Default(), Config{}, tokens, chatService, nil, nil, prometheus.NewRegistry()).Handler())
	defer server.Close()

	token, err := tokens.GenerateToken("alice", time.Hour)
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/threads/b:ob/live?access_token=" + token
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
