// Package client talks to a chat-sync server over HTTP and WebSocket.
// It exposes the same chat operations as the in-process services, so a
// terminal screen can be driven by a Composer and a Timeline.
package client

import (
	"bytes"
	"chat-sync/contract"
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

type messageDTO struct {
	ID         string    `json:"id"`
	ThreadKey  string    `json:"threadKey"`
	Text       string    `json:"text"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// threadFrame is either a thread snapshot or an error frame.
type threadFrame struct {
	ThreadKey string       `json:"threadKey"`
	Sequence  uint64       `json:"sequence"`
	Messages  []messageDTO `json:"messages"`
	Error     string       `json:"error"`
}

func (m messageDTO) toMessage() chat.Message {
	id, _ := uuid.Parse(m.ID)
	return chat.Message{
		ID:         id,
		Thread:     chat.ThreadKey(m.ThreadKey),
		Text:       m.Text,
		SenderID:   chat.Participant(m.SenderID),
		ReceiverID: chat.Participant(m.ReceiverID),
		CreatedAt:  m.CreatedAt,
	}
}

func (f threadFrame) toSnapshot() chat.Snapshot {
	return chat.Snapshot{
		Thread:   chat.ThreadKey(f.ThreadKey),
		Sequence: f.Sequence,
		Messages: lo.Map(f.Messages, func(m messageDTO, _ int) chat.Message { return m.toMessage() }),
		TakenAt:  time.Now().UTC(),
	}
}

// Remote is a chat service backed by a remote server. The participant is
// the one the token was minted for, self is only used to resolve thread keys.
type Remote struct {
	log     *slog.Logger
	baseURL string
	token   string
	http    *http.Client
	dialer  *websocket.Dialer
}

func NewRemote(log *slog.Logger, baseURL, token string, httpClient *http.Client) *Remote {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Remote{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
		dialer:  websocket.DefaultDialer,
	}
}

func (r *Remote) Send(ctx context.Context, self, other chat.Participant, text string) (chat.Message, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return chat.Message{}, err
	}
	var msg messageDTO
	if err := r.do(ctx, http.MethodPost, threadPath(other, "messages"), bytes.NewReader(body), &msg); err != nil {
		return chat.Message{}, err
	}
	return msg.toMessage(), nil
}

func (r *Remote) History(ctx context.Context, self, other chat.Participant) ([]chat.Message, error) {
	var frame threadFrame
	if err := r.do(ctx, http.MethodGet, threadPath(other, "messages"), nil, &frame); err != nil {
		return nil, err
	}
	return frame.toSnapshot().Messages, nil
}

// OpenThread dials the live endpoint of the thread. The subscription ends
// when ctx is done, when Cancel is called or when the server closes it.
func (r *Remote) OpenThread(ctx context.Context, self, other chat.Participant) (chat.ThreadKey, contract.ISubscription, error) {
	key, err := chat.ResolveThreadKey(self, other)
	if err != nil {
		return "", nil, err
	}
	target, err := url.Parse(r.baseURL + threadPath(other, "live"))
	if err != nil {
		return "", nil, err
	}
	target.Scheme = strings.Replace(target.Scheme, "http", "ws", 1)

	conn, resp, err := r.dialer.DialContext(ctx, target.String(), r.header())
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return "", nil, readError(resp)
		}
		return "", nil, fmt.Errorf("%w: dial %s: %v", errors.ErrStoreUnavailable, key, err)
	}
	r.log.Debug("Live thread connected", "thread", key)
	return key, newSubscription(ctx, r.log, conn), nil
}

func (r *Remote) do(ctx context.Context, method, path string, body io.Reader, dst any) error {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header = r.header()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", errors.ErrStoreUnavailable, method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return readError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func (r *Remote) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+r.token)
	return h
}

func threadPath(other chat.Participant, leaf string) string {
	return "/threads/" + url.PathEscape(string(other)) + "/" + leaf
}

func readError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return errors.FromHTTP(resp.StatusCode, body.Error)
}
