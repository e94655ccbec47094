package handler

import (
	"chat-sync/domain/chat"
	"chat-sync/projection"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// createUpgrader creates a WebSocket upgrader with the given allowed origins.
// Native clients send no Origin header and are accepted.
func createUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowedMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowedMap[origin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowedMap["*"] || allowedMap[origin]
		},
	}
}

// GetMessages handles GET /threads/{other}/messages
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	self, ok := h.self(w, r)
	if !ok {
		return
	}
	other := chat.Participant(mux.Vars(r)["other"])
	messages, err := h.chat.History(r.Context(), self, other)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	key, _ := chat.ResolveThreadKey(self, other)
	timeline := projection.NewTimeline(self)
	timeline.Apply(chat.Snapshot{Thread: key, Messages: messages})
	writeJSON(w, http.StatusOK, toThreadResponse(key, timeline))
}

// SendMessage handles POST /threads/{other}/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	self, ok := h.self(w, r)
	if !ok {
		return
	}
	var body textRequest
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	msg, err := h.chat.Send(r.Context(), self, chat.Participant(mux.Vars(r)["other"]), body.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageResponse(msg, self))
}

// LiveThread handles GET /threads/{other}/live. Every snapshot of the thread
// is pushed as one JSON frame. A failed subscription ends with an error frame.
func (h *Handler) LiveThread(w http.ResponseWriter, r *http.Request) {
	self, ok := h.self(w, r)
	if !ok {
		return
	}
	key, sub, err := h.chat.OpenThread(r.Context(), self, chat.Participant(mux.Vars(r)["other"]))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer sub.Cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade error", "thread", key, "error", err)
		return
	}
	defer conn.Close()
	h.log.Debug("Live thread opened", "thread", key, "participant", self)

	// The client only ever sends close frames, reading is how we notice it left.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	timeline := projection.NewTimeline(self)
	for {
		select {
		case <-gone:
			h.log.Debug("Live thread closed by client", "thread", key, "participant", self)
			return
		case snapshot, open := <-sub.Snapshots():
			if !open {
				h.closeLive(conn, sub.Err())
				return
			}
			if !timeline.Apply(snapshot) {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := conn.WriteJSON(toThreadResponse(snapshot.Thread, timeline)); err != nil {
				h.log.Debug("Live thread write failed", "thread", key, "error", err)
				return
			}
		}
	}
}

func (h *Handler) closeLive(conn *websocket.Conn, err error) {
	deadline := time.Now().Add(h.config.WriteTimeout)
	code, reason := websocket.CloseNormalClosure, ""
	if err != nil {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.WriteJSON(errorResponse{Error: err.Error()})
		code, reason = websocket.CloseInternalServerErr, "subscription failed"
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}
