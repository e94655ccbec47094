package client

import (
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// subscription relays the snapshots pushed on a live thread connection.
type subscription struct {
	log  *slog.Logger
	conn *websocket.Conn

	state atomic.Int32
	errMu sync.Mutex
	err   error

	snapshots chan chat.Snapshot
	cancel    chan struct{}
	done      chan struct{}
	once      sync.Once
	received  int
}

func newSubscription(ctx context.Context, log *slog.Logger, conn *websocket.Conn) *subscription {
	s := &subscription{
		log:       log,
		conn:      conn,
		snapshots: make(chan chat.Snapshot),
		cancel:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	s.state.Store(int32(chat.StateSubscribing))
	go s.watch(ctx)
	go s.run(ctx)
	return s
}

func (s *subscription) Snapshots() <-chan chat.Snapshot { return s.snapshots }

func (s *subscription) State() chat.SubscriptionState {
	return chat.SubscriptionState(s.state.Load())
}

func (s *subscription) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Cancel closes the connection and waits for the reader to stop.
func (s *subscription) Cancel() {
	s.once.Do(func() { close(s.cancel) })
	<-s.done
}

// watch unblocks the reader when the subscription is stopped from our side.
func (s *subscription) watch(ctx context.Context) {
	select {
	case <-s.cancel:
	case <-ctx.Done():
	case <-s.done:
		return
	}
	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	_ = s.conn.Close()
}

func (s *subscription) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.snapshots)
	defer s.conn.Close()

	for {
		var frame threadFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if s.stopping(ctx) || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				s.finish()
				return
			}
			s.fail(fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err))
			return
		}
		if frame.Error != "" {
			s.fail(errors.FromHTTP(http.StatusServiceUnavailable, frame.Error))
			return
		}

		s.received++
		s.state.CompareAndSwap(int32(chat.StateSubscribing), int32(chat.StateActive))
		select {
		case s.snapshots <- frame.toSnapshot():
		case <-s.cancel:
			s.finish()
			return
		case <-ctx.Done():
			s.finish()
			return
		}
	}
}

func (s *subscription) stopping(ctx context.Context) bool {
	select {
	case <-s.cancel:
		return true
	default:
		return ctx.Err() != nil
	}
}

func (s *subscription) finish() {
	s.state.Store(int32(chat.StateCancelled))
	s.log.Debug("Live thread closed", "snapshots", s.received)
}

func (s *subscription) fail(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
	s.state.Store(int32(chat.StateFailed))
	s.log.Error("Live thread failed", "error", err)
}
