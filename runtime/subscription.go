package runtime

import (
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"chat-sync/observability"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type loadFunc func(ctx context.Context) ([]chat.Message, error)

// Subscription is a live query over one thread. Each change notification
// makes it reload the whole thread and hand a complete snapshot to the
// consumer. Notifications arriving while the consumer is busy are coalesced:
// the next snapshot reflects all of them.
type Subscription struct {
	id      string
	thread  chat.ThreadKey
	log     *slog.Logger
	metrics *observability.Metrics
	load    loadFunc
	release func()

	state atomic.Int32
	errMu sync.Mutex
	err   error

	changed   chan struct{}
	snapshots chan chat.Snapshot
	cancel    chan struct{}
	done      chan struct{}
	once      sync.Once
	sequence  uint64
}

func newSubscription(thread chat.ThreadKey, log *slog.Logger, metrics *observability.Metrics,
	load loadFunc) *Subscription {
	id := uuid.NewString()
	return &Subscription{
		id:        id,
		thread:    thread,
		log:       log.With("subscription_id", id, "thread", thread),
		metrics:   metrics,
		load:      load,
		release:   func() {},
		changed:   make(chan struct{}, 1),
		snapshots: make(chan chat.Snapshot),
		cancel:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (s *Subscription) ID() string { return s.id }

func (s *Subscription) Thread() chat.ThreadKey { return s.thread }

// Notify marks the thread as changed. It never blocks.
func (s *Subscription) Notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Snapshots is closed once the subscription reaches a terminal state.
func (s *Subscription) Snapshots() <-chan chat.Snapshot { return s.snapshots }

func (s *Subscription) State() chat.SubscriptionState {
	return chat.SubscriptionState(s.state.Load())
}

// Err is non-nil only in the failed state and wraps errors.ErrStoreUnavailable.
func (s *Subscription) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Cancel releases the subscription. Once it returns, no snapshot will be
// delivered anymore. Calling it again is a no-op.
func (s *Subscription) Cancel() {
	s.once.Do(func() { close(s.cancel) })
	<-s.done
}

// Done is closed when the subscription worker has exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) start(ctx context.Context, release func()) {
	s.release = release
	s.state.Store(int32(chat.StateSubscribing))
	s.metrics.ActiveSubscriptions.Inc()
	s.Notify()
	go s.run(ctx)
}

func (s *Subscription) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.snapshots)
	defer s.metrics.ActiveSubscriptions.Dec()
	defer s.release()

	for {
		select {
		case <-s.cancel:
			s.finish()
			return
		case <-ctx.Done():
			s.finish()
			return
		case <-s.changed:
		}

		messages, err := s.load(ctx)
		if err != nil {
			if s.stopping(ctx) {
				s.finish()
				return
			}
			s.fail(err)
			return
		}

		s.sequence++
		snapshot := chat.Snapshot{
			Thread:   s.thread,
			Sequence: s.sequence,
			Messages: messages,
			TakenAt:  time.Now().UTC(),
		}
		s.state.CompareAndSwap(int32(chat.StateSubscribing), int32(chat.StateActive))

		select {
		case s.snapshots <- snapshot:
			s.metrics.SnapshotsDelivered.Inc()
		case <-s.cancel:
			s.finish()
			return
		case <-ctx.Done():
			s.finish()
			return
		}
	}
}

func (s *Subscription) stopping(ctx context.Context) bool {
	select {
	case <-s.cancel:
		return true
	default:
		return ctx.Err() != nil
	}
}

func (s *Subscription) finish() {
	s.state.Store(int32(chat.StateCancelled))
	s.log.Debug("Subscription cancelled", "snapshots", s.sequence)
}

func (s *Subscription) fail(err error) {
	s.errMu.Lock()
	s.err = fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	s.errMu.Unlock()
	s.state.Store(int32(chat.StateFailed))
	s.metrics.SubscriptionFailures.Inc()
	s.log.Error("Subscription failed", "error", err)
}
