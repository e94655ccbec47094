// Package runtime keeps live thread views in sync with the message store.
// It orchestrates subscriptions and appends without containing domain rules.
package runtime

import (
	"chat-sync/contract"
	"chat-sync/domain/chat"
	"chat-sync/errors"
	"chat-sync/observability"
	"chat-sync/repositories"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

// Limiter decides whether a sender may post now.
type Limiter interface {
	Allow(key string) bool
}

type Synchronizer struct {
	log              *slog.Logger
	watchers         contract.IWatchers
	repository       repositories.IMessageRepository
	metrics          *observability.Metrics
	limiter          Limiter
	maxContentLength int
}

func NewSynchronizer(log *slog.Logger, watchers contract.IWatchers,
	repository repositories.IMessageRepository, metrics *observability.Metrics,
	limiter Limiter, maxContentLength int) *Synchronizer {
	return &Synchronizer{
		log:              log,
		watchers:         watchers,
		repository:       repository,
		metrics:          metrics,
		limiter:          limiter,
		maxContentLength: maxContentLength,
	}
}

// Subscribe opens a live query on a thread. The subscription is registered
// before the first read so that no append can slip between the initial
// snapshot and the change notifications.
func (s *Synchronizer) Subscribe(ctx context.Context, thread chat.ThreadKey) (contract.ISubscription, error) {
	return s.subscribe(ctx, thread)
}

func (s *Synchronizer) subscribe(ctx context.Context, thread chat.ThreadKey) (*Subscription, error) {
	if err := thread.Validate(); err != nil {
		return nil, err
	}
	sub := newSubscription(thread, s.log, s.metrics, func(ctx context.Context) ([]chat.Message, error) {
		return s.list(ctx, thread)
	})
	s.watchers.Watch(thread, sub.ID(), sub)
	sub.start(ctx, func() { s.watchers.Unwatch(thread, sub.ID()) })
	s.log.Debug("Subscription opened", "subscription_id", sub.ID(), "thread", thread)
	return sub, nil
}

// Send appends a message with a store-assigned timestamp. Every live
// subscription of the thread, the sender's own included, is notified once
// the append is committed; nothing is inserted locally.
func (s *Synchronizer) Send(ctx context.Context, cmd chat.SendMessageCommand) (chat.Message, error) {
	if err := cmd.Validate(s.maxContentLength); err != nil {
		s.metrics.SendFailures.WithLabelValues(failureReason(err)).Inc()
		s.log.Debug("Message rejected", "thread", cmd.Thread, "sender", cmd.SenderID, "error", err)
		return chat.Message{}, err
	}
	if s.limiter != nil && !s.limiter.Allow(string(cmd.SenderID)) {
		s.metrics.SendFailures.WithLabelValues(failureReason(errors.ErrRateLimited)).Inc()
		s.log.Warn("Sender rate limited", "sender", cmd.SenderID)
		return chat.Message{}, errors.ErrRateLimited
	}

	stored, err := s.repository.Append(ctx, repositories.DiskMessage{
		Thread:   string(cmd.Thread),
		Sender:   string(cmd.SenderID),
		Receiver: string(cmd.ReceiverID),
		Text:     cmd.Text,
	})
	if err != nil {
		s.metrics.SendFailures.WithLabelValues(failureReason(errors.ErrStoreUnavailable)).Inc()
		s.log.Error("Failed to append message", "thread", cmd.Thread, "sender", cmd.SenderID, "error", err)
		return chat.Message{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	notified := s.watchers.NotifyThread(cmd.Thread)
	s.metrics.MessagesSent.Inc()
	s.log.Debug("Message appended", "thread", cmd.Thread, "message_id", stored.ID, "notified", notified)
	return toMessage(stored), nil
}

// History is a point read of the thread, newest first.
func (s *Synchronizer) History(ctx context.Context, thread chat.ThreadKey) ([]chat.Message, error) {
	if err := thread.Validate(); err != nil {
		return nil, err
	}
	messages, err := s.list(ctx, thread)
	if err != nil {
		s.log.Error("Failed to read thread", "thread", thread, "error", err)
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return messages, nil
}

func (s *Synchronizer) list(ctx context.Context, thread chat.ThreadKey) ([]chat.Message, error) {
	stored, err := s.repository.List(ctx, string(thread))
	if err != nil {
		return nil, err
	}
	return lo.Map(stored, func(item repositories.DiskMessage, _ int) chat.Message {
		return toMessage(item)
	}), nil
}

func toMessage(item repositories.DiskMessage) chat.Message {
	return chat.Message{
		ID:         item.ID,
		Thread:     chat.ThreadKey(item.Thread),
		Text:       item.Text,
		SenderID:   chat.Participant(item.Sender),
		ReceiverID: chat.Participant(item.Receiver),
		CreatedAt:  item.At,
	}
}

func failureReason(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrEmptyInput):
		return "empty_input"
	case stderrors.Is(err, errors.ErrInvalidParticipant):
		return "invalid_participant"
	case stderrors.Is(err, errors.ErrContentTooLong):
		return "too_long"
	case stderrors.Is(err, errors.ErrRateLimited):
		return "rate_limited"
	default:
		return "store_unavailable"
	}
}
