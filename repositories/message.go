//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Append(ctx context.Context, message DiskMessage) (DiskMessage, error)
	List(ctx context.Context, thread string) ([]DiskMessage, error)
	ListAll(ctx context.Context) ([]DiskMessage, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
	mu            sync.Mutex
	clock         serverClock
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) *MessageRepository {
	return &MessageRepository{
		db:            db,
		log:           log,
		limitMessages: limitMessages,
		clock:         seededClock(db, log, messagePrefix, 2),
	}
}

// WithClock replaces the commit clock, mostly for tests.
func (m *MessageRepository) WithClock(now func() time.Time) *MessageRepository {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock.now = now
	return m
}

type DiskMessage struct {
	ID       uuid.UUID
	Thread   string
	Sender   string
	Receiver string
	Text     string
	At       time.Time
}

const messagePrefix = "msg:"

// Append persists a message and returns it with its commit timestamp.
// The key is "msg:{thread}:{timestamp_padded}:{uuid}":
//  1. the 19-digit zero padding makes lexicographic order chronological,
//  2. the UUID keeps keys unique.
//
// The timestamp is taken under the repository lock, so the commit order of
// concurrent writers is the createdAt order readers observe.
func (m *MessageRepository) Append(ctx context.Context, message DiskMessage) (DiskMessage, error) {
	if err := ctx.Err(); err != nil {
		return DiskMessage{}, err
	}
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	message.At = m.clock.next()
	bytes, err := marshalMessage(message)
	if err != nil {
		return DiskMessage{}, err
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(message), bytes)
	})
	if err != nil {
		return DiskMessage{}, err
	}
	return message, nil
}

// List returns the messages of a thread, newest first.
// Thanks to the padded timestamp in the key, a reverse prefix scan is already
// ordered by createdAt. It stops once limitMessages is reached.
func (m *MessageRepository) List(ctx context.Context, thread string) ([]DiskMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := []byte(fmt.Sprintf("%s%s:", messagePrefix, thread))
	return m.scan(prefix, m.limitMessages)
}

// ListAll returns every stored message, grouped by thread, newest first
// inside each thread.
func (m *MessageRepository) ListAll(ctx context.Context) ([]DiskMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.scan([]byte(messagePrefix), nil)
}

func (m *MessageRepository) scan(prefix []byte, limit *int) ([]DiskMessage, error) {
	var messages []DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// 0xFF sorts after any digit: the reverse seek lands on the newest key
		seekKey := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit != nil && len(messages) == *limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *limit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				message, err := unmarshalMessage(value)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func messageKey(message DiskMessage) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s",
		messagePrefix,
		message.Thread,
		message.At.UnixNano(),
		message.ID,
	))
}

func marshalMessage(message DiskMessage) ([]byte, error) {
	return marshalDocument(map[string]any{
		"id":         message.ID.String(),
		"thread":     message.Thread,
		"text":       message.Text,
		"senderId":   message.Sender,
		"receiverId": message.Receiver,
		"createdAt":  formatTime(message.At),
	})
}

func unmarshalMessage(b []byte) (DiskMessage, error) {
	doc, err := unmarshalDocument(b)
	if err != nil {
		return DiskMessage{}, err
	}
	parsedID, err := uuid.Parse(stringField(doc, "id"))
	if err != nil {
		return DiskMessage{}, err
	}
	at, err := timeField(doc, "createdAt")
	if err != nil {
		return DiskMessage{}, err
	}
	return DiskMessage{
		ID:       parsedID,
		Thread:   stringField(doc, "thread"),
		Sender:   stringField(doc, "senderId"),
		Receiver: stringField(doc, "receiverId"),
		Text:     stringField(doc, "text"),
		At:       at,
	}, nil
}
