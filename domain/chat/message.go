package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message is an immutable direct message. CreatedAt is assigned by the store.
type Message struct {
	ID         uuid.UUID
	Thread     ThreadKey
	Text       string
	SenderID   Participant
	ReceiverID Participant
	CreatedAt  time.Time
}

// Snapshot is the complete ordered content of a thread at one point in time,
// newest message first.
type Snapshot struct {
	Thread   ThreadKey
	Sequence uint64
	Messages []Message
	TakenAt  time.Time
}

// Latest returns the newest message of the snapshot.
func (s Snapshot) Latest() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[0], true
}
