// Package projection builds the local view of a thread from snapshots.
// Handles ordering and ownership of messages.
// Does not talk to the store or to the UI directly.
package projection

import (
	"chat-sync/domain/chat"
	"sort"
	"sync"
)

// Entry is a message as displayed on the thread screen.
type Entry struct {
	chat.Message
	Mine bool
}

// Timeline holds the latest known content of one thread, newest first.
type Timeline struct {
	mu       sync.RWMutex
	Owner    chat.Participant
	sequence uint64
	entries  []Entry
}

func NewTimeline(owner chat.Participant) *Timeline {
	return &Timeline{Owner: owner}
}

// Apply replaces the view with the snapshot content. Snapshots older than the
// last applied one are ignored. Arrival order inside a snapshot is never
// trusted: entries are sorted by createdAt descending, ties broken on id.
func (t *Timeline) Apply(snapshot chat.Snapshot) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if snapshot.Sequence != 0 && snapshot.Sequence <= t.sequence {
		return false
	}
	entries := make([]Entry, 0, len(snapshot.Messages))
	for _, m := range snapshot.Messages {
		entries = append(entries, Entry{Message: m, Mine: m.SenderID == t.Owner})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() > b.ID.String()
	})
	t.entries = entries
	t.sequence = snapshot.Sequence
	return true
}

func (t *Timeline) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Entry(nil), t.entries...)
}

func (t *Timeline) Sequence() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sequence
}
