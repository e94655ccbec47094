package projection

import (
	"chat-sync/domain/chat"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTimeline_Apply_Sorts_Newest_First(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("alice")
	now := time.Now()

	// Given messages arriving out of order
	snapshot := chat.Snapshot{
		Thread:   "bob_alice",
		Sequence: 1,
		Messages: []chat.Message{
			{ID: uuid.New(), Text: "oldest", SenderID: "alice", CreatedAt: now},
			{ID: uuid.New(), Text: "newest", SenderID: "bob", CreatedAt: now.Add(2 * time.Second)},
			{ID: uuid.New(), Text: "middle", SenderID: "alice", CreatedAt: now.Add(time.Second)},
		},
	}

	req.True(timeline.Apply(snapshot))

	entries := timeline.Entries()
	req.Len(entries, 3)
	req.Equal("newest", entries[0].Text)
	req.Equal("middle", entries[1].Text)
	req.Equal("oldest", entries[2].Text)
	req.False(entries[0].Mine)
	req.True(entries[1].Mine)
}

func TestTimeline_Apply_Tie_Break_On_ID(t *testing.T) {
	req := require.New(t)
	at := time.Now()
	low := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	high := uuid.MustParse("ffffffff-0000-0000-0000-000000000001")

	first := NewTimeline("alice")
	first.Apply(chat.Snapshot{Sequence: 1, Messages: []chat.Message{{ID: low, CreatedAt: at}, {ID: high, CreatedAt: at}}})
	second := NewTimeline("alice")
	second.Apply(chat.Snapshot{Sequence: 1, Messages: []chat.Message{{ID: high, CreatedAt: at}, {ID: low, CreatedAt: at}}})

	req.Equal(first.Entries(), second.Entries())
	req.Equal(high, first.Entries()[0].ID)
}

func TestTimeline_Apply_Ignores_Stale_Snapshots(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("alice")

	req.True(timeline.Apply(chat.Snapshot{Sequence: 2, Messages: []chat.Message{{Text: "two"}, {Text: "one"}}}))
	req.False(timeline.Apply(chat.Snapshot{Sequence: 1, Messages: []chat.Message{{Text: "one"}}}))

	req.Equal(uint64(2), timeline.Sequence())
	req.Len(timeline.Entries(), 2)
}
