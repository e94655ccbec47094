package client

import (
	"chat-sync/domain/chat"
	"chat-sync/projection"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/gookit/color"
)

// Transcript prints a thread as it grows, oldest line first. The timeline
// decides ordering and ownership, the transcript only remembers what it
// already printed.
type Transcript struct {
	out      io.Writer
	timeline *projection.Timeline
	printed  map[uuid.UUID]struct{}
}

func NewTranscript(out io.Writer, self chat.Participant) *Transcript {
	return &Transcript{
		out:      out,
		timeline: projection.NewTimeline(self),
		printed:  make(map[uuid.UUID]struct{}),
	}
}

// Apply feeds a snapshot to the timeline and prints the messages not shown
// yet. It returns how many lines were written.
func (t *Transcript) Apply(snapshot chat.Snapshot) int {
	if !t.timeline.Apply(snapshot) {
		return 0
	}
	entries := t.timeline.Entries()
	written := 0
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if _, ok := t.printed[e.ID]; ok {
			continue
		}
		t.printed[e.ID] = struct{}{}
		_, _ = fmt.Fprintln(t.out, formatEntry(e))
		written++
	}
	return written
}

func (t *Transcript) Timeline() *projection.Timeline { return t.timeline }

func formatEntry(e projection.Entry) string {
	stamp := e.CreatedAt.Local().Format("15:04:05")
	if e.Mine {
		return fmt.Sprintf("%s %s %s", stamp, color.Green.Sprint("me"), e.Text)
	}
	return fmt.Sprintf("%s %s %s", stamp, color.Cyan.Sprint(string(e.SenderID)), e.Text)
}
