package runtime

import (
	"chat-sync/domain/chat"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingSink struct{ calls atomic.Int32 }

func (c *countingSink) Notify() { c.calls.Add(1) }

func TestWatchers_NotifyThread_Reaches_Only_That_Thread(t *testing.T) {
	req := require.New(t)
	watchers := NewWatchers()
	thread := chat.ThreadKey("bob_alice")
	first, second, elsewhere := &countingSink{}, &countingSink{}, &countingSink{}

	watchers.Watch(thread, "s2", second)
	watchers.Watch(thread, "s1", first)
	watchers.Watch("carol_alice", "s3", elsewhere)

	req.Equal([]string{"s1", "s2"}, watchers.NotifyThread(thread))
	req.EqualValues(1, first.calls.Load())
	req.EqualValues(1, second.calls.Load())
	req.EqualValues(0, elsewhere.calls.Load())
	req.Equal(2, watchers.Watching(thread))
	req.Equal(3, watchers.Count())

	req.Empty(watchers.NotifyThread("dave_alice"))
}

func TestWatchers_Unwatch(t *testing.T) {
	req := require.New(t)
	watchers := NewWatchers()
	thread := chat.ThreadKey("bob_alice")
	watchers.Watch(thread, "s1", &countingSink{})
	watchers.Watch(thread, "s2", &countingSink{})
	// watching twice does not count twice
	watchers.Watch(thread, "s2", &countingSink{})
	req.Equal(2, watchers.Count())

	watchers.Unwatch(thread, "s1")
	req.Equal([]string{"s2"}, watchers.NotifyThread(thread))

	watchers.Unwatch(thread, "s2")
	req.Equal(0, watchers.Watching(thread))
	req.NotContains(watchers.threads, thread)

	// unknown ids and threads are ignored
	watchers.Unwatch(thread, "s2")
	watchers.Unwatch("carol_alice", "s1")
	req.Equal(0, watchers.Count())
}
