package repositories

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Append_Multiple_Message_Newest_First(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewMessageRepository(openDB(t), slog.Default(), nil)
	thread := "bob_alice"

	var stored []DiskMessage
	for _, m := range []DiskMessage{
		{Thread: thread, Sender: "alice", Receiver: "bob", Text: "hi bob"},
		{Thread: thread, Sender: "bob", Receiver: "alice", Text: "hi alice"},
		{Thread: thread, Sender: "alice", Receiver: "bob", Text: "how are you?"},
	} {
		s, err := repository.Append(ctx, m)
		req.NoError(err)
		req.NotZero(s.ID)
		req.False(s.At.IsZero())
		stored = append(stored, s)
	}

	fetched, err := repository.List(ctx, thread)
	req.NoError(err)
	req.Len(fetched, 3)
	req.Equal([]string{"how are you?", "hi alice", "hi bob"},
		lo.Map(fetched, func(m DiskMessage, _ int) string { return m.Text }))
	req.Equal(stored[2].ID, fetched[0].ID)
	req.True(stored[2].At.Equal(fetched[0].At))
	req.Equal("alice", fetched[0].Sender)
	req.Equal("bob", fetched[0].Receiver)
}

func Test_Append_Assigns_Server_Timestamp(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	frozen := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repository := NewMessageRepository(openDB(t), slog.Default(), nil).
		WithClock(func() time.Time { return frozen })

	// a client timestamp is ignored
	first, err := repository.Append(ctx, DiskMessage{Thread: "b_a", Sender: "a", Receiver: "b", Text: "1",
		At: frozen.Add(time.Hour)})
	req.NoError(err)
	second, err := repository.Append(ctx, DiskMessage{Thread: "b_a", Sender: "b", Receiver: "a", Text: "2"})
	req.NoError(err)

	req.True(first.At.Equal(frozen))
	req.True(second.At.After(first.At), "timestamps must stay strictly increasing when the clock stalls")
}

// A restart with a clock running behind keeps createdAt increasing across
// every thread already stored.
func Test_Reopened_Repository_Continues_After_Stored_Messages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openDB(t)
	ahead := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)
	before := NewMessageRepository(db, slog.Default(), nil).WithClock(func() time.Time { return ahead })
	_, err := before.Append(ctx, DiskMessage{Thread: "b_a", Sender: "a", Receiver: "b", Text: "old"})
	req.NoError(err)
	newest, err := before.Append(ctx, DiskMessage{Thread: "d_c", Sender: "c", Receiver: "d", Text: "other thread"})
	req.NoError(err)

	behind := ahead.Add(-time.Hour)
	after := NewMessageRepository(db, slog.Default(), nil).WithClock(func() time.Time { return behind })
	fresh, err := after.Append(ctx, DiskMessage{Thread: "b_a", Sender: "b", Receiver: "a", Text: "new"})
	req.NoError(err)
	req.True(fresh.At.After(newest.At))

	fetched, err := after.List(ctx, "b_a")
	req.NoError(err)
	req.Equal([]string{"new", "old"}, lo.Map(fetched, func(m DiskMessage, _ int) string { return m.Text }))
}

func Test_Append_Concurrent_Writers_Are_Totally_Ordered(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewMessageRepository(openDB(t), slog.Default(), nil)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender, receiver := "a", "b"
			if i%2 == 0 {
				sender, receiver = receiver, sender
			}
			_, err := repository.Append(ctx, DiskMessage{Thread: "b_a", Sender: sender, Receiver: receiver, Text: "x"})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	fetched, err := repository.List(ctx, "b_a")
	req.NoError(err)
	req.Len(fetched, 20)
	for i := 1; i < len(fetched); i++ {
		req.True(fetched[i-1].At.After(fetched[i].At))
	}
}

func Test_List_Isolates_Threads_And_Limits(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	limit := 2
	repository := NewMessageRepository(openDB(t), slog.Default(), &limit)

	for _, text := range []string{"1", "2", "3"} {
		_, err := repository.Append(ctx, DiskMessage{Thread: "bob_alice", Sender: "alice", Receiver: "bob", Text: text})
		req.NoError(err)
	}
	_, err := repository.Append(ctx, DiskMessage{Thread: "bob_alice2", Sender: "bob", Receiver: "alice2", Text: "other"})
	req.NoError(err)

	fetched, err := repository.List(ctx, "bob_alice")
	req.NoError(err)
	req.Len(fetched, limit)
	req.Equal("3", fetched[0].Text)
	req.Equal("2", fetched[1].Text)

	empty, err := repository.List(ctx, "carol_alice")
	req.NoError(err)
	req.Empty(empty)

	all, err := repository.ListAll(ctx)
	req.NoError(err)
	req.Len(all, 4)
}

func Test_Append_Fails_On_Closed_Store(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	repository := NewMessageRepository(db, slog.Default(), nil)
	req.NoError(db.Close())

	_, err = repository.Append(context.Background(), DiskMessage{Thread: "b_a", Sender: "a", Receiver: "b", Text: "x"})
	req.Error(err)
}
