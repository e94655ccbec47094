//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-sync/domain/chat"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// ChangeSink is told that a thread collection changed. It must not block.
type ChangeSink interface {
	Notify()
}

// IWatchers routes change notifications to the subscriptions of a thread.
type IWatchers interface {
	Watch(thread chat.ThreadKey, subscriptionID string, sink ChangeSink)
	Unwatch(thread chat.ThreadKey, subscriptionID string)
	NotifyThread(thread chat.ThreadKey) []string
	Watching(thread chat.ThreadKey) int
	Count() int
}

// ISubscription is a live query over one thread.
type ISubscription interface {
	Snapshots() <-chan chat.Snapshot
	State() chat.SubscriptionState
	Cancel()
	Err() error
}

type ISynchronizer interface {
	Subscribe(ctx context.Context, thread chat.ThreadKey) (ISubscription, error)
	Send(ctx context.Context, cmd chat.SendMessageCommand) (chat.Message, error)
	History(ctx context.Context, thread chat.ThreadKey) ([]chat.Message, error)
}
