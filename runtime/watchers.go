package runtime

import (
	"chat-sync/contract"
	"chat-sync/domain/chat"
	"sort"
	"sync"
)

// Watchers indexes the live subscriptions by thread. A subscription watches
// exactly one thread for its whole life.
type Watchers struct {
	mu      sync.RWMutex
	threads map[chat.ThreadKey]map[string]contract.ChangeSink
	total   int
}

func NewWatchers() *Watchers {
	return &Watchers{threads: make(map[chat.ThreadKey]map[string]contract.ChangeSink)}
}

func (w *Watchers) Watch(thread chat.ThreadKey, subscriptionID string, sink contract.ChangeSink) {
	w.mu.Lock()
	defer w.mu.Unlock()
	subs, ok := w.threads[thread]
	if !ok {
		subs = make(map[string]contract.ChangeSink)
		w.threads[thread] = subs
	}
	if _, known := subs[subscriptionID]; !known {
		w.total++
	}
	subs[subscriptionID] = sink
}

// Unwatch drops the subscription and forgets the thread once nobody watches it.
func (w *Watchers) Unwatch(thread chat.ThreadKey, subscriptionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	subs, ok := w.threads[thread]
	if !ok {
		return
	}
	if _, known := subs[subscriptionID]; !known {
		return
	}
	delete(subs, subscriptionID)
	w.total--
	if len(subs) == 0 {
		delete(w.threads, thread)
	}
}

// NotifyThread tells every subscription of the thread that it changed and
// returns their ids, sorted. Sinks must not block.
func (w *Watchers) NotifyThread(thread chat.ThreadKey) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	subs := w.threads[thread]
	ids := make([]string, 0, len(subs))
	for id, sink := range subs {
		sink.Notify()
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Watching returns how many subscriptions watch the thread.
func (w *Watchers) Watching(thread chat.ThreadKey) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.threads[thread])
}

// Count returns the number of live subscriptions over all threads.
func (w *Watchers) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.total
}
