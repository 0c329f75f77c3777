package realtime

import (
	"context"
	"sort"
	"sync"

	"github.com/trezcool/darasa/core"
)

const createdAtField = "createdAt"

// Handler receives the full, newest-first result set on every change.
type Handler func(docs []core.Document)

// Subscription owns one live query. Ownership is tied to the consuming
// scope's lifetime: whoever opens it must Close it when the scope ends,
// otherwise the connection leaks and keeps delivering to a detached view.
type Subscription struct {
	mu     sync.Mutex
	closed bool
	stop   core.Unsubscribe
}

// Watch opens a live query against collection, filtered by the given
// equality filters, and invokes handler with every snapshot (the initial
// load included). No handler runs after Close returns. The handler must not
// call Close itself; close from the owning scope.
func Watch(ctx context.Context, store core.DocumentStore, collection string, handler Handler, filters ...core.Filter) (*Subscription, error) {
	sub := &Subscription{}
	stop, err := store.Subscribe(ctx, collection, func(docs []core.Document) {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		if sub.closed {
			return
		}
		SortNewestFirst(docs)
		handler(docs)
	}, filters...)
	if err != nil {
		return nil, err
	}
	sub.mu.Lock()
	sub.stop = stop
	sub.mu.Unlock()
	return sub, nil
}

// Close tears the subscription down. Idempotent.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	stop := s.stop
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// SortNewestFirst orders docs by creation time descending. Both timestamp
// shapes (server timestamp, client ISO string) are normalized to
// milliseconds before comparing; creation-time ties break on document ID so
// the rendered order is identical for any delivery order of the same set.
func SortNewestFirst(docs []core.Document) {
	millis := func(d core.Document) int64 {
		t, ok := core.DocTime(d.Fields[createdAtField])
		if !ok {
			return 0
		}
		return t.UnixNano() / int64(1e6)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		mi, mj := millis(docs[i]), millis(docs[j])
		if mi != mj {
			return mi > mj
		}
		return docs[i].ID < docs[j].ID
	})
}
