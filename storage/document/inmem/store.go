// Package inmemstore is an in-memory core.DocumentStore with live
// subscriptions, used by tests and the dev composition root.
package inmemstore

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
)

type (
	Store struct {
		mu          sync.RWMutex
		collections map[string]collection
		subs        map[int]*subscription
		nextSubID   int
	}

	collection map[string]map[string]interface{}

	subscription struct {
		collection string
		filters    []core.Filter
		fn         core.SnapshotFunc
	}
)

var _ core.DocumentStore = (*Store)(nil)

func New() *Store {
	return &Store{
		collections: make(map[string]collection),
		subs:        make(map[int]*subscription),
	}
}

func (s *Store) Get(ctx context.Context, col, id string) (core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if fields, ok := s.collections[col][id]; ok {
		return core.Document{ID: id, Fields: deepCopy(fields)}, nil
	}
	return core.Document{}, core.ErrNoDocument
}

func (s *Store) Query(ctx context.Context, col string, filters ...core.Filter) ([]core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query(col, filters), nil
}

// Subscribe delivers the current result set immediately, then again after
// every write that touches the collection.
func (s *Store) Subscribe(ctx context.Context, col string, fn core.SnapshotFunc, filters ...core.Filter) (core.Unsubscribe, error) {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = &subscription{collection: col, filters: filters, fn: fn}
	initial := s.query(col, filters)
	s.mu.Unlock()

	fn(initial)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}, nil
}

func (s *Store) Set(ctx context.Context, col, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	s.table(col)[id] = deepCopy(fields)
	s.mu.Unlock()

	s.notify(col)
	return nil
}

func (s *Store) Update(ctx context.Context, col, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	doc, ok := s.table(col)[id]
	if !ok {
		s.mu.Unlock()
		return core.ErrNoDocument
	}
	for path, value := range fields {
		setPath(doc, strings.Split(path, "."), value)
	}
	s.mu.Unlock()

	s.notify(col)
	return nil
}

func (s *Store) Add(ctx context.Context, col string, fields map[string]interface{}) (string, error) {
	id := uuid.New().String()
	s.mu.Lock()
	s.table(col)[id] = deepCopy(fields)
	s.mu.Unlock()

	s.notify(col)
	return id, nil
}

// unexported helpers

func (s *Store) table(col string) collection {
	if _, ok := s.collections[col]; !ok {
		s.collections[col] = make(collection)
	}
	return s.collections[col]
}

func (s *Store) query(col string, filters []core.Filter) []core.Document {
	docs := make([]core.Document, 0)
	for id, fields := range s.collections[col] {
		if matches(fields, filters) {
			docs = append(docs, core.Document{ID: id, Fields: deepCopy(fields)})
		}
	}
	return docs
}

func (s *Store) notify(col string) {
	s.mu.RLock()
	type delivery struct {
		fn   core.SnapshotFunc
		docs []core.Document
	}
	deliveries := make([]delivery, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.collection == col {
			deliveries = append(deliveries, delivery{sub.fn, s.query(col, sub.filters)})
		}
	}
	s.mu.RUnlock()

	for _, d := range deliveries {
		d.fn(d.docs)
	}
}

func matches(fields map[string]interface{}, filters []core.Filter) bool {
	for _, f := range filters {
		v, ok := fields[f.Field]
		if !ok || !equal(v, f.Value) {
			return false
		}
	}
	return true
}

func equal(a, b interface{}) bool {
	// numeric filter values may not match the stored width exactly
	na, aNum := toInt64(a)
	nb, bNum := toInt64(b)
	if aNum && bNum {
		return na == nb
	}
	return reflect.DeepEqual(a, b)
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func setPath(doc map[string]interface{}, path []string, value interface{}) {
	for len(path) > 1 {
		next, ok := doc[path[0]].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			doc[path[0]] = next
		}
		doc = next
		path = path[1:]
	}
	doc[path[0]] = value
}

func deepCopy(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch t := v.(type) {
		case map[string]interface{}:
			out[k] = deepCopy(t)
		case []interface{}:
			cp := make([]interface{}, len(t))
			for i, e := range t {
				if m, ok := e.(map[string]interface{}); ok {
					cp[i] = deepCopy(m)
				} else {
					cp[i] = e
				}
			}
			out[k] = cp
		case []string:
			cp := make([]string, len(t))
			copy(cp, t)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}
