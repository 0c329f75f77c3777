package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
)

// storeStub captures the subscription so tests can deliver snapshots by hand.
type storeStub struct {
	fn           core.SnapshotFunc
	unsubscribed bool
}

var _ core.DocumentStore = (*storeStub)(nil)

func (s *storeStub) Get(context.Context, string, string) (core.Document, error) {
	return core.Document{}, core.ErrNoDocument
}
func (s *storeStub) Query(context.Context, string, ...core.Filter) ([]core.Document, error) {
	return nil, nil
}
func (s *storeStub) Set(context.Context, string, string, map[string]interface{}) error    { return nil }
func (s *storeStub) Update(context.Context, string, string, map[string]interface{}) error { return nil }
func (s *storeStub) Add(context.Context, string, map[string]interface{}) (string, error) {
	return "", nil
}
func (s *storeStub) Subscribe(ctx context.Context, col string, fn core.SnapshotFunc, filters ...core.Filter) (core.Unsubscribe, error) {
	s.fn = fn
	return func() { s.unsubscribed = true }, nil
}

func doc(id string, createdAt interface{}) core.Document {
	return core.Document{ID: id, Fields: map[string]interface{}{"createdAt": createdAt}}
}

func ids(docs []core.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestSortNewestFirst(t *testing.T) {
	t0 := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)
	t2 := t0.Add(2 * time.Minute)

	t.Run("newest first, both timestamp shapes", func(t *testing.T) {
		docs := []core.Document{
			doc("a", t0),
			doc("b", t2.Format(time.RFC3339)), // legacy client ISO string
			doc("c", t1),
		}
		SortNewestFirst(docs)
		assert.Equal(t, []string{"b", "c", "a"}, ids(docs))
	})

	t.Run("identical for any delivery order of the same set", func(t *testing.T) {
		first := []core.Document{doc("a", t1), doc("b", t1), doc("c", t0)}
		second := []core.Document{doc("c", t0), doc("b", t1), doc("a", t1)}
		SortNewestFirst(first)
		SortNewestFirst(second)
		assert.Equal(t, ids(first), ids(second))
	})

	t.Run("missing timestamps sort last", func(t *testing.T) {
		docs := []core.Document{
			{ID: "x", Fields: map[string]interface{}{}},
			doc("y", t0),
		}
		SortNewestFirst(docs)
		assert.Equal(t, []string{"y", "x"}, ids(docs))
	})
}

func TestSubscription_Close(t *testing.T) {
	store := &storeStub{}

	var delivered [][]core.Document
	sub, err := Watch(context.Background(), store, "doubts", func(docs []core.Document) {
		delivered = append(delivered, docs)
	})
	require.NoError(t, err)
	require.NotNil(t, store.fn)

	store.fn([]core.Document{doc("a", time.Now().UTC())})
	assert.Len(t, delivered, 1)

	sub.Close()
	assert.True(t, store.unsubscribed)

	// a snapshot delivered after teardown must not reach the handler
	store.fn([]core.Document{doc("b", time.Now().UTC())})
	assert.Len(t, delivered, 1)

	// idempotent
	sub.Close()
}

func TestWatch_sortsSnapshots(t *testing.T) {
	store := &storeStub{}
	t0 := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	var got []string
	_, err := Watch(context.Background(), store, "doubts", func(docs []core.Document) {
		got = ids(docs)
	})
	require.NoError(t, err)

	store.fn([]core.Document{doc("old", t0), doc("new", t0.Add(time.Hour))})
	assert.Equal(t, []string{"new", "old"}, got)
}
