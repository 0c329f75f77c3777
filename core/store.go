package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNoDocument is returned by DocumentStore.Get for a missing record.
var ErrNoDocument = errors.New("document not found")

type (
	// Filter is an equality constraint on a document field.
	Filter struct {
		Field string
		Value interface{}
	}

	// Document is one remote record as delivered by the store.
	// Fields are the raw field bag; each domain package decodes it into its
	// own record type at this boundary.
	Document struct {
		ID     string
		Fields map[string]interface{}
	}

	// SnapshotFunc receives the full current result set on every change.
	// The initial load counts as a change. No ordering is guaranteed.
	SnapshotFunc func(docs []Document)

	// Unsubscribe tears down a live query. Implementations must not deliver
	// further snapshots once it returns.
	Unsubscribe func()

	// DocumentStore is the hosted document database the client reads and
	// writes. All writes are last-write-wins; the store is the single source
	// of truth and the client only ever holds transient copies.
	DocumentStore interface {
		Get(ctx context.Context, collection, id string) (Document, error)
		Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
		Subscribe(ctx context.Context, collection string, fn SnapshotFunc, filters ...Filter) (Unsubscribe, error)
		Set(ctx context.Context, collection, id string, fields map[string]interface{}) error
		// Update mutates only the given fields; dotted keys address nested maps.
		Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
		Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error)
	}

	// BlobStore is the hosted binary store used for homework photos.
	BlobStore interface {
		Upload(ctx context.Context, path, contentType string, r io.Reader) (ref string, err error)
		ResolveURL(ctx context.Context, ref string) (string, error)
	}

	// AuthSession exposes the hosted auth provider's current signed-in state.
	AuthSession interface {
		// CurrentUID returns the signed-in user's identifier, or "" when
		// nobody is signed in.
		CurrentUID() string
	}

	// KeyValueStore is the persisted local preference store.
	KeyValueStore interface {
		Get(key string) (value string, ok bool, err error)
		Set(key, value string) error
	}
)

// DocTime normalizes the two timestamp shapes found on existing documents
// (server timestamp or client ISO string) to a time.Time.
func DocTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts, true
		}
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Field decoding helpers; missing or mistyped fields default to zero values
// instead of propagating untyped access.

func DocString(fields map[string]interface{}, key string) string {
	s, _ := fields[key].(string)
	return s
}

func DocBool(fields map[string]interface{}, key string) bool {
	b, _ := fields[key].(bool)
	return b
}

func DocInt(fields map[string]interface{}, key string) int {
	return IntValue(fields[key])
}

// IntValue coerces the numeric shapes stores deliver (int, int64, float64).
func IntValue(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func DocStringSlice(fields map[string]interface{}, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func DocMap(fields map[string]interface{}, key string) map[string]interface{} {
	m, _ := fields[key].(map[string]interface{})
	return m
}

func DocMapSlice(fields map[string]interface{}, key string) []map[string]interface{} {
	switch v := fields[key].(type) {
	case []map[string]interface{}:
		return v
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(v))
		for _, e := range v {
			if m, ok := e.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
