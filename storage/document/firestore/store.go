// Package firestoredb backs core.DocumentStore with the hosted Firestore
// database.
package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/trezcool/darasa/core"
)

type Store struct {
	client *firestore.Client
	logger core.Logger
}

var _ core.DocumentStore = (*Store)(nil)

func Open(ctx context.Context, projectID string, logger core.Logger, opts ...option.ClientOption) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}
	return &Store{client: client, logger: logger}, nil
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Get(ctx context.Context, col, id string) (core.Document, error) {
	ds, err := s.client.Collection(col).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return core.Document{}, core.ErrNoDocument
		}
		return core.Document{}, err
	}
	return core.Document{ID: ds.Ref.ID, Fields: ds.Data()}, nil
}

func (s *Store) Query(ctx context.Context, col string, filters ...core.Filter) ([]core.Document, error) {
	snaps, err := s.buildQuery(col, filters).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return convert(snaps), nil
}

// Subscribe opens a Firestore snapshot listener. Reconnection and offline
// behavior belong to the SDK; snapshots are delivered in the order the
// transport yields them. The returned Unsubscribe stops the listener; a
// snapshot already being dispatched may still reach fn, callers gate that.
func (s *Store) Subscribe(ctx context.Context, col string, fn core.SnapshotFunc, filters ...core.Filter) (core.Unsubscribe, error) {
	it := s.buildQuery(col, filters).Snapshots(ctx)

	go func() {
		for {
			qs, err := it.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					s.logger.Error("firestore listener stopped: "+col, err)
				}
				return
			}
			snaps, err := qs.Documents.GetAll()
			if err != nil {
				s.logger.Error("firestore snapshot read failed: "+col, err)
				continue
			}
			fn(convert(snaps))
		}
	}()

	return func() { it.Stop() }, nil
}

func (s *Store) Set(ctx context.Context, col, id string, fields map[string]interface{}) error {
	_, err := s.client.Collection(col).Doc(id).Set(ctx, fields)
	return err
}

func (s *Store) Update(ctx context.Context, col, id string, fields map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	_, err := s.client.Collection(col).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return core.ErrNoDocument
	}
	return err
}

func (s *Store) Add(ctx context.Context, col string, fields map[string]interface{}) (string, error) {
	ref, _, err := s.client.Collection(col).Add(ctx, fields)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *Store) buildQuery(col string, filters []core.Filter) firestore.Query {
	q := s.client.Collection(col).Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}
	return q
}

func convert(snaps []*firestore.DocumentSnapshot) []core.Document {
	docs := make([]core.Document, 0, len(snaps))
	for _, ds := range snaps {
		docs = append(docs, core.Document{ID: ds.Ref.ID, Fields: ds.Data()})
	}
	return docs
}
