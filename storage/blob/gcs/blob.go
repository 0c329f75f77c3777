// Package gcsblob backs core.BlobStore with the hosted storage bucket.
package gcsblob

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/trezcool/darasa/core"
)

type Store struct {
	client *storage.Client
	bucket string
}

var _ core.BlobStore = (*Store)(nil)

func Open(ctx context.Context, bucket string, opts ...option.ClientOption) (*Store, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Store{client: client, bucket: bucket}, nil
}

func (s *Store) Close() error { return s.client.Close() }

// Upload writes the object and returns its path as the ref. The write is
// not retried; a transient failure surfaces to the caller with nothing kept.
func (s *Store) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	w := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// ResolveURL returns a durable retrieval URL for an uploaded object.
func (s *Store) ResolveURL(ctx context.Context, ref string) (string, error) {
	attrs, err := s.client.Bucket(s.bucket).Object(ref).Attrs(ctx)
	if err != nil {
		return "", err
	}
	return attrs.MediaLink, nil
}
