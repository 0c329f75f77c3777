// Package inmemblob is an in-memory core.BlobStore for tests and dev runs.
package inmemblob

import (
	"context"
	"errors"
	"io"
	"io/ioutil"
	"sync"

	"github.com/trezcool/darasa/core"
)

var ErrNoObject = errors.New("object not found")

type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
}

var _ core.BlobStore = (*Store)(nil)

func New() *Store {
	return &Store{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (s *Store) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[path] = data
	s.types[path] = contentType
	s.mu.Unlock()
	return path, nil
}

func (s *Store) ResolveURL(ctx context.Context, ref string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[ref]; !ok {
		return "", ErrNoObject
	}
	return "mem://" + ref, nil
}

// Object returns an uploaded object's bytes, for test assertions.
func (s *Store) Object(ref string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[ref]
	return data, ok
}
