// Package memblob is an in-memory core.BlobStore.
package memblob

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core"
)

type entry struct {
	info core.BlobInfo
	data []byte
}

type Store struct {
	mu    sync.RWMutex
	blobs map[string]entry
}

var _ core.BlobStore = (*Store)(nil)

func New() *Store {
	return &Store{blobs: make(map[string]entry)}
}

func (s *Store) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "reading blob")
	}
	if err = ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.blobs[id] = entry{
		info: core.BlobInfo{
			ID:          id,
			Name:        name,
			ContentType: contentType,
			Size:        int64(len(data)),
			UploadedAt:  time.Now().UTC(),
		},
		data: data,
	}
	s.mu.Unlock()
	return id, nil
}

func (s *Store) Get(_ context.Context, id string) (*core.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.blobs[id]
	if !ok {
		return nil, core.ErrBlobNotFound
	}
	return &core.Blob{ReadCloser: io.NopCloser(bytes.NewReader(e.data)), BlobInfo: e.info}, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[id]; !ok {
		return core.ErrBlobNotFound
	}
	delete(s.blobs, id)
	return nil
}

// Len returns the number of stored blobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
