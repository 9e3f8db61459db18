// Package memory implements an in-memory sink for tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jacoelho/proligent/internal/sink"
)

type object struct {
	info sink.Info
	data []byte
}

// Store implements sink.Sink backed by process memory.
type Store struct {
	mu   sync.RWMutex
	objs map[string]object
}

// New returns an empty in-memory sink.
func New() *Store { return &Store{objs: make(map[string]object)} }

func (s *Store) Driver() sink.Driver { return sink.DriverMemory }

// Put stores a new object; it fails with sink.ErrExists if key is taken.
func (s *Store) Put(_ context.Context, key string, r io.Reader, contentType string) (sink.Info, error) {
	if strings.TrimSpace(key) == "" {
		return sink.Info{}, fmt.Errorf("empty key")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return sink.Info{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objs[key]; exists {
		return sink.Info{}, fmt.Errorf("%s: %w", key, sink.ErrExists)
	}
	info := sink.Info{Key: key, Size: int64(len(b)), ContentType: contentType, LastModified: time.Now().UTC()}
	s.objs[key] = object{info: info, data: b}
	return info, nil
}

// Get returns a copy of the object content.
func (s *Store) Get(_ context.Context, key string) (sink.Info, io.ReadCloser, error) {
	s.mu.RLock()
	obj, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return sink.Info{}, nil, fmt.Errorf("%s: %w", key, sink.ErrNotFound)
	}
	return obj.info, io.NopCloser(bytes.NewReader(bytes.Clone(obj.data))), nil
}

// List returns the objects whose key starts with prefix, sorted by key.
func (s *Store) List(_ context.Context, prefix string) ([]sink.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var infos []sink.Info
	for k, obj := range s.objs {
		if strings.HasPrefix(k, prefix) {
			infos = append(infos, obj.info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}
