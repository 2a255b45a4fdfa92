// Package memory is an in-process short link store for tests and local
// development. Records can be seeded from a JSON file.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"sync"

	"github.com/sundayezeilo/georedirect/internal/errx"
	"github.com/sundayezeilo/georedirect/internal/redirect"
)

type Store struct {
	mu      sync.RWMutex
	records map[string]redirect.Record
}

// New returns a store holding a copy of records.
func New(records ...redirect.Record) *Store {
	s := &Store{records: make(map[string]redirect.Record, len(records))}
	for _, r := range records {
		s.Put(r)
	}
	return s
}

// Load reads a JSON array of {"short_id": ..., "destinations": {...}}
// objects from path.
func Load(path string) (*Store, error) {
	const op = "memory.Load"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errx.E(op, errx.Unavailable, err)
	}

	var records []redirect.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errx.E(op, errx.Integrity, fmt.Errorf("decode %s: %w", path, err))
	}
	for i, r := range records {
		if r.ShortID == "" {
			return nil, errx.E(op, errx.Integrity, fmt.Errorf("record %d has no short_id", i))
		}
	}

	return New(records...), nil
}

// Put stores a copy of rec, replacing any record with the same short id.
func (s *Store) Put(rec redirect.Record) {
	rec.Destinations = maps.Clone(rec.Destinations)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ShortID] = rec
}

func (s *Store) Get(ctx context.Context, shortID string) (redirect.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return redirect.Record{}, false, errx.FromContext("memory.Get", errx.Unavailable, err)
	}

	s.mu.RLock()
	rec, ok := s.records[shortID]
	s.mu.RUnlock()
	if !ok {
		return redirect.Record{}, false, nil
	}

	rec.Destinations = maps.Clone(rec.Destinations)
	return rec, true, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
