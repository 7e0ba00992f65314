package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
	"github.com/custodia-labs/remup-cli/internal/core/ports/driven"
)

// Ensure BuildStore implements the interface.
var _ driven.BuildStore = (*BuildStore)(nil)

// BuildStore is an in-memory implementation of driven.BuildStore for
// testing.
type BuildStore struct {
	mu      sync.RWMutex
	records map[string]driven.BuildRecord
}

// NewBuildStore creates a new in-memory build store.
func NewBuildStore() *BuildStore {
	return &BuildStore{records: map[string]driven.BuildRecord{}}
}

// Save stores or replaces the record for a source path.
func (s *BuildStore) Save(_ context.Context, rec *driven.BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.SourcePath] = *rec
	return nil
}

// GetBySource retrieves the latest record for a source path.
func (s *BuildStore) GetBySource(_ context.Context, sourcePath string) (*driven.BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[sourcePath]
	if !ok {
		return nil, fmt.Errorf("build for %s: %w", sourcePath, domain.ErrNotFound)
	}
	return &rec, nil
}

// List returns all records, most recent first.
func (s *BuildStore) List(_ context.Context) ([]driven.BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]driven.BuildRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CompiledAt.Equal(records[j].CompiledAt) {
			return records[i].SourcePath < records[j].SourcePath
		}
		return records[i].CompiledAt.After(records[j].CompiledAt)
	})
	return records, nil
}

// Clear removes all records.
func (s *BuildStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = map[string]driven.BuildRecord{}
	return nil
}

// Close releases nothing for the memory store.
func (s *BuildStore) Close() error {
	return nil
}
