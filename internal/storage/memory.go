package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory. Used by tests and by the CLI
// when no store is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*PlanRecord
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*PlanRecord),
	}
}

// Save stores a copy of the record, replacing any record with the same id.
func (s *MemoryStore) Save(_ context.Context, record *PlanRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.PlanID] = copyRecord(record)
	return nil
}

// Get returns a copy of the record stored under planID.
func (s *MemoryStore) Get(_ context.Context, planID string) (*PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[planID]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrNotFound)
	}
	return copyRecord(record), nil
}

// ListByRepo returns the newest records for repo first.
func (s *MemoryStore) ListByRepo(_ context.Context, repo string, limit int) ([]*PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*PlanRecord
	for _, r := range s.records {
		if r.RepoName == repo {
			out = append(out, copyRecord(r))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].PlanID > out[j].PlanID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

func copyRecord(r *PlanRecord) *PlanRecord {
	c := *r
	c.ChangeSummary = append([]string(nil), r.ChangeSummary...)
	return &c
}
