package testkit

import (
	"context"
	"sort"
	"sync"

	"gobandit/domain/core"
	"gobandit/domain/run"
	"gobandit/ports"
)

// InMemoryRunLedger implements RunLedger with in-memory storage
type InMemoryRunLedger struct {
	runs  map[core.RunID]*run.Result
	order []core.RunID
	mu    sync.RWMutex
}

func NewInMemoryRunLedger() *InMemoryRunLedger {
	return &InMemoryRunLedger{
		runs: make(map[core.RunID]*run.Result),
	}
}

func (s *InMemoryRunLedger) SaveRun(ctx context.Context, result *run.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[result.ID]; !exists {
		s.order = append(s.order, result.ID)
	}
	stored := *result
	s.runs[result.ID] = &stored
	return nil
}

func (s *InMemoryRunLedger) GetRun(ctx context.Context, id core.RunID) (*run.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return nil, core.ErrRunNotFound
	}
	out := *r
	return &out, nil
}

// ListRuns returns runs newest first, using the same ordering as the Postgres adapter
func (s *InMemoryRunLedger) ListRuns(ctx context.Context, filters ports.RunFilters) ([]*run.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*run.Result
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.runs[s.order[i]]
		if filters.Sequence != "" && r.Sequence != filters.Sequence {
			continue
		}
		out := *r
		matched = append(matched, &out)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	limit, offset := filters.Page()
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
