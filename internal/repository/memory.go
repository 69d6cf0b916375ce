package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
)

type memoryRecord struct {
	mu sync.Mutex
	c  entity.Comparison
}

// memoryStore keeps comparisons in process memory. Contents are lost on restart.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
}

func NewMemoryStore() ComparisonStore {
	return &memoryStore{records: make(map[string]*memoryRecord)}
}

func (s *memoryStore) Put(_ context.Context, c entity.Comparison) error {
	if c.ID == "" {
		return common.InvalidInputf("comparison id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[c.ID]; ok {
		return common.NewAppError(common.CodeInvalidInput, "comparison "+c.ID+" already exists", common.ErrConflict)
	}
	s.records[c.ID] = &memoryRecord{c: c.Clone()}
	return nil
}

func (s *memoryStore) lookup(id string) (*memoryRecord, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, common.NotFoundf("comparison %s not found", id)
	}
	return rec, nil
}

func (s *memoryStore) Get(_ context.Context, id string) (entity.Comparison, error) {
	rec, err := s.lookup(id)
	if err != nil {
		return entity.Comparison{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.c.Clone(), nil
}

func (s *memoryStore) Update(_ context.Context, id string, fn func(*entity.Comparison) error) (entity.Comparison, error) {
	rec, err := s.lookup(id)
	if err != nil {
		return entity.Comparison{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	next := rec.c.Clone()
	if err := fn(&next); err != nil {
		return entity.Comparison{}, err
	}
	next.ID = id
	rec.c = next
	return next.Clone(), nil
}

func (s *memoryStore) List(_ context.Context) ([]entity.Comparison, error) {
	s.mu.RLock()
	recs := make([]*memoryRecord, 0, len(s.records))
	for _, r := range s.records {
		recs = append(recs, r)
	}
	s.mu.RUnlock()

	out := make([]entity.Comparison, 0, len(recs))
	for _, r := range recs {
		r.mu.Lock()
		out = append(out, r.c.Clone())
		r.mu.Unlock()
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *memoryStore) Ping(context.Context) error { return nil }

func (s *memoryStore) Close() error { return nil }

func sortNewestFirst(cs []entity.Comparison) {
	slices.SortStableFunc(cs, func(a, b entity.Comparison) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
