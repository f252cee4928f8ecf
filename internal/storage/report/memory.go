package report

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/core"
)

// MemoryStore is a bounded in-memory store. Once full, saving evicts the
// oldest report.
type MemoryStore struct {
	mu      sync.RWMutex
	reports []*analysis.Report
	byID    map[string]*analysis.Report
	maxSize int
}

// NewMemoryStore creates a store holding at most maxSize reports.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize < 1 {
		maxSize = 1
	}
	return &MemoryStore{
		reports: make([]*analysis.Report, 0, maxSize),
		byID:    make(map[string]*analysis.Report, maxSize),
		maxSize: maxSize,
	}
}

func (m *MemoryStore) Save(ctx context.Context, r *analysis.Report) (string, error) {
	if r == nil {
		return "", core.Invalidf("nil report")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, dup := m.byID[r.ID]; dup {
		return "", core.Invalidf("report %s already stored", r.ID)
	}

	m.reports = append(m.reports, r)
	m.byID[r.ID] = r

	if over := len(m.reports) - m.maxSize; over > 0 {
		for _, old := range m.reports[:over] {
			delete(m.byID, old.ID)
		}
		m.reports = append(m.reports[:0:0], m.reports[over:]...)
	}
	return r.ID, nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*analysis.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byID[id]
	if !ok {
		return nil, core.WrapError(core.ErrNotFound, fmt.Errorf("report %q", id))
	}
	return r, nil
}

func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]*analysis.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []*analysis.Report{}
	skipped := 0
	for i := len(m.reports) - 1; i >= 0; i-- {
		r := m.reports[i]
		if !matches(r, filter) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		result = append(result, r)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

func (m *MemoryStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, r := range m.reports {
		if matches(r, filter) {
			count++
		}
	}
	return count, nil
}

// Len returns the number of stored reports.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports)
}

func matches(r *analysis.Report, filter ListFilter) bool {
	if filter.Symbol != "" && r.Symbol != filter.Symbol {
		return false
	}
	if filter.Verdict != "" && r.Verdict.Verdict != filter.Verdict {
		return false
	}
	if !filter.From.IsZero() && r.GeneratedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && r.GeneratedAt.After(filter.To) {
		return false
	}
	return true
}
