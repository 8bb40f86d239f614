package history

import (
	"sort"
	"sync"
)

// MemoryStore keeps run history in process memory. It is intended for
// tests and short-lived tools; nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	runs  map[string]*Record
	steps map[string][]*StepRecord
	order []string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:  make(map[string]*Record),
		steps: make(map[string][]*StepRecord),
	}
}

func (s *MemoryStore) CreateRun(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	if _, exists := s.runs[rec.RunID]; !exists {
		s.order = append(s.order, rec.RunID)
	}
	s.runs[rec.RunID] = &cp
	return nil
}

func (s *MemoryStore) UpdateRun(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.runs[rec.RunID]
	if !ok {
		return ErrRunNotFound
	}
	existing.Status = rec.Status
	existing.Steps = rec.Steps
	existing.Error = rec.Error
	existing.FinishedAt = rec.FinishedAt
	return nil
}

func (s *MemoryStore) GetRun(runID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) ListRuns(f Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0, len(s.runs))
	// Most recent first: walk insertion order backwards.
	for i := len(s.order) - 1; i >= 0; i-- {
		rec := s.runs[s.order[i]]
		if f.Workflow != "" && rec.Workflow != f.Workflow {
			continue
		}
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		cp := *rec
		out = append(out, &cp)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) AppendStep(step *StepRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *step
	s.steps[step.RunID] = append(s.steps[step.RunID], &cp)
	return nil
}

func (s *MemoryStore) ListSteps(runID string) ([]*StepRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.steps[runID]
	out := make([]*StepRecord, 0, len(stored))
	for _, step := range stored {
		cp := *step
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
