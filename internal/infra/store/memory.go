// File: internal/infra/store/memory.go
package store

import (
	"sync"
	"time"

	"scenario-ai-service/internal/domain"
	"scenario-ai-service/internal/domain/model"
	"scenario-ai-service/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.JobStore = (*MemoryJobStore)(nil)

// MemoryJobStore keeps job records in process memory. The outer RWMutex only
// guards the map; each record carries its own mutex so updates on different
// ids never block each other while updates on the same id stay serialized.
// State does not survive a restart; the reaper bounds memory instead.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*entry
}

type entry struct {
	mu  sync.Mutex
	job model.Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]*entry)}
}

func (s *MemoryJobStore) Create(id string, job model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; ok {
		return domain.ErrAlreadyExists
	}
	s.jobs[id] = &entry{job: job}
	return nil
}

func (s *MemoryJobStore) Get(id string) (model.Job, bool) {
	s.mu.RLock()
	e, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return model.Job{}, false
	}
	e.mu.Lock()
	snapshot := e.job
	e.mu.Unlock()
	return snapshot, true
}

// Update applies mutate under the record lock. Field-level merging is the
// caller's contract: mutate receives the live record and changes only what
// it owns, so a failure write cannot wipe tokens or timestamps.
func (s *MemoryJobStore) Update(id string, mutate func(*model.Job)) bool {
	s.mu.RLock()
	e, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	mutate(&e.job)
	e.mu.Unlock()
	return true
}

func (s *MemoryJobStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return false
	}
	delete(s.jobs, id)
	return true
}

func (s *MemoryJobStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

func (s *MemoryJobStore) PurgeOlderThan(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.jobs {
		e.mu.Lock()
		createdAt := e.job.CreatedAt
		e.mu.Unlock()
		if createdAt.Before(cutoff) {
			delete(s.jobs, id)
			n++
		}
	}
	return n
}
