package jobs

import (
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/scenelingo/scenelingo-backend/internal/pkg/errors"
	"github.com/scenelingo/scenelingo-backend/internal/types"
)

// JobStore holds the current GenerationJob value per job id. One writer
// (the orchestrator's background run) and many concurrent pollers; records
// are replaced wholesale so a reader never observes a torn update.
type JobStore interface {
	Put(job types.GenerationJob)
	Get(id uuid.UUID) (types.GenerationJob, error)
	Update(job types.GenerationJob) error
}

type memoryJobStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]types.GenerationJob
}

func NewMemoryJobStore() JobStore {
	return &memoryJobStore{jobs: map[uuid.UUID]types.GenerationJob{}}
}

func (s *memoryJobStore) Put(job types.GenerationJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *memoryJobStore) Get(id uuid.UUID) (types.GenerationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return types.GenerationJob{}, apperrors.ErrNotFound
	}
	return job, nil
}

func (s *memoryJobStore) Update(job types.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return apperrors.ErrNotFound
	}
	s.jobs[job.ID] = job
	return nil
}
