package service

import (
	"sync"
	"time"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
	"github.com/noah-isme/hostel-allocation-api/pkg/jobs"
)

// runState owns the allocation status and last result. Every write swaps in a whole new value.
type runState struct {
	mu     sync.RWMutex
	status models.AllocationStatus
	last   *models.AllocationResult
	handle *jobs.Handle
}

func newRunState() *runState {
	return &runState{status: models.AllocationStatus{CurrentStep: models.StepIdle}}
}

// tryStart flips the status to running unless a run is already active.
func (s *runState) tryStart(at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.IsRunning {
		return false
	}
	started := at
	s.status = models.AllocationStatus{
		IsRunning:   true,
		Progress:    models.ProgressStarted,
		CurrentStep: models.StepInitializing,
		StartTime:   &started,
	}
	s.handle = nil
	return true
}

func (s *runState) attach(h *jobs.Handle) {
	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()
}

func (s *runState) advance(progress int, step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = models.AllocationStatus{
		IsRunning:   true,
		Progress:    progress,
		CurrentStep: step,
		StartTime:   s.status.StartTime,
	}
}

func (s *runState) complete(result *models.AllocationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = result
	s.status = models.AllocationStatus{
		Progress:    models.ProgressDone,
		CurrentStep: models.StepCompleted,
		StartTime:   s.status.StartTime,
	}
}

// fail keeps the progress reached so far.
func (s *runState) fail(result *models.AllocationResult, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = result
	s.status = models.AllocationStatus{
		Progress:    s.status.Progress,
		CurrentStep: models.StepFailedPrefix + message,
		StartTime:   s.status.StartTime,
	}
}

func (s *runState) snapshot() models.AllocationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.status
	if out.StartTime != nil {
		t := *out.StartTime
		out.StartTime = &t
	}
	return out
}

func (s *runState) lastResult() *models.AllocationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *runState) current() *jobs.Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle
}
