// Package moderationtest provides in-memory stand-ins for the moderation
// store and scheduler.
package moderationtest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"exile-bot/internal/models"
)

// ErrStoreUnavailable is returned by a MemoryStore configured to fail writes.
var ErrStoreUnavailable = errors.New("store unavailable")

// MemoryStore is a SanctionStore kept in memory, for tests.
type MemoryStore struct {
	mu         sync.Mutex
	records    map[string]models.SanctionRecord
	FailPut    bool
	FailDelete map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:    make(map[string]models.SanctionRecord),
		FailDelete: make(map[string]bool),
	}
}

func (s *MemoryStore) IsSanctioned(_ context.Context, id string) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	return ok, rec.OldNickname
}

func (s *MemoryStore) Reason(_ context.Context, id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id].Reason
}

func (s *MemoryStore) ListAll(_ context.Context) []models.SanctionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SanctionRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) Put(_ context.Context, id, priorName, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPut {
		return ErrStoreUnavailable
	}
	s.records[id] = models.SanctionRecord{ID: id, OldNickname: priorName, Reason: reason}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDelete[id] {
		return ErrStoreUnavailable
	}
	delete(s.records, id)
	return nil
}

// ScheduledTask is a task held by a ManualScheduler.
type ScheduledTask struct {
	Name  string
	Delay time.Duration
	Fn    func()
}

// ManualScheduler holds tasks until RunAll is called.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []ScheduledTask
}

func (s *ManualScheduler) After(name string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, ScheduledTask{Name: name, Delay: d, Fn: fn})
}

func (s *ManualScheduler) Pending() []ScheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ScheduledTask(nil), s.tasks...)
}

// RunAll runs and clears every pending task, in the order scheduled.
func (s *ManualScheduler) RunAll() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, t := range tasks {
		t.Fn()
	}
}
