// Package moderation applies and lifts exile sanctions. Each pipeline is an
// ordered list of best-effort platform steps around a single fatal
// persistence step; see Exile and Release.
package moderation

import (
	"context"

	"exile-bot/internal/config"
	"exile-bot/internal/models"
	"exile-bot/internal/platform"
)

// SanctionStore is the persistent record of exiled members.
type SanctionStore interface {
	IsSanctioned(ctx context.Context, id string) (bool, string)
	Reason(ctx context.Context, id string) string
	ListAll(ctx context.Context) []models.SanctionRecord
	Put(ctx context.Context, id, priorName, reason string) error
	Delete(ctx context.Context, id string) error
}

// Scope holds the guild handles a pipeline works with. They are resolved
// fresh for every event and never cached.
type Scope struct {
	GuildID string
	// Role is the exile role. Required.
	Role *platform.Role
	// RemoveRole is stripped on exile when configured.
	RemoveRole *platform.Role
	// Channel receives public exile notices.
	Channel *platform.Channel
}

type Moderator struct {
	session platform.Session
	exec    *Executor
	store   SanctionStore
	policy  *Policy
	cfg     config.Getter
	sched   Scheduler
}

func New(session platform.Session, store SanctionStore, cfg config.Getter, sched Scheduler) *Moderator {
	if sched == nil {
		sched = TimerScheduler{}
	}
	return &Moderator{
		session: session,
		exec:    NewExecutor(session),
		store:   store,
		policy:  NewPolicy(cfg),
		cfg:     cfg,
		sched:   sched,
	}
}

func (m *Moderator) Policy() *Policy {
	return m.policy
}

func (m *Moderator) Executor() *Executor {
	return m.exec
}

func (m *Moderator) Store() SanctionStore {
	return m.store
}

func (m *Moderator) Scheduler() Scheduler {
	return m.sched
}
