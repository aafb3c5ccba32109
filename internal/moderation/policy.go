package moderation

import (
	"slices"

	"exile-bot/internal/config"
)

// ExileDecision is what an exile command does for one actor/target pair.
type ExileDecision int

const (
	// ExileIgnore drops the request silently.
	ExileIgnore ExileDecision = iota
	// ExileTarget exiles the requested target.
	ExileTarget
	// ExileDrunkTank exiles the actor instead and releases them later.
	ExileDrunkTank
)

func (d ExileDecision) String() string {
	switch d {
	case ExileTarget:
		return "target"
	case ExileDrunkTank:
		return "drunk_tank"
	default:
		return "ignore"
	}
}

// Policy decides who may do what. The enforcer list is read from the live
// configuration on every call.
type Policy struct {
	cfg config.Getter
}

func NewPolicy(cfg config.Getter) *Policy {
	return &Policy{cfg: cfg}
}

func (p *Policy) IsPrivileged(id string) bool {
	return slices.Contains(p.cfg().Exile.Enforcers, id)
}

// DecideExile applies the exile rules:
//   - enforcers never exile each other
//   - anyone who tries to exile an enforcer goes to the drunk tank
//   - non-enforcers may exile other non-enforcers only when open_exile is set
func (p *Policy) DecideExile(actorID, targetID string) ExileDecision {
	actorPrivileged := p.IsPrivileged(actorID)
	targetPrivileged := p.IsPrivileged(targetID)

	switch {
	case actorPrivileged && targetPrivileged:
		return ExileIgnore
	case actorPrivileged:
		return ExileTarget
	case targetPrivileged:
		return ExileDrunkTank
	case p.cfg().Exile.OpenExile:
		return ExileTarget
	default:
		return ExileIgnore
	}
}

func (p *Policy) CanRelease(actorID string) bool {
	return p.IsPrivileged(actorID)
}

func (p *Policy) CanRename(actorID string) bool {
	return p.IsPrivileged(actorID)
}

// CanQueryReason is always true: anyone may read their own warrant.
func (p *Policy) CanQueryReason(string) bool {
	return true
}
