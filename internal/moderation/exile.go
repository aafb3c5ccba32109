package moderation

import (
	"context"

	"exile-bot/internal/logger"
	"exile-bot/internal/platform"
)

type ExileRequest struct {
	// Actor names who asked, for the log.
	Actor  string
	Target *platform.Member
	// Reason is stored as given; callers normalize it first.
	Reason string
	// Source is the command message to acknowledge. Nil for guard runs.
	Source *platform.MessageRef
	// Notice overrides the configured exile message.
	Notice string
}

// Exile renames the target, grants the exile role, strips the secondary
// role, persists the sanction, posts the public notice and reacts to the
// source message. Only a failed persist aborts the run; the rename and role
// changes made before it stay in place and show up in the log.
func (m *Moderator) Exile(ctx context.Context, scope Scope, req ExileRequest) Outcome {
	cfg := m.cfg()
	target := req.Target
	nickname := InmateName(cfg.Exile.InmatePrefix)

	// the display name at the moment of sanction; a re-exile replaces it
	priorName := target.DisplayName

	notice := req.Notice
	if notice == "" {
		notice = cfg.Exile.Message
	}

	steps := []step{
		{StateRenamed, func(ctx context.Context) (StepResult, error) {
			return resultOf(m.exec.Rename(ctx, req.Actor, target, nickname)), nil
		}},
		{StateRoleGranted, func(ctx context.Context) (StepResult, error) {
			return resultOf(m.exec.GrantRole(ctx, req.Actor, target, scope.Role)), nil
		}},
		{StateSecondaryRoleRevoked, func(ctx context.Context) (StepResult, error) {
			if scope.RemoveRole == nil {
				return StepSkipped, nil
			}
			return resultOf(m.exec.RevokeRole(ctx, req.Actor, target, scope.RemoveRole)), nil
		}},
		{StatePersisted, func(ctx context.Context) (StepResult, error) {
			if err := m.store.Put(ctx, target.ID, priorName, req.Reason); err != nil {
				return StepFailed, err
			}
			return StepOK, nil
		}},
		{StateNotified, func(ctx context.Context) (StepResult, error) {
			return resultOf(m.exec.Notify(ctx, scope.Channel, target.Mention()+" "+notice)), nil
		}},
		{StateAcknowledged, func(ctx context.Context) (StepResult, error) {
			if req.Source == nil {
				return StepSkipped, nil
			}
			return resultOf(m.exec.React(ctx, req.Source, cfg.Exile.Reaction)), nil
		}},
	}

	out := runSteps(ctx, "exile", steps)
	if out.Err != nil {
		logger.Errorf("Exile of %q (%s) by %s aborted: %v", priorName, target.ID, req.Actor, out.Err)
	} else {
		logger.Infof("%s exiled %q (%s) as %q, reason: %q", req.Actor, priorName, target.ID, nickname, req.Reason)
	}
	return out
}

// DrunkTank exiles an actor who tried to exile an enforcer, then schedules
// their release. The scheduled task keeps only the guild, actor id, role and
// channel; it re-resolves the member when it fires.
func (m *Moderator) DrunkTank(ctx context.Context, scope Scope, actor *platform.Member, reason string, source *platform.MessageRef) Outcome {
	logger.Infof("%s fought the law and the law won!", actor.DisplayName)
	drunkTankCount.Inc()

	out := m.Exile(ctx, scope, ExileRequest{
		Actor:  actor.Username,
		Target: actor,
		Reason: reason,
		Source: source,
	})

	// scheduled even after an abort: the role may already be granted
	deferred := Scope{GuildID: scope.GuildID, Role: scope.Role, Channel: scope.Channel}
	actorID := actor.ID
	actorName := actor.Username
	m.sched.After("drunk-tank-"+actorID, m.cfg().Exile.DrunkTankAfter, func() {
		bg := context.Background()
		member, err := m.session.Member(bg, deferred.GuildID, actorID)
		if err != nil {
			logger.Debugf("Drunk tank release could not resolve %s: %v", actorID, err)
			member = &platform.Member{ID: actorID, GuildID: deferred.GuildID, Username: actorName, DisplayName: actorName}
		}
		m.Release(bg, deferred, ReleaseRequest{Actor: "drunk-tank", Target: member})
		logger.Infof("%s has been released from the drunk tank", actorName)
	})

	return out
}
