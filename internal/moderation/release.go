package moderation

import (
	"context"
	"sync/atomic"

	"exile-bot/internal/logger"
	"exile-bot/internal/platform"

	"github.com/sourcegraph/conc"
)

type ReleaseRequest struct {
	Actor  string
	Target *platform.Member
	// Source is the command message to acknowledge. Nil for deferred runs.
	Source *platform.MessageRef
}

// Release restores the stored nickname, revokes the exile role, deletes the
// record and reacts. With no record the restore is skipped but the rest
// still runs, so releasing a member who is not exiled is harmless. A failed
// delete aborts before the reaction.
func (m *Moderator) Release(ctx context.Context, scope Scope, req ReleaseRequest) Outcome {
	cfg := m.cfg()
	target := req.Target
	active, priorName := m.store.IsSanctioned(ctx, target.ID)

	steps := []step{
		{StateNicknameRestored, func(ctx context.Context) (StepResult, error) {
			if !active {
				return StepSkipped, nil
			}
			return resultOf(m.exec.Rename(ctx, req.Actor, target, priorName)), nil
		}},
		{StateRoleRevoked, func(ctx context.Context) (StepResult, error) {
			return resultOf(m.exec.RevokeRole(ctx, req.Actor, target, scope.Role)), nil
		}},
		{StateDeleted, func(ctx context.Context) (StepResult, error) {
			if err := m.store.Delete(ctx, target.ID); err != nil {
				return StepFailed, err
			}
			return StepOK, nil
		}},
		{StateAcknowledged, func(ctx context.Context) (StepResult, error) {
			if req.Source == nil {
				return StepSkipped, nil
			}
			return resultOf(m.exec.React(ctx, req.Source, cfg.Exile.Reaction)), nil
		}},
	}

	out := runSteps(ctx, "release", steps)
	if out.Err != nil {
		logger.Errorf("Release of %q (%s) by %s aborted: %v", target.DisplayName, target.ID, req.Actor, out.Err)
	} else {
		logger.Infof("%s released %q (%s)", req.Actor, target.DisplayName, target.ID)
	}
	return out
}

// ReleaseAllResult counts what a bulk release did.
type ReleaseAllResult struct {
	Released      int
	Skipped       int
	RestoreFailed int
	RevokeFailed  int
	DeleteFailed  int
	Acknowledged  bool
}

type releaseEntry struct {
	member    *platform.Member
	priorName string
}

// ReleaseAll releases every stored sanction whose member is present in the
// guild. Records for absent members are left alone. Names are restored for
// everyone, then roles revoked for everyone, then records deleted; work
// inside a phase runs concurrently and one member's failure does not stop
// the others.
func (m *Moderator) ReleaseAll(ctx context.Context, scope Scope, actor string, source *platform.MessageRef) ReleaseAllResult {
	var res ReleaseAllResult
	var present []releaseEntry

	for _, rec := range m.store.ListAll(ctx) {
		member, err := m.session.Member(ctx, scope.GuildID, rec.ID)
		if err != nil {
			logger.Debugf("Release all: %s is not in guild %s, skipping: %v", rec.ID, scope.GuildID, err)
			res.Skipped++
			releaseAllSkipped.Inc()
			continue
		}
		present = append(present, releaseEntry{member: member, priorName: rec.OldNickname})
	}

	res.RestoreFailed = runPhase(present, func(e releaseEntry) bool {
		return m.exec.Rename(ctx, actor, e.member, e.priorName)
	})
	res.RevokeFailed = runPhase(present, func(e releaseEntry) bool {
		return m.exec.RevokeRole(ctx, actor, e.member, scope.Role)
	})
	res.DeleteFailed = runPhase(present, func(e releaseEntry) bool {
		if err := m.store.Delete(ctx, e.member.ID); err != nil {
			logger.Errorf("Release all by %s could not delete record for %s: %v", actor, e.member.ID, err)
			return false
		}
		return true
	})
	res.Released = len(present) - res.DeleteFailed

	res.Acknowledged = m.exec.React(ctx, source, m.cfg().Exile.Reaction)

	outcome := StateCompleted
	if res.DeleteFailed > 0 {
		outcome = StateAborted
	}
	pipelineRuns.WithLabelValues("release_all", string(outcome)).Inc()

	logger.Infof("%s released everyone: %d released, %d absent, %d restore failures, %d revoke failures, %d delete failures",
		actor, res.Released, res.Skipped, res.RestoreFailed, res.RevokeFailed, res.DeleteFailed)
	return res
}

// runPhase calls fn for every entry concurrently and returns the number of
// calls that reported failure.
func runPhase(entries []releaseEntry, fn func(releaseEntry) bool) int {
	var failed atomic.Int64
	var wg conc.WaitGroup
	for _, e := range entries {
		wg.Go(func() {
			if !fn(e) {
				failed.Add(1)
			}
		})
	}
	wg.Wait()
	return int(failed.Load())
}
