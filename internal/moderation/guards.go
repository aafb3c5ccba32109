package moderation

import (
	"context"
	"fmt"

	"exile-bot/internal/logger"
	"exile-bot/internal/platform"
)

const alertColor = 0xE74C3C

// GuardProtectedName exiles a member whose display name contains a protected
// name and alerts the moderators. Bots and enforcers are exempt. On update
// events a member who already holds the exile role is left alone. It reports
// whether a sanction was attempted.
func (m *Moderator) GuardProtectedName(ctx context.Context, scope Scope, member *platform.Member, isUpdate bool) bool {
	if member.Bot || m.policy.IsPrivileged(member.ID) {
		return false
	}
	if isUpdate && scope.Role != nil && member.HasRole(scope.Role.ID) {
		return false
	}

	cfg := m.cfg()
	matched := MatchProtectedName(member.DisplayName, cfg.ProtectedNames.Names)
	if matched == "" {
		return false
	}

	logger.Warningf("%q (%s) matches protected name %q", member.DisplayName, member.ID, matched)
	guardTriggers.WithLabelValues("protected_name").Inc()

	out := m.Exile(ctx, scope, ExileRequest{
		Actor:  "protected-name-guard",
		Target: member,
		Reason: cfg.ProtectedNames.Reason,
	})
	if !out.Completed() {
		return true
	}

	content := ""
	if cfg.ProtectedNames.AlertRoleID != "" {
		content = (&platform.Role{ID: cfg.ProtectedNames.AlertRoleID}).Mention()
	}
	m.exec.Alert(ctx, cfg.ProtectedNames.AlertChannelID, content, &platform.Embed{
		Title: "Protected name detected",
		Fields: []platform.EmbedField{
			{Name: "Member", Value: fmt.Sprintf("%s (%s)", member.Mention(), member.ID)},
			{Name: "Display name", Value: member.DisplayName},
			{Name: "Matched", Value: matched},
		},
		Footer: "Member has been exiled automatically",
		Color:  alertColor,
	})
	return true
}

// GuardRejoin re-applies an exile to a member who left and came back. The
// stored record, including the original nickname, is not touched. It
// reports whether the member had an active sanction.
func (m *Moderator) GuardRejoin(ctx context.Context, scope Scope, member *platform.Member) bool {
	active, priorName := m.store.IsSanctioned(ctx, member.ID)
	if !active {
		return false
	}

	cfg := m.cfg()
	nickname := InmateName(cfg.Exile.InmatePrefix)
	logger.Infof("%q (%s) rejoined the server and should be in exile (was %q)", member.DisplayName, member.ID, priorName)
	guardTriggers.WithLabelValues("rejoin").Inc()

	const actor = "rejoin-guard"
	steps := []step{
		{StateRenamed, func(ctx context.Context) (StepResult, error) {
			return resultOf(m.exec.Rename(ctx, actor, member, nickname)), nil
		}},
		{StateRoleGranted, func(ctx context.Context) (StepResult, error) {
			return resultOf(m.exec.GrantRole(ctx, actor, member, scope.Role)), nil
		}},
		{StateNotified, func(ctx context.Context) (StepResult, error) {
			return resultOf(m.exec.Notify(ctx, scope.Channel, member.Mention()+" "+cfg.Exile.EvadeMessage)), nil
		}},
	}
	runSteps(ctx, "rejoin", steps)
	return true
}
