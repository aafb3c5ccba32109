package handler

import (
	"context"

	"exile-bot/internal/platform"
)

// HandleMemberJoin re-applies an active exile to a returning member, and
// otherwise checks the new member's name against the protected list.
func (h *Handler) HandleMemberJoin(ctx context.Context, member *platform.Member) {
	if !h.cfg().IsMonitored(member.GuildID) {
		return
	}
	scope, ok := h.resolveScope(ctx, member.GuildID)
	if !ok {
		return
	}
	if h.mod.GuardRejoin(ctx, scope, member) {
		return
	}
	h.mod.GuardProtectedName(ctx, scope, member, false)
}

// HandleMemberUpdate checks a changed profile against the protected list.
func (h *Handler) HandleMemberUpdate(ctx context.Context, member *platform.Member) {
	if !h.cfg().IsMonitored(member.GuildID) {
		return
	}
	scope, ok := h.resolveScope(ctx, member.GuildID)
	if !ok {
		return
	}
	h.mod.GuardProtectedName(ctx, scope, member, true)
}
