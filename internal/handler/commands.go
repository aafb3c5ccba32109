package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"exile-bot/internal/config"
	"exile-bot/internal/logger"
	"exile-bot/internal/moderation"
	"exile-bot/internal/platform"
	"exile-bot/internal/service"
)

const (
	cmdExile      = "exile"
	cmdRelease    = "release"
	cmdUnexile    = "unexile"
	cmdReleaseAll = "releaseall"
	cmdCrime      = "crime"
	cmdRename     = "rename"
)

// parseCommand returns the command name if the first word of content is the
// trigger followed by a known command. A mention may follow the command
// without a space. Matching is case-sensitive.
func parseCommand(content, trigger string) (string, bool) {
	fields := strings.Fields(content)
	if len(fields) == 0 || trigger == "" {
		return "", false
	}
	name, ok := strings.CutPrefix(fields[0], trigger)
	if !ok {
		return "", false
	}
	name, _, _ = strings.Cut(name, "<")
	switch name {
	case cmdExile, cmdRelease, cmdUnexile, cmdReleaseAll, cmdCrime, cmdRename:
		return name, true
	}
	return "", false
}

// HandleCommand runs msg if it is a command and reports whether it was one.
func (h *Handler) HandleCommand(ctx context.Context, msg *platform.Message) bool {
	cfg := h.cfg()
	if msg.Author == nil || msg.Author.Bot || !cfg.IsMonitored(msg.GuildID) {
		return false
	}

	if cfg.Exile.RoleID != "" && strings.HasPrefix(msg.Content, "<@&"+cfg.Exile.RoleID+">") {
		if _, err := h.session.RoleByID(ctx, msg.GuildID, cfg.Exile.RoleID); err != nil {
			logger.Warningf("Configured exile role id %s not found in guild %s: %v", cfg.Exile.RoleID, msg.GuildID, err)
			return false
		}
		commandsReceived.WithLabelValues("role_mention").Inc()
		if cfg.Exile.RoleMentionLink != "" {
			h.mod.Executor().Send(ctx, msg.ChannelID, cfg.Exile.RoleMentionLink)
		}
		return true
	}

	name, ok := parseCommand(msg.Content, cfg.Exile.Trigger)
	if !ok {
		return false
	}
	commandsReceived.WithLabelValues(name).Inc()
	logger.Debugf("Command %q from %s (%s) in guild %s", name, msg.Author.Username, msg.Author.ID, msg.GuildID)

	h.scheduleDelete(msg.MessageRef, cfg.Exile.DeleteAfter)

	scope, ok := h.resolveScope(ctx, msg.GuildID)
	if !ok {
		return true
	}

	switch name {
	case cmdExile:
		h.exile(ctx, cfg, scope, msg)
	case cmdRelease, cmdUnexile:
		h.release(ctx, scope, msg)
	case cmdReleaseAll:
		h.releaseAll(ctx, scope, msg)
	case cmdCrime:
		h.crime(ctx, msg)
	case cmdRename:
		h.rename(ctx, cfg, msg)
	}
	return true
}

// scheduleDelete removes the command message once after has passed.
func (h *Handler) scheduleDelete(ref platform.MessageRef, after time.Duration) {
	h.mod.Scheduler().After("delete-message-"+ref.ID, after, func() {
		h.mod.Executor().DeleteMessage(context.Background(), &ref)
	})
}

func (h *Handler) exile(ctx context.Context, cfg *config.Config, scope moderation.Scope, msg *platform.Message) {
	reason := service.NormalizeReason(msg.Content, cfg.CommandTriggers())
	policy := h.mod.Policy()
	drunkTanked := false

	for _, target := range msg.Mentions {
		switch policy.DecideExile(msg.Author.ID, target.ID) {
		case moderation.ExileTarget:
			h.mod.Exile(ctx, scope, moderation.ExileRequest{
				Actor:  msg.Author.Username,
				Target: target,
				Reason: reason,
				Source: &msg.MessageRef,
			})
		case moderation.ExileDrunkTank:
			if drunkTanked {
				continue
			}
			drunkTanked = true
			h.mod.DrunkTank(ctx, scope, msg.Author, reason, &msg.MessageRef)
		default:
			logger.Debugf("%s (%s) may not exile %s (%s)", msg.Author.Username, msg.Author.ID, target.DisplayName, target.ID)
		}
	}
}

func (h *Handler) release(ctx context.Context, scope moderation.Scope, msg *platform.Message) {
	if !h.mod.Policy().CanRelease(msg.Author.ID) {
		logger.Debugf("%s (%s) may not release", msg.Author.Username, msg.Author.ID)
		return
	}
	for _, target := range msg.Mentions {
		h.mod.Release(ctx, scope, moderation.ReleaseRequest{
			Actor:  msg.Author.Username,
			Target: target,
			Source: &msg.MessageRef,
		})
	}
}

func (h *Handler) releaseAll(ctx context.Context, scope moderation.Scope, msg *platform.Message) {
	if !h.mod.Policy().CanRelease(msg.Author.ID) {
		logger.Debugf("%s (%s) may not release everyone", msg.Author.Username, msg.Author.ID)
		return
	}
	h.mod.ReleaseAll(ctx, scope, msg.Author.Username, &msg.MessageRef)
}

// crime shows a non-enforcer their own warrant. An enforcer sees the warrant
// of the first member they mention; an empty warrant posts nothing.
func (h *Handler) crime(ctx context.Context, msg *platform.Message) {
	store := h.mod.Store()
	exec := h.mod.Executor()

	if !h.mod.Policy().IsPrivileged(msg.Author.ID) {
		reason := store.Reason(ctx, msg.Author.ID)
		if reason == "" {
			exec.Send(ctx, msg.ChannelID, fmt.Sprintf("%s There is no warrant out for you", msg.Author.Mention()))
			return
		}
		exec.Send(ctx, msg.ChannelID, fmt.Sprintf("%s The message scrawled across your warrant states: ```%s```", msg.Author.Mention(), reason))
		return
	}

	if len(msg.Mentions) == 0 {
		return
	}
	target := msg.Mentions[0]
	if reason := store.Reason(ctx, target.ID); reason != "" {
		exec.Send(ctx, msg.ChannelID, fmt.Sprintf("The warrant for %s states: %s", target.Mention(), reason))
	}
}

func (h *Handler) rename(ctx context.Context, cfg *config.Config, msg *platform.Message) {
	if !h.mod.Policy().CanRename(msg.Author.ID) {
		logger.Debugf("%s (%s) may not rename", msg.Author.Username, msg.Author.ID)
		return
	}
	if len(msg.Mentions) == 0 {
		return
	}
	nickname := service.NormalizeReason(msg.Content, cfg.CommandTriggers())
	if nickname == "" {
		return
	}

	exec := h.mod.Executor()
	if exec.Rename(ctx, msg.Author.Username, msg.Mentions[0], nickname) {
		exec.React(ctx, &msg.MessageRef, cfg.Exile.Reaction)
	}
}
