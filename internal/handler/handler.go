package handler

import (
	"context"

	"exile-bot/internal/config"
	"exile-bot/internal/logger"
	"exile-bot/internal/moderation"
	"exile-bot/internal/platform"
	"exile-bot/internal/translate"
)

// Handler turns platform events into moderation pipeline runs.
type Handler struct {
	session    platform.Session
	mod        *moderation.Moderator
	translator *translate.Service
	cfg        config.Getter
}

func New(session platform.Session, mod *moderation.Moderator, translator *translate.Service, cfg config.Getter) *Handler {
	return &Handler{
		session:    session,
		mod:        mod,
		translator: translator,
		cfg:        cfg,
	}
}

// resolveScope looks up the exile role, the optional secondary role and the
// notice channel for guildID. Lookups happen on every event so renames made
// in the server apply immediately. Without the exile role nothing can run.
func (h *Handler) resolveScope(ctx context.Context, guildID string) (moderation.Scope, bool) {
	cfg := h.cfg()
	scope := moderation.Scope{GuildID: guildID}

	role, err := h.session.RoleByName(ctx, guildID, cfg.Exile.RoleName)
	if err != nil {
		logger.Warningf("Exile role %q not found in guild %s: %v", cfg.Exile.RoleName, guildID, err)
		return scope, false
	}
	scope.Role = role

	if cfg.Exile.RemoveRoleName != "" {
		if r, err := h.session.RoleByName(ctx, guildID, cfg.Exile.RemoveRoleName); err == nil {
			scope.RemoveRole = r
		} else {
			logger.Debugf("Secondary role %q not found in guild %s: %v", cfg.Exile.RemoveRoleName, guildID, err)
		}
	}

	if ch, err := h.session.ChannelByName(ctx, guildID, cfg.Exile.ChannelName); err == nil {
		scope.Channel = ch
	} else {
		logger.Warningf("Exile channel %q not found in guild %s: %v", cfg.Exile.ChannelName, guildID, err)
	}

	return scope, true
}
