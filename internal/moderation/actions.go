package moderation

import (
	"context"

	"exile-bot/internal/logger"
	"exile-bot/internal/platform"
)

// Executor wraps single platform mutations. Every call is best-effort: a
// failure is logged and reported as false, never returned or panicked, so one
// failed cosmetic step cannot abort a pipeline.
type Executor struct {
	session platform.Session
}

func NewExecutor(session platform.Session) *Executor {
	return &Executor{session: session}
}

func (e *Executor) failed(action string, err error, format string, args ...any) bool {
	platformActionFailures.WithLabelValues(action).Inc()
	logger.Warningf(format+": %v", append(args, err)...)
	return false
}

func (e *Executor) Rename(ctx context.Context, actor string, m *platform.Member, nickname string) bool {
	if err := e.session.SetNickname(ctx, m.GuildID, m.ID, nickname); err != nil {
		return e.failed("rename", err, "%s could not change nickname of %q (%s) to %q", actor, m.DisplayName, m.ID, nickname)
	}
	logger.Infof("%s changed nickname of %q (%s) to %q", actor, m.DisplayName, m.ID, nickname)
	return true
}

func (e *Executor) GrantRole(ctx context.Context, actor string, m *platform.Member, role *platform.Role) bool {
	if role == nil {
		return false
	}
	if err := e.session.AddRole(ctx, m.GuildID, m.ID, role.ID); err != nil {
		return e.failed("grant_role", err, "%s could not assign role %q to %q (%s)", actor, role.Name, m.DisplayName, m.ID)
	}
	logger.Infof("%s assigned role %q to %q (%s)", actor, role.Name, m.DisplayName, m.ID)
	return true
}

func (e *Executor) RevokeRole(ctx context.Context, actor string, m *platform.Member, role *platform.Role) bool {
	if role == nil {
		return false
	}
	if err := e.session.RemoveRole(ctx, m.GuildID, m.ID, role.ID); err != nil {
		return e.failed("revoke_role", err, "%s could not remove role %q from %q (%s)", actor, role.Name, m.DisplayName, m.ID)
	}
	logger.Infof("%s removed role %q from %q (%s)", actor, role.Name, m.DisplayName, m.ID)
	return true
}

// Notify posts content to ch. A nil channel (not configured or not found)
// counts as a failure.
func (e *Executor) Notify(ctx context.Context, ch *platform.Channel, content string) bool {
	if ch == nil {
		platformActionFailures.WithLabelValues("notify").Inc()
		logger.Warningf("No channel to send notice to: %q", content)
		return false
	}
	return e.Send(ctx, ch.ID, content)
}

func (e *Executor) Send(ctx context.Context, channelID, content string) bool {
	if err := e.session.SendMessage(ctx, channelID, content); err != nil {
		return e.failed("send", err, "Could not send message to channel %s", channelID)
	}
	return true
}

func (e *Executor) Alert(ctx context.Context, channelID, content string, embed *platform.Embed) bool {
	if channelID == "" {
		return false
	}
	if err := e.session.SendEmbed(ctx, channelID, content, embed); err != nil {
		return e.failed("alert", err, "Could not send %q alert to channel %s", embed.Title, channelID)
	}
	return true
}

// React acknowledges ref. A nil ref means there is no message to react to,
// which happens for guard and deferred runs.
func (e *Executor) React(ctx context.Context, ref *platform.MessageRef, emoji string) bool {
	if ref == nil {
		return false
	}
	if err := e.session.React(ctx, ref.ChannelID, ref.ID, emoji); err != nil {
		return e.failed("react", err, "Could not react to message %s in channel %s", ref.ID, ref.ChannelID)
	}
	return true
}

func (e *Executor) DeleteMessage(ctx context.Context, ref *platform.MessageRef) bool {
	if ref == nil {
		return false
	}
	if err := e.session.DeleteMessage(ctx, ref.ChannelID, ref.ID); err != nil {
		return e.failed("delete_message", err, "Could not delete message %s in channel %s", ref.ID, ref.ChannelID)
	}
	return true
}
