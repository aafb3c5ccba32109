package handler

import (
	"context"
	"fmt"
	"strings"

	"exile-bot/internal/logger"
	"exile-bot/internal/platform"
)

const (
	marketTalkColor = 0xF1C40F
	// embed field values are capped by the platform
	maxFieldLength = 1024
)

// MonitorMarket reports messages that mention a trigger word in any
// language to the notification channel. It reports whether an alert was
// raised.
func (h *Handler) MonitorMarket(ctx context.Context, msg *platform.Message) bool {
	cfg := h.cfg()
	if msg.Author == nil || msg.Author.Bot || !cfg.IsMonitored(msg.GuildID) {
		return false
	}
	monitor := cfg.Monitor
	if len(monitor.TriggerWords) == 0 || monitor.NotificationChannelID == "" {
		return false
	}
	if isIgnoredAuthor(msg.Author.Username, monitor.IgnoredAuthors) {
		return false
	}
	if strings.TrimSpace(msg.Content) == "" {
		return false
	}

	res := h.translator.Translate(ctx, msg.Content)
	text := strings.ToLower(res.Text)
	word := firstTriggerWord(text, monitor.TriggerWords)
	if word == "" {
		return false
	}

	logger.Infof("Market talk (%q) from %s in guild %s: %s", word, msg.Author.Username, msg.GuildID, text)
	marketTalkAlerts.Inc()

	fields := []platform.EmbedField{{Name: "Original Message", Value: truncate(res.Original)}}
	if res.Language != "English" {
		fields = append(fields, platform.EmbedField{Name: "Translated", Value: truncate(text)})
	}

	guildName := h.session.GuildName(ctx, msg.GuildID)
	channelName := h.session.ChannelName(ctx, msg.ChannelID)
	return h.mod.Executor().Alert(ctx, monitor.NotificationChannelID, "", &platform.Embed{
		Title:  fmt.Sprintf("Market Talk in %s #%s?", guildName, channelName),
		URL:    platform.MessageURL(msg.MessageRef),
		Author: msg.Author.Username,
		Fields: fields,
		Footer: "Language: " + res.Language,
		Color:  marketTalkColor,
	})
}

func isIgnoredAuthor(username string, ignored []string) bool {
	for _, name := range ignored {
		if strings.EqualFold(username, name) {
			return true
		}
	}
	return false
}

// firstTriggerWord returns the first trigger word contained in the
// lower-cased text.
func firstTriggerWord(text string, words []string) string {
	for _, w := range words {
		if w == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(w)) {
			return w
		}
	}
	return ""
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxFieldLength {
		return s
	}
	return string(r[:maxFieldLength-1]) + "…"
}
