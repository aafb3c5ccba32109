package platform

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Discord adapts a discordgo session to Session. Roles and channels are
// looked up on every call: first in the gateway-maintained State, then over
// REST. Nothing is cached here, so server-side renames apply immediately.
type Discord struct {
	s *discordgo.Session
}

func NewDiscord(s *discordgo.Session) *Discord {
	return &Discord{s: s}
}

func (d *Discord) SetNickname(ctx context.Context, guildID, userID, nickname string) error {
	return d.s.GuildMemberNickname(guildID, userID, nickname, discordgo.WithContext(ctx))
}

func (d *Discord) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (d *Discord) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.s.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (d *Discord) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := d.s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) SendEmbed(ctx context.Context, channelID, content string, embed *Embed) error {
	_, err := d.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Embeds:  []*discordgo.MessageEmbed{toDiscordEmbed(embed)},
	}, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) React(ctx context.Context, channelID, messageID, emoji string) error {
	return d.s.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

func (d *Discord) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return d.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (d *Discord) Member(ctx context.Context, guildID, userID string) (*Member, error) {
	if m, err := d.s.State.Member(guildID, userID); err == nil {
		return FromDiscordMember(guildID, m), nil
	}
	m, err := d.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("member %s in guild %s: %w", userID, guildID, err)
	}
	return FromDiscordMember(guildID, m), nil
}

func (d *Discord) roles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	if g, err := d.s.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
		return g.Roles, nil
	}
	return d.s.GuildRoles(guildID, discordgo.WithContext(ctx))
}

func (d *Discord) RoleByName(ctx context.Context, guildID, name string) (*Role, error) {
	roles, err := d.roles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if r.Name == name {
			return &Role{ID: r.ID, Name: r.Name}, nil
		}
	}
	return nil, fmt.Errorf("role %q in guild %s: %w", name, guildID, ErrNotFound)
}

func (d *Discord) RoleByID(ctx context.Context, guildID, roleID string) (*Role, error) {
	roles, err := d.roles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if r.ID == roleID {
			return &Role{ID: r.ID, Name: r.Name}, nil
		}
	}
	return nil, fmt.Errorf("role %s in guild %s: %w", roleID, guildID, ErrNotFound)
}

func (d *Discord) ChannelByName(ctx context.Context, guildID, name string) (*Channel, error) {
	var channels []*discordgo.Channel
	if g, err := d.s.State.Guild(guildID); err == nil && len(g.Channels) > 0 {
		channels = g.Channels
	} else {
		channels, err = d.s.GuildChannels(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, err
		}
	}
	for _, c := range channels {
		if c.Name == name {
			return &Channel{ID: c.ID, Name: c.Name}, nil
		}
	}
	return nil, fmt.Errorf("channel %q in guild %s: %w", name, guildID, ErrNotFound)
}

func (d *Discord) GuildName(ctx context.Context, guildID string) string {
	if g, err := d.s.State.Guild(guildID); err == nil {
		return g.Name
	}
	if g, err := d.s.Guild(guildID, discordgo.WithContext(ctx)); err == nil {
		return g.Name
	}
	return guildID
}

func (d *Discord) ChannelName(ctx context.Context, channelID string) string {
	if c, err := d.s.State.Channel(channelID); err == nil {
		return c.Name
	}
	if c, err := d.s.Channel(channelID, discordgo.WithContext(ctx)); err == nil {
		return c.Name
	}
	return channelID
}

// FromDiscordMember converts a discordgo member. The display name follows the
// client: guild nickname, then global name, then username.
func FromDiscordMember(guildID string, m *discordgo.Member) *Member {
	out := &Member{GuildID: guildID, Roles: m.Roles}
	if m.GuildID != "" {
		out.GuildID = m.GuildID
	}
	if m.User != nil {
		out.ID = m.User.ID
		out.Username = m.User.Username
		out.Bot = m.User.Bot
		out.DisplayName = m.User.Username
		if m.User.GlobalName != "" {
			out.DisplayName = m.User.GlobalName
		}
	}
	if m.Nick != "" {
		out.DisplayName = m.Nick
	}
	return out
}

// FromDiscordMessage converts a guild message. Mentions are resolved through
// the session so each mentioned user carries guild member data; users that
// are not in the guild are dropped.
func FromDiscordMessage(ctx context.Context, sess Session, m *discordgo.Message) *Message {
	msg := &Message{
		MessageRef: MessageRef{ID: m.ID, ChannelID: m.ChannelID, GuildID: m.GuildID},
		Content:    m.Content,
	}

	if m.Author != nil {
		if m.Member != nil {
			member := *m.Member
			member.User = m.Author
			msg.Author = FromDiscordMember(m.GuildID, &member)
		} else {
			msg.Author = &Member{ID: m.Author.ID, GuildID: m.GuildID, Username: m.Author.Username, DisplayName: m.Author.Username, Bot: m.Author.Bot}
		}
	}

	seen := make(map[string]bool, len(m.Mentions))
	for _, u := range m.Mentions {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		member, err := sess.Member(ctx, m.GuildID, u.ID)
		if err != nil {
			continue
		}
		msg.Mentions = append(msg.Mentions, member)
	}
	return msg
}

func toDiscordEmbed(e *Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title: e.Title,
		URL:   e.URL,
		Color: e.Color,
	}
	if e.Author != "" {
		out.Author = &discordgo.MessageEmbedAuthor{Name: e.Author}
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value})
	}
	return out
}
