// Package platform is the boundary between the moderation core and the chat
// service. The core only sees the plain types below and the Session
// interface; the discordgo adapter lives in discord.go.
package platform

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a member, role or channel cannot be resolved.
var ErrNotFound = errors.New("not found")

type Member struct {
	ID          string
	GuildID     string
	Username    string
	DisplayName string
	Bot         bool
	Roles       []string
}

// Mention returns the markup that pings the member.
func (m *Member) Mention() string {
	return fmt.Sprintf("<@%s>", m.ID)
}

// HasRole reports whether the member holds roleID.
func (m *Member) HasRole(roleID string) bool {
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

type Role struct {
	ID   string
	Name string
}

// Mention returns the markup that pings every holder of the role.
func (r *Role) Mention() string {
	return fmt.Sprintf("<@&%s>", r.ID)
}

type Channel struct {
	ID   string
	Name string
}

// MessageRef identifies a message to react to or delete.
type MessageRef struct {
	ID        string
	ChannelID string
	GuildID   string
}

// Message is an incoming guild message with its mentions resolved to members.
type Message struct {
	MessageRef
	Content  string
	Author   *Member
	Mentions []*Member
}

type EmbedField struct {
	Name  string
	Value string
}

type Embed struct {
	Title  string
	URL    string
	Author string
	Fields []EmbedField
	Footer string
	Color  int
}

// Session is the set of platform calls the bot makes. Every mutation is a
// single request that either succeeds or fails.
type Session interface {
	SetNickname(ctx context.Context, guildID, userID, nickname string) error
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
	SendMessage(ctx context.Context, channelID, content string) error
	SendEmbed(ctx context.Context, channelID, content string, embed *Embed) error
	React(ctx context.Context, channelID, messageID, emoji string) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// Member resolves a member currently present in the guild.
	Member(ctx context.Context, guildID, userID string) (*Member, error)
	RoleByName(ctx context.Context, guildID, name string) (*Role, error)
	RoleByID(ctx context.Context, guildID, roleID string) (*Role, error)
	ChannelByName(ctx context.Context, guildID, name string) (*Channel, error)
	GuildName(ctx context.Context, guildID string) string
	ChannelName(ctx context.Context, channelID string) string
}

// MessageURL links to a message in the web client.
func MessageURL(ref MessageRef) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", ref.GuildID, ref.ChannelID, ref.ID)
}
