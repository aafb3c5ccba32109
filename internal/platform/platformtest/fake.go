// Package platformtest provides an in-memory platform.Session for tests.
package platformtest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"exile-bot/internal/platform"
)

const (
	ActionNickname   = "nickname"
	ActionAddRole    = "add_role"
	ActionRemoveRole = "remove_role"
	ActionSend       = "send"
	ActionEmbed      = "embed"
	ActionReact      = "react"
	ActionDelete     = "delete"
)

// ErrInjected is returned by actions configured to fail.
var ErrInjected = errors.New("injected failure")

type Call struct {
	Action    string
	GuildID   string
	ChannelID string
	UserID    string
	Value     string
	Embed     *platform.Embed
}

// Session records every mutation and keeps member state in sync with it.
type Session struct {
	mu       sync.Mutex
	members  map[string]*platform.Member
	roles    map[string][]*platform.Role
	channels map[string][]*platform.Channel
	fail     map[string]bool
	failFor  map[string]bool
	calls    []Call
}

func NewSession() *Session {
	return &Session{
		members:  make(map[string]*platform.Member),
		roles:    make(map[string][]*platform.Role),
		channels: make(map[string][]*platform.Channel),
		fail:     make(map[string]bool),
		failFor:  make(map[string]bool),
	}
}

func memberKey(guildID, userID string) string {
	return guildID + "/" + userID
}

// PutMember adds or replaces a member present in its guild.
func (s *Session) PutMember(m *platform.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	cp.Roles = slices.Clone(m.Roles)
	s.members[memberKey(m.GuildID, m.ID)] = &cp
}

// RemoveMember makes the member absent from the guild.
func (s *Session) RemoveMember(guildID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, memberKey(guildID, userID))
}

func (s *Session) PutRole(guildID string, r *platform.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[guildID] = append(s.roles[guildID], r)
}

func (s *Session) PutChannel(guildID string, c *platform.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[guildID] = append(s.channels[guildID], c)
}

// FailOn makes every call of action fail.
func (s *Session) FailOn(action string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[action] = true
}

// FailOnUser makes action fail only for userID.
func (s *Session) FailOnUser(action, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failFor[action+"/"+userID] = true
}

// Calls returns the recorded calls, filtered by action when one is given.
func (s *Session) Calls(action ...string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if len(action) == 0 || slices.Contains(action, c.Action) {
			out = append(out, c)
		}
	}
	return out
}

// Snapshot returns a copy of the member as the platform currently sees it.
func (s *Session) Snapshot(guildID, userID string) *platform.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberKey(guildID, userID)]
	if !ok {
		return nil
	}
	cp := *m
	cp.Roles = slices.Clone(m.Roles)
	return &cp
}

func (s *Session) record(c Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	if s.fail[c.Action] || (c.UserID != "" && s.failFor[c.Action+"/"+c.UserID]) {
		return ErrInjected
	}
	return nil
}

func (s *Session) SetNickname(ctx context.Context, guildID, userID, nickname string) error {
	if err := s.record(Call{Action: ActionNickname, GuildID: guildID, UserID: userID, Value: nickname}); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.members[memberKey(guildID, userID)]; ok {
		m.DisplayName = nickname
	}
	return nil
}

func (s *Session) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	if err := s.record(Call{Action: ActionAddRole, GuildID: guildID, UserID: userID, Value: roleID}); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.members[memberKey(guildID, userID)]; ok && !m.HasRole(roleID) {
		m.Roles = append(m.Roles, roleID)
	}
	return nil
}

func (s *Session) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	if err := s.record(Call{Action: ActionRemoveRole, GuildID: guildID, UserID: userID, Value: roleID}); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.members[memberKey(guildID, userID)]; ok {
		m.Roles = slices.DeleteFunc(m.Roles, func(r string) bool { return r == roleID })
	}
	return nil
}

func (s *Session) SendMessage(ctx context.Context, channelID, content string) error {
	return s.record(Call{Action: ActionSend, ChannelID: channelID, Value: content})
}

func (s *Session) SendEmbed(ctx context.Context, channelID, content string, embed *platform.Embed) error {
	return s.record(Call{Action: ActionEmbed, ChannelID: channelID, Value: content, Embed: embed})
}

func (s *Session) React(ctx context.Context, channelID, messageID, emoji string) error {
	return s.record(Call{Action: ActionReact, ChannelID: channelID, UserID: messageID, Value: emoji})
}

func (s *Session) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return s.record(Call{Action: ActionDelete, ChannelID: channelID, Value: messageID})
}

func (s *Session) Member(ctx context.Context, guildID, userID string) (*platform.Member, error) {
	m := s.Snapshot(guildID, userID)
	if m == nil {
		return nil, fmt.Errorf("member %s: %w", userID, platform.ErrNotFound)
	}
	return m, nil
}

func (s *Session) RoleByName(ctx context.Context, guildID, name string) (*platform.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles[guildID] {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("role %q: %w", name, platform.ErrNotFound)
}

func (s *Session) RoleByID(ctx context.Context, guildID, roleID string) (*platform.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles[guildID] {
		if r.ID == roleID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("role %s: %w", roleID, platform.ErrNotFound)
}

func (s *Session) ChannelByName(ctx context.Context, guildID, name string) (*platform.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.channels[guildID] {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("channel %q: %w", name, platform.ErrNotFound)
}

func (s *Session) GuildName(ctx context.Context, guildID string) string {
	return "guild-" + guildID
}

func (s *Session) ChannelName(ctx context.Context, channelID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chans := range s.channels {
		for _, c := range chans {
			if c.ID == channelID {
				return c.Name
			}
		}
	}
	return channelID
}
