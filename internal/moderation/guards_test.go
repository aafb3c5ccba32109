package moderation

import (
	"context"
	"strings"
	"testing"

	"exile-bot/internal/platform/platformtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardProtectedName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.member(memberID, "Official aDMIN team")

	require.True(t, f.mod.GuardProtectedName(ctx, f.scope, m, false))

	active, prior := f.store.IsSanctioned(ctx, memberID)
	assert.True(t, active)
	assert.Equal(t, "Official aDMIN team", prior)
	assert.Equal(t, "impersonation", f.store.Reason(ctx, memberID))

	embeds := f.session.Calls(platformtest.ActionEmbed)
	require.Len(t, embeds, 1)
	assert.Equal(t, alertChanID, embeds[0].ChannelID)
	assert.Equal(t, "<@&r-mods>", embeds[0].Value)
	assert.Equal(t, "Protected name detected", embeds[0].Embed.Title)
	assert.Empty(t, f.session.Calls(platformtest.ActionReact))
}

func TestGuardProtectedNameSkips(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		display  string
		roles    []string
		bot      bool
		isUpdate bool
	}{
		{name: "no match", id: memberID, display: "alice"},
		{name: "enforcer", id: enforcerA, display: "Admin"},
		{name: "bot", id: memberID, display: "Support Bot", bot: true},
		{name: "already exiled on update", id: memberID, display: "Admin", roles: []string{exileRoleID}, isUpdate: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			m := f.member(tt.id, tt.display, tt.roles...)
			m.Bot = tt.bot

			assert.False(t, f.mod.GuardProtectedName(context.Background(), f.scope, m, tt.isUpdate))
			assert.Empty(t, f.session.Calls())
		})
	}
}

func TestGuardProtectedNameNoAlertOnAbort(t *testing.T) {
	f := newFixture(t)
	f.store.FailPut = true
	m := f.member(memberID, "Support desk")

	assert.True(t, f.mod.GuardProtectedName(context.Background(), f.scope, m, true))
	assert.Empty(t, f.session.Calls(platformtest.ActionEmbed))
}

func TestGuardRejoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Put(ctx, memberID, "alice", "spam"))
	m := f.member(memberID, "alice")

	require.True(t, f.mod.GuardRejoin(ctx, f.scope, m))

	got := f.session.Snapshot(testGuild, memberID)
	assert.True(t, strings.HasPrefix(got.DisplayName, "Inmate "))
	assert.True(t, got.HasRole(exileRoleID))

	_, prior := f.store.IsSanctioned(ctx, memberID)
	assert.Equal(t, "alice", prior)
	assert.Equal(t, "spam", f.store.Reason(ctx, memberID))

	sends := f.session.Calls(platformtest.ActionSend)
	require.Len(t, sends, 1)
	assert.Equal(t, "<@200> tried to evade exile", sends[0].Value)
}

func TestGuardRejoinWithoutRecord(t *testing.T) {
	f := newFixture(t)
	m := f.member(memberID, "alice")

	assert.False(t, f.mod.GuardRejoin(context.Background(), f.scope, m))
	assert.Empty(t, f.session.Calls())
}
