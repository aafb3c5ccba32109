package handler

import (
	"context"
	"strings"
	"testing"
	"time"

	"exile-bot/internal/config"
	"exile-bot/internal/moderation"
	"exile-bot/internal/moderation/moderationtest"
	"exile-bot/internal/platform"
	"exile-bot/internal/platform/platformtest"
	"exile-bot/internal/translate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildID     = "g1"
	enforcerA   = "100"
	enforcerB   = "101"
	aliceID     = "200"
	bobID       = "201"
	exileRoleID = "r-exile"
	noticeChan  = "c-exile"
	generalChan = "c-general"
	marketChan  = "c-market"
)

type testEnv struct {
	cfg     *config.Config
	session *platformtest.Session
	store   *moderationtest.MemoryStore
	sched   *moderationtest.ManualScheduler
	backend *fakeBackend
	h       *Handler
}

type fakeBackend struct {
	res   translate.Result
	calls int
}

func (b *fakeBackend) Translate(_ context.Context, text string) (translate.Result, error) {
	b.calls++
	res := b.res
	res.Original = text
	return res, nil
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Bot: config.BotConfig{ServerIDs: []string{guildID}},
		Exile: config.ExileConfig{
			Trigger:         "!",
			Enforcers:       []string{enforcerA, enforcerB},
			RoleName:        "exiled",
			RoleID:          exileRoleID,
			RemoveRoleName:  "verified",
			ChannelName:     "exile-log",
			InmatePrefix:    "Inmate",
			Message:         "has been sent to exile",
			EvadeMessage:    "tried to evade exile",
			Reaction:        "✅",
			DeleteAfter:     5 * time.Second,
			DrunkTankAfter:  time.Minute,
			RoleMentionLink: "https://example.com/exiled",
			OpenExile:       true,
		},
		ProtectedNames: config.ProtectedNamesConfig{
			Names:          []string{"Admin"},
			Reason:         "impersonation",
			AlertChannelID: "c-mods",
		},
		Monitor: config.MonitorConfig{
			TriggerWords:          []string{"price", "pump"},
			NotificationChannelID: marketChan,
			IgnoredAuthors:        []string{"mee6"},
		},
	}
	getter := func() *config.Config { return cfg }

	session := platformtest.NewSession()
	session.PutRole(guildID, &platform.Role{ID: exileRoleID, Name: "exiled"})
	session.PutRole(guildID, &platform.Role{ID: "r-verified", Name: "verified"})
	session.PutChannel(guildID, &platform.Channel{ID: noticeChan, Name: "exile-log"})
	session.PutChannel(guildID, &platform.Channel{ID: generalChan, Name: "general"})

	store := moderationtest.NewMemoryStore()
	sched := &moderationtest.ManualScheduler{}
	backend := &fakeBackend{res: translate.Result{Text: "the price will pump", Language: "Spanish"}}

	mod := moderation.New(session, store, getter, sched)
	return &testEnv{
		cfg:     cfg,
		session: session,
		store:   store,
		sched:   sched,
		backend: backend,
		h:       New(session, mod, translate.NewWithBackend("en", backend), getter),
	}
}

func (e *testEnv) member(id, name string, roles ...string) *platform.Member {
	e.session.PutMember(&platform.Member{ID: id, GuildID: guildID, Username: name, DisplayName: name, Roles: roles})
	return e.session.Snapshot(guildID, id)
}

func (e *testEnv) message(author *platform.Member, content string, mentions ...*platform.Member) *platform.Message {
	return &platform.Message{
		MessageRef: platform.MessageRef{ID: "m-" + author.ID, ChannelID: generalChan, GuildID: guildID},
		Content:    content,
		Author:     author,
		Mentions:   mentions,
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		content string
		want    string
		ok      bool
	}{
		{"!exile <@1> spam", cmdExile, true},
		{"!release <@1>", cmdRelease, true},
		{"!unexile <@1>", cmdUnexile, true},
		{"!releaseall", cmdReleaseAll, true},
		{"  !crime", cmdCrime, true},
		{"!rename <@1> Bob", cmdRename, true},
		{"!exile<@1> spam", cmdExile, true},
		{"!release<@1><@2>", cmdRelease, true},
		{"!Exile <@1>", "", false},
		{"!exiles<@1>", "", false},
		{"!exiles", "", false},
		{"exile <@1>", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := parseCommand(tt.content, "!")
		assert.Equal(t, tt.ok, ok, tt.content)
		assert.Equal(t, tt.want, got, tt.content)
	}
}

func TestExileThenCrime(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	boss := env.member(enforcerA, "boss")
	alice := env.member(aliceID, "Alice")

	require.True(t, env.h.HandleCommand(ctx, env.message(boss, "!exile <@200> spamming pump signals", alice)))

	active, prior := env.store.IsSanctioned(ctx, aliceID)
	require.True(t, active)
	assert.Equal(t, "Alice", prior)
	assert.Equal(t, "spamming pump signals", env.store.Reason(ctx, aliceID))

	require.True(t, env.h.HandleCommand(ctx, env.message(boss, "!crime <@200>", alice)))

	sends := env.session.Calls(platformtest.ActionSend)
	require.NotEmpty(t, sends)
	last := sends[len(sends)-1]
	assert.Equal(t, generalChan, last.ChannelID)
	assert.Equal(t, "The warrant for <@200> states: spamming pump signals", last.Value)
}

func TestExileMentionWithoutSpace(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	boss := env.member(enforcerA, "boss")
	alice := env.member(aliceID, "Alice")

	require.True(t, env.h.HandleCommand(ctx, env.message(boss, "!exile<@200> spam", alice)))

	active, _ := env.store.IsSanctioned(ctx, aliceID)
	require.True(t, active)
	assert.Equal(t, "spam", env.store.Reason(ctx, aliceID))
}

func TestCrimeForSelf(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	alice := env.member(aliceID, "Alice")
	bob := env.member(bobID, "Bob")
	require.NoError(t, env.store.Put(ctx, aliceID, "Alice", "being rude"))

	env.h.HandleCommand(ctx, env.message(alice, "!crime"))
	env.h.HandleCommand(ctx, env.message(bob, "!crime <@200>", alice))

	sends := env.session.Calls(platformtest.ActionSend)
	require.Len(t, sends, 2)
	assert.Equal(t, "<@200> The message scrawled across your warrant states: ```being rude```", sends[0].Value)
	assert.Equal(t, "<@201> There is no warrant out for you", sends[1].Value)
}

func TestCrimeEnforcerEmptyWarrant(t *testing.T) {
	env := newEnv(t)
	boss := env.member(enforcerA, "boss")
	alice := env.member(aliceID, "Alice")

	env.h.HandleCommand(context.Background(), env.message(boss, "!crime <@200>", alice))

	assert.Empty(t, env.session.Calls(platformtest.ActionSend))
}

func TestEnforcerCannotExileEnforcer(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	a := env.member(enforcerA, "boss")
	b := env.member(enforcerB, "chief")

	require.True(t, env.h.HandleCommand(ctx, env.message(a, "!exile <@101>", b)))

	assert.Empty(t, env.session.Calls(
		platformtest.ActionNickname,
		platformtest.ActionAddRole,
		platformtest.ActionRemoveRole,
		platformtest.ActionSend,
		platformtest.ActionReact,
	))
	assert.Empty(t, env.store.ListAll(ctx))
	// the command message is still cleaned up
	require.Len(t, env.sched.Pending(), 1)
}

func TestDrunkTankOncePerCommand(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	alice := env.member(aliceID, "Alice")
	a := env.member(enforcerA, "boss")
	b := env.member(enforcerB, "chief")

	env.h.HandleCommand(ctx, env.message(alice, "!exile <@100> <@101>", a, b))

	active, prior := env.store.IsSanctioned(ctx, aliceID)
	require.True(t, active)
	assert.Equal(t, "Alice", prior)
	for _, id := range []string{enforcerA, enforcerB} {
		active, _ := env.store.IsSanctioned(ctx, id)
		assert.False(t, active)
	}
	assert.Len(t, env.session.Calls(platformtest.ActionNickname), 1)

	var names []string
	for _, task := range env.sched.Pending() {
		names = append(names, task.Name)
	}
	assert.ElementsMatch(t, []string{"delete-message-m-200", "drunk-tank-200"}, names)

	env.sched.RunAll()

	active, _ = env.store.IsSanctioned(ctx, aliceID)
	assert.False(t, active)
	got := env.session.Snapshot(guildID, aliceID)
	assert.Equal(t, "Alice", got.DisplayName)
	assert.False(t, got.HasRole(exileRoleID))
	assert.Len(t, env.session.Calls(platformtest.ActionDelete), 1)
}

func TestClosedExileIgnoresMembers(t *testing.T) {
	env := newEnv(t)
	env.cfg.Exile.OpenExile = false
	ctx := context.Background()
	alice := env.member(aliceID, "Alice")
	bob := env.member(bobID, "Bob")

	env.h.HandleCommand(ctx, env.message(alice, "!exile <@201>", bob))

	assert.Empty(t, env.store.ListAll(ctx))
}

func TestReleaseRequiresEnforcer(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.Put(ctx, aliceID, "Alice", "spam"))
	alice := env.member(aliceID, "Inmate 12345", exileRoleID)
	bob := env.member(bobID, "Bob")

	env.h.HandleCommand(ctx, env.message(bob, "!release <@200>", alice))
	active, _ := env.store.IsSanctioned(ctx, aliceID)
	assert.True(t, active)

	boss := env.member(enforcerA, "boss")
	env.h.HandleCommand(ctx, env.message(boss, "!unexile <@200>", alice))
	active, _ = env.store.IsSanctioned(ctx, aliceID)
	assert.False(t, active)
	assert.Equal(t, "Alice", env.session.Snapshot(guildID, aliceID).DisplayName)
}

func TestReleaseAllCommand(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	boss := env.member(enforcerA, "boss")
	env.member(aliceID, "Inmate 1", exileRoleID)
	env.member(bobID, "Inmate 2", exileRoleID)
	for id, name := range map[string]string{aliceID: "Alice", bobID: "Bob", "999": "Gone"} {
		require.NoError(t, env.store.Put(ctx, id, name, ""))
	}

	require.True(t, env.h.HandleCommand(ctx, env.message(boss, "!releaseall")))

	remaining := env.store.ListAll(ctx)
	require.Len(t, remaining, 1)
	assert.Equal(t, "999", remaining[0].ID)
	assert.Len(t, env.session.Calls(platformtest.ActionNickname), 2)
	assert.Len(t, env.session.Calls(platformtest.ActionRemoveRole), 2)
	assert.Len(t, env.session.Calls(platformtest.ActionReact), 1)
}

func TestRenameCommand(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	boss := env.member(enforcerA, "boss")
	alice := env.member(aliceID, "Alice")

	env.h.HandleCommand(ctx, env.message(boss, "!rename <@200> Alice the Great", alice))

	assert.Equal(t, "Alice the Great", env.session.Snapshot(guildID, aliceID).DisplayName)
	assert.Len(t, env.session.Calls(platformtest.ActionReact), 1)

	bob := env.member(bobID, "Bob")
	env.h.HandleCommand(ctx, env.message(bob, "!rename <@200> nope", alice))
	assert.Equal(t, "Alice the Great", env.session.Snapshot(guildID, aliceID).DisplayName)
}

func TestRoleMention(t *testing.T) {
	env := newEnv(t)
	bob := env.member(bobID, "Bob")

	require.True(t, env.h.HandleCommand(context.Background(), env.message(bob, "<@&r-exile> who is in here?")))

	sends := env.session.Calls(platformtest.ActionSend)
	require.Len(t, sends, 1)
	assert.Equal(t, "https://example.com/exiled", sends[0].Value)
	assert.Empty(t, env.sched.Pending())
}

func TestRoleMentionUnknownRole(t *testing.T) {
	env := newEnv(t)
	env.cfg.Exile.RoleID = "r-deleted"
	bob := env.member(bobID, "Bob")

	assert.False(t, env.h.HandleCommand(context.Background(), env.message(bob, "<@&r-deleted> anyone?")))
	assert.Empty(t, env.session.Calls(platformtest.ActionSend))
}

func TestCommandSkips(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	boss := env.member(enforcerA, "boss")
	alice := env.member(aliceID, "Alice")

	assert.False(t, env.h.HandleCommand(ctx, env.message(boss, "hello there")))

	other := env.message(boss, "!exile <@200>", alice)
	other.GuildID = "elsewhere"
	assert.False(t, env.h.HandleCommand(ctx, other))

	bot := env.member("300", "helper")
	bot.Bot = true
	assert.False(t, env.h.HandleCommand(ctx, env.message(bot, "!exile <@200>", alice)))

	assert.Empty(t, env.session.Calls())
}

func TestCommandWithoutExileRole(t *testing.T) {
	env := newEnv(t)
	env.cfg.Exile.RoleName = "missing"
	ctx := context.Background()
	boss := env.member(enforcerA, "boss")
	alice := env.member(aliceID, "Alice")

	assert.True(t, env.h.HandleCommand(ctx, env.message(boss, "!exile <@200>", alice)))
	assert.Empty(t, env.store.ListAll(ctx))
	assert.Len(t, env.sched.Pending(), 1)
}

func TestDeleteAfterDelay(t *testing.T) {
	env := newEnv(t)
	boss := env.member(enforcerA, "boss")
	alice := env.member(aliceID, "Alice")

	env.h.HandleCommand(context.Background(), env.message(boss, "!exile <@200>", alice))

	pending := env.sched.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 5*time.Second, pending[0].Delay)
	assert.True(t, strings.HasPrefix(pending[0].Name, "delete-message-"))

	env.sched.RunAll()
	deletes := env.session.Calls(platformtest.ActionDelete)
	require.Len(t, deletes, 1)
	assert.Equal(t, generalChan, deletes[0].ChannelID)
	assert.Equal(t, "m-100", deletes[0].Value)
}
