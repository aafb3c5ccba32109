package moderation

import (
	"testing"
	"time"

	"exile-bot/internal/config"
	"exile-bot/internal/moderation/moderationtest"
	"exile-bot/internal/platform"
	"exile-bot/internal/platform/platformtest"
)

const (
	testGuild    = "g1"
	enforcerA    = "100"
	enforcerB    = "101"
	memberID     = "200"
	otherID      = "201"
	exileRoleID  = "r-exile"
	secondRoleID = "r-verified"
	noticeChanID = "c-exile"
	alertChanID  = "c-mods"
)

type fixture struct {
	cfg     *config.Config
	session *platformtest.Session
	store   *moderationtest.MemoryStore
	sched   *moderationtest.ManualScheduler
	mod     *Moderator
	scope   Scope
}

func testConfig() *config.Config {
	return &config.Config{
		Exile: config.ExileConfig{
			Trigger:        "!",
			Enforcers:      []string{enforcerA, enforcerB},
			RoleName:       "exiled",
			RemoveRoleName: "verified",
			ChannelName:    "exile-log",
			InmatePrefix:   "Inmate",
			Message:        "has been sent to exile",
			EvadeMessage:   "tried to evade exile",
			Reaction:       "🔒",
			DeleteAfter:    5 * time.Second,
			DrunkTankAfter: time.Minute,
			OpenExile:      true,
		},
		ProtectedNames: config.ProtectedNamesConfig{
			Names:          []string{"Admin", "Support"},
			Reason:         "impersonation",
			AlertRoleID:    "r-mods",
			AlertChannelID: alertChanID,
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	session := platformtest.NewSession()
	store := moderationtest.NewMemoryStore()
	sched := &moderationtest.ManualScheduler{}
	f := &fixture{
		cfg:     cfg,
		session: session,
		store:   store,
		sched:   sched,
		mod:     New(session, store, func() *config.Config { return cfg }, sched),
		scope: Scope{
			GuildID:    testGuild,
			Role:       &platform.Role{ID: exileRoleID, Name: "exiled"},
			RemoveRole: &platform.Role{ID: secondRoleID, Name: "verified"},
			Channel:    &platform.Channel{ID: noticeChanID, Name: "exile-log"},
		},
	}
	return f
}

// member registers a guild member and returns its snapshot.
func (f *fixture) member(id, name string, roles ...string) *platform.Member {
	m := &platform.Member{ID: id, GuildID: testGuild, Username: name, DisplayName: name, Roles: roles}
	f.session.PutMember(m)
	return f.session.Snapshot(testGuild, id)
}

func source() *platform.MessageRef {
	return &platform.MessageRef{ID: "m1", ChannelID: "c-general", GuildID: testGuild}
}
