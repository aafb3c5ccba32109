package moderation

import (
	"context"
	"strings"
	"testing"

	"exile-bot/internal/moderation/moderationtest"
	"exile-bot/internal/platform/platformtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExileCompletes(t *testing.T) {
	f := newFixture(t)
	target := f.member(memberID, "alice", secondRoleID)

	out := f.mod.Exile(context.Background(), f.scope, ExileRequest{
		Actor:  "boss",
		Target: target,
		Reason: "spamming links",
		Source: source(),
	})

	require.True(t, out.Completed())
	require.NoError(t, out.Err)

	got := f.session.Snapshot(testGuild, memberID)
	assert.True(t, strings.HasPrefix(got.DisplayName, "Inmate "))
	assert.True(t, got.HasRole(exileRoleID))
	assert.False(t, got.HasRole(secondRoleID))

	active, prior := f.store.IsSanctioned(context.Background(), memberID)
	assert.True(t, active)
	assert.Equal(t, "alice", prior)
	assert.Equal(t, "spamming links", f.store.Reason(context.Background(), memberID))

	sends := f.session.Calls(platformtest.ActionSend)
	require.Len(t, sends, 1)
	assert.Equal(t, noticeChanID, sends[0].ChannelID)
	assert.Equal(t, "<@200> has been sent to exile", sends[0].Value)

	reacts := f.session.Calls(platformtest.ActionReact)
	require.Len(t, reacts, 1)
	assert.Equal(t, "🔒", reacts[0].Value)
}

func TestExileStepOrder(t *testing.T) {
	f := newFixture(t)
	target := f.member(memberID, "alice")

	out := f.mod.Exile(context.Background(), f.scope, ExileRequest{Actor: "boss", Target: target, Source: source()})

	var states []State
	for _, s := range out.Steps {
		states = append(states, s.State)
	}
	assert.Equal(t, []State{
		StateRenamed,
		StateRoleGranted,
		StateSecondaryRoleRevoked,
		StatePersisted,
		StateNotified,
		StateAcknowledged,
	}, states)
}

func TestExilePersistFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.store.FailPut = true
	target := f.member(memberID, "alice")

	out := f.mod.Exile(context.Background(), f.scope, ExileRequest{Actor: "boss", Target: target, Source: source()})

	assert.Equal(t, StateAborted, out.Final)
	assert.ErrorIs(t, out.Err, moderationtest.ErrStoreUnavailable)

	// changes made before the persist stay in place
	assert.True(t, f.session.Snapshot(testGuild, memberID).HasRole(exileRoleID))
	assert.Empty(t, f.session.Calls(platformtest.ActionSend))
	assert.Empty(t, f.session.Calls(platformtest.ActionReact))

	_, ran := out.Result(StateNotified)
	assert.False(t, ran)
}

func TestExilePlatformFailuresAreNotFatal(t *testing.T) {
	f := newFixture(t)
	f.session.FailOn(platformtest.ActionNickname)
	f.session.FailOn(platformtest.ActionAddRole)
	target := f.member(memberID, "alice")

	out := f.mod.Exile(context.Background(), f.scope, ExileRequest{Actor: "boss", Target: target, Source: source()})

	assert.True(t, out.Completed())
	res, _ := out.Result(StateRenamed)
	assert.Equal(t, StepFailed, res)
	res, _ = out.Result(StateRoleGranted)
	assert.Equal(t, StepFailed, res)

	active, prior := f.store.IsSanctioned(context.Background(), memberID)
	assert.True(t, active)
	assert.Equal(t, "alice", prior)
	assert.Len(t, f.session.Calls(platformtest.ActionReact), 1)
}

func TestExileWithoutSecondaryRoleOrSource(t *testing.T) {
	f := newFixture(t)
	f.scope.RemoveRole = nil
	target := f.member(memberID, "alice")

	out := f.mod.Exile(context.Background(), f.scope, ExileRequest{Actor: "guard", Target: target})

	assert.True(t, out.Completed())
	res, _ := out.Result(StateSecondaryRoleRevoked)
	assert.Equal(t, StepSkipped, res)
	res, _ = out.Result(StateAcknowledged)
	assert.Equal(t, StepSkipped, res)
	assert.Empty(t, f.session.Calls(platformtest.ActionRemoveRole))
}

func TestReExileReplacesRecord(t *testing.T) {
	f := newFixture(t)
	target := f.member(memberID, "alice")
	ctx := context.Background()

	require.True(t, f.mod.Exile(ctx, f.scope, ExileRequest{Actor: "boss", Target: target, Reason: "first"}).Completed())

	again := f.session.Snapshot(testGuild, memberID)
	require.True(t, strings.HasPrefix(again.DisplayName, "Inmate "))
	require.True(t, f.mod.Exile(ctx, f.scope, ExileRequest{Actor: "boss", Target: again, Reason: "second"}).Completed())

	_, prior := f.store.IsSanctioned(ctx, memberID)
	assert.Equal(t, again.DisplayName, prior)
	assert.Equal(t, "second", f.store.Reason(ctx, memberID))
	assert.Len(t, f.store.ListAll(ctx), 1)
}

func TestExileCustomNotice(t *testing.T) {
	f := newFixture(t)
	target := f.member(memberID, "alice")

	f.mod.Exile(context.Background(), f.scope, ExileRequest{Actor: "boss", Target: target, Notice: "see you later"})

	sends := f.session.Calls(platformtest.ActionSend)
	require.Len(t, sends, 1)
	assert.Equal(t, "<@200> see you later", sends[0].Value)
}

func TestDrunkTank(t *testing.T) {
	f := newFixture(t)
	actor := f.member(memberID, "bob", secondRoleID)
	ctx := context.Background()

	out := f.mod.DrunkTank(ctx, f.scope, actor, "tried it", source())
	require.True(t, out.Completed())

	active, prior := f.store.IsSanctioned(ctx, memberID)
	require.True(t, active)
	assert.Equal(t, "bob", prior)

	pending := f.sched.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "drunk-tank-"+memberID, pending[0].Name)
	assert.Equal(t, f.cfg.Exile.DrunkTankAfter, pending[0].Delay)

	f.sched.RunAll()

	active, _ = f.store.IsSanctioned(ctx, memberID)
	assert.False(t, active)
	got := f.session.Snapshot(testGuild, memberID)
	assert.Equal(t, "bob", got.DisplayName)
	assert.False(t, got.HasRole(exileRoleID))
	// the release has no message to acknowledge
	assert.Len(t, f.session.Calls(platformtest.ActionReact), 1)
}

func TestDrunkTankScheduledAfterAbort(t *testing.T) {
	f := newFixture(t)
	f.store.FailPut = true
	actor := f.member(memberID, "bob")

	out := f.mod.DrunkTank(context.Background(), f.scope, actor, "", source())

	assert.False(t, out.Completed())
	assert.Len(t, f.sched.Pending(), 1)
}

func TestDrunkTankReleaseAfterActorLeft(t *testing.T) {
	f := newFixture(t)
	actor := f.member(memberID, "bob")
	ctx := context.Background()

	f.mod.DrunkTank(ctx, f.scope, actor, "", nil)
	f.session.RemoveMember(testGuild, memberID)
	f.sched.RunAll()

	active, _ := f.store.IsSanctioned(ctx, memberID)
	assert.False(t, active)

	revokes := f.session.Calls(platformtest.ActionRemoveRole)
	require.NotEmpty(t, revokes)
	assert.Equal(t, memberID, revokes[len(revokes)-1].UserID)
}
