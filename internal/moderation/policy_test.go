package moderation

import (
	"regexp"
	"testing"

	"exile-bot/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestDecideExile(t *testing.T) {
	tests := []struct {
		name   string
		actor  string
		target string
		open   bool
		want   ExileDecision
	}{
		{"enforcer on member", enforcerA, memberID, true, ExileTarget},
		{"enforcer on enforcer", enforcerA, enforcerB, true, ExileIgnore},
		{"enforcer on self", enforcerA, enforcerA, true, ExileIgnore},
		{"member on enforcer", memberID, enforcerA, true, ExileDrunkTank},
		{"member on member", memberID, otherID, true, ExileTarget},
		{"member on member closed", memberID, otherID, false, ExileIgnore},
		{"member on enforcer closed", memberID, enforcerB, false, ExileDrunkTank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Exile.OpenExile = tt.open
			p := NewPolicy(func() *config.Config { return cfg })
			assert.Equal(t, tt.want, p.DecideExile(tt.actor, tt.target))
		})
	}
}

func TestPolicyFollowsLiveConfig(t *testing.T) {
	cfg := testConfig()
	p := NewPolicy(func() *config.Config { return cfg })

	assert.False(t, p.CanRelease(memberID))
	cfg = testConfig()
	cfg.Exile.Enforcers = append(cfg.Exile.Enforcers, memberID)
	assert.True(t, p.CanRelease(memberID))
	assert.True(t, p.CanRename(memberID))
	assert.True(t, p.CanQueryReason(otherID))
}

func TestInmateName(t *testing.T) {
	re := regexp.MustCompile(`^Inmate [1-9]\d{4}$`)
	for range 200 {
		assert.Regexp(t, re, InmateName("Inmate"))
	}
}

func TestMatchProtectedName(t *testing.T) {
	names := []string{"", "Admin", "Support"}
	assert.Equal(t, "Admin", MatchProtectedName("the ADMIN", names))
	assert.Equal(t, "Support", MatchProtectedName("support-bot", names))
	assert.Equal(t, "", MatchProtectedName("alice", names))
	assert.Equal(t, "", MatchProtectedName("alice", nil))
}
