package moderation

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// InmateName returns "<prefix> N" with N uniform in [10000, 99999]. Names
// are regenerated on every exile and may collide.
func InmateName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, 10000+rand.IntN(90000))
}

// MatchProtectedName returns the first entry of names found in displayName,
// ignoring case, or "" if none match.
func MatchProtectedName(displayName string, names []string) string {
	lower := strings.ToLower(displayName)
	for _, n := range names {
		if n == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(n)) {
			return n
		}
	}
	return ""
}
