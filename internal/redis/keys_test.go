package redisx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeysAreNamespaced(t *testing.T) {
	keys := []string{
		KeyOccupancy(),
		KeySubscriptionStats(),
		KeySeatMap(),
		KeyRateLimit("ip", "10.0.0.1"),
		ChannelAttendanceChanged(),
	}

	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		require.Contains(t, k, "studyhall:v1")
		_, dup := seen[k]
		require.False(t, dup, "duplicate key %q", k)
		seen[k] = struct{}{}
	}
}

func TestKeyRateLimitScopes(t *testing.T) {
	require.NotEqual(t, KeyRateLimit("ip", "a"), KeyRateLimit("member", "a"))
	require.NotEqual(t, KeyRateLimit("ip", "a"), KeyRateLimit("ip", "b"))
}
