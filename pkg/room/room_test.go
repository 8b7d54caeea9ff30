package room

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"u1", "u2"},
		{"alice", "bob"},
		{"65f0c2", "0a9b31"},
		{"z", "a"},
	}
	for _, p := range pairs {
		assert.Equal(t, Resolve(p[0], p[1]), Resolve(p[1], p[0]), "pair %v", p)
	}
}

func TestResolve_DistinctPairsDistinctTokens(t *testing.T) {
	seen := make(map[string][2]string)
	for i := 0; i < 50; i++ {
		for j := i + 1; j < 50; j++ {
			a, b := fmt.Sprintf("user%d", i), fmt.Sprintf("user%d", j)
			token := Resolve(a, b)
			prev, dup := seen[token]
			require.False(t, dup, "token %q produced by both %v and (%s,%s)", token, prev, a, b)
			seen[token] = [2]string{a, b}
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	token := Resolve("u2", "u1")
	a, b, err := Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", a)
	assert.Equal(t, "u2", b)
}

func TestParse_RejectsMalformed(t *testing.T) {
	for _, token := range []string{
		"",
		"general",
		"dm:",
		"dm:u1",
		"dm:u1:",
		"dm::u2",
		"dm:u2:u1", // unsorted, Resolve never emits this
		"room:u1:u2",
		"dm:u1:u2:u3",
	} {
		_, _, err := Parse(token)
		require.ErrorIs(t, err, ErrInvalidRoom, "token %q", token)
	}
}

func TestHasParticipant(t *testing.T) {
	token := Resolve("u1", "u2")
	assert.True(t, HasParticipant(token, "u1"))
	assert.True(t, HasParticipant(token, "u2"))
	assert.False(t, HasParticipant(token, "u3"))
	assert.False(t, HasParticipant("not-a-room", "u1"))
}
