package peers

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func armedTable(t *testing.T, capacity int) *Table {
	t.Helper()
	tab := NewTable()
	require.NoError(t, tab.Arm(capacity))
	return tab
}

func TestUnarmedTableRejectsLogins(t *testing.T) {
	tab := NewTable()

	assert.False(t, tab.Ready())
	_, err := tab.Add("alice", "10.0.0.1", 6000)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestArmCapacityRange(t *testing.T) {
	tab := NewTable()

	assert.ErrorIs(t, tab.Arm(0), ErrCapacityRange)
	assert.ErrorIs(t, tab.Arm(-3), ErrCapacityRange)
	assert.ErrorIs(t, tab.Arm(101), ErrCapacityRange)

	assert.NoError(t, tab.Arm(1))
	assert.NoError(t, tab.Arm(100))
	assert.True(t, tab.Ready())
	assert.Equal(t, 100, tab.Capacity())
}

func TestAddIssuesHexToken(t *testing.T) {
	tab := armedTable(t, 10)

	token, err := tab.Add("alice", "10.0.0.1", 6000)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), token)

	s, ok := tab.Get("alice")
	require.True(t, ok)
	assert.Equal(t, token, s.Token)
	assert.Equal(t, "10.0.0.1", s.IP)
	assert.Equal(t, 6000, s.Port)
}

func TestAddDuplicateAndFull(t *testing.T) {
	tab := armedTable(t, 2)

	_, err := tab.Add("alice", "10.0.0.1", 6000)
	require.NoError(t, err)

	_, err = tab.Add("alice", "10.0.0.9", 6001)
	assert.ErrorIs(t, err, ErrSessionExists)

	_, err = tab.Add("bobby", "10.0.0.2", 6002)
	require.NoError(t, err)

	_, err = tab.Add("carol", "10.0.0.3", 6003)
	assert.ErrorIs(t, err, ErrTableFull)
	assert.Equal(t, 2, tab.Len())
}

func TestRemoveRequiresMatchingToken(t *testing.T) {
	tab := armedTable(t, 10)

	token, err := tab.Add("alice", "10.0.0.1", 6000)
	require.NoError(t, err)

	assert.False(t, tab.Remove("alice", "bogus"))
	assert.True(t, tab.IsLive("alice"))

	assert.True(t, tab.Remove("alice", token))
	assert.False(t, tab.IsLive("alice"))
	assert.False(t, tab.Remove("alice", token))
}

func TestVerifyAndTouch(t *testing.T) {
	tab := armedTable(t, 10)

	token, err := tab.Add("alice", "10.0.0.1", 6000)
	require.NoError(t, err)

	assert.True(t, tab.VerifyActive("alice", token))
	assert.False(t, tab.VerifyActive("alice", "bogus"))
	assert.False(t, tab.VerifyActive("bobby", token))

	before, _ := tab.Get("alice")
	time.Sleep(5 * time.Millisecond)
	require.True(t, tab.Touch("alice", token))
	after, _ := tab.Get("alice")
	assert.True(t, after.LastActive.After(before.LastActive))

	assert.False(t, tab.Touch("alice", "bogus"))
}

func TestRotateSwapsTokenAndEndpoint(t *testing.T) {
	tab := armedTable(t, 10)

	token, err := tab.Add("alice", "10.0.0.1", 6000)
	require.NoError(t, err)

	fresh, err := tab.Rotate("alice", token, "192.168.1.5", 7000)
	require.NoError(t, err)
	assert.NotEqual(t, token, fresh)

	// The old token is dead, the new one works.
	assert.False(t, tab.VerifyActive("alice", token))
	assert.True(t, tab.VerifyActive("alice", fresh))

	s, _ := tab.Get("alice")
	assert.Equal(t, "192.168.1.5", s.IP)
	assert.Equal(t, 7000, s.Port)

	_, err = tab.Rotate("alice", token, "192.168.1.5", 7000)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = tab.Rotate("nobody", fresh, "192.168.1.5", 7000)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSweepIdle(t *testing.T) {
	tab := armedTable(t, 10)

	_, err := tab.Add("alice", "10.0.0.1", 6000)
	require.NoError(t, err)
	bobToken, err := tab.Add("bobby", "10.0.0.2", 6001)
	require.NoError(t, err)

	// Backdate alice past the threshold.
	tab.mu.Lock()
	tab.sessions["alice"].LastActive = time.Now().Add(-3 * time.Minute)
	tab.mu.Unlock()

	evicted := tab.SweepIdle(time.Now(), 2*time.Minute)
	require.Len(t, evicted, 1)
	assert.Equal(t, "alice", evicted[0].Name)

	assert.False(t, tab.IsLive("alice"))
	assert.True(t, tab.VerifyActive("bobby", bobToken))

	assert.Empty(t, tab.SweepIdle(time.Now(), 2*time.Minute))
}

func TestSnapshotIsACopy(t *testing.T) {
	tab := armedTable(t, 10)

	_, err := tab.Add("alice", "10.0.0.1", 6000)
	require.NoError(t, err)

	snap := tab.Snapshot()
	require.Len(t, snap, 1)
	snap[0].IP = "mutated"

	s, _ := tab.Get("alice")
	assert.Equal(t, "10.0.0.1", s.IP)
}
