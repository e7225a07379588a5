package apiclient

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerdex/peerdex/pkg/tracker/api"
	"github.com/peerdex/peerdex/pkg/tracker/peers"
	"github.com/peerdex/peerdex/pkg/tracker/service"
	"github.com/peerdex/peerdex/pkg/tracker/store"
)

// newTestClient spins up a real tracker on httptest and points a client
// at it, so these tests exercise both sides of the wire format.
func newTestClient(t *testing.T) *Client {
	t.Helper()

	st, err := store.New(&store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	table := peers.NewTable()
	svc := service.New(st, table, nil)

	server := httptest.NewServer(api.NewRouter(svc, st, table))
	t.Cleanup(server.Close)

	return New(server.URL)
}

func TestConnectAndDisconnect(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.Arm(10))

	sess, err := c.Connect("alice", "pw123secret", "10.0.0.1", 1052)
	require.NoError(t, err)
	assert.Equal(t, "NEW", sess.Tag)
	assert.NotEmpty(t, sess.Token)

	require.NoError(t, c.Heartbeat(sess))
	require.NoError(t, c.Disconnect(sess))

	err = c.Heartbeat(sess)
	assert.True(t, IsCredentialError(err), "got %v", err)
}

func TestConnectRefusals(t *testing.T) {
	c := newTestClient(t)

	// Unarmed tracker refuses with ERROR.
	_, err := c.Connect("alice", "pw123secret", "10.0.0.1", 1052)
	assert.True(t, HasTag(err, "ERROR"), "got %v", err)

	require.NoError(t, c.Arm(10))
	_, err = c.Connect("alice", "pw123secret", "10.0.0.1", 1052)
	require.NoError(t, err)

	// Duplicate session.
	_, err = c.Connect("alice", "pw123secret", "10.0.0.2", 1053)
	assert.True(t, HasTag(err, "COPY"), "got %v", err)
}

func TestResumeRotatesToken(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.Arm(10))

	sess, err := c.Connect("alice", "pw123secret", "10.0.0.1", 1052)
	require.NoError(t, err)
	oldToken := sess.Token

	require.NoError(t, c.Resume(sess))
	assert.NotEqual(t, oldToken, sess.Token)
	require.NoError(t, c.Heartbeat(sess))
}

func TestFileLifecycle(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.Arm(10))

	alice, err := c.Connect("alice", "pw123secret", "10.0.0.1", 1052)
	require.NoError(t, err)
	bobby, err := c.Connect("bobby", "pw456secret", "10.0.0.2", 1053)
	require.NoError(t, err)

	require.NoError(t, c.RegisterFile(alice, "report", "pdf", "/home/a/", 1024))

	files, err := c.UserFiles(alice)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "report", files[0].Name)
	assert.Equal(t, "pdf", files[0].Type)
	assert.Equal(t, "/home/a/", files[0].Path)
	assert.EqualValues(t, 1024, files[0].Size)

	results, err := c.Search(bobby, "report")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, files[0].ID, results[0].ID)

	hosts, err := c.HostInfo(bobby, results[0].ID)
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, Host{IP: "10.0.0.1", Port: 1052, Path: "/home/a/"}, hosts[0])

	require.NoError(t, c.DeregisterFile(alice, "report", "pdf", "/home/a/"))
	_, err = c.UserFiles(alice)
	assert.True(t, IsNotFound(err), "got %v", err)
	_, err = c.Search(bobby, "report")
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestRegisterRefusals(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.Arm(10))

	alice, err := c.Connect("alice", "pw123secret", "10.0.0.1", 1052)
	require.NoError(t, err)

	require.NoError(t, c.RegisterFile(alice, "report", "pdf", "/home/a/", 1024))
	err = c.RegisterFile(alice, "report", "pdf", "/home/a/", 1024)
	assert.True(t, HasTag(err, "COPY"), "got %v", err)
}
