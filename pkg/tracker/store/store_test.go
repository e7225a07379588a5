package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerdex/peerdex/pkg/tracker/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(&Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: ":memory:"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, name string) *models.User {
	t.Helper()

	user := &models.User{Name: name, IP: "10.0.0.1", Port: 6000}
	require.NoError(t, user.SetPassword("hunter2secret"))
	require.NoError(t, s.InsertUser(context.Background(), user))
	return user
}

func TestInsertAndFetchUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice")

	got, err := s.FetchUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, "10.0.0.1", got.IP)
	assert.Equal(t, 6000, got.Port)
	assert.True(t, got.CheckPassword("hunter2secret"))
	assert.False(t, got.CheckPassword("wrong-password"))
}

func TestInsertUserDuplicate(t *testing.T) {
	s := newTestStore(t)

	seedUser(t, s, "alice")

	again := &models.User{Name: "alice", PasswordHash: "x"}
	err := s.InsertUser(context.Background(), again)
	assert.ErrorIs(t, err, models.ErrDuplicateUser)
}

func TestFetchUserNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FetchUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestUpdateUserEndpoint(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice")

	require.NoError(t, s.UpdateUserIP(ctx, "alice", "192.168.1.7"))
	require.NoError(t, s.UpdateUserPort(ctx, "alice", 7777))

	got, err := s.FetchUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.7", got.IP)
	assert.Equal(t, 7777, got.Port)

	assert.ErrorIs(t, s.UpdateUserIP(ctx, "nobody", "1.2.3.4"), models.ErrUserNotFound)
	assert.ErrorIs(t, s.UpdateUserPort(ctx, "nobody", 1), models.ErrUserNotFound)
}

func TestRegisterFileAssignsID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice")

	file := &models.SharedFile{
		Name: "report", Type: "pdf", Path: "/srv/share/", Size: 4096, Owner: "alice",
	}
	require.NoError(t, s.RegisterFile(ctx, file))
	assert.GreaterOrEqual(t, file.ID, 0)
	assert.Less(t, file.ID, models.MaxFileID)

	inUse, err := s.FileIDInUse(ctx, file.ID)
	require.NoError(t, err)
	assert.True(t, inUse)
}

func TestRegisterFileDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice")

	file := &models.SharedFile{Name: "report", Type: "pdf", Path: "/srv/share/", Owner: "alice"}
	require.NoError(t, s.RegisterFile(ctx, file))

	dup := &models.SharedFile{Name: "report", Type: "pdf", Path: "/srv/share/", Owner: "alice"}
	assert.ErrorIs(t, s.RegisterFile(ctx, dup), models.ErrDuplicateFile)

	// Same name and type under a different path is a distinct file.
	other := &models.SharedFile{Name: "report", Type: "pdf", Path: "/tmp/", Owner: "alice"}
	assert.NoError(t, s.RegisterFile(ctx, other))
}

func TestRegisterFileQuota(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice")

	for i := 0; i < models.MaxFilesPerUser; i++ {
		file := &models.SharedFile{
			Name: fmt.Sprintf("file%d", i), Type: "txt", Path: "/srv/share/", Owner: "alice",
		}
		require.NoError(t, s.RegisterFile(ctx, file))
	}

	over := &models.SharedFile{Name: "one-too-many", Type: "txt", Path: "/srv/share/", Owner: "alice"}
	assert.ErrorIs(t, s.RegisterFile(ctx, over), models.ErrQuotaExceeded)

	count, err := s.CountFiles(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, models.MaxFilesPerUser, count)
}

func TestDeleteFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice")

	file := &models.SharedFile{Name: "report", Type: "pdf", Path: "/srv/share/", Owner: "alice"}
	require.NoError(t, s.RegisterFile(ctx, file))

	require.NoError(t, s.DeleteFile(ctx, "alice", "report", "pdf", "/srv/share/"))
	assert.ErrorIs(t, s.DeleteFile(ctx, "alice", "report", "pdf", "/srv/share/"), models.ErrFileNotFound)

	inUse, err := s.FileIDInUse(ctx, file.ID)
	require.NoError(t, err)
	assert.False(t, inUse)
}

func TestFilesOf(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice")
	seedUser(t, s, "bobby")

	require.NoError(t, s.RegisterFile(ctx, &models.SharedFile{
		Name: "song", Type: "mp3", Path: "/music/", Owner: "alice",
	}))
	require.NoError(t, s.RegisterFile(ctx, &models.SharedFile{
		Name: "movie", Type: "mkv", Path: "/video/", Owner: "bobby",
	}))

	files, err := s.FilesOf(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "song", files[0].Name)

	files, err = s.FilesOf(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSearchFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice")
	seedUser(t, s, "bobby")

	require.NoError(t, s.RegisterFile(ctx, &models.SharedFile{
		Name: "Summer_Mix", Type: "mp3", Path: "/music/", Owner: "bobby",
	}))
	require.NoError(t, s.RegisterFile(ctx, &models.SharedFile{
		Name: "notes", Type: "txt", Path: "/docs/", Owner: "bobby",
	}))
	require.NoError(t, s.RegisterFile(ctx, &models.SharedFile{
		Name: "my_mix", Type: "mp3", Path: "/music/", Owner: "alice",
	}))

	// Case-insensitive substring over the concatenated name and type.
	files, err := s.SearchFiles(ctx, "alice", "MIX")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "Summer_Mix", files[0].Name)

	// Match spanning the name/type boundary.
	files, err = s.SearchFiles(ctx, "alice", "mixmp3")
	require.NoError(t, err)
	assert.Len(t, files, 1)

	// The requester's own rows never surface.
	files, err = s.SearchFiles(ctx, "bobby", "mix")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "my_mix", files[0].Name)

	files, err = s.SearchFiles(ctx, "alice", "no-such-thing")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSearchFilesLiteralMetacharacters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice")
	seedUser(t, s, "bobby")

	require.NoError(t, s.RegisterFile(ctx, &models.SharedFile{
		Name: "my_song", Type: "mp3", Path: "/music/", Owner: "bobby",
	}))
	require.NoError(t, s.RegisterFile(ctx, &models.SharedFile{
		Name: "mysong", Type: "mp3", Path: "/music/", Owner: "bobby",
	}))
	require.NoError(t, s.RegisterFile(ctx, &models.SharedFile{
		Name: "50%off", Type: "txt", Path: "/docs/", Owner: "bobby",
	}))

	// An underscore in the query is a literal underscore, not any-char.
	files, err := s.SearchFiles(ctx, "alice", "y_s")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "my_song", files[0].Name)

	// A percent sign is a literal percent sign, not match-anything.
	files, err = s.SearchFiles(ctx, "alice", "%")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "50%off", files[0].Name)

	files, err = s.SearchFiles(ctx, "alice", "0%o")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestHostsOf(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice")
	bob := seedUser(t, s, "bobby")
	require.NoError(t, s.UpdateUserIP(ctx, "bobby", "10.0.0.2"))
	require.NoError(t, s.UpdateUserPort(ctx, "bobby", 6200))

	file := &models.SharedFile{Name: "song", Type: "mp3", Path: "/music/", Owner: bob.Name}
	require.NoError(t, s.RegisterFile(ctx, file))

	hosts, err := s.HostsOf(ctx, "alice", file.ID)
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, "bobby", hosts[0].Owner)
	assert.Equal(t, "10.0.0.2", hosts[0].IP)
	assert.Equal(t, 6200, hosts[0].Port)
	assert.Equal(t, "/music/", hosts[0].Path)

	// Requesting your own file yields nothing.
	hosts, err = s.HostsOf(ctx, "bobby", file.ID)
	require.NoError(t, err)
	assert.Empty(t, hosts)

	hosts, err = s.HostsOf(ctx, "alice", 999999)
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestUnavailableStoreFailsFast(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.available.Store(false)

	_, err := s.FetchUser(ctx, "alice")
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)

	err = s.RegisterFile(ctx, &models.SharedFile{Name: "x", Type: "t", Path: "/p", Owner: "alice"})
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)

	s.available.Store(true)
	_, err = s.FetchUser(ctx, "alice")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestHealthcheck(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Healthcheck(context.Background()))
}
