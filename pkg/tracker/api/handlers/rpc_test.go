package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerdex/peerdex/pkg/tracker/peers"
	"github.com/peerdex/peerdex/pkg/tracker/service"
	"github.com/peerdex/peerdex/pkg/tracker/store"
)

type testAPI struct {
	router http.Handler
	svc    *service.Service
	table  *peers.Table
	st     *store.Store
}

func newTestAPI(t *testing.T, capacity int) *testAPI {
	t.Helper()

	st, err := store.New(&store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	table := peers.NewTable()
	svc := service.New(st, table, nil)
	if capacity > 0 {
		require.NoError(t, svc.Arm(capacity))
	}

	r := chi.NewRouter()
	rpc := NewRPCHandler(svc)
	r.Post("/api/v1/rpc/{operation}", rpc.Handle)

	health := NewHealthHandler(svc, st)
	r.Get("/health", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	admin := NewAdminHandler(svc, table)
	r.Post("/admin/capacity", admin.SetCapacity)
	r.Get("/admin/status", admin.Status)

	return &testAPI{router: r, svc: svc, table: table, st: st}
}

// rpc posts one operation and decodes the outcome array.
func (a *testAPI) rpc(t *testing.T, operation string, body any) []string {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rpc/"+operation, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out)
	return out
}

func (a *testAPI) login(t *testing.T, name string) string {
	t.Helper()

	out := a.rpc(t, "connectToServer", map[string]any{
		"name": name, "password": "pw123secret", "ip": "10.0.0.1", "port": 1052,
	})
	require.Equal(t, service.TagNew, out[0])
	require.Len(t, out, 2)
	return out[1]
}

func TestConnectToServer(t *testing.T) {
	a := newTestAPI(t, 3)

	out := a.rpc(t, "connectToServer", map[string]any{
		"name": "alice", "password": "pw123secret", "ip": "10.0.0.1", "port": 1052,
	})
	assert.Equal(t, service.TagNew, out[0])
	assert.Len(t, out, 2)
	assert.NotEmpty(t, out[1])
}

func TestConnectValidation(t *testing.T) {
	a := newTestAPI(t, 3)

	// Name below the minimum length never reaches the service.
	out := a.rpc(t, "connectToServer", map[string]any{
		"name": "al", "password": "pw123secret", "ip": "10.0.0.1", "port": 1052,
	})
	assert.Equal(t, service.TagError, out[0])

	// Password below the minimum length.
	out = a.rpc(t, "connectToServer", map[string]any{
		"name": "alice", "password": "pw", "ip": "10.0.0.1", "port": 1052,
	})
	assert.Equal(t, service.TagError, out[0])

	// Port above the cap.
	out = a.rpc(t, "connectToServer", map[string]any{
		"name": "alice", "password": "pw123secret", "ip": "10.0.0.1", "port": 70000,
	})
	assert.Equal(t, service.TagError, out[0])
}

func TestMalformedBody(t *testing.T) {
	a := newTestAPI(t, 3)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rpc/connectToServer",
		bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, service.TagError, out[0])
}

func TestUnknownOperation(t *testing.T) {
	a := newTestAPI(t, 3)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rpc/nonsense",
		bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterSearchFlow(t *testing.T) {
	a := newTestAPI(t, 3)

	aliceToken := a.login(t, "alice")
	out := a.rpc(t, "registerFile", map[string]any{
		"token": aliceToken, "name": "alice",
		"file_name": "report", "file_type": "pdf", "file_path": "/home/a/", "file_size": 1024,
	})
	require.Equal(t, service.TagOK, out[0])

	bobToken := a.login(t, "bobby")
	out = a.rpc(t, "searchFile", map[string]any{
		"token": bobToken, "name": "bobby", "query": "report",
	})
	require.Equal(t, service.TagOK, out[0])
	require.Len(t, out, 5)
	fileID := out[1]

	out = a.rpc(t, "getFileHostInfo", map[string]any{
		"token": bobToken, "name": "bobby", "file_id": mustAtoi(t, fileID),
	})
	require.Equal(t, service.TagOK, out[0])
	assert.Equal(t, []string{"10.0.0.1", "1052", "/home/a/"}, out[1:])

	out = a.rpc(t, "disconnectFromServer", map[string]any{
		"token": aliceToken, "name": "alice",
	})
	require.Equal(t, service.TagOK, out[0])

	out = a.rpc(t, "searchFile", map[string]any{
		"token": bobToken, "name": "bobby", "query": "report",
	})
	assert.Equal(t, service.TagNotFound, out[0])
}

func TestHeartbeatAndResume(t *testing.T) {
	a := newTestAPI(t, 3)

	token := a.login(t, "alice")

	out := a.rpc(t, "sendHeartBeat", map[string]any{"token": token, "name": "alice"})
	assert.Equal(t, service.TagOK, out[0])

	out = a.rpc(t, "resumeSession", map[string]any{
		"token": token, "name": "alice", "ip": "10.0.0.1", "port": 1052,
	})
	require.Equal(t, service.TagOK, out[0])
	require.Len(t, out, 2)
	assert.NotEqual(t, token, out[1])

	// The pre-rotation token is gone.
	out = a.rpc(t, "sendHeartBeat", map[string]any{"token": token, "name": "alice"})
	assert.Equal(t, service.TagCred, out[0])
}

func TestNotReadyUntilArmed(t *testing.T) {
	a := newTestAPI(t, 0)

	out := a.rpc(t, "connectToServer", map[string]any{
		"name": "alice", "password": "pw123secret", "ip": "10.0.0.1", "port": 1052,
	})
	assert.Equal(t, service.TagError, out[0])

	// Readiness agrees.
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// Arm through the admin endpoint and retry.
	body := bytes.NewReader([]byte(`{"max_users": 3}`))
	req = httptest.NewRequest(http.MethodPost, "/admin/capacity", body)
	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	out = a.rpc(t, "connectToServer", map[string]any{
		"name": "alice", "password": "pw123secret", "ip": "10.0.0.1", "port": 1052,
	})
	assert.Equal(t, service.TagNew, out[0])

	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminCapacityRange(t *testing.T) {
	a := newTestAPI(t, 0)

	for _, payload := range []string{`{"max_users": 0}`, `{"max_users": 101}`, `{"max_users": -1}`} {
		req := httptest.NewRequest(http.MethodPost, "/admin/capacity",
			bytes.NewReader([]byte(payload)))
		rec := httptest.NewRecorder()
		a.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "payload %s", payload)
	}
}

func TestLiveness(t *testing.T) {
	a := newTestAPI(t, 0)

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
