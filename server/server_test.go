package server_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-engine/scenecore"
	"github.com/vibe-engine/scenecore/server"
	"github.com/vibe-engine/scenecore/types"
)

func newServerForTest(t *testing.T) (*scenecore.World, *server.Server) {
	t.Helper()
	w, err := scenecore.NewWorld(scenecore.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return w, server.New(w)
}

func doRequest[T any](t *testing.T, srv *server.Server, method, target string) (int, T) {
	t.Helper()
	resp, err := srv.App().Test(httptest.NewRequest(method, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	w, srv := newServerForTest(t)
	_, err := w.Entities.Create("A", types.InvalidEntityID)
	require.NoError(t, err)

	code, health := doRequest[server.HealthResponse](t, srv, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, health.IsServerRunning)
	assert.False(t, health.HasSnapshot)
	assert.Equal(t, 1, health.TotalEntities)
}

func TestDebugStateListsEntitiesAndComponents(t *testing.T) {
	w, srv := newServerForTest(t)
	a, err := w.Entities.Create("A", types.InvalidEntityID)
	require.NoError(t, err)
	require.NoError(t, w.Components.AddComponent(a.ID, "Transform",
		map[string]any{"position": []any{1.0, 2.0, 3.0}}))
	_, err = w.Entities.Create("B", types.InvalidEntityID)
	require.NoError(t, err)

	code, state := doRequest[types.EntityStateResponse](t, srv, http.MethodGet, "/debug/state")
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, state, 2)
	assert.Equal(t, "A", state[0].Name)
	assert.Contains(t, state[0].Components, "Transform")
	assert.Empty(t, state[1].Components)
}

func TestPrefabsEndpoint(t *testing.T) {
	w, srv := newServerForTest(t)
	root, err := w.Entities.Create("crate", types.InvalidEntityID)
	require.NoError(t, err)
	_, err = w.Prefabs.CreateFromEntity(root.ID, "Crate", "crate")
	require.NoError(t, err)

	code, defs := doRequest[[]map[string]any](t, srv, http.MethodGet, "/prefabs")
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, defs, 1)
	assert.Equal(t, "crate", defs[0]["id"])
}

func TestPlayLifecycleOverHTTP(t *testing.T) {
	w, srv := newServerForTest(t)
	a, err := w.Entities.Create("A", types.InvalidEntityID)
	require.NoError(t, err)

	code, play := doRequest[server.PlayResponse](t, srv, http.MethodPost, "/play/start")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "playing", play.Status)

	code, health := doRequest[server.HealthResponse](t, srv, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, health.HasSnapshot)

	require.NoError(t, w.Entities.Rename(a.ID, "mutated"))

	code, play = doRequest[server.PlayResponse](t, srv, http.MethodPost, "/play/stop")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "stopped", play.Status)
	assert.Equal(t, "A", w.Entities.GetEntity(a.ID).Name)
}

func TestPlayStopWithoutStartFails(t *testing.T) {
	_, srv := newServerForTest(t)
	resp, err := srv.App().Test(httptest.NewRequest(http.MethodPost, "/play/stop", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
