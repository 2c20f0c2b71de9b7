package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/incident-analytics-service/internal/adapter/http"
	"github.com/couchcryptid/incident-analytics-service/internal/analytics"
	"github.com/couchcryptid/incident-analytics-service/internal/pipeline"
)

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) pipeline.Snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var snap pipeline.Snapshot
	require.NoError(t, json.Unmarshal(msg, &snap))
	return snap
}

func TestHub_SendsCurrentSnapshotThenUpdates(t *testing.T) {
	p := newPipeline(t, true)
	hub := httpadapter.NewHub(p.Dashboard, []string{"*"}, discardLogger())
	srv := httptest.NewServer(httpadapter.NewServer(":0", p, hub, []string{"*"}, discardLogger()))
	defer srv.Close()

	conn := dial(t, srv, nil)

	first := readSnapshot(t, conn)
	current, err := p.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, current.ID, first.ID)
	assert.Equal(t, 1, hub.Clients())

	next := pipeline.Snapshot{ID: "next", Filter: analytics.AllIncidents(), Records: 7}
	require.NoError(t, hub.Publish(context.Background(), next))

	got := readSnapshot(t, conn)
	assert.Equal(t, "next", got.ID)
	assert.Equal(t, 7, got.Records)
}

func TestHub_NoSnapshotBeforeLoad(t *testing.T) {
	p := newPipeline(t, false)
	hub := httpadapter.NewHub(p.Dashboard, []string{"*"}, discardLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hub.Publish(context.Background(), pipeline.Snapshot{ID: "first"}))
	assert.Equal(t, "first", readSnapshot(t, conn).ID)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	p := newPipeline(t, true)
	hub := httpadapter.NewHub(p.Dashboard, []string{"*"}, discardLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	readSnapshot(t, conn)
	require.Equal(t, 1, hub.Clients())

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	p := newPipeline(t, true)
	hub := httpadapter.NewHub(p.Dashboard, []string{"https://dashboard.example.com"}, discardLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": {"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHub_AsPipelineSink(t *testing.T) {
	p := newPipeline(t, false)
	hub := httpadapter.NewHub(p.Dashboard, []string{"*"}, discardLogger())
	p.Subscribe(hub)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, p.Load(context.Background()))
	snap := readSnapshot(t, conn)
	assert.Equal(t, 3, snap.Records)
}
