package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/testutil"
	"github.com/MeKo-Tech/seglabel/internal/workspace"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// newTestServer serves a folder of two 100x100 images on a 100x100 surface
// with classes a, b and c.
func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := testutil.NewImageFolder(t,
		testutil.ImageSpec{Name: "one.png", Width: 100, Height: 100},
		testutil.ImageSpec{Name: "two.png", Width: 100, Height: 100},
	)
	classes, err := annotation.NewClassList("a", "b", "c")
	require.NoError(t, err)
	ws := workspace.New(classes, workspace.Options{
		SurfaceWidth:  100,
		SurfaceHeight: 100,
		Hooks:         MetricsHooks(workspace.Hooks{}),
	})
	require.NoError(t, ws.Open(dir))
	return NewServer(ws, Config{Version: "test"}), dir
}

// postEvent sends msg to /api/event and decodes the reply.
func postEvent(t *testing.T, h http.Handler, msg ClientMessage) (int, ServerMessage) {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/event", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var reply ServerMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	return rec.Code, reply
}

// mockConn records written messages.
type mockConn struct {
	messages [][]byte
}

func (m *mockConn) WriteMessage(_ int, data []byte) error {
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockConn) last(t *testing.T) ServerMessage {
	t.Helper()
	require.NotEmpty(t, m.messages)
	var msg ServerMessage
	require.NoError(t, json.Unmarshal(m.messages[len(m.messages)-1], &msg))
	return msg
}

func readMessage(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}
