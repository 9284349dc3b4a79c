package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/editor"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketSession(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	_ = resp.Body.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	initial := readMessage(t, conn)
	assert.Equal(t, MessageScene, initial.Type)
	require.NotNil(t, initial.State)
	assert.Equal(t, "one.png", initial.State.Image)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "pointer_down", X: 10, Y: 10}))
	msg := readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	assert.Equal(t, ErrorPrecondition, msg.ErrorType)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "key", Key: "1"}))
	assert.Equal(t, 0, readMessage(t, conn).State.Armed)

	for _, p := range [][2]float64{{10, 10}, {50, 10}, {50, 50}} {
		require.NoError(t, conn.WriteJSON(ClientMessage{Type: "pointer_down", X: p[0], Y: p[1]}))
		readMessage(t, conn)
	}
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "double", X: 50, Y: 50}))
	msg = readMessage(t, conn)
	require.Equal(t, MessageScene, msg.Type)
	assert.Equal(t, annotation.NoID, msg.State.Scene.Selected)
	assert.Equal(t, editor.ShapePolygon, msg.State.Scene.Shapes[0].Kind)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg = readMessage(t, conn)
	assert.Equal(t, ErrorInvalidRequest, msg.ErrorType)
}

func TestHandleWebSocketMessage_Quiet(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := &mockConn{}

	srv.handleWebSocketMessage(context.Background(), conn, []byte(`{"type":"pointer_move","x":5,"y":5}`))
	assert.Empty(t, conn.messages)

	srv.handleWebSocketMessage(context.Background(), conn, []byte(`{"type":"modifier","held":true}`))
	srv.handleWebSocketMessage(context.Background(), conn, []byte(`{"type":"command","command":"toggle_mode"}`))
	assert.Equal(t, "freehand", conn.last(t).State.Mode)
}
