// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func dialWS(t *testing.T, h *Hub, query string) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(ServeWS(h, nil))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return h.Len() == 1 }, 2*time.Second, 5*time.Millisecond)
	return conn
}

func TestServeWS_StreamsEvents(t *testing.T) {
	h := NewHub(nil)
	conn := dialWS(t, h, "")

	h.Publish(types.ProgressEvent{RunID: "a", Stage: types.StageStarting, Message: "Starting", Progress: 0})
	h.Publish(types.ProgressEvent{RunID: "b", Stage: types.StageResearch, Message: "Researching", Progress: 40})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first, second types.ProgressEvent
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))

	assert.Equal(t, types.StageStarting, first.Stage)
	assert.Equal(t, "b", second.RunID)
	assert.Equal(t, 40, second.Progress)
}

func TestServeWS_RunFilter(t *testing.T) {
	h := NewHub(nil)
	conn := dialWS(t, h, "?run_id=wanted")

	h.Publish(types.ProgressEvent{RunID: "other", Stage: types.StageStarting})
	h.Publish(types.ProgressEvent{RunID: "wanted", Stage: types.StageComplete, Progress: 100})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev types.ProgressEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "wanted", ev.RunID)
	assert.Equal(t, types.StageComplete, ev.Stage)
}

func TestServeWS_UnsubscribesOnDisconnect(t *testing.T) {
	h := NewHub(nil)
	conn := dialWS(t, h, "")

	conn.Close()
	assert.Eventually(t, func() bool { return h.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestServeWS_HubClose(t *testing.T) {
	h := NewHub(nil)
	conn := dialWS(t, h, "")

	h.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
