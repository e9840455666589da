package stream

import (
	"bufio"
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

	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
	"github.com/mcoot/hiddengrid/internal/testutil"
)

func testEvent(seq int64, playerID model.PlayerID) *model.Event {
	var x, y fhe.Handle
	x[0], y[0] = 1, 2
	return &model.Event{
		Seq:       seq,
		ID:        "evt",
		Type:      model.EventPlayerMoved,
		PlayerID:  playerID,
		X:         x,
		Y:         y,
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// readSSE collects "event:"/"data:" pairs until n events have been read
func readSSE(t *testing.T, scanner *bufio.Scanner, n int) []map[string]string {
	t.Helper()
	var events []map[string]string
	current := map[string]string{}
	for len(events) < n && scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if len(current) > 0 {
				events = append(events, current)
				current = map[string]string{}
			}
		case strings.HasPrefix(line, ":"):
		default:
			key, value, _ := strings.Cut(line, ": ")
			current[key] = value
		}
	}
	require.Len(t, events, n)
	return events
}

func TestServeSSE(t *testing.T) {
	hub := startHub(t)
	broadcaster := NewBroadcaster(hub, testutil.NopLogger())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(w, r, hub, "", "")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	scanner := bufio.NewScanner(resp.Body)

	connected := readSSE(t, scanner, 1)
	assert.Equal(t, "connected", connected[0]["event"])

	waitForClients(t, hub, 1)
	broadcaster.Publish(ctx, testEvent(3, "0xa"))

	got := readSSE(t, scanner, 1)[0]
	assert.Equal(t, "3", got["id"])
	assert.Equal(t, "player_moved", got["event"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(got["data"]), &payload))
	assert.Equal(t, "0xa", payload["player_id"])
	assert.Equal(t, float64(3), payload["seq"])
	assert.True(t, strings.HasPrefix(payload["x"].(string), "0x01"))
}

func TestServeWS(t *testing.T) {
	hub := startHub(t)
	broadcaster := NewBroadcaster(hub, testutil.NopLogger())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(w, r, hub, "", model.PlayerID(r.URL.Query().Get("player")))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?player=0xa"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var envelope wsEnvelope
	require.NoError(t, conn.ReadJSON(&envelope))
	assert.Equal(t, "connected", envelope.Event)

	waitForClients(t, hub, 1)
	broadcaster.Publish(context.Background(), testEvent(1, "0xb"))
	broadcaster.Publish(context.Background(), testEvent(2, "0xa"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&envelope))
	assert.Equal(t, "player_moved", envelope.Event)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, "0xa", payload["player_id"], "filtered stream skips other players")

	require.NoError(t, conn.Close())
	waitForClients(t, hub, 0)
}
