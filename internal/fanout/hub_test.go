package fanout

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestServer(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesAllConnectedSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(Handler(hub, zerolog.Nop()))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	first := dialTestServer(t, url)
	second := dialTestServer(t, url)

	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	hub.Broadcast([]byte(`{"dodge_id":"1"}`))

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, message, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, `{"dodge_id":"1"}`, string(message))
	}
}

func TestDisconnectedSubscriberIsRemoved(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(Handler(hub, zerolog.Nop()))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	staying := dialTestServer(t, url)
	leaving := dialTestServer(t, url)

	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	leaving.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast([]byte(`still alive`))

	staying.SetReadDeadline(time.Now().Add(time.Second))
	_, message, err := staying.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "still alive", string(message))
}

func TestMalformedNotificationDoesNotDisturbSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(Handler(hub, zerolog.Nop()))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn := dialTestServer(t, url)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	listener := &Listener{hub: hub, validate: validator.New(), logger: zerolog.Nop()}

	listener.handle(`not a dodge event`)
	listener.handle(`{"dodge_id":"7","summoner_id":"a","region":"KR","rank_tier":"GRANDMASTER","lp_before":10,"lp_after":5,"at_games_played":3,"created_at":"2026-08-31T12:00:00Z"}`)

	// Only the valid event arrives; the malformed one was dropped without
	// disconnecting anyone.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(message), `"dodge_id":"7"`)
	assert.Equal(t, 1, hub.Count())
}

func TestCloseAllEmptiesHub(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(Handler(hub, zerolog.Nop()))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	dialTestServer(t, url)
	dialTestServer(t, url)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	hub.CloseAll()

	assert.Equal(t, 0, hub.Count())
}
