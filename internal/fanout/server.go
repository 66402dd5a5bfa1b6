package fanout

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware in front.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades subscribers onto the hub. The feed is push-only: inbound
// messages are discarded, the read loop only detects disconnects.
func Handler(hub *Hub, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}

		id := hub.Add(conn)
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					hub.Remove(id)
					conn.Close()
					return
				}
			}
		}()
	})
}
