package websocket

import (
	"net/http"
	"strings"

	ws "github.com/coder/websocket"
)

// HandleWebSocket returns an HTTP handler that upgrades connections to WebSocket
// and runs them as Hub clients. The optional "groups" query parameter holds a
// comma separated list of rooms to subscribe to on connect.
//
// originPatterns restricts cross-origin connections; when empty any origin is
// accepted.
func HandleWebSocket(hub *Hub, originPatterns []string) http.HandlerFunc {
	opts := &ws.AcceptOptions{OriginPatterns: originPatterns}
	if len(originPatterns) == 0 {
		opts.InsecureSkipVerify = true
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, opts)
		if err != nil {
			hub.logger.Warn("websocket accept failed", "remote_addr", r.RemoteAddr, "error", err)
			return
		}
		defer conn.CloseNow()

		client := NewClient(hub, conn)
		client.Run(r.Context(), splitRooms(r.URL.Query().Get("groups"))...)
	}
}

func splitRooms(raw string) []string {
	var rooms []string
	for _, room := range strings.Split(raw, ",") {
		if room = strings.TrimSpace(room); room != "" {
			rooms = append(rooms, room)
		}
	}
	return rooms
}
