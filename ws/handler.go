package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Tk21111/journal_board/auth"
	"github.com/Tk21111/journal_board/internal/logx"
)

type Options struct {
	// MaxMessageBytes bounds one inbound frame; larger frames end the
	// connection inside the websocket layer.
	MaxMessageBytes int64
	// AllowedOrigin is accepted in addition to same-origin requests.
	AllowedOrigin string
}

// HandleWS serves the live board. The caller's identity is resolved before
// the upgrade; without one the request ends with a bare 401.
func HandleWS(hub *Hub, resolver auth.Resolver, opts Options) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     checkOrigin(opts.AllowedOrigin),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := resolver.Resolve(r)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		log := logx.From(r.Context())
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("upgrade", zap.Error(err))
			return
		}

		client := &Client{
			id:   uuid.NewString(),
			name: id.DisplayName,
			conn: conn,
			send: make(chan []byte, sendBuffer),
			hub:  hub,
		}
		client.log = log.With(zap.String("conn", client.id), zap.String("peer", client.name))

		if !hub.Join(client) {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
			conn.Close()
			return
		}

		go client.write()
		client.read(opts.MaxMessageBytes)
	}
}

func checkOrigin(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if allowed != "" && origin == allowed {
			return true
		}
		return sameHost(origin, r.Host)
	}
}
