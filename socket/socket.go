// Package socket exposes the file relay over socket.io and over a plain
// websocket endpoint speaking JSON frames.
package socket

import (
	"log/slog"
	"net/http"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"

	"github.com/ssovee/Open-Data-API/relay"
)

// NewSocketServer builds a socket.io server whose relay events are handled
// by hub. Event payloads are JSON objects; binary attachments are not
// decoded.
func NewSocketServer(hub *relay.Hub, logger *slog.Logger) *socketio.Server {
	logger = logger.With("component", "socketio")

	pollTransport := &polling.Transport{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	wsTransport := &websocket.Transport{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	srv := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			pollTransport,
			wsTransport,
		},
	})

	srv.OnConnect("/", func(s socketio.Conn) error {
		logger.Debug("socket connected", "id", s.ID(), "remote", s.RemoteAddr())
		return nil
	})

	srv.OnEvent("/", relay.EventSenderJoin, func(s socketio.Conn, req relay.JoinRequest) {
		hub.SenderJoin(s, req)
	})

	srv.OnEvent("/", relay.EventReceiverJoin, func(s socketio.Conn, req relay.ReceiverJoinRequest) {
		hub.ReceiverJoin(s, req)
	})

	srv.OnEvent("/", relay.EventFileMeta, func(s socketio.Conn, req relay.FileMetaRequest) {
		hub.FileMeta(s, req)
	})

	srv.OnEvent("/", relay.EventFileStart, func(s socketio.Conn, req relay.FileStartRequest) {
		hub.FileStart(s, req)
	})

	srv.OnEvent("/", relay.EventFileRaw, func(s socketio.Conn, req relay.FileRawRequest) {
		hub.FileRaw(s, req)
	})

	srv.OnDisconnect("/", func(s socketio.Conn, reason string) {
		logger.Debug("socket disconnected", "id", s.ID(), "reason", reason)
		hub.Leave(s)
	})

	srv.OnError("/", func(s socketio.Conn, err error) {
		if s == nil {
			logger.Warn("socket error", "err", err)
			return
		}
		logger.Warn("socket error", "id", s.ID(), "err", err)
	})

	return srv
}
