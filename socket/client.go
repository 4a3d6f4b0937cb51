package socket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ssovee/Open-Data-API/relay"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size accepted from a peer; chunks are base64 inside JSON.
	maxFrameSize = 1 << 20

	defaultSendQueue = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one /ws/share connection. It satisfies relay.Peer.
type Client struct {
	id     string
	hub    *relay.Hub
	conn   *websocket.Conn
	logger *slog.Logger

	// send is drained by writePump. Emit blocks while it is full, so a slow
	// receiver slows its sender instead of losing chunks.
	send chan Frame
	done chan struct{}
	once sync.Once
}

func (c *Client) ID() string { return c.id }

// Emit queues event for delivery. Only the first argument is sent. It returns
// immediately once the connection is closed.
func (c *Client) Emit(event string, v ...interface{}) {
	f := Frame{Event: event}
	if len(v) > 0 {
		raw, err := json.Marshal(v[0])
		if err != nil {
			c.logger.Warn("encode frame", "event", event, "err", err)
			return
		}
		f.Data = raw
	}
	select {
	case c.send <- f:
	case <-c.done:
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

// readPump dispatches inbound frames until the connection fails, then leaves
// every room the client joined.
func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var f Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read frame", "id", c.id, "err", err)
			}
			return
		}
		if err := dispatch(c.hub, c, f); err != nil {
			c.logger.Debug("drop frame", "id", c.id, "err", err)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case f := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(f); err != nil {
				c.logger.Debug("write frame", "id", c.id, "err", err)
				c.close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// ServeWS upgrades the request and relays JSON frames through hub. queue
// bounds the per-connection outbound buffer.
func ServeWS(hub *relay.Hub, logger *slog.Logger, queue int) http.HandlerFunc {
	if queue <= 0 {
		queue = defaultSendQueue
	}
	logger = logger.With("component", "ws")

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("upgrade failed", "err", err)
			return
		}

		c := &Client{
			id:     uuid.NewString(),
			hub:    hub,
			conn:   conn,
			logger: logger,
			send:   make(chan Frame, queue),
			done:   make(chan struct{}),
		}
		logger.Debug("client connected", "id", c.id, "remote", r.RemoteAddr)

		go c.writePump()
		go c.readPump()
	}
}
