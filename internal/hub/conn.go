package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/codefionn/workhub/internal/consts"
	"github.com/codefionn/workhub/internal/logger"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = consts.Timeout10Seconds
)

// wsConn adapts a gorilla websocket connection to the hub's transport
// interface. Frame writes are serialized through the write pump; control
// frames (ping, close) use WriteControl, which gorilla allows concurrently
// with the pump.
type wsConn struct {
	conn      *websocket.Conn
	send      chan interface{}
	quit      chan struct{}
	closeOnce sync.Once
	done      func()
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{
		conn: conn,
		send: make(chan interface{}, consts.SendQueueDepth),
		quit: make(chan struct{}),
	}
}

// Send enqueues a frame for the write pump. A full buffer drops the frame
// with a warning; the heartbeat monitor remains the liveness authority.
func (c *wsConn) Send(v interface{}) bool {
	select {
	case <-c.quit:
		return false
	default:
	}

	select {
	case c.send <- v:
		return true
	default:
		logger.Warn("Send buffer full for %s, dropping frame", c.RemoteAddr())
		return false
	}
}

// Ping sends a transport-level ping control frame
func (c *wsConn) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Close sends a close control frame with the given code and tears the
// socket down. Idempotent.
func (c *wsConn) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		close(c.quit)

		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = c.conn.Close()
	})
}

// RemoteAddr reports the peer address used for locality classification
func (c *wsConn) RemoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// readPump feeds inbound frames into the hub dispatcher. It owns the
// connection's protocol state: frames are handled strictly in arrival
// order. Exit converges on the shared disconnect path.
func (c *wsConn) readPump(h *Hub, cn *connection, readWait time.Duration) {
	defer func() {
		c.Close(websocket.CloseNormalClosure, "")
		h.Disconnect(cn)
	}()

	c.conn.SetReadLimit(consts.MaxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
		h.HandleTransportPong(cn)
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Debug("Read error on %s: %v", cn.id, err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
		h.HandleFrame(cn, data)
	}
}

// writePump drains the send queue onto the socket
func (c *wsConn) writePump() {
	defer func() {
		if c.done != nil {
			c.done()
		}
	}()

	for {
		select {
		case <-c.quit:
			return
		case v := <-c.send:
			data, err := json.Marshal(v)
			if err != nil {
				logger.Error("Failed to marshal outbound frame: %v", err)
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}
