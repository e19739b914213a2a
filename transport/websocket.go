package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/itzmeanjan/relaylisten/listener"
)

// wsChannel adapts a gorilla/websocket connection into
// listener.FrameSink/FrameSource. Unlike the TCP transport, framing is
// message-per-frame — gorilla/websocket already delimits messages, so
// no length prefix is added.
type wsChannel struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func newWSChannel(conn *websocket.Conn) *listener.ByteChannel {
	ch := &wsChannel{conn: conn}
	return &listener.ByteChannel{Sink: ch, Source: ch, Closer: conn.Close}
}

func (c *wsChannel) Send(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, frame)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, payload, err := c.conn.ReadMessage()
	return payload, err
}

// WebSocketConnector dials a ws(s):// relay endpoint fresh on every
// Connect call, the way the teacher depends on gorilla/websocket for
// its own message-per-frame transports.
type WebSocketConnector struct {
	URL    string
	Dialer *websocket.Dialer
}

// NewWebSocketConnector builds a WebSocketConnector using
// websocket.DefaultDialer.
func NewWebSocketConnector(url string) *WebSocketConnector {
	return &WebSocketConnector{URL: url, Dialer: websocket.DefaultDialer}
}

func (c *WebSocketConnector) Connect(ctx context.Context) (*listener.ByteChannel, error) {
	conn, _, err := c.Dialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: websocket dial %s: %w", c.URL, err)
	}
	return newWSChannel(conn), nil
}
