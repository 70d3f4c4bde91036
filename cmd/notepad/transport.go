package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const requestTimeout = 5 * time.Second

// wsTransport carries one request frame and its reply frame at a time
type wsTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func dialTransport(ctx context.Context, url string) (*wsTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &wsTransport{conn: conn}, nil
}

// RoundTrip sends req and waits for the reply. Without a context deadline
// the exchange is bounded by requestTimeout.
func (t *wsTransport) RoundTrip(ctx context.Context, req []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(requestTimeout)
	}
	if err := t.conn.SetWriteDeadline(deadline); err != nil {
		return nil, err
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, req); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	_, reply, err := t.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}
	return reply, nil
}

// Close says goodbye to the server and drops the connection
func (t *wsTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return t.conn.Close()
}
