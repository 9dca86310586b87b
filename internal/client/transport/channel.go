// Package transport wraps the one persistent websocket connection a
// chat session holds. It decodes inbound frames in network arrival
// order, exposes a guarded Send, and shuts down idempotently with a
// normal-closure handshake.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nvthuy/salon-support/internal/model/chat"
)

// ErrNotConnected signals a send attempted before the channel opened
// or after it closed.
var ErrNotConnected = errors.New("transport: not connected")

const (
	handshakeTimeout = 30 * time.Second
	writeWait        = 10 * time.Second
)

// FrameHandler receives decoded inbound frames, one per network
// message, in arrival order.
type FrameHandler func(chat.Frame)

// ErrorHandler is notified once if the read loop exits on anything
// other than a local Close or a normal closure from the peer.
type ErrorHandler func(error)

// Channel is one live bidirectional connection bound to a chat. A
// session owns at most one Channel at a time.
type Channel struct {
	conn    *websocket.Conn
	onFrame FrameHandler
	onError ErrorHandler

	// mu serializes delivery against Close so no frame is handed out
	// after Close returns.
	mu     sync.Mutex
	wmu    sync.Mutex
	closed bool
	done   chan struct{}
}

// Dial connects to the chat endpoint and starts the read loop. The
// returned channel is ready: the caller may send immediately, and the
// first outbound frame is expected to be the join control frame.
func Dial(ctx context.Context, endpoint string, onFrame FrameHandler, onError ErrorHandler) (*Channel, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial chat endpoint: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial chat endpoint: %w", err)
	}

	ch := &Channel{
		conn:    conn,
		onFrame: onFrame,
		onError: onError,
		done:    make(chan struct{}),
	}
	go ch.readLoop()
	return ch, nil
}

// Send encodes the frame as a JSON text message. It fails with
// ErrNotConnected once the channel has been closed.
func (c *Channel) Send(f chat.Frame) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrNotConnected
	}

	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close performs a graceful shutdown: it sends a normal-closure
// message, closes the connection, and waits for the read loop to
// stop. After Close returns no further frames are delivered. Closing
// an already-closed channel is a no-op.
func (c *Channel) Close(reason string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.wmu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	c.wmu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Channel) readLoop() {
	defer close(c.done)

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if closed || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			if c.onError != nil {
				// Dispatched off the loop so the handler may call
				// Close without deadlocking on the loop's exit.
				go c.onError(err)
			}
			return
		}

		var frame chat.Frame
		if err := json.Unmarshal(payload, &frame); err != nil {
			// Malformed frames are dropped, never delivered, and do
			// not close the channel.
			log.Printf("[transport] dropping undecodable frame: %v", err)
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		if c.onFrame != nil {
			c.onFrame(frame)
		}
		c.mu.Unlock()
	}
}
