// Package transport carries protocol frames over a gorilla websocket.
// Reads are left to a single receive loop; writes are serialized by a mutex
// so a control message and its payload always leave back to back.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"nfinite/contract"
	"nfinite/domain"
	"nfinite/domain/protocol"
	"nfinite/errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const defaultWriteTimeout = 10 * time.Second

type Options struct {
	ReadBufferSize  int
	WriteBufferSize int
	// MaxFrameSize bounds a single inbound frame, 0 means unlimited.
	MaxFrameSize int64
	WriteTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{ReadBufferSize: 1024, WriteBufferSize: 1024, WriteTimeout: defaultWriteTimeout}
}

// Conn implements contract.Connection.
type Conn struct {
	ws       *websocket.Conn
	log      *slog.Logger
	activity contract.ActivitySink
	opts     Options
	writeMu  sync.Mutex
	closed   atomic.Bool
}

func newConn(ws *websocket.Conn, opts Options, log *slog.Logger, activity contract.ActivitySink) *Conn {
	if opts.MaxFrameSize > 0 {
		ws.SetReadLimit(opts.MaxFrameSize)
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	return &Conn{ws: ws, log: log, activity: activity, opts: opts}
}

// Dial opens the client side of the socket.
func Dial(ctx context.Context, url string, opts Options, log *slog.Logger, activity contract.ActivitySink) (*Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   opts.ReadBufferSize,
		WriteBufferSize:  opts.WriteBufferSize,
	}
	ws, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	log.Info("Connected to hub", "url", url)
	return newConn(ws, opts, log, activity), nil
}

// Accept upgrades an HTTP request into the hub side of the socket.
// Any origin is accepted: clients are not browsers bound to the hub's host.
func Accept(w http.ResponseWriter, r *http.Request, opts Options, log *slog.Logger, activity contract.ActivitySink) (*Conn, error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  opts.ReadBufferSize,
		WriteBufferSize: opts.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade %s: %w", r.RemoteAddr, err)
	}
	return newConn(ws, opts, log, activity), nil
}

func (c *Conn) SendControl(msg protocol.ControlMessage) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.write(websocket.TextMessage, data)
}

func (c *Conn) SendPayload(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.write(websocket.BinaryMessage, data)
}

// SendPaired writes the control message and its payload under one lock.
func (c *Conn) SendPaired(msg protocol.ControlMessage, data []byte) error {
	encoded, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.write(websocket.TextMessage, encoded); err != nil {
		return err
	}
	return c.write(websocket.BinaryMessage, data)
}

// write must be called with writeMu held.
func (c *Conn) write(messageType int, data []byte) error {
	if c.closed.Load() {
		return errors.ErrConnectionClosed
	}
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConnectionClosed, err)
	}
	if err := c.ws.WriteMessage(messageType, data); err != nil {
		c.closed.Store(true)
		return fmt.Errorf("%w: %v", errors.ErrConnectionClosed, err)
	}
	c.notify(domain.Upload)
	return nil
}

// ReadFrame blocks until the next frame. It is not safe for concurrent use.
func (c *Conn) ReadFrame() (protocol.Frame, error) {
	if c.closed.Load() {
		return protocol.Frame{}, errors.ErrConnectionClosed
	}
	messageType, data, err := c.ws.ReadMessage()
	if err != nil {
		c.closed.Store(true)
		return protocol.Frame{}, fmt.Errorf("%w: %v", errors.ErrConnectionClosed, err)
	}
	c.notify(domain.Download)
	switch messageType {
	case websocket.TextMessage:
		return protocol.Frame{Kind: protocol.TextFrame, Data: data}, nil
	default:
		return protocol.Frame{Kind: protocol.BinaryFrame, Data: data}, nil
	}
}

func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

// Close sends a close frame on a best effort basis then releases the socket.
// Closing twice is a no-op.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.log.Debug("Connection closed", "remote", c.RemoteAddr())
	return c.ws.Close()
}

func (c *Conn) notify(direction domain.Direction) {
	if c.activity != nil {
		c.activity.OnTransferActivity(direction)
	}
}
