// Package wsclient is a generic reconnecting websocket client: ping/pong,
// automatic reconnect with a rejoin hook, and a non-blocking stop. The order
// book subscriber in package orderbook is built on top of it.
package wsclient

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"polyclob/internal/logging"
)

const stopTick = 10 * time.Millisecond

// Client is a single websocket connection with reconnect/ping machinery.
// It owns its own socket and read loop; callers never touch *websocket.Conn
// directly.
type Client struct {
	url            string
	logger         logging.Logger
	pingInterval   time.Duration
	reconnectDelay time.Duration
	autoReconnect  bool

	headersMu sync.Mutex
	headers   http.Header

	onMessage    func([]byte)
	onConnect    func()
	onDisconnect func()
	onError      func(error)

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
}

// New constructs a client targeting url with the default 25s ping
// interval and a 2s reconnect backoff.
func New(url string, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Client{
		url:            url,
		logger:         logger,
		pingInterval:   25 * time.Second,
		reconnectDelay: 2 * time.Second,
		headers:        http.Header{},
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// SetPingInterval overrides the client-initiated ping cadence.
func (c *Client) SetPingInterval(d time.Duration) { c.pingInterval = d }

// SetAutoReconnect enables or disables automatic reconnection on read
// failure.
func (c *Client) SetAutoReconnect(enabled bool) { c.autoReconnect = enabled }

// SetReconnectDelay overrides the backoff between reconnect attempts.
func (c *Client) SetReconnectDelay(d time.Duration) { c.reconnectDelay = d }

// SetHeader adds a header sent on the initial handshake.
func (c *Client) SetHeader(key, value string) {
	c.headersMu.Lock()
	defer c.headersMu.Unlock()
	c.headers.Set(key, value)
}

// OnMessage registers the callback invoked for every text frame received.
func (c *Client) OnMessage(f func([]byte)) { c.onMessage = f }

// OnConnect registers the callback invoked after every successful dial
// (including reconnects) — the hook a subscriber uses to rejoin.
func (c *Client) OnConnect(f func()) { c.onConnect = f }

// OnDisconnect registers the callback invoked when the connection drops.
func (c *Client) OnDisconnect(f func()) { c.onDisconnect = f }

// OnError registers the callback invoked on dial or read errors.
func (c *Client) OnError(f func(error)) { c.onError = f }

// IsConnected reports whether the socket is currently open.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect dials once and starts the read/ping loop in the background.
// Use Run to block the calling goroutine on the same loop instead.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.dial(); err != nil {
		return err
	}
	go c.loop(ctx)
	return nil
}

// Run dials and blocks the calling goroutine until Stop is called or ctx
// is cancelled, reconnecting transparently in between (per spec §4.5's
// "automatic reconnection with server pings handled transparently").
func (c *Client) Run(ctx context.Context) error {
	if err := c.dial(); err != nil {
		if !c.autoReconnect {
			return err
		}
	}
	c.loop(ctx)
	return nil
}

func (c *Client) dial() error {
	c.headersMu.Lock()
	headers := c.headers.Clone()
	c.headersMu.Unlock()

	conn, resp, err := websocket.DefaultDialer.Dial(c.url, headers)
	if err != nil {
		if resp != nil {
			c.logger.Error("ws_connect_failed", "status", resp.Status, "err", err)
		}
		if c.onError != nil {
			c.onError(err)
		}
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	c.logger.Info("ws_connected", "url", c.url)
	if c.onConnect != nil {
		c.onConnect()
	}
	return nil
}

func (c *Client) loop(ctx context.Context) {
	go c.pingLoop(ctx)

	for {
		if !c.IsConnected() {
			if !c.autoReconnect || c.stopped() {
				return
			}
			select {
			case <-time.After(c.reconnectDelay):
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			}
			if err := c.dial(); err != nil {
				continue
			}
		}

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			continue
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.markDisconnected()
			if c.onDisconnect != nil {
				c.onDisconnect()
			}
			if c.onError != nil && !c.stopped() {
				c.onError(err)
			}
			if c.stopped() {
				return
			}
			continue
		}

		if c.onMessage != nil {
			c.onMessage(msg)
		}

		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		default:
		}
	}
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Send([]byte("PING")); err != nil {
				c.logger.Warn("ws_ping_failed", "err", err)
			}
		}
	}
}

func (c *Client) markDisconnected() {
	c.mu.Lock()
	c.connected = false
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()
}

func (c *Client) stopped() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

// Send writes a text frame.
func (c *Client) Send(b []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return websocket.ErrBadHandshake
	}
	return conn.WriteMessage(websocket.TextMessage, b)
}

// SendJSON writes v as a JSON text frame.
func (c *Client) SendJSON(v any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return websocket.ErrBadHandshake
	}
	return conn.WriteJSON(v)
}

// Disconnect closes the current socket without stopping the loop; if
// auto-reconnect is enabled the loop will redial.
func (c *Client) Disconnect() {
	c.markDisconnected()
}

// Stop closes the socket and signals the read and ping loops to exit. It
// returns without waiting for the loop goroutine to finish; a loop blocked
// in a read exits once the closed socket fails that read.
func (c *Client) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.markDisconnected()
}
