// Package wsconn provides a WebSocket client with keepalive and reconnection.
package wsconn

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/fd1az/balancer-connector/internal/apperror"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	Name           string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	PingInterval   time.Duration
	PongTimeout    time.Duration
	DialTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxMessageSize int64
	AutoReconnect  bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:            url,
		Name:           name,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0,
		PingInterval:   30 * time.Second,
		PongTimeout:    10 * time.Second,
		DialTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: 1 << 20,
		AutoReconnect:  true,
	}
}

// Client is a WebSocket client that redials after read failures.
type Client struct {
	config Config

	mu    sync.RWMutex
	conn  *websocket.Conn
	state State

	handlersMu  sync.RWMutex
	onMessage   func(ctx context.Context, msg []byte)
	onState     func(State, error)
	onReconnect func(ctx context.Context)

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
	wg     sync.WaitGroup
}

// New creates a new WebSocket client. It does not dial.
func New(config Config) (*Client, error) {
	if !strings.HasPrefix(config.URL, "ws://") && !strings.HasPrefix(config.URL, "wss://") {
		return nil, apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithMessage("websocket url must use ws:// or wss://"),
			apperror.WithContext(config.URL))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		config: config,
		state:  StateDisconnected,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// OnMessage registers the handler for inbound messages. It runs on the
// read goroutine.
func (c *Client) OnMessage(fn func(ctx context.Context, msg []byte)) {
	c.handlersMu.Lock()
	c.onMessage = fn
	c.handlersMu.Unlock()
}

// OnStateChange registers a callback for every state transition.
func (c *Client) OnStateChange(fn func(State, error)) {
	c.handlersMu.Lock()
	c.onState = fn
	c.handlersMu.Unlock()
}

// OnReconnect registers a callback run after a successful redial, used to
// restore subscriptions.
func (c *Client) OnReconnect(fn func(ctx context.Context)) {
	c.handlersMu.Lock()
	c.onReconnect = fn
	c.handlersMu.Unlock()
}

// Connect dials once. A failure leaves the client disconnected; redials
// only happen for connections that were established.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return apperror.New(apperror.CodeWebSocketClosed, apperror.WithContext(c.config.Name))
	}

	c.setState(StateConnecting, nil)

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateDisconnected, err)
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithContext(c.config.Name),
			apperror.WithCause(err))
	}

	c.attach(conn)
	c.setState(StateConnected, nil)
	return nil
}

// Send writes a text message. Safe for concurrent use.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	c.mu.RLock()
	conn, state := c.conn, c.state
	c.mu.RUnlock()

	if conn == nil || state != StateConnected {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithContext(string(state)))
	}

	if c.config.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.WriteTimeout)
		defer cancel()
	}

	if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithContext(c.config.Name),
			apperror.WithCause(err))
	}
	return nil
}

// SendJSON marshals v and sends it.
func (c *Client) SendJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperror.New(apperror.CodeWebSocketSendError, apperror.WithCause(err))
	}
	return c.Send(ctx, data)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected reports whether the client can send.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Close gracefully closes the connection and stops redialing. Idempotent.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.cancel()

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close(websocket.StatusNormalClosure, "client closing")
	}
	c.wg.Wait()
	c.setState(StateClosed, nil)

	if err != nil && !isClosedErr(err) {
		return err
	}
	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	if c.config.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.DialTimeout)
		defer cancel()
	}

	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		return nil, err
	}
	if c.config.MaxMessageSize > 0 {
		conn.SetReadLimit(c.config.MaxMessageSize)
	}
	return conn, nil
}

func (c *Client) attach(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	connCtx, cancel := context.WithCancel(c.ctx)

	c.wg.Add(1)
	go c.readLoop(connCtx, cancel, conn)

	if c.config.PingInterval > 0 {
		c.wg.Add(1)
		go c.pingLoop(connCtx, conn)
	}
}

func (c *Client) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer c.wg.Done()
	defer cancel()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if c.closed.Load() {
				return
			}
			conn.CloseNow()
			c.handleDisconnect(err)
			return
		}

		c.handlersMu.RLock()
		handler := c.onMessage
		c.handlersMu.RUnlock()
		if handler != nil {
			handler(ctx, data)
		}
	}
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, c.config.PongTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil && ctx.Err() == nil {
				// Closing unblocks the reader, which drives the redial.
				conn.Close(websocket.StatusGoingAway, "pong timeout")
				return
			}
		}
	}
}

func (c *Client) handleDisconnect(cause error) {
	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()

	if !c.config.AutoReconnect {
		c.setState(StateDisconnected, cause)
		return
	}

	c.setState(StateReconnecting, cause)

	backoff := c.config.InitialBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	for attempt := 1; c.config.MaxReconnects == 0 || attempt <= c.config.MaxReconnects; attempt++ {
		timer := time.NewTimer(backoff)
		select {
		case <-c.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		conn, err := c.dial(c.ctx)
		if err == nil {
			if c.closed.Load() {
				conn.CloseNow()
				return
			}
			c.attach(conn)
			c.setState(StateConnected, nil)

			c.handlersMu.RLock()
			hook := c.onReconnect
			c.handlersMu.RUnlock()
			if hook != nil {
				hook(c.ctx)
			}
			return
		}

		c.setState(StateReconnecting, err)
		backoff *= 2
		if c.config.MaxBackoff > 0 && backoff > c.config.MaxBackoff {
			backoff = c.config.MaxBackoff
		}
	}

	c.setState(StateDisconnected, apperror.New(apperror.CodeWebSocketConnectionError,
		apperror.WithMessage("max reconnect attempts reached"),
		apperror.WithContext(c.config.Name),
		apperror.WithCause(cause)))
}

func (c *Client) setState(state State, err error) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	c.handlersMu.RLock()
	fn := c.onState
	c.handlersMu.RUnlock()
	if fn != nil {
		fn(state, err)
	}
}

func isClosedErr(err error) bool {
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
