package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rosettacloud/shellchat/pkg/session"
	"github.com/rosettacloud/shellchat/pkg/wire"
)

const (
	DefaultReconnectDelay = 5 * time.Second
	DefaultSendRetryDelay = 1 * time.Second
)

const (
	readyNotice         = "Connected to the shell script assistant. Ask me anything about shell scripting."
	clearedNotice       = "Chat cleared. How can I help you with shell scripting?"
	parseErrorNotice    = "Error processing server response"
	connectFailedNotice = "Could not reach the assistant service. Retrying in the background."
	sendFailedNotice    = "Error sending message. Please try again."
)

// TokenSource supplies a bearer token for the websocket upgrade, typically
// backed by the pub/sub token-vending endpoint (pkg/tokens).
type TokenSource func(ctx context.Context) (string, error)

// Recorder receives every finalized log entry for persistence. Chunk
// aggregation is not recorded; the assistant message is recorded once, when
// its turn completes.
type Recorder interface {
	Record(ctx context.Context, sessionID string, m session.Message) error
}

// Options configures a Client.
type Options struct {
	// Endpoint is the ws:// or wss:// URL of the assistant service.
	Endpoint string
	// ModelID overrides the Bedrock model sent with each request.
	ModelID string
	// ReconnectDelay is the fixed wait between a close and the single
	// reconnection attempt it schedules.
	ReconnectDelay time.Duration
	// SendRetryDelay is the wait before the one retry of a send issued
	// while the transport was closed.
	SendRetryDelay time.Duration
	Tokens         TokenSource
	Recorder       Recorder

	dial dialFunc // test seam
}

// Client owns one websocket connection to the assistant service and the
// session state it projects. All state transitions happen on the event loop
// run by Run; SendMessage, ClearChat, and Connect are safe to call from any
// goroutine.
type Client struct {
	endpoint       string
	modelID        string
	reconnectDelay time.Duration
	sendRetryDelay time.Duration
	tokens         TokenSource
	rec            Recorder
	dial           dialFunc

	sessionID string
	store     *session.Store
	events    chan event
	log       zerolog.Logger

	// loop-owned, never touched outside Run
	conn         transport
	st           connState
	dialAttempts int
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, errors.New("client endpoint is empty")
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.SendRetryDelay <= 0 {
		opts.SendRetryDelay = DefaultSendRetryDelay
	}
	if opts.dial == nil {
		opts.dial = dialWebsocket
	}
	sessionID := session.NewSessionID()
	return &Client{
		endpoint:       opts.Endpoint,
		modelID:        opts.ModelID,
		reconnectDelay: opts.ReconnectDelay,
		sendRetryDelay: opts.SendRetryDelay,
		tokens:         opts.Tokens,
		rec:            opts.Recorder,
		dial:           opts.dial,
		sessionID:      sessionID,
		store:          session.NewStore(),
		events:         make(chan event, 256),
		log: log.With().
			Str("component", "chat_client").
			Str("session_id", sessionID).
			Logger(),
	}, nil
}

// Store exposes the observable session state for subscribers.
func (c *Client) Store() *session.Store { return c.store }

// SessionID is generated once per client and attached to every outbound
// request; the backend keys its conversational memory on it.
func (c *Client) SessionID() string { return c.sessionID }

// SendMessage submits a prompt. An all-whitespace prompt is ignored.
func (c *Client) SendMessage(prompt string) {
	if strings.TrimSpace(prompt) == "" {
		c.log.Debug().Msg("ignoring empty prompt")
		return
	}
	c.post(evSend{prompt: prompt})
}

// ClearChat resets the visible log to a single system message. The session
// identifier is untouched, so the remote conversation context survives.
func (c *Client) ClearChat() {
	c.post(evClear{})
}

// Connect asks the manager to ensure a transport is open or opening. It is
// idempotent and safe to call at any time.
func (c *Client) Connect() {
	c.post(evConnect{})
}

// Run connects and processes events until ctx is canceled. It always
// returns ctx.Err(); no transport or protocol condition is fatal.
func (c *Client) Run(ctx context.Context) error {
	c.post(evConnect{})
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ctx, ev)
		}
	}
}

func (c *Client) shutdown() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.transition(stateDisconnected, "shutdown")
	// a dial may still be in flight; reap its result so the socket is not
	// leaked
	for {
		select {
		case ev := <-c.events:
			if d, ok := ev.(evDialed); ok {
				_ = d.t.Close()
			}
		default:
			return
		}
	}
}

func (c *Client) post(ev event) {
	select {
	case c.events <- ev:
	default:
		c.log.Warn().Str("event", fmt.Sprintf("%T", ev)).Msg("event queue full, dropping event")
	}
}

func (c *Client) transition(next connState, reason string) {
	if c.st == next {
		return
	}
	c.log.Debug().
		Str("from", c.st.String()).
		Str("to", next.String()).
		Str("reason", reason).
		Msg("connection state change")
	c.st = next
}

func (c *Client) handle(ctx context.Context, ev event) {
	switch ev := ev.(type) {
	case evConnect:
		c.startConnect(ctx)
	case evDialed:
		c.onOpen(ev.t)
	case evDialFailed:
		c.onDialFailed(ev.err)
	case evClosed:
		c.onClosed(ev.t, ev.err)
	case evFrame:
		c.onFrame(ev.t, ev.data)
	case evSend:
		c.onSend(ctx, ev)
	case evClear:
		c.store.Clear(clearedNotice)
	}
}

// startConnect is a no-op unless the manager is fully disconnected, so
// redundant connect requests (including timers that fire after the
// condition resolved) are harmless.
func (c *Client) startConnect(ctx context.Context) {
	if c.st != stateDisconnected {
		return
	}
	c.transition(stateConnecting, "connect requested")
	c.dialAttempts++
	go func() {
		header := http.Header{}
		if c.tokens != nil {
			tok, err := c.tokens(ctx)
			if err != nil {
				c.post(evDialFailed{err: errors.Wrap(err, "vend token")})
				return
			}
			header.Set("Authorization", "Bearer "+tok)
		}
		t, err := c.dial(ctx, c.endpoint, header)
		if err != nil {
			c.post(evDialFailed{err: err})
			return
		}
		c.post(evDialed{t: t})
	}()
}

func (c *Client) onOpen(t transport) {
	c.conn = t
	c.transition(stateConnected, "transport open")
	c.store.SetConnected(true)
	c.append(session.NewMessage(session.RoleSystem, readyNotice))
	go c.readPump(t)
}

func (c *Client) readPump(t transport) {
	for {
		data, err := t.ReadMessage()
		if err != nil {
			c.post(evClosed{t: t, err: err})
			return
		}
		c.post(evFrame{t: t, data: data})
	}
}

func (c *Client) onDialFailed(err error) {
	c.log.Warn().Err(err).Int("attempt", c.dialAttempts).Msg("connect failed")
	c.transition(stateDisconnected, "dial failed")
	c.store.SetConnected(false)
	// surface the very first failure to the user; later ones are routine
	// background retries
	if c.dialAttempts == 1 {
		c.append(session.NewMessage(session.RoleError, connectFailedNotice))
	}
	c.scheduleReconnect()
}

func (c *Client) onClosed(t transport, err error) {
	if t != c.conn {
		// a pump from an already-replaced connection
		_ = t.Close()
		return
	}
	c.log.Info().Err(err).Msg("transport closed")
	_ = t.Close()
	c.conn = nil
	c.transition(stateDisconnected, "transport closed")
	c.store.SetConnected(false)
	// a turn interrupted mid-stream must not leave the loading flag stuck
	c.store.SetLoading(false)
	c.scheduleReconnect()
}

// scheduleReconnect arms exactly one fixed-delay retry. The timer is not
// canceled if connectivity resolves earlier; a redundant fire hits the
// idempotent startConnect and does nothing.
func (c *Client) scheduleReconnect() {
	c.log.Debug().Dur("delay", c.reconnectDelay).Msg("scheduling reconnect")
	time.AfterFunc(c.reconnectDelay, func() {
		c.post(evConnect{})
	})
}

func (c *Client) onSend(ctx context.Context, ev evSend) {
	if c.st != stateConnected {
		if ev.retry {
			// single retry exhausted; at-most-once, the prompt is dropped
			c.log.Warn().Str("prompt", ev.prompt).Msg("transport still closed after retry, dropping message")
			return
		}
		c.startConnect(ctx)
		prompt := ev.prompt
		time.AfterFunc(c.sendRetryDelay, func() {
			c.post(evSend{prompt: prompt, retry: true})
		})
		return
	}

	c.append(session.NewMessage(session.RoleUser, ev.prompt))
	c.store.ResetSources()
	c.store.SetLoading(true)

	req := wire.NewChatRequest(c.sessionID, ev.prompt, c.modelID)
	data, err := req.Encode()
	if err != nil {
		c.log.Error().Err(err).Msg("encode chat request")
		c.append(session.NewMessage(session.RoleError, sendFailedNotice))
		c.store.SetLoading(false)
		return
	}
	if err := c.conn.WriteMessage(data); err != nil {
		c.log.Warn().Err(err).Msg("write chat request")
		c.append(session.NewMessage(session.RoleError, sendFailedNotice))
		c.store.SetLoading(false)
	}
}

func (c *Client) append(m session.Message) {
	c.store.AppendMessage(m)
	c.record(m)
}

func (c *Client) record(m session.Message) {
	if c.rec == nil {
		return
	}
	if err := c.rec.Record(context.Background(), c.sessionID, m); err != nil {
		c.log.Warn().Err(err).Str("role", string(m.Role)).Msg("transcript record failed")
	}
}
