package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher turns an inbound request into the envelopes to broadcast.
// The sender's envelope comes first, an optional system reply second.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) []Envelope
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, req Request) []Envelope

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, req Request) []Envelope {
	return f(ctx, req)
}

// Echo broadcasts the request unchanged.
var Echo = DispatcherFunc(func(_ context.Context, req Request) []Envelope {
	return []Envelope{{Kind: KindChat, Nickname: req.Nickname, Text: req.Text}}
})

// Hub owns the registry and fans envelopes out to its members.
type Hub struct {
	registry   *Registry
	dispatcher Dispatcher
	log        *zerolog.Logger
	now        func() time.Time
	welcome    string

	// mu serialises stamping and fan-out so that timestamps follow delivery order.
	mu     sync.Mutex
	lastTS int64
	closed bool
}

// Option customises a Hub.
type Option func(*Hub)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// WithWelcome sets the text of the envelope sent on connect.
func WithWelcome(text string) Option {
	return func(h *Hub) { h.welcome = text }
}

// NewHub creates a hub over registry. A nil dispatcher echoes messages.
func NewHub(registry *Registry, dispatcher Dispatcher, logger *zerolog.Logger, opts ...Option) *Hub {
	if registry == nil {
		registry = NewRegistry()
	}
	if dispatcher == nil {
		dispatcher = Echo
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Hub{
		registry:   registry,
		dispatcher: dispatcher,
		log:        logger,
		now:        time.Now,
		welcome:    "welcome",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Registry exposes the member set.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Run blocks until ctx is done, then closes every registered client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.Shutdown()
}

// Shutdown removes and closes all clients. Later OnConnect calls are refused.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	clients := h.registry.Snapshot()
	for _, c := range clients {
		h.registry.Remove(c)
		c.Close()
	}
	h.log.Info().Int("clients", len(clients)).Msg("hub shut down")
}

// OnConnect registers c and sends it the welcome envelope before any broadcast.
// After Shutdown it closes c and returns ErrHubClosed.
func (h *Hub) OnConnect(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		c.Close()
		return ErrHubClosed
	}
	if !h.registry.Add(c) {
		h.log.Warn().Str("client_id", c.ID).Msg("duplicate client id, ignoring")
		return ErrDuplicateClient
	}
	env := SystemReply(h.welcome)
	env.Timestamp = h.stampLocked()
	if err := c.Send(env); err != nil {
		h.log.Warn().Err(err).Str("client_id", c.ID).Msg("send welcome")
	}
	h.log.Info().
		Str("client_id", c.ID).
		Str("remote_addr", c.Addr).
		Int("members", h.registry.Len()).
		Msg("client connected")
	return nil
}

// OnDisconnect removes c from the registry and closes its queue.
func (h *Hub) OnDisconnect(c *Client) {
	if h.registry.Remove(c) {
		h.log.Info().
			Str("client_id", c.ID).
			Int("members", h.registry.Len()).
			Msg("client disconnected")
	}
	c.Close()
}

// OnMessage parses raw, runs it through the dispatcher and broadcasts the result.
func (h *Hub) OnMessage(ctx context.Context, c *Client, raw []byte) {
	req := ParseRequest(raw)
	envelopes := h.dispatcher.Dispatch(ctx, req)
	h.log.Debug().
		Str("client_id", c.ID).
		Str("nickname", req.Nickname).
		Int("envelopes", len(envelopes)).
		Msg("message dispatched")
	for _, env := range envelopes {
		h.Broadcast(env)
	}
}

// Notify stamps env and sends it to c alone.
func (h *Hub) Notify(c *Client, env Envelope) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	env.Timestamp = h.stampLocked()
	return c.Send(env)
}

// Broadcast stamps env and delivers it to every current member.
// A failing member is logged and skipped; removal is left to its transport.
func (h *Hub) Broadcast(env Envelope) Envelope {
	h.mu.Lock()
	defer h.mu.Unlock()

	env.Timestamp = h.stampLocked()
	members := h.registry.Snapshot()
	failed := 0
	for _, c := range members {
		if err := c.Send(env); err != nil {
			failed++
			h.log.Warn().Err(err).Str("client_id", c.ID).Msg("broadcast delivery failed")
		}
	}
	h.log.Debug().
		Str("kind", string(env.Kind)).
		Int("members", len(members)).
		Int("failed", failed).
		Msg("broadcast")
	return env
}

// stampLocked returns a timestamp never lower than the previous one.
func (h *Hub) stampLocked() int64 {
	ts := h.now().UnixMilli()
	if ts < h.lastTS {
		ts = h.lastTS
	}
	h.lastTS = ts
	return ts
}
