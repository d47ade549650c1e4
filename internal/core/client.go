package core

import (
	"sync"
	"sync/atomic"
)

// OverflowPolicy decides what happens when a connection's queue is full.
type OverflowPolicy int

const (
	// OverflowDisconnect rejects the envelope and flags the connection so the
	// transport closes it.
	OverflowDisconnect OverflowPolicy = iota
	// OverflowDropOldest discards the oldest queued envelope to make room.
	OverflowDropOldest
)

// ParseOverflowPolicy maps a config value to a policy. Unknown values
// fall back to OverflowDisconnect.
func ParseOverflowPolicy(s string) OverflowPolicy {
	if s == "drop_oldest" {
		return OverflowDropOldest
	}
	return OverflowDisconnect
}

const defaultQueueSize = 256

// Client is one open chat connection as seen by the core layer.
type Client struct {
	ID   string
	Addr string

	policy   OverflowPolicy
	events   chan Envelope
	overflow chan struct{}
	dropped  atomic.Int64

	mu           sync.Mutex
	closed       bool
	overflowOnce sync.Once
}

// NewClient constructs a client with a bounded outbound queue.
func NewClient(id, addr string, queueSize int, policy OverflowPolicy) *Client {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Client{
		ID:       id,
		Addr:     addr,
		policy:   policy,
		events:   make(chan Envelope, queueSize),
		overflow: make(chan struct{}),
	}
}

// Events is the outbound queue drained by the transport writer.
// It is closed when the client is closed.
func (c *Client) Events() <-chan Envelope {
	return c.events
}

// Overflowed is closed once the client exceeded its queue under
// OverflowDisconnect.
func (c *Client) Overflowed() <-chan struct{} {
	return c.overflow
}

// Dropped reports how many envelopes were discarded under OverflowDropOldest.
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

// Send enqueues an envelope without blocking.
func (c *Client) Send(env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.events <- env:
		return nil
	default:
	}

	if c.policy == OverflowDropOldest {
		select {
		case <-c.events:
			c.dropped.Add(1)
		default:
		}
		select {
		case c.events <- env:
			return nil
		default:
			return ErrQueueFull
		}
	}

	c.overflowOnce.Do(func() { close(c.overflow) })
	return ErrQueueFull
}

// Alive reports whether the client still accepts envelopes.
func (c *Client) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Close stops accepting envelopes and closes the queue. Safe to call twice.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}
