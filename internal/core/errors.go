package core

import "errors"

var (
	// ErrClientClosed is returned when sending to a connection that is gone.
	ErrClientClosed = errors.New("client closed")
	// ErrQueueFull is returned when a connection's outbound queue overflowed.
	ErrQueueFull = errors.New("send queue full")
	// ErrHubClosed is returned when connecting to a hub that has shut down.
	ErrHubClosed = errors.New("hub closed")
	// ErrDuplicateClient is returned when a client id is already registered.
	ErrDuplicateClient = errors.New("duplicate client id")
)
