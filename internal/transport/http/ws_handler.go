package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/proto"
	"github.com/vovakirdan/chatrelay/internal/utils"
)

const rateLimitedText = "发送过于频繁，请稍后再试"

var (
	errQueueOverflow = errors.New("outbound queue overflow")
	errHubClosed     = errors.New("client closed by hub")
)

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub       *core.Hub
	readLimit int64
	queueSize int
	policy    core.OverflowPolicy
	rateLimit int
	log       *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:       hub,
		readLimit: cfg.MaxMessageBytes,
		queueSize: cfg.SendQueueSize,
		policy:    core.ParseOverflowPolicy(cfg.OverflowPolicy),
		rateLimit: cfg.MessageRateLimit,
		log:       logger,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()
	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}

	client := core.NewClient(utils.NewID(), r.RemoteAddr, h.queueSize, h.policy)
	if err := h.hub.OnConnect(client); err != nil {
		h.log.Warn().Err(err).Str("client_id", client.ID).Msg("connection refused by hub")
		if errors.Is(err, core.ErrHubClosed) {
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		} else {
			_ = conn.Close(websocket.StatusInternalError, "internal error")
		}
		return
	}
	defer h.hub.OnDisconnect(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	limiter := newRateLimiter(h.rateLimit)
	limiter.startReset(ctx.Done())

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, limiter)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	status, reason := h.closeStatus(client, err)
	// Close before cancelling so a pending Read can observe the close handshake.
	_ = conn.Close(status, reason)
	cancel()
	<-errCh
}

func (h *WSHandler) closeStatus(client *core.Client, err error) (websocket.StatusCode, string) {
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
		return websocket.StatusNormalClosure, "closing"
	case errors.Is(err, errQueueOverflow):
		h.log.Warn().Str("client_id", client.ID).Msg("closing slow client")
		return websocket.StatusPolicyViolation, "send queue overflow"
	case errors.Is(err, errHubClosed):
		return websocket.StatusGoingAway, "server shutting down"
	}

	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusNoStatusRcvd:
		return websocket.StatusNormalClosure, "closing"
	case websocket.StatusMessageTooBig:
		return websocket.StatusMessageTooBig, "message too big"
	}

	h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
	return websocket.StatusInternalError, "internal error"
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, limiter *rateLimiter) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			h.log.Debug().Err(err).Str("client_id", client.ID).Msg("read ws message")
			return err
		}

		if !limiter.allow() {
			if err := h.hub.Notify(client, core.SystemReply(rateLimitedText)); err != nil {
				h.log.Warn().Err(err).Str("client_id", client.ID).Msg("notify rate limit")
			}
			continue
		}
		h.hub.OnMessage(ctx, client, data)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case env, ok := <-client.Events():
			if !ok {
				return errHubClosed
			}
			payload, err := proto.Encode(outboundFromEnvelope(env))
			if err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("encode envelope")
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-client.Overflowed():
			return errQueueOverflow
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
