package http

import (
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/genrelay"
)

// StreamHandler serves the generation relay as server-sent events.
type StreamHandler struct {
	relay *genrelay.Relay
	log   *zerolog.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(relay *genrelay.Relay, logger *zerolog.Logger) *StreamHandler {
	return &StreamHandler{relay: relay, log: logger}
}

// StreamRequest carries the prompt and optional model, from the query
// string, a form or a JSON body.
type StreamRequest struct {
	Prompt string `form:"prompt" json:"prompt"`
	Model  string `form:"model" json:"model"`
}

// Handle streams one generation session.
// GET|POST /ai/stream
func (h *StreamHandler) Handle(c *gin.Context) {
	var req StreamRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid stream request")
		c.JSON(stdhttp.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream; charset=utf-8")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(stdhttp.StatusOK)

	frames := 0
	for frame := range h.relay.Stream(c.Request.Context(), req.Prompt, req.Model) {
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", frame); err != nil {
			h.log.Debug().Err(err).Int("chunks", frames).Msg("stream client gone")
			return
		}
		c.Writer.Flush()
		frames++
	}

	h.log.Debug().Str("model", req.Model).Int("chunks", frames).Msg("stream finished")
}
