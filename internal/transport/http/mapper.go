package http

import (
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/proto"
)

func outboundFromEnvelope(env core.Envelope) proto.Envelope {
	return proto.Envelope{
		Kind:           string(env.Kind),
		Nickname:       env.Nickname,
		Text:           env.Text,
		Timestamp:      env.Timestamp,
		RenderAsMarkup: env.Markup,
	}
}
