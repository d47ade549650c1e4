package core

import (
	"strings"

	"github.com/vovakirdan/chatrelay/internal/proto"
)

// ParseRequest decodes a raw client payload. It never fails: a nickname that
// is missing or not a string becomes DefaultNickname, and a payload that is
// not a JSON object, or whose text is not a string, becomes a message from
// DefaultNickname whose text is the raw payload.
func ParseRequest(raw []byte) Request {
	in, err := proto.DecodeInbound(raw)
	if err != nil {
		return Request{Nickname: DefaultNickname, Text: string(raw)}
	}

	req := Request{Nickname: DefaultNickname}
	if in.Nickname != nil {
		req.Nickname = *in.Nickname
	}
	if in.Text != nil {
		req.Text = strings.TrimSpace(*in.Text)
	}
	return req
}
