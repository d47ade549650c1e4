package proto

import (
	"bytes"
	"encoding/json"
	"errors"
)

var (
	// ErrNotObject is returned for payloads that are not a JSON object.
	ErrNotObject = errors.New("inbound payload is not a JSON object")
	// ErrTextNotString is returned when text is present but not a string.
	ErrTextNotString = errors.New("inbound text is not a string")
)

// Inbound is what a chat client sends. Both fields are optional.
type Inbound struct {
	Nickname *string `json:"nickname,omitempty"`
	Text     *string `json:"text,omitempty"`
}

// DecodeInbound parses a client payload field by field. A nickname of the
// wrong type is treated as absent; a text of the wrong type fails the
// whole payload. JSON null counts as absent for both fields.
func DecodeInbound(raw []byte) (Inbound, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Inbound{}, ErrNotObject
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return Inbound{}, err
	}

	var in Inbound
	if v, ok := fields["nickname"]; ok {
		in.Nickname, _ = decodeString(v)
	}
	if v, ok := fields["text"]; ok {
		text, ok := decodeString(v)
		if !ok {
			return Inbound{}, ErrTextNotString
		}
		in.Text = text
	}
	return in, nil
}

func decodeString(v json.RawMessage) (*string, bool) {
	if string(bytes.TrimSpace(v)) == "null" {
		return nil, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, false
	}
	return &s, true
}

// Envelope kinds on the wire.
const (
	KindSystem = "system"
	KindChat   = "chat"
)

// Envelope is the outbound broadcast unit.
type Envelope struct {
	Kind           string `json:"kind"`
	Nickname       string `json:"nickname"`
	Text           string `json:"text"`
	Timestamp      int64  `json:"timestamp"`
	RenderAsMarkup bool   `json:"render_as_markup"`
}

// Encode marshals v as UTF-8 JSON without escaping HTML or non-ASCII text.
// The trailing newline added by json.Encoder is stripped.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// NewInbound is a convenience for clients building a request.
func NewInbound(nickname, text string) Inbound {
	return Inbound{Nickname: &nickname, Text: &text}
}
