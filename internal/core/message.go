package core

// EnvelopeKind tells receivers who produced an envelope.
type EnvelopeKind string

const (
	// KindSystem marks server-originated envelopes (welcome, command replies).
	KindSystem EnvelopeKind = "system"
	// KindChat marks a participant's message, possibly rewritten by a command.
	KindChat EnvelopeKind = "chat"
)

const (
	// DefaultNickname is used when the sender did not supply a usable one.
	DefaultNickname = "匿名"
	// SystemNickname signs command replies.
	SystemNickname = "系统机器人"
)

// Envelope is the unit broadcast to every connection.
// It is passed by value so each recipient holds its own copy.
type Envelope struct {
	Kind     EnvelopeKind
	Nickname string
	Text     string
	// Markup is true when Text is pre-rendered rich content.
	Markup bool
	// Timestamp is milliseconds since epoch, stamped by the hub.
	Timestamp int64
}

// Request is an inbound chat message after parsing.
type Request struct {
	Nickname string
	Text     string
}

// SystemReply builds a plain-text system envelope.
func SystemReply(text string) Envelope {
	return Envelope{
		Kind:     KindSystem,
		Nickname: SystemNickname,
		Text:     text,
	}
}
