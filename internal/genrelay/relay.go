// Package genrelay forwards streamed text generation to a single caller.
package genrelay

import (
	"context"
	"errors"
	"iter"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// Sentinel terminates every stream.
	Sentinel = "[DONE]"

	errorPrefix      = "[Error] "
	noCredentialText = "未配置 API Key，请检查配置"
	defaultPrompt    = "你好"
	defaultModel     = "Qwen/Qwen2.5-7B-Instruct"
)

// ErrNoCredential is reported when no API key is configured.
var ErrNoCredential = errors.New("generation credential not configured")

// Session is one upstream streaming request.
type Session struct {
	Prompt       string
	Model        string
	SystemPrompt string
	APIKey       string
	BaseURL      string
}

// Stream is an open upstream session. Next blocks until a delta is
// available or the stream ends; Err reports why it ended.
type Stream interface {
	Next() bool
	Delta() string
	Err() error
	Close() error
}

// Provider opens upstream streaming sessions.
type Provider interface {
	Open(ctx context.Context, s Session) (Stream, error)
}

// Config holds the upstream credential and defaults.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
}

// Relay turns a prompt into a terminated sequence of frame payloads.
// It keeps no state between calls.
type Relay struct {
	cfg      Config
	provider Provider
	log      *zerolog.Logger
}

// New builds a relay.
func New(cfg Config, provider Provider, logger *zerolog.Logger) *Relay {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Relay{cfg: cfg, provider: provider, log: logger}
}

// Stream opens one upstream session and yields each delta with newlines
// escaped, then Sentinel. Failures yield a single "[Error] ..." payload
// before Sentinel. If ctx is cancelled or the consumer stops early the
// upstream session is closed and nothing more is yielded.
func (r *Relay) Stream(ctx context.Context, prompt, model string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if r.cfg.APIKey == "" {
			r.log.Warn().Err(ErrNoCredential).Msg("generation request rejected")
			if yield(errorPrefix + noCredentialText) {
				yield(Sentinel)
			}
			return
		}

		sess := r.session(prompt, model)
		log := r.log.With().Str("model", sess.Model).Logger()

		st, err := r.provider.Open(ctx, sess)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("open generation stream")
			if yield(ErrorNotice(err)) {
				yield(Sentinel)
			}
			return
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				log.Debug().Err(cerr).Msg("close generation stream")
			}
		}()

		chunks := 0
		for st.Next() {
			delta := st.Delta()
			if delta == "" {
				continue
			}
			chunks++
			if !yield(EscapeChunk(delta)) {
				log.Debug().Int("chunks", chunks).Msg("consumer stopped generation stream")
				return
			}
		}
		if ctx.Err() != nil {
			log.Debug().Int("chunks", chunks).Msg("generation stream cancelled")
			return
		}
		if err := st.Err(); err != nil {
			log.Warn().Err(err).Int("chunks", chunks).Msg("generation stream failed")
			if !yield(ErrorNotice(err)) {
				return
			}
		}
		log.Debug().Int("chunks", chunks).Msg("generation stream done")
		yield(Sentinel)
	}
}

func (r *Relay) session(prompt, model string) Session {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = defaultPrompt
	}
	if model == "" {
		model = r.cfg.Model
	}
	return Session{
		Prompt:       prompt,
		Model:        model,
		SystemPrompt: r.cfg.SystemPrompt,
		APIKey:       r.cfg.APIKey,
		BaseURL:      r.cfg.BaseURL,
	}
}

// EscapeChunk replaces newlines with a literal backslash-n so a chunk
// fits in a single event frame.
func EscapeChunk(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}

// ErrorNotice formats err as an error payload.
func ErrorNotice(err error) string {
	return errorPrefix + EscapeChunk(err.Error())
}
