package genrelay

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

// OpenAIProvider opens chat-completion streams against any
// OpenAI-compatible endpoint. Each session gets its own client.
type OpenAIProvider struct {
	opts []option.RequestOption
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider builds a provider; opts are applied to every client.
func NewOpenAIProvider(opts ...option.RequestOption) *OpenAIProvider {
	return &OpenAIProvider{opts: opts}
}

// Open starts a streaming chat completion for s.
func (p *OpenAIProvider) Open(ctx context.Context, s Session) (Stream, error) {
	opts := []option.RequestOption{option.WithAPIKey(s.APIKey)}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	opts = append(opts, p.opts...)
	client := openai.NewClient(opts...)

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if s.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(s.SystemPrompt))
	}
	msgs = append(msgs, openai.UserMessage(s.Prompt))

	stream := client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:    s.Model,
		Messages: msgs,
	})
	if err := stream.Err(); err != nil {
		_ = stream.Close()
		return nil, err
	}
	return &oaiStream{stream: stream}, nil
}

type oaiStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
	delta  string
}

func (s *oaiStream) Next() bool {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		s.delta = chunk.Choices[0].Delta.Content
		return true
	}
	s.delta = ""
	return false
}

func (s *oaiStream) Delta() string { return s.delta }

func (s *oaiStream) Err() error { return s.stream.Err() }

func (s *oaiStream) Close() error { return s.stream.Close() }
