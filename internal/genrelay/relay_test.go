package genrelay

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"
)

type fakeStream struct {
	ctx    context.Context
	deltas []string
	err    error
	block  bool // wait for ctx after the deltas run out

	mu     sync.Mutex
	pos    int
	closes int
}

func (s *fakeStream) Next() bool {
	s.mu.Lock()
	if s.pos < len(s.deltas) {
		s.pos++
		s.mu.Unlock()
		return true
	}
	s.mu.Unlock()
	if s.block {
		<-s.ctx.Done()
	}
	return false
}

func (s *fakeStream) Delta() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deltas[s.pos-1]
}

func (s *fakeStream) Err() error {
	if s.block && s.ctx.Err() != nil {
		return s.ctx.Err()
	}
	return s.err
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *fakeStream) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

type fakeProvider struct {
	stream  *fakeStream
	openErr error

	mu       sync.Mutex
	sessions []Session
}

func (p *fakeProvider) Open(ctx context.Context, s Session) (Stream, error) {
	p.mu.Lock()
	p.sessions = append(p.sessions, s)
	p.mu.Unlock()
	if p.openErr != nil {
		return nil, p.openErr
	}
	p.stream.ctx = ctx
	return p.stream, nil
}

func (p *fakeProvider) opened() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

func TestStreamWithoutCredential(t *testing.T) {
	provider := &fakeProvider{stream: &fakeStream{}}
	relay := New(Config{}, provider, nil)

	frames := slices.Collect(relay.Stream(context.Background(), "hi", ""))

	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %q", frames)
	}
	if frames[0] != "[Error] "+noCredentialText || frames[1] != Sentinel {
		t.Fatalf("unexpected frames: %q", frames)
	}
	if provider.opened() != 0 {
		t.Fatal("upstream must not be contacted without a credential")
	}
}

func TestStreamForwardsChunksInOrder(t *testing.T) {
	stream := &fakeStream{deltas: []string{"你好", "", "，世界\n", "第二行\n\n结束"}}
	provider := &fakeProvider{stream: stream}
	relay := New(Config{APIKey: "sk", BaseURL: "http://upstream", SystemPrompt: "sys"}, provider, nil)

	frames := slices.Collect(relay.Stream(context.Background(), "  ", ""))

	want := []string{"你好", `，世界\n`, `第二行\n\n结束`, Sentinel}
	if !slices.Equal(frames, want) {
		t.Fatalf("frames = %q, want %q", frames, want)
	}
	if stream.closeCount() != 1 {
		t.Fatalf("upstream closed %d times, want 1", stream.closeCount())
	}

	sess := provider.sessions[0]
	if sess.Prompt != defaultPrompt || sess.Model != defaultModel || sess.APIKey != "sk" ||
		sess.BaseURL != "http://upstream" || sess.SystemPrompt != "sys" {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestStreamModelOverride(t *testing.T) {
	provider := &fakeProvider{stream: &fakeStream{}}
	relay := New(Config{APIKey: "sk", Model: "cfg-model"}, provider, nil)

	_ = slices.Collect(relay.Stream(context.Background(), "q", "override"))
	_ = slices.Collect(relay.Stream(context.Background(), "q", ""))

	if provider.sessions[0].Model != "override" || provider.sessions[1].Model != "cfg-model" {
		t.Fatalf("unexpected models: %q %q", provider.sessions[0].Model, provider.sessions[1].Model)
	}
}

func TestStreamUpstreamFailureMidStream(t *testing.T) {
	stream := &fakeStream{deltas: []string{"part"}, err: errors.New("connection reset")}
	relay := New(Config{APIKey: "sk"}, &fakeProvider{stream: stream}, nil)

	frames := slices.Collect(relay.Stream(context.Background(), "q", ""))

	want := []string{"part", "[Error] connection reset", Sentinel}
	if !slices.Equal(frames, want) {
		t.Fatalf("frames = %q, want %q", frames, want)
	}
	if stream.closeCount() != 1 {
		t.Fatalf("closed %d times", stream.closeCount())
	}
}

func TestStreamOpenFailure(t *testing.T) {
	relay := New(Config{APIKey: "sk"}, &fakeProvider{openErr: errors.New("401 unauthorized")}, nil)

	frames := slices.Collect(relay.Stream(context.Background(), "q", ""))

	want := []string{"[Error] 401 unauthorized", Sentinel}
	if !slices.Equal(frames, want) {
		t.Fatalf("frames = %q, want %q", frames, want)
	}
}

func TestStreamCancellationClosesUpstream(t *testing.T) {
	stream := &fakeStream{deltas: []string{"a"}, block: true}
	relay := New(Config{APIKey: "sk"}, &fakeProvider{stream: stream}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan []string)
	go func() {
		var frames []string
		for f := range relay.Stream(ctx, "q", "") {
			frames = append(frames, f)
			if f == "a" {
				cancel()
			}
		}
		done <- frames
	}()

	select {
	case frames := <-done:
		if !slices.Equal(frames, []string{"a"}) {
			t.Fatalf("nothing may follow cancellation, got %q", frames)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancellation")
	}
	if stream.closeCount() != 1 {
		t.Fatalf("upstream closed %d times, want 1", stream.closeCount())
	}
}

func TestStreamConsumerStopsEarly(t *testing.T) {
	stream := &fakeStream{deltas: []string{"a", "b", "c"}}
	relay := New(Config{APIKey: "sk"}, &fakeProvider{stream: stream}, nil)

	for f := range relay.Stream(context.Background(), "q", "") {
		if f == "a" {
			break
		}
	}
	if stream.closeCount() != 1 {
		t.Fatalf("upstream closed %d times, want 1", stream.closeCount())
	}
}

func TestEscapeChunk(t *testing.T) {
	if got := EscapeChunk("a\nb\n"); got != `a\nb\n` {
		t.Fatalf("EscapeChunk = %q", got)
	}
}
