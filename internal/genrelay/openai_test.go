package genrelay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/openai/openai-go/option"
)

func sseChunk(content string) string {
	payload, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion.chunk",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"delta":         map[string]any{"content": content},
			"finish_reason": nil,
		}},
	})
	return fmt.Sprintf("data: %s\n\n", payload)
}

func TestOpenAIProviderStreamsDeltas(t *testing.T) {
	var gotBody struct {
		Model    string `json:"model"`
		Stream   bool   `json:"stream"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var gotAuth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"你好", "，", "世界"} {
			_, _ = fmt.Fprint(w, sseChunk(part))
		}
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer ts.Close()

	relay := New(Config{
		APIKey:       "sk-test",
		BaseURL:      ts.URL,
		Model:        "test-model",
		SystemPrompt: "be brief",
	}, NewOpenAIProvider(option.WithMaxRetries(0)), nil)

	frames := slices.Collect(relay.Stream(context.Background(), "问候", ""))

	want := []string{"你好", "，", "世界", Sentinel}
	if !slices.Equal(frames, want) {
		t.Fatalf("frames = %q, want %q", frames, want)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotBody.Model != "test-model" || !gotBody.Stream {
		t.Errorf("unexpected request: %+v", gotBody)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Content != "问候" {
		t.Errorf("unexpected messages: %+v", gotBody.Messages)
	}
}
