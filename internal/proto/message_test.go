package proto

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeKeepsMarkupAndUnicode(t *testing.T) {
	out, err := Encode(Envelope{
		Kind:           KindChat,
		Nickname:       "小明",
		Text:           `<div class="card">天气 & 晴</div>`,
		Timestamp:      42,
		RenderAsMarkup: true,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"kind":"chat","nickname":"小明","text":"<div class=\"card\">天气 & 晴</div>","timestamp":42,"render_as_markup":true}`
	if string(out) != want {
		t.Fatalf("got  %s\nwant %s", out, want)
	}
}

func TestEncodeInboundOmitsMissingFields(t *testing.T) {
	out, err := Encode(Inbound{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(out) != "{}" {
		t.Fatalf("unexpected payload %s", out)
	}

	out, err = Encode(NewInbound("bob", "@音乐一下"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(out), `"text":"@音乐一下"`) {
		t.Fatalf("unexpected payload %s", out)
	}
}

func TestDecodeInboundChecksFieldsSeparately(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name     string
		raw      string
		nickname *string
		text     *string
		err      error
	}{
		{"both", `{"nickname":"小明","text":"hi"}`, str("小明"), str("hi"), nil},
		{"numeric nickname", `{"nickname":5,"text":"hello"}`, nil, str("hello"), nil},
		{"object nickname", `{"nickname":{"a":1},"text":"hello"}`, nil, str("hello"), nil},
		{"null fields", `{"nickname":null,"text":null}`, nil, nil, nil},
		{"numeric text", `{"nickname":"a","text":42}`, nil, nil, ErrTextNotString},
		{"array", `["a"]`, nil, nil, ErrNotObject},
		{"plain text", `hello`, nil, nil, ErrNotObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := DecodeInbound([]byte(tt.raw))
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if err != nil {
				return
			}
			if !sameString(in.Nickname, tt.nickname) || !sameString(in.Text, tt.text) {
				t.Fatalf("DecodeInbound(%s) = {%v %v}", tt.raw, deref(in.Nickname), deref(in.Text))
			}
		})
	}
}

func TestDecodeInboundMalformedJSON(t *testing.T) {
	if _, err := DecodeInbound([]byte(`{"text":"x"`)); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
