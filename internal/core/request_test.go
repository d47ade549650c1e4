package core

import "testing"

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Request
	}{
		{"full", `{"nickname":"小明","text":"  hello  "}`, Request{Nickname: "小明", Text: "hello"}},
		{"missing nickname", `{"text":"hi"}`, Request{Nickname: DefaultNickname, Text: "hi"}},
		{"empty nickname kept", `{"nickname":"","text":"hi"}`, Request{Nickname: "", Text: "hi"}},
		{"null text", `{"nickname":"a","text":null}`, Request{Nickname: "a", Text: ""}},
		{"not json", `hello there`, Request{Nickname: DefaultNickname, Text: "hello there"}},
		{"json string", `"just a string"`, Request{Nickname: DefaultNickname, Text: `"just a string"`}},
		{"json null", `null`, Request{Nickname: DefaultNickname, Text: "null"}},
		{"numeric nickname keeps text", `{"nickname":5,"text":"hello"}`, Request{Nickname: DefaultNickname, Text: "hello"}},
		{"array nickname keeps text", `{"nickname":["a"],"text":" hi "}`, Request{Nickname: DefaultNickname, Text: "hi"}},
		{"numeric text", `{"nickname":"a","text":7}`, Request{Nickname: DefaultNickname, Text: `{"nickname":"a","text":7}`}},
		{"truncated", `{"text":"x"`, Request{Nickname: DefaultNickname, Text: `{"text":"x"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRequest([]byte(tt.raw)); got != tt.want {
				t.Fatalf("ParseRequest(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}
