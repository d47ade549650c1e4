package core

import (
	"fmt"
	"testing"
)

func benchmarkBroadcast(b *testing.B, recipients int) {
	hub := NewHub(nil, nil, nil)

	clients := make([]*Client, 0, recipients)
	for i := range recipients {
		c := NewClient(fmt.Sprintf("c%d", i), "", 1, OverflowDropOldest)
		hub.OnConnect(c)
		clients = append(clients, c)
	}

	target := clients[0]
	env := Envelope{Kind: KindChat, Nickname: "sender", Text: "payload"}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		hub.Broadcast(env)
		<-target.Events()
	}
}

func BenchmarkBroadcast_10(b *testing.B)  { benchmarkBroadcast(b, 10) }
func BenchmarkBroadcast_100(b *testing.B) { benchmarkBroadcast(b, 100) }
func BenchmarkBroadcast_500(b *testing.B) { benchmarkBroadcast(b, 500) }
