package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/chatrelay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8000/ws", "WebSocket address")
	nickname := flag.String("nickname", "tester", "nickname to send with the message")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	var welcome proto.Envelope
	if err := wsjson.Read(ctx, conn, &welcome); err != nil {
		return fmt.Errorf("read welcome: %w", err)
	}
	if welcome.Kind != proto.KindSystem {
		return fmt.Errorf("expected system welcome, got kind=%q", welcome.Kind)
	}
	fmt.Printf("Welcome: %s\n", welcome.Text)

	if err := wsjson.Write(ctx, conn, proto.NewInbound(*nickname, *text)); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	for {
		var env proto.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received: kind=%s nickname=%s markup=%t ts=%d text=%q\n",
			env.Kind, env.Nickname, env.RenderAsMarkup, env.Timestamp, env.Text)

		if env.Kind == proto.KindChat && env.Nickname == *nickname {
			return nil
		}
	}
}
