package core

import (
	"testing"
	"time"
)

func mustEnvelope(t *testing.T, ch <-chan Envelope, kind EnvelopeKind) Envelope {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case env, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed while waiting for %q envelope", kind)
			}
			if env.Kind == kind {
				return env
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected envelope kind %q not received", kind)
	return Envelope{}
}

func drain(ch <-chan Envelope) []Envelope {
	var out []Envelope
	for {
		select {
		case env, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, env)
		default:
			return out
		}
	}
}

func fixedClock(ms ...int64) func() time.Time {
	i := 0
	return func() time.Time {
		v := ms[len(ms)-1]
		if i < len(ms) {
			v = ms[i]
		}
		i++
		return time.UnixMilli(v)
	}
}
