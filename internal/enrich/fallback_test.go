package enrich

import (
	"context"
	"errors"
	"testing"
)

func TestFallbackUsesPrimaryWhenHealthy(t *testing.T) {
	primary := &fakeProvider{forecast: Forecast{Days: []Day{{Condition: "雪"}}}}
	f := NewFallback(primary, NewSynthetic(nil, 1), nil)

	fc, err := f.Forecast(context.Background(), "哈尔滨")
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(fc.Days) != 1 || fc.Days[0].Condition != "雪" {
		t.Fatalf("expected primary data, got %+v", fc)
	}
}

func TestFallbackSubstitutesSynthetic(t *testing.T) {
	primary := &fakeProvider{forecastErr: ErrUpstream}
	f := NewFallback(primary, NewSynthetic(nil, 1), nil)

	fc, err := f.Forecast(context.Background(), "上海")
	if err != nil {
		t.Fatalf("fallback must absorb upstream errors: %v", err)
	}
	if fc.City != "上海" || len(fc.Days) != syntheticDays {
		t.Fatalf("expected synthetic forecast, got %+v", fc)
	}
}

func TestFallbackPassesTrackErrors(t *testing.T) {
	boom := errors.New("boom")
	f := NewFallback(&fakeProvider{trackErr: boom}, NewSynthetic(nil, 1), nil)

	if _, err := f.RandomTrack(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected track error to pass through, got %v", err)
	}
}
