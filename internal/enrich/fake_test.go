package enrich

import (
	"context"
	"sync/atomic"
)

type fakeProvider struct {
	track       Track
	trackErr    error
	forecast    Forecast
	forecastErr error
	calls       atomic.Int32
}

func (f *fakeProvider) RandomTrack(context.Context) (Track, error) {
	return f.track, f.trackErr
}

func (f *fakeProvider) Forecast(_ context.Context, city string) (Forecast, error) {
	f.calls.Add(1)
	if f.forecastErr != nil {
		return Forecast{}, f.forecastErr
	}
	fc := f.forecast
	fc.City = city
	return fc, nil
}
