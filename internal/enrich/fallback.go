package enrich

import (
	"context"

	"github.com/rs/zerolog"
)

// Fallback serves forecasts from primary and substitutes synthetic data
// when primary fails. Tracks are passed through untouched.
type Fallback struct {
	primary   Provider
	synthetic *Synthetic
	log       *zerolog.Logger
}

var _ Provider = (*Fallback)(nil)

// NewFallback wraps primary.
func NewFallback(primary Provider, synthetic *Synthetic, logger *zerolog.Logger) *Fallback {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Fallback{primary: primary, synthetic: synthetic, log: logger}
}

// RandomTrack delegates to primary.
func (f *Fallback) RandomTrack(ctx context.Context) (Track, error) {
	return f.primary.RandomTrack(ctx)
}

// Forecast returns primary's forecast, or synthetic rows if it fails.
func (f *Fallback) Forecast(ctx context.Context, city string) (Forecast, error) {
	fc, err := f.primary.Forecast(ctx, city)
	if err == nil {
		return fc, nil
	}
	f.log.Warn().Err(err).Str("city", city).Msg("forecast upstream failed, using synthetic data")
	return f.synthetic.Forecast(ctx, city)
}
