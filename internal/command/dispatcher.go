// Package command decides what a chat message turns into before it is broadcast.
//
// Messages that start with a trigger such as @天气 are rewritten into rich
// markup, answered with a usage hint, or both. Everything else passes through.
package command

import (
	"context"
	"html/template"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/enrich"
	"github.com/vovakirdan/chatrelay/internal/utils"
)

// Triggers recognised at the start of a message.
const (
	TriggerMusic      = "@音乐一下"
	TriggerWeather    = "@天气"
	TriggerMovie      = "@电影"
	TriggerAssistant  = "@成小理"
	TriggerNews       = "@新闻"
	TriggerShortVideo = "@小视频"
)

// Usage hints sent as system replies.
const (
	HintMusic      = "音乐一下：该功能正在建设中，敬请期待～"
	HintWeather    = "天气：请输入正确的格式，例如 @天气[北京] 或 @天气 北京"
	HintMovie      = "电影：请输入正确的格式，例如 @电影[https://v.qq.com/...] 或 @电影 https://v.qq.com/..."
	HintNews       = "新闻：该功能正在建设中，敬请期待～"
	HintShortVideo = "小视频：该功能正在建设中，敬请期待～"

	defaultQuestion  = "你好，有什么可以帮助你的吗？"
	defaultParserURL = "https://jx.m3u8.tv/jiexi/?url="
)

var (
	weatherPattern = regexp.MustCompile(`^@天气\s*\[?([^\]]+)\]?$`)
	moviePattern   = regexp.MustCompile(`^@电影\s*\[?(https?://[^\]]+)\]?$`)
)

// Enricher is the content source for the music and weather commands.
type Enricher interface {
	RandomTrack(ctx context.Context) (enrich.Track, error)
	Forecast(ctx context.Context, city string) (enrich.Forecast, error)
}

// handler rewrites text into markup. ok=false leaves the message untouched.
type handler func(ctx context.Context, text string) (markup string, ok bool)

// rule binds a trigger to its handler and usage hint. A nil handler means
// the feature is not available yet and only the hint is sent.
type rule struct {
	trigger string
	hint    string
	handle  handler
}

// Dispatcher implements core.Dispatcher.
type Dispatcher struct {
	enricher  Enricher
	parserURL string
	now       func() time.Time
	newID     func() string
	log       *zerolog.Logger
	rules     []rule
}

var _ core.Dispatcher = (*Dispatcher)(nil)

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithParserURL sets the movie parsing-service prefix; the target URL is appended.
func WithParserURL(prefix string) Option {
	return func(d *Dispatcher) {
		if prefix != "" {
			d.parserURL = prefix
		}
	}
}

// WithClock overrides the clock used for fallback forecast dates.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithIDFunc overrides the generator for assistant widget identifiers.
func WithIDFunc(fn func() string) Option {
	return func(d *Dispatcher) { d.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.log = logger
		}
	}
}

// New builds a dispatcher backed by enricher.
func New(enricher Enricher, opts ...Option) *Dispatcher {
	nop := zerolog.Nop()
	d := &Dispatcher{
		enricher:  enricher,
		parserURL: defaultParserURL,
		now:       time.Now,
		newID:     utils.NewID,
		log:       &nop,
	}
	for _, opt := range opts {
		opt(d)
	}
	// Order matters: at most one of these rules runs per message.
	d.rules = []rule{
		{trigger: TriggerMusic, hint: HintMusic, handle: d.music},
		{trigger: TriggerWeather, hint: HintWeather, handle: d.weather},
		{trigger: TriggerMovie, hint: HintMovie, handle: d.movie},
		{trigger: TriggerNews, hint: HintNews},
		{trigger: TriggerShortVideo, hint: HintShortVideo},
	}
	return d
}

// Dispatch returns the sender's (possibly rewritten) envelope, followed by a
// system reply when the command was malformed or is not available.
func (d *Dispatcher) Dispatch(ctx context.Context, req core.Request) []core.Envelope {
	text := req.Text
	markup := false

	matched := d.match(text)
	if matched != nil && matched.handle != nil {
		if out, ok := matched.handle(ctx, text); ok {
			text, markup = out, true
		}
	}

	if strings.HasPrefix(text, TriggerAssistant) {
		if out, ok := d.assistant(text); ok {
			text, markup = out, true
		}
	}

	out := []core.Envelope{{
		Kind:     core.KindChat,
		Nickname: req.Nickname,
		Text:     text,
		Markup:   markup,
	}}
	if matched != nil && !markup && strings.HasPrefix(text, matched.trigger) {
		d.log.Debug().Str("trigger", matched.trigger).Msg("command needs usage hint")
		out = append(out, core.SystemReply(matched.hint))
	}
	return out
}

func (d *Dispatcher) match(text string) *rule {
	for i := range d.rules {
		if strings.HasPrefix(text, d.rules[i].trigger) {
			return &d.rules[i]
		}
	}
	return nil
}

func (d *Dispatcher) music(ctx context.Context, _ string) (string, bool) {
	track, err := d.enricher.RandomTrack(ctx)
	if err != nil {
		d.log.Warn().Err(err).Str("trigger", TriggerMusic).Msg("random track failed, using default card")
		track = enrich.Track{Title: "默认音乐", Artist: "系统推荐"}
	}
	if track.Title == "" {
		track.Title = "未知歌曲"
	}
	if track.Artist == "" {
		track.Artist = "未知歌手"
	}
	if track.CoverURL == "" {
		track.CoverURL = fallbackCoverURL
	}
	if track.MediaURL == "" {
		track.MediaURL = fallbackMediaURL
	}
	return d.renderOrLog(musicCardTmpl, track)
}

func (d *Dispatcher) weather(ctx context.Context, text string) (string, bool) {
	m := weatherPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	city := strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), "[]"))
	if city == "" {
		return "", false
	}

	title := city + " 天气预报"
	fc, err := d.enricher.Forecast(ctx, city)
	if err != nil {
		d.log.Warn().Err(err).Str("city", city).Msg("forecast failed, using placeholder card")
		fc = d.placeholderForecast()
		title = "模拟天气预报"
	} else if fc.City != "" {
		title = fc.City + " 天气预报"
	}

	rows := make([]weatherRow, 0, len(fc.Days))
	for _, day := range fc.Days {
		rows = append(rows, weatherRow{
			Date:        day.Date,
			Icon:        pictogram(day.Condition),
			Condition:   day.Condition,
			Temperature: day.Temperature,
			Wind:        day.Wind,
			AirQuality:  day.AirQuality,
		})
	}
	return d.renderOrLog(weatherCardTmpl, struct {
		Title string
		Rows  []weatherRow
	}{title, rows})
}

func (d *Dispatcher) placeholderForecast() enrich.Forecast {
	today := d.now()
	return enrich.Forecast{Days: []enrich.Day{
		{Date: today.Format(time.DateOnly), Condition: "晴", Temperature: "18~28°C", Wind: "南风2-3级", AirQuality: "优"},
		{Date: today.AddDate(0, 0, 1).Format(time.DateOnly), Condition: "多云", Temperature: "17~26°C", Wind: "东风1-2级", AirQuality: "良"},
	}}
}

func (d *Dispatcher) movie(_ context.Context, text string) (string, bool) {
	m := moviePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	src := d.parserURL + url.QueryEscape(strings.TrimSpace(m[1]))
	return d.renderOrLog(movieFrameTmpl, src)
}

func (d *Dispatcher) assistant(text string) (string, bool) {
	question := strings.TrimSpace(strings.TrimPrefix(text, TriggerAssistant))
	if question == "" {
		question = defaultQuestion
	}
	return d.renderOrLog(assistantTmpl, struct {
		Question string
		ID       string
	}{question, d.newID()})
}

func (d *Dispatcher) renderOrLog(tmpl *template.Template, data any) (string, bool) {
	out, err := render(tmpl, data)
	if err != nil {
		d.log.Error().Err(err).Msg("render markup")
		return "", false
	}
	return out, true
}
