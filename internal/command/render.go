package command

import (
	"fmt"
	"html/template"
	"strings"
)

const (
	fallbackMediaURL = "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3"
	fallbackCoverURL = "https://via.placeholder.com/80x80?text=Music"
)

var musicCardTmpl = template.Must(template.New("music").Parse(
	`<div class="music-card">` +
		`<div class="music-info">` +
		`<img src="{{.CoverURL}}" alt="{{.Title}}" class="music-cover">` +
		`<div class="music-details">` +
		`<div class="music-name">{{.Title}}</div>` +
		`<div class="music-singer">{{.Artist}}</div>` +
		`</div></div>` +
		`<audio controls class="music-player">` +
		`<source src="{{.MediaURL}}" type="audio/mpeg">您的浏览器不支持音频播放` +
		`</audio></div>`))

type weatherRow struct {
	Date, Icon, Condition, Temperature, Wind, AirQuality string
}

var weatherCardTmpl = template.Must(template.New("weather").Parse(
	`<div class="weather-card">` +
		`<div class="weather-header"><h3>📅 {{.Title}}</h3></div>` +
		`<div class="weather-forecast">` +
		`{{range .Rows}}<div class="weather-day">` +
		`<div class="day-date">{{.Date}}</div>` +
		`<div class="day-weather">{{.Icon}} {{.Condition}}</div>` +
		`<div class="day-temp">{{.Temperature}}</div>` +
		`<div class="day-wind">{{.Wind}}</div>` +
		`<div class="day-air">空气质量: {{.AirQuality}}</div>` +
		`</div>{{end}}` +
		`</div></div>`))

var movieFrameTmpl = template.Must(template.New("movie").Parse(
	`<iframe src="{{.}}" width="400" height="400" frameborder="0" allowfullscreen></iframe>`))

var assistantTmpl = template.Must(template.New("assistant").Parse(
	`<div class="ai-chat-container">` +
		`<div class="ai-chat-header">` +
		`<span class="ai-name">成小理</span>` +
		`<span class="ai-status">思考中...</span>` +
		`</div>` +
		`<div class="ai-chat-content" data-question="{{.Question}}" id="ai-response-{{.ID}}">` +
		`<div class="typing-indicator"><span></span><span></span><span></span></div>` +
		`</div></div>`))

func render(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}

// pictogram maps a condition description to an icon by substring.
func pictogram(condition string) string {
	switch {
	case strings.Contains(condition, "晴"):
		return "☀️"
	case strings.Contains(condition, "云"):
		return "☁️"
	case strings.Contains(condition, "雨"):
		return "🌧️"
	case strings.Contains(condition, "雪"):
		return "❄️"
	case strings.Contains(condition, "阴"):
		return "☁️"
	default:
		return "🌤️"
	}
}
