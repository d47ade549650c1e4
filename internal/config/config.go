package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	MaxMessageBytes  int64  `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	SendQueueSize    int    `mapstructure:"send_queue_size" yaml:"send_queue_size"`
	OverflowPolicy   string `mapstructure:"overflow_policy" yaml:"overflow_policy"`
	MessageRateLimit int    `mapstructure:"message_rate_limit" yaml:"message_rate_limit"`
	WelcomeText      string `mapstructure:"welcome_text" yaml:"welcome_text"`

	Servers []ServerEntry `mapstructure:"servers" yaml:"servers"`

	AI     AIConfig     `mapstructure:"ai" yaml:"ai"`
	Enrich EnrichConfig `mapstructure:"enrich" yaml:"enrich"`
	Cache  CacheConfig  `mapstructure:"cache" yaml:"cache"`
	Movie  MovieConfig  `mapstructure:"movie" yaml:"movie"`
}

// ServerEntry is one chat endpoint advertised by /api/servers.
type ServerEntry struct {
	Name string `mapstructure:"name" yaml:"name" json:"name"`
	URL  string `mapstructure:"url" yaml:"url" json:"url"`
}

// AIConfig configures the generation provider.
type AIConfig struct {
	APIKey       string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
	Model        string `mapstructure:"model" yaml:"model"`
	SystemPrompt string `mapstructure:"system_prompt" yaml:"system_prompt"`
}

// EnrichConfig configures the music/weather API client.
type EnrichConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// CacheConfig configures the optional redis forecast cache.
type CacheConfig struct {
	RedisURL    string        `mapstructure:"redis_url" yaml:"redis_url"`
	ForecastTTL time.Duration `mapstructure:"forecast_ttl" yaml:"forecast_ttl"`
}

// MovieConfig configures the @电影 player frame.
type MovieConfig struct {
	ParserURL string `mapstructure:"parser_url" yaml:"parser_url"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		MaxMessageBytes:   64 << 10,
		SendQueueSize:     256,
		OverflowPolicy:    "disconnect",
		WelcomeText:       "连接成功，欢迎来到 OODaiP 聊天室！",
		AI: AIConfig{
			Model:        "Qwen/Qwen2.5-7B-Instruct",
			SystemPrompt: "你是成小理，一位友好的中文智能助手，请用简洁自然的中文回答。",
		},
		Enrich: EnrichConfig{
			BaseURL: "https://v2.xxapi.cn",
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			ForecastTTL: 10 * time.Minute,
		},
		Movie: MovieConfig{
			ParserURL: "https://jx.m3u8.tv/jiexi/?url=",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// Only the fields exposed as command line flags are considered.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}
