package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/genrelay"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer builds the HTTP server: chat socket, generation stream,
// server directory and health check.
func NewServer(hub *core.Hub, relay *genrelay.Relay, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg, logger)))

	stream := NewStreamHandler(relay, logger)
	router.GET("/ai/stream", stream.Handle)
	router.POST("/ai/stream", stream.Handle)

	api := router.Group("/api")
	api.GET("/servers", directoryHandler(cfg.Servers))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

// directoryHandler lists the configured chat servers.
// GET /api/servers
func directoryHandler(servers []config.ServerEntry) gin.HandlerFunc {
	if servers == nil {
		servers = []config.ServerEntry{}
	}
	return func(c *gin.Context) {
		c.PureJSON(stdhttp.StatusOK, gin.H{"servers": servers})
	}
}
