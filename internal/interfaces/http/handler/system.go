package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muhallimir/aims-commerce-chat/internal/domain/chat"
	"github.com/muhallimir/aims-commerce-chat/internal/interfaces/http/dto"
)

// SessionCounter reports how many live transport sessions the gateway holds
type SessionCounter interface {
	SessionCount() int
}

// SystemHandler serves health and runtime information endpoints
type SystemHandler struct {
	appName   string
	env       string
	registry  *chat.Registry
	sessions  SessionCounter
	startedAt time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(appName, env string, registry *chat.Registry, sessions SessionCounter) *SystemHandler {
	return &SystemHandler{
		appName:   appName,
		env:       env,
		registry:  registry,
		sessions:  sessions,
		startedAt: time.Now(),
	}
}

// Health is the keep-alive endpoint the platform's uptime probes hit. The
// connection server has no external dependencies to check; it reports its
// live presence gauges instead.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"time":                time.Now().Format(time.RFC3339),
		"uptime":              time.Since(h.startedAt).Round(time.Second).String(),
		"sessions":            h.sessions.SessionCount(),
		"participants_known":  h.registry.Len(),
		"participants_online": h.registry.OnlineCount(),
	})
}

// Ping responds with a simple pong for basic reachability checks
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Info returns application and runtime information
func (h *SystemHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"name":       h.appName,
		"env":        h.env,
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
		"started_at": h.startedAt.Format(time.RFC3339),
	}))
}
