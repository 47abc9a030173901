package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appchat "github.com/muhallimir/aims-commerce-chat/internal/application/chat"
	"github.com/muhallimir/aims-commerce-chat/internal/domain/chat"
	"github.com/muhallimir/aims-commerce-chat/internal/infrastructure/auth"
	"github.com/muhallimir/aims-commerce-chat/internal/infrastructure/config"
	"github.com/muhallimir/aims-commerce-chat/internal/infrastructure/logger"
	"github.com/muhallimir/aims-commerce-chat/internal/infrastructure/telemetry"
	"github.com/muhallimir/aims-commerce-chat/internal/interfaces/http/dto"
	"github.com/muhallimir/aims-commerce-chat/internal/interfaces/http/handler"
	"github.com/muhallimir/aims-commerce-chat/internal/interfaces/http/middleware"
	"github.com/muhallimir/aims-commerce-chat/internal/interfaces/http/router"
	"github.com/muhallimir/aims-commerce-chat/internal/interfaces/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting chat connection server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize metrics
	ctx := context.Background()
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	chatMetrics, err := telemetry.NewChatMetrics()
	if err != nil {
		log.Fatal("Failed to create chat metrics", zap.Error(err))
	}

	// Wire the presence core
	registry := chat.NewRegistry()
	presenceService := appchat.NewPresenceService(registry, log, chatMetrics)
	messageRouter := appchat.NewMessageRouter(registry, log, chatMetrics)

	if err := chatMetrics.RegisterRegistryGauges(registry.Len, registry.OnlineCount); err != nil {
		log.Warn("Failed to register registry gauges", zap.Error(err))
	}

	// Connect-token verification is optional; the storefront backend is the
	// default identity authority.
	var verifier *auth.TokenVerifier
	if cfg.Auth.RequireToken {
		verifier = auth.NewTokenVerifier(cfg.Auth)
		log.Info("Connect-token verification enabled")
	}

	gateway := ws.NewGateway(cfg.WS, cfg.HTTP.CORSAllowOrigins, registry, presenceService, messageRouter, verifier, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. CORS - Handle cross-origin requests
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Env, registry, gateway)

	// Keep-alive endpoint the platform's uptime probes hit (outside API
	// versioning, matching the path the storefront pings)
	engine.GET("/_health", systemHandler.Health)

	// WebSocket entrypoint
	engine.GET("/ws", gateway.Handler())

	systemRoutes := router.NewDomainGroup("system", "/system").
		GET("/info", systemHandler.Info).
		GET("/ping", systemHandler.Ping)

	router.NewRouter(engine).Register(systemRoutes).Setup()

	engine.NoRoute(func(c *gin.Context) {
		logger.GetGinLogger(c).Debug("unknown route", zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			"NOT_FOUND", "route not found", c.GetString(middleware.RequestIDKey)))
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gateway.Shutdown(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down metrics", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
