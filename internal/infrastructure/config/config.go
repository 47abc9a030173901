package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	WS        WSConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// WSConfig holds WebSocket transport configuration
type WSConfig struct {
	ReadBufferSize   int
	WriteBufferSize  int
	MaxMessageSize   int64         // Max inbound frame size in bytes
	SendQueueSize    int           // Outbound events buffered per session
	WriteWait        time.Duration // Deadline for a single outbound write
	PongWait         time.Duration // Liveness window; connection is dropped when no pong arrives
	PingInterval     time.Duration // Must be shorter than PongWait
	HandshakeTimeout time.Duration
}

// AuthConfig holds connect-token verification settings. Verification is off
// by default: the upstream storefront backend authenticates participants and
// the connection server trusts the identity it is handed. Enabling
// RequireToken makes the gateway verify a JWT before an identification
// event is accepted.
type AuthConfig struct {
	RequireToken bool
	Secret       string
	Issuer       string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string // OTLP gRPC endpoint (e.g., "localhost:4317")
	ServiceName       string
	ExportInterval    time.Duration
	Insecure          bool // Use insecure (non-TLS) connection (development only)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CHAT_ prefix (e.g., CHAT_AUTH_SECRET)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		WS: WSConfig{
			ReadBufferSize:   v.GetInt("ws.read_buffer_size"),
			WriteBufferSize:  v.GetInt("ws.write_buffer_size"),
			MaxMessageSize:   v.GetInt64("ws.max_message_size"),
			SendQueueSize:    v.GetInt("ws.send_queue_size"),
			WriteWait:        v.GetDuration("ws.write_wait"),
			PongWait:         v.GetDuration("ws.pong_wait"),
			PingInterval:     v.GetDuration("ws.ping_interval"),
			HandshakeTimeout: v.GetDuration("ws.handshake_timeout"),
		},
		Auth: AuthConfig{
			RequireToken: v.GetBool("auth.require_token"),
			Secret:       v.GetString("auth.secret"),
			Issuer:       v.GetString("auth.issuer"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			ServiceName:       v.GetString("telemetry.service_name"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "aims-commerce-chat"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "5003"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	// NOTE: CORS origins are intentionally not given a default fallback to
	// "*". An empty list rejects cross-origin requests until explicitly
	// configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.WS.ReadBufferSize == 0 {
		cfg.WS.ReadBufferSize = 1024
	}
	if cfg.WS.WriteBufferSize == 0 {
		cfg.WS.WriteBufferSize = 1024
	}
	if cfg.WS.MaxMessageSize == 0 {
		cfg.WS.MaxMessageSize = 32 << 10 // 32KB
	}
	if cfg.WS.SendQueueSize == 0 {
		cfg.WS.SendQueueSize = 64
	}
	if cfg.WS.WriteWait == 0 {
		cfg.WS.WriteWait = 10 * time.Second
	}
	if cfg.WS.PongWait == 0 {
		cfg.WS.PongWait = 60 * time.Second
	}
	if cfg.WS.PingInterval == 0 {
		cfg.WS.PingInterval = (cfg.WS.PongWait * 9) / 10
	}
	if cfg.WS.HandshakeTimeout == 0 {
		cfg.WS.HandshakeTimeout = 10 * time.Second
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "aims-commerce-backend"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "aims-commerce-chat"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.WS.PingInterval >= c.WS.PongWait {
		return fmt.Errorf("ws.ping_interval (%s) must be shorter than ws.pong_wait (%s)",
			c.WS.PingInterval, c.WS.PongWait)
	}
	if c.WS.SendQueueSize <= 0 {
		return fmt.Errorf("ws.send_queue_size must be positive")
	}

	if c.Auth.RequireToken && c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required when auth.require_token is enabled")
	}

	if c.App.Env == "production" {
		if c.Auth.RequireToken && len(c.Auth.Secret) < 32 {
			return fmt.Errorf("auth.secret must be at least 32 characters in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}
