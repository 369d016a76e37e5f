package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (CHECKOUT_ prefix), flags, or YAML config files.
type Config struct {
	Addr     string `default:"0.0.0.0:8080" usage:"API server listen address"`
	RedisURL string `usage:"Redis connection URL (CHECKOUT_REDIS_URL or REDIS_URL)" flag:"redis-url"`

	Services  ServicesConfig
	Pending   PendingConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// ServicesConfig holds the base URLs and shared timeout for the upstream
// services the checkout layer orchestrates.
type ServicesConfig struct {
	OrderURL   string        `usage:"Order service base URL" flag:"order-url"`
	PaymentURL string        `usage:"Payment service base URL" flag:"payment-url"`
	LoyaltyURL string        `usage:"Loyalty service base URL" flag:"loyalty-url"`
	Timeout    time.Duration `default:"10s" usage:"Upstream HTTP client timeout"`
}

// PendingConfig controls the pending-payment record store.
type PendingConfig struct {
	TTL time.Duration `default:"30m" usage:"Pending payment record TTL" flag:"pending-ttl"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CHECKOUT",
		Files:     []string{"config.yaml", "/etc/checkout/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.Services.OrderURL == "" {
		return nil, errors.New("order service URL is required: set CHECKOUT_SERVICES_ORDER_URL")
	}
	if cfg.Services.PaymentURL == "" {
		return nil, errors.New("payment service URL is required: set CHECKOUT_SERVICES_PAYMENT_URL")
	}
	if cfg.Services.LoyaltyURL == "" {
		return nil, errors.New("loyalty service URL is required: set CHECKOUT_SERVICES_LOYALTY_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like REDIS_URL and PORT to the
// application's CHECKOUT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.RedisURL == "" {
		if v := os.Getenv("REDIS_URL"); v != "" {
			c.RedisURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
