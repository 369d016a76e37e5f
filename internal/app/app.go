// Package app wires the checkout server: configuration, stores, upstream
// clients, settlement strategies and the HTTP surface.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/banhkem/checkout/internal/client"
	"github.com/banhkem/checkout/internal/domain/checkout"
	"github.com/banhkem/checkout/internal/domain/order"
	"github.com/banhkem/checkout/internal/domain/settle"
	"github.com/banhkem/checkout/internal/handler"
	storagememory "github.com/banhkem/checkout/internal/storage/memory"
	storageredis "github.com/banhkem/checkout/internal/storage/redis"
	"github.com/banhkem/checkout/pkg/health"
	"github.com/banhkem/checkout/pkg/httpmiddleware"
)

// stores groups the per-session durable state behind one bundle so the Redis
// and in-memory variants wire identically.
type stores struct {
	pending order.PendingStore
	history order.HistoryStore
	results settle.ResultStore
	points  client.PointsCache
}

type redisPinger struct {
	rdb *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Session state lives in Redis when configured; without it the service
	// still runs, on process-local stores.
	var st stores
	if cfg.RedisURL != "" {
		rdb, err := storageredis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer func() {
			_ = rdb.Close()
		}()

		healthSvc.AddReadinessCheck("redis", 5*time.Second, health.PingCheck(redisPinger{rdb: rdb}))
		st = stores{
			pending: storageredis.NewPendingStore(rdb, cfg.Pending.TTL),
			history: storageredis.NewHistoryStore(rdb),
			results: storageredis.NewResultStore(rdb),
			points:  storageredis.NewPointsCache(rdb, time.Hour),
		}
	} else {
		lg.Warn("no redis url configured, using in-memory stores")
		st = stores{
			pending: storagememory.NewPendingStore(),
			history: storagememory.NewHistoryStore(),
			results: storagememory.NewResultStore(),
			points:  storagememory.NewPointsCache(),
		}
	}

	// Upstream service clients.
	orders := client.NewOrderClient(cfg.Services.OrderURL, cfg.Services.Timeout)
	payments := client.NewPaymentClient(cfg.Services.PaymentURL, cfg.Services.Timeout)
	loyalty := client.NewLoyaltyClient(cfg.Services.LoyaltyURL, cfg.Services.Timeout, st.points)

	// Settlement strategies, one per payment method.
	strategies := map[order.PaymentMethod]settle.Strategy{
		order.MethodCOD:   settle.NewCash(orders, st.history),
		order.MethodVNPay: settle.NewGateway(order.MethodVNPay, orders, payments.CreateVNPayPayment, st.pending),
		order.MethodMoMo:  settle.NewGateway(order.MethodMoMo, orders, payments.CreateMoMoPayment, st.pending),
	}

	coordinator := checkout.NewCoordinator(strategies, loyalty)
	reconciler := settle.NewReconciler(st.pending, st.history, st.results, payments)

	h := handler.New(coordinator, reconciler, loyalty, orders, st.history, st.results)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", http.StripPrefix("/api", h.Routes()))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{"Content-Type", "X-Session-ID", "X-Request-ID"},
			}),
			httpmiddleware.RateLimit(httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("checkout-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.LogRequests(),
		),
	}

	healthSvc.SetReady(true)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
