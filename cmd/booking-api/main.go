package main

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/gfranca/atelieagenda/internal/booking"
	"github.com/gfranca/atelieagenda/internal/config"
	"github.com/gfranca/atelieagenda/internal/db"
	"github.com/gfranca/atelieagenda/internal/handlers"
	"github.com/gfranca/atelieagenda/internal/httpx"
	"github.com/gfranca/atelieagenda/internal/kafkax"
	"github.com/gfranca/atelieagenda/internal/obs"
	"github.com/gfranca/atelieagenda/internal/outbox"
	"github.com/gfranca/atelieagenda/internal/runtime"
	"github.com/gfranca/atelieagenda/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(cfg.ServiceName)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := obs.Setup(ctx, obs.ConfigFromEnv(cfg.ServiceName))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	pool, err := db.Open(ctx, db.Config{
		URL:             cfg.DatabaseURL,
		MaxConns:        int32(cfg.DBMaxConns),
		MinConns:        int32(cfg.DBMinConns),
		MaxConnLifetime: cfg.DBConnMaxLifetime,
		MaxConnIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	hoursRepo := storage.NewHoursRepository(pool)
	catalogRepo := storage.NewCatalogRepository(pool)
	apptRepo := storage.NewAppointmentRepository(pool)
	blockRepo := storage.NewBlockRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	writer := storage.NewBookingWriter(pool, apptRepo, outboxRepo)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   cfg.KafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	svc := booking.NewService(hoursRepo, catalogRepo, apptRepo, blockRepo, writer, logger)
	bookingHandler := handlers.NewBookingHandler(svc, logger)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo)
	blockHandler := handlers.NewBlockHandler(blockRepo)
	hoursHandler := handlers.NewHoursHandler(hoursRepo)

	// The public booking page sits behind a rate limit; admin endpoints are
	// reached only through the private network.
	var rateLimit httpx.Middleware
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		rateLimit = httpx.NewRedisRateLimiter(rdb, cfg.PublicRateLimit, cfg.PublicRateWindow, "booking").Middleware(logger, true)
	} else {
		rateLimit = httpx.NewRateLimiter(cfg.PublicRateLimit, cfg.PublicRateWindow).Middleware()
	}
	public := func(h http.HandlerFunc) http.Handler {
		return httpx.Chain(h, rateLimit)
	}

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: pool.ReadyCheck()},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)},
	)
	mux.Handle("/api/v1/public/slots", public(bookingHandler.Slots))
	mux.Handle("/api/v1/public/package-slots", public(bookingHandler.PackageSlots))
	mux.Handle("/api/v1/public/book", public(bookingHandler.Book))
	mux.Handle("/api/v1/public/services", public(catalogHandler.Services))
	mux.Handle("/api/v1/public/professionals", public(catalogHandler.Professionals))
	mux.HandleFunc("/api/v1/appointments", bookingHandler.List)
	mux.HandleFunc("/api/v1/appointments/cancel", bookingHandler.Cancel)
	mux.HandleFunc("/api/v1/blocks", blockHandler.Handle)
	mux.HandleFunc("/api/v1/business-hours", hoursHandler.Handle)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(cfg.CORSOrigins),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(30*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking-api")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
