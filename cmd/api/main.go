package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playerhire/internal/config"
	"playerhire/internal/database"
	"playerhire/internal/modules/availability"
	"playerhire/internal/modules/leasing"
	"playerhire/internal/pkg/events"
	jwtsvc "playerhire/internal/pkg/jwt"
	"playerhire/internal/pkg/logger"
	"playerhire/internal/pkg/metrics"
	"playerhire/internal/repository"
	"playerhire/internal/repository/cache"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	logg := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	defer func() { _ = logg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, logg)
	if err != nil {
		logg.Fatalw("database connect failed", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		logg.Fatalw("database migrate failed", "error", err)
	}

	listingRepo := repository.NewPlayerListingRepository(db)

	var listingCache leasing.ListingCache
	if cfg.RedisAddr != "" {
		c, err := cache.NewListingCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			logg.Warnw("redis unavailable, listing cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer func() { _ = c.Close() }()
			listingCache = c
		}
	}

	hub := availability.NewHub(logg)
	defer hub.Close()

	publishers := events.Multi{hub}
	if cfg.NATSURL != "" {
		natsPub, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSClientName)
		if err != nil {
			logg.Warnw("nats unavailable, events stay local", "url", cfg.NATSURL, "error", err)
		} else {
			defer natsPub.Close()
			publishers = append(publishers, natsPub)
		}
	}

	m := metrics.NewLeasing(cfg.MetricsNamespace)
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL).WithIssuer(cfg.JWTIssuer)

	leasingService := leasing.NewService(listingRepo, listingCache, publishers, m, logg)

	r := newRouter(routerDeps{
		log:            logg,
		jwt:            j,
		metrics:        m,
		leasing:        leasing.NewHandler(leasingService),
		availability:   availability.NewHandler(hub, cfg.CORSAllowedOrigins),
		allowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logg.Infow("http server listening", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatalw("http server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logg.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Errorw("http server shutdown failed", "error", err)
	}
}
