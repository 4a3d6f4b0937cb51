package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/ssovee/Open-Data-API/auth"
	"github.com/ssovee/Open-Data-API/cache"
	"github.com/ssovee/Open-Data-API/config"
	"github.com/ssovee/Open-Data-API/database"
	"github.com/ssovee/Open-Data-API/gateway"
	"github.com/ssovee/Open-Data-API/metrics"
	"github.com/ssovee/Open-Data-API/objectstore"
	"github.com/ssovee/Open-Data-API/providers"
	"github.com/ssovee/Open-Data-API/relay"
	"github.com/ssovee/Open-Data-API/routes"
	"github.com/ssovee/Open-Data-API/scheduler"
	"github.com/ssovee/Open-Data-API/socket"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP, GraphQL and socket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := bootstrap()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, logger)
		},
	}
}

func newCache(ctx context.Context, logger *slog.Logger) cache.Cache {
	cfg := config.C.Redis
	if cfg.Addr == "" {
		return cache.NewMemoryCache()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-memory cache", "addr", cfg.Addr, "err", err)
		client.Close()
		return cache.NewMemoryCache()
	}
	logger.Info("using redis cache", "addr", cfg.Addr)
	return cache.NewRedisCache(client, "oda:")
}

func newImageStore(ctx context.Context) (objectstore.Store, error) {
	switch config.C.Images.Backend {
	case "minio":
		m := config.C.Minio
		return objectstore.NewMinioStore(ctx, m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket)
	default:
		return objectstore.NewDiskStore(config.C.Images.Dir)
	}
}

func serve(ctx context.Context, logger *slog.Logger) error {
	cfg := config.C

	if cfg.Database.Seed {
		if err := database.Seed(database.DB, false, logger); err != nil {
			return err
		}
	}

	currency, weather, err := providers.New(providers.Options{
		Kind:          cfg.Providers.Kind,
		CurrencyURL:   cfg.Providers.CurrencyURL,
		WeatherURL:    cfg.Providers.WeatherURL,
		WeatherAPIKey: cfg.Providers.WeatherAPIKey,
		Timeout:       cfg.Providers.Timeout,
		CacheTTL:      cfg.Providers.CacheTTL,
	}, newCache(ctx, logger), logger)
	if err != nil {
		return err
	}

	images, err := newImageStore(ctx)
	if err != nil {
		return fmt.Errorf("image store: %w", err)
	}

	collector := metrics.NewCollector()
	hub := relay.NewHub(logger, collector.Relay)

	srv := socket.NewSocketServer(hub, logger)
	go func() {
		if err := srv.Serve(); err != nil {
			logger.Error("socket.io server stopped", "err", err)
		}
	}()
	defer srv.Close()

	authSvc := auth.NewService(database.DB, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)
	gw, err := gateway.New(gateway.Deps{DB: database.DB, Auth: authSvc, Currency: currency, Weather: weather})
	if err != nil {
		return err
	}

	sched := scheduler.New(cfg.Notes.PurgeSchedule, logger, purgeTasks(authSvc, collector)...)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()
	if next := sched.NextRun(); next != nil {
		logger.Info("next purge", "at", next.Format(time.RFC3339))
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(routes.Deps{
		Config:   cfg,
		Logger:   logger,
		DB:       database.DB,
		Hub:      hub,
		SocketIO: srv,
		Metrics:  collector,
		Auth:     authSvc,
		Currency: currency,
		Weather:  weather,
		Images:   images,
		Gateway:  gw,
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
