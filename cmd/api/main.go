package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nanopro-wms/backend/api/routes"
	"github.com/nanopro-wms/backend/internal/addresses"
	internalauth "github.com/nanopro-wms/backend/internal/auth"
	"github.com/nanopro-wms/backend/internal/blacklist"
	"github.com/nanopro-wms/backend/internal/history"
	"github.com/nanopro-wms/backend/internal/imports"
	"github.com/nanopro-wms/backend/internal/picking"
	"github.com/nanopro-wms/backend/internal/realtime"
	"github.com/nanopro-wms/backend/internal/transfers"
	"github.com/nanopro-wms/backend/internal/users"
	"github.com/nanopro-wms/backend/internal/verification"
	"github.com/nanopro-wms/backend/pkg/auth/session"
	"github.com/nanopro-wms/backend/pkg/config"
	"github.com/nanopro-wms/backend/pkg/db"
	"github.com/nanopro-wms/backend/pkg/logger"
	"github.com/nanopro-wms/backend/pkg/metrics"
	"github.com/nanopro-wms/backend/pkg/migrate"
	"github.com/nanopro-wms/backend/pkg/outbox"
	"github.com/nanopro-wms/backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	outboxRepo := outbox.NewRepository(gdb)
	publisher := outbox.NewService(outboxRepo, logg)

	usersRepo := users.NewRepository(gdb)
	usersSvc := users.NewService(usersRepo, cfg.Password)
	authSvc := internalauth.NewService(usersRepo, sessionManager, cfg.JWT)

	importsSvc := imports.NewService(imports.NewRepository(gdb), dbClient, publisher)
	blacklistSvc := blacklist.NewService(blacklist.NewRepository(gdb))
	addressesSvc := addresses.NewService(addresses.NewRepository(gdb))
	transfersRepo := transfers.NewRepository(gdb)
	transfersSvc := transfers.NewService(transfersRepo)

	pickRepo := picking.NewRepository(gdb)
	verifRepo := verification.NewRepository(gdb)
	historyRepo := history.NewRepository(gdb)

	historySvc := history.NewService(historyRepo, dbClient, publisher, transfersRepo)
	verificationSvc := verification.NewService(verification.ServiceParams{
		Repo:      verifRepo,
		Tx:        dbClient,
		Publisher: publisher,
		Denylist:  blacklistSvc,
		History:   historyRepo,
		Picks:     pickRepo,
		Logger:    logg,
	})
	pickingSvc := picking.NewService(picking.ServiceParams{
		Repo:         pickRepo,
		Tx:           dbClient,
		Publisher:    publisher,
		Orders:       importsSvc,
		Denylist:     blacklistSvc,
		Verification: verifRepo,
		VerifIndex:   verifRepo,
		HistoryIndex: historyRepo,
		Transfers:    transfersSvc,
		Logger:       logg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(logg)
	go hub.Run(ctx)

	dispatcher := realtime.NewDispatcher(outboxRepo, hub, cfg.Realtime, logg)
	go dispatcher.Run(ctx)

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	handler := routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, httpMetrics, routes.Services{
		Auth:         authSvc,
		Users:        usersSvc,
		Imports:      importsSvc,
		Picking:      pickingSvc,
		Verification: verificationSvc,
		History:      historySvc,
		Blacklist:    blacklistSvc,
		Addresses:    addressesSvc,
		Transfers:    transfersSvc,
		Hub:          hub,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	lctx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(lctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(lctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(lctx, "api server stopped")
}
