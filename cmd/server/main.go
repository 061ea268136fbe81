package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/karystudio/podpool/config/logger"
	postgresConfig "github.com/karystudio/podpool/config/storage/postgresql"
	redisConfig "github.com/karystudio/podpool/config/storage/redis"
	config "github.com/karystudio/podpool/config/utils"
	"github.com/karystudio/podpool/internal/adapter/broker/rabbitmq"
	"github.com/karystudio/podpool/internal/adapter/pool"
	"github.com/karystudio/podpool/internal/adapter/secret"
	"github.com/karystudio/podpool/internal/adapter/storage/postgres"
	redisAdapter "github.com/karystudio/podpool/internal/adapter/storage/redis"
	"github.com/karystudio/podpool/internal/core/port"
	"github.com/karystudio/podpool/internal/core/service"
	"github.com/karystudio/podpool/internal/handler/rest"
	"go.uber.org/zap"
)

// _shutdownPeriod is time to wait before gracefully shutting server
// _readinessDrainDelay is time to sleep while context shutdown message propagate
const (
	_shutdownPeriod      = 10 * time.Second
	_readinessDrainDelay = 5 * time.Second
)

func main() {
	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCtxCancel()

	// Init config & logger
	appConfig := config.New()
	baseLogger := logger.Build(appConfig.Logger)
	zap.L().Info("Starting the application",
		zap.String("app", appConfig.App.Name),
		zap.String("env", appConfig.App.Env),
		zap.String("owner", appConfig.App.Owner))

	// Init database service
	dbService, err := postgresConfig.New(rootCtx, appConfig.DB, baseLogger.Named("DB"))
	if err != nil {
		zap.L().Error("Error initializing database connection", zap.Error(err))
		os.Exit(1)
	}
	zap.L().Info("Successfully connected to the database", zap.String("db", appConfig.DB.Connection))

	// Migrate database
	if err := dbService.Migrate(); err != nil {
		zap.L().Error("Error migrating database", zap.Error(err))
		os.Exit(1)
	}
	zap.L().Info("Successfully migrated the database")

	// Init cache service
	redisService, err := redisConfig.New(rootCtx, appConfig.Redis)
	if err != nil {
		zap.L().Error("Error initializing cache connection", zap.Error(err))
		os.Exit(1)
	}
	zap.L().Info("Successfully connected to the cache server", zap.String("address", appConfig.Redis.Addr))

	// Secret box for the stored pool API keys
	secretBox, err := secret.NewBox(appConfig.Pool.SecretKey)
	if err != nil {
		zap.L().Error("Error building secret box", zap.Error(err))
		os.Exit(1)
	}

	// Stores
	storeLogger := baseLogger.Named("Store")
	workspaces := postgres.NewWorkspaceRepository(dbService, storeLogger)
	swarms := postgres.NewSwarmRepository(dbService, storeLogger)
	tasks := postgres.NewTaskBindingRepository(dbService, storeLogger)
	repos := postgres.NewRepositoryStore(dbService, storeLogger)
	sessions := redisAdapter.NewSessionStore(redisService.Sessions, baseLogger.Named("Sessions"))

	// Pool service client
	poolClient := pool.NewClient(appConfig.Pool.BaseURL, baseLogger.Named("Pool"))

	// Realtime broadcaster, transport picked by config
	var broadcaster port.EventBroadcaster
	if appConfig.Broadcast.Enabled {
		switch appConfig.Broadcast.Driver {
		case "rabbitmq":
			broadcaster, err = rabbitmq.NewBroadcaster(appConfig.Broker.AMQPURL(), baseLogger.Named("Broker"))
			if err != nil {
				zap.L().Error("Error initializing broker connection", zap.Error(err))
				os.Exit(1)
			}
		default:
			broadcaster = redisAdapter.NewBroadcaster(redisService.Client, baseLogger.Named("Broadcast"))
		}
	}

	// Orchestrators
	serviceCfg := service.Config{
		MockMode:         appConfig.Pool.MockMode,
		BroadcastEnabled: appConfig.Broadcast.Enabled,
	}
	serviceLogger := baseLogger.Named("Service")
	claimService := service.NewClaimService(workspaces, swarms, poolClient, secretBox, serviceLogger)
	dropService := service.NewDropService(workspaces, swarms, tasks, repos, poolClient, secretBox, broadcaster, serviceCfg, serviceLogger)

	// HTTP surface
	handler := rest.NewPoolManagerHandler(claimService, dropService, baseLogger.Named("REST"))
	checks := []rest.HealthCheck{
		dbService.DBHealth,
		func(ctx context.Context) error { return redisService.Client.Ping(ctx).Err() },
	}
	router := rest.NewRouter(handler, sessions, checks, baseLogger.Named("REST"))

	server := &http.Server{
		Addr:         appConfig.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  time.Duration(appConfig.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(appConfig.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		zap.L().Info("HTTP server listening", zap.String("addr", appConfig.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("HTTP server failed", zap.Error(err))
			rootCtxCancel()
		}
	}()

	// Wait for ctx cancelation
	<-rootCtx.Done()

	// Wait for signal propagation
	time.Sleep(_readinessDrainDelay)
	zap.L().Info("Readiness check propagated, now waiting for ongoing requests to finish")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), _shutdownPeriod)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("Forcing HTTP server close", zap.Error(err))
		server.Close()
	}

	dbService.Close()
	redisService.Client.Close()

	zap.L().Info("Graceful shutdown complete.")
}
