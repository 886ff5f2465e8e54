package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/landlord/landlord-server/internal/cache"
	"github.com/landlord/landlord-server/internal/config"
	"github.com/landlord/landlord-server/internal/game"
	"github.com/landlord/landlord-server/internal/repository"
	"github.com/landlord/landlord-server/internal/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting landlord server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	gameMgr := game.NewManager(logger, cfg.Rules.GameConfig())

	// Snapshot store
	switch cfg.Database.Driver {
	case "postgres":
		store, err := repository.NewPostgresStore(ctx, cfg.Database.DSN, cfg.Database.MaxConns, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer store.Close()
		gameMgr.SetStore(store)
	case "sqlite":
		store, err := repository.OpenSQLite(cfg.Database.Path, logger)
		if err != nil {
			logger.Fatal("failed to open sqlite database", zap.Error(err))
		}
		defer store.Close()
		gameMgr.SetStore(store)
	default:
		logger.Warn("no snapshot store configured; games live in memory only")
	}

	// Snapshot cache
	if cfg.Redis.Address != "" {
		pool := cache.NewPool(cfg.Redis.Address, cfg.Redis.MaxIdle)
		defer pool.Close()
		gameMgr.SetCache(cache.NewSnapshotCache(pool, cfg.Redis.KeyPrefix, cfg.Redis.TTL, logger))
		logger.Info("redis snapshot cache enabled", zap.String("address", cfg.Redis.Address))
	}

	if cfg.Replay.Enabled {
		gameMgr.SetRecorder(game.NewReplayRecorder(logger, cfg.Replay.Directory))
		logger.Info("replay recording enabled", zap.String("directory", cfg.Replay.Directory))
	}

	auth := server.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if auth == nil {
		logger.Warn("auth.jwt_secret not configured; clients choose their own player ids")
	}

	hub := server.NewHub(gameMgr, auth, logger)
	gameMgr.SetNotificationHandler(hub.Notify)
	go hub.Run(ctx)

	if cfg.Server.TurnTimeout > 0 {
		go gameMgr.RunTurnTimeouts(ctx, cfg.Server.TurnTimeout, cfg.Server.TimeoutCheck)
		logger.Info("turn timeouts enabled", zap.Duration("timeout", cfg.Server.TurnTimeout))
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(server.ChainUnaryInterceptors(
			server.RecoveryInterceptor(logger),
			server.LoggingInterceptor(logger),
		)),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
		grpc.MaxConcurrentStreams(uint32(cfg.Server.GRPC.MaxConcurrentStreams)),
	)
	server.RegisterGameServiceServer(grpcServer, server.NewGameServer(gameMgr, auth, logger))

	lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}

	// Start gRPC server
	go func() {
		logger.Info("starting gRPC server", zap.String("address", cfg.Server.GRPC.Address))
		if serveErr := grpcServer.Serve(lis); serveErr != nil {
			logger.Error("gRPC server error", zap.Error(serveErr))
		}
	}()

	// Start WebSocket server
	wsServer := &http.Server{
		Addr: cfg.Server.WebSocket.Address,
		Handler: server.NewWebSocketHandler(hub, cfg.Server.WebSocket.Path, cfg.Server.AllowedOrigins,
			cfg.Server.WebSocket.ReadBufferSize, cfg.Server.WebSocket.WriteBufferSize),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("starting WebSocket server", zap.String("address", wsServer.Addr))
		if wsErr := wsServer.ListenAndServe(); wsErr != nil && !errors.Is(wsErr, http.ErrServerClosed) {
			logger.Error("WebSocket server error", zap.Error(wsErr))
		}
	}()

	// Start HTTP lobby
	app := server.NewHTTPApp(gameMgr, auth, cfg.Server.AllowedOrigins, logger)
	go func() {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.HTTP.Address))
		if httpErr := app.Listen(cfg.Server.HTTP.Address); httpErr != nil {
			logger.Error("HTTP server error", zap.Error(httpErr))
		}
	}()

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("WebSocket server shutdown", zap.Error(err))
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	logger.Info("landlord server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
