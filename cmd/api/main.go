package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gatherspace/chat-sync/internal/access"
	"github.com/gatherspace/chat-sync/internal/adapter"
	"github.com/gatherspace/chat-sync/internal/api/middleware"
	"github.com/gatherspace/chat-sync/internal/api/server"
	"github.com/gatherspace/chat-sync/internal/api/shared/executor"
	"github.com/gatherspace/chat-sync/internal/config"
	"github.com/gatherspace/chat-sync/internal/identity"
	"github.com/gatherspace/chat-sync/internal/ledger"
	"github.com/gatherspace/chat-sync/internal/lifecycle"
	"github.com/gatherspace/chat-sync/internal/logger"
	"github.com/gatherspace/chat-sync/internal/messaging"
	"github.com/gatherspace/chat-sync/internal/reconcile"
	"github.com/gatherspace/chat-sync/internal/store"
	"github.com/gatherspace/chat-sync/internal/stream"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting Chat Sync API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store and adapters
	historyStore := store.NewPGStore(db)
	clockAdapter := adapter.NewClock()

	// Connect to the event registry
	ethDialer := adapter.NewEthClientDialer()
	ethClient, err := ethDialer.Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		logger.Fatal("Failed to dial Ethereum RPC", zap.Error(err), zap.String("rpc_url", cfg.Ethereum.RPCURL))
	}
	defer ethClient.Close()

	ledgerReader, err := ledger.NewReader(ledger.Config{
		ContractAddress: cfg.Ethereum.RegistryAddress,
		StartBlock:      cfg.Ethereum.StartBlock,
	}, ethClient, clockAdapter)
	if err != nil {
		logger.Fatal("Failed to create ledger reader", zap.Error(err))
	}
	logger.Info("Connected to event registry", zap.String("contract", cfg.Ethereum.RegistryAddress))

	// Connect to the messaging gateway
	gateway, err := messaging.NewGateway(messaging.GatewayConfig{
		Endpoint: cfg.Messaging.Endpoint,
		Env:      cfg.Messaging.Env,
	})
	if err != nil {
		logger.Fatal("Failed to create messaging gateway client", zap.Error(err))
	}
	defer gateway.Close()
	logger.Info("Connected to messaging gateway", zap.String("endpoint", cfg.Messaging.Endpoint))

	// Assemble the chat entry pipeline
	resolver := identity.NewResolver(gateway)
	gate := access.NewGate(ledgerReader)
	manager := lifecycle.NewManager(ledgerReader, gateway, resolver, gateway, historyStore)
	engine := reconcile.NewEngine(ledgerReader, gateway, resolver, historyStore, reconcile.Config{
		FallbackConcurrency: cfg.Sync.FallbackConcurrency,
	})
	exec := executor.NewExecutor(gate, manager, engine, gateway, historyStore, clockAdapter)

	// Start the message multiplexer
	mux := stream.NewMux(gateway, stream.Config{
		DedupWindow:      cfg.Sync.DedupWindow,
		SubscriberBuffer: cfg.Sync.SubscriberBuffer,
	})
	muxErrCh := make(chan error, 1)
	go func() {
		if err := mux.Run(ctx); err != nil && ctx.Err() == nil {
			muxErrCh <- err
		}
	}()

	// Create and start server
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
		},
	}
	srv := server.New(serverConfig, exec, mux)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-muxErrCh:
		logger.Error(err, zap.String("component", "stream-mux"))
		cancel()
	case err := <-errCh:
		logger.Error(err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("API server stopped")
}
