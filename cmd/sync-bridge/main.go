package main

import (
	"context"
	"errors"
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

	"github.com/gatherspace/chat-sync/internal/adapter"
	"github.com/gatherspace/chat-sync/internal/bridge"
	"github.com/gatherspace/chat-sync/internal/config"
	"github.com/gatherspace/chat-sync/internal/identity"
	"github.com/gatherspace/chat-sync/internal/ledger"
	"github.com/gatherspace/chat-sync/internal/logger"
	"github.com/gatherspace/chat-sync/internal/messaging"
	"github.com/gatherspace/chat-sync/internal/reconcile"
	"github.com/gatherspace/chat-sync/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSyncBridgeConfig(*configFile, *envPath)
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
			"service": "sync-bridge",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting Sync Bridge")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Initialize store and adapters
	historyStore := store.NewPGStore(db)
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	natsJS := adapter.NewNatsJetStream()

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

	// Assemble the reconciliation engine
	resolver := identity.NewResolver(gateway)
	engine := reconcile.NewEngine(ledgerReader, gateway, resolver, historyStore, reconcile.Config{
		FallbackConcurrency: cfg.Sync.FallbackConcurrency,
	})

	// Create the bridge
	syncBridge, err := bridge.NewBridge(bridge.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		ConsumerName:   cfg.NATS.ConsumerName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
		AckWaitTimeout: cfg.NATS.AckWait,
		MaxDeliver:     cfg.NATS.MaxDeliver,
	}, natsJS, ledgerReader, engine, historyStore, jsonAdapter)
	if err != nil {
		logger.Fatal("Failed to create sync bridge", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer syncBridge.Close()

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel for bridge errors
	errCh := make(chan error, 1)

	// Start the bridge
	go func() {
		if err := syncBridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.Error(err, zap.String("component", "bridge"))
		cancel()
	}

	// Give some time for in-flight messages to settle
	time.Sleep(time.Second)

	logger.Info("Sync Bridge stopped")
}
