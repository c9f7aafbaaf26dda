package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/gatherspace/chat-sync/internal/adapter"
	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/ledger"
	"github.com/gatherspace/chat-sync/internal/logger"
	"github.com/gatherspace/chat-sync/internal/reconcile"
	"github.com/gatherspace/chat-sync/internal/store"
)

// Config holds the configuration for the sync bridge
type Config struct {
	URL            string
	StreamName     string
	ConsumerName   string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	AckWaitTimeout time.Duration
	MaxDeliver     int
}

// Bridge consumes attendance events from NATS and reconciles the affected
// event's group membership.
type Bridge interface {
	// Run starts the sync bridge
	Run(ctx context.Context) error
	// Close closes the bridge and cleans up resources
	Close()
}

type bridge struct {
	nc      adapter.NatsConn
	js      adapter.JetStream
	reader  ledger.Reader
	engine  reconcile.Engine
	history store.Store
	json    adapter.JSON
	config  Config
}

// NewBridge creates a new sync bridge
func NewBridge(
	cfg Config,
	natsJS adapter.NatsJetStream,
	reader ledger.Reader,
	engine reconcile.Engine,
	history store.Store,
	jsonAdapter adapter.JSON,
) (Bridge, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &bridge{
		nc:      nc,
		js:      js,
		reader:  reader,
		engine:  engine,
		history: history,
		json:    jsonAdapter,
		config:  cfg,
	}, nil
}

// Run starts the sync bridge
func (b *bridge) Run(ctx context.Context) error {
	logger.Info("Starting sync bridge", zap.String("stream", b.config.StreamName), zap.String("consumer", b.config.ConsumerName))

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       b.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       b.config.AckWaitTimeout,
		MaxDeliver:    b.config.MaxDeliver,
		FilterSubject: "attendance.>",
	}

	consumer, err := b.js.CreateOrUpdateConsumer(ctx, b.config.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	msgChan := make(chan adapter.Message, 100)
	sub, err := consumer.Consume(func(msg adapter.Message) {
		msgChan <- msg
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.Info("Started consuming attendance events")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down sync bridge")
			return ctx.Err()
		case msg := <-msgChan:
			go b.handleMessage(ctx, msg)
		}
	}
}

// handleMessage processes a single attendance message
func (b *bridge) handleMessage(ctx context.Context, msg adapter.Message) {
	var event domain.AttendanceEvent
	if err := b.json.Unmarshal(msg.Data(), &event); err != nil {
		logger.Error(err, zap.String("message", "Failed to unmarshal attendance event"))
		// Terminate message for unparseable data
		if err := msg.Term(); err != nil {
			logger.Error(err, zap.String("message", "Failed to terminate message"))
		}
		return
	}

	logger.Info("Received attendance event",
		zap.Uint64("eventID", event.EventID),
		zap.String("attendee", string(event.Attendee)),
		zap.String("kind", string(event.Kind)),
		zap.String("txHash", event.TxHash),
	)

	if err := b.reconcileEvent(ctx, &event); err != nil {
		logger.Error(err, zap.String("message", "Failed to reconcile attendance event"))
		// NAK to retry
		if err := msg.Nak(); err != nil {
			logger.Error(err, zap.String("message", "Failed to NAK message"))
		}
		return
	}

	if err := msg.Ack(); err != nil {
		logger.Error(err, zap.String("message", "Failed to ACK message"))
	}
}

// reconcileEvent looks up the attendance event's registry record and, when a
// group exists, runs a membership sync against it. Events whose group has not
// been created yet are dropped; the next chat access reconciles them.
func (b *bridge) reconcileEvent(ctx context.Context, event *domain.AttendanceEvent) error {
	record, err := b.reader.GetEvent(ctx, event.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			logger.Warn("Attendance for unknown event, dropping", zap.Uint64("eventID", event.EventID))
			return nil
		}
		return fmt.Errorf("failed to read event record: %w", err)
	}

	if !record.HasGroup() {
		logger.Debug("Event has no group yet, skipping sync", zap.Uint64("eventID", event.EventID))
		return nil
	}

	// Mirror the group into history before membership rows reference it.
	// Best effort: a cache write failure never blocks the sync.
	if b.history != nil {
		if err := b.history.UpsertGroup(ctx, record.GroupRef, record.ID, record.Title); err != nil {
			logger.Warn("Failed to record group in history",
				zap.String("groupID", string(record.GroupRef)),
				zap.Error(err))
		}
	}

	result, err := b.engine.Sync(ctx, event.EventID, record.GroupRef)
	if err != nil {
		return fmt.Errorf("failed to sync group membership: %w", err)
	}

	logger.Info("Membership sync completed",
		zap.Uint64("eventID", event.EventID),
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)

	return nil
}

// Close closes the bridge and cleans up resources
func (b *bridge) Close() {
	if b.nc == nil {
		return
	}

	b.nc.Close()
}
