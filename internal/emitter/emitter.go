package emitter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gatherspace/chat-sync/internal/adapter"
	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/ledger"
	"github.com/gatherspace/chat-sync/internal/logger"
	"github.com/gatherspace/chat-sync/internal/messaging"
	"github.com/gatherspace/chat-sync/internal/store"
)

// CursorKey identifies the registry-wide scan cursor in the store.
const CursorKey = "attendance-registry"

// Config holds the configuration for the attendance emitter
type Config struct {
	StartBlock      uint64
	CursorSaveFreq  uint64        // Save cursor every N blocks
	CursorSaveDelay time.Duration // Or save cursor every N seconds
}

// Emitter watches the event registry for attendance logs and publishes them
// to NATS so sync bridges can react incrementally instead of polling.
//
//go:generate mockgen -source=emitter.go -destination=../mocks/emitter.go -package=mocks -mock_names=Emitter=MockEmitter
type Emitter interface {
	// Run starts the attendance emitter
	Run(ctx context.Context) error
	// Close closes the emitter and cleans up resources
	Close()
}

type emitter struct {
	reader    ledger.Reader
	publisher messaging.Publisher
	store     store.Store
	config    Config
	clock     adapter.Clock
}

// NewEmitter creates a new attendance emitter
func NewEmitter(
	reader ledger.Reader,
	pub messaging.Publisher,
	st store.Store,
	cfg Config,
	clock adapter.Clock,
) Emitter {
	return &emitter{
		reader:    reader,
		publisher: pub,
		store:     st,
		config:    cfg,
		clock:     clock,
	}
}

// Run starts the attendance emitter
func (e *emitter) Run(ctx context.Context) error {
	// Determine starting block
	startBlock := e.config.StartBlock
	if startBlock == 0 {
		// Get last processed block from store
		lastBlock, err := e.store.GetSyncCursor(ctx, CursorKey)
		if err != nil {
			return fmt.Errorf("failed to get sync cursor: %w", err)
		}

		if lastBlock > 0 {
			startBlock = lastBlock + 1
			logger.Info("Resuming from last processed block", zap.Uint64("block", startBlock))
		} else {
			// Start from latest block
			latestBlock, err := e.reader.LatestBlock(ctx)
			if err != nil {
				return fmt.Errorf("failed to get latest block number: %w", err)
			}
			startBlock = latestBlock
			logger.Info("Starting from latest block", zap.Uint64("block", startBlock))
		}
	} else {
		logger.Info("Starting from configured block", zap.Uint64("block", startBlock))
	}

	// Channel for errors
	errCh := make(chan error, 1)

	// Start subscribing to attendance logs
	go func() {
		logger.Info("Starting attendance subscription")

		lastSavedBlock := uint64(0)
		lastSaveTime := e.clock.Now()

		handler := func(event *domain.AttendanceEvent) error {
			// Publish to NATS
			if err := e.publisher.PublishAttendance(ctx, event); err != nil {
				return fmt.Errorf("failed to publish attendance %s: %w", event.TxHash, err)
			}

			// Save cursor periodically (every N blocks or N seconds)
			shouldSave := event.BlockNumber-lastSavedBlock >= e.config.CursorSaveFreq ||
				e.clock.Since(lastSaveTime) >= e.config.CursorSaveDelay

			if shouldSave {
				if err := e.store.SetSyncCursor(ctx, CursorKey, event.BlockNumber); err != nil {
					logger.Warn("Failed to save sync cursor", zap.Error(err))
				} else {
					lastSavedBlock = event.BlockNumber
					lastSaveTime = e.clock.Now()
				}
			}

			return nil
		}

		err := e.reader.SubscribeAttendance(ctx, startBlock, handler)
		if err != nil {
			errCh <- err
		}
	}()

	// Wait for error or context cancellation
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the emitter and cleans up resources
func (e *emitter) Close() {
	e.reader.Close()
}
