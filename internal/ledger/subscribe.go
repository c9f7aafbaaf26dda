package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/gatherspace/chat-sync/internal/logger"
)

// SubscribeAttendance streams live RSVP and ticket-purchase logs from the
// registry contract, from fromBlock onward.
func (r *ethReader) SubscribeAttendance(ctx context.Context, fromBlock uint64, handler AttendanceHandler) error {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		Addresses: []common.Address{r.contract},
		Topics: [][]common.Hash{
			{rsvpEventSignature, ticketEventSignature},
		},
	}

	logs := make(chan types.Log)
	sub, err := r.client.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return fmt.Errorf("failed to subscribe to attendance logs: %w", err)
	}
	defer func() {
		sub.Unsubscribe()
		logger.Info("Unsubscribed from attendance logs")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("subscription error: %w", err)
		case vLog := <-logs:
			event, err := r.ParseAttendanceLog(vLog)
			if err != nil {
				logger.Error(err, zap.String("message", "Error parsing attendance log"))
				continue
			}

			// Stamp with block time so downstream consumers can order
			// attendance without another header fetch.
			header, err := r.client.HeaderByNumber(ctx, new(big.Int).SetUint64(vLog.BlockNumber))
			if err == nil {
				event.Timestamp = r.clock.Unix(int64(header.Time), 0) //nolint:gosec,G115 // header.Time is a uint64 from geth which is safe to cast
			}

			if err := handler(event); err != nil {
				logger.Error(err, zap.String("message", "Error handling attendance event"))
			}
		}
	}
}
