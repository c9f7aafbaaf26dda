package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/gatherspace/chat-sync/internal/adapter"
	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/logger"
)

// Attendance log signatures emitted by the event registry contract.
var (
	// AttendeeRSVPed(uint256 indexed eventId, address indexed attendee)
	rsvpEventSignature = crypto.Keccak256Hash([]byte("AttendeeRSVPed(uint256,address)"))

	// TicketPurchased(uint256 indexed eventId, address indexed attendee, uint256 price)
	ticketEventSignature = crypto.Keccak256Hash([]byte("TicketPurchased(uint256,address,uint256)"))
)

// getEventABI is the registry's event lookup view:
// getEvent(uint256) returns (address organizer, string title, uint256 capacity, uint256 ticketPrice, string groupRef)
const getEventABIJSON = `[{"constant":true,"inputs":[{"name":"eventId","type":"uint256"}],"name":"getEvent","outputs":[{"name":"organizer","type":"address"},{"name":"title","type":"string"},{"name":"capacity","type":"uint256"},{"name":"ticketPrice","type":"uint256"},{"name":"groupRef","type":"string"}],"payable":false,"stateMutability":"view","type":"function"}]`

// AttendanceHandler is called for each live attendance log.
type AttendanceHandler func(event *domain.AttendanceEvent) error

// Reader reads attendance entitlement facts from the event registry contract.
// It never writes to the ledger.
//
//go:generate mockgen -source=reader.go -destination=../mocks/ledger.go -package=mocks -mock_names=Reader=MockLedgerReader
type Reader interface {
	// GetAttendees returns the entitlement set for an event: the union of
	// RSVP and ticket-purchase log attendees, deduplicated case-insensitively.
	// Returns an empty set (not an error) when no logs exist yet.
	GetAttendees(ctx context.Context, eventID uint64) (map[domain.Address]struct{}, error)

	// GetEvent reads the registry record for an event id.
	GetEvent(ctx context.Context, eventID uint64) (*domain.Event, error)

	// LatestBlock returns the current chain head number.
	LatestBlock(ctx context.Context) (uint64, error)

	// SubscribeAttendance streams live attendance logs from fromBlock onward,
	// invoking handler per log. Blocks until ctx is cancelled or the
	// subscription fails.
	SubscribeAttendance(ctx context.Context, fromBlock uint64, handler AttendanceHandler) error

	// Close closes the underlying connection.
	Close()
}

// Config holds the registry location and scan bounds.
type Config struct {
	ContractAddress string
	StartBlock      uint64 // registry deploy height; scans never go below it
}

type ethReader struct {
	client   adapter.EthClient
	clock    adapter.Clock
	contract common.Address
	eventABI abi.ABI
	start    uint64
}

// NewReader creates a registry reader over the given Ethereum client.
func NewReader(cfg Config, client adapter.EthClient, clock adapter.Clock) (Reader, error) {
	parsed, err := abi.JSON(strings.NewReader(getEventABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry ABI: %w", err)
	}

	return &ethReader{
		client:   client,
		clock:    clock,
		contract: common.HexToAddress(cfg.ContractAddress),
		eventABI: parsed,
		start:    cfg.StartBlock,
	}, nil
}

// GetAttendees returns the deduplicated union of RSVP and ticket attendees.
func (r *ethReader) GetAttendees(ctx context.Context, eventID uint64) (map[domain.Address]struct{}, error) {
	eventIDHash := common.BigToHash(new(big.Int).SetUint64(eventID))

	query := ethereum.FilterQuery{
		Addresses: []common.Address{r.contract},
		Topics: [][]common.Hash{
			{rsvpEventSignature, ticketEventSignature},
			{eventIDHash},
		},
	}

	logs, err := r.filterLogsWithPagination(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}

	attendees := make(map[domain.Address]struct{}, len(logs))
	for _, vLog := range logs {
		record, err := r.ParseAttendanceLog(vLog)
		if err != nil {
			logger.Warn("Skipping unparseable attendance log",
				zap.String("txHash", vLog.TxHash.Hex()),
				zap.Error(err))
			continue
		}
		attendees[record.Attendee] = struct{}{}
	}

	return attendees, nil
}

// GetEvent reads the registry record for an event id.
func (r *ethReader) GetEvent(ctx context.Context, eventID uint64) (*domain.Event, error) {
	data, err := r.eventABI.Pack("getEvent", new(big.Int).SetUint64(eventID))
	if err != nil {
		return nil, fmt.Errorf("failed to pack getEvent call: %w", err)
	}

	result, err := r.client.CallContract(ctx, ethereum.CallMsg{
		To:   &r.contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}

	out, err := r.eventABI.Unpack("getEvent", result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack getEvent result: %w", err)
	}
	if len(out) != 5 {
		return nil, fmt.Errorf("unexpected getEvent output arity: %d", len(out))
	}

	organizer, ok := out[0].(common.Address)
	if !ok {
		return nil, fmt.Errorf("unexpected organizer type in getEvent output")
	}
	if organizer == (common.Address{}) {
		return nil, domain.ErrEventNotFound
	}

	title, _ := out[1].(string)
	capacity, _ := out[2].(*big.Int)
	price, _ := out[3].(*big.Int)
	groupRef, _ := out[4].(string)

	event := &domain.Event{
		ID:        eventID,
		Organizer: domain.NormalizeAddress(organizer.Hex()),
		Title:     title,
		GroupRef:  domain.GroupID(groupRef),
	}
	if capacity != nil {
		event.Capacity = capacity.Uint64()
	}
	if price != nil {
		event.TicketPrice = price.String()
	}

	return event, nil
}

// LatestBlock returns the current chain head number.
func (r *ethReader) LatestBlock(ctx context.Context) (uint64, error) {
	header, err := r.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	return header.Number.Uint64(), nil
}

// ParseAttendanceLog parses a registry log into an attendance event.
func (r *ethReader) ParseAttendanceLog(vLog types.Log) (*domain.AttendanceEvent, error) {
	if len(vLog.Topics) < 3 {
		return nil, fmt.Errorf("invalid attendance log: expected at least 3 topics, got %d", len(vLog.Topics))
	}

	var kind domain.AttendanceKind
	switch vLog.Topics[0] {
	case rsvpEventSignature:
		kind = domain.AttendanceRSVP
	case ticketEventSignature:
		kind = domain.AttendanceTicket
	default:
		return nil, fmt.Errorf("unknown attendance log signature: %s", vLog.Topics[0].Hex())
	}

	return &domain.AttendanceEvent{
		EventID:     new(big.Int).SetBytes(vLog.Topics[1].Bytes()).Uint64(),
		Attendee:    domain.NormalizeAddress(common.BytesToAddress(vLog.Topics[2].Bytes()).Hex()),
		Kind:        kind,
		TxHash:      vLog.TxHash.Hex(),
		BlockNumber: vLog.BlockNumber,
	}, nil
}

// filterLogsWithPagination walks the scan range in chunks so that RPC
// providers with result caps (e.g. Infura's 10k logs) can serve it.
func (r *ethReader) filterLogsWithPagination(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	fromBlock := new(big.Int).SetUint64(r.start)
	if query.FromBlock != nil {
		fromBlock = query.FromBlock
	}

	toBlock := query.ToBlock
	if toBlock == nil {
		latest, err := r.client.HeaderByNumber(timeoutCtx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest block: %w", err)
		}
		toBlock = latest.Number
	}

	const initialStep = uint64(1000000)
	currentStep := initialStep

	var allLogs []types.Log
	currentFrom := new(big.Int).Set(fromBlock)

	for currentFrom.Cmp(toBlock) <= 0 {
		currentTo := new(big.Int).Add(currentFrom, new(big.Int).SetUint64(currentStep-1))
		if currentTo.Cmp(toBlock) > 0 {
			currentTo.Set(toBlock)
		}

		chunk := query
		chunk.FromBlock = new(big.Int).Set(currentFrom)
		chunk.ToBlock = new(big.Int).Set(currentTo)

		logs, err := r.client.FilterLogs(timeoutCtx, chunk)
		if err == nil {
			allLogs = append(allLogs, logs...)
			currentFrom.SetUint64(currentTo.Uint64() + 1)
			continue
		}

		if !isTooManyResultsError(err) {
			return nil, err
		}

		// Provider refused the range; halve the step and retry the chunk.
		currentStep = currentStep / 2
		if currentStep == 0 {
			return nil, fmt.Errorf("log range %d-%d not servable: %w", currentFrom.Uint64(), currentTo.Uint64(), err)
		}

		logger.Warn("Too many results, reducing step size",
			zap.Uint64("newStepSize", currentStep),
			zap.Uint64("fromBlock", currentFrom.Uint64()),
			zap.Uint64("toBlock", currentTo.Uint64()))
	}

	return allLogs, nil
}

// isTooManyResultsError checks if the error is a provider result cap
func isTooManyResultsError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "query returned more than 10000 results") ||
		strings.Contains(errStr, "query timeout exceeded") ||
		strings.Contains(errStr, "too many results") ||
		strings.Contains(errStr, "exceeded maximum")
}

// Close closes the connection
func (r *ethReader) Close() {
	r.client.Close()
}
