package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/identity"
	"github.com/gatherspace/chat-sync/internal/ledger"
	"github.com/gatherspace/chat-sync/internal/logger"
	"github.com/gatherspace/chat-sync/internal/messaging"
	"github.com/gatherspace/chat-sync/internal/store"
)

// Config holds reconciliation tuning.
type Config struct {
	// FallbackConcurrency bounds the per-member add pool used when the
	// batch add fails. Zero means DefaultFallbackConcurrency.
	FallbackConcurrency int
}

// DefaultFallbackConcurrency is the per-member fallback pool size.
const DefaultFallbackConcurrency = 4

// Engine converges a group's membership onto the event's entitlement set.
//
// Sync is idempotent: running it twice with no intervening attendance change
// adds nobody the second time, and membership never shrinks as a result of a
// sync. Correctness under concurrent callers relies on that idempotence, not
// on locking.
//
//go:generate mockgen -source=engine.go -destination=../mocks/reconcile.go -package=mocks -mock_names=Engine=MockEngine
type Engine interface {
	// Sync adds every entitled attendee with a messaging identity to the
	// group. Attendees without one are skipped this pass; per-member add
	// failures are counted but never abort the rest of the cohort.
	Sync(ctx context.Context, eventID uint64, groupID domain.GroupID) (domain.SyncResult, error)
}

type engine struct {
	reader   ledger.Reader
	client   messaging.Client
	resolver identity.Resolver
	history  store.Store
	config   Config
}

// NewEngine creates a reconciliation engine.
func NewEngine(
	reader ledger.Reader,
	client messaging.Client,
	resolver identity.Resolver,
	history store.Store,
	cfg Config,
) Engine {
	if cfg.FallbackConcurrency <= 0 {
		cfg.FallbackConcurrency = DefaultFallbackConcurrency
	}
	return &engine{
		reader:   reader,
		client:   client,
		resolver: resolver,
		history:  history,
		config:   cfg,
	}
}

func (e *engine) Sync(ctx context.Context, eventID uint64, groupID domain.GroupID) (domain.SyncResult, error) {
	var result domain.SyncResult

	attendees, err := e.reader.GetAttendees(ctx, eventID)
	if err != nil {
		return result, err
	}
	if len(attendees) == 0 {
		return result, nil
	}

	// Group lookup failure is deliberately distinct from transient ledger
	// failure: organizer callers react to ErrGroupNotFound by creating.
	group, err := e.client.GroupByID(ctx, groupID)
	if err != nil {
		return result, err
	}

	members, err := group.Members(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list members of %s: %w", groupID, err)
	}
	current := make(map[domain.InboxID]struct{}, len(members))
	for _, m := range members {
		current[m] = struct{}{}
	}

	// Resolve attendee inboxes, remembering which wallet each belongs to
	// so history rows can be written per address.
	addressByInbox := make(map[domain.InboxID]domain.Address, len(attendees))
	var toAdd []domain.InboxID
	var present []domain.InboxID

	for addr := range attendees {
		inboxID, ok, err := e.resolver.ResolveInbox(ctx, addr)
		if err != nil {
			logger.Debug("Inbox resolution failed, skipping this pass",
				zap.String("address", string(addr)),
				zap.Error(err))
			result.Skipped++
			continue
		}
		if !ok {
			logger.Debug("No messaging identity yet, skipping this pass",
				zap.String("address", string(addr)))
			result.Skipped++
			continue
		}

		addressByInbox[inboxID] = addr
		if _, already := current[inboxID]; already {
			present = append(present, inboxID)
		} else {
			toAdd = append(toAdd, inboxID)
		}
	}

	added := toAdd
	if len(toAdd) > 0 {
		added, result.Failed = e.addMembers(ctx, group, toAdd)
		result.Added = len(added)
	}

	// Every address now represented in the group, whether newly added or
	// already present, is mirrored into the history cache.
	for _, inboxID := range append(added, present...) {
		e.recordMembership(ctx, addressByInbox[inboxID], groupID)
	}

	return result, nil
}

// addMembers tries one batch call first; on failure it falls back to adding
// members one at a time so a single unreachable inbox cannot block the rest
// of the cohort. Returns the members that made it in and the failure count.
func (e *engine) addMembers(ctx context.Context, group messaging.Group, toAdd []domain.InboxID) ([]domain.InboxID, int) {
	if err := group.AddMembers(ctx, toAdd); err == nil {
		return toAdd, 0
	} else {
		logger.Warn("Batch member add failed, retrying per member",
			zap.String("groupID", string(group.ID())),
			zap.Int("members", len(toAdd)),
			zap.Error(err))
	}

	var (
		mu     sync.Mutex
		added  []domain.InboxID
		failed int
	)

	pool := pond.NewPool(e.config.FallbackConcurrency)
	tasks := pool.NewGroup()
	for _, inboxID := range toAdd {
		inboxID := inboxID
		tasks.Submit(func() {
			err := group.AddMembers(ctx, []domain.InboxID{inboxID})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				logger.Warn("Member add failed",
					zap.String("groupID", string(group.ID())),
					zap.String("inboxID", string(inboxID)),
					zap.Error(err))
				return
			}
			added = append(added, inboxID)
		})
	}
	tasks.Wait()
	pool.StopAndWait()

	return added, failed
}

// recordMembership mirrors a represented attendee into the history cache.
// Best effort: a cache write failure is logged and swallowed, never allowed
// to roll back the messaging-protocol success it reflects.
func (e *engine) recordMembership(ctx context.Context, addr domain.Address, groupID domain.GroupID) {
	if e.history == nil || addr == "" {
		return
	}

	if err := e.history.UpsertUser(ctx, addr); err != nil {
		logger.Warn("Failed to upsert history user",
			zap.String("address", string(addr)),
			zap.Error(err))
		return
	}
	if err := e.history.AddMembership(ctx, addr, groupID); err != nil {
		logger.Warn("Failed to upsert history membership",
			zap.String("address", string(addr)),
			zap.String("groupID", string(groupID)),
			zap.Error(err))
	}
}
