package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/identity"
	"github.com/gatherspace/chat-sync/internal/ledger"
	"github.com/gatherspace/chat-sync/internal/logger"
	"github.com/gatherspace/chat-sync/internal/messaging"
	"github.com/gatherspace/chat-sync/internal/store"
)

// State is the per-event lifecycle state of the chat group.
type State int

const (
	StateUnknown State = iota
	StateLocated
	StateCreating
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLocated:
		return "located"
	case StateCreating:
		return "creating"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrRefConflict is returned by a GroupRefUpdater when another session won
// the compare-and-swap on the event's group ref.
var ErrRefConflict = domain.ErrRefConflict

// GroupRefUpdater persists a newly created group id onto the event record.
// The write is owned by an external collaborator (contract write or off-chain
// update); it must be compare-and-swap so that of two racing organizer
// sessions exactly one ref wins.
//
//go:generate mockgen -source=manager.go -destination=../mocks/lifecycle.go -package=mocks -mock_names=GroupRefUpdater=MockGroupRefUpdater,Manager=MockLifecycleManager
type GroupRefUpdater interface {
	// UpdateGroupRef sets the event's group ref to next iff it still equals
	// expect. Returns ErrRefConflict when the ref moved underneath us.
	UpdateGroupRef(ctx context.Context, eventID uint64, expect, next domain.GroupID) error
}

// Manager locates or lazily creates the chat group for an event.
//
// Only the organizer may create; everyone else sees "chat not yet available"
// until a group exists. No distributed locking is attempted: two organizer
// sessions racing to create may both succeed, and the ref updater's
// compare-and-swap decides which group the event keeps.
type Manager interface {
	// EnsureGroup returns a ready group for the event, creating it when the
	// viewer is the organizer and no group exists yet.
	EnsureGroup(ctx context.Context, eventID uint64, viewer domain.Address) (messaging.Group, bool, error)

	// StateOf reports the last observed lifecycle state for an event.
	StateOf(eventID uint64) State
}

type manager struct {
	reader   ledger.Reader
	client   messaging.Client
	resolver identity.Resolver
	updater  GroupRefUpdater
	history  store.Store

	mu     sync.Mutex
	states map[uint64]State
	refs   map[uint64]domain.GroupID // refs we have located or created this process
}

// NewManager creates a lifecycle manager.
func NewManager(
	reader ledger.Reader,
	client messaging.Client,
	resolver identity.Resolver,
	updater GroupRefUpdater,
	history store.Store,
) Manager {
	return &manager{
		reader:   reader,
		client:   client,
		resolver: resolver,
		updater:  updater,
		history:  history,
		states:   make(map[uint64]State),
		refs:     make(map[uint64]domain.GroupID),
	}
}

func (m *manager) StateOf(eventID uint64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[eventID]
}

func (m *manager) setState(eventID uint64, s State) {
	m.mu.Lock()
	m.states[eventID] = s
	m.mu.Unlock()
}

func (m *manager) EnsureGroup(ctx context.Context, eventID uint64, viewer domain.Address) (messaging.Group, bool, error) {
	event, err := m.reader.GetEvent(ctx, eventID)
	if err != nil {
		m.setState(eventID, StateFailed)
		return nil, false, err
	}

	ref := event.GroupRef
	if ref == "" {
		// The registry may lag a create from this process; fall back to the
		// id we already handed out.
		m.mu.Lock()
		ref = m.refs[eventID]
		m.mu.Unlock()
	}

	if ref != "" {
		group, err := m.client.GroupByID(ctx, ref)
		if err == nil {
			m.located(ctx, event, group)
			return group, false, nil
		}
		if !errors.Is(err, domain.ErrGroupNotFound) {
			m.setState(eventID, StateFailed)
			return nil, false, fmt.Errorf("failed to locate group %s: %w", ref, err)
		}
		// Ref points at nothing; treat as absent and fall through.
	}

	if !event.Organizer.Equal(domain.NormalizeAddress(string(viewer))) {
		m.setState(eventID, StateFailed)
		return nil, false, domain.ErrChatUnavailable
	}

	group, err := m.create(ctx, event)
	if err != nil {
		m.setState(eventID, StateFailed)
		return nil, false, err
	}

	return group, true, nil
}

// located records a successful lookup and mirrors the group into history.
// The history row is what lets group-scoped requests find their way back to
// the event's entitlement set, so it is written on locate as well as create.
func (m *manager) located(ctx context.Context, event *domain.Event, group messaging.Group) {
	m.mu.Lock()
	m.states[event.ID] = StateReady
	m.refs[event.ID] = group.ID()
	m.mu.Unlock()

	m.recordGroup(ctx, group.ID(), event.ID, event.Title)
}

// create builds a new group for the event and hands the id to the ref
// updater. A lost compare-and-swap means another session created first;
// the freshly created group is abandoned and the winner located instead.
func (m *manager) create(ctx context.Context, event *domain.Event) (messaging.Group, error) {
	m.setState(event.ID, StateCreating)

	var initial []domain.InboxID
	inboxID, ok, err := m.resolver.ResolveInbox(ctx, event.Organizer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve organizer inbox: %w", err)
	}
	if ok {
		initial = append(initial, inboxID)
	}

	group, err := m.client.NewGroup(ctx, initial, messaging.GroupOptions{
		Name:        event.Title,
		Description: fmt.Sprintf("Chat for attendees of %q", event.Title),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create group for event %d: %w", event.ID, err)
	}

	if err := m.updater.UpdateGroupRef(ctx, event.ID, event.GroupRef, group.ID()); err != nil {
		if errors.Is(err, ErrRefConflict) {
			logger.Warn("Lost group creation race, locating winner",
				zap.Uint64("eventID", event.ID),
				zap.String("abandoned", string(group.ID())))
			return m.locateWinner(ctx, event.ID)
		}
		return nil, fmt.Errorf("failed to persist group ref for event %d: %w", event.ID, err)
	}

	m.located(ctx, event, group)
	logger.Info("Created chat group",
		zap.Uint64("eventID", event.ID),
		zap.String("groupID", string(group.ID())))

	return group, nil
}

func (m *manager) locateWinner(ctx context.Context, eventID uint64) (messaging.Group, error) {
	event, err := m.reader.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.HasGroup() {
		return nil, domain.ErrChatUnavailable
	}

	group, err := m.client.GroupByID(ctx, event.GroupRef)
	if err != nil {
		return nil, fmt.Errorf("failed to locate winning group %s: %w", event.GroupRef, err)
	}

	m.located(ctx, event, group)
	return group, nil
}

// recordGroup mirrors the group into the history store. Best effort: the
// cache is a convenience index, never allowed to fail a locate or create.
func (m *manager) recordGroup(ctx context.Context, id domain.GroupID, eventID uint64, name string) {
	if m.history == nil {
		return
	}
	if err := m.history.UpsertGroup(ctx, id, eventID, name); err != nil {
		logger.Warn("Failed to record group in history",
			zap.String("groupID", string(id)),
			zap.Error(err))
	}
}
