package store

import (
	"context"
	"time"

	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/store/schema"
)

// Store is the local history cache: a convenience index over the messaging
// protocol's truth, updated as a side effect of successful protocol
// operations. It is never the system of record, and its failures are never
// allowed to fail the operation they mirror.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// UpsertUser creates the user row if absent.
	UpsertUser(ctx context.Context, address domain.Address) error

	// UpsertGroup creates or renames the group row and records which
	// registry event it belongs to.
	UpsertGroup(ctx context.Context, id domain.GroupID, eventID uint64, name string) error

	// GetGroup returns the group row, or nil when no such group is recorded.
	GetGroup(ctx context.Context, id domain.GroupID) (*schema.Group, error)

	// AddMembership records that the user is represented in the group.
	// Idempotent via the (user, group) unique constraint.
	AddMembership(ctx context.Context, address domain.Address, groupID domain.GroupID) error

	// AppendMessage appends a sent message and returns its id.
	AppendMessage(ctx context.Context, sender domain.Address, groupID domain.GroupID, content string, sentAt time.Time) (string, error)

	// GetGroupMessages returns up to limit messages, most recent first.
	GetGroupMessages(ctx context.Context, groupID domain.GroupID, limit int) ([]schema.Message, error)

	// GetSyncCursor retrieves the last scanned block height for a cursor key.
	// Returns 0 when no cursor exists yet.
	GetSyncCursor(ctx context.Context, key string) (uint64, error)

	// SetSyncCursor stores the last scanned block height for a cursor key.
	SetSyncCursor(ctx context.Context, key string, blockHeight uint64) error
}
