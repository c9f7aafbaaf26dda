package messaging

import (
	"context"

	"github.com/gatherspace/chat-sync/internal/domain"
)

// GroupOptions carries the metadata used when creating a group.
type GroupOptions struct {
	Name        string
	Description string
}

// Client is the boundary to the messaging protocol. The protocol's group
// encryption and key management live behind it; this engine only calls the
// narrow set of operations below.
//
//go:generate mockgen -source=client.go -destination=../mocks/messaging.go -package=mocks -mock_names=Client=MockMessagingClient,Group=MockGroup,MessageStream=MockMessageStream
type Client interface {
	// InboxIDByAddress maps a wallet address to a messaging inbox id.
	// Returns ("", nil) when the wallet has no messaging identity yet;
	// absence is a normal outcome, not an error.
	InboxIDByAddress(ctx context.Context, addr domain.Address) (domain.InboxID, error)

	// GroupByID locates a group conversation by its id.
	// Returns domain.ErrGroupNotFound when the id does not resolve.
	GroupByID(ctx context.Context, id domain.GroupID) (Group, error)

	// NewGroup creates a group conversation with the given initial members.
	NewGroup(ctx context.Context, initial []domain.InboxID, opts GroupOptions) (Group, error)

	// StreamAllMessages opens the protocol's all-conversations message
	// stream. The multiplexer opens at most one of these per process.
	StreamAllMessages(ctx context.Context) (MessageStream, error)

	// Close closes the client connection
	Close()
}

// Group is a group conversation owned by the messaging protocol.
// This engine only ever adds members; removal is out of scope.
type Group interface {
	ID() domain.GroupID

	// Members returns the current member inbox ids.
	Members(ctx context.Context) ([]domain.InboxID, error)

	// AddMembers adds the given inboxes to the group. Adding an inbox that
	// is already a member is a no-op per the protocol contract.
	AddMembers(ctx context.Context, inboxIDs []domain.InboxID) error

	// Send publishes a message to the group and returns its id.
	Send(ctx context.Context, content string) (domain.MessageID, error)
}

// MessageStream iterates live messages across all conversations.
type MessageStream interface {
	// Next blocks until a message arrives, the context is cancelled, or
	// the stream ends. Returns io.EOF once the stream is closed cleanly.
	Next(ctx context.Context) (*domain.StreamedMessage, error)

	Close() error
}
