package identity

import (
	"context"
	"fmt"

	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/messaging"
)

// Resolver maps wallet addresses to messaging inbox ids.
//
// Resolution is a plain query against the messaging client with no caching
// layer of its own: a wallet may onboard to the messaging protocol at any
// time after RSVPing, so "absent" must be re-asked on every pass rather
// than remembered.
//
//go:generate mockgen -source=resolver.go -destination=../mocks/resolver.go -package=mocks -mock_names=Resolver=MockResolver
type Resolver interface {
	// ResolveInbox returns the inbox id for a wallet address.
	// ok is false when the wallet has no messaging identity yet; that is
	// a normal outcome the caller skips, not an error.
	ResolveInbox(ctx context.Context, addr domain.Address) (inboxID domain.InboxID, ok bool, err error)
}

type resolver struct {
	client messaging.Client
}

// NewResolver creates a resolver over the given messaging client.
func NewResolver(client messaging.Client) Resolver {
	return &resolver{client: client}
}

func (r *resolver) ResolveInbox(ctx context.Context, addr domain.Address) (domain.InboxID, bool, error) {
	inboxID, err := r.client.InboxIDByAddress(ctx, domain.NormalizeAddress(string(addr)))
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve inbox for %s: %w", addr, err)
	}
	if inboxID == "" {
		return "", false, nil
	}
	return inboxID, true, nil
}
