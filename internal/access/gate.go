package access

import (
	"context"
	"fmt"

	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/ledger"
)

// Gate decides whether a viewer may see an event's chat at all.
//
// The check runs strictly before any group lookup or sync attempt: a denied
// viewer must never cause a messaging-protocol call, both to avoid leaking
// group existence and to avoid spending ledger/messaging round trips on
// strangers.
//
//go:generate mockgen -source=gate.go -destination=../mocks/gate.go -package=mocks -mock_names=Gate=MockGate
type Gate interface {
	// CanAccess grants access iff the viewer is the event organizer
	// (case-insensitive) or appears in the event's entitlement set.
	CanAccess(ctx context.Context, eventID uint64, viewer domain.Address) (bool, error)
}

type gate struct {
	reader ledger.Reader
}

// NewGate creates a gate over the given ledger reader.
func NewGate(reader ledger.Reader) Gate {
	return &gate{reader: reader}
}

func (g *gate) CanAccess(ctx context.Context, eventID uint64, viewer domain.Address) (bool, error) {
	event, err := g.reader.GetEvent(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}

	normalized := domain.NormalizeAddress(string(viewer))
	if event.Organizer.Equal(normalized) {
		return true, nil
	}

	attendees, err := g.reader.GetAttendees(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to load attendees for event %d: %w", eventID, err)
	}

	_, ok := attendees[normalized]
	return ok, nil
}
