package messaging

import (
	"context"

	"github.com/gatherspace/chat-sync/internal/domain"
)

// Publisher defines the interface for publishing attendance events to the
// message queue consumed by the sync bridge.
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishAttendance publishes an attendance event to the broker
	PublishAttendance(ctx context.Context, event *domain.AttendanceEvent) error
	// Close closes the connection
	Close()
}
