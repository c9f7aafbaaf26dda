package domain

import "errors"

var (
	// ErrLedgerUnavailable is returned when the ledger RPC cannot be reached.
	// Transient: callers retry on the next access or timer tick.
	ErrLedgerUnavailable = errors.New("ledger unavailable")

	// ErrGroupNotFound is returned when a group lookup by id misses.
	// Definitive for the attempt: organizers react by creating, everyone
	// else surfaces "chat unavailable".
	ErrGroupNotFound = errors.New("group not found")

	// ErrEventNotFound is returned when the registry has no record for an event id.
	ErrEventNotFound = errors.New("event not found")

	// ErrAccessDenied is returned when a viewer is neither the organizer
	// nor an attendee of the event.
	ErrAccessDenied = errors.New("access denied")

	// ErrChatUnavailable is returned when a non-organizer reaches an event
	// whose group does not exist yet.
	ErrChatUnavailable = errors.New("chat not yet available")

	// ErrStreamClosed is returned by the multiplexer once it has been shut down.
	ErrStreamClosed = errors.New("message stream closed")

	// ErrRefConflict is returned by a group ref compare-and-swap when
	// another session won the race.
	ErrRefConflict = errors.New("group ref changed concurrently")
)
