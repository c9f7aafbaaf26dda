package domain

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Address is a wallet address canonicalized to lower case.
// All comparisons across the engine are done on this form.
type Address string

// NormalizeAddress canonicalizes a wallet address for comparison.
// Attendance logs, registry reads and viewer identities may carry
// mixed-case (EIP-55) forms of the same address.
func NormalizeAddress(raw string) Address {
	return Address(strings.ToLower(common.HexToAddress(raw).Hex()))
}

// Equal compares two addresses case-insensitively.
func (a Address) Equal(other Address) bool {
	return strings.EqualFold(string(a), string(other))
}

// InboxID identifies a messaging-protocol inbox. A wallet that never
// initialized a messaging identity has no inbox id.
type InboxID string

// GroupID identifies a messaging-protocol group conversation.
type GroupID string

// MessageID identifies a message on the messaging protocol.
type MessageID string

// AttendanceKind distinguishes the two attendance log kinds.
type AttendanceKind string

const (
	AttendanceRSVP   AttendanceKind = "rsvp"
	AttendanceTicket AttendanceKind = "ticket"
)

// Event is the registry's record of an event, read-only to this engine.
// GroupRef is empty until the organizer's first chat access creates the group.
type Event struct {
	ID          uint64  `json:"id"`
	Organizer   Address `json:"organizer"`
	Title       string  `json:"title"`
	Capacity    uint64  `json:"capacity"`
	TicketPrice string  `json:"ticket_price"` // wei, decimal string
	GroupRef    GroupID `json:"group_ref"`
}

// HasGroup reports whether a group has been recorded for the event.
func (e *Event) HasGroup() bool {
	return e.GroupRef != ""
}

// AttendanceEvent is the normalized attendance log published to NATS.
// The same attendee may appear under both kinds; consumers treat the
// union deduplicated by address as the entitlement set.
type AttendanceEvent struct {
	EventID     uint64         `json:"event_id"`
	Attendee    Address        `json:"attendee"`
	Kind        AttendanceKind `json:"kind"`
	TxHash      string         `json:"tx_hash"`
	BlockNumber uint64         `json:"block_number"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Valid reports whether the event carries enough to be acted on.
func (e *AttendanceEvent) Valid() bool {
	if e.EventID == 0 && e.Attendee == "" {
		return false
	}
	return e.Attendee != "" && (e.Kind == AttendanceRSVP || e.Kind == AttendanceTicket)
}

// SyncResult reports the outcome of one reconciliation pass.
// Added counts members newly represented in the group, Skipped counts
// attendees with no messaging identity this pass, Failed counts
// per-member add failures that did not abort the rest of the batch.
type SyncResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// StreamedMessage is a live message fanned out by the multiplexer.
type StreamedMessage struct {
	ID              MessageID `json:"id"`
	ConversationRef GroupID   `json:"conversation_ref"`
	SenderInboxID   InboxID   `json:"sender_inbox_id"`
	Content         string    `json:"content"`
	SentAt          time.Time `json:"sent_at"`
}
