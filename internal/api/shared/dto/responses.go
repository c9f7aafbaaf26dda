package dto

import "time"

// ChatAccessResponse is returned by GET /api/v1/events/:id/chat once the
// viewer has been admitted: the located or created group plus the outcome of
// the membership sync that ran on entry.
type ChatAccessResponse struct {
	GroupID string     `json:"group_id"`
	State   string     `json:"state"`
	Created bool       `json:"created"`
	Sync    SyncResult `json:"sync"`
}

// SyncResult mirrors a reconciliation pass outcome.
type SyncResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Message is a single chat message in history or stream payloads.
type Message struct {
	ID      string    `json:"id"`
	Sender  string    `json:"sender"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// MessageListResponse is returned by GET /api/v1/groups/:id/messages
type MessageListResponse struct {
	Messages []Message `json:"messages"`
}

// SendMessageResponse is returned by POST /api/v1/groups/:id/messages
type SendMessageResponse struct {
	ID string `json:"id"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string `json:"status"`
}
