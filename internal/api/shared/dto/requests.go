package dto

import (
	"errors"
	"strings"
)

// MaxMessageLength bounds message bodies accepted over the API.
const MaxMessageLength = 4096

// SendMessageRequest is the body of POST /api/v1/groups/:id/messages
type SendMessageRequest struct {
	Content string `json:"content"`
}

// Validate validates the send message request
func (r *SendMessageRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content is required")
	}
	if len(r.Content) > MaxMessageLength {
		return errors.New("content exceeds maximum length")
	}
	return nil
}
