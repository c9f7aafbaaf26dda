package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gatherspace/chat-sync/internal/api/middleware"
	"github.com/gatherspace/chat-sync/internal/api/shared/dto"
	"github.com/gatherspace/chat-sync/internal/api/shared/executor"
	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/stream"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// AccessChat checks the viewer's entitlement and returns the event's
	// chat group, creating it for organizers and syncing membership on entry
	// GET /api/v1/events/:id/chat
	AccessChat(c *gin.Context)

	// GetMessages retrieves cached group history, most recent first
	// GET /api/v1/groups/:id/messages?limit=<limit>
	GetMessages(c *gin.Context)

	// SendMessage publishes a message to the group
	// POST /api/v1/groups/:id/messages
	SendMessage(c *gin.Context)

	// StreamMessages streams live group messages over SSE
	// GET /api/v1/groups/:id/stream
	StreamMessages(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
	mux      *stream.Mux
}

// NewHandler creates a new REST API handler
func NewHandler(exec executor.Executor, mux *stream.Mux) Handler {
	return &handler{
		executor: exec,
		mux:      mux,
	}
}

// AccessChat runs the chat entry sequence for the authenticated viewer
func (h *handler) AccessChat(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid event id")
		return
	}

	viewer, ok := middleware.ViewerAddress(c)
	if !ok {
		respondBadRequest(c, "Viewer address missing from session")
		return
	}

	response, err := h.executor.AccessChat(c.Request.Context(), eventID, viewer)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEventNotFound):
			respondNotFound(c, "Event not found")
		case errors.Is(err, domain.ErrAccessDenied):
			respondForbidden(c, "Access denied", "RSVP or purchase a ticket to join this chat")
		case errors.Is(err, domain.ErrChatUnavailable):
			respondConflict(c, "Chat not yet available", "contact the event organizer")
		case errors.Is(err, domain.ErrLedgerUnavailable):
			respondUnavailable(c, "Ledger temporarily unavailable, try again")
		default:
			respondInternalError(c, err, "Failed to access chat")
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetMessages retrieves cached group history
func (h *handler) GetMessages(c *gin.Context) {
	groupID := c.Param("id")
	if groupID == "" {
		respondBadRequest(c, "Group id is required")
		return
	}

	viewer, ok := middleware.ViewerAddress(c)
	if !ok {
		respondBadRequest(c, "Viewer address missing from session")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondValidationError(c, fmt.Sprintf("Invalid limit: %s", raw))
			return
		}
		limit = parsed
	}

	response, err := h.executor.GetMessages(c.Request.Context(), domain.GroupID(groupID), viewer, limit)
	if err != nil {
		respondGroupAccessError(c, err, "Failed to get messages")
		return
	}

	c.JSON(http.StatusOK, response)
}

// SendMessage publishes a message to the group
func (h *handler) SendMessage(c *gin.Context) {
	groupID := c.Param("id")
	if groupID == "" {
		respondBadRequest(c, "Group id is required")
		return
	}

	viewer, ok := middleware.ViewerAddress(c)
	if !ok {
		respondBadRequest(c, "Viewer address missing from session")
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	response, err := h.executor.SendMessage(c.Request.Context(), domain.GroupID(groupID), viewer, req.Content)
	if err != nil {
		respondGroupAccessError(c, err, "Failed to send message")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// StreamMessages streams live group messages over SSE until the client
// disconnects.
func (h *handler) StreamMessages(c *gin.Context) {
	groupID := c.Param("id")
	if groupID == "" {
		respondBadRequest(c, "Group id is required")
		return
	}

	viewer, ok := middleware.ViewerAddress(c)
	if !ok {
		respondBadRequest(c, "Viewer address missing from session")
		return
	}

	if err := h.executor.AuthorizeGroup(c.Request.Context(), domain.GroupID(groupID), viewer); err != nil {
		respondGroupAccessError(c, err, "Failed to open stream")
		return
	}

	messages, cancel := h.mux.Subscribe(domain.GroupID(groupID), 0)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, open := <-messages:
			if !open {
				return false
			}
			c.SSEvent("message", dto.Message{
				ID:      string(msg.ID),
				Sender:  string(msg.SenderInboxID),
				Content: msg.Content,
				SentAt:  msg.SentAt,
			})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}
