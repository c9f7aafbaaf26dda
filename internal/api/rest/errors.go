package rest

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gatherspace/chat-sync/internal/api/shared/errors"
	"github.com/gatherspace/chat-sync/internal/domain"
	"github.com/gatherspace/chat-sync/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, errors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, errors.NewNotFoundError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, errors.NewValidationError(message))
}

// respondForbidden responds with a forbidden error
func respondForbidden(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusForbidden, errors.NewForbiddenError(message, details...))
}

// respondConflict responds with a conflict carrying a service error body
func respondConflict(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusConflict, errors.NewServiceError(message, details...))
}

// respondUnavailable responds with a service unavailable error
func respondUnavailable(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusServiceUnavailable, errors.NewUnavailableError(message, details...))
}

// respondInternalError responds with an internal server error and logs it
func respondInternalError(c *gin.Context, err error, message string) {
	logger.Error(err, zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, errors.NewInternalError(message))
}

// respondGroupAccessError maps the errors shared by all group-scoped
// operations, which authorize the viewer against the group's event first.
func respondGroupAccessError(c *gin.Context, err error, fallback string) {
	switch {
	case stderrors.Is(err, domain.ErrGroupNotFound):
		respondNotFound(c, "Group not found")
	case stderrors.Is(err, domain.ErrAccessDenied):
		respondForbidden(c, "Access denied", "RSVP or purchase a ticket to join this chat")
	case stderrors.Is(err, domain.ErrLedgerUnavailable):
		respondUnavailable(c, "Ledger temporarily unavailable, try again")
	default:
		respondInternalError(c, err, fallback)
	}
}
