package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"matchwell/backend/internal/interest"
	"matchwell/backend/internal/logging"
	"matchwell/backend/internal/models"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// InterestErrorResponse is returned for interest lifecycle failures.
type InterestErrorResponse struct {
	Error         string           `json:"error" example:"duplicate_interest: interest already sent"`
	Reason        interest.Reason  `json:"reason" example:"duplicate_interest"`
	Existing      *models.Interest `json:"existing,omitempty"`
	WouldBeMutual bool             `json:"would_be_mutual,omitempty"`
}

func statusFor(reason interest.Reason) int {
	switch reason {
	case interest.ReasonUnauthorized:
		return http.StatusUnauthorized
	case interest.ReasonForbidden, interest.ReasonVerificationRequired:
		return http.StatusForbidden
	case interest.ReasonNotFound:
		return http.StatusNotFound
	case interest.ReasonInvalidTransition, interest.ReasonDuplicateInterest:
		return http.StatusConflict
	case interest.ReasonInvalidAction:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Errors that are not lifecycle errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	var lifecycleErr *interest.Error
	if !errors.As(err, &lifecycleErr) {
		logging.Error(c.Request.Context()).Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(statusFor(lifecycleErr.Reason), InterestErrorResponse{
		Error:         lifecycleErr.Error(),
		Reason:        lifecycleErr.Reason,
		Existing:      lifecycleErr.Existing,
		WouldBeMutual: lifecycleErr.WouldBeMutual,
	})
}
