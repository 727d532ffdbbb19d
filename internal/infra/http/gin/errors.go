package ginserver

import (
	"errors"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"concierge/internal/app/concierge"
	"concierge/internal/app/policies"
	domainplans "concierge/internal/domain/plans"
)

// errorBody is the shape every failed request answers with.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details any    `json:"details"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Success: false, Error: msg})
}

func respondError(c *gin.Context, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	writeError(c, status, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, concierge.ErrValidation):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), concierge.ErrValidation.Error()+": ")
	case errors.Is(err, concierge.ErrBookingNotFound):
		return http.StatusNotFound, "Booking " + strings.TrimPrefix(err.Error(), concierge.ErrBookingNotFound.Error()+": ") + " not found"
	case errors.Is(err, domainplans.ErrPlanNotFound):
		return http.StatusNotFound, "no plan stored for this booking"
	case errors.Is(err, policies.ErrArchiveDisabled):
		return http.StatusServiceUnavailable, "plan export is not configured"
	case errors.Is(err, concierge.ErrUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
