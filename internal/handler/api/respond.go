package api

import (
	"errors"
	"net/http"

	"openbook/internal/handler/httperr"
	"openbook/internal/pkg/errs"
	"openbook/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

func errOrMissing(err error) error {
	if err != nil {
		return err
	}
	return errors.New("missing required query parameter")
}

// respondError maps usecase sentinel errors onto the HTTP surface. A
// capacity rejection carries the admission arithmetic as detail so the
// client can see what was asked against what remained.
func respondError(c *gin.Context, err error) {
	var capErr *commands.CapacityExceededError
	if errors.As(err, &capErr) {
		httperr.AbortWithError(c, http.StatusConflict, err, "Insufficient capacity", gin.H{
			"requestedGb":      capErr.RequestedGB,
			"availableGb":      capErr.Availability.AvailableGB,
			"totalGb":          capErr.Availability.TotalGB,
			"conflictBookings": capErr.Availability.ConflictIDs,
		})
		return
	}

	switch {
	case errors.Is(err, errs.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
	case errors.Is(err, errs.ErrResourceNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Resource not found", nil)
	case errors.Is(err, errs.ErrUserNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "User not found", nil)
	case errors.Is(err, errs.ErrInvalidBookingWindow):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking window", nil)
	case errors.Is(err, errs.ErrInvalidInput):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
	case errors.Is(err, errs.ErrResourceUnavailable):
		httperr.AbortWithError(c, http.StatusConflict, err, "Resource unavailable", nil)
	case errors.Is(err, errs.ErrInvalidStateTransition):
		httperr.AbortWithError(c, http.StatusConflict, err, "Invalid state for this operation", nil)
	case errors.Is(err, errs.ErrCapacityExceeded):
		httperr.AbortWithError(c, http.StatusConflict, err, "Insufficient capacity", nil)
	case errors.Is(err, errs.ErrPolicyViolation):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Group policy violation", nil)
	case errors.Is(err, errs.ErrInvalidCredentials):
		httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid credentials", nil)
	case errors.Is(err, errs.ErrTransientStoreFailure):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Temporarily unavailable, retry shortly", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
