package handlers

import (
	"errors"
	"net/http"

	"github.com/cardhaus/giveaway-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// respondServiceError maps engine errors onto HTTP statuses. Anything outside
// the known taxonomy is a 500.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrGiveawayNotFound),
		errors.Is(err, services.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidSlot),
		errors.Is(err, services.ErrInvalidPickNumber):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUserBanned):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, services.ErrNumberTaken),
		errors.Is(err, services.ErrNoNumbersAvailable),
		errors.Is(err, services.ErrGiveawayNotAcceptingEntries),
		errors.Is(err, services.ErrDrawAlreadyRecorded),
		errors.Is(err, services.ErrDrawNotYetEligible):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
