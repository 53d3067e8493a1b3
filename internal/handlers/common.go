package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NumanIbnMazid/restaurant-management/internal/services"
	"github.com/NumanIbnMazid/restaurant-management/pkg/utils"
)

// respondServiceError maps service sentinel errors onto the API error
// taxonomy. Anything unrecognized is a 500 and gets logged with its cause.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrNoItems):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error()))
	case errors.Is(err, services.ErrNotPermitted):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error()))
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrRestaurantNotFound),
		errors.Is(err, services.ErrFoodOptionNotFound),
		errors.Is(err, services.ErrInvoiceNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error()))
	case errors.Is(err, services.ErrTableOccupied),
		errors.Is(err, services.ErrOrderStillRunning),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrUsernameTaken):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotAcceptable, utils.ErrCodeStateConflict, err.Error()))
	default:
		utils.LogError(err, "unhandled service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "internal server error"))
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "invalid "+name+" parameter"))
		return 0, false
	}
	return id, true
}
