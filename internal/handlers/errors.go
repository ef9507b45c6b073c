package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/middleware"
	"gym_club_backend/internal/services"
	"gym_club_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// exposeErrorDetails controls whether wrapped error chains reach the client.
var exposeErrorDetails = true

// SetErrorDetails toggles error chains in responses; off in production.
func SetErrorDetails(enabled bool) {
	exposeErrorDetails = enabled
}

var errorKinds = []struct {
	kind   error
	status int
	code   string
}{
	{services.ErrValidation, http.StatusBadRequest, utils.ErrCodeValidationFailed},
	{services.ErrBusinessRule, http.StatusBadRequest, utils.ErrCodeBusinessRule},
	{services.ErrNotFound, http.StatusNotFound, utils.ErrCodeNotFound},
	{services.ErrConflict, http.StatusConflict, utils.ErrCodeConflict},
	{services.ErrUnauthorized, http.StatusUnauthorized, utils.ErrCodeUnauthorized},
	{services.ErrForbidden, http.StatusForbidden, utils.ErrCodeForbidden},
	{services.ErrUpstream, http.StatusInternalServerError, utils.ErrCodeUpstream},
}

// respondError maps a service error to the API error envelope.
func respondError(c *gin.Context, err error, action string) {
	status, code := http.StatusInternalServerError, utils.ErrCodeInternalServerError
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			status, code = k.status, k.code
			break
		}
	}

	details := ""
	if exposeErrorDetails {
		details = err.Error()
	}
	if status >= http.StatusInternalServerError {
		utils.LogError(err, action)
	} else {
		utils.LogDebug(action, map[string]interface{}{"error": err.Error(), "status": status})
	}
	utils.RespondWithError(c, utils.NewAPIError(status, code, services.MessageOf(err), details))
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return false
	}
	return true
}

func principal(c *gin.Context) *models.Principal {
	return middleware.CurrentPrincipal(c)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	return utils.ParsePositiveInt(c.Query(key), fallback)
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}
