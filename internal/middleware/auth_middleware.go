package middleware

import (
	"net/http"
	"strings"

	"gym_club_backend/internal/models"
	"gym_club_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// principalKey is the gin context key holding the *models.Principal.
const principalKey = "principal"

// TokenValidator resolves a bearer token into the calling principal.
type TokenValidator interface {
	ValidateToken(token string) (*models.Principal, error)
}

// CurrentPrincipal returns the authenticated caller or nil.
func CurrentPrincipal(c *gin.Context) *models.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*models.Principal)
	return p
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Token de autorización requerido", ""))
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Formato de autorización inválido. Use Bearer <token>", ""))
			return
		}

		principal, err := validator.ValidateToken(token)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Token inválido o expirado", ""))
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the principal when a valid token is sent
// and lets anonymous requests through.
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if principal, err := validator.ValidateToken(token); err == nil {
				c.Set(principalKey, principal)
			}
		}
		c.Next()
	}
}

// RoleAuthMiddleware allows admins and callers whose role is listed.
// It must run after AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := CurrentPrincipal(c)
		if principal == nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Token de autorización requerido", ""))
			return
		}
		if principal.IsAdmin {
			c.Next()
			return
		}
		for _, r := range allowedRoles {
			if strings.EqualFold(principal.Role, r) {
				c.Next()
				return
			}
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden,
			"No tiene permisos para acceder a este recurso", "Roles requeridos: "+strings.Join(allowedRoles, ", ")))
	}
}

// AdminOnly is RoleAuthMiddleware with the admin role.
func AdminOnly() gin.HandlerFunc {
	return RoleAuthMiddleware(models.RoleAdmin)
}
