package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gym_club_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubValidator map[string]*models.Principal

func (s stubValidator) ValidateToken(token string) (*models.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, errors.New("invalid")
}

func newEngine(v TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ok := func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, p.UserID)
	}
	r.GET("/private", AuthMiddleware(v), ok)
	r.GET("/admin", AuthMiddleware(v), AdminOnly(), ok)
	r.GET("/public", OptionalAuthMiddleware(v), ok)
	return r
}

func do(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(stubValidator{
		"user-token":  {UserID: "u1", Role: models.RoleUser},
		"admin-token": {UserID: "a1", Role: models.RoleAdmin, IsAdmin: true},
	})

	tests := []struct {
		name   string
		path   string
		auth   string
		status int
		body   string
	}{
		{"missing header", "/private", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "/private", "Basic abc", http.StatusUnauthorized, "Bearer"},
		{"bad token", "/private", "Bearer nope", http.StatusUnauthorized, "Token inválido"},
		{"valid token", "/private", "Bearer user-token", http.StatusOK, "u1"},
		{"lowercase scheme", "/private", "bearer user-token", http.StatusOK, "u1"},
		{"user on admin route", "/admin", "Bearer user-token", http.StatusForbidden, "FORBIDDEN"},
		{"admin on admin route", "/admin", "Bearer admin-token", http.StatusOK, "a1"},
		{"optional without token", "/public", "", http.StatusOK, "anonymous"},
		{"optional with bad token", "/public", "Bearer nope", http.StatusOK, "anonymous"},
		{"optional with token", "/public", "Bearer user-token", http.StatusOK, "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.path, tt.auth)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestRoleAuthMiddlewareAllowsListedRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v := stubValidator{"t": {UserID: "u1", Role: "user"}}
	r.GET("/x", AuthMiddleware(v), RoleAuthMiddleware("USER"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, do(r, "/x", "Bearer t").Code)
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics("gym")
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	do(r, "/items/42", "")
	do(r, "/items/43", "")
	body := do(r, "/metrics", "").Body.String()

	assert.True(t, strings.Contains(body, `gym_http_requests_total{method="GET",route="/items/:id",status="200"} 2`), body)
}
