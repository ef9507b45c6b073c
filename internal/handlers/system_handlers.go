package handlers

import (
	_ "embed"
	"net/http"
	"time"

	"gym_club_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

//go:embed openapi.json
var openAPIDocument []byte

// DiagnosticsFunc checks the backing store and returns per table row counts.
type DiagnosticsFunc func() (driver string, counts map[string]int, err error)

type SystemHandler struct {
	diagnostics DiagnosticsFunc
	startedAt   time.Time
}

func NewSystemHandler(diagnostics DiagnosticsFunc) *SystemHandler {
	return &SystemHandler{diagnostics: diagnostics, startedAt: time.Now()}
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "Gym Club API funcionando correctamente")
}

func (h *SystemHandler) Docs(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", openAPIDocument)
}

// Diagnostico reports store connectivity and row counts. It never returns row data.
func (h *SystemHandler) Diagnostico(c *gin.Context) {
	driver, counts, err := h.diagnostics()
	if err != nil {
		utils.LogError(err, "Diagnostico: store check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "error",
			"driver":   driver,
			"database": "unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"driver":   driver,
		"database": "connected",
		"tables":   counts,
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
	})
}
