package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/services"
	"gym_club_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultAttendanceLimit = 100
	maxCheckInBody         = 8 << 10
)

type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

func NewAttendanceHandler(as services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: as}
}

// respondCheckIn answers 201 for a new visit and 200 when today's open one is reused.
func respondCheckIn(c *gin.Context, res *services.CheckInResult) {
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, res.Attendance)
}

func (h *AttendanceHandler) CreateAttendance(c *gin.Context) {
	var req services.CreateAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.attendanceService.Create(principal(c), req)
	if err != nil {
		respondError(c, err, "CreateAttendance: error from attendanceService.Create")
		return
	}
	respondCheckIn(c, res)
}

// RegisterAttendance checks in the caller.
func (h *AttendanceHandler) RegisterAttendance(c *gin.Context) {
	res, err := h.attendanceService.RegisterAttendance(principal(c))
	if err != nil {
		respondError(c, err, "RegisterAttendance: error from attendanceService.RegisterAttendance")
		return
	}
	respondCheckIn(c, res)
}

func (h *AttendanceHandler) GetAttendances(c *gin.Context) {
	list, err := h.attendanceService.FindAll(queryInt(c, "limit", defaultAttendanceLimit))
	if err != nil {
		respondError(c, err, "GetAttendances: error from attendanceService.FindAll")
		return
	}
	if list == nil {
		list = []models.Attendance{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *AttendanceHandler) GetAttendanceByID(c *gin.Context) {
	a, err := h.attendanceService.FindOne(principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "GetAttendanceByID: error from attendanceService.FindOne")
		return
	}
	c.JSON(http.StatusOK, a)
}

// GetByDateRange expects start and end as YYYY-MM-DD; both days are included.
func (h *AttendanceHandler) GetByDateRange(c *gin.Context) {
	list, err := h.attendanceService.FindByDateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err, "GetByDateRange: error from attendanceService.FindByDateRange")
		return
	}
	if list == nil {
		list = []models.Attendance{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *AttendanceHandler) GetUserAttendance(c *gin.Context) {
	h.userAttendance(c, defaultAttendanceLimit)
}

// GetUserHistory is the member facing history, capped by ?limit (default 50).
func (h *AttendanceHandler) GetUserHistory(c *gin.Context) {
	h.userAttendance(c, queryInt(c, "limit", 50))
}

func (h *AttendanceHandler) userAttendance(c *gin.Context, limit int) {
	list, err := h.attendanceService.FindByUser(principal(c), c.Param("userId"), limit)
	if err != nil {
		respondError(c, err, "userAttendance: error from attendanceService.FindByUser")
		return
	}
	if list == nil {
		list = []models.Attendance{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	var req services.UpdateAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.attendanceService.Update(c.Param("id"), req)
	if err != nil {
		respondError(c, err, "UpdateAttendance: error from attendanceService.Update")
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	if err := h.attendanceService.Remove(c.Param("id")); err != nil {
		respondError(c, err, "DeleteAttendance: error from attendanceService.Remove")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registro de asistencia eliminado"})
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	a, err := h.attendanceService.CheckOut(c.Param("id"))
	if err != nil {
		respondError(c, err, "CheckOut: error from attendanceService.CheckOut")
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AttendanceHandler) GenerateQRCode(c *gin.Context) {
	qr, err := h.attendanceService.GenerateQRCode(principal(c), c.Param("userId"))
	if err != nil {
		respondError(c, err, "GenerateQRCode: error from attendanceService.GenerateQRCode")
		return
	}
	c.JSON(http.StatusCreated, qr)
}

type verifyQRRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *AttendanceHandler) VerifyQRCode(c *gin.Context) {
	var req verifyQRRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.attendanceService.VerifyQRCode(req.Token)
	if err != nil {
		respondError(c, err, "VerifyQRCode: error from attendanceService.VerifyQRCode")
		return
	}
	c.JSON(http.StatusOK, v)
}

// CheckIn is the public QR endpoint. GET reads ?data=, POST reads the body,
// which may be the payload itself or {"data": "..."}.
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	raw := c.Query("data")
	if raw == "" && c.Request.Method == http.MethodGet {
		raw = c.Request.URL.RawQuery
	}
	if c.Request.Method == http.MethodPost {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCheckInBody))
		if err != nil {
			utils.RespondValidationFailed(c, err.Error())
			return
		}
		if len(body) > 0 {
			raw = string(body)
			var wrapped struct {
				Data string `json:"data"`
			}
			if json.Unmarshal(body, &wrapped) == nil && wrapped.Data != "" {
				raw = wrapped.Data
			}
		}
	}

	res, err := h.attendanceService.CheckInWithQR(raw)
	if err != nil {
		respondError(c, err, "CheckIn: error from attendanceService.CheckInWithQR")
		return
	}
	respondCheckIn(c, res)
}
