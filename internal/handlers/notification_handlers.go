package handlers

import (
	"net/http"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(ns services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

// SendEmail returns the delivery record; a provider failure yields status FAILED, not an error.
func (h *NotificationHandler) SendEmail(c *gin.Context) {
	var req services.SendEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.notificationService.SendEmail(req)
	if err != nil {
		respondError(c, err, "SendEmail: error from notificationService.SendEmail")
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *NotificationHandler) SendWhatsApp(c *gin.Context) {
	var req services.SendWhatsAppRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.notificationService.SendWhatsApp(req)
	if err != nil {
		respondError(c, err, "SendWhatsApp: error from notificationService.SendWhatsApp")
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *NotificationHandler) SendBulkEmail(c *gin.Context) {
	var req services.BulkEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.notificationService.SendBulkEmail(req)
	if err != nil {
		respondError(c, err, "SendBulkEmail: error from notificationService.SendBulkEmail")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *NotificationHandler) GetLogs(c *gin.Context) {
	filters := models.NotificationFilters{
		Type:         c.Query("type"),
		Status:       c.Query("status"),
		UserID:       c.Query("user_id"),
		MembershipID: c.Query("membership_id"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "page_size", 20),
	}
	list, total, err := h.notificationService.FindLogs(filters)
	if err != nil {
		respondError(c, err, "GetLogs: error from notificationService.FindLogs")
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      list,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

func (h *NotificationHandler) GetLog(c *gin.Context) {
	n, err := h.notificationService.FindLog(c.Param("id"))
	if err != nil {
		respondError(c, err, "GetLog: error from notificationService.FindLog")
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) CreateTemplate(c *gin.Context) {
	var req services.CreateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.notificationService.CreateTemplate(req)
	if err != nil {
		respondError(c, err, "CreateTemplate: error from notificationService.CreateTemplate")
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *NotificationHandler) GetTemplates(c *gin.Context) {
	list, err := h.notificationService.FindTemplates(c.Query("type"))
	if err != nil {
		respondError(c, err, "GetTemplates: error from notificationService.FindTemplates")
		return
	}
	if list == nil {
		list = []models.NotificationTemplate{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *NotificationHandler) GetTemplate(c *gin.Context) {
	t, err := h.notificationService.FindTemplate(c.Param("id"))
	if err != nil {
		respondError(c, err, "GetTemplate: error from notificationService.FindTemplate")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *NotificationHandler) UpdateTemplate(c *gin.Context) {
	var req services.UpdateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.notificationService.UpdateTemplate(c.Param("id"), req)
	if err != nil {
		respondError(c, err, "UpdateTemplate: error from notificationService.UpdateTemplate")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *NotificationHandler) DeleteTemplate(c *gin.Context) {
	if err := h.notificationService.RemoveTemplate(c.Param("id")); err != nil {
		respondError(c, err, "DeleteTemplate: error from notificationService.RemoveTemplate")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Plantilla eliminada"})
}

type renderTemplateRequest struct {
	Content   string            `json:"content" binding:"required"`
	Variables map[string]string `json:"variables"`
}

// PreviewTemplate renders content with the given variables without sending it.
func (h *NotificationHandler) PreviewTemplate(c *gin.Context) {
	var req renderTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": services.RenderTemplate(req.Content, req.Variables)})
}
