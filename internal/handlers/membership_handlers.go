package handlers

import (
	"net/http"
	"time"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// defaultExpiringWindow is used when /expiring is called without dates.
const defaultExpiringWindow = 7 * 24 * time.Hour

type MembershipHandler struct {
	membershipService services.MembershipService
}

func NewMembershipHandler(ms services.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: ms}
}

func (h *MembershipHandler) CreateMembership(c *gin.Context) {
	var req services.CreateMembershipRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.membershipService.Create(req)
	if err != nil {
		respondError(c, err, "CreateMembership: error from membershipService.Create")
		return
	}
	c.JSON(http.StatusCreated, m)
}

// GetMemberships lists memberships, optionally filtered by user_id, status and type.
func (h *MembershipHandler) GetMemberships(c *gin.Context) {
	list, err := h.membershipService.FindAll(models.MembershipFilters{
		UserID: c.Query("user_id"),
		Status: c.Query("status"),
		Type:   c.Query("type"),
	})
	if err != nil {
		respondError(c, err, "GetMemberships: error from membershipService.FindAll")
		return
	}
	if list == nil {
		list = []models.Membership{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *MembershipHandler) GetMembershipByID(c *gin.Context) {
	m, err := h.membershipService.FindOne(principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "GetMembershipByID: error from membershipService.FindOne")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MembershipHandler) GetUserMemberships(c *gin.Context) {
	list, err := h.membershipService.FindByUser(principal(c), c.Param("userId"))
	if err != nil {
		respondError(c, err, "GetUserMemberships: error from membershipService.FindByUser")
		return
	}
	if list == nil {
		list = []models.Membership{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *MembershipHandler) UpdateMembership(c *gin.Context) {
	var req services.UpdateMembershipRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.membershipService.Update(c.Param("id"), req)
	if err != nil {
		respondError(c, err, "UpdateMembership: error from membershipService.Update")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MembershipHandler) DeleteMembership(c *gin.Context) {
	if err := h.membershipService.Remove(c.Param("id")); err != nil {
		respondError(c, err, "DeleteMembership: error from membershipService.Remove")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Membresía eliminada"})
}

func (h *MembershipHandler) RenewMembership(c *gin.Context) {
	m, err := h.membershipService.Renew(c.Param("id"))
	if err != nil {
		respondError(c, err, "RenewMembership: error from membershipService.Renew")
		return
	}
	c.JSON(http.StatusOK, m)
}

// GetExpiring lists active memberships ending between start and end
// (default: the next 7 days). notify=true queues reminders.
func (h *MembershipHandler) GetExpiring(c *gin.Context) {
	start := time.Now()
	end := start.Add(defaultExpiringWindow)
	var err error
	if v := c.Query("start"); v != "" {
		if start, err = time.Parse("2006-01-02", v); err != nil {
			respondError(c, services.ErrInvalidDateRange, "GetExpiring: bad start")
			return
		}
	}
	if v := c.Query("end"); v != "" {
		if end, err = time.Parse("2006-01-02", v); err != nil {
			respondError(c, services.ErrInvalidDateRange, "GetExpiring: bad end")
			return
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	list, err := h.membershipService.FindExpiring(start, end, queryBool(c, "notify"))
	if err != nil {
		respondError(c, err, "GetExpiring: error from membershipService.FindExpiring")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *MembershipHandler) CheckExpired(c *gin.Context) {
	expired, err := h.membershipService.CheckExpired()
	if err != nil {
		respondError(c, err, "CheckExpired: error from membershipService.CheckExpired")
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": len(expired), "memberships": expired})
}

func (h *MembershipHandler) AutoRenew(c *gin.Context) {
	renewed, err := h.membershipService.AutoRenew()
	if err != nil {
		respondError(c, err, "AutoRenew: error from membershipService.AutoRenew")
		return
	}
	c.JSON(http.StatusOK, gin.H{"renewed": len(renewed), "memberships": renewed})
}
