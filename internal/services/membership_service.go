package services

import (
	"errors"
	"time"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/repositories"
	"gym_club_backend/pkg/utils"
)

// membershipDays is the fixed length of each plan.
var membershipDays = map[string]int{
	models.MembershipMonthly:    30,
	models.MembershipKickboxing: 30,
	models.MembershipQuarterly:  90,
	models.MembershipBiannual:   180,
	models.MembershipAnnual:     365,
}

// MembershipEndDate returns start plus the plan length of membershipType.
func MembershipEndDate(membershipType string, start time.Time) (time.Time, error) {
	days, ok := membershipDays[membershipType]
	if !ok {
		return time.Time{}, ErrInvalidMembershipType
	}
	return start.AddDate(0, 0, days), nil
}

// --- Data Transfer Objects (DTOs) ---

type CreateMembershipRequest struct {
	UserID      string  `json:"user_id" binding:"required"`
	Type        string  `json:"type" binding:"required,oneof=monthly kickboxing quarterly biannual annual"`
	StartDate   string  `json:"start_date" binding:"required"`
	DaysPerWeek *int    `json:"days_per_week" binding:"omitempty,min=1,max=7"`
	Price       float64 `json:"price" binding:"min=0"`
	AutoRenew   bool    `json:"auto_renew"`
	// Status is accepted for compatibility but always stored as active.
	Status string `json:"status"`
}

type UpdateMembershipRequest struct {
	Type        *string  `json:"type" binding:"omitempty,oneof=monthly kickboxing quarterly biannual annual"`
	Status      *string  `json:"status" binding:"omitempty,oneof=active expired pending"`
	StartDate   *string  `json:"start_date"`
	DaysPerWeek *int     `json:"days_per_week" binding:"omitempty,min=1,max=7"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
	AutoRenew   *bool    `json:"auto_renew"`
}

// ExpiringMembership pairs a membership with the days left on it.
type ExpiringMembership struct {
	models.Membership
	DaysRemaining int `json:"days_remaining"`
}

type MembershipService interface {
	Create(req CreateMembershipRequest) (*models.Membership, error)
	FindAll(filters models.MembershipFilters) ([]models.Membership, error)
	FindOne(principal *models.Principal, id string) (*models.Membership, error)
	FindByUser(principal *models.Principal, userID string) ([]models.Membership, error)
	FindActiveByUser(userID string) (*models.Membership, error)
	Update(id string, req UpdateMembershipRequest) (*models.Membership, error)
	Remove(id string) error
	Renew(id string) (*models.Membership, error)
	FindExpiring(start, end time.Time, notify bool) ([]ExpiringMembership, error)
	CheckExpired() ([]models.Membership, error)
	AutoRenew() ([]models.Membership, error)
}

type membershipService struct {
	memberships   repositories.MembershipRepository
	notifications NotificationService
	dispatcher    *Dispatcher
	now           Clock
}

// NewMembershipService creates a new instance of MembershipService. A nil
// clock uses the system time.
func NewMembershipService(memberships repositories.MembershipRepository, notifications NotificationService, dispatcher *Dispatcher, now Clock) MembershipService {
	if now == nil {
		now = systemClock
	}
	return &membershipService{memberships: memberships, notifications: notifications, dispatcher: dispatcher, now: now}
}

func checkDaysPerWeek(membershipType string, days *int) error {
	if membershipType != models.MembershipKickboxing {
		return nil
	}
	if days == nil || *days < 1 || *days > 7 {
		return ErrDaysPerWeekRequired
	}
	return nil
}

func (s *membershipService) Create(req CreateMembershipRequest) (*models.Membership, error) {
	if err := checkDaysPerWeek(req.Type, req.DaysPerWeek); err != nil {
		return nil, err
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, newError(ErrValidation, "Fecha de inicio inválida")
	}
	end, err := MembershipEndDate(req.Type, start)
	if err != nil {
		return nil, err
	}

	m := &models.Membership{
		UserID:      req.UserID,
		Type:        req.Type,
		Status:      models.MembershipStatusActive,
		StartDate:   start,
		EndDate:     end,
		DaysPerWeek: req.DaysPerWeek,
		Price:       req.Price,
		AutoRenew:   req.AutoRenew,
	}
	if req.Type != models.MembershipKickboxing {
		m.DaysPerWeek = nil
	}
	if err := s.memberships.Create(m); err != nil {
		if repositories.IsDanglingReference(err) {
			return nil, ErrUserNotFound
		}
		return nil, upstream(err, "Error al crear la membresía")
	}
	return m, nil
}

func (s *membershipService) FindAll(filters models.MembershipFilters) ([]models.Membership, error) {
	list, err := s.memberships.FindAll(filters)
	if err != nil {
		return nil, upstream(err, "Error al obtener las membresías")
	}
	return list, nil
}

func (s *membershipService) get(id string) (*models.Membership, error) {
	m, err := s.memberships.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Membresía no encontrada", "Error al obtener la membresía")
	}
	return m, nil
}

func (s *membershipService) FindOne(principal *models.Principal, id string) (*models.Membership, error) {
	m, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if principal != nil && !principal.CanAccessUser(m.UserID) {
		return nil, ErrAccessDenied
	}
	return m, nil
}

func (s *membershipService) FindByUser(principal *models.Principal, userID string) ([]models.Membership, error) {
	if principal != nil && !principal.CanAccessUser(userID) {
		return nil, ErrAccessDenied
	}
	list, err := s.memberships.FindByUser(userID)
	if err != nil {
		return nil, upstream(err, "Error al obtener las membresías del usuario")
	}
	return list, nil
}

func (s *membershipService) FindActiveByUser(userID string) (*models.Membership, error) {
	m, err := s.memberships.FindActiveByUser(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoActiveMembership
		}
		return nil, upstream(err, "Error al obtener la membresía activa")
	}
	return m, nil
}

// Update recomputes end_date whenever the plan or the start date changes.
func (s *membershipService) Update(id string, req UpdateMembershipRequest) (*models.Membership, error) {
	m, err := s.get(id)
	if err != nil {
		return nil, err
	}

	recompute := false
	if req.Type != nil && *req.Type != m.Type {
		m.Type = *req.Type
		recompute = true
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			return nil, newError(ErrValidation, "Fecha de inicio inválida")
		}
		if !start.Equal(m.StartDate) {
			m.StartDate = start
			recompute = true
		}
	}
	if req.DaysPerWeek != nil {
		m.DaysPerWeek = req.DaysPerWeek
	}
	if req.Status != nil {
		m.Status = *req.Status
	}
	if req.Price != nil {
		m.Price = *req.Price
	}
	if req.AutoRenew != nil {
		m.AutoRenew = *req.AutoRenew
	}

	if err := checkDaysPerWeek(m.Type, m.DaysPerWeek); err != nil {
		return nil, err
	}
	if m.Type != models.MembershipKickboxing {
		m.DaysPerWeek = nil
	}
	if recompute {
		if m.EndDate, err = MembershipEndDate(m.Type, m.StartDate); err != nil {
			return nil, err
		}
	}

	if err := s.memberships.Update(m); err != nil {
		return nil, notFoundOr(err, "Membresía no encontrada", "Error al actualizar la membresía")
	}
	return m, nil
}

func (s *membershipService) Remove(id string) error {
	if err := s.memberships.Delete(id); err != nil {
		return notFoundOr(err, "Membresía no encontrada", "Error al eliminar la membresía")
	}
	return nil
}

// Renew extends the stored end date by one plan length. Status is untouched.
func (s *membershipService) Renew(id string) (*models.Membership, error) {
	m, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := s.extend(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *membershipService) extend(m *models.Membership) error {
	end, err := MembershipEndDate(m.Type, m.EndDate)
	if err != nil {
		return err
	}
	m.EndDate = end
	if err := s.memberships.Update(m); err != nil {
		return notFoundOr(err, "Membresía no encontrada", "Error al renovar la membresía")
	}
	return nil
}

func daysBetween(from, to time.Time) int {
	from = startOfDay(from)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, from.Location())
	return int(to.Sub(from).Hours() / 24)
}

func (s *membershipService) FindExpiring(start, end time.Time, notify bool) ([]ExpiringMembership, error) {
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}
	list, err := s.memberships.FindActiveEndingBetween(start, end)
	if err != nil {
		return nil, upstream(err, "Error al obtener las membresías por vencer")
	}

	today := s.now()
	result := make([]ExpiringMembership, 0, len(list))
	for _, m := range list {
		days := daysBetween(today, m.EndDate)
		result = append(result, ExpiringMembership{Membership: m, DaysRemaining: days})
		if notify {
			m := m
			s.dispatcher.Go("membership.reminder", func() error {
				return s.notifications.SendExpirationReminder(&m, days)
			})
		}
	}
	return result, nil
}

// CheckExpired marks every active membership that ended before today as
// expired and queues an expiration notice for each one.
func (s *membershipService) CheckExpired() ([]models.Membership, error) {
	list, err := s.memberships.FindActiveEndingBefore(startOfDay(s.now()))
	if err != nil {
		return nil, upstream(err, "Error al verificar membresías expiradas")
	}

	expired := make([]models.Membership, 0, len(list))
	for _, m := range list {
		m.Status = models.MembershipStatusExpired
		if err := s.memberships.Update(&m); err != nil {
			utils.LogWarn(err, "could not expire membership", map[string]interface{}{"membership_id": m.ID})
			continue
		}
		expired = append(expired, m)

		m := m
		s.dispatcher.Go("membership.expired", func() error {
			return s.notifications.SendMembershipExpiration(&m)
		})
	}

	utils.LogInfo("expired memberships checked", map[string]interface{}{"found": len(list), "expired": len(expired)})
	return expired, nil
}

// AutoRenew renews expired memberships flagged auto_renew and reactivates them.
func (s *membershipService) AutoRenew() ([]models.Membership, error) {
	list, err := s.memberships.FindExpiredAutoRenew()
	if err != nil {
		return nil, upstream(err, "Error al obtener membresías con renovación automática")
	}

	renewed := make([]models.Membership, 0, len(list))
	for _, m := range list {
		m.Status = models.MembershipStatusActive
		if err := s.extend(&m); err != nil {
			utils.LogWarn(err, "could not auto renew membership", map[string]interface{}{"membership_id": m.ID})
			continue
		}
		renewed = append(renewed, m)

		m := m
		s.dispatcher.Go("membership.renewed", func() error {
			return s.notifications.SendMembershipRenewal(&m)
		})
	}

	utils.LogInfo("auto renewal finished", map[string]interface{}{"found": len(list), "renewed": len(renewed)})
	return renewed, nil
}
