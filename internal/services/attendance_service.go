package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/repositories"
	"gym_club_backend/pkg/utils"
)

const defaultHistoryLimit = 50

// --- Data Transfer Objects (DTOs) ---

type CreateAttendanceRequest struct {
	UserID       string  `json:"user_id" binding:"required"`
	MembershipID *string `json:"membership_id"`
	Notes        *string `json:"notes"`
}

type UpdateAttendanceRequest struct {
	CheckOutTime *time.Time `json:"check_out_time"`
	Notes        *string    `json:"notes"`
}

// CheckInResult tells the caller whether a new visit was recorded or an open
// one from today was returned.
type CheckInResult struct {
	Attendance *models.Attendance `json:"attendance"`
	Created    bool               `json:"created"`
}

type AttendanceService interface {
	Create(principal *models.Principal, req CreateAttendanceRequest) (*CheckInResult, error)
	RegisterAttendance(principal *models.Principal) (*CheckInResult, error)
	FindAll(limit int) ([]models.Attendance, error)
	FindOne(principal *models.Principal, id string) (*models.Attendance, error)
	FindByUser(principal *models.Principal, userID string, limit int) ([]models.Attendance, error)
	FindByDateRange(start, end string) ([]models.Attendance, error)
	Update(id string, req UpdateAttendanceRequest) (*models.Attendance, error)
	Remove(id string) error
	CheckOut(id string) (*models.Attendance, error)

	GenerateQRCode(principal *models.Principal, userID string) (*models.QRCode, error)
	VerifyQRCode(token string) (*models.QRVerification, error)
	CheckInWithQR(raw string) (*CheckInResult, error)
}

type attendanceService struct {
	attendance  repositories.AttendanceRepository
	memberships repositories.MembershipRepository
	now         Clock
}

// NewAttendanceService creates a new instance of AttendanceService.
func NewAttendanceService(attendance repositories.AttendanceRepository, memberships repositories.MembershipRepository, now Clock) AttendanceService {
	if now == nil {
		now = systemClock
	}
	return &attendanceService{attendance: attendance, memberships: memberships, now: now}
}

// resolveMembership prefers the explicit id, then the active membership,
// then the user's first membership. A nil result means no link.
func (s *attendanceService) resolveMembership(userID string, explicit *string) (*string, error) {
	if explicit != nil && *explicit != "" {
		return explicit, nil
	}
	m, err := s.memberships.FindActiveByUser(userID)
	if err == nil {
		return &m.ID, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, upstream(err, "Error al obtener la membresía del usuario")
	}
	m, err = s.memberships.FindFirstByUser(userID)
	if err == nil {
		return &m.ID, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, upstream(err, "Error al obtener la membresía del usuario")
	}
	return nil, nil
}

// checkIn records a visit for userID unless an open one exists today.
func (s *attendanceService) checkIn(userID string, membershipID, notes *string) (*CheckInResult, error) {
	now := s.now()
	dayStart := startOfDay(now)
	latest, err := s.attendance.FindLatestForUserBetween(userID, dayStart, dayStart.AddDate(0, 0, 1))
	switch {
	case err == nil && latest.IsOpen():
		return &CheckInResult{Attendance: latest, Created: false}, nil
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return nil, upstream(err, "Error al verificar la asistencia del día")
	}

	link, err := s.resolveMembership(userID, membershipID)
	if err != nil {
		return nil, err
	}

	a := &models.Attendance{UserID: userID, MembershipID: link, CheckInTime: now, Notes: notes}
	err = s.attendance.Create(a)
	if repositories.IsDanglingReference(err) && a.MembershipID != nil {
		utils.LogWarn(err, "attendance membership link rejected, retrying without it", map[string]interface{}{
			"user_id":       userID,
			"membership_id": *a.MembershipID,
		})
		a.MembershipID = nil
		err = s.attendance.Create(a)
	}
	if err != nil {
		if repositories.IsDanglingReference(err) {
			return nil, ErrUserNotFound
		}
		return nil, upstream(err, "Error al registrar la asistencia")
	}
	return &CheckInResult{Attendance: a, Created: true}, nil
}

func (s *attendanceService) Create(principal *models.Principal, req CreateAttendanceRequest) (*CheckInResult, error) {
	if principal != nil && !principal.CanAccessUser(req.UserID) {
		return nil, ErrAccessDenied
	}
	return s.checkIn(req.UserID, req.MembershipID, req.Notes)
}

// RegisterAttendance checks in the authenticated caller.
func (s *attendanceService) RegisterAttendance(principal *models.Principal) (*CheckInResult, error) {
	if principal == nil {
		return nil, ErrInvalidToken
	}
	return s.checkIn(principal.UserID, nil, nil)
}

func (s *attendanceService) FindAll(limit int) ([]models.Attendance, error) {
	list, err := s.attendance.FindAll(limit)
	if err != nil {
		return nil, upstream(err, "Error al obtener las asistencias")
	}
	return list, nil
}

func (s *attendanceService) get(id string) (*models.Attendance, error) {
	a, err := s.attendance.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Registro de asistencia no encontrado", "Error al obtener la asistencia")
	}
	return a, nil
}

func (s *attendanceService) FindOne(principal *models.Principal, id string) (*models.Attendance, error) {
	a, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if principal != nil && !principal.CanAccessUser(a.UserID) {
		return nil, ErrAccessDenied
	}
	return a, nil
}

func (s *attendanceService) FindByUser(principal *models.Principal, userID string, limit int) ([]models.Attendance, error) {
	if principal != nil && !principal.CanAccessUser(userID) {
		return nil, ErrAccessDenied
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	list, err := s.attendance.FindByUser(userID, limit)
	if err != nil {
		return nil, upstream(err, "Error al obtener el historial de asistencia")
	}
	return list, nil
}

// FindByDateRange includes both calendar days.
func (s *attendanceService) FindByDateRange(start, end string) ([]models.Attendance, error) {
	from, err := parseDate(start)
	if err != nil {
		return nil, ErrInvalidDateRange
	}
	to, err := parseDate(end)
	if err != nil || to.Before(from) {
		return nil, ErrInvalidDateRange
	}
	list, err := s.attendance.FindByDateRange(from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, upstream(err, "Error al obtener las asistencias")
	}
	return list, nil
}

func (s *attendanceService) Update(id string, req UpdateAttendanceRequest) (*models.Attendance, error) {
	a, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if req.CheckOutTime != nil {
		if !a.IsOpen() {
			return nil, ErrAlreadyCheckedOut
		}
		if req.CheckOutTime.Before(a.CheckInTime) {
			return nil, newError(ErrValidation, "La salida no puede ser anterior a la entrada")
		}
		a.CheckOutTime = req.CheckOutTime
	}
	if req.Notes != nil {
		a.Notes = req.Notes
	}
	if err := s.attendance.Update(a); err != nil {
		return nil, notFoundOr(err, "Registro de asistencia no encontrado", "Error al actualizar la asistencia")
	}
	return a, nil
}

func (s *attendanceService) Remove(id string) error {
	if err := s.attendance.Delete(id); err != nil {
		return notFoundOr(err, "Registro de asistencia no encontrado", "Error al eliminar la asistencia")
	}
	return nil
}

// CheckOut sets the check-out time once; a second call is rejected.
func (s *attendanceService) CheckOut(id string) (*models.Attendance, error) {
	a, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if !a.IsOpen() {
		return nil, ErrAlreadyCheckedOut
	}
	now := s.now()
	a.CheckOutTime = &now
	if err := s.attendance.Update(a); err != nil {
		return nil, notFoundOr(err, "Registro de asistencia no encontrado", "Error al registrar la salida")
	}
	return a, nil
}

// --- QR ---

// GenerateQRCode issues the token "{userId}_{unixMillis}". The token carries
// no signature; VerifyQRCode only checks its shape and the membership.
func (s *attendanceService) GenerateQRCode(principal *models.Principal, userID string) (*models.QRCode, error) {
	if principal != nil && !principal.CanAccessUser(userID) {
		return nil, ErrAccessDenied
	}
	now := s.now()
	token := fmt.Sprintf("%s_%d", userID, now.UnixMilli())
	data, err := json.Marshal(map[string]interface{}{
		"user_id":   userID,
		"token":     token,
		"timestamp": now.UnixMilli(),
	})
	if err != nil {
		return nil, upstream(err, "Error al generar el código QR")
	}
	return &models.QRCode{Token: token, QRData: string(data), UserID: userID, GeneratedAt: now}, nil
}

func (s *attendanceService) VerifyQRCode(token string) (*models.QRVerification, error) {
	parts := strings.Split(strings.TrimSpace(token), "_")
	if len(parts) != 2 || parts[0] == "" {
		return nil, ErrInvalidQRCode
	}
	millis, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, ErrInvalidQRCode
	}

	m, err := s.memberships.FindActiveByUser(parts[0])
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoActiveMembership
		}
		return nil, upstream(err, "Error al verificar el código QR")
	}
	return &models.QRVerification{
		Valid:      true,
		UserID:     parts[0],
		IssuedAt:   time.UnixMilli(millis),
		Membership: m,
	}, nil
}

// CheckInWithQR records a visit from a scanned payload. Anyone holding a
// well formed payload with a user id can check that user in.
func (s *attendanceService) CheckInWithQR(raw string) (*CheckInResult, error) {
	userID := ParseQRPayload(raw)
	if userID == "" {
		return nil, ErrInvalidQRCode
	}
	notes := "Check-in QR"
	return s.checkIn(userID, nil, &notes)
}

// ParseQRPayload extracts the user id from a scanned QR payload. It accepts
// a JSON object, a "data=<urlencoded json>" fragment, or plain query
// parameters, in that order. "userId" is accepted as an alias of "user_id".
func ParseQRPayload(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	// input that is already JSON is not unescaped again, "%" and "+" are literal there
	if id := userIDFromJSON(raw); id != "" {
		return id
	}
	if d, err := url.QueryUnescape(raw); err == nil && d != raw {
		if id := userIDFromJSON(d); id != "" {
			return id
		}
	}

	if i := strings.Index(raw, "data="); i >= 0 {
		fragment := raw[i+len("data="):]
		if j := strings.IndexByte(fragment, '&'); j >= 0 {
			fragment = fragment[:j]
		}
		if d, err := url.QueryUnescape(fragment); err == nil {
			if id := userIDFromJSON(d); id != "" {
				return id
			}
		}
	}

	query := raw
	if i := strings.IndexByte(query, '?'); i >= 0 {
		query = query[i+1:]
	}
	// ParseQuery keeps every pair it could decode alongside the first error
	values, _ := url.ParseQuery(query)
	for _, key := range []string{"user_id", "userId"} {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			return v
		}
	}
	return ""
}

func userIDFromJSON(s string) string {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return ""
	}
	for _, key := range []string{"user_id", "userId"} {
		switch v := payload[key].(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
