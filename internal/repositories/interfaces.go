package repositories

import (
	"time"

	"gym_club_backend/internal/models"
)

// UserRepository persists accounts. FindByEmail is the only lookup that
// returns the password hash.
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindAll() ([]models.User, error)
	Update(user *models.User) error
	Delete(id string) error
	Count() (int, error)
	CountCreatedBetween(start, end time.Time) (int, error)
}

type MembershipRepository interface {
	Create(m *models.Membership) error
	FindByID(id string) (*models.Membership, error)
	FindAll(filters models.MembershipFilters) ([]models.Membership, error)
	FindByUser(userID string) ([]models.Membership, error)
	// FindActiveByUser returns the active membership with the latest end date.
	FindActiveByUser(userID string) (*models.Membership, error)
	// FindFirstByUser returns the oldest membership of the user, any status.
	FindFirstByUser(userID string) (*models.Membership, error)
	Update(m *models.Membership) error
	Delete(id string) error
	FindActiveEndingBefore(day time.Time) ([]models.Membership, error)
	FindActiveEndingBetween(start, end time.Time) ([]models.Membership, error)
	FindExpiredAutoRenew() ([]models.Membership, error)
	CountByStatus() (map[string]int, error)
	CountByType() (map[string]int, error)
	SumPriceStartedBetween(start, end time.Time) (float64, error)
}

// AttendanceRepository.Create returns an error matching IsDanglingReference
// when the membership link cannot be stored; callers may retry with
// MembershipID cleared.
type AttendanceRepository interface {
	Create(a *models.Attendance) error
	FindByID(id string) (*models.Attendance, error)
	FindAll(limit int) ([]models.Attendance, error)
	FindByUser(userID string, limit int) ([]models.Attendance, error)
	FindByDateRange(start, end time.Time) ([]models.Attendance, error)
	// FindLatestForUserBetween returns the most recent check-in in [start, end).
	FindLatestForUserBetween(userID string, start, end time.Time) (*models.Attendance, error)
	Update(a *models.Attendance) error
	Delete(id string) error
	CountBetween(start, end time.Time) (int, error)
	CheckInTimesBetween(start, end time.Time) ([]time.Time, error)
}

type PostRepository interface {
	Create(p *models.Post) error
	FindByID(id string) (*models.Post, error)
	FindBySlug(slug string) (*models.Post, error)
	FindAll(filters models.PostFilters) ([]models.Post, int, error)
	Update(p *models.Post) error
	Delete(id string) error
	// SlugExists ignores the row with excludeID (pass "" on create).
	SlugExists(slug, excludeID string) (bool, error)
	IncrementViews(id string) error
	Tags() ([]string, error)
	CountByStatus() (map[string]int, error)
	TotalViews() (int, error)
	TopByViews(limit int) ([]models.Post, error)
}

type ProductRepository interface {
	Create(p *models.Product) error
	FindByID(id string) (*models.Product, error)
	FindBySlug(slug string) (*models.Product, error)
	FindAll(filters models.ProductFilters) ([]models.Product, error)
	Update(p *models.Product) error
	Delete(id string) error
	SlugExists(slug, excludeID string) (bool, error)
}

type NotificationRepository interface {
	Create(n *models.Notification) error
	FindByID(id string) (*models.Notification, error)
	FindAll(filters models.NotificationFilters) ([]models.Notification, int, error)
	UpdateStatus(id, status string, errorMessage *string) error
}

type TemplateRepository interface {
	Create(t *models.NotificationTemplate) error
	FindByID(id string) (*models.NotificationTemplate, error)
	FindAll(templateType string) ([]models.NotificationTemplate, error)
	FindDefaults(templateType string) ([]models.NotificationTemplate, error)
	Update(t *models.NotificationTemplate) error
	Delete(id string) error
	// UnsetDefaults clears is_default on every template of the type except exceptID.
	UnsetDefaults(templateType, exceptID string) error
}

// Store bundles every repository so callers can swap the backing driver.
type Store struct {
	Users         UserRepository
	Memberships   MembershipRepository
	Attendance    AttendanceRepository
	Posts         PostRepository
	Products      ProductRepository
	Notifications NotificationRepository
	Templates     TemplateRepository
}
