// Package memory implements every repository interface on in-process maps.
// It mirrors the PostgreSQL constraints the services rely on: unique emails
// and slugs, and foreign keys from memberships/attendance to their parents.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/repositories"

	"github.com/google/uuid"
)

type db struct {
	mu            sync.RWMutex
	users         map[string]models.User
	memberships   map[string]models.Membership
	attendance    map[string]models.Attendance
	posts         map[string]models.Post
	products      map[string]models.Product
	notifications map[string]models.Notification
	templates     map[string]models.NotificationTemplate
}

// NewStore returns an empty store with all repositories sharing one lock.
func NewStore() *repositories.Store {
	d := &db{
		users:         map[string]models.User{},
		memberships:   map[string]models.Membership{},
		attendance:    map[string]models.Attendance{},
		posts:         map[string]models.Post{},
		products:      map[string]models.Product{},
		notifications: map[string]models.Notification{},
		templates:     map[string]models.NotificationTemplate{},
	}
	return &repositories.Store{
		Users:         &userRepo{d},
		Memberships:   &membershipRepo{d},
		Attendance:    &attendanceRepo{d},
		Posts:         &postRepo{d},
		Products:      &productRepo{d},
		Notifications: &notificationRepo{d},
		Templates:     &templateRepo{d},
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// ---- users ----

type userRepo struct{ d *db }

func (r *userRepo) Create(u *models.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.d.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: users_email_key", repositories.ErrDuplicateKey)
		}
	}
	u.ID = newID(u.ID)
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.d.users[u.ID] = *u
	return nil
}

func (r *userRepo) FindByID(id string) (*models.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	u, ok := r.d.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(email string) (*models.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.d.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *userRepo) FindAll() ([]models.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	list := make([]models.User, 0, len(r.d.users))
	for _, u := range r.d.users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *userRepo) Update(u *models.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.users[u.ID]; !ok {
		return repositories.ErrNotFound
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for id, existing := range r.d.users {
		if id != u.ID && existing.Email == u.Email {
			return fmt.Errorf("%w: users_email_key", repositories.ErrDuplicateKey)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	r.d.users[u.ID] = *u
	return nil
}

func (r *userRepo) Delete(id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.d.users, id)
	return nil
}

func (r *userRepo) Count() (int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return len(r.d.users), nil
}

func (r *userRepo) CountCreatedBetween(start, end time.Time) (int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	n := 0
	for _, u := range r.d.users {
		if inRange(u.CreatedAt, start, end) {
			n++
		}
	}
	return n, nil
}

// ---- memberships ----

type membershipRepo struct{ d *db }

func (r *membershipRepo) Create(m *models.Membership) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.users[m.UserID]; !ok {
		return fmt.Errorf("%w: memberships_user_id_fkey", repositories.ErrForeignKey)
	}
	m.ID = newID(m.ID)
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	r.d.memberships[m.ID] = *m
	return nil
}

func (r *membershipRepo) FindByID(id string) (*models.Membership, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	m, ok := r.d.memberships[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &m, nil
}

func (r *membershipRepo) filter(keep func(models.Membership) bool, less func(a, b models.Membership) bool) []models.Membership {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	list := []models.Membership{}
	for _, m := range r.d.memberships {
		if keep(m) {
			list = append(list, m)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
	return list
}

func newestFirst(a, b models.Membership) bool { return a.CreatedAt.After(b.CreatedAt) }
func endingFirst(a, b models.Membership) bool { return a.EndDate.Before(b.EndDate) }

func (r *membershipRepo) FindAll(f models.MembershipFilters) ([]models.Membership, error) {
	return r.filter(func(m models.Membership) bool {
		return (f.UserID == "" || m.UserID == f.UserID) &&
			(f.Status == "" || m.Status == f.Status) &&
			(f.Type == "" || m.Type == f.Type)
	}, newestFirst), nil
}

func (r *membershipRepo) FindByUser(userID string) ([]models.Membership, error) {
	return r.filter(func(m models.Membership) bool { return m.UserID == userID }, newestFirst), nil
}

func (r *membershipRepo) FindActiveByUser(userID string) (*models.Membership, error) {
	list := r.filter(func(m models.Membership) bool {
		return m.UserID == userID && m.Status == models.MembershipStatusActive
	}, func(a, b models.Membership) bool { return a.EndDate.After(b.EndDate) })
	if len(list) == 0 {
		return nil, repositories.ErrNotFound
	}
	return &list[0], nil
}

func (r *membershipRepo) FindFirstByUser(userID string) (*models.Membership, error) {
	list := r.filter(func(m models.Membership) bool { return m.UserID == userID },
		func(a, b models.Membership) bool { return a.CreatedAt.Before(b.CreatedAt) })
	if len(list) == 0 {
		return nil, repositories.ErrNotFound
	}
	return &list[0], nil
}

func (r *membershipRepo) Update(m *models.Membership) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.memberships[m.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.UpdatedAt = time.Now().UTC()
	r.d.memberships[m.ID] = *m
	return nil
}

func (r *membershipRepo) Delete(id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.memberships[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.d.memberships, id)
	for aid, a := range r.d.attendance {
		if a.MembershipID != nil && *a.MembershipID == id {
			a.MembershipID = nil
			r.d.attendance[aid] = a
		}
	}
	return nil
}

func (r *membershipRepo) FindActiveEndingBefore(day time.Time) ([]models.Membership, error) {
	return r.filter(func(m models.Membership) bool {
		return m.Status == models.MembershipStatusActive && m.EndDate.Before(day)
	}, endingFirst), nil
}

func (r *membershipRepo) FindActiveEndingBetween(start, end time.Time) ([]models.Membership, error) {
	return r.filter(func(m models.Membership) bool {
		return m.Status == models.MembershipStatusActive && !m.EndDate.Before(start) && !m.EndDate.After(end)
	}, endingFirst), nil
}

func (r *membershipRepo) FindExpiredAutoRenew() ([]models.Membership, error) {
	return r.filter(func(m models.Membership) bool {
		return m.Status == models.MembershipStatusExpired && m.AutoRenew
	}, endingFirst), nil
}

func (r *membershipRepo) CountByStatus() (map[string]int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	counts := map[string]int{}
	for _, m := range r.d.memberships {
		counts[m.Status]++
	}
	return counts, nil
}

func (r *membershipRepo) CountByType() (map[string]int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	counts := map[string]int{}
	for _, m := range r.d.memberships {
		counts[m.Type]++
	}
	return counts, nil
}

func (r *membershipRepo) SumPriceStartedBetween(start, end time.Time) (float64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	total := 0.0
	for _, m := range r.d.memberships {
		if inRange(m.StartDate, start, end) {
			total += m.Price
		}
	}
	return total, nil
}

// ---- attendance ----

type attendanceRepo struct{ d *db }

func (r *attendanceRepo) Create(a *models.Attendance) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.users[a.UserID]; !ok {
		return fmt.Errorf("%w: attendance_user_id_fkey", repositories.ErrForeignKey)
	}
	if a.MembershipID != nil {
		if _, ok := r.d.memberships[*a.MembershipID]; !ok {
			return fmt.Errorf("%w: attendance_membership_id_fkey", repositories.ErrForeignKey)
		}
	}
	a.ID = newID(a.ID)
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	if a.CheckInTime.IsZero() {
		a.CheckInTime = now
	}
	r.d.attendance[a.ID] = *a
	return nil
}

func (r *attendanceRepo) FindByID(id string) (*models.Attendance, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	a, ok := r.d.attendance[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (r *attendanceRepo) list(keep func(models.Attendance) bool, newest bool, limit int) []models.Attendance {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	list := []models.Attendance{}
	for _, a := range r.d.attendance {
		if keep(a) {
			list = append(list, a)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if newest {
			return list[i].CheckInTime.After(list[j].CheckInTime)
		}
		return list[i].CheckInTime.Before(list[j].CheckInTime)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

func (r *attendanceRepo) FindAll(limit int) ([]models.Attendance, error) {
	return r.list(func(models.Attendance) bool { return true }, true, limit), nil
}

func (r *attendanceRepo) FindByUser(userID string, limit int) ([]models.Attendance, error) {
	return r.list(func(a models.Attendance) bool { return a.UserID == userID }, true, limit), nil
}

func (r *attendanceRepo) FindByDateRange(start, end time.Time) ([]models.Attendance, error) {
	return r.list(func(a models.Attendance) bool { return inRange(a.CheckInTime, start, end) }, false, 0), nil
}

func (r *attendanceRepo) FindLatestForUserBetween(userID string, start, end time.Time) (*models.Attendance, error) {
	list := r.list(func(a models.Attendance) bool {
		return a.UserID == userID && inRange(a.CheckInTime, start, end)
	}, true, 1)
	if len(list) == 0 {
		return nil, repositories.ErrNotFound
	}
	return &list[0], nil
}

func (r *attendanceRepo) Update(a *models.Attendance) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.attendance[a.ID]; !ok {
		return repositories.ErrNotFound
	}
	a.UpdatedAt = time.Now().UTC()
	r.d.attendance[a.ID] = *a
	return nil
}

func (r *attendanceRepo) Delete(id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.attendance[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.d.attendance, id)
	return nil
}

func (r *attendanceRepo) CountBetween(start, end time.Time) (int, error) {
	list, _ := r.FindByDateRange(start, end)
	return len(list), nil
}

func (r *attendanceRepo) CheckInTimesBetween(start, end time.Time) ([]time.Time, error) {
	list, _ := r.FindByDateRange(start, end)
	times := make([]time.Time, 0, len(list))
	for _, a := range list {
		times = append(times, a.CheckInTime)
	}
	return times, nil
}
