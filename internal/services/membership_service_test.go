package services

import (
	"sync"
	"testing"
	"time"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/notify"
	"gym_club_backend/internal/repositories"
	"gym_club_backend/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMailer records sent emails; err is returned for every send.
type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
	fail map[string]bool
}

func (f *fakeMailer) SendEmail(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.fail[to] {
		return assert.AnError
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeWhatsApp struct {
	mu   sync.Mutex
	sent []notify.WhatsAppMessage
}

func (f *fakeWhatsApp) SendWhatsApp(msg notify.WhatsAppMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

type fixture struct {
	store         *repositories.Store
	dispatcher    *Dispatcher
	mailer        *fakeMailer
	whatsapp      *fakeWhatsApp
	notifications NotificationService
	memberships   MembershipService
	attendance    AttendanceService
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		store:      memory.NewStore(),
		dispatcher: NewDispatcher(2),
		mailer:     &fakeMailer{},
		whatsapp:   &fakeWhatsApp{},
	}
	f.notifications = NewNotificationService(f.store, f.mailer, f.whatsapp, "54")
	f.memberships = NewMembershipService(f.store.Memberships, f.notifications, f.dispatcher, fixedClock(now))
	f.attendance = NewAttendanceService(f.store.Attendance, f.store.Memberships, fixedClock(now))
	return f
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, FirstName: "Ana", LastName: "Pérez", Role: models.RoleUser}
	require.NoError(t, f.store.Users.Create(u))
	return u
}

func TestMembershipEndDate(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := map[string]string{
		models.MembershipMonthly:    "2025-01-31",
		models.MembershipKickboxing: "2025-01-31",
		models.MembershipQuarterly:  "2025-04-01",
		models.MembershipBiannual:   "2025-06-30",
		models.MembershipAnnual:     "2026-01-01",
	}
	for typ, want := range cases {
		end, err := MembershipEndDate(typ, start)
		require.NoError(t, err, typ)
		assert.Equal(t, want, end.Format(dateLayout), typ)
	}

	_, err := MembershipEndDate("weekly", start)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateMembership(t *testing.T) {
	f := newFixture(t, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	u := f.user(t, "ana@example.com")

	m, err := f.memberships.Create(CreateMembershipRequest{
		UserID: u.ID, Type: models.MembershipQuarterly, StartDate: "2025-01-01", Price: 90, Status: "expired",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusActive, m.Status)
	assert.Equal(t, "2025-04-01", m.EndDate.Format(dateLayout))
	assert.Nil(t, m.DaysPerWeek)

	t.Run("kickboxing needs days per week", func(t *testing.T) {
		_, err := f.memberships.Create(CreateMembershipRequest{UserID: u.ID, Type: models.MembershipKickboxing, StartDate: "2025-01-01"})
		assert.ErrorIs(t, err, ErrBusinessRule)

		days := 3
		m, err := f.memberships.Create(CreateMembershipRequest{UserID: u.ID, Type: models.MembershipKickboxing, StartDate: "2025-01-01", DaysPerWeek: &days})
		require.NoError(t, err)
		require.NotNil(t, m.DaysPerWeek)
		assert.Equal(t, 3, *m.DaysPerWeek)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.memberships.Create(CreateMembershipRequest{UserID: "missing", Type: models.MembershipMonthly, StartDate: "2025-01-01"})
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("bad start date", func(t *testing.T) {
		_, err := f.memberships.Create(CreateMembershipRequest{UserID: u.ID, Type: models.MembershipMonthly, StartDate: "01/01/2025"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUpdateMembershipRecomputesEndDate(t *testing.T) {
	f := newFixture(t, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	u := f.user(t, "ana@example.com")
	m, err := f.memberships.Create(CreateMembershipRequest{UserID: u.ID, Type: models.MembershipMonthly, StartDate: "2025-01-01"})
	require.NoError(t, err)

	annual := models.MembershipAnnual
	updated, err := f.memberships.Update(m.ID, UpdateMembershipRequest{Type: &annual})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", updated.EndDate.Format(dateLayout))

	price := 120.0
	updated, err = f.memberships.Update(m.ID, UpdateMembershipRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", updated.EndDate.Format(dateLayout))
	assert.Equal(t, 120.0, updated.Price)
}

func TestRenewExtendsFromEndDate(t *testing.T) {
	f := newFixture(t, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	u := f.user(t, "ana@example.com")
	m, err := f.memberships.Create(CreateMembershipRequest{UserID: u.ID, Type: models.MembershipMonthly, StartDate: "2025-01-01"})
	require.NoError(t, err)

	renewed, err := f.memberships.Renew(m.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02", renewed.EndDate.Format(dateLayout))
	assert.Equal(t, m.StartDate, renewed.StartDate)
	assert.Equal(t, models.MembershipStatusActive, renewed.Status)

	renewed, err = f.memberships.Renew(m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.EndDate.AddDate(0, 0, 60), renewed.EndDate)

	_, err = f.memberships.Renew("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindOneChecksOwnership(t *testing.T) {
	f := newFixture(t, time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC))
	owner := f.user(t, "ana@example.com")
	other := f.user(t, "luis@example.com")
	m, err := f.memberships.Create(CreateMembershipRequest{UserID: owner.ID, Type: models.MembershipMonthly, StartDate: "2025-01-01"})
	require.NoError(t, err)

	_, err = f.memberships.FindOne(&models.Principal{UserID: other.ID}, m.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.memberships.FindOne(&models.Principal{UserID: other.ID, IsAdmin: true}, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = f.memberships.FindByUser(&models.Principal{UserID: other.ID}, owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCheckExpiredMarksAndNotifies(t *testing.T) {
	f := newFixture(t, time.Date(2025, 2, 15, 9, 0, 0, 0, time.UTC))
	u := f.user(t, "ana@example.com")
	old, err := f.memberships.Create(CreateMembershipRequest{UserID: u.ID, Type: models.MembershipMonthly, StartDate: "2025-01-01"})
	require.NoError(t, err)
	current, err := f.memberships.Create(CreateMembershipRequest{UserID: u.ID, Type: models.MembershipMonthly, StartDate: "2025-02-10"})
	require.NoError(t, err)

	expired, err := f.memberships.CheckExpired()
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, old.ID, expired[0].ID)
	f.dispatcher.Wait()

	stored, err := f.store.Memberships.FindByID(old.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusExpired, stored.Status)
	stored, err = f.store.Memberships.FindByID(current.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusActive, stored.Status)

	logs, total, err := f.notifications.FindLogs(models.NotificationFilters{MembershipID: old.ID})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, models.NotificationEmail, logs[0].Type)
	assert.Equal(t, models.NotificationSent, logs[0].Status)
	assert.Contains(t, logs[0].Content, "2025-01-31")
	assert.Equal(t, []string{"ana@example.com"}, f.mailer.sent)

	again, err := f.memberships.CheckExpired()
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestMembershipEndingTodayIsNotExpired(t *testing.T) {
	f := newFixture(t, time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC))
	u := f.user(t, "ana@example.com")
	_, err := f.memberships.Create(CreateMembershipRequest{UserID: u.ID, Type: models.MembershipMonthly, StartDate: "2025-01-01"})
	require.NoError(t, err)

	expired, err := f.memberships.CheckExpired()
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestAutoRenewReactivates(t *testing.T) {
	f := newFixture(t, time.Date(2025, 2, 15, 9, 0, 0, 0, time.UTC))
	u := f.user(t, "ana@example.com")
	m, err := f.memberships.Create(CreateMembershipRequest{UserID: u.ID, Type: models.MembershipMonthly, StartDate: "2025-01-01", AutoRenew: true})
	require.NoError(t, err)
	manual, err := f.memberships.Create(CreateMembershipRequest{UserID: u.ID, Type: models.MembershipMonthly, StartDate: "2025-01-01"})
	require.NoError(t, err)

	_, err = f.memberships.CheckExpired()
	require.NoError(t, err)
	renewed, err := f.memberships.AutoRenew()
	require.NoError(t, err)
	f.dispatcher.Wait()

	require.Len(t, renewed, 1)
	assert.Equal(t, m.ID, renewed[0].ID)
	assert.Equal(t, models.MembershipStatusActive, renewed[0].Status)
	assert.Equal(t, "2025-03-02", renewed[0].EndDate.Format(dateLayout))

	stored, err := f.store.Memberships.FindByID(manual.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusExpired, stored.Status)
}

func TestFindExpiringComputesDaysRemaining(t *testing.T) {
	now := time.Date(2025, 1, 25, 18, 0, 0, 0, time.UTC)
	f := newFixture(t, now)
	u := f.user(t, "ana@example.com")
	_, err := f.memberships.Create(CreateMembershipRequest{UserID: u.ID, Type: models.MembershipMonthly, StartDate: "2025-01-01"})
	require.NoError(t, err)
	_, err = f.memberships.Create(CreateMembershipRequest{UserID: u.ID, Type: models.MembershipAnnual, StartDate: "2025-01-01"})
	require.NoError(t, err)

	start := startOfDay(now)
	list, err := f.memberships.FindExpiring(start, start.AddDate(0, 0, 7), true)
	require.NoError(t, err)
	f.dispatcher.Wait()

	require.Len(t, list, 1)
	assert.Equal(t, 6, list[0].DaysRemaining)

	logs, _, err := f.notifications.FindLogs(models.NotificationFilters{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Content, "6 días")

	_, err = f.memberships.FindExpiring(start, start.AddDate(0, 0, -1), false)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}
