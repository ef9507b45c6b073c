package repositories

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"gym_club_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestClassifyDriverErrors(t *testing.T) {
	assert.ErrorIs(t, classify(sql.ErrNoRows, "x"), ErrNotFound)
	assert.ErrorIs(t, classify(&pq.Error{Code: "23505", Constraint: "users_email_key"}, "x"), ErrDuplicateKey)
	assert.ErrorIs(t, classify(&pq.Error{Code: "23503", Column: "membership_id"}, "x"), ErrForeignKey)
	assert.ErrorIs(t, classify(&pq.Error{Code: "23502", Column: "membership_id"}, "x"), ErrForeignKey)
	assert.ErrorIs(t, classify(errors.New("connection reset"), "x"), ErrDatabaseError)

	malformed := classify(&pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}, "x")
	assert.ErrorIs(t, malformed, ErrNotFound)
	assert.ErrorIs(t, malformed, ErrInvalidID)
	assert.NotErrorIs(t, malformed, ErrDatabaseError)
	assert.True(t, IsDanglingReference(malformed))
	assert.True(t, IsDanglingReference(classify(&pq.Error{Code: "23503"}, "x")))
	assert.False(t, IsDanglingReference(classify(sql.ErrNoRows, "x")))
	assert.NoError(t, classify(nil, "x"))
}

func TestUserFindByMalformedIDIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("abc").
		WillReturnError(&pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`})

	_, err := NewUserRepository(db).FindByID("abc")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceCreateMalformedMembershipIsDangling(t *testing.T) {
	db, mock := newMock(t)
	membershipID := "xyz"
	mock.ExpectExec("INSERT INTO attendance").
		WillReturnError(&pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "xyz"`})

	err := NewAttendanceRepository(db).Create(&models.Attendance{UserID: "u-1", MembershipID: &membershipID})
	assert.True(t, IsDanglingReference(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("ana@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepository(db).FindByEmail("  Ana@Example.com ")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key", Message: "duplicate"})

	err := NewUserRepository(db).Create(&models.User{Email: "a@b.co", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestAttendanceCreateReportsForeignKey(t *testing.T) {
	db, mock := newMock(t)
	membershipID := "m-1"
	mock.ExpectExec("INSERT INTO attendance").
		WillReturnError(&pq.Error{Code: "23503", Column: "membership_id", Constraint: "attendance_membership_id_fkey"})

	a := &models.Attendance{UserID: "u-1", MembershipID: &membershipID}
	err := NewAttendanceRepository(db).Create(a)
	assert.ErrorIs(t, err, ErrForeignKey)
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CheckInTime.IsZero())
}

func TestAttendanceFindLatestForUser(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "membership_id", "check_in_time", "check_out_time", "notes", "created_at", "updated_at"}).
		AddRow("a-1", "u-1", nil, now, nil, nil, now, now)
	mock.ExpectQuery("FROM attendance").
		WithArgs("u-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	a, err := NewAttendanceRepository(db).FindLatestForUserBetween("u-1", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "a-1", a.ID)
	assert.Nil(t, a.MembershipID)
	assert.True(t, a.IsOpen())
}

func TestPostSlugExistsExcludesSelf(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)")).
		WithArgs("rutina-de-fuerza", "p-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := NewPostRepository(db).SlugExists("rutina-de-fuerza", "p-1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipUpdateNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("UPDATE memberships SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewMembershipRepository(db).Update(&models.Membership{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMembershipCountByStatus(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT status, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("active", 3).AddRow("expired", 1))

	counts, err := NewMembershipRepository(db).CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"active": 3, "expired": 1}, counts)
}

func TestTemplateUnsetDefaultsExceptSelf(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("UPDATE notification_templates SET is_default = FALSE").
		WithArgs(sqlmock.AnyArg(), models.NotificationEmail, "t-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, NewTemplateRepository(db).UnsetDefaults(models.NotificationEmail, "t-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
