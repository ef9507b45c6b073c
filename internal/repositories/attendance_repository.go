package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"gym_club_backend/internal/models"

	"github.com/google/uuid"
)

type attendanceRepository struct {
	db SQLExecutor
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db SQLExecutor) AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `id, user_id, membership_id, check_in_time, check_out_time, notes, created_at, updated_at`

func scanAttendance(row scanner) (*models.Attendance, error) {
	a := &models.Attendance{}
	var membershipID, notes sql.NullString
	var checkOut sql.NullTime
	if err := row.Scan(
		&a.ID, &a.UserID, &membershipID, &a.CheckInTime, &checkOut, &notes, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.MembershipID = stringPtr(membershipID)
	a.Notes = stringPtr(notes)
	if checkOut.Valid {
		t := checkOut.Time
		a.CheckOutTime = &t
	}
	return a, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (r *attendanceRepository) queryList(action, query string, args ...interface{}) ([]models.Attendance, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, classify(err, action)
	}
	defer rows.Close()

	list := []models.Attendance{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning attendance: %v", ErrDatabaseError, err)
		}
		list = append(list, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating attendance rows: %v", ErrDatabaseError, err)
	}
	return list, nil
}

// Create inserts the row as given. A membership_id the database rejects is
// reported as ErrForeignKey, or ErrInvalidID when it is not a UUID, so the
// caller can decide whether to drop it.
func (r *attendanceRepository) Create(a *models.Attendance) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	if a.CheckInTime.IsZero() {
		a.CheckInTime = now
	}

	query := `INSERT INTO attendance (` + attendanceColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(query,
		a.ID, a.UserID, nullString(a.MembershipID), a.CheckInTime, nullTime(a.CheckOutTime),
		nullString(a.Notes), a.CreatedAt, a.UpdatedAt,
	)
	return classify(err, "creating attendance")
}

func (r *attendanceRepository) FindByID(id string) (*models.Attendance, error) {
	a, err := scanAttendance(r.db.QueryRow(`SELECT `+attendanceColumns+` FROM attendance WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, "finding attendance "+id)
	}
	return a, nil
}

func (r *attendanceRepository) FindAll(limit int) ([]models.Attendance, error) {
	return r.queryList("querying attendance",
		`SELECT `+attendanceColumns+` FROM attendance ORDER BY check_in_time DESC LIMIT $1`, limit)
}

func (r *attendanceRepository) FindByUser(userID string, limit int) ([]models.Attendance, error) {
	return r.queryList("querying attendance by user",
		`SELECT `+attendanceColumns+` FROM attendance WHERE user_id = $1 ORDER BY check_in_time DESC LIMIT $2`,
		userID, limit)
}

func (r *attendanceRepository) FindByDateRange(start, end time.Time) ([]models.Attendance, error) {
	return r.queryList("querying attendance by date range",
		`SELECT `+attendanceColumns+` FROM attendance
		 WHERE check_in_time >= $1 AND check_in_time < $2 ORDER BY check_in_time ASC`, start, end)
}

func (r *attendanceRepository) FindLatestForUserBetween(userID string, start, end time.Time) (*models.Attendance, error) {
	a, err := scanAttendance(r.db.QueryRow(
		`SELECT `+attendanceColumns+` FROM attendance
		 WHERE user_id = $1 AND check_in_time >= $2 AND check_in_time < $3
		 ORDER BY check_in_time DESC LIMIT 1`, userID, start, end))
	if err != nil {
		return nil, classify(err, "finding latest attendance")
	}
	return a, nil
}

func (r *attendanceRepository) Update(a *models.Attendance) error {
	a.UpdatedAt = time.Now().UTC()
	result, err := r.db.Exec(
		`UPDATE attendance SET membership_id = $1, check_in_time = $2, check_out_time = $3, notes = $4, updated_at = $5
		 WHERE id = $6`,
		nullString(a.MembershipID), a.CheckInTime, nullTime(a.CheckOutTime), nullString(a.Notes), a.UpdatedAt, a.ID,
	)
	if err != nil {
		return classify(err, "updating attendance "+a.ID)
	}
	return expectAffected(result, "updating attendance "+a.ID)
}

func (r *attendanceRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return classify(err, "deleting attendance "+id)
	}
	return expectAffected(result, "deleting attendance "+id)
}

func (r *attendanceRepository) CountBetween(start, end time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM attendance WHERE check_in_time >= $1 AND check_in_time < $2`,
		start, end).Scan(&n)
	if err != nil {
		return 0, classify(err, "counting attendance")
	}
	return n, nil
}

func (r *attendanceRepository) CheckInTimesBetween(start, end time.Time) ([]time.Time, error) {
	rows, err := r.db.Query(`SELECT check_in_time FROM attendance WHERE check_in_time >= $1 AND check_in_time < $2`,
		start, end)
	if err != nil {
		return nil, classify(err, "querying check-in times")
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("%w: scanning check-in time: %v", ErrDatabaseError, err)
		}
		times = append(times, t)
	}
	return times, rows.Err()
}
