package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gym_club_backend/internal/models"

	"github.com/google/uuid"
)

type membershipRepository struct {
	db SQLExecutor
}

// NewMembershipRepository creates a new instance of MembershipRepository.
func NewMembershipRepository(db SQLExecutor) MembershipRepository {
	return &membershipRepository{db: db}
}

const membershipColumns = `id, user_id, type, status, start_date, end_date, days_per_week, price, auto_renew, created_at, updated_at`

func scanMembership(row scanner) (*models.Membership, error) {
	m := &models.Membership{}
	var daysPerWeek sql.NullInt64
	if err := row.Scan(
		&m.ID, &m.UserID, &m.Type, &m.Status, &m.StartDate, &m.EndDate,
		&daysPerWeek, &m.Price, &m.AutoRenew, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if daysPerWeek.Valid {
		d := int(daysPerWeek.Int64)
		m.DaysPerWeek = &d
	}
	return m, nil
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func (r *membershipRepository) queryList(action, query string, args ...interface{}) ([]models.Membership, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, classify(err, action)
	}
	defer rows.Close()

	list := []models.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning membership: %v", ErrDatabaseError, err)
		}
		list = append(list, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating membership rows: %v", ErrDatabaseError, err)
	}
	return list, nil
}

func (r *membershipRepository) queryOne(action, query string, args ...interface{}) (*models.Membership, error) {
	m, err := scanMembership(r.db.QueryRow(query, args...))
	if err != nil {
		return nil, classify(err, action)
	}
	return m, nil
}

func (r *membershipRepository) Create(m *models.Membership) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now

	query := `INSERT INTO memberships (` + membershipColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(query,
		m.ID, m.UserID, m.Type, m.Status, m.StartDate, m.EndDate,
		nullInt(m.DaysPerWeek), m.Price, m.AutoRenew, m.CreatedAt, m.UpdatedAt,
	)
	return classify(err, "creating membership")
}

func (r *membershipRepository) FindByID(id string) (*models.Membership, error) {
	return r.queryOne("finding membership "+id, `SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, id)
}

func (r *membershipRepository) FindAll(filters models.MembershipFilters) ([]models.Membership, error) {
	var conditions []string
	var args []interface{}
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("user_id", filters.UserID)
	add("status", filters.Status)
	add("type", filters.Type)

	var qb strings.Builder
	qb.WriteString(`SELECT ` + membershipColumns + ` FROM memberships`)
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(" ORDER BY created_at DESC")
	return r.queryList("querying memberships", qb.String(), args...)
}

func (r *membershipRepository) FindByUser(userID string) ([]models.Membership, error) {
	return r.queryList("querying memberships by user",
		`SELECT `+membershipColumns+` FROM memberships WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *membershipRepository) FindActiveByUser(userID string) (*models.Membership, error) {
	return r.queryOne("finding active membership",
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE user_id = $1 AND status = 'active'
		 ORDER BY end_date DESC LIMIT 1`, userID)
}

func (r *membershipRepository) FindFirstByUser(userID string) (*models.Membership, error) {
	return r.queryOne("finding first membership",
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE user_id = $1 ORDER BY created_at ASC LIMIT 1`, userID)
}

func (r *membershipRepository) Update(m *models.Membership) error {
	m.UpdatedAt = time.Now().UTC()
	query := `UPDATE memberships SET
	            type = $1, status = $2, start_date = $3, end_date = $4, days_per_week = $5,
	            price = $6, auto_renew = $7, updated_at = $8
	          WHERE id = $9`
	result, err := r.db.Exec(query,
		m.Type, m.Status, m.StartDate, m.EndDate, nullInt(m.DaysPerWeek),
		m.Price, m.AutoRenew, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return classify(err, "updating membership "+m.ID)
	}
	return expectAffected(result, "updating membership "+m.ID)
}

func (r *membershipRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return classify(err, "deleting membership "+id)
	}
	return expectAffected(result, "deleting membership "+id)
}

func (r *membershipRepository) FindActiveEndingBefore(day time.Time) ([]models.Membership, error) {
	return r.queryList("querying overdue memberships",
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE status = 'active' AND end_date < $1 ORDER BY end_date ASC`, day)
}

func (r *membershipRepository) FindActiveEndingBetween(start, end time.Time) ([]models.Membership, error) {
	return r.queryList("querying expiring memberships",
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE status = 'active' AND end_date >= $1 AND end_date <= $2 ORDER BY end_date ASC`, start, end)
}

func (r *membershipRepository) FindExpiredAutoRenew() ([]models.Membership, error) {
	return r.queryList("querying auto-renew memberships",
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE status = 'expired' AND auto_renew = TRUE ORDER BY end_date ASC`)
}

func (r *membershipRepository) countGrouped(column string) (map[string]int, error) {
	// column is one of the fixed identifiers passed by this file
	rows, err := r.db.Query(`SELECT ` + column + `, COUNT(*) FROM memberships GROUP BY ` + column)
	if err != nil {
		return nil, classify(err, "grouping memberships by "+column)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("%w: scanning membership count: %v", ErrDatabaseError, err)
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

func (r *membershipRepository) CountByStatus() (map[string]int, error) { return r.countGrouped("status") }

func (r *membershipRepository) CountByType() (map[string]int, error) { return r.countGrouped("type") }

func (r *membershipRepository) SumPriceStartedBetween(start, end time.Time) (float64, error) {
	var total float64
	err := r.db.QueryRow(`SELECT COALESCE(SUM(price), 0) FROM memberships WHERE start_date >= $1 AND start_date < $2`,
		start, end).Scan(&total)
	if err != nil {
		return 0, classify(err, "summing membership revenue")
	}
	return total, nil
}
