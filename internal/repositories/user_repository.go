package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gym_club_backend/internal/models"

	"github.com/google/uuid"
)

type userRepository struct {
	db SQLExecutor
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db SQLExecutor) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password, first_name, last_name, phone, is_admin, role, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var phone sql.NullString
	if err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&phone, &user.IsAdmin, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.Phone = stringPtr(phone)
	return user, nil
}

// Create inserts the user, assigning a new id and timestamps.
func (r *userRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	query := `INSERT INTO users (` + userColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		nullString(user.Phone), user.IsAdmin, user.Role, user.CreatedAt, user.UpdatedAt,
	)
	return classify(err, "creating user")
}

func (r *userRepository) FindByID(id string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, fmt.Sprintf("finding user by ID %s", id))
	}
	return user, nil
}

func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, classify(err, "finding user by email")
	}
	return user, nil
}

func (r *userRepository) FindAll() ([]models.User, error) {
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, classify(err, "querying users")
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, nil
}

func (r *userRepository) Update(user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	query := `UPDATE users SET
	            email = $1, password = $2, first_name = $3, last_name = $4, phone = $5,
	            is_admin = $6, role = $7, updated_at = $8
	          WHERE id = $9`
	result, err := r.db.Exec(query,
		strings.ToLower(strings.TrimSpace(user.Email)), user.PasswordHash, user.FirstName, user.LastName,
		nullString(user.Phone), user.IsAdmin, user.Role, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return classify(err, "updating user "+user.ID)
	}
	return expectAffected(result, "updating user "+user.ID)
}

func (r *userRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return classify(err, "deleting user "+id)
	}
	return expectAffected(result, "deleting user "+id)
}

func (r *userRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, classify(err, "counting users")
	}
	return n, nil
}

func (r *userRepository) CountCreatedBetween(start, end time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE created_at >= $1 AND created_at < $2`, start, end).Scan(&n)
	if err != nil {
		return 0, classify(err, "counting new users")
	}
	return n, nil
}
