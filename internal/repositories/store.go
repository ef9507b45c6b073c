package repositories

import "database/sql"

// NewPostgresStore wires every repository to the same connection pool.
func NewPostgresStore(db *sql.DB) *Store {
	return &Store{
		Users:         NewUserRepository(db),
		Memberships:   NewMembershipRepository(db),
		Attendance:    NewAttendanceRepository(db),
		Posts:         NewPostRepository(db),
		Products:      NewProductRepository(db),
		Notifications: NewNotificationRepository(db),
		Templates:     NewTemplateRepository(db),
	}
}
