package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gym_club_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type notificationRepository struct {
	db SQLExecutor
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db SQLExecutor) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, type, recipient, subject, content, status, error_message, user_id, membership_id, template_id, created_at, updated_at`

func scanNotification(row scanner, extra ...interface{}) (*models.Notification, error) {
	n := &models.Notification{}
	var subject, errMsg, userID, membershipID, templateID sql.NullString
	dest := []interface{}{
		&n.ID, &n.Type, &n.Recipient, &subject, &n.Content, &n.Status, &errMsg,
		&userID, &membershipID, &templateID, &n.CreatedAt, &n.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	n.Subject = stringPtr(subject)
	n.ErrorMessage = stringPtr(errMsg)
	n.UserID = stringPtr(userID)
	n.MembershipID = stringPtr(membershipID)
	n.TemplateID = stringPtr(templateID)
	return n, nil
}

func (r *notificationRepository) Create(n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	n.CreatedAt, n.UpdatedAt = now, now

	_, err := r.db.Exec(`INSERT INTO notifications (`+notificationColumns+`)
	                     VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		n.ID, n.Type, n.Recipient, nullString(n.Subject), n.Content, n.Status, nullString(n.ErrorMessage),
		nullString(n.UserID), nullString(n.MembershipID), nullString(n.TemplateID), n.CreatedAt, n.UpdatedAt,
	)
	return classify(err, "creating notification")
}

func (r *notificationRepository) FindByID(id string) (*models.Notification, error) {
	n, err := scanNotification(r.db.QueryRow(`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, "finding notification "+id)
	}
	return n, nil
}

func (r *notificationRepository) FindAll(filters models.NotificationFilters) ([]models.Notification, int, error) {
	var conditions []string
	var args []interface{}
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("type", filters.Type)
	add("status", filters.Status)
	add("user_id", filters.UserID)
	add("membership_id", filters.MembershipID)

	var qb strings.Builder
	qb.WriteString(`SELECT ` + notificationColumns + `, COUNT(*) OVER() AS total_count FROM notifications`)
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(" ORDER BY created_at DESC")
	if filters.PageSize > 0 {
		args = append(args, filters.PageSize)
		qb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
		if filters.Page > 1 {
			args = append(args, (filters.Page-1)*filters.PageSize)
			qb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
		}
	}

	rows, err := r.db.Query(qb.String(), args...)
	if err != nil {
		return nil, 0, classify(err, "querying notifications")
	}
	defer rows.Close()

	list := []models.Notification{}
	total := 0
	for rows.Next() {
		n, err := scanNotification(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning notification: %v", ErrDatabaseError, err)
		}
		list = append(list, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating notification rows: %v", ErrDatabaseError, err)
	}
	return list, total, nil
}

func (r *notificationRepository) UpdateStatus(id, status string, errorMessage *string) error {
	result, err := r.db.Exec(`UPDATE notifications SET status = $1, error_message = $2, updated_at = $3 WHERE id = $4`,
		status, nullString(errorMessage), time.Now().UTC(), id)
	if err != nil {
		return classify(err, "updating notification status")
	}
	return expectAffected(result, "updating notification "+id)
}

type templateRepository struct {
	db SQLExecutor
}

// NewTemplateRepository creates a new instance of TemplateRepository.
func NewTemplateRepository(db SQLExecutor) TemplateRepository {
	return &templateRepository{db: db}
}

const templateColumns = `id, name, description, type, content, variables, subject, is_default, whatsapp_template_name, created_at, updated_at`

func scanTemplate(row scanner) (*models.NotificationTemplate, error) {
	t := &models.NotificationTemplate{}
	var description, subject, waName sql.NullString
	var variables pq.StringArray
	if err := row.Scan(
		&t.ID, &t.Name, &description, &t.Type, &t.Content, &variables, &subject, &t.IsDefault, &waName,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Description = stringPtr(description)
	t.Subject = stringPtr(subject)
	t.WhatsAppTemplateName = stringPtr(waName)
	t.Variables = []string(variables)
	if t.Variables == nil {
		t.Variables = []string{}
	}
	return t, nil
}

func (r *templateRepository) queryList(action, query string, args ...interface{}) ([]models.NotificationTemplate, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, classify(err, action)
	}
	defer rows.Close()

	list := []models.NotificationTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning template: %v", ErrDatabaseError, err)
		}
		list = append(list, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating template rows: %v", ErrDatabaseError, err)
	}
	return list, nil
}

func (r *templateRepository) Create(t *models.NotificationTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	_, err := r.db.Exec(`INSERT INTO notification_templates (`+templateColumns+`)
	                     VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Name, nullString(t.Description), t.Type, t.Content, pq.Array(t.Variables),
		nullString(t.Subject), t.IsDefault, nullString(t.WhatsAppTemplateName), t.CreatedAt, t.UpdatedAt,
	)
	return classify(err, "creating template")
}

func (r *templateRepository) FindByID(id string) (*models.NotificationTemplate, error) {
	t, err := scanTemplate(r.db.QueryRow(`SELECT `+templateColumns+` FROM notification_templates WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, "finding template "+id)
	}
	return t, nil
}

func (r *templateRepository) FindAll(templateType string) ([]models.NotificationTemplate, error) {
	if templateType == "" {
		return r.queryList("querying templates", `SELECT `+templateColumns+` FROM notification_templates ORDER BY name ASC`)
	}
	return r.queryList("querying templates",
		`SELECT `+templateColumns+` FROM notification_templates WHERE type = $1 ORDER BY name ASC`, templateType)
}

func (r *templateRepository) FindDefaults(templateType string) ([]models.NotificationTemplate, error) {
	return r.queryList("querying default templates",
		`SELECT `+templateColumns+` FROM notification_templates
		 WHERE type = $1 AND is_default = TRUE ORDER BY created_at ASC`, templateType)
}

func (r *templateRepository) Update(t *models.NotificationTemplate) error {
	t.UpdatedAt = time.Now().UTC()
	result, err := r.db.Exec(
		`UPDATE notification_templates SET name = $1, description = $2, type = $3, content = $4, variables = $5,
		        subject = $6, is_default = $7, whatsapp_template_name = $8, updated_at = $9
		 WHERE id = $10`,
		t.Name, nullString(t.Description), t.Type, t.Content, pq.Array(t.Variables), nullString(t.Subject),
		t.IsDefault, nullString(t.WhatsAppTemplateName), t.UpdatedAt, t.ID,
	)
	if err != nil {
		return classify(err, "updating template "+t.ID)
	}
	return expectAffected(result, "updating template "+t.ID)
}

func (r *templateRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM notification_templates WHERE id = $1`, id)
	if err != nil {
		return classify(err, "deleting template "+id)
	}
	return expectAffected(result, "deleting template "+id)
}

func (r *templateRepository) UnsetDefaults(templateType, exceptID string) error {
	var err error
	if exceptID == "" {
		_, err = r.db.Exec(`UPDATE notification_templates SET is_default = FALSE, updated_at = $1
		                    WHERE type = $2 AND is_default = TRUE`, time.Now().UTC(), templateType)
	} else {
		_, err = r.db.Exec(`UPDATE notification_templates SET is_default = FALSE, updated_at = $1
		                    WHERE type = $2 AND is_default = TRUE AND id <> $3`, time.Now().UTC(), templateType, exceptID)
	}
	return classify(err, "unsetting default templates")
}
