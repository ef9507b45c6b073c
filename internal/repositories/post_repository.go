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

type postRepository struct {
	db SQLExecutor
}

// NewPostRepository creates a new instance of PostRepository.
func NewPostRepository(db SQLExecutor) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, author_id, title, slug, content, excerpt, featured_image, tags, status, published_at, views, created_at, updated_at`

// scanPost reads postColumns followed by any extra destinations.
func scanPost(row scanner, extra ...interface{}) (*models.Post, error) {
	p := &models.Post{}
	var authorID, excerpt, image sql.NullString
	var publishedAt sql.NullTime
	var tags pq.StringArray
	dest := []interface{}{
		&p.ID, &authorID, &p.Title, &p.Slug, &p.Content, &excerpt, &image, &tags,
		&p.Status, &publishedAt, &p.Views, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	p.AuthorID = authorID.String
	p.Excerpt = stringPtr(excerpt)
	p.FeaturedImage = stringPtr(image)
	p.Tags = []string(tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	return p, nil
}

func (r *postRepository) queryList(action, query string, args ...interface{}) ([]models.Post, int, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, classify(err, action)
	}
	defer rows.Close()

	posts := []models.Post{}
	total := 0
	for rows.Next() {
		p, err := scanPost(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning post: %v", ErrDatabaseError, err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating post rows: %v", ErrDatabaseError, err)
	}
	return posts, total, nil
}

func (r *postRepository) Create(p *models.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	query := `INSERT INTO posts (` + postColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.Exec(query,
		p.ID, nullString(nilIfEmpty(p.AuthorID)), p.Title, p.Slug, p.Content, nullString(p.Excerpt),
		nullString(p.FeaturedImage), pq.Array(p.Tags), p.Status, nullTime(p.PublishedAt), p.Views,
		p.CreatedAt, p.UpdatedAt,
	)
	return classify(err, "creating post")
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *postRepository) FindByID(id string) (*models.Post, error) {
	p, err := scanPost(r.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, "finding post "+id)
	}
	return p, nil
}

func (r *postRepository) FindBySlug(slug string) (*models.Post, error) {
	p, err := scanPost(r.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug))
	if err != nil {
		return nil, classify(err, "finding post by slug")
	}
	return p, nil
}

func (r *postRepository) FindAll(filters models.PostFilters) ([]models.Post, int, error) {
	var conditions []string
	var args []interface{}

	if filters.Status != "" {
		args = append(args, filters.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filters.Tag != "" {
		args = append(args, filters.Tag)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}
	if filters.Search != "" {
		args = append(args, "%"+strings.ToLower(filters.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(content) LIKE $%d)", len(args), len(args)))
	}

	var qb strings.Builder
	qb.WriteString(`SELECT ` + postColumns + `, COUNT(*) OVER() AS total_count FROM posts`)
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(" ORDER BY COALESCE(published_at, created_at) DESC")
	if filters.PageSize > 0 {
		args = append(args, filters.PageSize)
		qb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
		if filters.Page > 1 {
			args = append(args, (filters.Page-1)*filters.PageSize)
			qb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
		}
	}
	return r.queryList("querying posts", qb.String(), args...)
}

func (r *postRepository) Update(p *models.Post) error {
	p.UpdatedAt = time.Now().UTC()
	result, err := r.db.Exec(
		`UPDATE posts SET title = $1, slug = $2, content = $3, excerpt = $4, featured_image = $5,
		        tags = $6, status = $7, published_at = $8, updated_at = $9
		 WHERE id = $10`,
		p.Title, p.Slug, p.Content, nullString(p.Excerpt), nullString(p.FeaturedImage),
		pq.Array(p.Tags), p.Status, nullTime(p.PublishedAt), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return classify(err, "updating post "+p.ID)
	}
	return expectAffected(result, "updating post "+p.ID)
}

func (r *postRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return classify(err, "deleting post "+id)
	}
	return expectAffected(result, "deleting post "+id)
}

func (r *postRepository) SlugExists(slug, excludeID string) (bool, error) {
	var exists bool
	var err error
	if excludeID == "" {
		err = r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	} else {
		err = r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, slug, excludeID).Scan(&exists)
	}
	if err != nil {
		return false, classify(err, "checking post slug")
	}
	return exists, nil
}

func (r *postRepository) IncrementViews(id string) error {
	_, err := r.db.Exec(`UPDATE posts SET views = views + 1 WHERE id = $1`, id)
	return classify(err, "incrementing post views")
}

func (r *postRepository) Tags() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT UNNEST(tags) AS tag FROM posts WHERE status = 'published' ORDER BY tag`)
	if err != nil {
		return nil, classify(err, "querying tags")
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("%w: scanning tag: %v", ErrDatabaseError, err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *postRepository) CountByStatus() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM posts GROUP BY status`)
	if err != nil {
		return nil, classify(err, "grouping posts by status")
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("%w: scanning post count: %v", ErrDatabaseError, err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *postRepository) TotalViews() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COALESCE(SUM(views), 0) FROM posts`).Scan(&n); err != nil {
		return 0, classify(err, "summing post views")
	}
	return n, nil
}

func (r *postRepository) TopByViews(limit int) ([]models.Post, error) {
	posts, _, err := r.queryList("querying top posts",
		`SELECT `+postColumns+`, 0 AS total_count FROM posts ORDER BY views DESC, created_at DESC LIMIT $1`, limit)
	return posts, err
}
