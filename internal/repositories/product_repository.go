package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gym_club_backend/internal/models"

	"github.com/google/uuid"
)

type productRepository struct {
	db SQLExecutor
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db SQLExecutor) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, slug, description, price, image, category, available, created_at, updated_at`

func scanProduct(row scanner) (*models.Product, error) {
	p := &models.Product{}
	var image sql.NullString
	if err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &image, &p.Category, &p.Available,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Image = stringPtr(image)
	return p, nil
}

func (r *productRepository) Create(p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := r.db.Exec(`INSERT INTO products (`+productColumns+`)
	                     VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Name, p.Slug, p.Description, p.Price, nullString(p.Image), p.Category, p.Available,
		p.CreatedAt, p.UpdatedAt,
	)
	return classify(err, "creating product")
}

func (r *productRepository) FindByID(id string) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, "finding product "+id)
	}
	return p, nil
}

func (r *productRepository) FindBySlug(slug string) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE slug = $1`, slug))
	if err != nil {
		return nil, classify(err, "finding product by slug")
	}
	return p, nil
}

func (r *productRepository) FindAll(filters models.ProductFilters) ([]models.Product, error) {
	var conditions []string
	var args []interface{}
	if filters.Category != "" {
		args = append(args, filters.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filters.Available != nil {
		args = append(args, *filters.Available)
		conditions = append(conditions, fmt.Sprintf("available = $%d", len(args)))
	}
	if filters.Search != "" {
		args = append(args, "%"+strings.ToLower(filters.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}

	var qb strings.Builder
	qb.WriteString(`SELECT ` + productColumns + ` FROM products`)
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(" ORDER BY name ASC")

	rows, err := r.db.Query(qb.String(), args...)
	if err != nil {
		return nil, classify(err, "querying products")
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating product rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *productRepository) Update(p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()
	result, err := r.db.Exec(
		`UPDATE products SET name = $1, slug = $2, description = $3, price = $4, image = $5,
		        category = $6, available = $7, updated_at = $8
		 WHERE id = $9`,
		p.Name, p.Slug, p.Description, p.Price, nullString(p.Image), p.Category, p.Available, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return classify(err, "updating product "+p.ID)
	}
	return expectAffected(result, "updating product "+p.ID)
}

func (r *productRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return classify(err, "deleting product "+id)
	}
	return expectAffected(result, "deleting product "+id)
}

func (r *productRepository) SlugExists(slug, excludeID string) (bool, error) {
	var exists bool
	var err error
	if excludeID == "" {
		err = r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1)`, slug).Scan(&exists)
	} else {
		err = r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1 AND id <> $2)`, slug, excludeID).Scan(&exists)
	}
	if err != nil {
		return false, classify(err, "checking product slug")
	}
	return exists, nil
}
