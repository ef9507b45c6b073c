package services

import (
	"errors"
	"strings"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/repositories"
)

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"min=0"`
	Image       *string `json:"image"`
	Category    string  `json:"category" binding:"required,oneof=supplements equipment clothing accessories"`
	Available   *bool   `json:"available"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
	Image       *string  `json:"image"`
	Category    *string  `json:"category" binding:"omitempty,oneof=supplements equipment clothing accessories"`
	Available   *bool    `json:"available"`
}

type ProductService interface {
	Create(req CreateProductRequest) (*models.Product, error)
	FindAll(filters models.ProductFilters) ([]models.Product, error)
	FindOne(id string) (*models.Product, error)
	FindBySlug(slug string) (*models.Product, error)
	Update(id string, req UpdateProductRequest) (*models.Product, error)
	Remove(id string) error
	ToggleAvailability(id string) (*models.Product, error)
	Categories() []string
}

type productService struct {
	products repositories.ProductRepository
	now      Clock
}

// NewProductService creates a new instance of ProductService.
func NewProductService(products repositories.ProductRepository, now Clock) ProductService {
	if now == nil {
		now = systemClock
	}
	return &productService{products: products, now: now}
}

func (s *productService) Create(req CreateProductRequest) (*models.Product, error) {
	slug, err := uniqueSlug(req.Name, "producto", "", s.products.SlugExists, s.now)
	if err != nil {
		return nil, upstream(err, "Error al generar el slug")
	}

	p := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Category:    req.Category,
		Available:   true,
	}
	if req.Available != nil {
		p.Available = *req.Available
	}
	if err := s.products.Create(p); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, newError(ErrConflict, "Ya existe un producto con ese slug")
		}
		return nil, upstream(err, "Error al crear el producto")
	}
	return p, nil
}

func (s *productService) FindAll(filters models.ProductFilters) ([]models.Product, error) {
	if filters.Category != "" && !isCategory(filters.Category) {
		return nil, newError(ErrValidation, "Categoría inválida")
	}
	list, err := s.products.FindAll(filters)
	if err != nil {
		return nil, upstream(err, "Error al obtener los productos")
	}
	return list, nil
}

func isCategory(c string) bool {
	for _, known := range models.ProductCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (s *productService) FindOne(id string) (*models.Product, error) {
	p, err := s.products.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Producto no encontrado", "Error al obtener el producto")
	}
	return p, nil
}

func (s *productService) FindBySlug(slug string) (*models.Product, error) {
	p, err := s.products.FindBySlug(slug)
	if err != nil {
		return nil, notFoundOr(err, "Producto no encontrado", "Error al obtener el producto")
	}
	return p, nil
}

func (s *productService) Update(id string, req UpdateProductRequest) (*models.Product, error) {
	p, err := s.FindOne(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != p.Name {
			slug, err := uniqueSlug(name, "producto", p.ID, s.products.SlugExists, s.now)
			if err != nil {
				return nil, upstream(err, "Error al generar el slug")
			}
			p.Name, p.Slug = name, slug
		}
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Image != nil {
		p.Image = req.Image
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Available != nil {
		p.Available = *req.Available
	}

	if err := s.products.Update(p); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, newError(ErrConflict, "Ya existe un producto con ese slug")
		}
		return nil, notFoundOr(err, "Producto no encontrado", "Error al actualizar el producto")
	}
	return p, nil
}

func (s *productService) Remove(id string) error {
	if err := s.products.Delete(id); err != nil {
		return notFoundOr(err, "Producto no encontrado", "Error al eliminar el producto")
	}
	return nil
}

func (s *productService) ToggleAvailability(id string) (*models.Product, error) {
	p, err := s.FindOne(id)
	if err != nil {
		return nil, err
	}
	available := !p.Available
	return s.Update(id, UpdateProductRequest{Available: &available})
}

func (s *productService) Categories() []string {
	out := make([]string, len(models.ProductCategories))
	copy(out, models.ProductCategories)
	return out
}
