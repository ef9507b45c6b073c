package services

import (
	"errors"
	"strings"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/repositories"
)

// --- Data Transfer Objects (DTOs) ---

type CreatePostRequest struct {
	Title         string   `json:"title" binding:"required"`
	Content       string   `json:"content" binding:"required"`
	Excerpt       *string  `json:"excerpt"`
	FeaturedImage *string  `json:"featured_image"`
	Tags          []string `json:"tags"`
	Status        string   `json:"status" binding:"omitempty,oneof=draft published archived"`
}

type UpdatePostRequest struct {
	Title         *string  `json:"title"`
	Content       *string  `json:"content"`
	Excerpt       *string  `json:"excerpt"`
	FeaturedImage *string  `json:"featured_image"`
	Tags          []string `json:"tags"`
	Status        *string  `json:"status" binding:"omitempty,oneof=draft published archived"`
}

// PostPage is one page of FindAll results.
type PostPage struct {
	Posts    []models.Post `json:"posts"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

type BlogService interface {
	Create(principal *models.Principal, req CreatePostRequest) (*models.Post, error)
	FindAll(filters models.PostFilters) (*PostPage, error)
	FindOne(id string) (*models.Post, error)
	// FindBySlug counts a view on every successful lookup.
	FindBySlug(slug string) (*models.Post, error)
	FindByTag(tag string, page, pageSize int) (*PostPage, error)
	Tags() ([]string, error)
	Update(id string, req UpdatePostRequest) (*models.Post, error)
	Remove(id string) error
	Publish(id string) (*models.Post, error)
	Unpublish(id string) (*models.Post, error)
}

type blogService struct {
	posts repositories.PostRepository
	now   Clock
}

// NewBlogService creates a new instance of BlogService.
func NewBlogService(posts repositories.PostRepository, now Clock) BlogService {
	if now == nil {
		now = systemClock
	}
	return &blogService{posts: posts, now: now}
}

func cleanTags(tags []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// setStatus keeps published_at in step with the status column.
func (s *blogService) setStatus(p *models.Post, status string) {
	p.Status = status
	if status == models.PostStatusPublished {
		if p.PublishedAt == nil {
			now := s.now()
			p.PublishedAt = &now
		}
		return
	}
	p.PublishedAt = nil
}

func (s *blogService) Create(principal *models.Principal, req CreatePostRequest) (*models.Post, error) {
	if principal == nil {
		return nil, ErrInvalidToken
	}
	slug, err := uniqueSlug(req.Title, "post", "", s.posts.SlugExists, s.now)
	if err != nil {
		return nil, upstream(err, "Error al generar el slug")
	}

	p := &models.Post{
		AuthorID:      principal.UserID,
		Title:         strings.TrimSpace(req.Title),
		Slug:          slug,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Tags:          cleanTags(req.Tags),
	}
	status := req.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	s.setStatus(p, status)

	if err := s.posts.Create(p); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, newError(ErrConflict, "Ya existe una publicación con ese slug")
		}
		return nil, upstream(err, "Error al crear la publicación")
	}
	return p, nil
}

func (s *blogService) FindAll(filters models.PostFilters) (*PostPage, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 10
	}
	if filters.Tag != "" {
		filters.Tag = strings.ToLower(strings.TrimSpace(filters.Tag))
	}
	posts, total, err := s.posts.FindAll(filters)
	if err != nil {
		return nil, upstream(err, "Error al obtener las publicaciones")
	}
	return &PostPage{Posts: posts, Total: total, Page: filters.Page, PageSize: filters.PageSize}, nil
}

func (s *blogService) FindOne(id string) (*models.Post, error) {
	p, err := s.posts.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Publicación no encontrada", "Error al obtener la publicación")
	}
	return p, nil
}

func (s *blogService) FindBySlug(slug string) (*models.Post, error) {
	p, err := s.posts.FindBySlug(slug)
	if err != nil {
		return nil, notFoundOr(err, "Publicación no encontrada", "Error al obtener la publicación")
	}
	if err := s.posts.IncrementViews(p.ID); err != nil {
		return nil, upstream(err, "Error al registrar la visita")
	}
	p.Views++
	return p, nil
}

func (s *blogService) FindByTag(tag string, page, pageSize int) (*PostPage, error) {
	return s.FindAll(models.PostFilters{Tag: tag, Status: models.PostStatusPublished, Page: page, PageSize: pageSize})
}

func (s *blogService) Tags() ([]string, error) {
	tags, err := s.posts.Tags()
	if err != nil {
		return nil, upstream(err, "Error al obtener las etiquetas")
	}
	return tags, nil
}

// Update re-slugs only when the title actually changes.
func (s *blogService) Update(id string, req UpdatePostRequest) (*models.Post, error) {
	p, err := s.FindOne(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title != p.Title {
			slug, err := uniqueSlug(title, "post", p.ID, s.posts.SlugExists, s.now)
			if err != nil {
				return nil, upstream(err, "Error al generar el slug")
			}
			p.Title, p.Slug = title, slug
		}
	}
	if req.Content != nil {
		p.Content = *req.Content
	}
	if req.Excerpt != nil {
		p.Excerpt = req.Excerpt
	}
	if req.FeaturedImage != nil {
		p.FeaturedImage = req.FeaturedImage
	}
	if req.Tags != nil {
		p.Tags = cleanTags(req.Tags)
	}
	if req.Status != nil && *req.Status != p.Status {
		s.setStatus(p, *req.Status)
	}

	if err := s.posts.Update(p); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, newError(ErrConflict, "Ya existe una publicación con ese slug")
		}
		return nil, notFoundOr(err, "Publicación no encontrada", "Error al actualizar la publicación")
	}
	return p, nil
}

func (s *blogService) Remove(id string) error {
	if err := s.posts.Delete(id); err != nil {
		return notFoundOr(err, "Publicación no encontrada", "Error al eliminar la publicación")
	}
	return nil
}

func (s *blogService) Publish(id string) (*models.Post, error) {
	status := models.PostStatusPublished
	return s.Update(id, UpdatePostRequest{Status: &status})
}

func (s *blogService) Unpublish(id string) (*models.Post, error) {
	status := models.PostStatusDraft
	return s.Update(id, UpdatePostRequest{Status: &status})
}
