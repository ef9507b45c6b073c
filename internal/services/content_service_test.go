package services

import (
	"testing"
	"time"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contentNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func TestUniqueSlugAppendsTimestamp(t *testing.T) {
	taken := map[string]string{"rutina-de-fuerza": "p-1"}
	exists := func(slug, excludeID string) (bool, error) {
		id, ok := taken[slug]
		return ok && id != excludeID, nil
	}

	slug, err := uniqueSlug("Rutina de Fuerza", "post", "", exists, fixedClock(contentNow))
	require.NoError(t, err)
	assert.Equal(t, "rutina-de-fuerza-1742032800000", slug)

	slug, err = uniqueSlug("Rutina de Fuerza", "post", "p-1", exists, fixedClock(contentNow))
	require.NoError(t, err)
	assert.Equal(t, "rutina-de-fuerza", slug)

	slug, err = uniqueSlug("¡¡!!", "producto", "", exists, fixedClock(contentNow))
	require.NoError(t, err)
	assert.Equal(t, "producto", slug)
}

func TestBlogLifecycle(t *testing.T) {
	svc := NewBlogService(memory.NewStore().Posts, fixedClock(contentNow))
	author := &models.Principal{UserID: "admin-1", IsAdmin: true}

	_, err := svc.Create(nil, CreatePostRequest{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	first, err := svc.Create(author, CreatePostRequest{Title: "Nutrición deportiva", Content: "...", Tags: []string{" Salud", "salud", "Dieta"}})
	require.NoError(t, err)
	assert.Equal(t, "nutricion-deportiva", first.Slug)
	assert.Equal(t, models.PostStatusDraft, first.Status)
	assert.Nil(t, first.PublishedAt)
	assert.Equal(t, []string{"salud", "dieta"}, first.Tags)

	second, err := svc.Create(author, CreatePostRequest{Title: "Nutrición Deportiva", Content: "..."})
	require.NoError(t, err)
	assert.Equal(t, "nutricion-deportiva-1742032800000", second.Slug)

	published, err := svc.Publish(first.ID)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	assert.True(t, published.PublishedAt.Equal(contentNow))

	content := "nuevo contenido"
	same := "Nutrición deportiva"
	updated, err := svc.Update(first.ID, UpdatePostRequest{Title: &same, Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "nutricion-deportiva", updated.Slug)

	viewed, err := svc.FindBySlug("nutricion-deportiva")
	require.NoError(t, err)
	assert.Equal(t, 1, viewed.Views)
	viewed, err = svc.FindBySlug("nutricion-deportiva")
	require.NoError(t, err)
	assert.Equal(t, 2, viewed.Views)

	page, err := svc.FindByTag("SALUD", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 10, page.PageSize)

	draft, err := svc.Unpublish(first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusDraft, draft.Status)
	assert.Nil(t, draft.PublishedAt)

	page, err = svc.FindByTag("salud", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)

	other, err := svc.Create(author, CreatePostRequest{Title: "Rutina de piernas", Content: "..."})
	require.NoError(t, err)
	clash := "Nutrición deportiva"
	renamed, err := svc.Update(other.ID, UpdatePostRequest{Title: &clash})
	require.NoError(t, err)
	assert.Equal(t, "nutricion-deportiva-1742032800001", renamed.Slug)

	require.NoError(t, svc.Remove(second.ID))
	_, err = svc.FindOne(second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductCatalog(t *testing.T) {
	svc := NewProductService(memory.NewStore().Products, fixedClock(contentNow))

	p, err := svc.Create(CreateProductRequest{Name: "Proteína Whey", Price: 35, Category: models.CategorySupplements})
	require.NoError(t, err)
	assert.Equal(t, "proteina-whey", p.Slug)
	assert.True(t, p.Available)

	toggled, err := svc.ToggleAvailability(p.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Available)

	name := "Proteína Whey 2kg"
	renamed, err := svc.Update(p.ID, UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "proteina-whey-2kg", renamed.Slug)

	bySlug, err := svc.FindBySlug("proteina-whey-2kg")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySlug.ID)

	_, err = svc.FindAll(models.ProductFilters{Category: "juguetes"})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, models.ProductCategories, svc.Categories())
	_, err = svc.FindOne("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
