package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/repositories"
)

// ---- posts ----

type postRepo struct{ d *db }

func (r *postRepo) slugTaken(slug, excludeID string) bool {
	for id, p := range r.d.posts {
		if id != excludeID && p.Slug == slug {
			return true
		}
	}
	return false
}

func (r *postRepo) Create(p *models.Post) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if r.slugTaken(p.Slug, "") {
		return fmt.Errorf("%w: posts_slug_key", repositories.ErrDuplicateKey)
	}
	p.ID = newID(p.ID)
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Tags == nil {
		p.Tags = []string{}
	}
	r.d.posts[p.ID] = *p
	return nil
}

func (r *postRepo) FindByID(id string) (*models.Post, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	p, ok := r.d.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *postRepo) FindBySlug(slug string) (*models.Post, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	for _, p := range r.d.posts {
		if p.Slug == slug {
			found := p
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func postSortKey(p models.Post) time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

func (r *postRepo) FindAll(f models.PostFilters) ([]models.Post, int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	search := strings.ToLower(f.Search)
	list := []models.Post{}
	for _, p := range r.d.posts {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Tag != "" && !hasTag(p.Tags, f.Tag) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Content), search) {
			continue
		}
		list = append(list, p)
	}
	sort.SliceStable(list, func(i, j int) bool { return postSortKey(list[i]).After(postSortKey(list[j])) })
	total := len(list)
	if f.PageSize > 0 {
		start := 0
		if f.Page > 1 {
			start = (f.Page - 1) * f.PageSize
		}
		if start > len(list) {
			start = len(list)
		}
		end := start + f.PageSize
		if end > len(list) {
			end = len(list)
		}
		list = list[start:end]
	}
	return list, total, nil
}

func (r *postRepo) Update(p *models.Post) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.posts[p.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if r.slugTaken(p.Slug, p.ID) {
		return fmt.Errorf("%w: posts_slug_key", repositories.ErrDuplicateKey)
	}
	p.Views = existing.Views
	p.UpdatedAt = time.Now().UTC()
	r.d.posts[p.ID] = *p
	return nil
}

func (r *postRepo) Delete(id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.d.posts, id)
	return nil
}

func (r *postRepo) SlugExists(slug, excludeID string) (bool, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return r.slugTaken(slug, excludeID), nil
}

func (r *postRepo) IncrementViews(id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	p, ok := r.d.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.Views++
	r.d.posts[id] = p
	return nil
}

func (r *postRepo) Tags() ([]string, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	seen := map[string]bool{}
	tags := []string{}
	for _, p := range r.d.posts {
		if p.Status != models.PostStatusPublished {
			continue
		}
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

func (r *postRepo) CountByStatus() (map[string]int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	counts := map[string]int{}
	for _, p := range r.d.posts {
		counts[p.Status]++
	}
	return counts, nil
}

func (r *postRepo) TotalViews() (int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	total := 0
	for _, p := range r.d.posts {
		total += p.Views
	}
	return total, nil
}

func (r *postRepo) TopByViews(limit int) ([]models.Post, error) {
	all, _, _ := r.FindAll(models.PostFilters{})
	sort.SliceStable(all, func(i, j int) bool { return all[i].Views > all[j].Views })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ---- products ----

type productRepo struct{ d *db }

func (r *productRepo) slugTaken(slug, excludeID string) bool {
	for id, p := range r.d.products {
		if id != excludeID && p.Slug == slug {
			return true
		}
	}
	return false
}

func (r *productRepo) Create(p *models.Product) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if r.slugTaken(p.Slug, "") {
		return fmt.Errorf("%w: products_slug_key", repositories.ErrDuplicateKey)
	}
	p.ID = newID(p.ID)
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.d.products[p.ID] = *p
	return nil
}

func (r *productRepo) FindByID(id string) (*models.Product, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	p, ok := r.d.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *productRepo) FindBySlug(slug string) (*models.Product, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	for _, p := range r.d.products {
		if p.Slug == slug {
			found := p
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *productRepo) FindAll(f models.ProductFilters) ([]models.Product, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	search := strings.ToLower(f.Search)
	list := []models.Product{}
	for _, p := range r.d.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Available != nil && p.Available != *f.Available {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		list = append(list, p)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *productRepo) Update(p *models.Product) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.products[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	if r.slugTaken(p.Slug, p.ID) {
		return fmt.Errorf("%w: products_slug_key", repositories.ErrDuplicateKey)
	}
	p.UpdatedAt = time.Now().UTC()
	r.d.products[p.ID] = *p
	return nil
}

func (r *productRepo) Delete(id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.d.products, id)
	return nil
}

func (r *productRepo) SlugExists(slug, excludeID string) (bool, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return r.slugTaken(slug, excludeID), nil
}

// ---- notifications ----

type notificationRepo struct{ d *db }

func (r *notificationRepo) Create(n *models.Notification) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	n.ID = newID(n.ID)
	now := time.Now().UTC()
	n.CreatedAt, n.UpdatedAt = now, now
	r.d.notifications[n.ID] = *n
	return nil
}

func (r *notificationRepo) FindByID(id string) (*models.Notification, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	n, ok := r.d.notifications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &n, nil
}

func ptrEquals(p *string, v string) bool { return p != nil && *p == v }

func (r *notificationRepo) FindAll(f models.NotificationFilters) ([]models.Notification, int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	list := []models.Notification{}
	for _, n := range r.d.notifications {
		if (f.Type != "" && n.Type != f.Type) || (f.Status != "" && n.Status != f.Status) {
			continue
		}
		if (f.UserID != "" && !ptrEquals(n.UserID, f.UserID)) ||
			(f.MembershipID != "" && !ptrEquals(n.MembershipID, f.MembershipID)) {
			continue
		}
		list = append(list, n)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	total := len(list)
	if f.PageSize > 0 {
		start := (max(f.Page, 1) - 1) * f.PageSize
		if start > total {
			start = total
		}
		list = list[start:min(start+f.PageSize, total)]
	}
	return list, total, nil
}

func (r *notificationRepo) UpdateStatus(id, status string, errorMessage *string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	n, ok := r.d.notifications[id]
	if !ok {
		return repositories.ErrNotFound
	}
	n.Status = status
	n.ErrorMessage = errorMessage
	n.UpdatedAt = time.Now().UTC()
	r.d.notifications[id] = n
	return nil
}

// ---- templates ----

type templateRepo struct{ d *db }

func (r *templateRepo) Create(t *models.NotificationTemplate) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	t.ID = newID(t.ID)
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	if t.Variables == nil {
		t.Variables = []string{}
	}
	r.d.templates[t.ID] = *t
	return nil
}

func (r *templateRepo) FindByID(id string) (*models.NotificationTemplate, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	t, ok := r.d.templates[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r *templateRepo) collect(keep func(models.NotificationTemplate) bool, byName bool) []models.NotificationTemplate {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	list := []models.NotificationTemplate{}
	for _, t := range r.d.templates {
		if keep(t) {
			list = append(list, t)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if byName {
			return list[i].Name < list[j].Name
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (r *templateRepo) FindAll(templateType string) ([]models.NotificationTemplate, error) {
	return r.collect(func(t models.NotificationTemplate) bool {
		return templateType == "" || t.Type == templateType
	}, true), nil
}

func (r *templateRepo) FindDefaults(templateType string) ([]models.NotificationTemplate, error) {
	return r.collect(func(t models.NotificationTemplate) bool {
		return t.Type == templateType && t.IsDefault
	}, false), nil
}

func (r *templateRepo) Update(t *models.NotificationTemplate) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.templates[t.ID]; !ok {
		return repositories.ErrNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	r.d.templates[t.ID] = *t
	return nil
}

func (r *templateRepo) Delete(id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.templates[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.d.templates, id)
	return nil
}

func (r *templateRepo) UnsetDefaults(templateType, exceptID string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for id, t := range r.d.templates {
		if t.Type == templateType && t.IsDefault && id != exceptID {
			t.IsDefault = false
			t.UpdatedAt = time.Now().UTC()
			r.d.templates[id] = t
		}
	}
	return nil
}
