package handlers

import (
	"net/http"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type BlogHandler struct {
	blogService services.BlogService
}

func NewBlogHandler(bs services.BlogService) *BlogHandler {
	return &BlogHandler{blogService: bs}
}

func (h *BlogHandler) CreatePost(c *gin.Context) {
	var req services.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.blogService.Create(principal(c), req)
	if err != nil {
		respondError(c, err, "CreatePost: error from blogService.Create")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetPosts is public. Anonymous and non-admin callers only see published posts.
func (h *BlogHandler) GetPosts(c *gin.Context) {
	filters := models.PostFilters{
		Status:   c.Query("status"),
		Tag:      c.Query("tag"),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 10),
	}
	if p := principal(c); p == nil || !p.IsAdmin {
		filters.Status = models.PostStatusPublished
	}

	page, err := h.blogService.FindAll(filters)
	if err != nil {
		respondError(c, err, "GetPosts: error from blogService.FindAll")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *BlogHandler) GetPostByID(c *gin.Context) {
	post, err := h.blogService.FindOne(c.Param("id"))
	if err != nil {
		respondError(c, err, "GetPostByID: error from blogService.FindOne")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandler) GetPostBySlug(c *gin.Context) {
	post, err := h.blogService.FindBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err, "GetPostBySlug: error from blogService.FindBySlug")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandler) GetTags(c *gin.Context) {
	tags, err := h.blogService.Tags()
	if err != nil {
		respondError(c, err, "GetTags: error from blogService.Tags")
		return
	}
	if tags == nil {
		tags = []string{}
	}
	c.JSON(http.StatusOK, tags)
}

func (h *BlogHandler) GetPostsByTag(c *gin.Context) {
	page, err := h.blogService.FindByTag(c.Param("tag"), queryInt(c, "page", 1), queryInt(c, "page_size", 10))
	if err != nil {
		respondError(c, err, "GetPostsByTag: error from blogService.FindByTag")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *BlogHandler) UpdatePost(c *gin.Context) {
	var req services.UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.blogService.Update(c.Param("id"), req)
	if err != nil {
		respondError(c, err, "UpdatePost: error from blogService.Update")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandler) DeletePost(c *gin.Context) {
	if err := h.blogService.Remove(c.Param("id")); err != nil {
		respondError(c, err, "DeletePost: error from blogService.Remove")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Publicación eliminada"})
}

func (h *BlogHandler) PublishPost(c *gin.Context) {
	post, err := h.blogService.Publish(c.Param("id"))
	if err != nil {
		respondError(c, err, "PublishPost: error from blogService.Publish")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandler) UnpublishPost(c *gin.Context) {
	post, err := h.blogService.Unpublish(c.Param("id"))
	if err != nil {
		respondError(c, err, "UnpublishPost: error from blogService.Unpublish")
		return
	}
	c.JSON(http.StatusOK, post)
}
