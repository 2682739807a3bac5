package api

import (
	"net/http"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/internal/service"
	"sellerlift/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// BlogHandler exposes the marketing blog: public reads, admin CRUD and
// generation
type BlogHandler struct {
	blog *service.BlogService
}

func NewBlogHandler(blog *service.BlogService) *BlogHandler {
	return &BlogHandler{blog: blog}
}

// ListPublic returns published posts only
func (h *BlogHandler) ListPublic(c *gin.Context) {
	posts, err := h.blog.List(c.Request.Context(), false)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// ListAll returns every post, drafts included (back office)
func (h *BlogHandler) ListAll(c *gin.Context) {
	posts, err := h.blog.List(c.Request.Context(), true)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *BlogHandler) GetBySlug(c *gin.Context) {
	post, err := h.blog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandler) Create(c *gin.Context) {
	var req models.BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err.Error()))
		return
	}

	post, err := h.blog.Create(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *BlogHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req models.BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err.Error()))
		return
	}

	post, err := h.blog.Update(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.blog.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Generate drafts a post via the external generator service
func (h *BlogHandler) Generate(c *gin.Context) {
	var req models.GeneratePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err.Error()))
		return
	}

	post, err := h.blog.Generate(c.Request.Context(), req.Topic)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, post)
}
