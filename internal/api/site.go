package api

import (
	"encoding/json"
	"net/http"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/internal/service"
	"sellerlift/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// SiteHandler exposes the landing page document and site settings
type SiteHandler struct {
	site *service.SiteService
}

func NewSiteHandler(site *service.SiteService) *SiteHandler {
	return &SiteHandler{site: site}
}

// GetContent is public; the landing page renders from this document
func (h *SiteHandler) GetContent(c *gin.Context) {
	content, err := h.site.GetContent(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, content)
}

func (h *SiteHandler) UpdateContent(c *gin.Context) {
	var req struct {
		Content json.RawMessage `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err.Error()))
		return
	}

	content, err := h.site.UpdateContent(c.Request.Context(), req.Content)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// GetPublicSettings is the unauthenticated view: branding and the
// checkout URL only
func (h *SiteHandler) GetPublicSettings(c *gin.Context) {
	settings, err := h.site.GetPublicSettings(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SiteHandler) GetSettings(c *gin.Context) {
	settings, err := h.site.GetSettings(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SiteHandler) UpdateSettings(c *gin.Context) {
	var req models.SiteSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err.Error()))
		return
	}

	settings, err := h.site.UpdateSettings(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
