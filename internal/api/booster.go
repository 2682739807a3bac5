package api

import (
	"net/http"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/internal/service"
	"sellerlift/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// BoosterHandler exposes the conversion booster: admin settings and
// the public notification feed
type BoosterHandler struct {
	booster *service.BoosterService
}

func NewBoosterHandler(booster *service.BoosterService) *BoosterHandler {
	return &BoosterHandler{booster: booster}
}

func (h *BoosterHandler) GetSettings(c *gin.Context) {
	settings, err := h.booster.GetSettings(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *BoosterHandler) UpdateSettings(c *gin.Context) {
	var req models.ConversionSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err.Error()))
		return
	}

	settings, err := h.booster.UpdateSettings(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Next is public; the landing page widget polls it for the next toast
func (h *BoosterHandler) Next(c *gin.Context) {
	notification, err := h.booster.Next(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, notification)
}
