package service

import (
	"context"
	"encoding/json"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/cache"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/logger"
	"sellerlift/backend/pkg/secrets"

	"gorm.io/gorm"
)

const (
	siteContentCacheKey  = "site:content"
	siteSettingsCacheKey = "site:settings"

	// The landing copy and settings are single-document tables.
	siteDocumentID = 1
)

// SiteService manages the editable landing page document and the site
// settings (branding plus Stripe checkout configuration). Public reads
// are cached; every admin write invalidates.
type SiteService struct {
	db    *gorm.DB
	cache *cache.Cache
	log   *logger.Logger
}

func NewSiteService(db *gorm.DB, siteCache *cache.Cache, log *logger.Logger) *SiteService {
	return &SiteService{db: db, cache: siteCache, log: log}
}

// GetContent returns the landing page document. A fresh install with
// no document yet yields an empty JSON object rather than a 404 so the
// public page always renders.
func (s *SiteService) GetContent(ctx context.Context) (*models.SiteContent, error) {
	if cached, found := s.cache.Get(siteContentCacheKey); found {
		if content, ok := cached.(*models.SiteContent); ok {
			return content, nil
		}
	}

	var content models.SiteContent
	err := s.db.WithContext(ctx).First(&content, siteDocumentID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			content = models.SiteContent{ID: siteDocumentID, Content: json.RawMessage("{}")}
		} else {
			return nil, errors.NewTransportError("failed to load site content")
		}
	}

	s.cache.Set(siteContentCacheKey, &content)
	return &content, nil
}

// UpdateContent replaces the landing page document
func (s *SiteService) UpdateContent(ctx context.Context, doc json.RawMessage) (*models.SiteContent, error) {
	if len(doc) == 0 || !json.Valid(doc) {
		return nil, errors.NewValidationError("content must be a valid JSON document")
	}

	content := &models.SiteContent{
		ID:        siteDocumentID,
		Content:   doc,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Save(content).Error; err != nil {
		s.log.Error("failed to save site content", "error", err)
		return nil, errors.NewTransportError("failed to save site content")
	}

	s.cache.Delete(siteContentCacheKey)
	return content, nil
}

// GetSettings returns the full settings row for the back office,
// including whether a secret key is configured (but never the key)
func (s *SiteService) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := s.db.WithContext(ctx).First(&settings, siteDocumentID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.SiteSettings{ID: siteDocumentID}, nil
		}
		return nil, errors.NewTransportError("failed to load site settings")
	}
	return &settings, nil
}

// GetPublicSettings returns the unauthenticated view (no Stripe keys
// beyond the checkout URL), cached between writes
func (s *SiteService) GetPublicSettings(ctx context.Context) (*models.PublicSettings, error) {
	if cached, found := s.cache.Get(siteSettingsCacheKey); found {
		if public, ok := cached.(*models.PublicSettings); ok {
			return public, nil
		}
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	public := &models.PublicSettings{
		SiteName:          settings.SiteName,
		LogoURL:           settings.LogoURL,
		PageTitle:         settings.PageTitle,
		StripeCheckoutURL: settings.StripeCheckoutURL,
	}
	s.cache.Set(siteSettingsCacheKey, public)
	return public, nil
}

// UpdateSettings replaces the settings row. An empty secret key in the
// payload keeps whatever is already stored, so the dashboard can save
// branding without re-entering the key.
func (s *SiteService) UpdateSettings(ctx context.Context, req *models.SiteSettingsRequest) (*models.SiteSettings, error) {
	current, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	current.ID = siteDocumentID
	current.SiteName = req.SiteName
	current.LogoURL = req.LogoURL
	current.PageTitle = req.PageTitle
	current.StripePublishableKey = req.StripePublishableKey
	current.StripeCheckoutURL = req.StripeCheckoutURL
	if req.StripeSecretKey != "" {
		current.StripeSecretKey = req.StripeSecretKey
	}
	current.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(current).Error; err != nil {
		s.log.Error("failed to save site settings", "error", err)
		return nil, errors.NewTransportError("failed to save site settings")
	}

	s.cache.Delete(siteSettingsCacheKey)
	return current, nil
}

// StripeSecretKey resolves the checkout secret: the stored row wins,
// the secrets manager (Vault or environment) is the fallback
func (s *SiteService) StripeSecretKey(ctx context.Context) (string, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return "", err
	}
	if settings.StripeSecretKey != "" {
		return settings.StripeSecretKey, nil
	}
	return secrets.GetSecretWithDefault(ctx, "stripe_secret_key", ""), nil
}
