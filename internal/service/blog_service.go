package service

import (
	"context"
	"strings"

	"sellerlift/backend/internal/bloggen"
	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/logger"
	"sellerlift/backend/pkg/resilience"

	"gorm.io/gorm"
)

// BlogService manages the marketing blog, including drafting posts via
// the external generator service
type BlogService struct {
	db        *gorm.DB
	generator *bloggen.Client
	log       *logger.Logger
}

func NewBlogService(db *gorm.DB, generator *bloggen.Client, log *logger.Logger) *BlogService {
	return &BlogService{db: db, generator: generator, log: log}
}

// List returns blog posts, newest first. Unauthenticated callers see
// only published posts.
func (s *BlogService) List(ctx context.Context, includeDrafts bool) ([]models.BlogPost, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if !includeDrafts {
		query = query.Where("published = ?", true)
	}

	var posts []models.BlogPost
	if err := query.Find(&posts).Error; err != nil {
		return nil, errors.NewTransportError("failed to list blog posts")
	}
	return posts, nil
}

// GetBySlug loads one post by its public slug
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("POST_NOT_FOUND", "blog post not found")
		}
		return nil, errors.NewTransportError("failed to load blog post")
	}
	return &post, nil
}

// Create adds a post
func (s *BlogService) Create(ctx context.Context, req *models.BlogPostRequest) (*models.BlogPost, error) {
	post := &models.BlogPost{
		Title:     req.Title,
		Slug:      normalizeSlug(req.Slug),
		Content:   req.Content,
		Published: req.Published,
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		s.log.Error("failed to create blog post", "slug", post.Slug, "error", err)
		return nil, errors.NewTransportError("failed to create blog post")
	}
	return post, nil
}

// Update replaces the editable fields of a post
func (s *BlogService) Update(ctx context.Context, id uint, req *models.BlogPostRequest) (*models.BlogPost, error) {
	var post models.BlogPost
	err := s.db.WithContext(ctx).First(&post, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("POST_NOT_FOUND", "blog post not found")
		}
		return nil, errors.NewTransportError("failed to load blog post")
	}

	post.Title = req.Title
	post.Slug = normalizeSlug(req.Slug)
	post.Content = req.Content
	post.Published = req.Published

	if err := s.db.WithContext(ctx).Save(&post).Error; err != nil {
		s.log.Error("failed to update blog post", "id", id, "error", err)
		return nil, errors.NewTransportError("failed to update blog post")
	}
	return &post, nil
}

// Delete removes a post
func (s *BlogService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.BlogPost{}, id)
	if result.Error != nil {
		return errors.NewTransportError("failed to delete blog post")
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("POST_NOT_FOUND", "blog post not found")
	}
	return nil
}

// Generate drafts a post on the given topic via the external generator
// and stores it unpublished for review
func (s *BlogService) Generate(ctx context.Context, topic string) (*models.BlogPost, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, errors.NewValidationError("topic is required")
	}
	if !s.generator.Enabled() {
		return nil, errors.NewError(503, "GENERATOR_DISABLED", "blog generator is not configured")
	}

	draft, err := s.generator.Generate(ctx, topic)
	if err != nil {
		if err == resilience.ErrCircuitOpen {
			return nil, errors.NewError(503, "GENERATOR_UNAVAILABLE", "blog generator is temporarily unavailable")
		}
		s.log.Error("blog generation failed", "topic", topic, "error", err)
		return nil, errors.NewTransportError("failed to generate blog post")
	}

	post := &models.BlogPost{
		Title:     draft.Title,
		Slug:      normalizeSlug(draft.Slug),
		Content:   draft.Content,
		Published: false,
	}
	if post.Slug == "" {
		post.Slug = normalizeSlug(draft.Title)
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		s.log.Error("failed to store generated post", "slug", post.Slug, "error", err)
		return nil, errors.NewTransportError("failed to store generated post")
	}
	return post, nil
}

// normalizeSlug lowercases and hyphenates a slug or title
func normalizeSlug(value string) string {
	slug := strings.ToLower(strings.TrimSpace(value))
	slug = strings.ReplaceAll(slug, " ", "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
