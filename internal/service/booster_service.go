package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/logger"

	"gorm.io/gorm"
)

var boosterFirstNames = []string{
	"Emma", "Olivia", "Sophie", "Hannah", "Mia", "Lucas",
	"Liam", "Noah", "Ava", "Isabella", "Charlotte", "James",
}

var boosterTimePhrases = []string{
	"just now", "2 minutes ago", "5 minutes ago",
	"12 minutes ago", "half an hour ago", "an hour ago",
}

// BoosterService renders the social-proof toasts shown to visitors.
// Templates carry {{name}}, {{package}} and {{time}} placeholders that
// are filled from the pools above and the live package list.
type BoosterService struct {
	db              *gorm.DB
	log             *logger.Logger
	defaultInterval int
	maxTemplates    int
	rng             *rand.Rand
}

func NewBoosterService(db *gorm.DB, log *logger.Logger, defaultInterval, maxTemplates int) *BoosterService {
	return &BoosterService{
		db:              db,
		log:             log,
		defaultInterval: defaultInterval,
		maxTemplates:    maxTemplates,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetSettings returns the booster configuration, creating the default
// row on first read
func (s *BoosterService) GetSettings(ctx context.Context) (*models.ConversionSettings, error) {
	var settings models.ConversionSettings
	err := s.db.WithContext(ctx).First(&settings, 1).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.ConversionSettings{
				ID:          1,
				IsEnabled:   false,
				Templates:   models.StringList{"{{name}} just bought the {{package}} plan {{time}}"},
				MinInterval: s.defaultInterval,
			}, nil
		}
		return nil, errors.NewTransportError("failed to load booster settings")
	}
	return &settings, nil
}

// UpdateSettings replaces the booster configuration
func (s *BoosterService) UpdateSettings(ctx context.Context, req *models.ConversionSettingsRequest) (*models.ConversionSettings, error) {
	if s.maxTemplates > 0 && len(req.Templates) > s.maxTemplates {
		return nil, errors.NewValidationError(
			fmt.Sprintf("at most %d templates allowed", s.maxTemplates))
	}
	for _, tmpl := range req.Templates {
		if strings.TrimSpace(tmpl) == "" {
			return nil, errors.NewValidationError("templates must not be empty")
		}
	}

	interval := req.MinInterval
	if interval <= 0 {
		interval = s.defaultInterval
	}

	settings := &models.ConversionSettings{
		ID:          1,
		IsEnabled:   req.IsEnabled,
		Templates:   models.StringList(req.Templates),
		MinInterval: interval,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		s.log.Error("failed to save booster settings", "error", err)
		return nil, errors.NewTransportError("failed to save booster settings")
	}
	return settings, nil
}

// Next renders one notification for the public widget. Returns a 404
// when the booster is disabled or has nothing to show.
func (s *BoosterService) Next(ctx context.Context) (*models.BoosterNotification, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.IsEnabled || len(settings.Templates) == 0 {
		return nil, errors.NewNotFoundError("BOOSTER_DISABLED", "conversion booster is disabled")
	}

	var packageNames []string
	if err := s.db.WithContext(ctx).Model(&models.Package{}).Pluck("name", &packageNames).Error; err != nil {
		s.log.Warn("booster package lookup failed", "error", err)
	}
	if len(packageNames) == 0 {
		packageNames = []string{models.PlanPro}
	}

	template := settings.Templates[s.rng.Intn(len(settings.Templates))]
	text := RenderBoosterTemplate(template,
		boosterFirstNames[s.rng.Intn(len(boosterFirstNames))],
		packageNames[s.rng.Intn(len(packageNames))],
		boosterTimePhrases[s.rng.Intn(len(boosterTimePhrases))],
	)

	return &models.BoosterNotification{
		Text:        text,
		RenderedAt:  time.Now().UTC(),
		MinInterval: settings.MinInterval,
	}, nil
}

// RenderBoosterTemplate substitutes the {{name}}, {{package}} and
// {{time}} placeholders. Unknown placeholders pass through untouched.
func RenderBoosterTemplate(template, name, packageName, timePhrase string) string {
	replacer := strings.NewReplacer(
		"{{name}}", name,
		"{{package}}", packageName,
		"{{time}}", timePhrase,
	)
	return replacer.Replace(template)
}
