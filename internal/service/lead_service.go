package service

import (
	"context"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/logger"

	"gorm.io/gorm"
)

// LeadService captures prospects from the public pricing funnel and
// lists them for the back office
type LeadService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLeadService(db *gorm.DB, log *logger.Logger) *LeadService {
	return &LeadService{db: db, log: log}
}

// Capture records a lead from the public funnel
func (s *LeadService) Capture(ctx context.Context, req *models.LeadRequest) (*models.Lead, error) {
	lead := &models.Lead{
		Name:            req.Name,
		Email:           req.Email,
		StoreURL:        req.StoreURL,
		SelectedPackage: req.SelectedPackage,
	}
	if err := s.db.WithContext(ctx).Create(lead).Error; err != nil {
		s.log.Error("failed to capture lead", "email", req.Email, "error", err)
		return nil, errors.NewTransportError("failed to record lead")
	}
	s.log.Info("lead captured", "email", lead.Email, "package", lead.SelectedPackage)
	return lead, nil
}

// List returns all captured leads, newest first
func (s *LeadService) List(ctx context.Context) ([]models.Lead, error) {
	var leads []models.Lead
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&leads).Error; err != nil {
		return nil, errors.NewTransportError("failed to list leads")
	}
	return leads, nil
}

// Delete removes a lead
func (s *LeadService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Lead{}, id)
	if result.Error != nil {
		return errors.NewTransportError("failed to delete lead")
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("LEAD_NOT_FOUND", "lead not found")
	}
	return nil
}
