package service

import (
	"context"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/logger"

	"gorm.io/gorm"
)

// PackageService manages the pricing tiers shown on the landing page
type PackageService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPackageService(db *gorm.DB, log *logger.Logger) *PackageService {
	return &PackageService{db: db, log: log}
}

// List returns all pricing tiers, cheapest first
func (s *PackageService) List(ctx context.Context) ([]models.Package, error) {
	var packages []models.Package
	if err := s.db.WithContext(ctx).Order("price ASC").Find(&packages).Error; err != nil {
		return nil, errors.NewTransportError("failed to list packages")
	}
	return packages, nil
}

// GetByID loads one pricing tier
func (s *PackageService) GetByID(ctx context.Context, id uint) (*models.Package, error) {
	var pkg models.Package
	err := s.db.WithContext(ctx).First(&pkg, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("PACKAGE_NOT_FOUND", "package not found")
		}
		return nil, errors.NewTransportError("failed to load package")
	}
	return &pkg, nil
}

// Create adds a new pricing tier
func (s *PackageService) Create(ctx context.Context, req *models.PackageRequest) (*models.Package, error) {
	pkg := &models.Package{
		Name:        req.Name,
		Price:       req.Price,
		Features:    models.StringList(req.Features),
		IsPopular:   req.IsPopular,
		Subscribers: req.Subscribers,
	}
	if err := s.db.WithContext(ctx).Create(pkg).Error; err != nil {
		s.log.Error("failed to create package", "name", req.Name, "error", err)
		return nil, errors.NewTransportError("failed to create package")
	}
	return pkg, nil
}

// Update replaces the editable fields of a pricing tier
func (s *PackageService) Update(ctx context.Context, id uint, req *models.PackageRequest) (*models.Package, error) {
	pkg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pkg.Name = req.Name
	pkg.Price = req.Price
	pkg.Features = models.StringList(req.Features)
	pkg.IsPopular = req.IsPopular
	pkg.Subscribers = req.Subscribers

	if err := s.db.WithContext(ctx).Save(pkg).Error; err != nil {
		s.log.Error("failed to update package", "id", id, "error", err)
		return nil, errors.NewTransportError("failed to update package")
	}
	return pkg, nil
}

// Delete removes a pricing tier
func (s *PackageService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Package{}, id)
	if result.Error != nil {
		return errors.NewTransportError("failed to delete package")
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("PACKAGE_NOT_FOUND", "package not found")
	}
	return nil
}
