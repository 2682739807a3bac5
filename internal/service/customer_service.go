package service

import (
	"context"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/logger"

	"gorm.io/gorm"
)

// CustomerService handles the paying-subscriber register in the back
// office, plus the aggregate stats card
type CustomerService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCustomerService(db *gorm.DB, log *logger.Logger) *CustomerService {
	return &CustomerService{db: db, log: log}
}

// List returns all customers, newest first
func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&customers).Error; err != nil {
		return nil, errors.NewTransportError("failed to list customers")
	}
	return customers, nil
}

// GetByID loads one customer
func (s *CustomerService) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).First(&customer, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("CUSTOMER_NOT_FOUND", "customer not found")
		}
		return nil, errors.NewTransportError("failed to load customer")
	}
	return &customer, nil
}

// Create adds a new customer
func (s *CustomerService) Create(ctx context.Context, req *models.CustomerRequest) (*models.Customer, error) {
	customer := &models.Customer{
		Name:     req.Name,
		Email:    req.Email,
		Avatar:   req.Avatar,
		Plan:     req.Plan,
		Status:   req.Status,
		Spent:    req.Spent,
		JoinDate: parseJoinDate(req.JoinDate),
	}
	if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
		s.log.Error("failed to create customer", "email", req.Email, "error", err)
		return nil, errors.NewTransportError("failed to create customer")
	}
	return customer, nil
}

// Update replaces the editable fields of a customer
func (s *CustomerService) Update(ctx context.Context, id uint, req *models.CustomerRequest) (*models.Customer, error) {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.Name = req.Name
	customer.Email = req.Email
	customer.Avatar = req.Avatar
	customer.Plan = req.Plan
	customer.Status = req.Status
	customer.Spent = req.Spent
	if req.JoinDate != "" {
		customer.JoinDate = parseJoinDate(req.JoinDate)
	}

	if err := s.db.WithContext(ctx).Save(customer).Error; err != nil {
		s.log.Error("failed to update customer", "id", id, "error", err)
		return nil, errors.NewTransportError("failed to update customer")
	}
	return customer, nil
}

// Delete removes a customer
func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Customer{}, id)
	if result.Error != nil {
		return errors.NewTransportError("failed to delete customer")
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("CUSTOMER_NOT_FOUND", "customer not found")
	}
	return nil
}

// Stats aggregates the admin landing view cards in one pass per table
func (s *CustomerService) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Customer{}).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, errors.NewTransportError("failed to aggregate stats")
	}
	if err := db.Model(&models.Customer{}).Where("status = ?", models.CustomerActive).Count(&stats.ActiveCount).Error; err != nil {
		return nil, errors.NewTransportError("failed to aggregate stats")
	}
	if err := db.Model(&models.Customer{}).Where("status = ?", models.CustomerTrial).Count(&stats.TrialCount).Error; err != nil {
		return nil, errors.NewTransportError("failed to aggregate stats")
	}
	if err := db.Model(&models.Customer{}).Where("status = ?", models.CustomerChurned).Count(&stats.ChurnedCount).Error; err != nil {
		return nil, errors.NewTransportError("failed to aggregate stats")
	}
	if err := db.Model(&models.Customer{}).Select("COALESCE(SUM(spent), 0)").Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, errors.NewTransportError("failed to aggregate stats")
	}
	if err := db.Model(&models.Lead{}).Count(&stats.LeadCount).Error; err != nil {
		return nil, errors.NewTransportError("failed to aggregate stats")
	}
	if err := db.Model(&models.User{}).Count(&stats.UserCount).Error; err != nil {
		return nil, errors.NewTransportError("failed to aggregate stats")
	}

	return &stats, nil
}

// parseJoinDate accepts the date-only form the dashboard sends and
// falls back to now when absent or malformed
func parseJoinDate(value string) time.Time {
	if value == "" {
		return time.Now().UTC()
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Now().UTC()
}
