package service

import (
	"context"
	"strings"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/jwt"
	"sellerlift/backend/pkg/logger"

	"gorm.io/gorm"
)

// UserService handles seller account registration and login
type UserService struct {
	db  *gorm.DB
	jwt *jwt.Service
	log *logger.Logger
}

func NewUserService(db *gorm.DB, jwtService *jwt.Service, log *logger.Logger) *UserService {
	return &UserService{db: db, jwt: jwtService, log: log}
}

// Register creates a new seller account and returns it with a token
func (s *UserService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.UserResponse, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, "", errors.NewTransportError("failed to check existing account")
	}
	if count > 0 {
		return nil, "", errors.NewConflictError("EMAIL_TAKEN", "an account with this email already exists")
	}

	user := &models.User{
		Email:        email,
		Password:     req.Password,
		EtsyStoreURL: req.EtsyStoreURL,
		Role:         string(jwt.RoleUser),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		s.log.Error("failed to create user", "email", email, "error", err)
		return nil, "", errors.NewTransportError("failed to create account")
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, jwt.Role(user.Role))
	if err != nil {
		s.log.Error("failed to generate token", "user_id", user.ID, "error", err)
		return nil, "", errors.NewInternalServerError("TOKEN_GENERATION_FAILED", "failed to generate token")
	}

	resp := user.ToResponse()
	return &resp, token, nil
}

// Login verifies credentials and returns the account with a fresh token
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.UserResponse, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", errors.NewUnauthorizedError("INVALID_CREDENTIALS", "invalid email or password")
		}
		return nil, "", errors.NewTransportError("failed to load account")
	}

	if !models.CheckPasswordHash(req.Password, user.Password) {
		return nil, "", errors.NewUnauthorizedError("INVALID_CREDENTIALS", "invalid email or password")
	}

	user.LastLogin = time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", user.LastLogin).Error; err != nil {
		// Login still succeeds; the timestamp is cosmetic.
		s.log.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, jwt.Role(user.Role))
	if err != nil {
		s.log.Error("failed to generate token", "user_id", user.ID, "error", err)
		return nil, "", errors.NewInternalServerError("TOKEN_GENERATION_FAILED", "failed to generate token")
	}

	resp := user.ToResponse()
	return &resp, token, nil
}

// GetByID loads one account
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.UserResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("USER_NOT_FOUND", "account not found")
		}
		return nil, errors.NewTransportError("failed to load account")
	}
	resp := user.ToResponse()
	return &resp, nil
}

// List returns all registered accounts for the back office
func (s *UserService) List(ctx context.Context) ([]models.UserResponse, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, errors.NewTransportError("failed to list accounts")
	}
	responses := make([]models.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return responses, nil
}

// Delete removes an account
func (s *UserService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return errors.NewTransportError("failed to delete account")
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("USER_NOT_FOUND", "account not found")
	}
	return nil
}

// RegisteredAccounts lists every seller account for the conversation
// directory. Operator accounts are excluded; the directory lists the
// other side of each conversation, never the operator itself.
func (s *UserService) RegisteredAccounts(ctx context.Context) ([]models.RegisteredAccount, error) {
	var accounts []models.RegisteredAccount
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("role <> ?", string(jwt.RoleAdmin)).
		Select("email", "created_at").
		Find(&accounts).Error
	if err != nil {
		return nil, errors.NewTransportError("failed to list accounts")
	}
	return accounts, nil
}
