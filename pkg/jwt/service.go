package jwt

import (
	"time"
)

const defaultExpiry = 24 * time.Hour

// Service issues and validates the dashboard's session tokens.
type Service struct {
	secretKey string
	expiry    time.Duration
}

// NewService builds a token service. An empty secret falls back to the
// secrets manager (JWT_SECRET), a zero expiry to 24h.
func NewService(secretKey string, expiry time.Duration) *Service {
	if secretKey == "" {
		secretKey = getSecretKey()
	}
	if expiry == 0 {
		expiry = defaultExpiry
	}
	return &Service{secretKey: secretKey, expiry: expiry}
}

func (s *Service) GenerateToken(userID uint, email string, role Role) (string, error) {
	return generateToken(s.secretKey, s.expiry, userID, email, role)
}

func (s *Service) ValidateToken(tokenString string) (*JWTClaims, error) {
	return validateToken(s.secretKey, tokenString)
}
