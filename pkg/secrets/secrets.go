package secrets

import (
	"context"
	"errors"
	"sync"

	"sellerlift/backend/pkg/logger"
)

// Manager resolves secret material (Stripe keys, JWT secret) by name.
type Manager interface {
	GetSecret(ctx context.Context, key string) (string, error)

	// GetSecretWithDefault never fails; unresolvable keys yield defaultValue.
	GetSecretWithDefault(ctx context.Context, key, defaultValue string) string
}

var (
	ErrManagerNotInitialized = errors.New("secrets: manager not initialized")

	defaultManager Manager
	initOnce       sync.Once
)

// Init wires the process-wide manager. Vault when configured, environment
// variables otherwise; callers that only need defaults can ignore the error.
func Init(log *logger.Logger) error {
	var err error
	initOnce.Do(func() {
		defaultManager, err = NewVaultManager(log)
	})
	return err
}

func GetSecret(ctx context.Context, key string) (string, error) {
	if defaultManager == nil {
		return "", ErrManagerNotInitialized
	}
	return defaultManager.GetSecret(ctx, key)
}

func GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	if defaultManager == nil {
		return defaultValue
	}
	return defaultManager.GetSecretWithDefault(ctx, key, defaultValue)
}

// SetManager replaces the process-wide manager, for tests.
func SetManager(manager Manager) {
	defaultManager = manager
}
