package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"sellerlift/backend/pkg/logger"

	vault "github.com/hashicorp/vault/api"
)

var ErrSecretNotFound = errors.New("secrets: not found")

const (
	defaultSecretsPath = "secret/data/sellerlift"
	cacheTTL           = 5 * time.Minute
)

// VaultManager reads secrets from a HashiCorp Vault KV v2 mount, falling back
// to environment variables when Vault is disabled or the key is absent there.
// Resolved values are cached in-process and expire after cacheTTL.
type VaultManager struct {
	client      *vault.Client
	secretsPath string
	enabled     bool
	log         *logger.Logger

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	value   string
	expires time.Time
}

// NewVaultManager builds a manager from VAULT_* environment variables.
// With VAULT_ENABLED unset or false the manager is env-only and never errors.
func NewVaultManager(log *logger.Logger) (*VaultManager, error) {
	m := &VaultManager{
		secretsPath: os.Getenv("VAULT_SECRETS_PATH"),
		log:         log,
		cache:       make(map[string]cachedSecret),
	}
	if m.secretsPath == "" {
		m.secretsPath = defaultSecretsPath
	}

	switch os.Getenv("VAULT_ENABLED") {
	case "true", "1", "yes":
		m.enabled = true
	default:
		return m, nil
	}

	addr := os.Getenv("VAULT_ADDR")
	token := os.Getenv("VAULT_TOKEN")
	if addr == "" {
		return nil, errors.New("secrets: VAULT_ADDR is required when vault is enabled")
	}
	if token == "" {
		return nil, errors.New("secrets: VAULT_TOKEN is required when vault is enabled")
	}

	cfg := vault.DefaultConfig()
	cfg.Address = addr
	cfg.Timeout = 10 * time.Second
	cfg.MaxRetries = 3

	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("secrets: create vault client: %w", err)
	}
	client.SetToken(token)
	if ns := os.Getenv("VAULT_NAMESPACE"); ns != "" {
		client.SetNamespace(ns)
	}
	m.client = client

	return m, nil
}

func (m *VaultManager) GetSecret(ctx context.Context, key string) (string, error) {
	if value, ok := m.cached(key); ok {
		return value, nil
	}

	if m.enabled {
		value, err := m.fromVault(ctx, key)
		if err == nil {
			m.store(key, value)
			return value, nil
		}
		if !errors.Is(err, ErrSecretNotFound) {
			return "", err
		}
		m.log.Warn("Secret not in vault, trying environment", "key", key)
	}

	value := os.Getenv(envName(key))
	if value == "" {
		return "", ErrSecretNotFound
	}
	m.store(key, value)
	return value, nil
}

func (m *VaultManager) GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	value, err := m.GetSecret(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrSecretNotFound) {
			m.log.Warn("Secret lookup failed, using default", "key", key, "error", err.Error())
		}
		return defaultValue
	}
	return value
}

func (m *VaultManager) fromVault(ctx context.Context, key string) (string, error) {
	secret, err := m.client.KVv2("secret").Get(ctx, m.secretsPath)
	if err != nil {
		return "", fmt.Errorf("secrets: read %s: %w", m.secretsPath, err)
	}
	if secret == nil || secret.Data == nil {
		return "", ErrSecretNotFound
	}
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", ErrSecretNotFound
	}
	value, ok := data[key].(string)
	if !ok {
		return "", ErrSecretNotFound
	}
	return value, nil
}

func (m *VaultManager) cached(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.cache[key]
	if !ok || time.Now().After(entry.expires) {
		return "", false
	}
	return entry.value, true
}

func (m *VaultManager) store(key, value string) {
	m.mu.Lock()
	m.cache[key] = cachedSecret{value: value, expires: time.Now().Add(cacheTTL)}
	m.mu.Unlock()
}

// envName maps "stripe-secret.key" style names onto STRIPE_SECRET_KEY.
func envName(key string) string {
	replacer := strings.NewReplacer("-", "_", ".", "_")
	return strings.ToUpper(replacer.Replace(key))
}
