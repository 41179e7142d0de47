// Package kms resolves the encryption key material used by the field
// cipher. Production deployments read it from Vault; development falls
// back to the static passphrase in the config file.
package kms

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"
	gocache "github.com/patrickmn/go-cache"

	"github.com/finhealth/finhealth/internal/config"
	"github.com/finhealth/finhealth/pkg/logger"
)

// KeyMaterial is the passphrase and salt fed to the field cipher's KDF.
type KeyMaterial struct {
	Passphrase string
	Salt       string
}

// KeySource yields the current key material.
type KeySource interface {
	Material(ctx context.Context) (*KeyMaterial, error)
}

// StaticKeySource serves the passphrase from configuration.
type StaticKeySource struct {
	material *KeyMaterial
}

// NewStaticKeySource validates and wraps the configured passphrase.
func NewStaticKeySource(cfg *config.EncryptionConfig) (*StaticKeySource, error) {
	if cfg.Passphrase == "" || cfg.Salt == "" {
		return nil, fmt.Errorf("encryption passphrase and salt must be configured")
	}
	return &StaticKeySource{material: &KeyMaterial{Passphrase: cfg.Passphrase, Salt: cfg.Salt}}, nil
}

func (s *StaticKeySource) Material(context.Context) (*KeyMaterial, error) {
	return s.material, nil
}

const vaultCacheKey = "field-cipher-key"

// VaultKeySource reads key material from a Vault KV v2 secret and caches
// it in process so steady-state encryption never touches Vault.
type VaultKeySource struct {
	client     *vault.Client
	secretPath string
	cache      *gocache.Cache
	logger     logger.Logger
}

// NewVaultKeySource dials Vault and verifies the secret is readable.
func NewVaultKeySource(cfg *config.VaultConfig, log logger.Logger) (*VaultKeySource, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	source := &VaultKeySource{
		client:     client,
		secretPath: cfg.SecretPath,
		cache:      gocache.New(cfg.KeyCacheTTL, 2*cfg.KeyCacheTTL),
		logger:     log.WithComponent("VaultKeySource"),
	}

	if _, err := source.Material(context.Background()); err != nil {
		return nil, err
	}
	return source, nil
}

func (s *VaultKeySource) Material(ctx context.Context) (*KeyMaterial, error) {
	if cached, ok := s.cache.Get(vaultCacheKey); ok {
		return cached.(*KeyMaterial), nil
	}

	secret, err := s.client.KVv2("secret").Get(ctx, s.secretPath)
	if err != nil {
		s.logger.Error(ctx, "Vault key read failed", err, logger.String("path", s.secretPath))
		return nil, fmt.Errorf("vault key read: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("vault secret %s is empty", s.secretPath)
	}

	passphrase, _ := secret.Data["passphrase"].(string)
	salt, _ := secret.Data["salt"].(string)
	if passphrase == "" || salt == "" {
		return nil, fmt.Errorf("vault secret %s missing passphrase or salt", s.secretPath)
	}

	material := &KeyMaterial{Passphrase: passphrase, Salt: salt}
	s.cache.Set(vaultCacheKey, material, gocache.DefaultExpiration)

	s.logger.Debug(ctx, "Field cipher key refreshed from Vault")
	return material, nil
}
