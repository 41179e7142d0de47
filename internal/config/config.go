// Package config defines the typed configuration tree for the FinHealth
// service and its viper-based loader.
package config

import (
	"fmt"
	"time"

	"github.com/finhealth/finhealth/pkg/constants"
)

// Config is the root configuration object.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Log        LogConfig        `mapstructure:"log"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Vault      VaultConfig      `mapstructure:"vault"`
	Encryption EncryptionConfig `mapstructure:"encryption"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

// ServerConfig controls the HTTP listener and lifecycle.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	GRPCHealthPort  int           `mapstructure:"grpc_health_port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	EnablePprof     bool          `mapstructure:"enable_pprof"`
}

// DatabaseConfig controls the PostgreSQL pool.
type DatabaseConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	Database          string `mapstructure:"database"`
	SSLMode           string `mapstructure:"ssl_mode"`
	MaxConns          int    `mapstructure:"max_conns"`
	MinConns          int    `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
	ConnTimeout       int    `mapstructure:"conn_timeout"`
}

// DSN builds the pgx connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig controls the Redis client.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// JWTConfig controls token issuance and verification.
type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// KafkaConfig controls the audit event producer and archiver consumer.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	AuditTopic   string        `mapstructure:"audit_topic"`
	GroupID      string        `mapstructure:"group_id"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// VaultConfig controls the optional Vault key source for the field cipher.
type VaultConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Address     string        `mapstructure:"address"`
	Token       string        `mapstructure:"token"`
	SecretPath  string        `mapstructure:"secret_path"`
	KeyCacheTTL time.Duration `mapstructure:"key_cache_ttl"`
}

// EncryptionConfig configures field-level encryption when Vault is
// disabled. Passphrase plus salt feed PBKDF2.
type EncryptionConfig struct {
	Passphrase string `mapstructure:"passphrase"`
	Salt       string `mapstructure:"salt"`
}

// RateLimitConfig controls the per-IP fixed window limiter.
type RateLimitConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	PerMinute int  `mapstructure:"per_minute"`
}

// TracingConfig controls the OTel tracer and Jaeger exporter.
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ServiceName    string  `mapstructure:"service_name"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// CORSConfig controls allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.JWT.TokenTTL <= 0 {
		c.JWT.TokenTTL = constants.AccessTokenTTL
	}
	if c.RateLimit.PerMinute <= 0 {
		c.RateLimit.PerMinute = constants.RateLimitPerMinute
	}
	if !c.Vault.Enabled && c.Encryption.Passphrase == "" {
		return fmt.Errorf("encryption.passphrase is required when vault is disabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}
