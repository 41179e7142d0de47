package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/finhealth/finhealth/pkg/constants"
	"github.com/finhealth/finhealth/pkg/logger"
)

// LoadConfig loads configuration from defaults, an optional yaml file
// and FINHEALTH_-prefixed environment variables, in that precedence
// order. The config file is watched; OnReload is invoked with the
// re-unmarshalled tree so the log level can follow edits without a
// restart.
func LoadConfig(log logger.Logger, onReload func(*Config)) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/finhealth/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("FINHEALTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if onReload != nil {
		v.OnConfigChange(func(e fsnotify.Event) {
			var next Config
			if err := v.Unmarshal(&next); err != nil {
				log.Warn(context.Background(), "ignoring config reload",
					logger.String("file", e.Name),
					logger.String("reason", err.Error()),
				)
				return
			}
			if err := next.Validate(); err != nil {
				log.Warn(context.Background(), "ignoring invalid config reload",
					logger.String("file", e.Name),
					logger.String("reason", err.Error()),
				)
				return
			}
			onReload(&next)
		})
		v.WatchConfig()
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.grpc_health_port", 50051)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.enable_pprof", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "finhealth")
	v.SetDefault("database.database", "finhealth")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", 3600)
	v.SetDefault("database.max_conn_idle_time", 600)
	v.SetDefault("database.health_check_period", 60)
	v.SetDefault("database.conn_timeout", 10)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("jwt.issuer", "finhealth")
	v.SetDefault("jwt.token_ttl", constants.AccessTokenTTL)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.audit_topic", "finhealth.audit.events")
	v.SetDefault("kafka.group_id", "finhealth-audit-archiver")
	v.SetDefault("kafka.write_timeout", "10s")
	v.SetDefault("kafka.read_timeout", "10s")
	v.SetDefault("kafka.required_acks", 1)
	v.SetDefault("kafka.batch_size", 100)
	v.SetDefault("kafka.batch_timeout", "1s")

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.secret_path", "secret/data/finhealth/encryption")
	v.SetDefault("vault.key_cache_ttl", "5m")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.per_minute", constants.RateLimitPerMinute)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "finhealth-api")
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.sample_ratio", 0.1)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}
