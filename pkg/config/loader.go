package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("CASA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without CASA_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "CASA_HTTP_PORT")
	viper.BindEnv("database.url", "DATABASE_URL", "CASA_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "CASA_REDIS_URL")
	viper.BindEnv("nats.url", "NATS_URL", "CASA_NATS_URL")
	viper.BindEnv("rabbitmq.url", "RABBITMQ_URL", "CASA_RABBITMQ_URL")
	viper.BindEnv("vault.address", "VAULT_ADDR", "CASA_VAULT_ADDRESS")
	viper.BindEnv("vault.token", "VAULT_TOKEN", "CASA_VAULT_TOKEN")
	viper.BindEnv("rooms.room", "CASA_ROOM")
	viper.BindEnv("app.environment", "CASA_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: env vars plus defaults carry the day.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "sigec-casa"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.Recognition.Transport == "" {
		cfg.Recognition.Transport = "nats"
	}
	if cfg.Rooms.Path == "" {
		cfg.Rooms.Path = "./configs/rooms.yaml"
	}
	if cfg.Prometheus.Path == "" {
		cfg.Prometheus.Path = "/metrics"
	}
}
