package config

import (
	"fmt"
	"strings"
)

const HelpMessage = `
Rideshare ledger service

Usage:
  rideshare [--config-path <file>]
  rideshare --help

Options:
  --help          Show this screen.
  --config-path   Path to the config yaml file (default: config.yaml).

Every option of the file can be overridden with an environment variable,
e.g. storage.driver -> STORAGE_DRIVER, auth.jwt_secret -> AUTH_JWT_SECRET.
`

func PrintHelp() {
	fmt.Printf("%s", HelpMessage)
}

// PrintConfig prints the resolved configuration with secrets masked.
func PrintConfig(cfg *Config) {
	var b strings.Builder

	b.WriteString("Configuration:\n")
	fmt.Fprintf(&b, "  app:       name=%s port=%s log_level=%s\n", cfg.App.Name, cfg.App.Port, cfg.App.LogLevel)
	fmt.Fprintf(&b, "  storage:   driver=%s\n", cfg.Storage.Driver)
	switch cfg.Storage.Driver {
	case StoragePostgres:
		fmt.Fprintf(&b, "  database:  %s@%s:%s/%s password=%s\n", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database, mask(cfg.Database.Password))
	case StorageRedis:
		fmt.Fprintf(&b, "  redis:     addr=%s db=%d prefix=%s password=%s\n", cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix, mask(cfg.Redis.Password))
	}
	fmt.Fprintf(&b, "  rabbitmq:  enabled=%t %s:%s\n", cfg.RabbitMQ.Enabled, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	fmt.Fprintf(&b, "  kafka:     enabled=%t brokers=%s topic=%s\n", cfg.Kafka.Enabled, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	fmt.Fprintf(&b, "  auth:      access_ttl=%s jwt_secret=%s admins=%d\n", cfg.Auth.AccessTokenTTL, mask(cfg.Auth.JWTSecret), len(cfg.Auth.AdminList()))

	fmt.Print(b.String())
}

func mask(s string) string {
	if s == "" {
		return "<empty>"
	}
	return "****"
}
