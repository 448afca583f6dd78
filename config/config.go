package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/rideshare-ledger/pkg/configparser"
	"github.com/Temutjin2k/rideshare-ledger/pkg/logger"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Errors
var (
	ErrInvalidStorageDriver = errors.New("invalid storage driver")
	ErrInvalidLogLevel      = errors.New("invalid log level")
	ErrEmptyJWTSecret       = errors.New("jwt secret must not be empty")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		App       AppConfig
		Storage   StorageConfig
		Database  DatabaseConfig
		Redis     RedisConfig
		RabbitMQ  RabbitMQConfig
		Kafka     KafkaConfig
		WebSocket WebSocketConfig
		Auth      Auth
	}

	AppConfig struct {
		Name     string `env:"APP_NAME" default:"rideshare-ledger"`
		Port     string `env:"APP_PORT" default:"3000"`
		LogLevel string `env:"APP_LOG_LEVEL" default:"DEBUG"`
	}

	StorageConfig struct {
		Driver string `env:"STORAGE_DRIVER" default:"memory"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"rideshare_user"`
		Password string `env:"DATABASE_PASSWORD" default:"rideshare_pass"`
		Database string `env:"DATABASE_DATABASE" default:"rideshare_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`         // максимум открытых соединений
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`          // минимум соединений в пуле
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"` // макс. "время жизни" соединения
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`  // макс. "время простоя" соединения
	}

	RedisConfig struct {
		Addr     string `env:"REDIS_ADDR" default:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" default:"0"`
		Prefix   string `env:"REDIS_PREFIX" default:"rideshare"`
	}

	RabbitMQConfig struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED" default:"false"`
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	KafkaConfig struct {
		Enabled bool   `env:"KAFKA_ENABLED" default:"false"`
		Brokers string `env:"KAFKA_BROKERS" default:"localhost:9092"`
		Topic   string `env:"KAFKA_TOPIC" default:"ledger-events"`
	}

	WebSocketConfig struct {
		PingInterval time.Duration `env:"WEBSOCKET_PING_INTERVAL" default:"30s"`
	}

	Auth struct {
		AccessTokenTTL time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" default:"24h"`
		JWTSecret      string        `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
		AdminIDs       string        `env:"AUTH_ADMIN_IDS"` // comma separated identities allowed on /admin routes
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

// BrokerList splits the comma separated broker list.
func (c KafkaConfig) BrokerList() []string {
	return splitList(c.Brokers)
}

// AdminList splits the comma separated admin identities.
func (c Auth) AdminList() []string {
	return splitList(c.AdminIDs)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres, StorageRedis:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStorageDriver, c.Storage.Driver)
	}

	if !logger.ValidateLogLevel(c.App.LogLevel) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.App.LogLevel)
	}

	if c.Auth.JWTSecret == "" {
		return ErrEmptyJWTSecret
	}

	return nil
}
