package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	// StatementTimeout is enforced by Postgres on every statement.
	StatementTimeout time.Duration
	// ConnectTimeout bounds startup retries while the database comes up.
	ConnectTimeout time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	// OutboxInterval is how often the relay polls for unpublished events.
	OutboxInterval  time.Duration
	OutboxBatchSize int
}

type BureauConfig struct {
	// BaseURL empty selects the deterministic stub bureau.
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries uint64
}

type GRPCConfig struct {
	TLSCertFile     string
	TLSKeyFile      string
	TLSClientCAFile string
	Reflection      bool
}

type JWTConfig struct {
	Secret        string
	PublicKey     string
	PublicKeyFile string
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type Config struct {
	GRPCPort       int
	HTTPPort       int
	GRPC           GRPCConfig
	JWT            JWTConfig
	DB             DatabaseConfig
	Kafka          KafkaConfig
	Bureau         BureauConfig
	Log            LogConfig
	OTLPEndpoint   string
	MigrationsPath string
	// MinimumWage is the monthly DOP minimum wage used when the employer's
	// company size is unknown.
	MinimumWage decimal.Decimal
	ServiceName string
}

// Validate reports settings the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if c.JWT.Secret == "" && c.JWT.PublicKey == "" && c.JWT.PublicKeyFile == "" {
		errs = append(errs, errors.New("one of JWT_PUBLIC_KEY, JWT_PUBLIC_KEY_FILE or JWT_SECRET is required"))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS must list at least one broker"))
	}
	if c.Kafka.Topic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC cannot be empty"))
	}
	if c.Kafka.OutboxBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.Kafka.OutboxBatchSize))
	}
	if !c.MinimumWage.IsPositive() {
		errs = append(errs, fmt.Errorf("MINIMUM_WAGE must be positive, got %s", c.MinimumWage))
	}
	return errors.Join(errs...)
}

func Load() Config {
	return Config{
		GRPCPort: getEnvInt("GRPC_PORT", 9090),
		HTTPPort: getEnvInt("HTTP_PORT", 8090),
		GRPC: GRPCConfig{
			TLSCertFile:     getEnv("GRPC_TLS_CERT_FILE", ""),
			TLSKeyFile:      getEnv("GRPC_TLS_KEY_FILE", ""),
			TLSClientCAFile: getEnv("GRPC_TLS_CLIENT_CA_FILE", ""),
			Reflection:      getEnv("GRPC_REFLECTION", "") == "true",
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", ""),
			PublicKey:     getEnv("JWT_PUBLIC_KEY", ""),
			PublicKeyFile: getEnv("JWT_PUBLIC_KEY_FILE", ""),
			Issuer:        getEnv("JWT_ISSUER", ""),
			Audience:      getEnv("JWT_AUDIENCE", ""),
			Leeway:        getEnvDuration("JWT_LEEWAY", 30*time.Second),
		},
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "riskcore"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "riskcore"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),

			StatementTimeout: getEnvDuration("DB_STATEMENT_TIMEOUT", 5*time.Second),
			ConnectTimeout:   getEnvDuration("DB_CONNECT_TIMEOUT", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "risk.assessments"),

			OutboxInterval:  getEnvDuration("OUTBOX_POLL_INTERVAL", time.Second),
			OutboxBatchSize: getEnvInt("OUTBOX_BATCH_SIZE", 100),
		},
		Bureau: BureauConfig{
			BaseURL:    getEnv("BUREAU_BASE_URL", ""),
			APIKey:     getEnv("BUREAU_API_KEY", ""),
			Timeout:    getEnvDuration("BUREAU_TIMEOUT", 10*time.Second),
			MaxRetries: uint64(getEnvInt("BUREAU_MAX_RETRIES", 3)),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", ""),
		MinimumWage:    getEnvDecimal("MINIMUM_WAGE", decimal.NewFromInt(21000)),
		ServiceName:    "riskcore",
	}
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
