package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	MySQL     MySQLConfig
	Kafka     KafkaConfig
	Promotion PromotionConfig
	Catalog   CatalogConfig
}

type ServerConfig struct {
	AppEnv   string
	GRPCPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// MySQLConfig configures the optional stock movement journal.
// An empty DSN keeps the journal in memory.
type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

// KafkaConfig configures the promotion event publisher.
// No brokers means promotions are only logged.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type PromotionConfig struct {
	Enabled         bool
	FlashMaxDelay   time.Duration
	FlashInterval   time.Duration
	FlashRate       float64
	SuggestMaxDelay time.Duration
	SuggestInterval time.Duration
	SuggestRate     float64
}

type CatalogConfig struct {
	SeedPath          string
	LowStockThreshold int
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			GRPCPort: getEnv("GRPC_PORT", ":8083"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		MySQL: MySQLConfig{
			DSN:             getEnv("MYSQL_DSN", ""),
			MaxOpenConns:    getEnvInt("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("MYSQL_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("MYSQL_CONN_MAX_IDLE_TIME", 60),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC_PROMOTIONS", "cart.promotions"),
		},
		Promotion: PromotionConfig{
			Enabled:         getEnvBool("PROMOTION_ENABLED", true),
			FlashMaxDelay:   getEnvDuration("PROMOTION_FLASH_MAX_DELAY", 10*time.Second),
			FlashInterval:   getEnvDuration("PROMOTION_FLASH_INTERVAL", 30*time.Second),
			FlashRate:       getEnvFloat("PROMOTION_FLASH_RATE", 0.8),
			SuggestMaxDelay: getEnvDuration("PROMOTION_SUGGEST_MAX_DELAY", 20*time.Second),
			SuggestInterval: getEnvDuration("PROMOTION_SUGGEST_INTERVAL", 60*time.Second),
			SuggestRate:     getEnvFloat("PROMOTION_SUGGEST_RATE", 0.95),
		},
		Catalog: CatalogConfig{
			SeedPath:          getEnv("CATALOG_SEED_PATH", ""),
			LowStockThreshold: getEnvInt("CATALOG_LOW_STOCK_THRESHOLD", 5),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return strings.Split(value, ",")
	}
	return fallback
}
