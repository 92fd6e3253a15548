package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	CacheRedis  = "redis"
	CacheMemory = "memory"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Log      LogConfig      `yaml:"log"`
}

type AppConfig struct {
	Env string `yaml:"env"`
}

// Verbose reports whether internal error details may be sent to clients.
func (a AppConfig) Verbose() bool {
	return a.Env == EnvDevelopment
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
	// AllowedOrigins may call the API from a browser with credentials.
	// An empty list allows any origin without credentials.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Driver         string `yaml:"driver"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Name           string `yaml:"name"`
	SSLMode        string `yaml:"ssl_mode"`
	SQLitePath     string `yaml:"sqlite_path"`
	ConnectRetries int    `yaml:"connect_retries"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CacheConfig struct {
	Backend          string `yaml:"backend"`
	SearchTTLSeconds int    `yaml:"search_ttl_seconds"`
}

func (c CacheConfig) SearchTTL() time.Duration {
	return time.Duration(c.SearchTTLSeconds) * time.Second
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	FlightEventsTopic string   `yaml:"flight_events_topic"`
	GroupID           string   `yaml:"group_id"`
}

// Enabled reports whether flight events should be published.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.FlightEventsTopic != ""
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{Env: EnvProduction},
		HTTP: HTTPConfig{
			Address:        ":8080",
			SwaggerDir:     "./api",
			AllowedOrigins: []string{"https://studio.apollographql.com"},
		},
		GRPC: GRPCConfig{Address: ":9090"},
		Database: DatabaseConfig{
			Driver:         DriverPostgres,
			Host:           "localhost",
			Port:           5432,
			User:           "postgres",
			Name:           "flights",
			SSLMode:        "disable",
			SQLitePath:     "flights.db",
			ConnectRetries: 5,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Cache: CacheConfig{
			Backend:          CacheRedis,
			SearchTTLSeconds: 300,
		},
		Kafka: KafkaConfig{
			FlightEventsTopic: "flight-events",
			GroupID:           "flightsearch-cache-warmer",
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads the YAML file at path over DefaultConfig, then applies
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvironmentOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnvironmentOverrides(cfg *Config) {
	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.App.Env = env
	}
	if addr := os.Getenv("HTTP_ADDRESS"); addr != "" {
		cfg.HTTP.Address = addr
	}
	if origins := os.Getenv("HTTP_ALLOWED_ORIGINS"); origins != "" {
		cfg.HTTP.AllowedOrigins = strings.Split(origins, ",")
	}
	if addr := os.Getenv("GRPC_ADDRESS"); addr != "" {
		cfg.GRPC.Address = addr
	}

	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		cfg.Database.Driver = driver
	}
	if host := os.Getenv("DATABASE_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DATABASE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Database.Port = p
		}
	}
	if user := os.Getenv("DATABASE_USER"); user != "" {
		cfg.Database.User = user
	}
	if password := os.Getenv("DATABASE_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if name := os.Getenv("DATABASE_NAME"); name != "" {
		cfg.Database.Name = name
	}
	if path := os.Getenv("DATABASE_SQLITE_PATH"); path != "" {
		cfg.Database.SQLitePath = path
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if backend := os.Getenv("CACHE_BACKEND"); backend != "" {
		cfg.Cache.Backend = backend
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}

func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address is required")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return errors.New("database.host and database.name are required for postgres")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return errors.New("database.sqlite_path is required for sqlite")
		}
	default:
		return fmt.Errorf("database.driver must be one of: %s, %s", DriverPostgres, DriverSQLite)
	}
	if c.Database.ConnectRetries <= 0 {
		return errors.New("database.connect_retries must be positive")
	}
	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("cache.backend must be one of: %s, %s", CacheRedis, CacheMemory)
	}
	if c.Cache.SearchTTLSeconds <= 0 {
		return errors.New("cache.search_ttl_seconds must be positive")
	}
	return nil
}
