package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Bandit   BanditConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

// DSN builds the libpq connection string gorm's postgres driver expects.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig is optional: without REDIS_HOST the sweep lease is local only.
type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

func (r RedisConfig) Enabled() bool {
	return r.RedisHost != ""
}

type BanditConfig struct {
	Tau              float64
	PrecisionFloor   float64
	MaxUpdateRetries int

	SweepEnabled          bool
	SweepInterval         time.Duration
	SweepStrategy         string
	SweepConcurrency      int
	SweepRecordExperiment bool
	SweepPersist          bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Smart Pricing API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ShutdownTimeout: getDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Name:        getEnv("DB_NAME", "smart_pricing"),
			SSLMode:     getEnv("DB_SSL_MODE", "disable"),
			AutoMigrate: getBool("DB_AUTO_MIGRATE", true, &errs),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", ""),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getInt("REDIS_DB", 0, &errs),
		},
		Bandit: BanditConfig{
			Tau:              getFloat("TAU", 1.0, &errs),
			PrecisionFloor:   getFloat("PRECISION_FLOOR", 1e-6, &errs),
			MaxUpdateRetries: getInt("MAX_UPDATE_RETRIES", 3, &errs),

			SweepEnabled:          getBool("SWEEP_ENABLED", true, &errs),
			SweepInterval:         getDuration("SWEEP_INTERVAL", 10*time.Minute, &errs),
			SweepStrategy:         strings.ToLower(getEnv("SWEEP_STRATEGY", "bernoulli")),
			SweepConcurrency:      getInt("SWEEP_CONCURRENCY", 4, &errs),
			SweepRecordExperiment: getBool("SWEEP_RECORD_EXPERIMENT", false, &errs),
			SweepPersist:          getBool("SWEEP_PERSIST", true, &errs),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Bandit.SweepInterval <= 0 {
		return nil, errors.New("sweep interval must be positive")
	}

	if cfg.Bandit.SweepStrategy != "bernoulli" && cfg.Bandit.SweepStrategy != "gaussian" {
		return nil, fmt.Errorf("unknown sweep strategy %q", cfg.Bandit.SweepStrategy)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getInt(key string, defaultVal int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultVal
	}
	return v
}

func getFloat(key string, defaultVal float64, errs *[]error) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultVal
	}
	return v
}

func getBool(key string, defaultVal bool, errs *[]error) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultVal
	}
	return v
}

func getDuration(key string, defaultVal time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultVal
	}
	return v
}
