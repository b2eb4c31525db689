package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Services  ServicesConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	Events    EventsConfig
	Booking   BookingConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// ServicesConfig holds the base URLs of the clinic platform services.
// Each URL already carries the service's API prefix.
type ServicesConfig struct {
	AuthServiceURL    string
	ClinicServiceURL  string
	PatientServiceURL string
	RequestTimeout    time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	Enabled bool
	URL     string
	APIKey  string
}

// EventsConfig selects where booking events are published.
type EventsConfig struct {
	Backend      string // redis, kafka or none
	KafkaBrokers []string
	KafkaTopic   string
}

// BookingConfig holds tunables of the booking workflow
type BookingConfig struct {
	FacilityCacheTTLSeconds int
	LocationTTLSeconds      int
	SessionTTL              time.Duration
	NearbyRadiusKm          int
	PageSize                int
	RateLimitPerMinute      int
	RateLimitBurst          int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Env:            getEnv("APP_ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Services: ServicesConfig{
			AuthServiceURL:    getEnv("AUTH_SERVICE_URL", "http://localhost:8001/api/v1/auth"),
			ClinicServiceURL:  getEnv("CLINIC_SERVICE_URL", "http://localhost:8003/api/v1/clinic-service"),
			PatientServiceURL: getEnv("PATIENT_SERVICE_URL", "http://localhost:8002/api/v1/patient-service"),
			RequestTimeout:    time.Duration(getEnvAsInt("SERVICE_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("AUDIT_DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "dental_booking"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			Enabled: getEnvAsBool("TYPESENSE_ENABLED", false),
			URL:     getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey:  getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Events: EventsConfig{
			Backend:      strings.ToLower(getEnv("EVENTS_BACKEND", "none")),
			KafkaBrokers: getEnvAsList("KAFKA_BROKERS", []string{"localhost:9092"}),
			KafkaTopic:   getEnv("KAFKA_BOOKING_TOPIC", "dental.bookings"),
		},
		Booking: BookingConfig{
			FacilityCacheTTLSeconds: getEnvAsInt("FACILITY_CACHE_TTL_SECONDS", 0),
			LocationTTLSeconds:      getEnvAsInt("LOCATION_TTL_SECONDS", 30*24*60*60),
			SessionTTL:              time.Duration(getEnvAsInt("BOOKING_SESSION_TTL_MINUTES", 30)) * time.Minute,
			NearbyRadiusKm:          getEnvAsInt("NEARBY_RADIUS_KM", 50),
			PageSize:                getEnvAsInt("FACILITY_PAGE_SIZE", 6),
			RateLimitPerMinute:      getEnvAsInt("BOOKING_RATE_LIMIT_PER_MINUTE", 10),
			RateLimitBurst:          getEnvAsInt("BOOKING_RATE_LIMIT_BURST", 3),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "dental-booking-gateway"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Services.validate(); err != nil {
		return nil, err
	}

	switch cfg.Events.Backend {
	case "redis", "kafka", "none":
	default:
		return nil, fmt.Errorf("unsupported EVENTS_BACKEND %q", cfg.Events.Backend)
	}

	return cfg, nil
}

func (c *ServicesConfig) validate() error {
	for name, raw := range map[string]string{
		"AUTH_SERVICE_URL":    c.AuthServiceURL,
		"CLINIC_SERVICE_URL":  c.ClinicServiceURL,
		"PATIENT_SERVICE_URL": c.PatientServiceURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid %s %q", name, raw)
		}
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("SERVICE_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
