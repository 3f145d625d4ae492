package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort string
	ServerEnv  string

	// Database
	DatabaseURL string

	// JWT (admin/review endpoints)
	JWTSecretKey string

	// Google Maps (geocoding + places)
	GoogleMapsAPIKey string
	GeocodeTimeout   time.Duration
	PlacesCacheTTL   time.Duration
	GeocodeCacheDays int

	// Instagram probe
	InstagramCacheTTL     time.Duration
	InstagramRateLimitTTL time.Duration
	InstagramTimeout      time.Duration

	// Report rate limiting
	ReportRateWindow time.Duration
	ReportRateMax    int

	// Notifications
	SiteBaseURL       string
	AWSRegion         string
	SMSSenderID       string
	NotifyOnReadyEdit bool

	// OpenTelemetry
	OTELEndpoint string
}

func Load() *Config {
	return &Config{
		// Server
		ServerPort: getEnv("SERVER_PORT", "3000"),
		ServerEnv:  getEnv("SERVER_ENV", "development"),

		// Database - DATABASE_URL first, otherwise built from POSTGRES_* vars
		DatabaseURL: getDatabaseURL(),

		// JWT
		JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),

		// Google Maps
		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		GeocodeTimeout:   time.Duration(getEnvAsInt("GEOCODE_TIMEOUT_MS", 5000)) * time.Millisecond,
		PlacesCacheTTL:   time.Duration(getEnvAsInt("PLACES_CACHE_TTL_MIN", 1440)) * time.Minute,
		GeocodeCacheDays: getEnvAsInt("GEOCODE_CACHE_DAYS", 30),

		// Instagram
		InstagramCacheTTL:     time.Duration(getEnvAsInt("IG_CACHE_TTL_MIN", 1440)) * time.Minute,
		InstagramRateLimitTTL: time.Duration(getEnvAsInt("IG_RATELIMIT_TTL_MIN", 30)) * time.Minute,
		InstagramTimeout:      time.Duration(getEnvAsInt("IG_TIMEOUT_MS", 3000)) * time.Millisecond,

		// Report rate limiting
		ReportRateWindow: time.Duration(getEnvAsInt("REPORT_RATE_WINDOW_SEC", 60)) * time.Second,
		ReportRateMax:    getEnvAsInt("REPORT_RATE_MAX", 5),

		// Notifications
		SiteBaseURL:       getEnv("SITE_BASE_URL", "https://photography.blog"),
		AWSRegion:         getEnv("AWS_REGION", "us-west-2"),
		SMSSenderID:       getEnv("SMS_SENDER_ID", ""),
		NotifyOnReadyEdit: getEnvAsBool("NOTIFY_ON_READY_EDIT", false),

		// OTEL
		OTELEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDatabaseURL returns DATABASE_URL or builds it from individual env vars
func getDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "")
	dbname := getEnv("POSTGRES_DB", "photography_blog")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}
