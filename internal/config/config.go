package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string

	// Optional caches. Empty disables the cache.
	DatabaseURL        string
	RedisURL           string
	IrradianceCacheTTL time.Duration

	// Upstream data services
	NASAPowerBaseURL string
	OpenMeteoBaseURL string
	HTTPTimeout      time.Duration
	HTTPMaxAttempts  int
	IrradianceRPS    float64
	ElevationRPS     float64

	MaxRadiusKm    float64
	AllowedOrigins []string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	allowedOrigins := strings.Split(
		Get("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		",",
	)
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	return &Config{
		Port:               Get("APP_PORT", "8080"),
		Environment:        Get("ENVIRONMENT", "development"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		IrradianceCacheTTL: GetDuration("IRRADIANCE_CACHE_TTL", 30*24*time.Hour),
		NASAPowerBaseURL:   Get("NASA_POWER_BASE_URL", "https://power.larc.nasa.gov"),
		OpenMeteoBaseURL:   Get("OPEN_METEO_BASE_URL", "https://api.open-meteo.com"),
		HTTPTimeout:        GetDuration("HTTP_TIMEOUT", 10*time.Second),
		HTTPMaxAttempts:    GetInt("HTTP_MAX_ATTEMPTS", 2),
		IrradianceRPS:      GetFloat("IRRADIANCE_RPS", 2),
		ElevationRPS:       GetFloat("ELEVATION_RPS", 5),
		MaxRadiusKm:        GetFloat("MAX_RADIUS_KM", 50),
		AllowedOrigins:     allowedOrigins,
	}
}

// Get returns the value of key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("invalid int for %s, defaulting to %v\n", key, fallback)
		return fallback
	}
	return val
}

func GetFloat(key string, fallback float64) float64 {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		log.Printf("invalid float for %s, defaulting to %v\n", key, fallback)
		return fallback
	}
	return val
}

func GetBool(key string, fallback bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("invalid bool for %s, defaulting to %v\n", key, fallback)
		return fallback
	}
	return val
}

// GetDuration accepts Go duration strings such as "10s" or "720h".
func GetDuration(key string, fallback time.Duration) time.Duration {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("invalid duration for %s, defaulting to %v\n", key, fallback)
		return fallback
	}
	return val
}
