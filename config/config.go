package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	AppPort string
	AppMode string
	AppEnv  string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	DBTimeout  time.Duration

	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	AuthRateLimit   int
	AuthRateWindow  time.Duration
	ProfileCacheTTL time.Duration

	ClarifaiAPIKey       string
	ClarifaiBaseURL      string
	ClarifaiUserID       string
	ClarifaiAppID        string
	ClarifaiModelID      string
	ClarifaiModelVersion string
	ClarifaiTimeout      time.Duration

	BcryptCost         int
	CORSAllowedOrigins []string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppMode: getEnv("APP_MODE", "debug"),
		AppEnv:  getEnv("APP_ENV", EnvProduction),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "facebrain"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBTimeout:  getEnvAsMillis("DB_TIMEOUT_MS", 5000),

		RedisEnabled:  getEnvAsBool("REDIS_ENABLED", false),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		AuthRateLimit:   getEnvAsInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow:  time.Duration(getEnvAsInt("AUTH_RATE_WINDOW_SEC", 60)) * time.Second,
		ProfileCacheTTL: time.Duration(getEnvAsInt("PROFILE_CACHE_TTL_SEC", 300)) * time.Second,

		ClarifaiAPIKey:       getEnv("CLARIFAI_API_KEY", ""),
		ClarifaiBaseURL:      getEnv("CLARIFAI_BASE_URL", "https://api.clarifai.com"),
		ClarifaiUserID:       getEnv("CLARIFAI_USER_ID", "clarifai"),
		ClarifaiAppID:        getEnv("CLARIFAI_APP_ID", "main"),
		ClarifaiModelID:      getEnv("CLARIFAI_MODEL_ID", "face-detection"),
		ClarifaiModelVersion: getEnv("CLARIFAI_MODEL_VERSION", "6dc7e46bc9124c5c8824be4822abe105"),
		ClarifaiTimeout:      getEnvAsMillis("CLARIFAI_TIMEOUT_MS", 10000),

		BcryptCost:         getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// IsDevelopment reports whether internal error detail may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Millisecond
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
