package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	AppPort        string // HTTP listen port
	DatabaseURL    string // Postgres DSN for the document store
	RedisAddr      string // Redis server address
	RedisPass      string // Redis password
	RedisDB        int    // Redis database number
	JWTSecret      string // Session token signing secret
	AuthServiceURL string // External identity service base URL (empty = local provider)
	AuthToken      string // Service token for the identity service
	AllowedOrigins string // Comma-separated CORS origins
	IsProd         bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "5300"
	}
	return &Config{
		AppPort:        port,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPass:      os.Getenv("REDIS_PASS"),
		RedisDB:        redisDB,
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AuthServiceURL: os.Getenv("AUTH_SERVICE_URL"),
		AuthToken:      os.Getenv("AUTH_SERVICE_TOKEN"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		IsProd:         os.Getenv("IS_PROD") == "true",
	}
}
