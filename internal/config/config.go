package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	// DocstoreType selects the document-store backend:
	// memory, sqlite, postgres, mysql or mongo.
	DocstoreType string
	DocstorePath string // sqlite file path
	DocstoreURL  string // postgres/mysql connection URL
	MongoURI     string
	MongoDB      string

	SessionSecret   string
	SessionDuration time.Duration

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	Debug bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DocstoreType:    getEnv("DOCSTORE_TYPE", "sqlite"),
		DocstorePath:    getEnv("DOCSTORE_PATH", "./growbrain.db"),
		DocstoreURL:     getEnv("DOCSTORE_URL", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "growbrain"),
		SessionSecret:   getEnv("SESSION_SECRET", "dev-only-secret"),
		SessionDuration: getDuration("SESSION_DURATION", 24*time.Hour),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:    getEnv("SES_FROM_EMAIL", ""),
		SESFromName:     getEnv("SES_FROM_NAME", "GrowBrain"),
		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:8080"),
		Debug:           getBool("DEBUG", false),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
