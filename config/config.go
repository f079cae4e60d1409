package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the server reads from the environment.
type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string
	Storage       string // "mongo" or "memory"
	CloudinaryURL string
	JWTSecret     string
	ShareBaseURL  string
	GinMode       string
	Env           string
}

// Load reads a .env file if present and builds the config from the
// environment. Missing optional values fall back to dev defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:          getenv("PORT", "8080"),
		MongoURI:      getenv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase: getenv("MONGODB_DB", "linkup"),
		Storage:       getenv("STORAGE", "mongo"),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		ShareBaseURL:  os.Getenv("SHARE_BASE_URL"),
		GinMode:       os.Getenv("GIN_MODE"),
		Env:           getenv("APP_ENV", "development"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
