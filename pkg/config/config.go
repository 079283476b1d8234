package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	StorageBucket   string
	Environment     string

	VisionProvider string
	VisionBaseURL  string
	VisionModel    string
	VisionAPIKey   string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),
		Environment:     getEnv("ENVIRONMENT", "development"),
		VisionProvider:  getEnv("VISION_PROVIDER", "openai"),
		VisionBaseURL:   getEnv("VISION_BASE_URL", "https://api.openai.com/v1"),
		VisionModel:     getEnv("VISION_MODEL", "gpt-4o-mini"),
		VisionAPIKey:    getEnv("VISION_API_KEY", ""),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
