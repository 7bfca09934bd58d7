package config

import (
	"os"
	"strconv"
	"time"
)

// Config bundles everything the chat core reads from the environment.
type Config struct {
	// ListenAddr is the HTTP listen address of the conversational surface.
	ListenAddr string

	// BackendEndpoint is the base URL of the job backend (workflow, worker,
	// event status and download routes).
	BackendEndpoint string

	// OpenAIAPIKey / OpenAIModel configure the language-model collaborator.
	OpenAIAPIKey string
	OpenAIModel  string

	// YouTubeAPIKey authorizes video duration lookups.
	YouTubeAPIKey string

	// StalenessThreshold is how long a job may run past its recorded start
	// before polling gives up with an ambiguous timeout. Set via
	// TIMEOUT_IN_MINUTES; defaults to 5 minutes.
	StalenessThreshold time.Duration
}

// Load reads the configuration from environment variables, applying defaults
// for everything optional.
func Load() Config {
	return Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		BackendEndpoint:    getEnv("BACKEND_ENDPOINT", "http://localhost:7860"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o"),
		YouTubeAPIKey:      getEnv("YOUTUBE_API_KEY", ""),
		StalenessThreshold: time.Duration(getEnvAsInt("TIMEOUT_IN_MINUTES", 5)) * time.Minute,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
