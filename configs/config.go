package config

import (
	"fmt"
	"os"
	"strconv"
)

type R2 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

// Config holds everything resolved from the environment. It is built once at
// startup and injected everywhere; nothing reads env vars after LoadConfig.
type Config struct {
	PostgresURI string
	RedisURI    string
	SecretKey   string
	R2          R2

	InstagramClientSecret string
	TiktokClientKey       string
	TiktokClientSecret    string
	GoogleClientID        string
	GoogleClientSecret    string

	// Platform API endpoints. Defaults are the production hosts; tests point
	// them at local servers.
	GraphAPIBaseURL     string
	InstagramAPIBaseURL string
	ThreadsAPIBaseURL   string
	TiktokAPIBaseURL    string
	LinkedInAPIBaseURL  string
	PinterestAPIBaseURL string
	BlueskyBaseURL      string
	XAPIBaseURL         string
	XUploadBaseURL      string

	BlueskyCharLimit int
	XCharLimit       int
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI: getEnv("POSTGRES_URI", ""),
		RedisURI:    getEnv("REDIS_URI", ""),
		SecretKey:   getEnv("SECRET_KEY", ""),
		R2: R2{
			AccountID:     getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			BucketName:    getEnv("R2_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},
		InstagramClientSecret: getEnv("INSTAGRAM_CLIENT_SECRET", ""),
		TiktokClientKey:       getEnv("TIKTOK_CLIENT_KEY", ""),
		TiktokClientSecret:    getEnv("TIKTOK_CLIENT_SECRET", ""),
		GoogleClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:    getEnv("GOOGLE_CLIENT_SECRET", ""),
		GraphAPIBaseURL:       getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v21.0"),
		InstagramAPIBaseURL:   getEnv("INSTAGRAM_API_BASE_URL", "https://graph.instagram.com/v21.0"),
		ThreadsAPIBaseURL:     getEnv("THREADS_API_BASE_URL", "https://graph.threads.net/v1.0"),
		TiktokAPIBaseURL:      getEnv("TIKTOK_API_BASE_URL", "https://open.tiktokapis.com/v2"),
		LinkedInAPIBaseURL:    getEnv("LINKEDIN_API_BASE_URL", "https://api.linkedin.com/v2"),
		PinterestAPIBaseURL:   getEnv("PINTEREST_API_BASE_URL", "https://api.pinterest.com/v5"),
		BlueskyBaseURL:        getEnv("BLUESKY_BASE_URL", "https://bsky.social/xrpc"),
		XAPIBaseURL:           getEnv("X_API_BASE_URL", "https://api.x.com"),
		XUploadBaseURL:        getEnv("X_UPLOAD_BASE_URL", "https://upload.twitter.com"),
		BlueskyCharLimit:      getEnvInt("BLUESKY_CHAR_LIMIT", 300),
		XCharLimit:            getEnvInt("X_CHAR_LIMIT", 280),
	}
}

// Validate fails fast on anything the worker cannot run without.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"POSTGRES_URI", c.PostgresURI},
		{"REDIS_URI", c.RedisURI},
		{"SECRET_KEY", c.SecretKey},
		{"R2_ACCOUNT_ID", c.R2.AccountID},
		{"R2_ACCESS_KEY", c.R2.AccessKey},
		{"R2_SECRET_KEY", c.R2.SecretKey},
		{"R2_BUCKET_NAME", c.R2.BucketName},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required config: %s", r.name)
		}
	}
	if n := len(c.SecretKey); n != 16 && n != 24 && n != 32 {
		return fmt.Errorf("SECRET_KEY must be 16, 24 or 32 bytes, got %d", n)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
