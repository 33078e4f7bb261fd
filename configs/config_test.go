package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		PostgresURI: "postgres://localhost/crosspost",
		RedisURI:    "localhost:6379",
		SecretKey:   strings.Repeat("k", 32),
		R2: R2{
			AccountID:  "acct",
			AccessKey:  "access",
			SecretKey:  "secret",
			BucketName: "bucket",
		},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsMissingRequiredValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"postgres uri", func(c *Config) { c.PostgresURI = "" }},
		{"redis uri", func(c *Config) { c.RedisURI = "" }},
		{"secret key", func(c *Config) { c.SecretKey = "" }},
		{"r2 account id", func(c *Config) { c.R2.AccountID = "" }},
		{"r2 bucket", func(c *Config) { c.R2.BucketName = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateRejectsBadSecretKeyLength(t *testing.T) {
	for _, n := range []int{1, 15, 17, 31, 33} {
		cfg := validConfig()
		cfg.SecretKey = strings.Repeat("k", n)
		assert.Error(t, cfg.Validate(), "length %d must be rejected", n)
	}
	for _, n := range []int{16, 24, 32} {
		cfg := validConfig()
		cfg.SecretKey = strings.Repeat("k", n)
		assert.NoError(t, cfg.Validate(), "length %d must be accepted", n)
	}
}

func TestLoadConfigEnvOverridesDefaults(t *testing.T) {
	t.Setenv("TIKTOK_API_BASE_URL", "http://127.0.0.1:9999/v2")
	t.Setenv("X_CHAR_LIMIT", "400")

	cfg := LoadConfig()
	assert.Equal(t, "http://127.0.0.1:9999/v2", cfg.TiktokAPIBaseURL)
	assert.Equal(t, 400, cfg.XCharLimit)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, 300, cfg.BlueskyCharLimit)
	assert.Contains(t, cfg.GraphAPIBaseURL, "graph.facebook.com")
	assert.Contains(t, cfg.PinterestAPIBaseURL, "api.pinterest.com")
}
