package archive

import (
	"errors"
	"fmt"
	"time"

	"github.com/LukasBrandt/PaySweep/internal/pkg/env"
)

// Config holds webhook archive configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads archive configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("ARCHIVE_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("ARCHIVE_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("ARCHIVE_REGION", "eu-central-1"),
		BucketName:      env.GetEnv("ARCHIVE_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("ARCHIVE_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("ARCHIVE_ENABLED", "false") == "true",
	}

	// Validate required fields if the archive is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("ARCHIVE_ACCESS_KEY_ID is required when the webhook archive is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("ARCHIVE_SECRET_ACCESS_KEY is required when the webhook archive is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("ARCHIVE_BUCKET_NAME is required when the webhook archive is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if the webhook archive is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// GetObjectKey generates a standardized S3 object key for a webhook event
func (c *Config) GetObjectKey(provider, eventID string, createdAt time.Time) string {
	// Format: webhooks/provider/YYYY/MM/eventID.json
	return fmt.Sprintf("webhooks/%s/%04d/%02d/%s.json", provider, createdAt.Year(), int(createdAt.Month()), eventID)
}

// GetAppEnv returns the current application environment
func GetAppEnv() string {
	return env.GetEnv("APP_ENV", "dev")
}

// GetBucketName returns the bucket name as configured (no automatic prefixing)
func (c *Config) GetBucketName() string {
	return c.BucketName
}
