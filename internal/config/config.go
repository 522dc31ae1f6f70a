package config

import (
	"fmt"
	"os"
	"time"

	"github.com/alfredjeanlab/adcl/internal/model"
)

type Config struct {
	DatabaseURL    string              // ADCL_DATABASE_URL (required)
	GRPCAddr       string              // ADCL_GRPC_ADDR (default ":9090")
	HTTPAddr       string              // ADCL_HTTP_ADDR (default ":8080")
	NATSURL        string              // ADCL_NATS_URL (optional, empty = no events)
	AuthToken      string              // ADCL_AUTH_TOKEN (optional, empty = auth disabled)
	DefaultDisplay model.DisplayOption // ADCL_DEFAULT_DISPLAY (default "compact")

	// Export settings
	ExportInterval   time.Duration // ADCL_EXPORT_INTERVAL (default 0 = disabled)
	ExportS3Bucket   string        // ADCL_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Endpoint string        // ADCL_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string        // ADCL_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Key      string        // ADCL_EXPORT_S3_KEY (default "adcl/changelog.jsonl")
	ExportGitRepo    string        // ADCL_EXPORT_GIT_REPO (enables git when set; path to clone)
	ExportGitFile    string        // ADCL_EXPORT_GIT_FILE (default "changelog.jsonl")
	ExportGitBranch  string        // ADCL_EXPORT_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:      os.Getenv("ADCL_DATABASE_URL"),
		GRPCAddr:         envOrDefault("ADCL_GRPC_ADDR", ":9090"),
		HTTPAddr:         envOrDefault("ADCL_HTTP_ADDR", ":8080"),
		NATSURL:          os.Getenv("ADCL_NATS_URL"),
		AuthToken:        os.Getenv("ADCL_AUTH_TOKEN"),
		ExportS3Bucket:   os.Getenv("ADCL_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("ADCL_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("ADCL_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Key:      envOrDefault("ADCL_EXPORT_S3_KEY", "adcl/changelog.jsonl"),
		ExportGitRepo:    os.Getenv("ADCL_EXPORT_GIT_REPO"),
		ExportGitFile:    envOrDefault("ADCL_EXPORT_GIT_FILE", "changelog.jsonl"),
		ExportGitBranch:  envOrDefault("ADCL_EXPORT_GIT_BRANCH", "main"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("ADCL_DATABASE_URL is required")
	}

	display, err := model.ParseDisplayOption(os.Getenv("ADCL_DEFAULT_DISPLAY"))
	if err != nil {
		return nil, fmt.Errorf("ADCL_DEFAULT_DISPLAY: %w", err)
	}
	if display == model.DisplayGraph {
		return nil, fmt.Errorf("ADCL_DEFAULT_DISPLAY: graph has no tree view")
	}
	c.DefaultDisplay = display

	if s := os.Getenv("ADCL_EXPORT_INTERVAL"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("ADCL_EXPORT_INTERVAL: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("ADCL_EXPORT_INTERVAL: must not be negative")
		}
		c.ExportInterval = d
	}

	return c, nil
}

// ExportEnabled reports whether the export scheduler should run.
func (c *Config) ExportEnabled() bool {
	return c.ExportInterval > 0 && (c.ExportS3Bucket != "" || c.ExportGitRepo != "")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
