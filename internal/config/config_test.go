package config

import (
	"testing"
	"time"

	"github.com/alfredjeanlab/adcl/internal/model"
)

// exportEnvVars lists all export-related env vars that must be cleared between tests.
var exportEnvVars = []string{
	"ADCL_EXPORT_INTERVAL", "ADCL_EXPORT_S3_BUCKET", "ADCL_EXPORT_S3_ENDPOINT",
	"ADCL_EXPORT_S3_REGION", "ADCL_EXPORT_S3_KEY", "ADCL_EXPORT_GIT_REPO",
	"ADCL_EXPORT_GIT_FILE", "ADCL_EXPORT_GIT_BRANCH",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ADCL_DATABASE_URL", "ADCL_GRPC_ADDR", "ADCL_HTTP_ADDR", "ADCL_NATS_URL",
		"ADCL_AUTH_TOKEN", "ADCL_DEFAULT_DISPLAY",
	} {
		t.Setenv(key, "")
	}
	for _, key := range exportEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name         string
		env          map[string]string
		wantErr      bool
		wantGRPCAddr string
		wantHTTPAddr string
		wantNATSURL  string
		wantDisplay  model.DisplayOption
	}{
		{
			name:    "MissingDatabaseURL",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:         "DefaultAddresses",
			env:          map[string]string{"ADCL_DATABASE_URL": "postgres://localhost/adcl"},
			wantGRPCAddr: ":9090",
			wantHTTPAddr: ":8080",
			wantDisplay:  model.DisplayCompactMiddlePackages,
		},
		{
			name: "CustomAddresses",
			env: map[string]string{
				"ADCL_DATABASE_URL":    "postgres://db:5432/adcl",
				"ADCL_GRPC_ADDR":       ":5050",
				"ADCL_HTTP_ADDR":       ":3000",
				"ADCL_NATS_URL":        "nats://localhost:4222",
				"ADCL_DEFAULT_DISPLAY": "Flat Packages",
			},
			wantGRPCAddr: ":5050",
			wantHTTPAddr: ":3000",
			wantNATSURL:  "nats://localhost:4222",
			wantDisplay:  model.DisplayFlattenPackages,
		},
		{
			name: "UnknownDisplay",
			env: map[string]string{
				"ADCL_DATABASE_URL":    "postgres://localhost/adcl",
				"ADCL_DEFAULT_DISPLAY": "sideways",
			},
			wantErr: true,
		},
		{
			name: "GraphDisplay",
			env: map[string]string{
				"ADCL_DATABASE_URL":    "postgres://localhost/adcl",
				"ADCL_DEFAULT_DISPLAY": "graph",
			},
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tc.env["ADCL_DATABASE_URL"] {
				t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, tc.env["ADCL_DATABASE_URL"])
			}
			if cfg.GRPCAddr != tc.wantGRPCAddr {
				t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, tc.wantGRPCAddr)
			}
			if cfg.HTTPAddr != tc.wantHTTPAddr {
				t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, tc.wantHTTPAddr)
			}
			if cfg.NATSURL != tc.wantNATSURL {
				t.Errorf("NATSURL = %q, want %q", cfg.NATSURL, tc.wantNATSURL)
			}
			if cfg.DefaultDisplay != tc.wantDisplay {
				t.Errorf("DefaultDisplay = %q, want %q", cfg.DefaultDisplay, tc.wantDisplay)
			}
		})
	}
}

func TestLoadExportDefaults(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("ADCL_DATABASE_URL", "postgres://localhost/adcl")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ExportInterval != 0 {
		t.Errorf("ExportInterval = %v, want 0", cfg.ExportInterval)
	}
	if cfg.ExportS3Region != "us-east-1" {
		t.Errorf("ExportS3Region = %q, want %q", cfg.ExportS3Region, "us-east-1")
	}
	if cfg.ExportS3Key != "adcl/changelog.jsonl" {
		t.Errorf("ExportS3Key = %q, want %q", cfg.ExportS3Key, "adcl/changelog.jsonl")
	}
	if cfg.ExportGitFile != "changelog.jsonl" {
		t.Errorf("ExportGitFile = %q, want %q", cfg.ExportGitFile, "changelog.jsonl")
	}
	if cfg.ExportGitBranch != "main" {
		t.Errorf("ExportGitBranch = %q, want %q", cfg.ExportGitBranch, "main")
	}
	if cfg.ExportEnabled() {
		t.Error("expected export to be disabled by default")
	}
}

func TestLoadExportCustom(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("ADCL_DATABASE_URL", "postgres://localhost/adcl")
	t.Setenv("ADCL_EXPORT_INTERVAL", "10m")
	t.Setenv("ADCL_EXPORT_S3_BUCKET", "my-bucket")
	t.Setenv("ADCL_EXPORT_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("ADCL_EXPORT_S3_REGION", "eu-west-1")
	t.Setenv("ADCL_EXPORT_S3_KEY", "custom/{project}.jsonl")
	t.Setenv("ADCL_EXPORT_GIT_REPO", "/tmp/repo")
	t.Setenv("ADCL_EXPORT_GIT_FILE", "custom.jsonl")
	t.Setenv("ADCL_EXPORT_GIT_BRANCH", "exports")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ExportInterval != 10*time.Minute {
		t.Errorf("ExportInterval = %v, want 10m", cfg.ExportInterval)
	}
	if cfg.ExportS3Bucket != "my-bucket" {
		t.Errorf("ExportS3Bucket = %q", cfg.ExportS3Bucket)
	}
	if cfg.ExportS3Endpoint != "http://minio:9000" {
		t.Errorf("ExportS3Endpoint = %q", cfg.ExportS3Endpoint)
	}
	if cfg.ExportS3Region != "eu-west-1" {
		t.Errorf("ExportS3Region = %q", cfg.ExportS3Region)
	}
	if cfg.ExportS3Key != "custom/{project}.jsonl" {
		t.Errorf("ExportS3Key = %q", cfg.ExportS3Key)
	}
	if cfg.ExportGitRepo != "/tmp/repo" {
		t.Errorf("ExportGitRepo = %q", cfg.ExportGitRepo)
	}
	if cfg.ExportGitFile != "custom.jsonl" {
		t.Errorf("ExportGitFile = %q", cfg.ExportGitFile)
	}
	if cfg.ExportGitBranch != "exports" {
		t.Errorf("ExportGitBranch = %q", cfg.ExportGitBranch)
	}
	if !cfg.ExportEnabled() {
		t.Error("expected export to be enabled")
	}
}

func TestLoadExportInvalidInterval(t *testing.T) {
	for _, v := range []string{"not-a-duration", "-1m"} {
		t.Run(v, func(t *testing.T) {
			clearAllEnv(t)
			t.Setenv("ADCL_DATABASE_URL", "postgres://localhost/adcl")
			t.Setenv("ADCL_EXPORT_INTERVAL", v)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for ADCL_EXPORT_INTERVAL=%q", v)
			}
		})
	}
}

func TestExportEnabledNeedsDestination(t *testing.T) {
	cfg := &Config{ExportInterval: time.Minute}
	if cfg.ExportEnabled() {
		t.Error("expected export without destinations to be disabled")
	}
	cfg.ExportGitRepo = "/tmp/repo"
	if !cfg.ExportEnabled() {
		t.Error("expected git destination to enable export")
	}
}

func TestEnvOrDefault(t *testing.T) {
	for _, tc := range []struct {
		name     string
		key      string
		envVal   string
		fallback string
		want     string
	}{
		{"EmptyUsesDefault", "TEST_ENVDEFAULT_EMPTY", "", "default-val", "default-val"},
		{"SetUsesEnv", "TEST_ENVDEFAULT_SET", "custom", "default-val", "custom"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envVal)
			got := envOrDefault(tc.key, tc.fallback)
			if got != tc.want {
				t.Errorf("envOrDefault(%q, %q) = %q, want %q", tc.key, tc.fallback, got, tc.want)
			}
		})
	}
}
