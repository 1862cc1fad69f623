package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaultsOverFile(t *testing.T) {
	path := writeTempConfig(t, `
database:
  connectionString: "postgres://localhost/docworker"
s3:
  url: "http://localhost:9000"
  accessKeyId: "key"
  secretAccessKey: "secret"
  bucket: "documents"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.QueueChannel != "document_queue_channel" {
		t.Fatalf("QueueChannel = %q, want default", cfg.Database.QueueChannel)
	}
	if cfg.Documents.NamingStrategy != "uuid" {
		t.Fatalf("NamingStrategy = %q, want default uuid", cfg.Documents.NamingStrategy)
	}
	if cfg.S3.Bucket != "documents" {
		t.Fatalf("Bucket = %q, want documents", cfg.S3.Bucket)
	}
}

func TestLoad_MissingRequiredFieldFails(t *testing.T) {
	path := writeTempConfig(t, `
database:
  connectionString: "postgres://localhost/docworker"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load() error = nil, want validation failure for missing s3 fields")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeTempConfig(t, `
database:
  connectionString: "postgres://localhost/docworker"
s3:
  url: "http://localhost:9000"
  accessKeyId: "key"
  secretAccessKey: "secret"
  bucket: "documents"
`)

	t.Setenv("DOCWORKER_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_InvalidNamingStrategy(t *testing.T) {
	path := writeTempConfig(t, `
database:
  connectionString: "postgres://localhost/docworker"
s3:
  url: "http://localhost:9000"
  accessKeyId: "key"
  secretAccessKey: "secret"
  bucket: "documents"
documents:
  namingStrategy: "bogus"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load() error = nil, want failure for invalid naming strategy")
	}
}
