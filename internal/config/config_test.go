package config

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Database.Provider != "sqlite" {
		t.Errorf("Expected database provider to be 'sqlite', got '%s'", config.Database.Provider)
	}

	if config.Database.URLEnv != "DATABASE_URL" {
		t.Errorf("Expected database url_env to be 'DATABASE_URL', got '%s'", config.Database.URLEnv)
	}

	if config.Generate.Seed != 42 {
		t.Errorf("Expected seed to be 42, got %d", config.Generate.Seed)
	}

	if config.Generate.Customers != 500 {
		t.Errorf("Expected customers to be 500, got %d", config.Generate.Customers)
	}

	if config.Generate.Transactions != 5000 {
		t.Errorf("Expected transactions to be 5000, got %d", config.Generate.Transactions)
	}

	if config.ReportPath != "anomaly_report.txt" {
		t.Errorf("Expected report_path to be 'anomaly_report.txt', got '%s'", config.ReportPath)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Database.Provider = "mongodb"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for unsupported provider")
	}

	cfg = DefaultConfig()
	cfg.Generate.LoanSample = cfg.Generate.Customers + 1
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error when loan_sample exceeds customers")
	}

	cfg = DefaultConfig()
	cfg.Generate.CredentialRatio = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero credential_ratio")
	}

	cfg = DefaultConfig()
	cfg.Generate.CredentialRatio = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for credential_ratio above 1")
	}

	cfg = DefaultConfig()
	cfg.Generate.Customers = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero customers")
	}
}

func TestGetDatabaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.URLEnv = "BANKFORGE_TEST_DB_URL"

	os.Unsetenv("BANKFORGE_TEST_DB_URL")
	if _, err := cfg.GetDatabaseURL(); err == nil {
		t.Error("Expected error when env var is unset")
	}

	os.Setenv("BANKFORGE_TEST_DB_URL", "sqlite://test.db")
	defer os.Unsetenv("BANKFORGE_TEST_DB_URL")

	url, err := cfg.GetDatabaseURL()
	if err != nil {
		t.Fatalf("GetDatabaseURL failed: %v", err)
	}
	if url != "sqlite://test.db" {
		t.Errorf("Expected 'sqlite://test.db', got '%s'", url)
	}
}

func TestInitializeProject(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "bankforge-test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}
	defer os.Chdir(originalDir)

	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	if err := InitializeProject(); err != nil {
		t.Fatalf("Failed to initialize project: %v", err)
	}

	if _, err := os.Stat(FileName); err != nil {
		t.Errorf("Config file was not created: %v", err)
	}
	if _, err := os.Stat(".env"); err != nil {
		t.Errorf(".env file was not created: %v", err)
	}

	if err := InitializeProject(); err == nil {
		t.Error("Expected error when project is already initialized")
	}
}
