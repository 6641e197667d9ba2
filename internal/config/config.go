package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

const FileName = "bankforge.config.json"

type Config struct {
	Version        string   `json:"version" mapstructure:"version"`
	Database       Database `json:"database" mapstructure:"database"`
	Generate       Generate `json:"generate" mapstructure:"generate"`
	ReportPath     string   `json:"report_path" mapstructure:"report_path"`
	AnomalyProfile string   `json:"anomaly_profile,omitempty" mapstructure:"anomaly_profile"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

// Generate holds the record counts and the seed for a run. The counts
// are part of the reproducibility contract: changing any of them
// changes every downstream draw.
type Generate struct {
	Seed            int64   `json:"seed" mapstructure:"seed"`
	Customers       int     `json:"customers" mapstructure:"customers"`
	Transactions    int     `json:"transactions" mapstructure:"transactions"`
	Sessions        int     `json:"sessions" mapstructure:"sessions"`
	LoanSample      int     `json:"loan_sample" mapstructure:"loan_sample"`
	CredentialRatio float64 `json:"credential_ratio" mapstructure:"credential_ratio"`
}

func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Database: Database{
			Provider: "sqlite",
			URLEnv:   "DATABASE_URL",
		},
		Generate: Generate{
			Seed:            42,
			Customers:       500,
			Transactions:    5000,
			Sessions:        1000,
			LoanSample:      200,
			CredentialRatio: 0.8,
		},
		ReportPath: "anomaly_report.txt",
	}
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = def.Database.Provider
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = def.Database.URLEnv
	}
	if cfg.Generate.Customers == 0 {
		cfg.Generate.Customers = def.Generate.Customers
	}
	if cfg.Generate.Transactions == 0 {
		cfg.Generate.Transactions = def.Generate.Transactions
	}
	if cfg.Generate.Sessions == 0 {
		cfg.Generate.Sessions = def.Generate.Sessions
	}
	if cfg.Generate.LoanSample == 0 {
		cfg.Generate.LoanSample = def.Generate.LoanSample
	}
	if cfg.Generate.CredentialRatio == 0 {
		cfg.Generate.CredentialRatio = def.Generate.CredentialRatio
	}
	if cfg.ReportPath == "" {
		cfg.ReportPath = def.ReportPath
	}
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) Validate() error {
	supportedProviders := []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v",
			c.Database.Provider, supportedProviders)
	}

	if c.Generate.Customers <= 0 {
		return fmt.Errorf("generate.customers must be positive")
	}
	if c.Generate.Transactions < 0 || c.Generate.Sessions < 0 {
		return fmt.Errorf("record counts must not be negative")
	}
	if c.Generate.LoanSample > c.Generate.Customers {
		return fmt.Errorf("generate.loan_sample (%d) exceeds generate.customers (%d)",
			c.Generate.LoanSample, c.Generate.Customers)
	}
	if c.Generate.CredentialRatio <= 0 || c.Generate.CredentialRatio > 1 {
		return fmt.Errorf("generate.credential_ratio must be in (0, 1]")
	}
	return nil
}

// IsInitialized reports whether a config file exists in the working
// directory.
func IsInitialized() bool {
	_, err := os.Stat(FileName)
	return err == nil
}

// InitializeProject writes the default config file and a starter .env.
// It refuses to overwrite an existing config.
func InitializeProject() error {
	if IsInitialized() {
		return fmt.Errorf("project already initialized: %s exists", FileName)
	}

	data, err := json.MarshalIndent(DefaultConfig(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(FileName, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		env := "DATABASE_URL=sqlite://banking_system.db\n"
		if err := os.WriteFile(".env", []byte(env), 0644); err != nil {
			return fmt.Errorf("failed to write .env: %w", err)
		}
	}
	return nil
}
