package store

import (
	"context"
	"fmt"
)

// tableOrder lists every generated table in dependency order. Children
// always come after the tables they reference.
var tableOrder = []string{
	"institutions",
	"customers",
	"credentials",
	"accounts",
	"account_owners",
	"transactions",
	"loans",
	"payments",
	"service_sessions",
}

// idColumns maps tables to their surrogate-key column, for RETURNING
// clauses on postgres.
var idColumns = map[string]string{
	"institutions":     "institution_id",
	"customers":        "customer_id",
	"credentials":      "credential_id",
	"accounts":         "account_id",
	"transactions":     "transaction_id",
	"loans":            "loan_id",
	"payments":         "payment_id",
	"service_sessions": "session_id",
}

func idColumn(table string) string {
	if col, ok := idColumns[table]; ok {
		return col
	}
	return "id"
}

// TableOrder exposes the dependency order for callers that walk every
// table, e.g. the post-run summary.
func TableOrder() []string {
	out := make([]string, len(tableOrder))
	copy(out, tableOrder)
	return out
}

func (s *Store) pkType() string {
	switch s.provider {
	case "postgresql", "postgres":
		return "BIGSERIAL PRIMARY KEY"
	case "mysql":
		return "BIGINT PRIMARY KEY AUTO_INCREMENT"
	default:
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
}

// CreateSchema creates all dataset tables and their indexes.
func (s *Store) CreateSchema(ctx context.Context) error {
	pk := s.pkType()

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS institutions (
			institution_id %s,
			name TEXT NOT NULL,
			routing_code VARCHAR(16) UNIQUE NOT NULL,
			country TEXT NOT NULL,
			city TEXT NOT NULL,
			founded_date DATE
		)`, pk),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS customers (
			customer_id %s,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			date_of_birth DATE NOT NULL,
			identity_hash VARCHAR(64) UNIQUE NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			address TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			zip_code VARCHAR(10) NOT NULL,
			customer_since DATE NOT NULL,
			credit_score INTEGER,
			annual_income DECIMAL(12,2),
			employment_status TEXT,
			is_pep BOOLEAN DEFAULT FALSE,
			risk_rating VARCHAR(8) DEFAULT 'LOW'
		)`, pk),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS credentials (
			credential_id %s,
			customer_id BIGINT NOT NULL,
			username VARCHAR(64) UNIQUE NOT NULL,
			password_hash VARCHAR(64) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			last_login TIMESTAMP,
			is_active BOOLEAN DEFAULT TRUE,
			failed_login_attempts INTEGER DEFAULT 0,
			two_factor_enabled BOOLEAN DEFAULT FALSE,
			FOREIGN KEY (customer_id) REFERENCES customers(customer_id)
		)`, pk),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS accounts (
			account_id %s,
			account_number VARCHAR(20) UNIQUE NOT NULL,
			institution_id BIGINT NOT NULL,
			account_type VARCHAR(16) NOT NULL,
			balance DECIMAL(15,2) NOT NULL,
			currency VARCHAR(3) DEFAULT 'USD',
			opened_date DATE NOT NULL,
			closed_date DATE,
			status VARCHAR(8) DEFAULT 'ACTIVE',
			interest_rate DECIMAL(6,4) DEFAULT 0,
			overdraft_limit DECIMAL(10,2) DEFAULT 0,
			FOREIGN KEY (institution_id) REFERENCES institutions(institution_id)
		)`, pk),

		`CREATE TABLE IF NOT EXISTS account_owners (
			account_id BIGINT NOT NULL,
			customer_id BIGINT NOT NULL,
			relationship_type VARCHAR(16) NOT NULL,
			added_date DATE NOT NULL,
			PRIMARY KEY (account_id, customer_id),
			FOREIGN KEY (account_id) REFERENCES accounts(account_id),
			FOREIGN KEY (customer_id) REFERENCES customers(customer_id)
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS transactions (
			transaction_id %s,
			account_id BIGINT NOT NULL,
			transaction_type VARCHAR(16) NOT NULL,
			amount DECIMAL(15,2) NOT NULL,
			balance_after DECIMAL(15,2) NOT NULL,
			transaction_date TIMESTAMP NOT NULL,
			description TEXT,
			category VARCHAR(32),
			merchant_name TEXT,
			reference_number VARCHAR(32) UNIQUE,
			related_transaction_id BIGINT,
			location TEXT,
			ip_address VARCHAR(15),
			device_id VARCHAR(36),
			is_flagged BOOLEAN DEFAULT FALSE,
			FOREIGN KEY (account_id) REFERENCES accounts(account_id)
		)`, pk),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS loans (
			loan_id %s,
			customer_id BIGINT NOT NULL,
			institution_id BIGINT NOT NULL,
			loan_type VARCHAR(16) NOT NULL,
			principal_amount DECIMAL(15,2) NOT NULL,
			interest_rate DECIMAL(6,4) NOT NULL,
			term_months INTEGER NOT NULL,
			monthly_payment DECIMAL(12,2) NOT NULL,
			remaining_balance DECIMAL(15,2) NOT NULL,
			origination_date DATE NOT NULL,
			maturity_date DATE NOT NULL,
			status VARCHAR(16) DEFAULT 'ACTIVE',
			collateral_value DECIMAL(15,2),
			collateral_type VARCHAR(16),
			delinquency_days INTEGER DEFAULT 0,
			FOREIGN KEY (customer_id) REFERENCES customers(customer_id),
			FOREIGN KEY (institution_id) REFERENCES institutions(institution_id)
		)`, pk),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS payments (
			payment_id %s,
			loan_id BIGINT NOT NULL,
			payment_date DATE NOT NULL,
			scheduled_date DATE NOT NULL,
			amount DECIMAL(12,2) NOT NULL,
			principal_paid DECIMAL(12,2) NOT NULL,
			interest_paid DECIMAL(12,2) NOT NULL,
			late_fee DECIMAL(10,2) DEFAULT 0,
			payment_method VARCHAR(16),
			transaction_id BIGINT,
			is_reversed BOOLEAN DEFAULT FALSE,
			reversal_reason TEXT,
			FOREIGN KEY (loan_id) REFERENCES loans(loan_id)
		)`, pk),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS service_sessions (
			session_id %s,
			customer_id BIGINT NOT NULL,
			credential_id BIGINT,
			session_start TIMESTAMP NOT NULL,
			session_end TIMESTAMP,
			channel VARCHAR(8) NOT NULL,
			agent_id VARCHAR(16),
			topic VARCHAR(24),
			sentiment_score DECIMAL(3,2),
			resolution_status VARCHAR(16),
			transcript TEXT,
			FOREIGN KEY (customer_id) REFERENCES customers(customer_id),
			FOREIGN KEY (credential_id) REFERENCES credentials(credential_id)
		)`, pk),

		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_loan ON payments(loan_id)`,
		`CREATE INDEX IF NOT EXISTS idx_account_owners_customer ON account_owners(customer_id)`,
	}

	for _, stmt := range statements {
		if err := s.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
