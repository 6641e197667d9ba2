package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the relational sink the generators write to. The pipeline
// depends only on insertion order and on reading back previously
// committed identifiers; everything engine-specific (driver, placeholder
// format, id retrieval) is kept here.
type Store struct {
	db       *sql.DB
	provider string
	qb       sq.StatementBuilderType
	tx       *sql.Tx
}

// Open connects to the database for the given provider. The sqlite://
// prefix is tolerated on sqlite URLs.
func Open(provider, url string) (*Store, error) {
	var driverName string
	switch provider {
	case "postgresql", "postgres":
		driverName = "pgx"
	case "mysql":
		driverName = "mysql"
	case "sqlite", "sqlite3":
		driverName = "sqlite3"
		url = strings.TrimPrefix(url, "sqlite://")
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", provider)
	}

	db, err := sql.Open(driverName, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, provider: provider, qb: builderFor(provider)}

	if driverName == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return s, nil
}

func builderFor(provider string) sq.StatementBuilderType {
	switch provider {
	case "postgresql", "postgres":
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	default:
		return sq.StatementBuilder.PlaceholderFormat(sq.Question)
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Provider() string {
	return s.provider
}

// Builder returns a statement builder with the provider's placeholder
// format, for stages that read back committed rows.
func (s *Store) Builder() sq.StatementBuilderType {
	return s.qb
}

// Begin opens the per-stage transaction. Each generation stage commits
// before the next begins, because later stages query earlier ids.
func (s *Store) Begin(ctx context.Context) error {
	if s.tx != nil {
		return fmt.Errorf("transaction already open")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}

func (s *Store) Commit() error {
	if s.tx == nil {
		return fmt.Errorf("no open transaction")
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Rollback() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback()
	s.tx = nil
	return err
}

func (s *Store) execer() execer {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// InsertMany inserts the rows and returns the surrogate ids the store
// assigned, in insertion order. Postgres uses RETURNING; sqlite and
// mysql read LastInsertId per row.
func (s *Store) InsertMany(ctx context.Context, table string, columns []string, rows [][]interface{}) ([]int64, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(rows))
	usesReturning := s.provider == "postgresql" || s.provider == "postgres"

	for _, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row has %d values for %d columns in %s", len(row), len(columns), table)
		}
		builder := s.qb.Insert(table).Columns(columns...).Values(row...)

		if usesReturning {
			query, args, err := builder.Suffix("RETURNING " + idColumn(table)).ToSql()
			if err != nil {
				return nil, fmt.Errorf("failed to build insert for %s: %w", table, err)
			}
			var id int64
			if err := s.execer().QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
				return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
			}
			ids = append(ids, id)
			continue
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build insert for %s: %w", table, err)
		}
		res, err := s.execer().ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read inserted id for %s: %w", table, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// InsertRows inserts rows into a table without a surrogate key, such
// as the ownership junction table.
func (s *Store) InsertRows(ctx context.Context, table string, columns []string, rows [][]interface{}) error {
	for _, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("row has %d values for %d columns in %s", len(row), len(columns), table)
		}
		query, args, err := s.qb.Insert(table).Columns(columns...).Values(row...).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert for %s: %w", table, err)
		}
		if _, err := s.execer().ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

// Select runs a squirrel select against the store. The caller owns the
// returned rows.
func (s *Store) Select(ctx context.Context, builder sq.SelectBuilder) (*sql.Rows, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return s.execer().QueryContext(ctx, query, args...)
}

// QueryRow runs a squirrel select expected to return a single row.
func (s *Store) QueryRow(ctx context.Context, builder sq.SelectBuilder) (*sql.Row, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return s.execer().QueryRowContext(ctx, query, args...), nil
}

// Count returns the row count of a table. Used for referential-gap
// preconditions before a stage writes child records.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	row, err := s.QueryRow(ctx, s.qb.Select("COUNT(*)").From(table))
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// Exec runs a raw statement outside the squirrel builders, for DDL and
// maintenance.
func (s *Store) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := s.execer().ExecContext(ctx, query, args...)
	return err
}

// UpdateAccountBalance syncs a committed account's balance to the final
// running balance computed by the transaction stage. This is the one
// revisit of an earlier stage's rows: it keeps the stored balance equal
// to balance_after of the account's latest transaction.
func (s *Store) UpdateAccountBalance(ctx context.Context, accountID int64, balance interface{}) error {
	query, args, err := s.qb.Update("accounts").
		Set("balance", balance).
		Where(sq.Eq{"account_id": accountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build balance update: %w", err)
	}
	if _, err := s.execer().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update balance for account %d: %w", accountID, err)
	}
	return nil
}

// ClearAll deletes every generated row in reverse dependency order so a
// run can start from an empty dataset.
func (s *Store) ClearAll(ctx context.Context) error {
	for i := len(tableOrder) - 1; i >= 0; i-- {
		table := tableOrder[i]
		if err := s.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
		if s.provider == "sqlite" || s.provider == "sqlite3" {
			// reset AUTOINCREMENT counters so ids restart at 1
			s.Exec(ctx, "DELETE FROM sqlite_sequence WHERE name = ?", table)
		}
	}
	return nil
}
