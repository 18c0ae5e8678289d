package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/shopspring/decimal"

	"github.com/lox/qifparse/internal/types"
)

const dbFile = "qif.db"

// DB represents a SQLite database of imported QIF documents
type DB struct {
	db     *sql.DB
	logger *log.Logger
}

// New creates a new database connection
func New(dataDir string, logger *log.Logger) (*DB, error) {
	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them
	dsn := "file:" + filepath.Join(dataDir, dbFile) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d := &DB{
		db:     db,
		logger: logger,
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return d, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS imports (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			auto_switch INTEGER NOT NULL DEFAULT 0,
			imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY,
			import_id TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			credit_limit TEXT NOT NULL DEFAULT '',
			balance_amount TEXT NOT NULL DEFAULT '',
			balance_date TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			import_id TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
			account_id INTEGER REFERENCES accounts(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			header TEXT NOT NULL,
			kind TEXT NOT NULL,
			date TEXT NOT NULL DEFAULT '',
			num TEXT NOT NULL DEFAULT '',
			amount TEXT NOT NULL DEFAULT '',
			cleared TEXT NOT NULL DEFAULT '',
			payee TEXT NOT NULL DEFAULT '',
			memo TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			transfer TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			memorized_type TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL DEFAULT '',
			security TEXT NOT NULL DEFAULT '',
			price TEXT NOT NULL DEFAULT '',
			quantity TEXT NOT NULL DEFAULT '',
			transfer_amount TEXT NOT NULL DEFAULT '',
			commission TEXT NOT NULL DEFAULT '',
			first_line TEXT NOT NULL DEFAULT '',
			search_body TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS splits (
			activity_id INTEGER NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			transfer TEXT NOT NULL DEFAULT '',
			memo TEXT NOT NULL DEFAULT '',
			amount TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (activity_id, position)
		);

		CREATE TABLE IF NOT EXISTS categories (
			import_id TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			income INTEGER NOT NULL DEFAULT 0,
			tax_related INTEGER NOT NULL DEFAULT 0,
			budget TEXT NOT NULL DEFAULT '',
			tax_schedule TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS classes (
			import_id TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS securities (
			import_id TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			symbol TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			goal TEXT NOT NULL DEFAULT ''
		);

		-- Create virtual table for full-text search
		CREATE VIRTUAL TABLE IF NOT EXISTS activities_fts USING fts5(
			search_body,
			content='activities',
			content_rowid='id'
		);

		-- Create triggers to keep FTS table in sync
		CREATE TRIGGER IF NOT EXISTS activities_ai AFTER INSERT ON activities BEGIN
			INSERT INTO activities_fts(rowid, search_body) VALUES (new.id, new.search_body);
		END;

		CREATE TRIGGER IF NOT EXISTS activities_ad AFTER DELETE ON activities BEGIN
			INSERT INTO activities_fts(activities_fts, rowid, search_body) VALUES ('delete', old.id, old.search_body);
		END;
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// isBusy reports whether err is SQLite refusing a write because another
// connection holds the lock
func isBusy(err error) bool {
	return errors.Is(err, sqlite3.BUSY) || errors.Is(err, sqlite3.LOCKED)
}

// StoreQif stores a parsed document under a new import id and returns the id.
// The whole document is written in one SQL transaction; onActivity, if set,
// is called once per activity even when the transaction is retried.
func (d *DB) StoreQif(ctx context.Context, source string, q *types.Qif, onActivity func()) (string, error) {
	importID := uuid.NewString()
	startTime := time.Now()
	d.logger.Debug("Storing QIF document", "import_id", importID, "source", source)

	report := activityReporter(onActivity)
	err := retry.Do(
		func() error {
			return d.storeQif(ctx, importID, source, q, report)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(100*time.Millisecond),
		retry.RetryIf(isBusy),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			d.logger.Warn("Retrying store after busy database", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to store QIF document: %w", err)
	}

	d.logger.Debug("QIF document stored",
		"import_id", importID,
		"accounts", len(q.Accounts()),
		"activities", q.ActivityCount(),
		"duration", time.Since(startTime))
	return importID, nil
}

// activityReporter returns a func taking the number of activities written so
// far in the current attempt. onActivity only fires for activities past the
// furthest point any attempt has reached.
func activityReporter(onActivity func()) func(written int) {
	reported := 0
	return func(written int) {
		for ; reported < written; reported++ {
			if onActivity != nil {
				onActivity()
			}
		}
	}
}

func (d *DB) storeQif(ctx context.Context, importID, source string, q *types.Qif, report func(written int)) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, auto_switch) VALUES (?, ?, ?)`,
		importID, source, q.AutoSwitch,
	); err != nil {
		return fmt.Errorf("failed to insert import: %w", err)
	}

	position := 0
	storeActivity := func(accountID sql.NullInt64, accountName, header string, act types.Activity) error {
		if err := insertActivity(ctx, tx, importID, accountID, accountName, position, header, act); err != nil {
			return err
		}
		position++
		report(position)
		return nil
	}

	for i, a := range q.Accounts() {
		var creditLimit, balanceAmount, balanceDate string
		creditLimit = nullDecimalString(a.CreditLimit)
		if a.Balance != nil {
			balanceAmount = nullDecimalString(a.Balance.Amount)
			balanceDate = types.FormatDate(a.Balance.Date)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (import_id, position, name, type, description, credit_limit, balance_amount, balance_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, importID, i, a.Name, a.Type, a.Description, creditLimit, balanceAmount, balanceDate)
		if err != nil {
			return fmt.Errorf("failed to insert account %q: %w", a.Name, err)
		}
		accountID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get account id: %w", err)
		}
		for _, e := range a.Entries {
			if err := storeActivity(sql.NullInt64{Int64: accountID, Valid: true}, a.Name, e.Header, e.Activity); err != nil {
				return err
			}
		}
	}

	for _, header := range q.Headers() {
		for _, act := range q.Activities(header) {
			if err := storeActivity(sql.NullInt64{}, "", header, act); err != nil {
				return err
			}
		}
	}

	for i, c := range q.Categories {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (import_id, position, name, description, income, tax_related, budget, tax_schedule)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, importID, i, c.Name, c.Description, c.Income, c.TaxRelated, nullDecimalString(c.Budget), c.TaxSchedule); err != nil {
			return fmt.Errorf("failed to insert category %q: %w", c.Name, err)
		}
	}
	for i, c := range q.Classes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO classes (import_id, position, name, description) VALUES (?, ?, ?, ?)`,
			importID, i, c.Name, c.Description,
		); err != nil {
			return fmt.Errorf("failed to insert class %q: %w", c.Name, err)
		}
	}
	for i, s := range q.Securities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO securities (import_id, position, name, symbol, type, goal) VALUES (?, ?, ?, ?, ?, ?)`,
			importID, i, s.Name, s.Symbol, s.Type, s.Goal,
		); err != nil {
			return fmt.Errorf("failed to insert security %q: %w", s.Name, err)
		}
	}

	return tx.Commit()
}

func insertActivity(ctx context.Context, tx *sql.Tx, importID string, accountID sql.NullInt64, accountName string, position int, header string, act types.Activity) error {
	doc := types.ActivityDocument(header, act)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO activities (
			import_id, account_id, position, header, kind,
			date, num, amount, cleared, payee, memo, category, transfer, address,
			memorized_type, action, security, price, quantity, transfer_amount, commission, first_line,
			search_body
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		importID, accountID, position, header, doc.Kind,
		doc.Date, doc.Num, doc.Amount, doc.Cleared, doc.Payee, doc.Memo, doc.Category, doc.Transfer, strings.Join(doc.Address, "\n"),
		doc.MemorizedType, doc.Action, doc.Security, doc.Price, doc.Quantity, doc.TransferAmount, doc.Commission, doc.FirstLine,
		searchBody(accountName, doc),
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	activityID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get activity id: %w", err)
	}

	for i, s := range doc.Splits {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO splits (activity_id, position, category, transfer, memo, amount, address)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, activityID, i, s.Category, s.Transfer, s.Memo, s.Amount, strings.Join(s.Address, "\n")); err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// searchBody collects the free text of an activity for the FTS index
func searchBody(accountName string, doc types.ActivityDoc) string {
	parts := []string{accountName, doc.Payee, doc.Memo, doc.Category, doc.Transfer, doc.Action, doc.Security, doc.FirstLine}
	for _, s := range doc.Splits {
		parts = append(parts, s.Category, s.Transfer, s.Memo)
	}
	var body []string
	for _, p := range parts {
		if p != "" {
			body = append(body, p)
		}
	}
	return strings.Join(body, " ")
}

func nullDecimalString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// Count returns the number of stored activities
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// DB returns the underlying database connection
func (d *DB) DB() *sql.DB {
	return d.db
}
