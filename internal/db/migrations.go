package db

import (
	"context"
	"database/sql"

	"github.com/charmbracelet/log"
)

// Migration represents a single database migration
// Each migration should have a unique ID and an Up function
// that applies the migration.
type Migration struct {
	ID int
	Up func(db *sql.DB) error
}

// migrations is a slice of all migrations to be applied in order.
// Each migration is applied once and recorded in the migrations table.
var migrations = []Migration{
	{
		ID: 1,
		Up: func(db *sql.DB) error {
			_, err := db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(date);
				CREATE INDEX IF NOT EXISTS idx_activities_account ON activities(account_id);
				CREATE INDEX IF NOT EXISTS idx_activities_kind ON activities(kind);
				CREATE INDEX IF NOT EXISTS idx_activities_category ON activities(category);
				CREATE INDEX IF NOT EXISTS idx_splits_activity ON splits(activity_id);
			`)
			return err
		},
	},
}

// ApplyMigrations applies all pending migrations to the database.
func ApplyMigrations(ctx context.Context, db *sql.DB, logger *log.Logger) error {
	// Ensure the migrations table exists
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	// Get already applied migration IDs
	rows, err := db.QueryContext(ctx, `SELECT id FROM migrations`)
	if err != nil {
		return err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return err
		}
		applied[id] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Apply pending migrations
	for _, m := range migrations {
		if applied[m.ID] {
			continue
		}
		logger.Debug("Applying migration", "id", m.ID)
		if err := m.Up(db); err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO migrations (id) VALUES (?)`, m.ID); err != nil {
			return err
		}
		logger.Debug("Migration applied", "id", m.ID)
	}

	return nil
}
