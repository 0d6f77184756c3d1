// Package storage provides the snapshot store implementations: a SQLite
// repository for durable state and a JSON file store for lightweight
// setups.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fairshare/internal/core"
	"fairshare/internal/snapshot"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// Ensure interface conformance
var _ snapshot.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads the persisted snapshot. Row-level corruption (bad dates,
// non-positive amounts) is skipped with a warning rather than failing
// startup; the ledger revalidates everything on restore anyway.
func (r *SQLiteRepository) Load(ctx context.Context) (snapshot.Snapshot, error) {
	s := snapshot.Empty()

	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM participants ORDER BY position")
	if err != nil {
		return s, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return s, fmt.Errorf("scan participant: %w", err)
		}
		s.Participants = append(s.Participants, name)
	}
	if err := rows.Err(); err != nil {
		return s, fmt.Errorf("iterate participants: %w", err)
	}

	expRows, err := r.db.QueryContext(ctx,
		"SELECT id, payer, description, amount, expense_date FROM expenses ORDER BY position")
	if err != nil {
		return s, fmt.Errorf("query expenses: %w", err)
	}
	defer expRows.Close()
	for expRows.Next() {
		var e core.Expense
		var dateStr string
		if err := expRows.Scan(&e.ID, &e.Payer, &e.Description, &e.Amount, &dateStr); err != nil {
			return s, fmt.Errorf("scan expense: %w", err)
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			slog.WarnContext(ctx, "Skipping expense with unparseable date",
				"id", e.ID, "date", dateStr)
			continue
		}
		e.Date = date
		s.Expenses = append(s.Expenses, e)
	}
	if err := expRows.Err(); err != nil {
		return s, fmt.Errorf("iterate expenses: %w", err)
	}

	var darkMode int64
	err = r.db.QueryRowContext(ctx,
		"SELECT currency_code, dark_mode FROM settings WHERE id = 1").
		Scan(&s.CurrencyCode, &darkMode)
	switch {
	case err == sql.ErrNoRows:
		// First start, defaults apply.
	case err != nil:
		return s, fmt.Errorf("query settings: %w", err)
	default:
		s.DarkMode = darkMode != 0
	}
	if s.CurrencyCode == "" {
		s.CurrencyCode = snapshot.DefaultCurrency
	}

	return s, nil
}

// Save replaces the persisted snapshot in a single transaction, the
// durable equivalent of the original single-blob overwrite.
func (r *SQLiteRepository) Save(ctx context.Context, s snapshot.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM participants"); err != nil {
		return fmt.Errorf("clear participants: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses"); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}

	for i, name := range s.Participants {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO participants (position, name) VALUES (?, ?)",
			i, name); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}
	for i, e := range s.Expenses {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expenses (id, payer, description, amount, expense_date, position) VALUES (?, ?, ?, ?, ?, ?)",
			e.ID, e.Payer, e.Description, e.Amount, e.Date.Format(dateLayout), i); err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
	}

	darkMode := 0
	if s.DarkMode {
		darkMode = 1
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO settings (id, currency_code, dark_mode) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET currency_code = excluded.currency_code, dark_mode = excluded.dark_mode`,
		s.CurrencyCode, darkMode); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved to SQLite",
		"participants", len(s.Participants),
		"expenses", len(s.Expenses))

	return nil
}
