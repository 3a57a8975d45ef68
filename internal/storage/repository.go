package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gastos/internal/core"

	_ "modernc.org/sqlite"
)

// Entry is one journaled expense.
type Entry struct {
	ID       int64
	Sheet    string
	Expense  core.Expense
	SheetRef string
	ChatID   int64
}

// SQLiteRepository keeps a local journal of expenses already appended to
// the spreadsheet.
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

// RecordExpense inserts e and returns its journal ID.
func (r *SQLiteRepository) RecordExpense(ctx context.Context, e Entry) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (sheet, recorded_at, category, note, submitter, amount, sheet_ref, chat_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Sheet,
		e.Expense.Timestamp.Format(time.RFC3339Nano),
		string(e.Expense.Category),
		e.Expense.Note,
		e.Expense.Submitter,
		e.Expense.Amount,
		e.SheetRef,
		e.ChatID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.DebugContext(ctx, "Expense journaled", "id", id, "sheet", e.Sheet, "sheet_ref", e.SheetRef)
	return id, nil
}

// CountBySheet returns how many expenses were journaled for sheet.
func (r *SQLiteRepository) CountBySheet(ctx context.Context, sheet string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses WHERE sheet = ?`, sheet).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}

// ListBySheet returns the journaled expenses of sheet in insertion order.
func (r *SQLiteRepository) ListBySheet(ctx context.Context, sheet string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sheet, recorded_at, category, note, submitter, amount, sheet_ref, chat_id
		FROM expenses WHERE sheet = ? ORDER BY id`, sheet)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			recordedAt string
			category   string
		)
		if err := rows.Scan(&e.ID, &e.Sheet, &recordedAt, &category, &e.Expense.Note,
			&e.Expense.Submitter, &e.Expense.Amount, &e.SheetRef, &e.ChatID); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
		}
		e.Expense.Timestamp = ts
		e.Expense.Category = core.Category(category)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}
