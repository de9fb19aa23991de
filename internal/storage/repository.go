// Package storage persists the latest normalized snapshot in SQLite so the
// API can serve data between refresh cycles and across restarts.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"homespend/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNoRefresh is returned when no refresh has been recorded yet.
var ErrNoRefresh = errors.New("no refresh recorded")

const dateLayout = "2006-01-02"

// RefreshRecord describes one completed snapshot replacement.
type RefreshRecord struct {
	RefreshedAt time.Time `json:"refreshed_at"`
	Source      string    `json:"source"`
	RowCount    int       `json:"row_count"`
	TotalAmount float64   `json:"total_amount"`
}

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

// ReplaceSnapshot swaps the stored transactions for a fresh set and records
// the refresh, all in one transaction. A failed refresh never leaves the
// snapshot half-written.
func (r *SQLiteRepository) ReplaceSnapshot(ctx context.Context, txs []core.Transaction, rec RefreshRecord) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions (date, description, amount, responsible, card)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		_, err := stmt.ExecContext(ctx,
			t.Date.Format(dateLayout), t.Description, t.Amount, t.Responsible, t.Card)
		if err != nil {
			return fmt.Errorf("insert transaction %q: %w", t.Description, err)
		}
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO refreshes (refreshed_at, source, row_count, total_amount)
		VALUES (?, ?, ?, ?)`,
		rec.RefreshedAt.UTC().Format(time.RFC3339), rec.Source, rec.RowCount, rec.TotalAmount)
	if err != nil {
		return fmt.Errorf("record refresh: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot replaced",
		"source", rec.Source,
		"row_count", rec.RowCount,
		"total_amount", rec.TotalAmount)

	return nil
}

// ListTransactions returns the stored snapshot ordered by date, then by
// insertion order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, description, amount, responsible, card
		FROM transactions
		ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			dateStr string
			t       core.Transaction
		)
		if err := rows.Scan(&dateStr, &t.Description, &t.Amount, &t.Responsible, &t.Card); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", dateStr, err)
		}
		t.Date = core.NewDate(date.Year(), int(date.Month()), date.Day())
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txs, nil
}

// LatestRefresh returns the most recent refresh record, or ErrNoRefresh when
// no refresh has happened yet.
func (r *SQLiteRepository) LatestRefresh(ctx context.Context) (RefreshRecord, error) {
	var (
		rec          RefreshRecord
		refreshedStr string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT refreshed_at, source, row_count, total_amount
		FROM refreshes
		ORDER BY id DESC
		LIMIT 1`).Scan(&refreshedStr, &rec.Source, &rec.RowCount, &rec.TotalAmount)
	if errors.Is(err, sql.ErrNoRows) {
		return RefreshRecord{}, ErrNoRefresh
	}
	if err != nil {
		return RefreshRecord{}, fmt.Errorf("latest refresh: %w", err)
	}

	rec.RefreshedAt, err = time.Parse(time.RFC3339, refreshedStr)
	if err != nil {
		return RefreshRecord{}, fmt.Errorf("parse refresh timestamp %q: %w", refreshedStr, err)
	}

	return rec, nil
}
