package exporter

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	apperrors "s38cli/internal/errors"
	"s38cli/pkg/contracts/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS quotes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trade_date TEXT NOT NULL,
	stock_id TEXT NOT NULL,
	stock_name TEXT,
	open_price TEXT,
	high_price TEXT,
	low_price TEXT,
	closing_price TEXT NOT NULL,
	change_flag TEXT,
	change_amount TEXT,
	volume INTEGER,
	amount INTEGER,
	source_file TEXT NOT NULL,
	line_no INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quotes_stock_date ON quotes(stock_id, trade_date);

CREATE TABLE IF NOT EXISTS diagnostics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file TEXT NOT NULL,
	line_no INTEGER NOT NULL,
	reason TEXT NOT NULL,
	reason_code TEXT NOT NULL,
	line_preview TEXT,
	close_raw TEXT
);
CREATE INDEX IF NOT EXISTS idx_diagnostics_reason ON diagnostics(reason_code);
`

const (
	insertQuoteSQL = `INSERT INTO quotes (
		trade_date, stock_id, stock_name, open_price, high_price, low_price,
		closing_price, change_flag, change_amount, volume, amount, source_file, line_no
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	insertDiagnosticSQL = `INSERT INTO diagnostics (
		file, line_no, reason, reason_code, line_preview, close_raw
	) VALUES (?, ?, ?, ?, ?, ?)`
)

// SQLiteSink appends batches to the quotes and diagnostics tables of a SQLite
// database, one transaction per batch. Prices are stored as fixed-point text
// so no precision is lost; absent values are NULL.
type SQLiteSink struct {
	db   *sql.DB
	path string
}

// NewSQLiteSink opens (or creates) the database at path and its tables.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open database", err).WithContext("path", path)
	}
	// one writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("failed to create schema", err).WithContext("path", path)
	}
	return &SQLiteSink{db: db, path: path}, nil
}

// DB exposes the underlying handle for queries.
func (s *SQLiteSink) DB() *sql.DB { return s.db }

func (s *SQLiteSink) WriteRecords(ctx context.Context, records []domain.ParsedQuoteRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.inTx(ctx, insertQuoteSQL, len(records), func(stmt *sql.Stmt, i int) error {
		rec := records[i]
		_, err := stmt.ExecContext(ctx,
			rec.TradeDate,
			rec.StockID,
			nullString(rec.StockName),
			nullString(formatNullDecimal(rec.Open)),
			nullString(formatNullDecimal(rec.High)),
			nullString(formatNullDecimal(rec.Low)),
			formatDecimal(rec.Close),
			nullString(rec.ChangeFlag),
			nullString(formatNullDecimal(rec.ChangeAmount)),
			rec.Volume,
			rec.Amount,
			rec.SourceFile,
			rec.LineNo,
		)
		return err
	})
}

func (s *SQLiteSink) WriteDiagnostics(ctx context.Context, diags []domain.DiagnosticRecord) error {
	if len(diags) == 0 {
		return nil
	}
	return s.inTx(ctx, insertDiagnosticSQL, len(diags), func(stmt *sql.Stmt, i int) error {
		d := diags[i]
		_, err := stmt.ExecContext(ctx,
			d.SourceFile,
			d.LineNo,
			d.Reason.String(),
			string(d.Reason.Code),
			d.Preview,
			d.RawValue,
		)
		return err
	})
}

func (s *SQLiteSink) inTx(ctx context.Context, query string, n int, exec func(stmt *sql.Stmt, i int) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return apperrors.NewStorageError("failed to prepare insert", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to insert row %d", i), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("failed to commit batch", err)
	}
	return nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
