package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"IndexScope/internal/domain/models"
	domrepo "IndexScope/internal/domain/repository"
	pkgch "IndexScope/pkg/clickhouse"
	applogger "IndexScope/pkg/logger"
	pkgsqlite "IndexScope/pkg/sqlite"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLPriceStore implements PriceStore on database/sql. SQLite and ClickHouse
// share the queries and differ only in their Dialect.
type SQLPriceStore struct {
	db      *sql.DB
	table   string
	dialect Dialect
	closer  func() error
	l       *applogger.Logger
}

// NewSQLPriceStore wraps db and makes sure the price table exists.
func NewSQLPriceStore(ctx context.Context, db *sql.DB, table string, dialect Dialect) (*SQLPriceStore, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	s := &SQLPriceStore{db: db, table: table, dialect: dialect, closer: db.Close}
	for _, stmt := range dialect.Create(table) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("init %s schema: %w", dialect.Name, err)
		}
	}
	return s, nil
}

// NewSQLiteStore builds the default SQLite-backed store.
func NewSQLiteStore(ctx context.Context, c *pkgsqlite.Client, table string) (*SQLPriceStore, error) {
	s, err := NewSQLPriceStore(ctx, c.DB(), table, SQLiteDialect)
	if err != nil {
		return nil, err
	}
	s.closer = c.Close
	return s, nil
}

// NewClickHouseStore builds a ClickHouse-backed store.
func NewClickHouseStore(ctx context.Context, c *pkgch.Client, table string) (*SQLPriceStore, error) {
	s, err := NewSQLPriceStore(ctx, c.DB(), table, ClickHouseDialect)
	if err != nil {
		return nil, err
	}
	s.closer = c.Close
	return s, nil
}

// SetLogger injects a structured logger.
func (s *SQLPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *SQLPriceStore) ListSymbols(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf(`SELECT DISTINCT ind FROM %s ORDER BY ind`, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.logError("list_symbols query error", err)
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0, 16)
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		out = append(out, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *SQLPriceStore) LoadSeries(ctx context.Context, symbol string) ([]models.AverageRow, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT date, (open + high + low + close + adj_close) / 5 AS average
        FROM %s
        WHERE ind = ?
        ORDER BY date ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol)
	if err != nil {
		s.logError("load_series query error", err, applogger.String("symbol", symbol))
		return nil, fmt.Errorf("load series: %w", err)
	}
	defer rows.Close()

	out := make([]models.AverageRow, 0, 1024)
	for rows.Next() {
		var r models.AverageRow
		if err := rows.Scan(&r.Date, &r.Average); err != nil {
			s.logError("load_series scan error", err, applogger.String("symbol", symbol))
			return nil, fmt.Errorf("scan average row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("load_series ok",
			applogger.String("backend", s.dialect.Name),
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// Replace swaps the table contents for rows. Readers see either the old or the new set.
func (s *SQLPriceStore) Replace(ctx context.Context, rows []models.PriceRow) error {
	start := time.Now()
	var err error
	if s.dialect.TxDDL {
		err = s.replaceInTx(ctx, rows)
	} else {
		err = s.replaceViaStaging(ctx, rows)
	}
	if err != nil {
		s.logError("replace error", err, applogger.Int("rows", len(rows)))
		return err
	}
	if s.l != nil {
		s.l.Info("price table replaced",
			applogger.String("backend", s.dialect.Name),
			applogger.String("table", s.table),
			applogger.Int("rows", len(rows)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *SQLPriceStore) replaceInTx(ctx context.Context, rows []models.PriceRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := append([]string{fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.table)}, s.dialect.Create(s.table)...)
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("recreate table: %w", err)
		}
	}
	if err := insertRows(ctx, tx, s.table, rows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func (s *SQLPriceStore) replaceViaStaging(ctx context.Context, rows []models.PriceRow) error {
	staging := s.table + "_staging"
	stmts := append([]string{fmt.Sprintf(`DROP TABLE IF EXISTS %s`, staging)}, s.dialect.Create(staging)...)
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("prepare staging table: %w", err)
		}
	}

	// clickhouse-go sends everything prepared in one tx as a single batch
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	if err := insertRows(ctx, tx, staging, rows); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	for _, stmt := range s.dialect.Swap(staging, s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("swap tables: %w", err)
		}
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, table string, rows []models.PriceRow) error {
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (ind, date, open, high, low, close, adj_close) VALUES (?, ?, ?, ?, ?, ?, ?)`, table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Symbol, r.Date, r.Open, r.High, r.Low, r.Close, r.AdjClose); err != nil {
			return fmt.Errorf("insert %s %s: %w", r.Symbol, r.Date, err)
		}
	}
	return nil
}

func (s *SQLPriceStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLPriceStore) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}

func (s *SQLPriceStore) logError(msg string, err error, fields ...applogger.Field) {
	if s.l == nil {
		return
	}
	fields = append(fields,
		applogger.String("backend", s.dialect.Name),
		applogger.String("table", s.table),
		applogger.Error(err),
	)
	s.l.Error(msg, fields...)
}

var _ domrepo.PriceStore = (*SQLPriceStore)(nil)
