package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"sdg-collector/models"
	"sdg-collector/utils"
)

const insertBatchSize = 50

// PostgresWriter mirrors the collected values of a year into PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{Retries: 4, Pause: 2 * time.Second, Logger: logger}
	if err := retry.Do(ctx, "postgres ping", db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sdg_indicator_values (
			iso3         CHAR(3)          NOT NULL,
			name         TEXT             NOT NULL DEFAULT '',
			year         INTEGER          NOT NULL,
			indicator    VARCHAR(16)      NOT NULL,
			series_code  VARCHAR(64)      NOT NULL DEFAULT '',
			value        DOUBLE PRECISION NOT NULL,
			collected_at TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
			PRIMARY KEY (iso3, year, indicator)
		);

		CREATE INDEX IF NOT EXISTS idx_sdg_values_year      ON sdg_indicator_values(year);
		CREATE INDEX IF NOT EXISTS idx_sdg_values_indicator ON sdg_indicator_values(indicator);
	`)
	return err
}

// Write replaces every stored value of year with the values in doc.
func (pw *PostgresWriter) Write(doc *models.OutputDocument, year int) error {
	ctx := context.Background()

	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sdg_indicator_values WHERE year = $1", year); err != nil {
		return fmt.Errorf("postgres: clear year %d: %w", year, err)
	}

	rows := rowsForYear(doc, year)
	for i := 0; i < len(rows); i += insertBatchSize {
		end := min(i+insertBatchSize, len(rows))
		query, args := buildInsert(rows[i:end], year)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func rowsForYear(doc *models.OutputDocument, year int) []FlatRow {
	label := fmt.Sprint(year)
	var out []FlatRow
	for _, r := range FlattenDocument(doc) {
		if r.Year == label {
			out = append(out, r)
		}
	}
	return out
}

func buildInsert(batch []FlatRow, year int) (string, []any) {
	const cols = 6
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6))
		valueArgs = append(valueArgs, r.ISO3, r.Name, year, r.Indicator, r.SeriesCode, r.Value)
	}

	query := fmt.Sprintf(`
		INSERT INTO sdg_indicator_values (iso3, name, year, indicator, series_code, value)
		VALUES %s
		ON CONFLICT (iso3, year, indicator) DO UPDATE
		SET name = EXCLUDED.name,
		    series_code = EXCLUDED.series_code,
		    value = EXCLUDED.value,
		    collected_at = NOW()
	`, strings.Join(valueStrings, ","))

	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
