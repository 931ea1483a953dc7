package export

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/retry"
)

// tablePrefix namespaces record-set tables; see database/migrations.
const tablePrefix = "sim_"

type columnKind int

const (
	kindText columnKind = iota
	kindNumeric
	kindInteger
)

// columnKinds lists every non-text column across the record sets.
var columnKinds = map[string]columnKind{
	"credits":                kindNumeric,
	"credit_min":             kindNumeric,
	"credit_max":             kindNumeric,
	"gpa_entry":              kindNumeric,
	"work_experience_years":  kindNumeric,
	"cumulative_gpa":         kindNumeric,
	"last_term_gpa":          kindNumeric,
	"grade_point":            kindNumeric,
	"hours_per_week":         kindNumeric,
	"engagement_score":       kindNumeric,
	"weight":                 kindNumeric,
	"difficulty_level":       kindInteger,
	"technical_strength":     kindInteger,
	"analytical_strength":    kindInteger,
	"communication_strength": kindInteger,
	"feedback_rating":        kindInteger,
}

// nullableText columns store NULL instead of an empty string.
var nullableText = map[string]bool{
	"grade_letter": true,
}

// PostgresWriter replaces the contents of the sim_* tables with a dataset
// inside one transaction.
type PostgresWriter struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresWriter creates a writer on an already-migrated pool.
func NewPostgresWriter(pool *pgxpool.Pool, logger *zap.Logger) *PostgresWriter {
	return &PostgresWriter{
		pool:   pool,
		logger: logger.Named("postgres-sink"),
	}
}

var _ Writer = (*PostgresWriter)(nil)

func (w *PostgresWriter) Name() string { return "postgres" }

// Write is idempotent, so transient store failures retry the whole write.
func (w *PostgresWriter) Write(ctx context.Context, ds *models.Dataset) error {
	return retry.DoIfRetryable(ctx, retry.DefaultConfig(), func() error {
		return w.write(ctx, ds)
	})
}

func (w *PostgresWriter) write(ctx context.Context, ds *models.Dataset) error {
	sets := ds.RecordSets()

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	tables := make([]string, len(sets))
	for i, rs := range sets {
		tables[i] = pgx.Identifier{tablePrefix + rs.Name}.Sanitize()
	}
	if _, err := tx.Exec(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" CASCADE"); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}

	// Record sets are ordered so referenced tables load first.
	for _, rs := range sets {
		rows, err := typedRows(&rs)
		if err != nil {
			return fmt.Errorf("convert %s: %w", rs.Name, err)
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{tablePrefix + rs.Name}, rs.Columns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy %s: %w", rs.Name, err)
		}
		w.logger.Debug("Copied record set",
			zap.String("table", tablePrefix+rs.Name),
			zap.Int64("rows", n))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// typedRows converts string cells into values pgx can encode for each
// column's SQL type. Empty numeric cells become NULL.
func typedRows(rs *models.RecordSet) ([][]any, error) {
	out := make([][]any, len(rs.Rows))
	for i, cells := range rs.Rows {
		values := make([]any, len(cells))
		for j, cell := range cells {
			v, err := typedValue(rs.Columns[j], cell)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			values[j] = v
		}
		out[i] = values
	}
	return out, nil
}

func typedValue(column, cell string) (any, error) {
	switch columnKinds[column] {
	case kindNumeric:
		if cell == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", column, err)
		}
		return v, nil
	case kindInteger:
		if cell == "" {
			return nil, nil
		}
		v, err := strconv.ParseInt(cell, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", column, err)
		}
		return int32(v), nil
	default:
		if cell == "" && nullableText[column] {
			return nil, nil
		}
		return cell, nil
	}
}
