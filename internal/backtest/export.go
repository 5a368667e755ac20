package backtest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/fxlab-research/fxlab/internal/logger"
	"github.com/fxlab-research/fxlab/internal/types"
	"github.com/fxlab-research/fxlab/pkg/errors"
)

// LedgerExporter writes a ledger and its equity curve to columnar files
// through an in-memory DuckDB: one record per fill, one per equity point,
// one per risk event.
type LedgerExporter struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewLedgerExporter opens an in-memory DuckDB and creates the output tables.
func NewLedgerExporter(log *logger.Logger) (*LedgerExporter, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, "failed to open duckdb", err)
	}

	exporter := &LedgerExporter{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := exporter.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return exporter, nil
}

func (e *LedgerExporter) initialize() error {
	_, err := e.db.Exec(`
		CREATE TABLE IF NOT EXISTS fills (
			order_id TEXT,
			symbol TEXT,
			side TEXT,
			size DOUBLE,
			price DOUBLE,
			notional DOUBLE,
			executed_at TIMESTAMP,
			reason TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to create fills table", err)
	}

	_, err = e.db.Exec(`
		CREATE TABLE IF NOT EXISTS risk_events (
			time TIMESTAMP,
			transition TEXT,
			limit_type TEXT,
			equity_at_trigger DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to create risk_events table", err)
	}

	_, err = e.db.Exec(`
		CREATE TABLE IF NOT EXISTS equity (
			time TIMESTAMP,
			realized_pnl DOUBLE,
			unrealized_pnl DOUBLE,
			equity DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to create equity table", err)
	}

	return nil
}

// Load inserts the ledger contents and equity curve.
func (e *LedgerExporter) Load(ledger *Ledger, curve []types.EquityPoint) error {
	tx, err := e.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to begin transaction", err)
	}

	for _, fill := range ledger.Fills() {
		insert := e.sq.
			Insert("fills").
			Columns("order_id", "symbol", "side", "size", "price", "notional", "executed_at", "reason").
			Values(
				fill.OrderID, fill.Symbol, string(fill.Side),
				fill.Size.InexactFloat64(), fill.Price.InexactFloat64(),
				fill.SignedNotional().InexactFloat64(),
				fill.ExecutedAt, fill.Reason,
			).
			RunWith(tx)

		if _, err := insert.Exec(); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeExportFailed, "failed to insert fill", err)
		}
	}

	for _, event := range ledger.RiskEvents() {
		insert := e.sq.
			Insert("risk_events").
			Columns("time", "transition", "limit_type", "equity_at_trigger").
			Values(event.Time, string(event.Transition), string(event.Limit), event.EquityAtTrigger.InexactFloat64()).
			RunWith(tx)

		if _, err := insert.Exec(); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeExportFailed, "failed to insert risk event", err)
		}
	}

	for _, point := range curve {
		insert := e.sq.
			Insert("equity").
			Columns("time", "realized_pnl", "unrealized_pnl", "equity").
			Values(point.Time, point.RealizedPnL.InexactFloat64(), point.UnrealizedPnL.InexactFloat64(), point.Equity.InexactFloat64()).
			RunWith(tx)

		if _, err := insert.Exec(); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeExportFailed, "failed to insert equity point", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to commit", err)
	}

	return nil
}

// WriteParquet exports the loaded tables as Parquet files in dir.
func (e *LedgerExporter) WriteParquet(dir string) error {
	return e.write(dir, "parquet", "(FORMAT PARQUET)")
}

// WriteCSV exports the loaded tables as CSV files in dir.
func (e *LedgerExporter) WriteCSV(dir string) error {
	return e.write(dir, "csv", "(FORMAT CSV, HEADER)")
}

func (e *LedgerExporter) write(dir, extension, format string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to create export directory", err)
	}

	for _, table := range []string{"fills", "risk_events", "equity"} {
		path := filepath.Join(dir, fmt.Sprintf("%s.%s", table, extension))

		// COPY has no placeholder support; the path comes from our own config.
		if _, err := e.db.Exec(fmt.Sprintf(`COPY %s TO '%s' %s`, table, path, format)); err != nil {
			return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to export %s", table)
		}
	}

	e.logger.Debug("Exported ledger artifacts",
		zap.String("dir", dir),
		zap.String("format", extension),
	)

	return nil
}

// Close releases the database.
func (e *LedgerExporter) Close() error {
	return e.db.Close()
}
