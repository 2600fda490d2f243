// Package sqlview mirrors a launch dataset into an in-memory DuckDB table for
// ad-hoc SQL analysis and for cross-checking the query engine.
package sqlview

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/xtxerr/launchboard/config"
	"github.com/xtxerr/launchboard/internal/dataset"
	"github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/launch"
	"github.com/xtxerr/launchboard/internal/logging"
	"github.com/xtxerr/launchboard/internal/query"
)

var log = logging.Component("sqlview")

// TableName is the table holding one row per launch record.
const TableName = "launches"

const createTable = `
	CREATE TABLE launches (
		ord              INTEGER NOT NULL,
		site             VARCHAR NOT NULL,
		payload_mass_kg  DOUBLE  NOT NULL,
		booster_category VARCHAR NOT NULL,
		outcome          INTEGER NOT NULL,
		flight_number    INTEGER
	)
`

// Config configures the DuckDB view.
type Config struct {
	// MemoryLimit is passed to DuckDB's memory_limit setting; empty keeps
	// DuckDB's default.
	MemoryLimit string
}

// DefaultConfig returns the default view configuration.
func DefaultConfig() Config {
	return Config{MemoryLimit: config.DefaultSQLMemoryLimit}
}

// View is a DuckDB copy of one dataset. The table is written once by New;
// every later call only reads it.
type View struct {
	db *sql.DB

	queries atomic.Int64
	rows    atomic.Int64
	errors  atomic.Int64
}

// Stats holds view statistics.
type Stats struct {
	QueriesExecuted int64 `json:"queries_executed"`
	RowsReturned    int64 `json:"rows_returned"`
	Errors          int64 `json:"errors"`
}

// New opens an in-memory DuckDB and loads every record of store.
func New(ctx context.Context, store *dataset.Store, cfg Config) (*View, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if cfg.MemoryLimit != "" {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("SET memory_limit='%s'", cfg.MemoryLimit)); err != nil {
			db.Close()
			return nil, fmt.Errorf("set memory limit: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if err := insertRecords(ctx, db, store.Records()); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug("sql view ready", "rows", store.Len(), "memory_limit", cfg.MemoryLimit)

	return &View{db: db}, nil
}

func insertRecords(ctx context.Context, db *sql.DB, records []launch.Record) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO launches (ord, site, payload_mass_kg, booster_category, outcome, flight_number)
		 VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		var flight sql.NullInt64
		if r.FlightNumber != nil {
			flight = sql.NullInt64{Int64: int64(*r.FlightNumber), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, r.Site, r.PayloadMassKg, r.BoosterCategory, r.Outcome.Numeric(), flight); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database.
func (v *View) Close() error {
	if v.db != nil {
		return v.db.Close()
	}
	return nil
}

const allSitesAggregate = `
	SELECT site AS label, count(*) AS n
	FROM launches
	WHERE payload_mass_kg BETWEEN $1 AND $2
	  AND outcome = 1
	GROUP BY site
	ORDER BY n DESC, label ASC
`

const siteAggregate = `
	SELECT CASE outcome WHEN 1 THEN 'success' ELSE 'failure' END AS label, count(*) AS n
	FROM launches
	WHERE payload_mass_kg BETWEEN $1 AND $2
	  AND site = $3
	GROUP BY label
	ORDER BY n DESC, label ASC
`

// SuccessAggregate computes the summary view for sel in SQL. The result
// matches query.ComputeSuccessAggregate over the same records.
func (v *View) SuccessAggregate(ctx context.Context, sel launch.Selection) (launch.SuccessAggregate, error) {
	if err := query.ValidateRange(sel.Payload); err != nil {
		return nil, err
	}

	var (
		rows *sql.Rows
		err  error
	)
	if sel.IsAllSites() {
		rows, err = v.db.QueryContext(ctx, allSitesAggregate, sel.Payload.Low, sel.Payload.High)
	} else {
		rows, err = v.db.QueryContext(ctx, siteAggregate, sel.Payload.Low, sel.Payload.High, sel.Site)
	}
	if err != nil {
		v.errors.Add(1)
		return nil, fmt.Errorf("query aggregate: %w", err)
	}
	defer rows.Close()

	agg := launch.SuccessAggregate{}
	for rows.Next() {
		var (
			label string
			n     int64
		)
		if err := rows.Scan(&label, &n); err != nil {
			v.errors.Add(1)
			return nil, fmt.Errorf("scan row: %w", err)
		}
		agg = append(agg, launch.AggregateEntry{Label: label, Count: int(n)})
	}
	if err := rows.Err(); err != nil {
		v.errors.Add(1)
		return nil, err
	}

	v.queries.Add(1)
	v.rows.Add(int64(len(agg)))
	return agg, nil
}

// ScatterProjection computes the distribution view for sel in SQL, in
// source order.
func (v *View) ScatterProjection(ctx context.Context, sel launch.Selection) (launch.ScatterProjection, error) {
	if err := query.ValidateRange(sel.Payload); err != nil {
		return nil, err
	}

	q := `
		SELECT payload_mass_kg, outcome, booster_category, site, flight_number
		FROM launches
		WHERE payload_mass_kg BETWEEN $1 AND $2
		  AND ($3 = '` + launch.AllSites + `' OR site = $3)
		ORDER BY ord
	`
	rows, err := v.db.QueryContext(ctx, q, sel.Payload.Low, sel.Payload.High, sel.Site)
	if err != nil {
		v.errors.Add(1)
		return nil, fmt.Errorf("query projection: %w", err)
	}
	defer rows.Close()

	points := launch.ScatterProjection{}
	for rows.Next() {
		var (
			p      launch.ScatterPoint
			flight sql.NullInt64
		)
		if err := rows.Scan(&p.PayloadMassKg, &p.Outcome, &p.BoosterCategory, &p.Site, &flight); err != nil {
			v.errors.Add(1)
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if flight.Valid {
			p.FlightNumber = launch.IntPtr(int(flight.Int64))
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		v.errors.Add(1)
		return nil, err
	}

	v.queries.Add(1)
	v.rows.Add(int64(len(points)))
	return points, nil
}

// Result is an ad-hoc query result with its columns in select order.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// ExecuteSQL runs an ad-hoc query against the launches table and returns
// every row as a column→value map.
func (v *View) ExecuteSQL(ctx context.Context, q string) ([]map[string]any, error) {
	res, err := v.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// Query is ExecuteSQL keeping the column order.
func (v *View) Query(ctx context.Context, q string) (*Result, error) {
	rows, err := v.db.QueryContext(ctx, q)
	if err != nil {
		v.errors.Add(1)
		return nil, errors.Wrap(err, "execute sql")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			v.errors.Add(1)
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		v.errors.Add(1)
		return nil, err
	}

	v.queries.Add(1)
	v.rows.Add(int64(len(res.Rows)))
	return res, nil
}

// Stats returns view statistics.
func (v *View) Stats() Stats {
	return Stats{
		QueriesExecuted: v.queries.Load(),
		RowsReturned:    v.rows.Load(),
		Errors:          v.errors.Load(),
	}
}
