// Package store provides a DuckDB-backed tabular store for dataset files.
// Sources are bulk-loaded with DuckDB's read_csv, which decompresses gzipped
// files transparently, and queried through database/sql.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding one table per data source.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path. Use an empty
// string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Column declares one column of a dataset table.
type Column struct {
	Name string
	// Type is the DuckDB column type. Raw CSV fields are read as VARCHAR
	// and cast with TRY_CAST, so unparseable values become NULL instead of
	// failing the load.
	Type string
	// Expr optionally overrides the SELECT expression for this column.
	// Raw fields are available as column0, column1, ...
	Expr string
}

// ReadOptions controls how read_csv parses a dataset file.
type ReadOptions struct {
	Delimiter string // default "\t"
	Header    bool   // file has a header row to skip
	Skip      int    // extra leading lines to skip
	Comment   string // comment line prefix, e.g. "#"
}

func (o ReadOptions) delim() string {
	if o.Delimiter == "" {
		return "\t"
	}
	return o.Delimiter
}

// quoteLiteral escapes a string for use as a single-quoted SQL literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (o ReadOptions) args(path string, rawColumns string) string {
	args := []string{
		quoteLiteral(path),
		fmt.Sprintf("delim=%s", quoteLiteral(o.delim())),
		fmt.Sprintf("header=%v", o.Header),
	}
	if o.Skip > 0 {
		args = append(args, fmt.Sprintf("skip=%d", o.Skip))
	}
	if o.Comment != "" {
		args = append(args, fmt.Sprintf("comment=%s", quoteLiteral(o.Comment)))
	}
	if rawColumns != "" {
		args = append(args, "columns={"+rawColumns+"}")
	}
	return strings.Join(args, ", ")
}

// Load bulk-loads a delimited file into the named table using the declared
// column schema. An existing table is cleared first, so reloading is
// idempotent.
func (s *Store) Load(table string, cols []Column, path string, opts ReadOptions) error {
	var ddl, raw, sel []string
	for i, c := range cols {
		ddl = append(ddl, fmt.Sprintf("%s %s", c.Name, c.Type))
		raw = append(raw, fmt.Sprintf("'column%d': 'VARCHAR'", i))
		expr := c.Expr
		if expr == "" {
			if strings.EqualFold(c.Type, "VARCHAR") {
				expr = fmt.Sprintf("column%d", i)
			} else {
				expr = fmt.Sprintf("TRY_CAST(column%d AS %s)", i, c.Type)
			}
		}
		sel = append(sel, expr)
	}

	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(ddl, ", "))
	if _, err := s.db.Exec(create); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	// Idempotent reload.
	if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
		return fmt.Errorf("clear table %s: %w", table, err)
	}

	// When the file has a header row but columns are declared explicitly,
	// the header must be skipped as a plain line.
	readOpts := opts
	if readOpts.Header {
		readOpts.Header = false
		readOpts.Skip++
	}

	insert := fmt.Sprintf("INSERT INTO %s SELECT %s FROM read_csv(%s)",
		table, strings.Join(sel, ", "), readOpts.args(path, strings.Join(raw, ", ")))
	if _, err := s.db.Exec(insert); err != nil {
		return fmt.Errorf("load %s into %s: %w", path, table, err)
	}
	return nil
}

// LoadAuto bulk-loads a delimited file into the named table letting DuckDB
// infer column names and types from the file itself. Any existing table is
// replaced.
func (s *Store) LoadAuto(table string, path string, opts ReadOptions) error {
	if _, err := s.db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}

	create := fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM read_csv(%s)",
		table, opts.args(path, ""))
	if _, err := s.db.Exec(create); err != nil {
		return fmt.Errorf("load %s into %s: %w", path, table, err)
	}
	return nil
}

// Count returns the number of rows in a table.
func (s *Store) Count(table string) (int64, error) {
	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows in %s: %w", table, err)
	}
	return count, nil
}

// HasTable reports whether the named table exists.
func (s *Store) HasTable(table string) bool {
	var count int64
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?", table,
	).Scan(&count)
	return err == nil && count > 0
}
