package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/qustavo/dotsql"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// Queries provides access to named SQL statements loaded from embedded .sql
// files. dotsql owns statement lookup; sqlx owns execution and struct
// scanning. Statements are written with ? placeholders and rebound per
// driver, so the same files serve SQLite and PostgreSQL.
type Queries struct {
	dot  *dotsql.DotSql
	conn *sqlx.DB
}

// LoadQueries loads every embedded .sql file and returns a Queries instance.
// Statements are addressed by their -- name: header (e.g. "get-condition-set").
func LoadQueries(conn *sqlx.DB) (*Queries, error) {
	var combined string

	err := fs.WalkDir(queriesFS, "queries", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}
		content, err := queriesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		combined += string(content) + "\n"
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load query files: %w", err)
	}

	dot, err := dotsql.LoadFromString(combined)
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}

	return &Queries{dot: dot, conn: conn}, nil
}

// Exec executes a named statement.
func (q *Queries) Exec(ctx context.Context, name string, args ...any) (sql.Result, error) {
	stmt, err := q.dot.Raw(name)
	if err != nil {
		return nil, fmt.Errorf("query not found: %s", name)
	}
	return q.conn.ExecContext(ctx, q.conn.Rebind(stmt), args...)
}

// Get retrieves a single row into dest using a named statement.
func (q *Queries) Get(ctx context.Context, name string, dest any, args ...any) error {
	stmt, err := q.dot.Raw(name)
	if err != nil {
		return fmt.Errorf("query not found: %s", name)
	}
	return q.conn.GetContext(ctx, dest, q.conn.Rebind(stmt), args...)
}

// Select retrieves multiple rows into dest using a named statement.
func (q *Queries) Select(ctx context.Context, name string, dest any, args ...any) error {
	stmt, err := q.dot.Raw(name)
	if err != nil {
		return fmt.Errorf("query not found: %s", name)
	}
	return q.conn.SelectContext(ctx, dest, q.conn.Rebind(stmt), args...)
}
