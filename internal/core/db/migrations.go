package db

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	embeddedmigrations "github.com/QuickFlo/condkit/migrations"
	"github.com/jmoiron/sqlx"
)

/*
 * Migration runner.
 *
 * Applies the embedded per-driver .sql files in filename order, recording
 * each in a migrations table with a SHA256 checksum. Re-running is a no-op;
 * a checksum mismatch against an already-applied file aborts, since editing
 * an applied migration means the database and the binary disagree about
 * schema history.
 */

// MigrationStatus reports the state of a single migration file.
type MigrationStatus struct {
	ID        string
	Checksum  string
	Applied   bool
	AppliedAt string
}

// migration is one parsed embedded file.
type migration struct {
	ID       string
	Checksum string
	SQL      string
}

// MigrateUp applies all pending migrations for the connection's driver.
func MigrateUp(conn *sqlx.DB) error {
	migrations, err := loadMigrations(conn)
	if err != nil {
		return err
	}
	if err := createMigrationsTable(conn); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedChecksums(conn)
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}

	for _, m := range migrations {
		if sum, ok := applied[m.ID]; ok {
			if sum != m.Checksum {
				return fmt.Errorf("checksum mismatch for applied migration %s", m.ID)
			}
			continue
		}

		// Apply and record atomically so a failed recording cannot leave an
		// applied-but-untracked migration behind.
		tx, err := conn.Beginx()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", m.ID, err)
		}
		if err := execStatements(tx, m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		now := time.Now().UTC().Format(time.RFC3339)
		if _, err := tx.Exec(tx.Rebind(
			"INSERT INTO migrations (migration_id, checksum, applied_at) VALUES (?, ?, ?)"),
			m.ID, m.Checksum, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.ID, err)
		}
	}

	return nil
}

// MigrateStatus returns applied and pending migrations in filename order.
func MigrateStatus(conn *sqlx.DB) ([]MigrationStatus, error) {
	migrations, err := loadMigrations(conn)
	if err != nil {
		return nil, err
	}
	if err := createMigrationsTable(conn); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := conn.Queryx("SELECT migration_id, checksum, applied_at FROM migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]MigrationStatus)
	for rows.Next() {
		var s MigrationStatus
		if err := rows.Scan(&s.ID, &s.Checksum, &s.AppliedAt); err != nil {
			return nil, err
		}
		s.Applied = true
		applied[s.ID] = s
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		if s, ok := applied[m.ID]; ok {
			statuses = append(statuses, s)
			continue
		}
		statuses = append(statuses, MigrationStatus{ID: m.ID, Checksum: m.Checksum})
	}
	return statuses, nil
}

// loadMigrations selects the embedded migration set for the driver and
// parses it into filename order.
func loadMigrations(conn *sqlx.DB) ([]migration, error) {
	var migrationsFS embed.FS
	var dir string

	switch conn.DriverName() {
	case "sqlite3":
		migrationsFS = embeddedmigrations.SqliteMigrations
		dir = "sqlite"
	case "postgres":
		migrationsFS = embeddedmigrations.PostgresMigrations
		dir = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", conn.DriverName())
	}

	var out []migration
	err := fs.WalkDir(migrationsFS, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}
		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		out = append(out, migration{
			ID:       filepath.Base(path),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
			SQL:      string(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse migrations: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// createMigrationsTable ensures the tracking table exists. applied_at is
// RFC3339 text so both drivers scan identically.
func createMigrationsTable(conn *sqlx.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			migration_id TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`)
	return err
}

// appliedChecksums maps applied migration ids to their recorded checksums.
func appliedChecksums(conn *sqlx.DB) (map[string]string, error) {
	rows, err := conn.Queryx("SELECT migration_id, checksum FROM migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]string)
	for rows.Next() {
		var id, sum string
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, err
		}
		applied[id] = sum
	}
	return applied, nil
}

// execStatements splits a migration on semicolons and executes each
// statement. lib/pq rejects multiple statements in a single Exec.
func execStatements(tx *sqlx.Tx, script string) error {
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
	}
	return nil
}
