package application

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func NewMigrationManager(pool *pgxpool.Pool, logger *logrus.Logger) MigrationManager {
	return &migrationManager{pool: pool, logger: logger}
}

type migrationManager struct {
	pool    *pgxpool.Pool
	logger  *logrus.Logger
	schemas []*embed.FS
}

func (m *migrationManager) RegisterSchema(fs *embed.FS) {
	m.schemas = append(m.schemas, fs)
}

// Run applies every registered schema file once, tracked by file name.
// Schema files are expected to be idempotent per module.
func (m *migrationManager) Run(ctx context.Context) error {
	if m.pool == nil {
		return fmt.Errorf("migrations: no database pool configured")
	}

	if _, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   text PRIMARY KEY,
			applied_at timestamptz NOT NULL DEFAULT now()
		)
	`); err != nil {
		return err
	}

	for _, schemaFS := range m.schemas {
		files, err := m.sqlFiles(schemaFS)
		if err != nil {
			return err
		}
		for _, file := range files {
			applied, err := m.isApplied(ctx, file)
			if err != nil {
				return err
			}
			if applied {
				continue
			}
			contents, err := schemaFS.ReadFile(file)
			if err != nil {
				return err
			}
			if err := m.apply(ctx, file, string(contents)); err != nil {
				return fmt.Errorf("migrations: applying %s: %w", file, err)
			}
			if m.logger != nil {
				m.logger.Infof("migrations: applied %s", file)
			}
		}
	}
	return nil
}

func (m *migrationManager) sqlFiles(schemaFS *embed.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(schemaFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".sql") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (m *migrationManager) isApplied(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := m.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`,
		filename,
	).Scan(&exists)
	return exists, err
}

func (m *migrationManager) apply(ctx context.Context, filename, contents string) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, contents); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (filename) VALUES ($1)`,
		filename,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
