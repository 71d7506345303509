package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/imgdrop/internal/dbx"
	"github.com/dmitrijs2005/imgdrop/internal/migrations"
	"github.com/dmitrijs2005/imgdrop/internal/repositories/settings"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteSettingsManager vends the SQLite-backed settings repository.
type SQLiteSettingsManager struct{}

func NewSQLiteSettingsManager() *SQLiteSettingsManager {
	return &SQLiteSettingsManager{}
}

func (m *SQLiteSettingsManager) Settings(db dbx.DBTX) settings.Repository {
	return settings.NewSQLiteRepository(db)
}

func (m *SQLiteSettingsManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.SQLite)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "sqlite"); err != nil {
		return err
	}
	return nil
}

// OpenSQLite opens the local database file. A single connection keeps
// ":memory:" databases consistent across calls.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
