package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/imgdrop/internal/dbx"
	"github.com/dmitrijs2005/imgdrop/internal/repositories/images"
	"github.com/dmitrijs2005/imgdrop/internal/repositories/projects"
	"github.com/dmitrijs2005/imgdrop/internal/repositories/settings"
)

// RepositoryManager vends catalog repositories bound to a DBTX.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Projects(db dbx.DBTX) projects.Repository
	Images(db dbx.DBTX) images.Repository
}

// SettingsManager vends the local settings repository.
type SettingsManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Settings(db dbx.DBTX) settings.Repository
}
