// Package images persists the records written after a managed upload.
package images

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/imgdrop/internal/dbx"
	"github.com/dmitrijs2005/imgdrop/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *models.ImageRecord) error {
	query := `INSERT INTO images (project_id, storage_path, public_url, name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	var projectID any
	if rec.ProjectID != nil {
		projectID = *rec.ProjectID
	}

	err := r.db.QueryRowContext(ctx, query, projectID, rec.StoragePath, rec.PublicURL, rec.Name).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}
	return nil
}

const listQuery = `SELECT i.id, i.project_id, p.name, i.storage_path, i.public_url, i.name, i.created_at
	FROM images i
	LEFT JOIN projects p ON p.id = i.project_id`

func (r *PostgresRepository) List(ctx context.Context, projectID *string) ([]*models.ImageRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if projectID == nil {
		rows, err = r.db.QueryContext(ctx, listQuery+` ORDER BY i.created_at DESC`)
	} else {
		rows, err = r.db.QueryContext(ctx, listQuery+` WHERE i.project_id = $1 ORDER BY i.created_at DESC`, *projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select images: %w", err)
	}
	defer rows.Close()

	result := make([]*models.ImageRecord, 0)
	for rows.Next() {
		var (
			rec        models.ImageRecord
			pid, pname sql.NullString
		)
		if err := rows.Scan(&rec.ID, &pid, &pname, &rec.StoragePath, &rec.PublicURL, &rec.Name, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		if pid.Valid {
			rec.ProjectID = &pid.String
		}
		if pname.Valid {
			rec.ProjectName = &pname.String
		}
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate images: %w", err)
	}
	return result, nil
}
