// Package projects persists projects, the optional grouping tag for images.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/imgdrop/internal/common"
	"github.com/dmitrijs2005/imgdrop/internal/dbx"
	"github.com/dmitrijs2005/imgdrop/internal/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a project and returns it with server-assigned id and timestamp.
func (r *PostgresRepository) Create(ctx context.Context, name string) (*models.Project, error) {
	query := `INSERT INTO projects (name) VALUES ($1) RETURNING id, name, created_at`

	p := &models.Project{}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT id, name, created_at FROM projects WHERE id = $1`

	p := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// List returns all projects, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Project, error) {
	query := `SELECT id, name, created_at FROM projects ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Project, 0)
	for rows.Next() {
		p := &models.Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}
