// Package services holds the application logic between the CLI and the
// repositories. CatalogService covers projects and image records of the
// managed backend; SettingsService covers local preferences.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/imgdrop/internal/common"
	"github.com/dmitrijs2005/imgdrop/internal/dbx"
	"github.com/dmitrijs2005/imgdrop/internal/logging"
	"github.com/dmitrijs2005/imgdrop/internal/metrics"
	"github.com/dmitrijs2005/imgdrop/internal/models"
	"github.com/dmitrijs2005/imgdrop/internal/repositories/repomanager"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	allProjectsKey = "all"
	allImagesKey   = ""
)

// CatalogService lists and creates projects and records uploaded images.
// Listings are cached for a short TTL; refresh bypasses the cache and any
// write drops the affected cache.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger

	projects *expirable.LRU[string, []*models.Project]
	images   *expirable.LRU[string, []*models.ImageRecord]
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager, cacheSize int, cacheTTL time.Duration, l logging.Logger) *CatalogService {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	return &CatalogService{
		db:          db,
		repomanager: m,
		logger:      l,
		projects:    expirable.NewLRU[string, []*models.Project](1, nil, cacheTTL),
		images:      expirable.NewLRU[string, []*models.ImageRecord](cacheSize, nil, cacheTTL),
	}
}

// ListProjects returns projects newest first.
func (s *CatalogService) ListProjects(ctx context.Context, refresh bool) ([]*models.Project, error) {
	if !refresh {
		if list, ok := s.projects.Get(allProjectsKey); ok {
			metrics.CacheHit()
			return list, nil
		}
	}
	metrics.CacheMiss()

	list, err := s.repomanager.Projects(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	s.projects.Add(allProjectsKey, list)
	return list, nil
}

// CreateProject stores a project under the trimmed name.
func (s *CatalogService) CreateProject(ctx context.Context, name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrEmptyName
	}

	p, err := s.repomanager.Projects(s.db).Create(ctx, name)
	if err != nil {
		return nil, err
	}
	s.projects.Purge()
	s.logger.Info(ctx, "project created", "id", p.ID, "name", p.Name)
	return p, nil
}

// GetProject resolves a project by id.
func (s *CatalogService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.repomanager.Projects(s.db).GetByID(ctx, id)
}

// ListImages returns image records newest first, limited to projectID when
// it is not nil.
func (s *CatalogService) ListImages(ctx context.Context, projectID *string, refresh bool) ([]*models.ImageRecord, error) {
	key := allImagesKey
	if projectID != nil {
		key = *projectID
	}

	if !refresh {
		if list, ok := s.images.Get(key); ok {
			metrics.CacheHit()
			return list, nil
		}
	}
	metrics.CacheMiss()

	list, err := s.repomanager.Images(s.db).List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.images.Add(key, list)
	return list, nil
}

// RecordImage inserts rec and fills its ID, CreatedAt and ProjectName in
// one transaction.
func (s *CatalogService) RecordImage(ctx context.Context, rec *models.ImageRecord) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Images(tx).Insert(ctx, rec); err != nil {
			return err
		}
		if rec.ProjectID == nil {
			return nil
		}
		p, err := s.repomanager.Projects(tx).GetByID(ctx, *rec.ProjectID)
		if err != nil {
			return fmt.Errorf("resolve project %s: %w", *rec.ProjectID, err)
		}
		rec.ProjectName = &p.Name
		return nil
	})
	if err != nil {
		return err
	}

	s.images.Purge()
	return nil
}
