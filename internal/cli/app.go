package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/imgdrop/internal/config"
	"github.com/dmitrijs2005/imgdrop/internal/logging"
	"github.com/dmitrijs2005/imgdrop/internal/metrics"
	"github.com/dmitrijs2005/imgdrop/internal/models"
	"github.com/dmitrijs2005/imgdrop/internal/present"
	"github.com/dmitrijs2005/imgdrop/internal/queue"
	"github.com/dmitrijs2005/imgdrop/internal/repositories/repomanager"
	"github.com/dmitrijs2005/imgdrop/internal/services"
	"github.com/dmitrijs2005/imgdrop/internal/storage"
	"github.com/dmitrijs2005/imgdrop/internal/transport"
	"golang.org/x/term"
)

// catalogService is the part of services.CatalogService the REPL uses.
type catalogService interface {
	ListProjects(ctx context.Context, refresh bool) ([]*models.Project, error)
	CreateProject(ctx context.Context, name string) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListImages(ctx context.Context, projectID *string, refresh bool) ([]*models.ImageRecord, error)
}

type settingsService interface {
	WebhookURL(ctx context.Context) (string, error)
	SetWebhookURL(ctx context.Context, raw string) (string, error)
}

type App struct {
	config *config.Config
	logger logging.Logger
	out    io.Writer

	queue      *queue.Controller
	transports map[config.Mode]transport.Transport
	mode       config.Mode

	catalog  catalogService
	settings settingsService
	copier   present.FallbackClipboard

	project    *models.Project
	webhookURL string
	// banner explains why managed uploads are disabled; empty when they work.
	banner string

	interactive   bool
	outMu         sync.Mutex
	progressShown bool
	closers       []func() error
}

// isTerminal is a seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// NewApp builds the application from cfg. Problems with the managed backend
// do not fail construction: they disable managed uploads and show up as a
// banner. A broken local settings database does fail it.
func NewApp(ctx context.Context, cfg *config.Config, l logging.Logger) (*App, error) {
	a := &App{
		config:      cfg,
		logger:      l,
		out:         os.Stdout,
		mode:        cfg.Mode,
		queue:       queue.NewController(l, metrics.Prometheus{}),
		interactive: isTerminal(int(os.Stdout.Fd())),
	}
	a.copier = present.FallbackClipboard{
		Primary:  present.SystemClipboard{},
		Fallback: present.WriterClipboard{W: a.out},
	}

	if err := a.initSettings(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	managed := a.initManaged(ctx)
	a.transports = map[config.Mode]transport.Transport{
		config.ModeManaged: managed,
		config.ModeWebhook: transport.NewWebhook(cfg.HTTPTimeout, l),
	}
	a.queue.SetObserver(a.onItemChange)

	return a, nil
}

func (a *App) initSettings(ctx context.Context) error {
	db, err := repomanager.OpenSQLite(a.config.LocalDBPath)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, db.Close)

	sm := repomanager.NewSQLiteSettingsManager()
	if err := sm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrate settings: %w", err)
	}
	settings := services.NewSettingsService(db, sm)
	a.settings = settings

	if a.config.WebhookURL != "" {
		a.webhookURL = a.config.WebhookURL
		return nil
	}
	saved, err := settings.WebhookURL(ctx)
	if err != nil {
		return err
	}
	a.webhookURL = saved
	return nil
}

// initManaged returns the managed transport. When configuration or a
// backend is missing the transport refuses every dispatch with the reason.
func (a *App) initManaged(ctx context.Context) transport.Transport {
	progress := transport.Progress{
		Step:     a.config.ProgressStep,
		Interval: a.config.ProgressInterval,
		Ceiling:  a.config.ProgressCap,
	}

	if missing := a.config.MissingManaged(); len(missing) > 0 {
		a.banner = "managed uploads disabled: set " + strings.Join(missing, " and ")
		return transport.NewManaged(nil, nil, missing, progress, a.logger)
	}

	store, err := storage.New(ctx, storage.Options{
		Driver:     a.config.StorageDriver,
		Endpoint:   a.config.BackendURL,
		AccessKey:  a.config.BackendKey,
		SecretKey:  a.config.BackendSecret,
		Region:     a.config.Region,
		Bucket:     a.config.Bucket,
		PublicBase: a.config.PublicBase(),
	}, a.logger)
	if err != nil {
		a.banner = "managed uploads disabled: " + err.Error()
		return transport.NewManaged(nil, nil, []string{"object storage"}, progress, a.logger)
	}

	db, err := openPostgres(ctx, a.config.DatabaseDSN)
	if err != nil {
		a.banner = "managed uploads disabled: " + err.Error()
		return transport.NewManaged(nil, nil, []string{"database"}, progress, a.logger)
	}
	a.closers = append(a.closers, db.Close)

	catalog := services.NewCatalogService(db, repomanager.NewPostgresRepositoryManager(), a.config.CacheSize, a.config.CacheTTL, a.logger)
	a.catalog = catalog
	return transport.NewManaged(store, catalog, nil, progress, a.logger)
}

// openPostgres is a seam for repomanager.OpenPostgres.
var openPostgres = func(ctx context.Context, dsn string) (*sql.DB, error) {
	return repomanager.OpenPostgres(ctx, dsn)
}

func (a *App) currentTransport() transport.Transport {
	return a.transports[a.mode]
}

func (a *App) target() transport.Target {
	t := transport.Target{WebhookURL: a.webhookURL}
	if a.project != nil {
		id := a.project.ID
		t.ProjectID = &id
	}
	return t
}

// Run prints the banner, if any, and serves the REPL on stdin until exit.
// It waits for uploads still in flight before returning.
func (a *App) Run(ctx context.Context) {
	printlnFn("imgdrop (type 'help' for commands)")
	if a.banner != "" {
		printlnFn("!", a.banner)
	}

	runREPL(ctx, a, a.prompt, bufio.NewScanner(os.Stdin))

	if !a.queue.Settled() {
		printlnFn("Waiting for running uploads...")
	}
	a.queue.Wait()
}

func (a *App) prompt() string {
	s := string(a.mode)
	if a.project != nil {
		s += " " + a.project.Name
	}
	return s
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
