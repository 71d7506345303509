package transport

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/imgdrop/internal/logging"
	"github.com/dmitrijs2005/imgdrop/internal/models"
	"github.com/dmitrijs2005/imgdrop/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ImageRecorder persists the record of a stored image. It fills the
// record's ID and CreatedAt.
type ImageRecorder interface {
	RecordImage(ctx context.Context, rec *models.ImageRecord) error
}

// Progress shapes the synthesized progress of managed uploads.
type Progress struct {
	Step     int
	Interval time.Duration
	Ceiling  int
}

var DefaultProgress = Progress{Step: 10, Interval: 200 * time.Millisecond, Ceiling: 90}

// maxSynthesized keeps synthesized progress below completion.
const maxSynthesized = 99

// Managed stores the binary in object storage and then records it in the
// catalog. A failed record insert leaves the stored object in place.
type Managed struct {
	store    storage.ObjectStore
	images   ImageRecorder
	missing  []string
	progress Progress
	logger   logging.Logger
	now      func() time.Time
}

// NewManaged builds the managed transport. missing names configuration
// that was not provided; when non-empty every dispatch is refused.
// p.Ceiling is clamped to 0..99.
func NewManaged(store storage.ObjectStore, images ImageRecorder, missing []string, p Progress, l logging.Logger) *Managed {
	p.Ceiling = min(max(p.Ceiling, 0), maxSynthesized)
	return &Managed{
		store:    store,
		images:   images,
		missing:  missing,
		progress: p,
		logger:   l.With("transport", "managed"),
		now:      time.Now,
	}
}

func (m *Managed) Name() string { return "managed" }

func (m *Managed) Validate(Target) error {
	if len(m.missing) > 0 {
		return configurationMissing(strings.Join(m.missing, ", "))
	}
	if m.store == nil || m.images == nil {
		return configurationMissing("managed backend not initialized")
	}
	return nil
}

func (m *Managed) Send(ctx context.Context, file models.File, target Target) <-chan Event {
	e := newEmitter()

	go func() {
		if err := m.Validate(target); err != nil {
			e.fail(err)
			return
		}

		stop := e.synthesize(m.progress.Step, m.progress.Interval, m.progress.Ceiling)
		url, err := m.upload(ctx, file, target)
		stop()

		if err != nil {
			e.fail(err)
			return
		}
		e.succeed(url)
	}()

	return e.events()
}

func (m *Managed) upload(ctx context.Context, file models.File, target Target) (string, error) {
	key := m.storageKey(file)

	r, err := file.Open()
	if err != nil {
		return "", newUploadError(ErrTransportFailure, fmt.Sprintf("open %s: %v", file.Name(), err), err)
	}
	defer r.Close()

	if err := m.store.Upload(ctx, key, r, file.Size(), file.ContentType()); err != nil {
		m.logger.Warn(ctx, "storage upload failed", "file", file.Name(), "key", key, "error", err)
		return "", classify("upload", err)
	}

	rec := &models.ImageRecord{
		ProjectID:   target.ProjectID,
		StoragePath: key,
		PublicURL:   m.store.PublicURL(key),
		Name:        file.Name(),
	}
	if err := m.images.RecordImage(ctx, rec); err != nil {
		m.logger.Warn(ctx, "image record failed; stored object kept", "key", key, "error", err)
		return "", classify("record image", err)
	}

	m.logger.Info(ctx, "image uploaded", "file", file.Name(), "key", key, "id", rec.ID)
	return rec.PublicURL, nil
}

// storageKey is "<token>-<unix millis><.ext>". The extension comes from the
// file name, or from the content type when the name has none.
func (m *Managed) storageKey(file models.File) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return token + "-" + strconv.FormatInt(m.now().UnixMilli(), 10) + extension(file)
}

func extension(file models.File) string {
	if ext := strings.ToLower(filepath.Ext(file.Name())); ext != "" {
		return ext
	}
	if mt := mimetype.Lookup(file.ContentType()); mt != nil {
		return mt.Extension()
	}
	return ""
}
