// Package queue keeps the ordered list of upload items and dispatches them
// to a transport.
//
// Each dispatch gets an attempt number. Updates are applied by item ID and
// only when they belong to the item's latest attempt, so a retry silences
// the attempt it replaced and a removed item is never brought back.
package queue

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/imgdrop/internal/logging"
	"github.com/dmitrijs2005/imgdrop/internal/metrics"
	"github.com/dmitrijs2005/imgdrop/internal/models"
	"github.com/dmitrijs2005/imgdrop/internal/transport"
)

var ErrItemNotFound = errors.New("item not found")

// Observer is called with every item change, outside the controller lock.
type Observer func(models.Item)

// Counts summarizes the queue by status. Pending counts Idle items.
type Counts struct {
	Pending   int
	Uploading int
	Succeeded int
	Failed    int
	Total     int
}

type Controller struct {
	mu       sync.Mutex
	items    []models.Item
	attempts map[string]int

	wg       sync.WaitGroup
	observer Observer
	recorder metrics.Recorder
	logger   logging.Logger
}

func NewController(l logging.Logger, rec metrics.Recorder) *Controller {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Controller{
		attempts: make(map[string]int),
		recorder: rec,
		logger:   l,
	}
}

// SetObserver installs fn; nil removes the observer.
func (c *Controller) SetObserver(fn Observer) {
	c.mu.Lock()
	c.observer = fn
	c.mu.Unlock()
}

// AddFiles appends one Idle item per file, in order, and returns them.
func (c *Controller) AddFiles(files ...models.File) []models.Item {
	added := make([]models.Item, 0, len(files))
	for _, f := range files {
		added = append(added, models.NewItem(f))
	}

	c.mu.Lock()
	c.items = append(c.items, added...)
	c.mu.Unlock()

	return added
}

// Items returns a snapshot in insertion order.
func (c *Controller) Items() []models.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Controller) Get(id string) (models.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	return models.Item{}, false
}

func (c *Controller) Counts() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := Counts{Total: len(c.items)}
	for _, it := range c.items {
		switch it.Status {
		case models.StatusIdle:
			n.Pending++
		case models.StatusUploading:
			n.Uploading++
		case models.StatusSuccess:
			n.Succeeded++
		case models.StatusError:
			n.Failed++
		}
	}
	return n
}

// Successful returns items that finished with a usable URL, in order.
func (c *Controller) Successful() []models.Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []models.Item
	for _, it := range c.items {
		if it.HasURL() {
			out = append(out, it)
		}
	}
	return out
}

// Settled reports whether no item is uploading.
func (c *Controller) Settled() bool {
	return c.Counts().Uploading == 0
}

// StartAll dispatches every Idle or Error item once and returns how many
// were started. A configuration error stops it before anything changes.
func (c *Controller) StartAll(ctx context.Context, t transport.Transport, target transport.Target) (int, error) {
	if err := t.Validate(target); err != nil {
		return 0, err
	}

	type job struct {
		item    models.Item
		attempt int
	}

	c.mu.Lock()
	var jobs []job
	for i, it := range c.items {
		if it.Status != models.StatusIdle && it.Status != models.StatusError {
			continue
		}
		next, err := it.Start()
		if err != nil {
			c.logger.Warn(ctx, "cannot start item", "item", it.ID, "error", err)
			continue
		}
		c.items[i] = next
		c.attempts[next.ID]++
		jobs = append(jobs, job{item: next, attempt: c.attempts[next.ID]})
	}
	observer := c.observer
	c.mu.Unlock()

	for _, j := range jobs {
		notify(observer, j.item)
		c.dispatch(ctx, t, target, j.item, j.attempt)
	}

	c.logger.Info(ctx, "uploads started", "count", len(jobs), "transport", t.Name())
	return len(jobs), nil
}

// Retry restarts one item whatever its status. Updates still arriving from
// an earlier attempt are dropped.
func (c *Controller) Retry(ctx context.Context, id string, t transport.Transport, target transport.Target) error {
	if err := t.Validate(target); err != nil {
		return err
	}

	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return ErrItemNotFound
	}
	next, err := c.items[i].Start()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.items[i] = next
	c.attempts[id]++
	attempt := c.attempts[id]
	observer := c.observer
	c.mu.Unlock()

	notify(observer, next)
	c.dispatch(ctx, t, target, next, attempt)
	return nil
}

// Remove drops the item. An upload still in flight keeps running but its
// updates are ignored.
func (c *Controller) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	delete(c.attempts, id)
	return true
}

// Clear drops every item.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.attempts = make(map[string]int)
}

// Wait blocks until every dispatched attempt has delivered its terminal event.
// It must not run concurrently with StartAll or Retry: a dispatch that starts
// while Wait is blocked on an idle queue races the WaitGroup.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) dispatch(ctx context.Context, t transport.Transport, target transport.Target, it models.Item, attempt int) {
	c.wg.Add(1)
	c.recorder.UploadStarted(t.Name())
	started := time.Now()

	go func() {
		defer c.wg.Done()

		for ev := range t.Send(context.WithoutCancel(ctx), it.File, target) {
			updated, ok := c.apply(ctx, it.ID, attempt, ev)
			if ev.Terminal() {
				c.recorder.UploadFinished(t.Name(), ev.Kind.String(), time.Since(started))
			}
			if ok {
				c.mu.Lock()
				observer := c.observer
				c.mu.Unlock()
				notify(observer, updated)
			}
		}
	}()
}

// apply folds ev into the item if attempt is still current.
func (c *Controller) apply(ctx context.Context, id string, attempt int, ev transport.Event) (models.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attempts[id] != attempt {
		return models.Item{}, false
	}
	i := c.indexOf(id)
	if i < 0 {
		return models.Item{}, false
	}

	cur := c.items[i]
	var (
		next models.Item
		err  error
	)
	switch ev.Kind {
	case transport.EventProgress:
		next = cur.WithProgress(ev.Progress)
	case transport.EventSuccess:
		next, err = cur.Succeed(ev.PublicURL)
	case transport.EventError:
		next, err = cur.Fail(errorMessage(ev.Err))
	}
	if err != nil {
		c.logger.Warn(ctx, "dropping update", "item", id, "event", ev.Kind.String(), "error", err)
		return models.Item{}, false
	}

	c.items[i] = next
	return next, true
}

func (c *Controller) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(it models.Item) bool { return it.ID == id })
}

func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "upload failed"
	}
	return err.Error()
}

func notify(fn Observer, it models.Item) {
	if fn != nil {
		fn(it)
	}
}
