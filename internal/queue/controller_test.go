package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/imgdrop/internal/logging"
	"github.com/dmitrijs2005/imgdrop/internal/models"
	"github.com/dmitrijs2005/imgdrop/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(name string) models.File {
	return models.FileFromBytes(name, "image/png", []byte(name))
}

func newController() *Controller {
	return NewController(logging.Nop(), nil)
}

func statusOf(t *testing.T, c *Controller, id string) models.Status {
	t.Helper()
	it, ok := c.Get(id)
	require.True(t, ok)
	return it.Status
}

func TestAddFiles_IdleInOrderWithDistinctIDs(t *testing.T) {
	c := newController()

	added := c.AddFiles(file("a.png"), file("b.png"))
	require.Len(t, added, 2)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a.png", items[0].File.Name())
	assert.Equal(t, "b.png", items[1].File.Name())
	assert.NotEqual(t, items[0].ID, items[1].ID)
	for _, it := range items {
		assert.Equal(t, models.StatusIdle, it.Status)
		assert.Zero(t, it.Progress)
	}
	assert.Equal(t, Counts{Pending: 2, Total: 2}, c.Counts())
}

func TestStartAll_CompletesEveryItem(t *testing.T) {
	c := newController()
	c.AddFiles(file("a.png"), file("b.png"))

	tr := &instantTransport{}
	n, err := c.StartAll(context.Background(), tr, transport.Target{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	c.Wait()

	for _, it := range c.Items() {
		assert.Equal(t, models.StatusSuccess, it.Status)
		assert.Equal(t, 100, it.Progress)
		assert.Equal(t, "https://cdn/"+it.File.Name(), it.PublicURL)
	}
	assert.ElementsMatch(t, []string{"a.png", "b.png"}, tr.Calls())
}

func TestWait_SequentialRounds(t *testing.T) {
	c := newController()
	c.Wait()

	tr := &instantTransport{}
	c.AddFiles(file("a.png"))
	_, err := c.StartAll(context.Background(), tr, transport.Target{})
	require.NoError(t, err)
	c.Wait()
	assert.True(t, c.Settled())

	c.AddFiles(file("b.png"))
	_, err = c.StartAll(context.Background(), tr, transport.Target{})
	require.NoError(t, err)
	c.Wait()

	assert.Equal(t, Counts{Succeeded: 2, Total: 2}, c.Counts())
	assert.Equal(t, []string{"a.png", "b.png"}, tr.Calls())
}

func TestStartAll_OnlyIdleAndErrorOnce(t *testing.T) {
	c := newController()
	c.AddFiles(file("ok.png"), file("bad.png"))

	first := &instantTransport{outcomes: map[string]transport.Event{
		"bad.png": {Kind: transport.EventError, Err: errors.New("HTTP 500")},
	}}
	_, err := c.StartAll(context.Background(), first, transport.Target{})
	require.NoError(t, err)
	c.Wait()

	c.AddFiles(file("new.png"))

	second := &instantTransport{}
	n, err := c.StartAll(context.Background(), second, transport.Target{})
	require.NoError(t, err)
	c.Wait()

	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"bad.png", "new.png"}, second.Calls())
	assert.Equal(t, Counts{Succeeded: 3, Total: 3}, c.Counts())
}

func TestStartAll_SkipsUploadingItems(t *testing.T) {
	c := newController()
	c.AddFiles(file("slow.png"))

	tr := newManualTransport()
	_, err := c.StartAll(context.Background(), tr, transport.Target{})
	require.NoError(t, err)
	send := tr.next(t)

	n, err := c.StartAll(context.Background(), tr, transport.Target{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, tr.sends)

	send.succeed("https://cdn/slow.png")
	c.Wait()
}

func TestStartAll_ConfigurationMissingChangesNothing(t *testing.T) {
	c := newController()
	c.AddFiles(file("a.png"))

	tr := &instantTransport{validateErr: fmt.Errorf("%w: IMGDROP_BACKEND_URL", transport.ErrConfigurationMissing)}
	n, err := c.StartAll(context.Background(), tr, transport.Target{})
	require.ErrorIs(t, err, transport.ErrConfigurationMissing)
	assert.Zero(t, n)
	assert.Empty(t, tr.Calls())
	assert.Equal(t, models.StatusIdle, c.Items()[0].Status)
}

func TestCompletionsInAnyOrder(t *testing.T) {
	c := newController()
	added := c.AddFiles(file("a.png"), file("b.png"))

	tr := newManualTransport()
	_, err := c.StartAll(context.Background(), tr, transport.Target{})
	require.NoError(t, err)

	sends := map[string]*manualSend{}
	for range 2 {
		s := tr.next(t)
		sends[s.file.Name()] = s
	}

	sends["b.png"].progress(40)
	sends["b.png"].succeed("https://cdn/b.png")
	sends["a.png"].fail(errors.New("HTTP 413: file too big"))
	c.Wait()

	a, _ := c.Get(added[0].ID)
	b, _ := c.Get(added[1].ID)
	assert.Equal(t, models.StatusError, a.Status)
	assert.Equal(t, "HTTP 413: file too big", a.ErrorMessage)
	assert.Equal(t, models.StatusSuccess, b.Status)
	assert.Equal(t, "https://cdn/b.png", b.PublicURL)
}

func TestProgressAppliedWhileUploading(t *testing.T) {
	c := newController()
	added := c.AddFiles(file("a.png"))

	tr := newManualTransport()
	_, err := c.StartAll(context.Background(), tr, transport.Target{})
	require.NoError(t, err)
	s := tr.next(t)

	assert.Equal(t, models.StatusUploading, statusOf(t, c, added[0].ID))

	s.progress(30)
	require.Eventually(t, func() bool {
		it, _ := c.Get(added[0].ID)
		return it.Progress == 30
	}, time.Second, 5*time.Millisecond)
	assert.False(t, c.Settled())

	s.succeed("https://cdn/a.png")
	c.Wait()
	assert.True(t, c.Settled())
}

func TestRetry_DiscardsOlderAttempt(t *testing.T) {
	c := newController()
	added := c.AddFiles(file("a.png"))
	id := added[0].ID

	tr := newManualTransport()
	_, err := c.StartAll(context.Background(), tr, transport.Target{})
	require.NoError(t, err)
	first := tr.next(t)

	require.NoError(t, c.Retry(context.Background(), id, tr, transport.Target{}))
	second := tr.next(t)

	second.succeed("https://cdn/second.png")
	first.progress(70)
	first.fail(errors.New("stale failure"))
	c.Wait()

	it, _ := c.Get(id)
	assert.Equal(t, models.StatusSuccess, it.Status)
	assert.Equal(t, "https://cdn/second.png", it.PublicURL)
	assert.Equal(t, 100, it.Progress)
}

func TestRetry_RestartsSucceededItem(t *testing.T) {
	c := newController()
	added := c.AddFiles(file("a.png"))

	_, err := c.StartAll(context.Background(), &instantTransport{}, transport.Target{})
	require.NoError(t, err)
	c.Wait()
	require.Equal(t, models.StatusSuccess, statusOf(t, c, added[0].ID))

	tr := newManualTransport()
	require.NoError(t, c.Retry(context.Background(), added[0].ID, tr, transport.Target{}))

	it, _ := c.Get(added[0].ID)
	assert.Equal(t, models.StatusUploading, it.Status)
	assert.Zero(t, it.Progress)
	assert.Empty(t, it.PublicURL)

	tr.next(t).fail(errors.New("gone"))
	c.Wait()
	assert.Equal(t, models.StatusError, statusOf(t, c, added[0].ID))
}

func TestRetry_Errors(t *testing.T) {
	c := newController()
	require.ErrorIs(t, c.Retry(context.Background(), "missing", &instantTransport{}, transport.Target{}), ErrItemNotFound)

	added := c.AddFiles(file("a.png"))
	tr := &instantTransport{validateErr: transport.ErrConfigurationMissing}
	require.ErrorIs(t, c.Retry(context.Background(), added[0].ID, tr, transport.Target{}), transport.ErrConfigurationMissing)
	assert.Equal(t, models.StatusIdle, statusOf(t, c, added[0].ID))
}

func TestRemove_MidUploadIsNotResurrected(t *testing.T) {
	c := newController()
	added := c.AddFiles(file("a.png"), file("b.png"))

	tr := newManualTransport()
	_, err := c.StartAll(context.Background(), tr, transport.Target{})
	require.NoError(t, err)
	s1, s2 := tr.next(t), tr.next(t)

	removed := added[0]
	if s2.file.Name() == "a.png" {
		s1, s2 = s2, s1
	}
	require.True(t, c.Remove(removed.ID))
	assert.False(t, c.Remove(removed.ID))

	s1.progress(50)
	s1.succeed("https://cdn/a.png")
	s2.succeed("https://cdn/b.png")
	c.Wait()

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, added[1].ID, items[0].ID)
	_, ok := c.Get(removed.ID)
	assert.False(t, ok)
}

func TestClear_IgnoresLateUpdates(t *testing.T) {
	c := newController()
	c.AddFiles(file("a.png"))

	tr := newManualTransport()
	_, err := c.StartAll(context.Background(), tr, transport.Target{})
	require.NoError(t, err)
	s := tr.next(t)

	c.Clear()
	s.succeed("https://cdn/a.png")
	c.Wait()

	assert.Empty(t, c.Items())
	assert.Equal(t, Counts{}, c.Counts())
}

func TestSuccessful_ExcludesSentinelAndFailures(t *testing.T) {
	c := newController()
	c.AddFiles(file("one.png"), file("nourl.png"), file("bad.png"), file("two.png"))

	tr := &instantTransport{outcomes: map[string]transport.Event{
		"nourl.png": {Kind: transport.EventSuccess, PublicURL: models.URLNotFound},
		"bad.png":   {Kind: transport.EventError, Err: errors.New("invalid response")},
	}}
	_, err := c.StartAll(context.Background(), tr, transport.Target{})
	require.NoError(t, err)
	c.Wait()

	ok := c.Successful()
	require.Len(t, ok, 2)
	assert.Equal(t, "one.png", ok[0].File.Name())
	assert.Equal(t, "two.png", ok[1].File.Name())
	assert.Equal(t, Counts{Succeeded: 3, Failed: 1, Total: 4}, c.Counts())
}

func TestObserverSeesEveryChange(t *testing.T) {
	c := newController()
	added := c.AddFiles(file("a.png"))

	var (
		mu   sync.Mutex
		seen []models.Item
	)
	c.SetObserver(func(it models.Item) {
		mu.Lock()
		seen = append(seen, it)
		mu.Unlock()
	})

	_, err := c.StartAll(context.Background(), &instantTransport{}, transport.Target{})
	require.NoError(t, err)
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	for _, it := range seen {
		assert.Equal(t, added[0].ID, it.ID)
	}
	assert.Equal(t, models.StatusUploading, seen[0].Status)
	assert.Equal(t, 50, seen[1].Progress)
	assert.Equal(t, models.StatusSuccess, seen[2].Status)
}

func TestRecorderCountsAttempts(t *testing.T) {
	rec := &countingRecorder{}
	c := NewController(logging.Nop(), rec)
	c.AddFiles(file("a.png"), file("b.png"))

	tr := &instantTransport{outcomes: map[string]transport.Event{
		"b.png": {Kind: transport.EventError, Err: errors.New("x")},
	}}
	_, err := c.StartAll(context.Background(), tr, transport.Target{})
	require.NoError(t, err)
	c.Wait()

	assert.Equal(t, 2, rec.started)
	assert.ElementsMatch(t, []string{"success", "error"}, rec.outcomes)
}

func TestDispatchIgnoresCallerCancellation(t *testing.T) {
	c := newController()
	added := c.AddFiles(file("a.png"))

	ctx, cancel := context.WithCancel(context.Background())
	tr := newManualTransport()
	_, err := c.StartAll(ctx, tr, transport.Target{})
	require.NoError(t, err)
	s := tr.next(t)
	cancel()
	require.NoError(t, s.ctx.Err())

	s.succeed("https://cdn/a.png")
	c.Wait()
	assert.Equal(t, models.StatusSuccess, statusOf(t, c, added[0].ID))
}

func TestErrorMessageFallback(t *testing.T) {
	assert.Equal(t, "upload failed", errorMessage(nil))
	assert.Equal(t, "boom", errorMessage(errors.New("boom")))
}
