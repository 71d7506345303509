package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/imgdrop/internal/models"
	"github.com/dmitrijs2005/imgdrop/internal/transport"
)

// instantTransport answers every Send immediately from outcomes, keyed by
// file name. Unknown names succeed with "https://cdn/<name>".
type instantTransport struct {
	mu          sync.Mutex
	validateErr error
	outcomes    map[string]transport.Event
	calls       []string
}

func (f *instantTransport) Name() string { return "instant" }

func (f *instantTransport) Validate(transport.Target) error { return f.validateErr }

func (f *instantTransport) Send(ctx context.Context, file models.File, target transport.Target) <-chan transport.Event {
	f.mu.Lock()
	f.calls = append(f.calls, file.Name())
	ev, ok := f.outcomes[file.Name()]
	f.mu.Unlock()

	if !ok {
		ev = transport.Event{Kind: transport.EventSuccess, Progress: 100, PublicURL: "https://cdn/" + file.Name()}
	}

	ch := make(chan transport.Event, 2)
	ch <- transport.Event{Kind: transport.EventProgress, Progress: 50}
	ch <- ev
	close(ch)
	return ch
}

func (f *instantTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// manualTransport hands every Send to the test, which drives the events.
type manualTransport struct {
	sends chan *manualSend
}

type manualSend struct {
	ctx  context.Context
	file models.File
	ch   chan transport.Event
}

func newManualTransport() *manualTransport {
	return &manualTransport{sends: make(chan *manualSend, 16)}
}

func (m *manualTransport) Name() string { return "manual" }

func (m *manualTransport) Validate(transport.Target) error { return nil }

func (m *manualTransport) Send(ctx context.Context, file models.File, target transport.Target) <-chan transport.Event {
	s := &manualSend{ctx: ctx, file: file, ch: make(chan transport.Event)}
	m.sends <- s
	return s.ch
}

func (m *manualTransport) next(t *testing.T) *manualSend {
	t.Helper()
	select {
	case s := <-m.sends:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("expected a Send call")
		return nil
	}
}

func (s *manualSend) progress(p int) {
	s.ch <- transport.Event{Kind: transport.EventProgress, Progress: p}
}

func (s *manualSend) succeed(url string) {
	s.ch <- transport.Event{Kind: transport.EventSuccess, Progress: 100, PublicURL: url}
	close(s.ch)
}

func (s *manualSend) fail(err error) {
	s.ch <- transport.Event{Kind: transport.EventError, Err: err}
	close(s.ch)
}

type countingRecorder struct {
	mu       sync.Mutex
	started  int
	outcomes []string
}

func (r *countingRecorder) UploadStarted(string) {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
}

func (r *countingRecorder) UploadFinished(_ string, outcome string, _ time.Duration) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, outcome)
	r.mu.Unlock()
}
