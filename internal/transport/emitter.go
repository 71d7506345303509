package transport

import (
	"sync"
	"time"
)

const eventBuffer = 16

// emitter owns the event channel of one Send. Progress is monotonic and
// dropped when the buffer is full; the terminal event is always delivered
// and closes the channel. Anything sent after that is ignored.
type emitter struct {
	mu   sync.Mutex
	ch   chan Event
	last int
	done bool
}

func newEmitter() *emitter {
	return &emitter{ch: make(chan Event, eventBuffer)}
}

func (e *emitter) events() <-chan Event {
	return e.ch
}

func (e *emitter) progress(p int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done || p <= e.last {
		return
	}
	select {
	case e.ch <- Event{Kind: EventProgress, Progress: p}:
		e.last = p
	default:
	}
}

func (e *emitter) succeed(url string) {
	e.finish(Event{Kind: EventSuccess, Progress: 100, PublicURL: url})
}

func (e *emitter) fail(err error) {
	e.finish(Event{Kind: EventError, Progress: e.lastProgress(), Err: err})
}

func (e *emitter) lastProgress() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

func (e *emitter) finish(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return
	}
	e.done = true
	e.ch <- ev
	close(e.ch)
}

// synthesize advances progress by step every interval up to ceiling until
// the returned stop function is called. stop waits for the ticker goroutine
// so no progress follows it.
func (e *emitter) synthesize(step int, interval time.Duration, ceiling int) (stop func()) {
	if step <= 0 || interval <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(interval)
	quit := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		p := 0
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				p = min(p+step, ceiling)
				e.progress(p)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(quit)
			wg.Wait()
		})
	}
}
