package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// collect drains ch and checks the event sequence shape: progress only,
// then exactly one terminal event last.
func collect(t *testing.T, ch <-chan Event) []Event {
	t.Helper()

	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				require.NotEmpty(t, events, "channel closed without events")
				last := events[len(events)-1]
				require.True(t, last.Terminal(), "last event must be terminal")
				for _, e := range events[:len(events)-1] {
					require.Equal(t, EventProgress, e.Kind)
				}
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out waiting for events")
		}
	}
}

func terminal(events []Event) Event {
	return events[len(events)-1]
}

func progressValues(events []Event) []int {
	var out []int
	for _, e := range events {
		if e.Kind == EventProgress {
			out = append(out, e.Progress)
		}
	}
	return out
}
