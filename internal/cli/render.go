package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/imgdrop/internal/models"
)

const progressRefresh = 200 * time.Millisecond

// onItemChange reports finished uploads as they arrive. It runs on upload
// goroutines.
func (a *App) onItemChange(it models.Item) {
	var line string
	switch it.Status {
	case models.StatusSuccess:
		if it.HasURL() {
			line = fmt.Sprintf("[done] %s -> %s", it.File.Name(), it.PublicURL)
		} else {
			line = fmt.Sprintf("[done] %s %s", it.File.Name(), it.PublicURL)
		}
	case models.StatusError:
		line = fmt.Sprintf("[fail] %s: %s", it.File.Name(), it.ErrorMessage)
	default:
		return
	}

	a.outMu.Lock()
	defer a.outMu.Unlock()
	if a.progressShown {
		fmt.Fprint(a.out, "\r\033[K")
		a.progressShown = false
	}
	fmt.Fprintln(a.out, line)
}

// waitWithProgress blocks on the queue. On a terminal it redraws a one-line
// summary while uploads run.
func (a *App) waitWithProgress() {
	if !a.interactive {
		a.queue.Wait()
		return
	}

	done := make(chan struct{})
	go func() {
		a.queue.Wait()
		close(done)
	}()

	ticker := time.NewTicker(progressRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			a.outMu.Lock()
			if a.progressShown {
				fmt.Fprint(a.out, "\r\033[K")
				a.progressShown = false
			}
			a.outMu.Unlock()
			return
		case <-ticker.C:
			line := progressLine(a.queue.Items())
			a.outMu.Lock()
			fmt.Fprint(a.out, "\r\033[K"+line)
			a.progressShown = true
			a.outMu.Unlock()
		}
	}
}

// progressLine summarizes running uploads, e.g.
// "uploading 2/5 [#####-----] 50%".
func progressLine(items []models.Item) string {
	var running, sum int
	for _, it := range items {
		if it.Status == models.StatusUploading {
			running++
			sum += it.Progress
		}
	}
	if running == 0 {
		return ""
	}
	avg := sum / running
	filled := avg / 10
	return fmt.Sprintf("uploading %d/%d [%s%s] %d%%",
		running, len(items), strings.Repeat("#", filled), strings.Repeat("-", 10-filled), avg)
}
