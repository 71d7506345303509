package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/imgdrop/internal/config"
	"github.com/dmitrijs2005/imgdrop/internal/filex"
	"github.com/dmitrijs2005/imgdrop/internal/models"
	"github.com/dmitrijs2005/imgdrop/internal/present"
)

var (
	ErrUsage            = errors.New("usage")
	ErrUploadsRunning   = errors.New("uploads still running")
	ErrNoManagedBackend = errors.New("managed backend unavailable")
	ErrNothingToCopy    = errors.New("no successful uploads to copy")
)

func usage(s string) error {
	return fmt.Errorf("%w: %s", ErrUsage, s)
}

// Add queues image files. Arguments may be files, directories or glob
// patterns.
func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("add <file|dir|glob>...")
	}

	var paths []string
	for _, arg := range args {
		if strings.ContainsAny(arg, "*?[") {
			matches, err := filepath.Glob(arg)
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", arg, err)
			}
			paths = append(paths, matches...)
			continue
		}
		paths = append(paths, arg)
	}

	files, skipped := filex.Collect(paths)
	for _, s := range skipped {
		fmt.Fprintf(a.out, "skipped %s: %v\n", s.Path, s.Reason)
	}

	added := a.queue.AddFiles(files...)
	fmt.Fprintf(a.out, "%d file(s) added, %d pending\n", len(added), a.queue.Counts().Pending)
	return nil
}

// List prints the queue with 1-based positions used by retry and remove.
func (a *App) List(ctx context.Context) error {
	items := a.queue.Items()
	if len(items) == 0 {
		fmt.Fprintln(a.out, "queue is empty")
		return nil
	}
	for i, it := range items {
		fmt.Fprintf(a.out, "%3d  %s\n", i+1, describe(it))
	}
	c := a.queue.Counts()
	fmt.Fprintf(a.out, "total %d: %d pending, %d uploading, %d done, %d failed\n",
		c.Total, c.Pending, c.Uploading, c.Succeeded, c.Failed)
	return nil
}

func describe(it models.Item) string {
	switch it.Status {
	case models.StatusUploading:
		return fmt.Sprintf("%-10s %s %3d%%", it.Status, it.File.Name(), it.Progress)
	case models.StatusSuccess:
		return fmt.Sprintf("%-10s %s -> %s", it.Status, it.File.Name(), it.PublicURL)
	case models.StatusError:
		return fmt.Sprintf("%-10s %s: %s", it.Status, it.File.Name(), it.ErrorMessage)
	default:
		return fmt.Sprintf("%-10s %s", it.Status, it.File.Name())
	}
}

// Start dispatches every pending or failed item.
func (a *App) Start(ctx context.Context) error {
	n, err := a.queue.StartAll(ctx, a.currentTransport(), a.target())
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(a.out, "nothing to upload")
		return nil
	}
	fmt.Fprintf(a.out, "uploading %d file(s) via %s\n", n, a.mode)
	return nil
}

// Wait blocks until running uploads finish.
func (a *App) Wait(ctx context.Context) error {
	a.waitWithProgress()
	c := a.queue.Counts()
	fmt.Fprintf(a.out, "%d done, %d failed\n", c.Succeeded, c.Failed)
	return nil
}

func (a *App) Retry(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("retry <n|id>")
	}
	it, err := a.resolveItem(args[0])
	if err != nil {
		return err
	}
	if err := a.queue.Retry(ctx, it.ID, a.currentTransport(), a.target()); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "retrying %s\n", it.File.Name())
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("remove <n|id>")
	}
	it, err := a.resolveItem(args[0])
	if err != nil {
		return err
	}
	a.queue.Remove(it.ID)
	fmt.Fprintf(a.out, "removed %s\n", it.File.Name())
	return nil
}

// Clear empties the queue once nothing is uploading.
func (a *App) Clear(ctx context.Context) error {
	if !a.queue.Settled() {
		return ErrUploadsRunning
	}
	a.queue.Clear()
	fmt.Fprintln(a.out, "queue cleared")
	return nil
}

// resolveItem accepts a 1-based list position or an ID prefix.
func (a *App) resolveItem(ref string) (models.Item, error) {
	items := a.queue.Items()
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(items) {
			return models.Item{}, fmt.Errorf("no item at position %d", n)
		}
		return items[n-1], nil
	}

	var found []models.Item
	for _, it := range items {
		if strings.HasPrefix(it.ID, ref) {
			found = append(found, it)
		}
	}
	switch len(found) {
	case 0:
		return models.Item{}, fmt.Errorf("no item matches %q", ref)
	case 1:
		return found[0], nil
	default:
		return models.Item{}, fmt.Errorf("%q matches %d items", ref, len(found))
	}
}

func (a *App) URLs(ctx context.Context) error {
	fmt.Fprintln(a.out, present.URLList(a.queue.Successful()))
	return nil
}

func (a *App) Markdown(ctx context.Context) error {
	fmt.Fprintln(a.out, present.MarkdownTable(a.queue.Successful()))
	return nil
}

// Copy puts the URL list, or the Markdown table with "md", on the
// clipboard. Without a usable clipboard the text is printed.
func (a *App) Copy(ctx context.Context, args []string) error {
	ok := a.queue.Successful()
	if len(ok) == 0 {
		return ErrNothingToCopy
	}

	text := present.URLList(ok)
	what := "URL list"
	if len(args) > 0 {
		switch args[0] {
		case "md", "markdown":
			text = present.MarkdownTable(ok)
			what = "Markdown table"
		case "urls":
		default:
			return usage("copy [urls|md]")
		}
	}

	copied, err := a.copier.Copy(text)
	if err != nil {
		return err
	}
	if copied {
		fmt.Fprintf(a.out, "%s copied (%d item(s))\n", what, len(ok))
	}
	return nil
}

// Mode shows or switches the transport.
func (a *App) Mode(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(a.out, "mode: %s\n", a.mode)
		return nil
	}
	m, err := config.ParseMode(args[0])
	if err != nil {
		return err
	}
	a.mode = m
	fmt.Fprintf(a.out, "mode: %s\n", a.mode)
	if err := a.currentTransport().Validate(a.target()); err != nil {
		fmt.Fprintf(a.out, "! %v\n", err)
	}
	return nil
}

// Webhook shows, saves or, with "-", forgets the webhook URL.
func (a *App) Webhook(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if a.webhookURL == "" {
			fmt.Fprintln(a.out, "webhook url not set")
		} else {
			fmt.Fprintf(a.out, "webhook url: %s\n", a.webhookURL)
		}
		return nil
	}

	raw := args[0]
	if raw == "-" {
		raw = ""
	}
	saved, err := a.settings.SetWebhookURL(ctx, raw)
	if err != nil {
		return err
	}
	a.webhookURL = saved
	if saved == "" {
		fmt.Fprintln(a.out, "webhook url cleared")
	} else {
		fmt.Fprintf(a.out, "webhook url saved: %s\n", saved)
	}
	return nil
}

func (a *App) requireCatalog() error {
	if a.catalog == nil {
		if a.banner != "" {
			return fmt.Errorf("%w: %s", ErrNoManagedBackend, a.banner)
		}
		return ErrNoManagedBackend
	}
	return nil
}

// Projects lists projects; "refresh" bypasses the cache.
func (a *App) Projects(ctx context.Context, args []string) error {
	if err := a.requireCatalog(); err != nil {
		return err
	}
	list, err := a.catalog.ListProjects(ctx, slices.Contains(args, "refresh"))
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "no projects yet")
		return nil
	}
	selected := ""
	if a.project != nil {
		selected = a.project.ID
	}
	return present.WriteProjects(a.out, list, selected)
}

// Project handles "project new <name>", "project use <n|id>" and
// "project none". Without arguments it shows the selection.
func (a *App) Project(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if a.project == nil {
			fmt.Fprintln(a.out, "no project selected")
		} else {
			fmt.Fprintf(a.out, "project: %s (%s)\n", a.project.Name, a.project.ID)
		}
		return nil
	}

	switch args[0] {
	case "none":
		a.project = nil
		fmt.Fprintln(a.out, "project cleared")
		return nil

	case "new":
		if err := a.requireCatalog(); err != nil {
			return err
		}
		p, err := a.catalog.CreateProject(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		a.project = p
		fmt.Fprintf(a.out, "project %q created and selected\n", p.Name)
		return nil

	case "use":
		if len(args) != 2 {
			return usage("project use <n|id>")
		}
		if err := a.requireCatalog(); err != nil {
			return err
		}
		p, err := a.resolveProject(ctx, args[1])
		if err != nil {
			return err
		}
		a.project = p
		fmt.Fprintf(a.out, "project %q selected\n", p.Name)
		return nil

	default:
		return usage("project [new <name> | use <n|id> | none]")
	}
}

func (a *App) resolveProject(ctx context.Context, ref string) (*models.Project, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		list, err := a.catalog.ListProjects(ctx, false)
		if err != nil {
			return nil, err
		}
		if n < 1 || n > len(list) {
			return nil, fmt.Errorf("no project at position %d", n)
		}
		return list[n-1], nil
	}
	return a.catalog.GetProject(ctx, ref)
}

// Explorer lists earlier uploads: of the selected project by default,
// of every project with "all". "refresh" bypasses the cache.
func (a *App) Explorer(ctx context.Context, args []string) error {
	if err := a.requireCatalog(); err != nil {
		return err
	}

	var projectID *string
	if a.project != nil && !slices.Contains(args, "all") {
		id := a.project.ID
		projectID = &id
	}

	recs, err := a.catalog.ListImages(ctx, projectID, slices.Contains(args, "refresh"))
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "no images found")
		return nil
	}
	return present.WriteImages(a.out, recs)
}

// Status shows mode, selection, banner and queue counts.
func (a *App) Status(ctx context.Context) error {
	fmt.Fprintf(a.out, "mode: %s\n", a.mode)
	if a.project != nil {
		fmt.Fprintf(a.out, "project: %s\n", a.project.Name)
	}
	if a.webhookURL != "" {
		fmt.Fprintf(a.out, "webhook url: %s\n", a.webhookURL)
	}
	if a.banner != "" {
		fmt.Fprintf(a.out, "! %s\n", a.banner)
	}
	if err := a.currentTransport().Validate(a.target()); err != nil && (a.mode != config.ModeManaged || a.banner == "") {
		fmt.Fprintf(a.out, "! %v\n", err)
	}
	c := a.queue.Counts()
	fmt.Fprintf(a.out, "queue: %d total, %d pending, %d uploading, %d done, %d failed\n",
		c.Total, c.Pending, c.Uploading, c.Succeeded, c.Failed)
	return nil
}
