// Package filex turns command-line paths into upload files.
package filex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dmitrijs2005/imgdrop/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

var ErrNotImage = errors.New("not an image")

// Skipped names a path that was not added and why.
type Skipped struct {
	Path   string
	Reason error
}

// Collect resolves paths into image files. Directories are walked
// recursively and their non-image files are ignored silently; a non-image
// file named explicitly is reported as skipped. Results keep argument order,
// directory contents sorted by path.
func Collect(paths []string) ([]models.File, []Skipped) {
	var (
		files   []models.File
		skipped []Skipped
	)

	for _, p := range paths {
		p = expandHome(p)
		info, err := os.Stat(p)
		if err != nil {
			skipped = append(skipped, Skipped{Path: p, Reason: err})
			continue
		}

		if !info.IsDir() {
			f, err := Inspect(p)
			if err != nil {
				skipped = append(skipped, Skipped{Path: p, Reason: err})
				continue
			}
			files = append(files, f)
			continue
		}

		var found []string
		walkErr := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				found = append(found, path)
			}
			return nil
		})
		if walkErr != nil {
			skipped = append(skipped, Skipped{Path: p, Reason: walkErr})
		}

		sort.Strings(found)
		for _, path := range found {
			f, err := Inspect(path)
			if err != nil {
				if !errors.Is(err, ErrNotImage) {
					skipped = append(skipped, Skipped{Path: path, Reason: err})
				}
				continue
			}
			files = append(files, f)
		}
	}

	return files, skipped
}

// Inspect sniffs the content type of the file at path and returns it as an
// upload file when it is an image.
func Inspect(path string) (models.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.File{}, err
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return models.File{}, fmt.Errorf("detect %s: %w", path, err)
	}
	ct := mt.String()
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if !strings.HasPrefix(ct, "image/") {
		return models.File{}, fmt.Errorf("%w: %s", ErrNotImage, ct)
	}

	return models.FileFromPath(path, filepath.Base(path), info.Size(), ct), nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
