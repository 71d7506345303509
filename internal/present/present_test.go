package present

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/imgdrop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func succeeded(t *testing.T, name, url string) models.Item {
	t.Helper()
	it, err := models.NewItem(models.FileFromBytes(name, "image/png", nil)).Start()
	require.NoError(t, err)
	it, err = it.Succeed(url)
	require.NoError(t, err)
	return it
}

func TestMarkdownTable_TwoItems(t *testing.T) {
	items := []models.Item{succeeded(t, "a.png", "u1"), succeeded(t, "b.png", "u2")}

	want := "| Nome da Imagem | URL |\n" +
		"|---|---|\n" +
		"| a.png | u1 |\n" +
		"| b.png | u2 |"
	assert.Equal(t, want, MarkdownTable(items))
}

func TestMarkdownTable_Empty(t *testing.T) {
	assert.Equal(t, "| Nome da Imagem | URL |\n|---|---|", MarkdownTable(nil))
}

func TestURLList(t *testing.T) {
	items := []models.Item{succeeded(t, "a.png", "u1"), succeeded(t, "b.png", "u2")}
	assert.Equal(t, "u1\nu2", URLList(items))
	assert.Equal(t, "", URLList(nil))
}

func TestWriteImages(t *testing.T) {
	blog := "Blog"
	recs := []*models.ImageRecord{
		{Name: "a.png", ProjectName: &blog, PublicURL: "https://cdn/a.png", CreatedAt: time.Now()},
		{Name: "b.png", PublicURL: "https://cdn/b.png", CreatedAt: time.Now()},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteImages(&buf, recs))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Blog")
	assert.Contains(t, out, "https://cdn/b.png")
	assert.Regexp(t, `b\.png\s+-\s+`, out)
}

func TestWriteProjects_MarksSelected(t *testing.T) {
	projects := []*models.Project{{ID: "p1", Name: "One"}, {ID: "p2", Name: "Two"}}

	var buf bytes.Buffer
	require.NoError(t, WriteProjects(&buf, projects, "p2"))
	assert.Regexp(t, `\*\s+p2\s+Two`, buf.String())
}

type failingClipboard struct{}

func (failingClipboard) WriteAll(string) error { return errors.New("no display") }

type recordingClipboard struct{ got string }

func (r *recordingClipboard) WriteAll(s string) error { r.got = s; return nil }

func TestFallbackClipboard(t *testing.T) {
	var buf bytes.Buffer
	c := FallbackClipboard{Primary: failingClipboard{}, Fallback: WriterClipboard{W: &buf}}

	ok, err := c.Copy("u1\nu2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "u1\nu2\n", buf.String())

	rec := &recordingClipboard{}
	ok, err = FallbackClipboard{Primary: rec, Fallback: WriterClipboard{W: &buf}}.Copy("x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", rec.got)
}

func TestSystemClipboard_UsesSeam(t *testing.T) {
	orig := clipboardWriteAll
	t.Cleanup(func() { clipboardWriteAll = orig })

	var got string
	clipboardWriteAll = func(s string) error { got = s; return nil }

	err := SystemClipboard{}.WriteAll("hello")
	if err != nil {
		t.Skip("clipboard unsupported here")
	}
	assert.Equal(t, "hello", got)
}
