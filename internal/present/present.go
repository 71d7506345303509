// Package present formats finished uploads for sharing.
package present

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/imgdrop/internal/models"
)

const (
	markdownHeader    = "| Nome da Imagem | URL |"
	markdownSeparator = "|---|---|"
)

// URLList joins the public URLs of items with newlines.
func URLList(items []models.Item) string {
	urls := make([]string, 0, len(items))
	for _, it := range items {
		urls = append(urls, it.PublicURL)
	}
	return strings.Join(urls, "\n")
}

// MarkdownTable renders a two-column table of file names and URLs, one row
// per item in order.
func MarkdownTable(items []models.Item) string {
	lines := make([]string, 0, len(items)+2)
	lines = append(lines, markdownHeader, markdownSeparator)
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("| %s | %s |", it.File.Name(), it.PublicURL))
	}
	return strings.Join(lines, "\n")
}

// WriteImages prints explorer records as an aligned table.
func WriteImages(w io.Writer, recs []*models.ImageRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPROJECT\tUPLOADED\tURL")
	for _, r := range recs {
		project := "-"
		if r.ProjectName != nil {
			project = *r.ProjectName
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, project, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.PublicURL)
	}
	return tw.Flush()
}

// WriteProjects prints projects, marking the selected one with "*".
func WriteProjects(w io.Writer, projects []*models.Project, selected string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, " \tID\tNAME\tCREATED")
	for _, p := range projects {
		mark := " "
		if p.ID == selected {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, p.ID, p.Name, p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
