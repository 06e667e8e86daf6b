// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search retrieves PubMed article metadata into a tabular result.
// Two providers implement the same capability: an Entrez E-utilities
// client bounded to 10,000 results, and a delegation to the locally
// installed Entrez Direct tools for larger sets.
// See docs/ARCHITECTURE.md § Search.
package search

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// Provider retrieves articles matching a PubMed query. Each retrieval
// path (Entrez, Entrez Direct) implements this interface so callers can
// swap paths without touching downstream code.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) (*types.ArticleTable, error)
}

// FormatTable writes the result as a human-readable table to w. Cell
// widths are computed with runewidth so CJK titles and authors align.
func FormatTable(t *types.ArticleTable, w io.Writer) {
	if t == nil || t.Len() == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-10s  %-60s  %-24s  %-12s\n", "PMID", "Title", "Authors", "Date")
	fmt.Fprintln(w, strings.Repeat("-", 112))

	for _, a := range t.Rows {
		fmt.Fprintf(w, "%-10s  %-60s  %-24s  %-12s\n",
			a.PMID,
			pad(a.Title, 60),
			pad(formatAuthors(a.Authors), 24),
			pad(a.PubDate, 12))
	}

	fmt.Fprintf(w, "\n%d results\n", t.Len())
}

// FormatJSON writes the rows as indented JSON to w.
func FormatJSON(t *types.ArticleTable, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t.Rows)
}

// WriteCSV writes the table to w with the fixed column header.
func WriteCSV(t *types.ArticleTable, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i := range t.Rows {
		if err := cw.Write(t.Row(i)); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	default:
		return authors[0] + " et al."
	}
}

// pad truncates s to max display cells, appending "..." when cut.
func pad(s string, max int) string {
	if runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max, "...")
}
