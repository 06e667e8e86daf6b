package search

import (
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID       string    `yaml:"id"`
	Type     string    `yaml:"type"`
	Title    string    `yaml:"title"`
	Author   []CSLName `yaml:"author,omitempty"`
	Abstract string    `yaml:"abstract,omitempty"`
	Issued   *CSLDate  `yaml:"issued,omitempty"`
	PMID     string    `yaml:"PMID,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes the table as a CSL-YAML list to w.
func FormatCSL(t *types.ArticleTable, w io.Writer) error {
	items := make([]CSLItem, len(t.Rows))
	for i, a := range t.Rows {
		items[i] = toCSLItem(a)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts an Article to a CSLItem.
func toCSLItem(a types.Article) CSLItem {
	item := CSLItem{
		ID:       "pmid-" + a.PMID,
		Type:     "article-journal",
		Title:    a.Title,
		Abstract: a.Abstract,
		PMID:     a.PMID,
	}

	for _, name := range a.Authors {
		item.Author = append(item.Author, parseAuthorName(name))
	}

	if year, ok := pubYear(a.PubDate); ok {
		item.Issued = &CSLDate{DateParts: [][]int{{year}}}
	}

	return item
}

// parseAuthorName splits a MEDLINE full author name into CSL parts.
// FAU values are "Family, Given"; names without a comma use the literal
// field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	family, given, ok := strings.Cut(name, ",")
	if !ok {
		return CSLName{Literal: name}
	}
	return CSLName{
		Family: strings.TrimSpace(family),
		Given:  strings.TrimSpace(given),
	}
}

// pubYear extracts the leading year from a MEDLINE DP value
// ("2020 Mar 15" → 2020). PubMed dates always start with the year when
// present.
func pubYear(dp string) (int, bool) {
	fields := strings.Fields(dp)
	if len(fields) == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil || year < 1000 {
		return 0, false
	}
	return year, true
}
