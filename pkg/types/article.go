// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubmed-engine toolkit.
// See docs/ARCHITECTURE.md § Data Structures.
package types

import "strings"

// Article represents one PubMed citation as retrieved from Entrez. Field
// names mirror the MEDLINE tags they come from: TI, AB, FAU, DP, MH, OT.
type Article struct {
	// PMID is the PubMed identifier assigned by NCBI.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title (MEDLINE TI), whitespace-collapsed.
	Title string `json:"title" yaml:"title"`

	// Abstract is the article abstract (MEDLINE AB), whitespace-collapsed.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists full author names (MEDLINE FAU) in citation order.
	Authors []string `json:"authors" yaml:"authors"`

	// PubDate is the publication date string (MEDLINE DP), kept verbatim
	// because PubMed dates are heterogeneous ("2020", "2020 Mar", "2020 Mar 15").
	PubDate string `json:"pub_date" yaml:"pub_date"`

	// MeSHTerms lists Medical Subject Heading descriptors (MEDLINE MH).
	MeSHTerms []string `json:"mesh_terms" yaml:"mesh_terms"`

	// OtherTerms lists author-supplied keywords (MEDLINE OT).
	OtherTerms []string `json:"other_terms" yaml:"other_terms"`
}

// ArticleTable is the tabular result of a PubMed search: one row per
// article, columns fixed by Columns. Rows keep the ordering returned by
// the retrieval path; no ordering contract beyond that.
type ArticleTable struct {
	Rows []Article `json:"rows" yaml:"rows"`
}

// tableColumns is the fixed column set, named after the MEDLINE tags the
// original data carries. Order is part of the table contract.
var tableColumns = []string{"pmid", "ti", "ab", "fau", "dp", "mh", "ot"}

// Columns returns the column names in contract order.
func (t *ArticleTable) Columns() []string {
	cols := make([]string, len(tableColumns))
	copy(cols, tableColumns)
	return cols
}

// Len returns the number of rows.
func (t *ArticleTable) Len() int { return len(t.Rows) }

// listSep joins multi-valued cells (authors, MeSH terms) in Row output.
const listSep = "; "

// Row projects row i onto the column contract as strings, suitable for
// CSV output. Multi-valued fields are joined with listSep.
func (t *ArticleTable) Row(i int) []string {
	a := t.Rows[i]
	return []string{
		a.PMID,
		a.Title,
		a.Abstract,
		strings.Join(a.Authors, listSep),
		a.PubDate,
		strings.Join(a.MeSHTerms, listSep),
		strings.Join(a.OtherTerms, listSep),
	}
}

// Append adds rows to the table.
func (t *ArticleTable) Append(rows ...Article) {
	t.Rows = append(t.Rows, rows...)
}
