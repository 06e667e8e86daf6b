package search

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

func sampleTable() *types.ArticleTable {
	return &types.ArticleTable{Rows: []types.Article{
		{
			PMID:       "32123456",
			Title:      "Tumor microenvironment remodeling in pancreatic cancer.",
			Abstract:   "A review of recent advances.",
			Authors:    []string{"Smith, Jane A", "Tanaka, Hiroshi"},
			PubDate:    "2020 Mar 15",
			MeSHTerms:  []string{"Pancreatic Neoplasms", "Tumor Microenvironment"},
			OtherTerms: []string{"stroma"},
		},
		{
			PMID:    "32123457",
			Title:   "A second article.",
			Authors: []string{"Jones, Robert"},
			PubDate: "2020",
		},
	}}
}

// --- table formatting ---

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(sampleTable(), &buf)
	s := buf.String()

	if !strings.Contains(s, "32123456") || !strings.Contains(s, "32123457") {
		t.Errorf("table missing PMIDs:\n%s", s)
	}
	if !strings.Contains(s, "Smith, Jane A et al.") {
		t.Errorf("multi-author row should show 'et al.':\n%s", s)
	}
	if !strings.Contains(s, "2 results") {
		t.Errorf("table missing result count:\n%s", s)
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(&types.ArticleTable{}, &buf)
	if !strings.Contains(buf.String(), "No results") {
		t.Error("empty table should say 'No results'")
	}
}

func TestFormatTableTruncatesWideTitles(t *testing.T) {
	table := &types.ArticleTable{Rows: []types.Article{
		{PMID: "1", Title: strings.Repeat("膵臓癌の微小環境", 20), PubDate: "2020"},
	}}
	var buf bytes.Buffer
	FormatTable(table, &buf)
	if !strings.Contains(buf.String(), "...") {
		t.Error("over-wide title should be truncated with ellipsis")
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatJSON(sampleTable(), &buf); err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}

	var parsed []types.Article
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(parsed) != 2 || parsed[0].PMID != "32123456" {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(sampleTable(), &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want header + 2 rows", len(records))
	}
	if !reflect.DeepEqual(records[0], []string{"pmid", "ti", "ab", "fau", "dp", "mh", "ot"}) {
		t.Errorf("header = %v", records[0])
	}
	if records[1][3] != "Smith, Jane A; Tanaka, Hiroshi" {
		t.Errorf("authors cell = %q", records[1][3])
	}
}

// --- result files ---

func TestResultFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.yaml")
	table := sampleTable()

	if err := WriteResultFile(path, "cancer AND 2020[dp]", "entrez", 500, table); err != nil {
		t.Fatalf("WriteResultFile: %v", err)
	}

	rf, err := ReadResultFile(path)
	if err != nil {
		t.Fatalf("ReadResultFile: %v", err)
	}

	if rf.Query != "cancer AND 2020[dp]" {
		t.Errorf("Query = %q", rf.Query)
	}
	if rf.Config.Provider != "entrez" || rf.Config.BatchSize != 500 {
		t.Errorf("Config = %+v", rf.Config)
	}
	if rf.Summary.Total != 2 || rf.Summary.Timestamp.IsZero() {
		t.Errorf("Summary = %+v", rf.Summary)
	}
	if !reflect.DeepEqual(rf.Table().Rows, table.Rows) {
		t.Error("rows changed across round trip")
	}
}

func TestReadResultFileMissing(t *testing.T) {
	_, err := ReadResultFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

// --- CSL output ---

func TestFormatCSL(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatCSL(sampleTable(), &buf); err != nil {
		t.Fatalf("FormatCSL: %v", err)
	}
	s := buf.String()

	if !strings.Contains(s, "id: pmid-32123456") {
		t.Errorf("CSL output missing id:\n%s", s)
	}
	if !strings.Contains(s, "type: article-journal") {
		t.Errorf("CSL output missing type:\n%s", s)
	}
	if !strings.Contains(s, "family: Smith") || !strings.Contains(s, "given: Jane A") {
		t.Errorf("CSL output missing split author name:\n%s", s)
	}
	if !strings.Contains(s, "- 2020") {
		t.Errorf("CSL output missing issued year:\n%s", s)
	}
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		input string
		want  CSLName
	}{
		{"Smith, Jane A", CSLName{Family: "Smith", Given: "Jane A"}},
		{"Consortium for Genomics", CSLName{Literal: "Consortium for Genomics"}},
		{"  Tanaka, Hiroshi ", CSLName{Family: "Tanaka", Given: "Hiroshi"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseAuthorName(tt.input); got != tt.want {
				t.Errorf("parseAuthorName(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPubYear(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"2020 Mar 15", 2020, true},
		{"2020", 2020, true},
		{"Winter 1999", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := pubYear(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("pubYear(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
