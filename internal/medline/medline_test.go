package medline

import (
	"strings"
	"testing"
)

const sampleTwoRecords = `
PMID- 32123456
DP  - 2020 Mar 15
TI  - Tumor microenvironment remodeling in
      pancreatic cancer: a review.
AB  - Pancreatic cancer remains one of the deadliest malignancies. We review
      recent advances in understanding the tumor microenvironment and its
      role in therapy resistance.
FAU - Smith, Jane A
FAU - Tanaka, Hiroshi
MH  - Pancreatic Neoplasms/*pathology
MH  - Tumor Microenvironment
OT  - immunotherapy
OT  - stroma

PMID- 32123457
DP  - 2020
TI  - A second article.
FAU - Jones, Robert
`

func TestParseTwoRecords(t *testing.T) {
	articles, err := Parse(strings.NewReader(sampleTwoRecords))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("len(articles) = %d, want 2", len(articles))
	}

	a := articles[0]
	if a.PMID != "32123456" {
		t.Errorf("PMID = %q, want %q", a.PMID, "32123456")
	}
	if want := "Tumor microenvironment remodeling in pancreatic cancer: a review."; a.Title != want {
		t.Errorf("Title = %q, want %q", a.Title, want)
	}
	if !strings.HasPrefix(a.Abstract, "Pancreatic cancer remains") {
		t.Errorf("Abstract = %q, continuation lines not joined", a.Abstract)
	}
	if strings.Contains(a.Abstract, "  ") {
		t.Errorf("Abstract contains run of spaces: %q", a.Abstract)
	}
	if len(a.Authors) != 2 || a.Authors[0] != "Smith, Jane A" || a.Authors[1] != "Tanaka, Hiroshi" {
		t.Errorf("Authors = %v", a.Authors)
	}
	if a.PubDate != "2020 Mar 15" {
		t.Errorf("PubDate = %q", a.PubDate)
	}
	if len(a.MeSHTerms) != 2 || a.MeSHTerms[0] != "Pancreatic Neoplasms/*pathology" {
		t.Errorf("MeSHTerms = %v", a.MeSHTerms)
	}
	if len(a.OtherTerms) != 2 || a.OtherTerms[1] != "stroma" {
		t.Errorf("OtherTerms = %v", a.OtherTerms)
	}

	b := articles[1]
	if b.PMID != "32123457" {
		t.Errorf("second PMID = %q", b.PMID)
	}
	if b.Abstract != "" || len(b.MeSHTerms) != 0 || len(b.OtherTerms) != 0 {
		t.Errorf("missing fields should stay empty: %+v", b)
	}
}

func TestParseSkipsRecordWithoutPMID(t *testing.T) {
	input := "TI  - Orphan record.\nFAU - Nobody\n\nPMID- 1\nTI  - Kept.\n"
	articles, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(articles) != 1 || articles[0].PMID != "1" {
		t.Errorf("articles = %+v, want only PMID 1", articles)
	}
}

func TestParseEmptyInput(t *testing.T) {
	articles, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("len(articles) = %d, want 0", len(articles))
	}
}

func TestParseNoTrailingBlankLine(t *testing.T) {
	articles, err := Parse(strings.NewReader("PMID- 99\nTI  - No trailing newline"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "No trailing newline" {
		t.Errorf("articles = %+v", articles)
	}
}

func TestSplitTagLine(t *testing.T) {
	tests := []struct {
		line    string
		wantTag string
		wantVal string
		wantOK  bool
	}{
		{"PMID- 12345", "PMID", "12345", true},
		{"TI  - A title", "TI", "A title", true},
		{"AB  - ", "AB", "", true},
		{"garbage line", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			tag, val, ok := splitTagLine(tt.line)
			if tag != tt.wantTag || val != tt.wantVal || ok != tt.wantOK {
				t.Errorf("splitTagLine(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.line, tag, val, ok, tt.wantTag, tt.wantVal, tt.wantOK)
			}
		})
	}
}
