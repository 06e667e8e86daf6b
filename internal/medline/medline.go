// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package medline parses MEDLINE-format citation records as returned by
// Entrez EFetch (rettype=medline) and the Entrez Direct efetch tool.
// See docs/ARCHITECTURE.md § MEDLINE Parsing.
package medline

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// MEDLINE lines are "TAG - value" with the tag space-padded to four
// characters. Continuation lines are indented six spaces.
const (
	tagWidth     = 4
	valueOffset  = 6
	continuation = "      "
)

// Parse reads MEDLINE text from r and returns one Article per record.
// Records are separated by blank lines; records without a PMID are
// dropped. Repeated tags (FAU, MH, OT) accumulate in order.
func Parse(r io.Reader) ([]types.Article, error) {
	var (
		articles []types.Article
		fields   map[string][]string
		tag      string
	)

	flush := func() {
		if len(fields) == 0 {
			return
		}
		if a, ok := toArticle(fields); ok {
			articles = append(articles, a)
		}
		fields = nil
		tag = ""
	}

	scanner := bufio.NewScanner(r)
	// Abstracts routinely exceed bufio's default 64K token limit when a
	// record packs the whole abstract into continuation lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if strings.HasPrefix(line, continuation) {
			// Continuation of the previous tag's value.
			if tag != "" && fields != nil {
				vals := fields[tag]
				vals[len(vals)-1] += " " + strings.TrimSpace(line)
				fields[tag] = vals
			}
			continue
		}

		t, value, ok := splitTagLine(line)
		if !ok {
			// Not a tag line and not a continuation: ignore, matching the
			// tolerant behavior of MEDLINE consumers.
			continue
		}
		if fields == nil {
			fields = make(map[string][]string)
		}
		tag = t
		fields[tag] = append(fields[tag], value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MEDLINE input: %w", err)
	}
	flush()

	return articles, nil
}

// splitTagLine splits "PMID- 12345" / "TI  - Some title" into tag and value.
func splitTagLine(line string) (tag, value string, ok bool) {
	if len(line) < valueOffset || line[tagWidth] != '-' {
		return "", "", false
	}
	tag = strings.TrimRight(line[:tagWidth], " ")
	if tag == "" {
		return "", "", false
	}
	return tag, strings.TrimSpace(line[valueOffset:]), true
}

// toArticle maps accumulated MEDLINE fields onto an Article. Returns
// false when the record has no PMID.
func toArticle(fields map[string][]string) (types.Article, bool) {
	pmid := first(fields["PMID"])
	if pmid == "" {
		return types.Article{}, false
	}
	return types.Article{
		PMID:       pmid,
		Title:      collapseSpace(first(fields["TI"])),
		Abstract:   collapseSpace(first(fields["AB"])),
		Authors:    fields["FAU"],
		PubDate:    first(fields["DP"]),
		MeSHTerms:  fields["MH"],
		OtherTerms: fields["OT"],
	}, true
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// collapseSpace normalizes runs of whitespace to single spaces. Titles
// and abstracts arrive wrapped across continuation lines.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
