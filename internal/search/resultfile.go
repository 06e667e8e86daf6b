// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

// ResultFile is the on-disk representation of a search and its result
// table. The researcher can save a search to a file and reload it later
// without re-querying PubMed.
type ResultFile struct {
	Query   string           `yaml:"query"`
	Config  ResultFileConfig `yaml:"config"`
	Rows    []types.Article  `yaml:"rows"`
	Summary ResultSummary    `yaml:"summary"`
}

// ResultFileConfig stores the retrieval settings that produced the rows.
type ResultFileConfig struct {
	Provider  string `yaml:"provider"`
	BatchSize int    `yaml:"batch_size,omitempty"`
}

// ResultSummary stores result statistics and a timestamp.
type ResultSummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteResultFile saves the query, provider settings, and rows to a YAML file.
func WriteResultFile(path, query, provider string, batchSize int, t *types.ArticleTable) error {
	rf := ResultFile{
		Query: query,
		Config: ResultFileConfig{
			Provider:  provider,
			BatchSize: batchSize,
		},
		Rows: t.Rows,
		Summary: ResultSummary{
			Total:     t.Len(),
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing result file %s: %w", path, err)
	}
	return nil
}

// ReadResultFile loads a previously saved search from a YAML file.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file %s: %w", path, err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file %s: %w", path, err)
	}
	return &rf, nil
}

// Table rebuilds the ArticleTable from the stored rows.
func (rf *ResultFile) Table() *types.ArticleTable {
	return &types.ArticleTable{Rows: rf.Rows}
}
