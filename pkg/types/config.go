package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EntrezConfig holds settings for the bounded Entrez (E-utilities) retrieval path.
type EntrezConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is sent with every request so NCBI can contact the caller
	// about problematic usage. Optional but encouraged by NCBI.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// APIKey is an NCBI API key for higher rate limits. Optional.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BatchSize is the number of records fetched per EFetch page (default 1000).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// BatchDelay is the pause between consecutive EFetch pages (default 3s),
	// keeping request rate within NCBI's courtesy limits.
	BatchDelay time.Duration `json:"batch_delay" yaml:"batch_delay"`

	// Verbose enables per-page progress reporting.
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// EDirectConfig holds settings for the Entrez Direct retrieval path.
type EDirectConfig struct {
	// ToolDir is the directory containing the esearch/efetch/xtract binaries.
	ToolDir string `json:"tool_dir" yaml:"tool_dir"`

	// APIKey is an NCBI API key, exported as NCBI_API_KEY for the tools. Optional.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// StoreConfig holds settings for the SQLite export sink.
type StoreConfig struct {
	// DBPath is the SQLite database file (default "pubmed.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// Config groups all stage configurations.
type Config struct {
	Entrez  EntrezConfig  `json:"entrez" yaml:"entrez"`
	EDirect EDirectConfig `json:"edirect" yaml:"edirect"`
	Store   StoreConfig   `json:"store" yaml:"store"`
}
