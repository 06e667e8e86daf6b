package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-engine/internal/edirect"
	"github.com/pdiddy/pubmed-engine/internal/search"
	"github.com/pdiddy/pubmed-engine/internal/secrets"
	"github.com/pdiddy/pubmed-engine/internal/store"
	"github.com/pdiddy/pubmed-engine/pkg/types"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultBatchDelay = 3 * time.Second
	defaultUserAgent  = "pubmed-engine/0.1"
	defaultToolDir    = "edirect"
)

var searchCmd = &cobra.Command{
	Use:   "search [query terms...]",
	Short: "Search PubMed and print the result table",
	Long: `Search retrieves article metadata for a PubMed query. The entrez backend
pages through the E-utilities API and supports up to 10,000 results; the
edirect backend runs the locally installed Entrez Direct tools and has no
ceiling (run "pubmed-engine prepare" once to install them).`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("backend", "entrez", "retrieval path: entrez or edirect")
	searchCmd.Flags().Int("batch-size", 0, "records per page on the entrez backend (default 1000)")
	searchCmd.Flags().Duration("delay", 0, "pause between pages on the entrez backend (default 3s)")
	searchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	searchCmd.Flags().String("email", "", "contact email sent to NCBI (default from config or .secrets/ncbi-email)")
	searchCmd.Flags().String("api-key", "", "NCBI API key (default from config or .secrets/ncbi-api-key)")
	searchCmd.Flags().String("tool-dir", "", "Entrez Direct installation directory (default \"edirect\")")
	searchCmd.Flags().Bool("json", false, "output rows as JSON")
	searchCmd.Flags().Bool("csv", false, "output the table as CSV")
	searchCmd.Flags().Bool("csl", false, "output rows as CSL-YAML bibliography entries")
	searchCmd.Flags().String("out", "", "also save the search to a YAML result file")
	searchCmd.Flags().String("db", "", "also export the table to a SQLite database file")
	searchCmd.Flags().Bool("quiet", false, "suppress progress reporting")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("provide a PubMed query, e.g.: pubmed-engine search 'cancer AND 2020[dp]'")
	}

	backend, _ := cmd.Flags().GetString("backend")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	quiet, _ := cmd.Flags().GetBool("quiet")

	emailFlag, _ := cmd.Flags().GetString("email")
	apiKeyFlag, _ := cmd.Flags().GetString("api-key")
	email := configDefault(emailFlag, "entrez.email", secrets.KeyNCBIEmail)
	apiKey := configDefault(apiKeyFlag, "entrez.api_key", secrets.KeyNCBIAPIKey)

	provider, err := buildProvider(cmd, backend, timeout, email, apiKey, quiet)
	if err != nil {
		return err
	}

	table, err := provider.Search(cmd.Context(), query)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	asCSV, _ := cmd.Flags().GetBool("csv")
	asCSL, _ := cmd.Flags().GetBool("csl")
	switch {
	case asJSON:
		if err := search.FormatJSON(table, os.Stdout); err != nil {
			return err
		}
	case asCSV:
		if err := search.WriteCSV(table, os.Stdout); err != nil {
			return err
		}
	case asCSL:
		if err := search.FormatCSL(table, os.Stdout); err != nil {
			return err
		}
	default:
		search.FormatTable(table, os.Stdout)
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		if err := search.WriteResultFile(out, query, provider.Name(), batchSize, table); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved result file: %s\n", out)
	}

	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		s, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.SaveTable(cmd.Context(), query, table); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d rows to %s\n", table.Len(), dbPath)
	}

	return nil
}

// buildProvider assembles the retrieval path selected by --backend.
func buildProvider(cmd *cobra.Command, backend string, timeout time.Duration, email, apiKey string, quiet bool) (search.Provider, error) {
	switch backend {
	case "entrez":
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		if batchSize == 0 {
			batchSize = viper.GetInt("entrez.batch_size")
		}
		delay, _ := cmd.Flags().GetDuration("delay")
		if delay == 0 {
			delay = defaultBatchDelay
		}
		return &search.EntrezProvider{
			Client: &http.Client{Timeout: timeout},
			Config: types.EntrezConfig{
				HTTPConfig: types.HTTPConfig{
					Timeout:   timeout,
					UserAgent: defaultUserAgent,
				},
				Email:      email,
				APIKey:     apiKey,
				BatchSize:  batchSize,
				BatchDelay: delay,
				Verbose:    !quiet,
			},
			Progress: os.Stderr,
		}, nil

	case "edirect":
		toolDir, _ := cmd.Flags().GetString("tool-dir")
		if toolDir == "" {
			toolDir = configDefault("", "edirect.tool_dir", "")
		}
		if toolDir == "" {
			toolDir = defaultToolDir
		}
		return edirect.NewProvider(types.EDirectConfig{
			ToolDir: toolDir,
			APIKey:  apiKey,
		}), nil

	default:
		return nil, fmt.Errorf("unknown backend %q: use entrez or edirect", backend)
	}
}

// configDefault resolves a setting from, in order: the flag value, the
// viper config file, and the secrets directory.
func configDefault(flagVal, viperKey, secretKey string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := viper.GetString(viperKey); v != "" {
		return v
	}
	if secretKey != "" {
		return secretDefault(secretKey, "")
	}
	return ""
}
