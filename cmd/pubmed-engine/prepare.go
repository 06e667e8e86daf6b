package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-engine/internal/edirect"
)

// Archive downloads are large; give them more room than API calls.
const prepareTimeout = 10 * time.Minute

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Install the Entrez Direct tools for the edirect backend",
	Long: `Prepare downloads and unpacks NCBI's Entrez Direct distribution into the
tool directory. It is idempotent: when the tools are already present it
does nothing.`,
	RunE: runPrepare,
}

func init() {
	prepareCmd.Flags().String("dir", defaultToolDir, "installation directory for the tools")

	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")

	client := &http.Client{Timeout: prepareTimeout}
	return edirect.EnsureTools(client, dir, os.Stdout)
}
