package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-engine/internal/search"
)

var showCmd = &cobra.Command{
	Use:   "show <result-file>",
	Short: "Print a previously saved result file",
	Long: `Show reloads a YAML result file written by "search --out" and prints the
table without re-querying PubMed.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().Bool("json", false, "output rows as JSON")
	showCmd.Flags().Bool("csv", false, "output the table as CSV")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	rf, err := search.ReadResultFile(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Query: %s (%s, %s)\n",
		rf.Query, rf.Config.Provider, rf.Summary.Timestamp.Format("2006-01-02 15:04"))

	table := rf.Table()
	asJSON, _ := cmd.Flags().GetBool("json")
	asCSV, _ := cmd.Flags().GetBool("csv")
	switch {
	case asJSON:
		return search.FormatJSON(table, os.Stdout)
	case asCSV:
		return search.WriteCSV(table, os.Stdout)
	default:
		search.FormatTable(table, os.Stdout)
		return nil
	}
}
