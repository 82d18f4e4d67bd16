package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.txt> [file.txt ...]",
	Short: "Index lecture notes into a unit",
	Long: `Index lecture notes into a unit, replacing what was indexed before.
Glob patterns are expanded and only .txt files are read.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()
		scope, err := a.scope()
		if err != nil {
			return err
		}

		res, err := a.svc.IngestDocuments(cmd.Context(), scope, args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Indexed %d documents (%d chunks).\n\nSummary:\n%s\n", res.Documents, res.Chunks, res.Summary)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&unitArg, "unit", "", "unit id")
}
