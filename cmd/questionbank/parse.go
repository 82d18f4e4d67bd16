package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"questionbank/internal/question"
)

var parseReport bool

var parseCmd = &cobra.Command{
	Use:   "parse <file|->",
	Short: "Extract questions from a saved model reply and print them as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := question.ParseType(genType)
		if err != nil {
			return err
		}
		var data []byte
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}

		qs, report := question.ExtractWithReport(string(data), typ)
		if qs == nil {
			qs = []question.Question{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(qs); err != nil {
			return err
		}
		if parseReport {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d blocks, %d parsed\n", report.Blocks, report.Parsed())
			for _, d := range report.Dropped {
				fmt.Fprintf(cmd.ErrOrStderr(), "  block %d dropped: %s\n", d.Block, d.Reason)
			}
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVarP(&genType, "type", "t", string(question.MultipleChoice), "question type: multiple-choice, true-false or open-ended")
	parseCmd.Flags().BoolVar(&parseReport, "report", false, "print dropped blocks to stderr")
}
