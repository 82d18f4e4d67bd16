package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var showHistory bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about a unit's lecture notes",
	Long: `Ask a question about a unit's lecture notes. The most similar questions
asked before in the unit are passed to the model along with the notes, and the
new question and answer are remembered for next time.`,
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

		ans, err := a.svc.Ask(cmd.Context(), scope, strings.Join(args, " "))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if showHistory && len(ans.History) > 0 {
			fmt.Fprintln(out, "Related earlier questions:")
			for _, h := range ans.History {
				fmt.Fprintf(out, "  %.3f  %s\n", h.Score, h.Question)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, ans.Text)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&unitArg, "unit", "", "unit id")
	askCmd.Flags().BoolVar(&showHistory, "show-history", false, "print the earlier questions used as context")
}
