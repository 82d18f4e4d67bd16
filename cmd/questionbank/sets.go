package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"questionbank/internal/domain"
)

var exportPath string

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Browse stored question sets",
}

var setsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the question sets of a unit, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()
		scope, err := a.scope()
		if err != nil {
			return err
		}
		sets, err := a.svc.ListQuestionSets(cmd.Context(), scope)
		if err != nil {
			return err
		}
		return printSetTable(cmd.OutOrStdout(), sets)
	},
}

var setsSearchCmd = &cobra.Command{
	Use:   "search <topic>",
	Short: "Find question sets whose topic contains a term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()
		scope, err := a.scope()
		if err != nil {
			return err
		}
		sets, err := a.svc.SearchQuestionSets(cmd.Context(), scope, args[0])
		if err != nil {
			return err
		}
		return printSetTable(cmd.OutOrStdout(), sets)
	},
}

var setsShowCmd = &cobra.Command{
	Use:   "show <set-id>",
	Short: "Print a question set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid set id: %w", err)
		}
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()
		set, err := a.svc.QuestionSet(cmd.Context(), a.user, id)
		if err != nil {
			return err
		}
		printSet(cmd.OutOrStdout(), set.ID.String(), set.Questions)
		return nil
	},
}

var setsDeleteCmd = &cobra.Command{
	Use:   "delete <set-id>",
	Short: "Delete a question set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid set id: %w", err)
		}
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.svc.DeleteQuestionSet(cmd.Context(), a.user, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
		return nil
	},
}

var setsExportCmd = &cobra.Command{
	Use:   "export <set-id>",
	Short: "Export a question set as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid set id: %w", err)
		}
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		var w io.Writer = cmd.OutOrStdout()
		if exportPath != "" {
			f, err := os.Create(exportPath)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return a.svc.ExportQuestionSet(cmd.Context(), a.user, id, w)
	},
}

func init() {
	for _, c := range []*cobra.Command{setsListCmd, setsSearchCmd} {
		c.Flags().StringVar(&unitArg, "unit", "", "unit id")
	}
	setsExportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "write to file instead of stdout")

	setsCmd.AddCommand(setsListCmd)
	setsCmd.AddCommand(setsSearchCmd)
	setsCmd.AddCommand(setsShowCmd)
	setsCmd.AddCommand(setsDeleteCmd)
	setsCmd.AddCommand(setsExportCmd)
}

func printSetTable(w io.Writer, sets []domain.QuestionSet) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tQUESTIONS\tTOPIC\tCREATED")
	for _, s := range sets {
		topic := s.Topic
		if topic == "" {
			topic = "(unit summary)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.ID, s.Type, len(s.Questions), topic, s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
