package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"questionbank/internal/domain"
	"questionbank/internal/tui"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <set-id>",
	Short: "Take a stored question set as an interactive quiz",
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
		return runQuiz(cmd, set)
	},
}

func runQuiz(cmd *cobra.Command, set domain.QuestionSet) error {
	final, err := tea.NewProgram(tui.New(set), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(tui.Model); ok {
		correct, graded := m.Score()
		fmt.Fprintf(cmd.OutOrStdout(), "Score: %d/%d graded answers correct.\n", correct, graded)
	}
	return nil
}
