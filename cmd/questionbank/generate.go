package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"questionbank/internal/question"
	"questionbank/internal/service"
)

var (
	genType  string
	genTopic string
	genStyle string
	genCount int
	genRaw   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a question set for a unit",
	Long: `Generate exam-style questions from a unit's lecture notes and store them
as a question set. With --topic the most relevant passages are used as context,
otherwise the unit summary is.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := question.ParseType(genType)
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()
		scope, err := a.scope()
		if err != nil {
			return err
		}

		gen, err := a.svc.GenerateQuestions(cmd.Context(), service.GenerateRequest{
			Scope: scope,
			Type:  typ,
			Topic: genTopic,
			Style: genStyle,
			Count: genCount,
		})
		out := cmd.OutOrStdout()
		if genRaw && gen.Raw != "" {
			fmt.Fprintf(out, "%s\n\n", gen.Raw)
		}
		if errors.Is(err, service.ErrNoQuestions) {
			return fmt.Errorf("%w (%d blocks, all dropped)", err, gen.Report.Blocks)
		}
		if err != nil {
			return err
		}
		printSet(out, gen.Set.ID.String(), gen.Set.Questions)
		if n := len(gen.Report.Dropped); n > 0 {
			fmt.Fprintf(out, "\n%d of %d blocks could not be parsed.\n", n, gen.Report.Blocks)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&unitArg, "unit", "", "unit id")
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&genType, "type", "t", string(question.MultipleChoice), "question type: multiple-choice, true-false or open-ended")
	cmd.Flags().StringVar(&genTopic, "topic", "", "topic to focus the questions on")
	cmd.Flags().StringVar(&genStyle, "style", "", "example question whose style should be matched")
	cmd.Flags().IntVarP(&genCount, "count", "n", 0, "number of questions to ask for (defaults to generation.question_count)")
	cmd.Flags().BoolVar(&genRaw, "raw", false, "print the model's raw reply")
}

// printSet writes questions in a readable plain-text form.
func printSet(w io.Writer, id string, qs []question.Question) {
	fmt.Fprintf(w, "Question set %s\n", id)
	for _, q := range qs {
		fmt.Fprintf(w, "\n%d. %s\n", q.ID(), q.Prompt())
		switch q := q.(type) {
		case *question.MultipleChoiceQuestion:
			for i, opt := range q.Options {
				fmt.Fprintf(w, "   %c) %s\n", 'A'+i, opt)
			}
			if q.CorrectAnswer != nil {
				fmt.Fprintf(w, "   Answer: %s\n", *q.CorrectAnswer)
			}
		case *question.TrueFalseQuestion:
			fmt.Fprintf(w, "   Answer: %s\n", q.CorrectAnswer)
		case *question.OpenEndedQuestion:
			if q.Answer != "" {
				fmt.Fprintf(w, "   Answer: %s\n", q.Answer)
			}
		}
	}
}
