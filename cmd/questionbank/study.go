package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"questionbank/internal/question"
	"questionbank/internal/service"
)

var studyTitle string

var studyCmd = &cobra.Command{
	Use:   "study <file.txt> [file.txt ...]",
	Short: "Index notes, generate questions and start a quiz in one go",
	Long: `Create a unit for the given notes, index them, generate a question set and
open it as a quiz. This works with the in-memory defaults, where nothing
outlives the process.`,
	Args: cobra.MinimumNArgs(1),
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

		ctx := cmd.Context()
		unit, err := a.svc.CreateUnit(ctx, a.user, studyTitle)
		if err != nil {
			return err
		}
		res, err := a.svc.IngestDocuments(ctx, unit.Scope(), args)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Indexed %d documents (%d chunks). Generating questions...\n", res.Documents, res.Chunks)

		gen, err := a.svc.GenerateQuestions(ctx, service.GenerateRequest{
			Scope: unit.Scope(),
			Type:  typ,
			Topic: genTopic,
			Style: genStyle,
			Count: genCount,
		})
		if err != nil {
			return err
		}
		return runQuiz(cmd, gen.Set)
	},
}

func init() {
	studyCmd.Flags().StringVar(&studyTitle, "title", "Study session", "title of the unit created for the notes")
	addGenerateFlags(studyCmd)
}
