package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	// Global flags
	cfgPath string
	userID  string
	unitArg string
	verbose bool
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "questionbank",
	Short: "Turn lecture notes into exam questions and quizzes",
	Long: `questionbank indexes lecture notes per unit, asks a language model for
exam-style questions, stores them as typed question sets and runs quizzes
over them in the terminal.

Examples:
  # Create a unit and index its notes
  questionbank units create "Cell Biology"
  questionbank ingest --unit <unit-id> notes/*.txt

  # Generate multiple-choice questions about a topic
  questionbank generate --unit <unit-id> --type mc --topic mitochondria

  # Everything in one go, with the in-memory defaults
  questionbank study --type tf notes/*.txt`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (defaults to ./config.yaml or ~/.config/questionbank/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "user id (overrides user_id from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(unitsCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(setsCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(parseCmd)
}
