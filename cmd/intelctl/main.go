package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	rawFlag     bool
	personaFlag string
	rootCmd     = &cobra.Command{
		Use:           "intelctl",
		Short:         "Offline tools for the honeypot's extraction, scoring and persona replies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&rawFlag, "raw", false, "Skip voice-transcript normalization")

	extractCmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract intelligence from a message (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := messageText(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runExtract(text, rawFlag, cmd.OutOrStdout())
		},
	}
	rootCmd.AddCommand(extractCmd)

	scoreCmd := &cobra.Command{
		Use:   "score [text]",
		Short: "Score a message for scam likelihood",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := messageText(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runScore(text, cmd.OutOrStdout())
		},
	}
	rootCmd.AddCommand(scoreCmd)

	personasCmd := &cobra.Command{
		Use:   "personas",
		Short: "List personas (builtin plus PERSONA_FILE)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPersonas(os.Getenv("PERSONA_FILE"), os.Getenv("DEFAULT_PERSONA"), cmd.OutOrStdout())
		},
	}
	rootCmd.AddCommand(personasCmd)

	replyCmd := &cobra.Command{
		Use:   "reply [text]",
		Short: "Generate one persona reply with the configured LLM provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := messageText(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runReply(cmd.Context(), text, personaFlag, cmd.OutOrStdout())
		},
	}
	replyCmd.Flags().StringVarP(&personaFlag, "persona", "p", "", "Persona id (defaults to DEFAULT_PERSONA)")
	rootCmd.AddCommand(replyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
