package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vidsynth/internal/config"
	"github.com/kailas-cloud/vidsynth/internal/version"
)

var (
	envName string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "vidsynth",
	Short: "Question answering over video transcripts",
	Long: `vidsynth splits transcripts into overlapping chunks, indexes them in
in-memory vector stores and answers questions grounded in the retrieved chunks.

Without a subcommand it starts the HTTP API server.

Examples:
  vidsynth serve                         # start the API on the configured port
  vidsynth chunk talk.txt --size 500     # print chunks as JSON
  vidsynth ask talk.txt -q "what is RAG?"`,
	Version:      version.String(),
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Missing .env is fine; the variables may come from the real environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		if envName == "" {
			envName = config.GetEnv()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "config environment: local, dev, prod (default $ENV or local)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
