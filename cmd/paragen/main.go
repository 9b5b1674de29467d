package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/paragen/internal/config"
	"github.com/dshills/paragen/internal/logging"
)

var (
	version = "dev"

	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "paragen",
	Short: "paragen - paraphrase dataset augmentation pipeline",
	Long: `paragen expands a labeled question-answering dataset into a much larger
paraphrase-augmented training set.

The pipeline has three stages:

  tag       Group raw (query, answer, id) rows and name each group with a
            short topic tag via a text-generation service.
  generate  Expand each tag into a fixed-size set of paraphrased questions.
            The run checkpoints after every tag and can be killed and
            resumed without losing completed work.
  merge     Concatenate the per-tag artifacts into one validated dataset.

Generation requires OPENAI_API_KEY or GEMINI_API_KEY to be set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(verbose)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the paragen version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("paragen %s\n", version)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(reportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
