package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/paragen/internal/generator"
	"github.com/dshills/paragen/internal/tagger"
)

var (
	tagOutputDir    string
	tagQueryColumn  string
	tagAnswerColumn string
	tagIDColumn     string
	tagRunFull      bool
	tagTestMode     bool
	tagTestCount    int
)

var tagCmd = &cobra.Command{
	Use:   "tag <input.csv>",
	Short: "Name query groups and split the dataset for generation",
	Long: `Tag reads a CSV of (query, answer, id) rows, asks the generation provider
for a short topic tag per group ID, and writes the two files the generate
stage consumes: queries_tags.csv and tags_answers.csv.

With --generate, the paraphrase pipeline and merge run immediately after
tagging.`,
	Args: cobra.ExactArgs(1),
	RunE: runTag,
}

func init() {
	tagCmd.Flags().StringVarP(&tagOutputDir, "output-dir", "o", ".", "output directory for the split CSVs")
	tagCmd.Flags().StringVarP(&tagQueryColumn, "query-column", "q", "query", "name of the query column")
	tagCmd.Flags().StringVarP(&tagAnswerColumn, "answer-column", "a", "answer", "name of the answer column")
	tagCmd.Flags().StringVarP(&tagIDColumn, "id-column", "i", "id", "name of the group ID column")
	tagCmd.Flags().BoolVarP(&tagRunFull, "generate", "g", false, "run paraphrase generation and merge after tagging")
	tagCmd.Flags().BoolVarP(&tagTestMode, "test", "t", false, "test mode: only process the first N tags when generating")
	tagCmd.Flags().IntVarP(&tagTestCount, "test-count", "n", 1, "number of tags to process in test mode")
}

func runTag(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := generator.New(ctx, cfg.Provider)
	if err != nil {
		return err
	}
	defer func() {
		_ = provider.Close()
	}()

	proc := tagger.New(provider, logger)
	if err := proc.LoadCSV(args[0], tagger.Columns{
		Query:  tagQueryColumn,
		Answer: tagAnswerColumn,
		ID:     tagIDColumn,
	}); err != nil {
		return err
	}

	if err := proc.GenerateTags(ctx); err != nil {
		return err
	}

	queriesPath, answersPath, err := proc.Split(tagOutputDir)
	if err != nil {
		return err
	}
	logger.Info("tagging complete",
		zap.String("queries", queriesPath),
		zap.String("answers", answersPath))

	if !tagRunFull {
		return nil
	}

	// Chain into the generation pipeline with the files just written.
	genExamplesPath = queriesPath
	genAnswersPath = answersPath
	genTestMode = tagTestMode
	genTestCount = tagTestCount
	if err := runGenerate(cmd, nil); err != nil {
		return err
	}
	return runMerge(cmd, nil)
}
