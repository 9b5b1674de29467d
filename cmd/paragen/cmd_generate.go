package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/paragen/internal/artifact"
	"github.com/dshills/paragen/internal/checkpoint"
	"github.com/dshills/paragen/internal/dataset"
	"github.com/dshills/paragen/internal/generator"
	"github.com/dshills/paragen/internal/ledger"
	"github.com/dshills/paragen/internal/logging"
	"github.com/dshills/paragen/internal/pipeline"
	"github.com/dshills/paragen/pkg/types"
)

var (
	genExamplesPath string
	genAnswersPath  string
	genOutputDir    string
	genTestMode     bool
	genTestCount    int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate paraphrased questions for every tag",
	Long: `Generate expands each tag in the examples file into a fixed-size set of
paraphrased questions, one artifact file per tag.

Progress is checkpointed after every tag: a killed run resumes where it
left off, skipping tags whose artifacts were already written. A tag whose
generation fails after all retry attempts is recorded as failed and the
run continues with the next tag.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genExamplesPath, "examples", "queries_tags.csv", "CSV with question/query and tag columns")
	generateCmd.Flags().StringVar(&genAnswersPath, "answers", "tags_answers.csv", "CSV with tag and answer columns")
	generateCmd.Flags().StringVarP(&genOutputDir, "output-dir", "o", "", "output directory (default from config)")
	generateCmd.Flags().BoolVarP(&genTestMode, "test", "t", false, "test mode: only process the first N tags")
	generateCmd.Flags().IntVarP(&genTestCount, "test-count", "n", 1, "number of tags to process in test mode")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	outputDir := genOutputDir
	if outputDir == "" {
		outputDir = cfg.Paths.OutputDir
	}

	// Pipeline runs tee their log to a file inside the output dir so a
	// killed run leaves a trace.
	runLogger, cleanup, err := logging.NewWithFile(filepath.Join(outputDir, "processing_log.txt"), verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := generate(ctx, runLogger, outputDir)
	if err != nil {
		return err
	}

	runLogger.Info("run summary",
		zap.Int("success", stats.Success),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped))
	return nil
}

// generate wires the pipeline collaborators and runs the orchestrator.
func generate(ctx context.Context, runLogger *zap.Logger, outputDir string) (types.RunStats, error) {
	var stats types.RunStats

	runLogger.Info("loading source datasets",
		zap.String("examples", genExamplesPath),
		zap.String("answers", genAnswersPath))

	store, err := dataset.Load(genExamplesPath, genAnswersPath, cfg.Pipeline.SentinelTag)
	if err != nil {
		return stats, err
	}
	runLogger.Info("work list ready", zap.Int("tags", len(store.Tags())))

	provider, err := generator.New(ctx, cfg.Provider)
	if err != nil {
		return stats, err
	}
	defer func() {
		_ = provider.Close()
	}()

	client := generator.NewClient(provider, generator.Options{
		TargetCount:    cfg.Pipeline.TargetCount,
		MaxAttempts:    cfg.Pipeline.MaxAttempts,
		ShortfallDelay: cfg.Pipeline.ShortfallDelay.Std(),
		FaultDelay:     cfg.Pipeline.FaultDelay.Std(),
	}, runLogger)

	writer, err := artifact.NewWriter(filepath.Join(outputDir, "individual_tags"))
	if err != nil {
		return stats, err
	}
	ckpt := checkpoint.New(filepath.Join(outputDir, "progress.txt"))

	// The ledger is advisory run history; opening it must not block a run.
	var recorder pipeline.Recorder
	var runID string
	led, err := openLedger(outputDir)
	if err != nil {
		runLogger.Warn("run ledger unavailable", zap.Error(err))
	} else {
		defer func() {
			_ = led.Close()
		}()
		runID, err = led.StartRun(ctx, "generate", provider.Name(), provider.Model())
		if err != nil {
			runLogger.Warn("could not record run start", zap.Error(err))
		} else {
			recorder = led
		}
	}

	opts := pipeline.Options{
		ExampleCount: cfg.Pipeline.ExampleCount,
		SuccessPause: cfg.Pipeline.SuccessPause.Std(),
	}
	if genTestMode {
		opts.TestCount = genTestCount
	}

	orch := pipeline.New(store, client, ckpt, writer, recorder, opts, runLogger)
	stats, runErr := orch.Run(ctx, runID)

	if led != nil && runID != "" {
		if err := led.FinishRun(context.Background(), runID, stats); err != nil {
			runLogger.Warn("could not record run finish", zap.Error(err))
		}
	}
	return stats, runErr
}

func openLedger(outputDir string) (*ledger.Ledger, error) {
	path := cfg.Paths.LedgerPath
	if path == "" {
		path = filepath.Join(outputDir, "paragen.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	return ledger.Open(path)
}
