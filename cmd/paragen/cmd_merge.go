package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/paragen/internal/merge"
)

var (
	mergeInputDir string
	mergeOutput   string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge per-tag artifacts into one validated dataset",
	Long: `Merge concatenates every per-tag artifact CSV into a single dataset,
ordered by tag, then re-reads the output and reports structural problems:
total row count, per-tag question counts, and empty fields.

Validation findings are warnings; the merged file is produced either way.`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeInputDir, "input-dir", "i", "", "artifact directory (default <output-dir>/individual_tags)")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "merged output path (default merged_dataset_<date>.csv)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	inputDir := mergeInputDir
	if inputDir == "" {
		inputDir = filepath.Join(cfg.Paths.OutputDir, "individual_tags")
	}
	output := mergeOutput
	if output == "" {
		name := fmt.Sprintf("merged_dataset_%s.csv", time.Now().Format("2006-01-02"))
		output = filepath.Join(filepath.Dir(inputDir), name)
	}

	logger.Info("merging artifacts",
		zap.String("input_dir", inputDir),
		zap.String("output", output))

	count, err := merge.Merge(cmd.Context(), inputDir, output)
	if err != nil {
		return err
	}
	logger.Info("merge complete",
		zap.Int("rows", count),
		zap.String("output", output))

	report, err := merge.Validate(output, count, cfg.Pipeline.TargetCount)
	if err != nil {
		return err
	}
	fmt.Print(report.Summary())
	if !report.OK() {
		logger.Warn("validation found structural problems; merged file was still produced")
	}
	return nil
}
