package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/paragen/internal/report"
)

var (
	reportSort      string
	reportAscending bool
	reportTopN      int
	reportExpected  string
	reportPredicted string
	reportRunLimit  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect evaluation accuracy and run history",
}

var reportTagsCmd = &cobra.Command{
	Use:   "tags <eval.csv>",
	Short: "Per-tag prediction accuracy from an evaluation CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportTags,
}

var reportRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Recent pipeline runs from the ledger",
	RunE:  runReportRuns,
}

func init() {
	reportTagsCmd.Flags().StringVar(&reportSort, "sort", "count", "sort key: count, accuracy, name")
	reportTagsCmd.Flags().BoolVar(&reportAscending, "ascending", false, "sort in ascending order")
	reportTagsCmd.Flags().IntVar(&reportTopN, "top", 0, "show only the top N tags (0 = all)")
	reportTagsCmd.Flags().StringVar(&reportExpected, "expected-column", "expected tag", "name of the expected tag column")
	reportTagsCmd.Flags().StringVar(&reportPredicted, "predicted-column", "predicted tag", "name of the predicted tag column")

	reportRunsCmd.Flags().IntVar(&reportRunLimit, "limit", 20, "number of runs to show")

	reportCmd.AddCommand(reportTagsCmd)
	reportCmd.AddCommand(reportRunsCmd)
}

func runReportTags(cmd *cobra.Command, args []string) error {
	opts := report.Options{
		Sort:            report.SortKey(reportSort),
		Descending:      !reportAscending,
		TopN:            reportTopN,
		ExpectedColumn:  reportExpected,
		PredictedColumn: reportPredicted,
	}

	analysis, err := report.Load(args[0], opts)
	if err != nil {
		return err
	}
	fmt.Print(analysis.Render(opts))
	return nil
}

func runReportRuns(cmd *cobra.Command, args []string) error {
	led, err := openLedger(cfg.Paths.OutputDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = led.Close()
	}()

	runs, err := led.ListRuns(cmd.Context(), reportRunLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Started\tMode\tProvider\tModel\tSuccess\tFailed\tSkipped\tID")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Mode, run.Provider, run.Model,
			run.Success, run.Failed, run.Skipped, run.ID)
	}
	return w.Flush()
}
