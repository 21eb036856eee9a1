// file: cmd/eval.go
// version: 1.0.0
// guid: 8c2e5b9d-7a1f-4d3c-b6e0-1f9a4c7d2e86

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/jdfalk/voicematch/internal/config"
	"github.com/jdfalk/voicematch/internal/eval"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	var (
		attemptsPath string
		progress     bool
		workers      int
		asJSON       bool
		showAll      bool
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Replay recorded attempts against the question bank",
		Long: `Decide every attempt in an attempts YAML file and report how many were
selected correctly, selected wrongly, missed or could not be decided.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			attempts, err := eval.LoadAttempts(attemptsPath)
			if err != nil {
				return err
			}

			report, err := eval.Run(cmd.Context(), store, attempts, config.AppConfig.Thresholds, eval.Options{
				Progress: progress,
				Out:      cmd.ErrOrStderr(),
				Workers:  workers,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd, report, showAll)
			return nil
		},
	}

	cmd.Flags().StringVar(&attemptsPath, "attempts", "", "attempts YAML file")
	cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent decisions (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&showAll, "all", false, "list every attempt, not only problems")
	_ = cmd.MarkFlagRequired("attempts")
	return cmd
}

func printReport(cmd *cobra.Command, r *eval.Report, showAll bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render("Evaluation"))
	fmt.Fprintf(out, "Attempts:  %d\n", r.Total)
	for _, d := range r.Decisions() {
		fmt.Fprintf(out, "  %-12s %d\n", d, r.ByDecision[d])
	}
	fmt.Fprintf(out, "Correct:   %d\n", r.Correct)
	fmt.Fprintf(out, "Incorrect: %d\n", r.Incorrect)
	fmt.Fprintf(out, "Missing:   %d\n", r.Missing)
	fmt.Fprintf(out, "Unscored:  %d\n", r.Unscored)
	fmt.Fprintf(out, "Failed:    %d\n", r.Failed)
	fmt.Fprintf(out, "Accuracy:  %.1f%%\n", r.Accuracy()*100)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	printed := false
	for _, row := range r.Rows {
		if !showAll && (row.Outcome == eval.Correct || row.Outcome == eval.Unscored) {
			continue
		}
		if !printed {
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "QUESTION\tTRANSCRIPT\tDECISION\tSIMILARITY\tSELECTED\tEXPECTED\tOUTCOME")
			printed = true
		}
		detail := string(row.Outcome)
		if row.Error != "" {
			detail += ": " + row.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f\t%s\t%s\t%s\n",
			row.Attempt.QuestionID, row.Attempt.Transcript, row.Decision, row.Similarity,
			row.Selected, row.Attempt.Expected, detail)
	}
	_ = tw.Flush()
}
