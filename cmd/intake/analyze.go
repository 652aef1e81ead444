// cmd/intake/analyze.go
package main

import (
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		format string
		write  bool
		year   int
	)

	cmd := &cobra.Command{
		Use:   "analyze <username>",
		Short: "Score a GitHub account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			ctx := cmd.Context()

			out, err := a.analyze(ctx, args[0])
			if err != nil {
				return err
			}

			var scorecardPath string
			if write {
				written, err := a.writeScorecard(ctx, out.Username, out.Breakdown, year)
				if err != nil {
					return err
				}
				scorecardPath = written.Path
			}

			report := newAnalysisReport(out, scorecardPath)
			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printAnalysisText(cmd.OutOrStdout(), report)
			return nil
		},
	}
	addFormatFlag(cmd, &format)
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the scorecard record")
	cmd.Flags().IntVar(&year, "year", 0, "intake year for the scorecard (default from config)")
	return cmd
}
