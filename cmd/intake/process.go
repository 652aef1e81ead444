// cmd/intake/process.go
package main

import (
	"recruit-intake/internal/common/errors"
	"recruit-intake/internal/common/layout"
	vap "recruit-intake/internal/tasks/application/validate-application-profile"

	"github.com/spf13/cobra"
)

type processReport struct {
	Validation validationReport `json:"validation"`
	Analysis   *analysisReport  `json:"analysis,omitempty"`
}

func newProcessCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Validate a profile, score its GitHub account and write the scorecard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			ctx := cmd.Context()
			path := args[0]

			validator, err := a.newValidator()
			if err != nil {
				return err
			}
			validated, err := validator.Execute(ctx, &vap.Input{FilePath: path})
			if err != nil {
				return err
			}

			report := processReport{Validation: newValidationReport(path, validated)}
			emit := func() error {
				if format == formatJSON {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				printValidationText(cmd.OutOrStdout(), report.Validation)
				if report.Analysis != nil {
					printAnalysisText(cmd.OutOrStdout(), *report.Analysis)
				}
				return nil
			}

			if !validated.Valid {
				if err := emit(); err != nil {
					return err
				}
				return errors.NewApplicationValidationFailedError(len(validated.Errors))
			}

			username := layout.UsernameOf(path)
			if validated.Profile != nil && validated.Profile.Essentials.GitHubUsername != "" {
				username = validated.Profile.Essentials.GitHubUsername
			}
			year, err := layout.YearOf(path)
			if err != nil {
				year = a.cfg.Applications.Year
			}

			analyzed, err := a.analyze(ctx, username)
			if err != nil {
				return err
			}
			written, err := a.writeScorecard(ctx, username, analyzed.Breakdown, year)
			if err != nil {
				return err
			}

			analysis := newAnalysisReport(analyzed, written.Path)
			report.Analysis = &analysis
			return emit()
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}
