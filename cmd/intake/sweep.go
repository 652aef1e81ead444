// cmd/intake/sweep.go
package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"recruit-intake/internal/common/errors"
	"recruit-intake/internal/common/layout"
	vap "recruit-intake/internal/tasks/application/validate-application-profile"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
)

const defaultSweepConcurrency = 4

func newSweepCmd(a *app) *cobra.Command {
	var (
		format      string
		year        int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Validate every pending profile of an intake year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			ctx := cmd.Context()

			if year == 0 {
				year = a.cfg.Applications.Year
			}
			if concurrency <= 0 {
				concurrency = defaultSweepConcurrency
			}

			files, err := filepath.Glob(layout.PendingGlob(a.cfg.Applications.Root, year))
			if err != nil {
				return fmt.Errorf("list pending profiles: %w", err)
			}
			sort.Strings(files)

			handler, err := a.newValidator()
			if err != nil {
				return err
			}
			reports := make([]validationReport, len(files))
			readErrs := make([]error, len(files))

			p := pool.New().WithMaxGoroutines(concurrency)
			for idx, file := range files {
				p.Go(func() {
					out, err := handler.Execute(ctx, &vap.Input{FilePath: file})
					if err != nil {
						readErrs[idx] = err
						reports[idx] = validationReport{Path: file, Errors: []string{err.Error()}, Warnings: []string{}}
						return
					}
					reports[idx] = newValidationReport(file, out)
				})
			}
			p.Wait()

			failed := 0
			for idx, r := range reports {
				if !r.Valid || readErrs[idx] != nil {
					failed++
				}
			}

			a.log.Info("sweep completed", map[string]interface{}{
				"year":    year,
				"files":   len(files),
				"invalid": failed,
			})

			if format == formatJSON {
				if err := writeJSON(cmd.OutOrStdout(), reports); err != nil {
					return err
				}
			} else {
				for _, r := range reports {
					printValidationText(cmd.OutOrStdout(), r)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d profile(s) checked, %d invalid\n", len(files), failed)
			}

			if failed > 0 {
				return errors.NewApplicationValidationFailedError(failed)
			}
			return nil
		},
	}
	addFormatFlag(cmd, &format)
	cmd.Flags().IntVar(&year, "year", 0, "intake year (default from config)")
	cmd.Flags().IntVar(&concurrency, "concurrency", defaultSweepConcurrency, "profiles validated in parallel")
	return cmd
}
