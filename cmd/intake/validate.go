// cmd/intake/validate.go
package main

import (
	"recruit-intake/internal/common/errors"
	vap "recruit-intake/internal/tasks/application/validate-application-profile"

	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate an application profile file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			handler, err := a.newValidator()
			if err != nil {
				return err
			}
			out, err := handler.Execute(cmd.Context(), &vap.Input{FilePath: args[0]})
			if err != nil {
				return err
			}

			report := newValidationReport(args[0], out)
			if format == formatJSON {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printValidationText(cmd.OutOrStdout(), report)
			}

			if !out.Valid {
				return errors.NewApplicationValidationFailedError(len(out.Errors))
			}
			return nil
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}
