// cmd/intake/locate.go
package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"strings"

	"recruit-intake/internal/common/errors"
	"recruit-intake/internal/common/layout"

	"github.com/spf13/cobra"
)

func newLocateCmd(a *app) *cobra.Command {
	var allowNone bool

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Print the single pending profile among changed paths read from stdin",
		Long: "locate reads one changed path per line (for example the output of\n" +
			"`git diff --name-only`) and prints the pending profile it contains.\n" +
			"It fails when no profile or more than one profile changed, unless\n" +
			"--allow-none is set, in which case an empty change set prints nothing.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var changed []string
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				if line := strings.TrimSpace(scanner.Text()); line != "" {
					changed = append(changed, line)
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read changed paths: %w", err)
			}

			path, err := layout.FindChangedApplication(a.cfg.Applications.Root, changed)
			if allowNone && stderrors.Is(err, errors.ErrNoApplication) {
				a.log.Info("no application changed", map[string]interface{}{
					"changedCount": len(changed),
				})
				return nil
			}
			if err != nil {
				return err
			}

			a.log.Info("application located", map[string]interface{}{
				"path":         path,
				"changedCount": len(changed),
			})
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&allowNone, "allow-none", false, "exit successfully when no pending profile changed")
	return cmd
}
