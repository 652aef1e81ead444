// cmd/intake/cache.go
package main

import (
	"fmt"

	"recruit-intake/internal/common/errors"

	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the repository scan cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "invalidate <username>",
		Short: "Drop every cached scan of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sc, err := a.openScanCache(ctx)
			if err != nil {
				return err
			}
			if sc == nil {
				return errors.NewConfigInvalidError("cache.enabled is false")
			}

			removed, err := sc.Invalidate(ctx, args[0])
			if err != nil {
				return err
			}

			a.log.Info("scan cache invalidated", map[string]interface{}{
				"username": args[0],
				"removed":  removed,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached scan(s) for %s\n", removed, args[0])
			return nil
		},
	})
	return cmd
}
