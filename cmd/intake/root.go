// cmd/intake/root.go
package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "intake"

func newRootCmd(a *app) *cobra.Command {
	var cfgFile string
	flags := viper.New()

	root := &cobra.Command{
		Use:           appName,
		Short:         "intake validates application profiles and scores applicants' GitHub profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Name(), cfgFile, flags.GetBool("debug"), flags.GetBool("json"))
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is configs/config.yaml)")
	root.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	root.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = flags.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))
	_ = flags.BindPFlag("json", root.PersistentFlags().Lookup("json"))
	_ = flags.BindEnv("debug", "INTAKE_DEBUG")

	root.AddCommand(
		newValidateCmd(a),
		newAnalyzeCmd(a),
		newProcessCmd(a),
		newLocateCmd(a),
		newSweepCmd(a),
		newCacheCmd(a),
	)
	return root
}
