package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config directory, default config.yaml and data directory",
		Args:  userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := a.resolveDataDir()
			if err != nil {
				return err
			}
			if err := a.withSite(cmd, func(*site) error { return nil }); err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(map[string]string{"config_dir": a.configDir, "data_dir": dataDir})
			}
			fmt.Fprintln(a.out, "termsync initialized")
			fmt.Fprintln(a.out, "  config:", a.configDir)
			fmt.Fprintln(a.out, "  data:  ", dataDir)
			return nil
		},
	}
}
