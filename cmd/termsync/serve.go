package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/termsync/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve runs the HTTP API with the mirror attached. The listen address
comes from http.host and http.port in config.yaml (TERMSYNC_HTTP_PORT).`,
		Args: userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.serverConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return userError{err}
			}
			return server.Run(cmd.Context(), server.WithConfig(cfg))
		},
	}
}

// serverConfig builds the serve configuration from flags and config.yaml.
func (a *app) serverConfig() (*server.Config, error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return nil, err
	}
	cfg := server.NewDefaultConfig()
	cfg.App.LogLevel = a.level
	cfg.App.HTTP.Host = a.cfg.GetString(cfgKeyHTTPHost)
	cfg.App.HTTP.Port = a.cfg.GetInt(cfgKeyHTTPPort)
	cfg.Data.Backend = a.cfg.GetString(cfgKeyBackend)
	cfg.Data.Dir = dataDir
	return cfg, nil
}
