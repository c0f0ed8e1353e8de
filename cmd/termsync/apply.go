package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/termsync/internal/manifest"
)

func (a *app) applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <manifest.yaml>",
		Short: "Register the taxonomies and post types listed in a YAML manifest",
		Long: `Apply reads a YAML manifest and registers its taxonomies and post types.
Environment variables in the file are expanded before parsing.

Example manifest:
  taxonomies:
    - name: team
  post_types:
    - name: person
      as_taxonomy: team`,
		Args: userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return userError{err}
			}
			return a.withSite(cmd, func(s *site) error {
				res, err := m.Apply(s.platform)
				if err != nil {
					return err
				}
				if err := s.mirror.Init(cmd.Context()); err != nil {
					return err
				}
				if a.jsonOut {
					return a.printJSON(res)
				}
				fmt.Fprintf(a.out, "registered %d taxonomies, %d post types\n", len(res.Taxonomies), len(res.PostTypes))
				return nil
			})
		},
	}
}
