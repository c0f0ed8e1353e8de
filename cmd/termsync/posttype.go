package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/termsync/pkg/types"
)

func (a *app) postTypeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post-type",
		Short: "Manage post types",
	}

	var label, asTaxonomy string
	register := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a post type, optionally mirrored into a taxonomy",
		Long: `Register stores a post type. With --as-taxonomy every post of the type
is kept paired with a term of that taxonomy; the taxonomy is registered
when it does not exist yet. Registering an existing name replaces it.`,
		Args: userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSite(cmd, func(s *site) error {
				pt := &types.PostType{Name: args[0], Label: label, AsTaxonomy: asTaxonomy}
				if err := s.platform.RegisterPostType(pt); err != nil {
					return err
				}
				if a.jsonOut {
					return a.printJSON(pt)
				}
				fmt.Fprintf(a.out, "registered post type %s\n", pt.Name)
				return nil
			})
		},
	}
	register.Flags().StringVar(&label, "label", "", "display label")
	register.Flags().StringVar(&asTaxonomy, "as-taxonomy", "", "taxonomy to mirror posts into")

	list := &cobra.Command{
		Use:   "list",
		Short: "List post types",
		Args:  userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSite(cmd, func(s *site) error {
				pts, err := s.backend.PostTypes()
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(pts))
				for _, pt := range pts {
					rows = append(rows, []string{pt.Name, pt.Label, pt.AsTaxonomy})
				}
				return a.emit(pts, []string{"NAME", "LABEL", "AS_TAXONOMY"}, rows)
			})
		},
	}

	cmd.AddCommand(register, list)
	return cmd
}

func (a *app) taxonomyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Manage taxonomies",
	}

	var label string
	register := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a taxonomy",
		Args:  userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSite(cmd, func(s *site) error {
				tax := &types.Taxonomy{Name: args[0], Label: label}
				if err := s.platform.RegisterTaxonomy(tax); err != nil {
					return err
				}
				if a.jsonOut {
					return a.printJSON(tax)
				}
				fmt.Fprintf(a.out, "registered taxonomy %s\n", tax.Name)
				return nil
			})
		},
	}
	register.Flags().StringVar(&label, "label", "", "display label")

	list := &cobra.Command{
		Use:   "list",
		Short: "List taxonomies",
		Args:  userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSite(cmd, func(s *site) error {
				taxes, err := s.backend.Taxonomies()
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(taxes))
				for _, t := range taxes {
					rows = append(rows, []string{t.Name, t.Label})
				}
				return a.emit(taxes, []string{"NAME", "LABEL"}, rows)
			})
		},
	}

	cmd.AddCommand(register, list)
	return cmd
}
