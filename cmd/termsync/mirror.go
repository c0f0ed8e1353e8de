package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/termsync/internal/mirror"
)

func (a *app) mirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Query and repair post/term links",
	}
	cmd.AddCommand(
		a.mirrorTermCmd(),
		a.mirrorTermsCmd(),
		a.mirrorPostCmd(),
		a.mirrorMappingsCmd(),
		a.mirrorResyncCmd(),
	)
	return cmd
}

func (a *app) mirrorTermCmd() *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "term <post-id> <taxonomy>",
		Short: "Show the term linked to a post",
		Args:  userArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withSite(cmd, func(s *site) error {
				if field != "" {
					v, err := s.mirror.LinkedTermField(cmd.Context(), id, args[1], field)
					if err != nil {
						return err
					}
					if a.jsonOut {
						return a.printJSON(map[string]any{"field": field, "value": v})
					}
					_, err = fmt.Fprintln(a.out, formatValue(v))
					return err
				}
				term, err := s.mirror.LinkedTerm(cmd.Context(), id, args[1])
				if err != nil {
					return fmt.Errorf("post %d has no linked term in %s: %w", id, args[1], err)
				}
				return a.emit(term, termHeader, [][]string{termRow(term)})
			})
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "print one field: term_id, name, slug or taxonomy")
	return cmd
}

func (a *app) mirrorTermsCmd() *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "terms <post-id> <taxonomy>",
		Short: "Show the terms a post is tagged with",
		Args:  userArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withSite(cmd, func(s *site) error {
				if field != "" {
					values, err := s.mirror.PostTermFields(cmd.Context(), id, args[1], field)
					if err != nil {
						return err
					}
					if a.jsonOut {
						return a.printJSON(map[string]any{"field": field, "values": values})
					}
					for _, v := range values {
						fmt.Fprintln(a.out, formatValue(v))
					}
					return nil
				}
				terms, err := s.mirror.PostTerms(cmd.Context(), id, args[1])
				if err != nil {
					return err
				}
				return a.emit(terms, termHeader, termRows(terms))
			})
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "print one field per term: term_id, name, slug or taxonomy")
	return cmd
}

func (a *app) mirrorPostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post <taxonomy> <term-id>",
		Short: "Show the post a term is linked to",
		Args:  userArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			termID, err := parseID(args[1])
			if err != nil {
				return err
			}
			return a.withSite(cmd, func(s *site) error {
				term, err := s.backend.Term(termID, args[0])
				if err != nil {
					return fmt.Errorf("term %d in %s: %w", termID, args[0], err)
				}
				post, err := s.mirror.LinkedPost(cmd.Context(), term)
				if err != nil {
					return fmt.Errorf("term %d has no linked post: %w", termID, err)
				}
				return a.emit(post, postHeader, [][]string{postRow(post)})
			})
		},
	}
}

func (a *app) mirrorMappingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mappings",
		Short: "List the post types mirrored into taxonomies",
		Args:  userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSite(cmd, func(s *site) error {
				mappings := s.mirror.Mappings()
				names := make([]string, 0, len(mappings))
				for name := range mappings {
					names = append(names, name)
				}
				sort.Strings(names)
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					rows = append(rows, []string{name, mappings[name]})
				}
				return a.emit(mappings, []string{"POST_TYPE", "TAXONOMY"}, rows)
			})
		},
	}
}

func (a *app) mirrorResyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resync",
		Short: "Create or repair the linked term of every mirrored post",
		Long: `Resync saves every post of every mirrored post type through the mirror.
Use it after mirroring a post type that already has posts, or after terms
were edited behind the mirror's back.`,
		Args: userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSite(cmd, func(s *site) error {
				report, err := s.mirror.Resync(cmd.Context())
				if err != nil {
					return err
				}
				if a.jsonOut {
					return a.printJSON(report)
				}
				fmt.Fprintf(a.out, "scanned %d posts\n", report.Scanned)
				for _, o := range []mirror.Outcome{
					mirror.OutcomeCreated, mirror.OutcomeUpdated, mirror.OutcomeRelinked,
					mirror.OutcomeUnchanged, mirror.OutcomeSkipped,
				} {
					if n := report.Outcomes[o]; n > 0 {
						fmt.Fprintf(a.out, "  %-9s %d\n", o, n)
					}
				}
				for _, f := range report.Failures {
					fmt.Fprintf(a.out, "  failed    post %d: %s\n", f.PostID, f.Error)
				}
				return nil
			})
		},
	}
}
