package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/termsync/pkg/types"
)

func (a *app) termCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "term",
		Short: "Inspect terms",
	}

	get := &cobra.Command{
		Use:   "get <taxonomy> <term-id>",
		Short: "Show a term",
		Args:  userArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return a.withSite(cmd, func(s *site) error {
				term, err := s.backend.Term(id, args[0])
				if err != nil {
					return fmt.Errorf("term %d in %s: %w", id, args[0], err)
				}
				return a.emit(term, termHeader, [][]string{termRow(term)})
			})
		},
	}

	list := &cobra.Command{
		Use:   "list <taxonomy>",
		Short: "List the terms of a taxonomy",
		Args:  userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSite(cmd, func(s *site) error {
				if _, err := s.backend.Taxonomy(args[0]); err != nil {
					return fmt.Errorf("taxonomy %s: %w", args[0], err)
				}
				terms, err := s.backend.Terms(args[0])
				if err != nil {
					return err
				}
				if terms == nil {
					terms = []*types.Term{}
				}
				return a.emit(terms, termHeader, termRows(terms))
			})
		},
	}

	cmd.AddCommand(get, list)
	return cmd
}
