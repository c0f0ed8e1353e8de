package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/termsync/internal/sqlite"
	"github.com/mesh-intelligence/termsync/pkg/types"
)

func (a *app) postCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Manage posts",
	}
	cmd.AddCommand(
		a.postSaveCmd(),
		a.postGetCmd(),
		a.postListCmd(),
		a.postTrashCmd(),
		a.postUntrashCmd(),
		a.postDeleteCmd(),
		a.postTagCmd(),
	)
	return cmd
}

func (a *app) postSaveCmd() *cobra.Command {
	var p types.Post
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create a post, or update it with --id",
		Long: `Save stores a post and fires save_post. Posts of a mirrored type get
their linked term created or updated.

Example:
  termsync post save --type person --title "Jane Doe" --status publish
  termsync post save --id 3 --type person --title "Jane Smith"`,
		Args: userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSite(cmd, func(s *site) error {
				post, err := s.platform.SavePost(cmd.Context(), &p)
				if err != nil {
					return err
				}
				return a.emit(post, postHeader, [][]string{postRow(post)})
			})
		},
	}
	cmd.Flags().Int64Var(&p.ID, "id", 0, "id of the post to update")
	cmd.Flags().StringVar(&p.Type, "type", "", "post type")
	cmd.Flags().StringVar(&p.Title, "title", "", "post title")
	cmd.Flags().StringVar(&p.Slug, "slug", "", "post slug (default: derived from title)")
	cmd.Flags().StringVar(&p.Status, "status", "", "post status (default: draft)")
	cmd.Flags().Int64Var(&p.ParentID, "parent", 0, "parent post id (revisions)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (a *app) postGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a post",
		Args:  userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withSite(cmd, func(s *site) error {
				post, err := s.backend.Post(id)
				if err != nil {
					return fmt.Errorf("post %d: %w", id, err)
				}
				return a.emit(post, postHeader, [][]string{postRow(post)})
			})
		},
	}
}

func (a *app) postListCmd() *cobra.Command {
	var filter sqlite.PostFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		Args:  userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSite(cmd, func(s *site) error {
				posts, err := s.backend.Posts(filter)
				if err != nil {
					return err
				}
				return a.emit(posts, postHeader, postRows(posts))
			})
		},
	}
	cmd.Flags().StringVar(&filter.Type, "type", "", "filter by post type")
	cmd.Flags().StringVar(&filter.Status, "status", "", "filter by status")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of posts")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "number of posts to skip")
	return cmd
}

func (a *app) postTrashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trash <id>",
		Short: "Move a post to the trash",
		Args:  userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withSite(cmd, func(s *site) error {
				post, err := s.platform.TrashPost(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("post %d: %w", id, err)
				}
				return a.emit(post, postHeader, [][]string{postRow(post)})
			})
		},
	}
}

func (a *app) postUntrashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "untrash <id>",
		Short: "Restore a post from the trash",
		Args:  userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withSite(cmd, func(s *site) error {
				post, err := s.platform.UntrashPost(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("post %d: %w", id, err)
				}
				return a.emit(post, postHeader, [][]string{postRow(post)})
			})
		},
	}
}

func (a *app) postDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Permanently delete a post with its revisions and meta",
		Args:  userArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withSite(cmd, func(s *site) error {
				if err := s.platform.DeletePost(cmd.Context(), id); err != nil {
					return fmt.Errorf("post %d: %w", id, err)
				}
				if a.jsonOut {
					return a.printJSON(map[string]int64{"deleted": id})
				}
				fmt.Fprintf(a.out, "deleted post %d\n", id)
				return nil
			})
		},
	}
}

func (a *app) postTagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> <taxonomy> [term-id...]",
		Short: "Replace the post's terms in a taxonomy",
		Long: `Tag assigns terms to a post through regular tagging. Listing no term
ids clears the post's terms in that taxonomy.`,
		Args: userArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			taxonomy := args[1]
			termIDs := make([]int64, 0, len(args)-2)
			for _, raw := range args[2:] {
				termID, err := parseID(raw)
				if err != nil {
					return err
				}
				termIDs = append(termIDs, termID)
			}
			return a.withSite(cmd, func(s *site) error {
				if err := s.platform.SetPostTerms(cmd.Context(), id, taxonomy, termIDs); err != nil {
					return err
				}
				terms, err := s.backend.PostTerms(id, taxonomy)
				if err != nil {
					return err
				}
				return a.emit(terms, termHeader, termRows(terms))
			})
		},
	}
}
