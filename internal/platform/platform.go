// Package platform ties the SQLite backend to the action registry. Every
// lifecycle write goes through Platform so the matching action fires after
// the change is stored.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/termsync/internal/hooks"
	"github.com/mesh-intelligence/termsync/internal/sqlite"
	"github.com/mesh-intelligence/termsync/pkg/types"
)

// Platform is the host content platform: storage plus actions.
type Platform struct {
	backend *sqlite.Backend
	hooks   *hooks.Registry
	logger  *slog.Logger
}

// New wraps an attached backend. A nil registry gets a fresh one.
func New(backend *sqlite.Backend, registry *hooks.Registry, logger *slog.Logger) *Platform {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = hooks.New(logger)
	}
	return &Platform{backend: backend, hooks: registry, logger: logger}
}

// Backend returns the storage backend for reads.
func (p *Platform) Backend() *sqlite.Backend { return p.backend }

// Hooks returns the action registry.
func (p *Platform) Hooks() *hooks.Registry { return p.hooks }

// Init fires the init action.
func (p *Platform) Init(ctx context.Context) {
	p.fire(ctx, hooks.ActionInit, 0)
}

// RegisterTaxonomy stores a taxonomy.
func (p *Platform) RegisterTaxonomy(tax *types.Taxonomy) error {
	return p.backend.RegisterTaxonomy(tax)
}

// RegisterPostType stores the post type. When it names a taxonomy that does
// not exist yet, the taxonomy is registered too.
func (p *Platform) RegisterPostType(pt *types.PostType) error {
	if pt != nil && pt.AsTaxonomy != "" {
		if err := p.backend.RegisterTaxonomy(&types.Taxonomy{Name: pt.AsTaxonomy}); err != nil &&
			!errors.Is(err, types.ErrDuplicateType) {
			return fmt.Errorf("registering taxonomy %s: %w", pt.AsTaxonomy, err)
		}
	}
	return p.backend.RegisterPostType(pt)
}

// SavePost stores the post and fires save_post.
func (p *Platform) SavePost(ctx context.Context, post *types.Post) (*types.Post, error) {
	if _, err := p.backend.SavePost(post); err != nil {
		return nil, err
	}
	p.fire(ctx, hooks.ActionSavePost, post.ID)
	return post, nil
}

// TrashPost moves the post to the trash and fires trashed_post.
func (p *Platform) TrashPost(ctx context.Context, id int64) (*types.Post, error) {
	post, err := p.backend.TrashPost(id)
	if err != nil {
		return nil, err
	}
	p.fire(ctx, hooks.ActionTrashedPost, id)
	return post, nil
}

// UntrashPost restores the post and fires untrashed_post. save_post is not
// fired for a restore.
func (p *Platform) UntrashPost(ctx context.Context, id int64) (*types.Post, error) {
	post, err := p.backend.UntrashPost(id)
	if err != nil {
		return nil, err
	}
	p.fire(ctx, hooks.ActionUntrashedPost, id)
	return post, nil
}

// DeletePost permanently removes the post. No action fires.
func (p *Platform) DeletePost(_ context.Context, id int64) error {
	return p.backend.DeletePost(id)
}

// SetPostTerms assigns terms of taxonomy to the post.
func (p *Platform) SetPostTerms(_ context.Context, postID int64, taxonomy string, termIDs []int64) error {
	return p.backend.SetPostTerms(postID, taxonomy, termIDs)
}

func (p *Platform) fire(ctx context.Context, action string, postID int64) {
	if failed := p.hooks.DoAction(ctx, hooks.Event{Name: action, PostID: postID}); failed > 0 {
		p.logger.Debug("action finished with failures",
			slog.String("action", action),
			slog.Int64("post_id", postID),
			slog.Int("failed", failed),
		)
	}
}
