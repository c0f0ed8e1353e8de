package mirror

import (
	"context"
	"errors"

	"github.com/mesh-intelligence/termsync/pkg/types"
)

// LinkedTerm returns the term the post is linked to inside taxonomy.
// Returns ErrNotFound when the post has no link or the term is gone.
func (m *Mirror) LinkedTerm(_ context.Context, postID int64, taxonomy string) (*types.Term, error) {
	if postID <= 0 {
		return nil, types.ErrInvalidID
	}
	if taxonomy == "" {
		return nil, types.ErrInvalidTaxonomy
	}
	return m.linkedTerm(postID, taxonomy)
}

// LinkedTermField returns one attribute of the linked term.
func (m *Mirror) LinkedTermField(ctx context.Context, postID int64, taxonomy, field string) (any, error) {
	if !types.IsValidField(field) {
		return nil, types.ErrUnknownField
	}
	term, err := m.LinkedTerm(ctx, postID, taxonomy)
	if err != nil {
		return nil, err
	}
	return term.Field(field)
}

// PostTerms returns the terms of taxonomy assigned to the post through
// regular tagging. The link meta plays no part here.
func (m *Mirror) PostTerms(_ context.Context, postID int64, taxonomy string) ([]*types.Term, error) {
	if postID <= 0 {
		return nil, types.ErrInvalidID
	}
	if taxonomy == "" {
		return nil, types.ErrInvalidTaxonomy
	}
	return m.host.PostTerms(postID, taxonomy)
}

// PostTermFields projects PostTerms onto one attribute.
func (m *Mirror) PostTermFields(ctx context.Context, postID int64, taxonomy, field string) ([]any, error) {
	if !types.IsValidField(field) {
		return nil, types.ErrUnknownField
	}
	terms, err := m.PostTerms(ctx, postID, taxonomy)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(terms))
	for _, t := range terms {
		v, err := t.Field(field)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// LinkedPost returns the post whose link points at term. When several posts
// claim the term the lowest post id wins. Revisions and trashed posts are
// ignored.
func (m *Mirror) LinkedPost(_ context.Context, term *types.Term) (*types.Post, error) {
	if term == nil || term.ID <= 0 {
		return nil, types.ErrInvalidID
	}
	posts, err := m.host.PostsByMeta(types.MetaTermID, types.FormatTermID(term.ID), 0)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if p.IsRevision() || p.IsTrashed() {
			continue
		}
		return p, nil
	}
	return nil, types.ErrNotFound
}

// linkedTerm resolves the link meta. A missing, malformed or stale link
// reports ErrNotFound.
func (m *Mirror) linkedTerm(postID int64, taxonomy string) (*types.Term, error) {
	raw, err := m.host.PostMeta(postID, types.MetaTermID)
	if err != nil {
		return nil, err
	}
	termID, ok := types.ParseTermID(raw)
	if !ok {
		return nil, types.ErrNotFound
	}
	term, err := m.host.Term(termID, taxonomy)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return term, nil
}
