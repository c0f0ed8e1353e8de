package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mesh-intelligence/termsync/pkg/types"
)

// Save brings the post's linked term in line with the post. Revisions,
// autosaves, auto-drafts, trashed posts and unconfigured types are skipped.
//
// A live link has its term renamed to the post title and slug. A missing or
// stale link gets a new term; when the taxonomy already holds a term with
// the post's title, the post is linked to that term instead.
func (m *Mirror) Save(_ context.Context, postID int64) (Outcome, error) {
	post, err := m.host.Post(postID)
	if err != nil {
		return OutcomeSkipped, err
	}
	if post.IsRevision() || post.IsAutosave() ||
		post.Status == types.StatusAutoDraft || post.IsTrashed() {
		return OutcomeSkipped, nil
	}
	taxonomy, ok := m.taxonomyFor(post.Type)
	if !ok {
		return OutcomeSkipped, nil
	}

	term, err := m.linkedTerm(post.ID, taxonomy)
	switch {
	case err == nil:
		return m.updateTerm(post, term)
	case errors.Is(err, types.ErrNotFound):
		return m.createTerm(post, taxonomy)
	default:
		return OutcomeSkipped, err
	}
}

// Restore handles a post coming back from the trash. It behaves like Save.
func (m *Mirror) Restore(ctx context.Context, postID int64) (Outcome, error) {
	return m.Save(ctx, postID)
}

// Trash deletes the post's linked term when it still exists and drops the
// link so a later restore starts from a fresh term.
func (m *Mirror) Trash(_ context.Context, postID int64) (Outcome, error) {
	post, err := m.host.Post(postID)
	if err != nil {
		return OutcomeSkipped, err
	}
	if post.IsRevision() {
		return OutcomeSkipped, nil
	}
	taxonomy, ok := m.taxonomyFor(post.Type)
	if !ok {
		return OutcomeSkipped, nil
	}

	raw, err := m.host.PostMeta(post.ID, types.MetaTermID)
	if err != nil {
		return OutcomeSkipped, err
	}
	if raw == "" {
		return OutcomeUnchanged, nil
	}

	outcome := OutcomeUnchanged
	if termID, ok := types.ParseTermID(raw); ok {
		if _, err := m.host.Term(termID, taxonomy); err == nil {
			if err := m.host.DeleteTerm(termID, taxonomy); err != nil {
				return OutcomeSkipped, fmt.Errorf("deleting term %d: %w", termID, err)
			}
			outcome = OutcomeDeleted
		} else if !errors.Is(err, types.ErrNotFound) {
			return OutcomeSkipped, err
		}
	}

	if err := m.host.DeletePostMeta(post.ID, types.MetaTermID); err != nil {
		return outcome, fmt.Errorf("clearing link of post %d: %w", post.ID, err)
	}
	return outcome, nil
}

func (m *Mirror) updateTerm(post *types.Post, term *types.Term) (Outcome, error) {
	name := strings.TrimSpace(post.Title)
	if term.Name == name && (post.Slug == "" || term.Slug == post.Slug) {
		return OutcomeUnchanged, nil
	}
	updated, err := m.host.UpdateTerm(term.ID, term.Taxonomy, name, post.Slug)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("updating term %d: %w", term.ID, err)
	}
	// The host may suffix the slug, so compare what it stored.
	if updated.Name == term.Name && updated.Slug == term.Slug {
		return OutcomeUnchanged, nil
	}
	return OutcomeUpdated, nil
}

func (m *Mirror) createTerm(post *types.Post, taxonomy string) (Outcome, error) {
	outcome := OutcomeCreated
	term, err := m.host.InsertTerm(post.Title, taxonomy, post.Slug)
	var termID int64
	switch {
	case err == nil:
		termID = term.ID
	default:
		existing, ok := types.ExistingTermID(err)
		if !ok {
			return OutcomeSkipped, fmt.Errorf("inserting term for post %d: %w", post.ID, err)
		}
		termID = existing
		outcome = OutcomeRelinked
	}

	if err := m.host.SetPostMeta(post.ID, types.MetaTermID, types.FormatTermID(termID)); err != nil {
		return OutcomeSkipped, fmt.Errorf("linking post %d to term %d: %w", post.ID, termID, err)
	}
	return outcome, nil
}

// Failure records a post Resync could not synchronize.
type Failure struct {
	PostID int64  `json:"post_id"`
	Error  string `json:"error"`
}

// Report summarizes a Resync run.
type Report struct {
	Scanned  int             `json:"scanned"`
	Outcomes map[Outcome]int `json:"outcomes"`
	Failures []Failure       `json:"failures,omitempty"`
}

// Resync runs Save over every post of every configured post type. Posts
// that fail are recorded in the report and do not stop the walk; the
// returned error is reserved for listing failures.
func (m *Mirror) Resync(ctx context.Context) (Report, error) {
	report := Report{Outcomes: map[Outcome]int{}}
	for _, postType := range m.configuredTypes() {
		posts, err := m.host.PostsOfType(postType)
		if err != nil {
			return report, fmt.Errorf("listing %s posts: %w", postType, err)
		}
		for _, p := range posts {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.Scanned++
			outcome, err := m.Save(ctx, p.ID)
			if err != nil {
				report.Failures = append(report.Failures, Failure{PostID: p.ID, Error: err.Error()})
				m.logger.Debug("resync failed", slog.Int64("post_id", p.ID), slog.String("error", err.Error()))
				continue
			}
			report.Outcomes[outcome]++
		}
	}
	return report, nil
}
