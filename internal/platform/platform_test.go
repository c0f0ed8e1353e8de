package platform

import (
	"context"
	"testing"

	"github.com/mesh-intelligence/termsync/internal/hooks"
	"github.com/mesh-intelligence/termsync/internal/sqlite"
	"github.com/mesh-intelligence/termsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []hooks.Event
}

func (r *recorder) handle(_ context.Context, e hooks.Event) error {
	r.events = append(r.events, e)
	return nil
}

func newTestPlatform(t *testing.T) (*Platform, *recorder) {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { _ = b.Detach() })

	p := New(b, nil, nil)
	rec := &recorder{}
	for _, action := range []string{hooks.ActionInit, hooks.ActionSavePost, hooks.ActionTrashedPost, hooks.ActionUntrashedPost} {
		p.Hooks().AddAction(action, hooks.DefaultPriority, rec.handle)
	}
	return p, rec
}

func TestRegisterPostTypeCreatesTaxonomy(t *testing.T) {
	p, _ := newTestPlatform(t)

	require.NoError(t, p.RegisterPostType(&types.PostType{Name: "person", AsTaxonomy: "team"}))
	require.NoError(t, p.RegisterPostType(&types.PostType{Name: "staff", AsTaxonomy: "team"}))

	tax, err := p.Backend().Taxonomy("team")
	require.NoError(t, err)
	assert.Equal(t, "team", tax.Name)
}

func TestLifecycleFiresActions(t *testing.T) {
	p, rec := newTestPlatform(t)
	ctx := context.Background()
	require.NoError(t, p.RegisterPostType(&types.PostType{Name: "person", AsTaxonomy: "team"}))

	p.Init(ctx)
	post, err := p.SavePost(ctx, &types.Post{Type: "person", Title: "Alice", Status: types.StatusPublish})
	require.NoError(t, err)
	_, err = p.TrashPost(ctx, post.ID)
	require.NoError(t, err)
	restored, err := p.UntrashPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPublish, restored.Status)

	assert.Equal(t, []hooks.Event{
		{Name: hooks.ActionInit},
		{Name: hooks.ActionSavePost, PostID: post.ID},
		{Name: hooks.ActionTrashedPost, PostID: post.ID},
		{Name: hooks.ActionUntrashedPost, PostID: post.ID},
	}, rec.events)
}

func TestFailedWritesFireNothing(t *testing.T) {
	p, rec := newTestPlatform(t)
	ctx := context.Background()

	_, err := p.SavePost(ctx, &types.Post{Type: "unknown", Title: "X"})
	assert.ErrorIs(t, err, types.ErrInvalidPostType)
	_, err = p.TrashPost(ctx, 99)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = p.UntrashPost(ctx, 99)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.Empty(t, rec.events)
}

func TestRevisionSaveFiresSavePost(t *testing.T) {
	p, rec := newTestPlatform(t)
	ctx := context.Background()
	require.NoError(t, p.RegisterPostType(&types.PostType{Name: "person", AsTaxonomy: "team"}))

	parent, err := p.SavePost(ctx, &types.Post{Type: "person", Title: "Alice"})
	require.NoError(t, err)
	rev, err := p.SavePost(ctx, &types.Post{Type: types.PostTypeRevision, ParentID: parent.ID, Title: "Alice"})
	require.NoError(t, err)

	require.Len(t, rec.events, 2)
	assert.Equal(t, rev.ID, rec.events[1].PostID)
}
