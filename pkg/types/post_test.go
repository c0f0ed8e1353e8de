package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostRevisionChecks(t *testing.T) {
	tests := []struct {
		name         string
		post         Post
		wantRevision bool
		wantAutosave bool
	}{
		{
			name:         "regular post",
			post:         Post{ID: 1, Type: "page", Slug: "about"},
			wantRevision: false,
			wantAutosave: false,
		},
		{
			name:         "revision of a post",
			post:         Post{ID: 2, Type: PostTypeRevision, ParentID: 1, Slug: "1-revision-v1"},
			wantRevision: true,
			wantAutosave: false,
		},
		{
			name:         "autosave of a post",
			post:         Post{ID: 3, Type: PostTypeRevision, ParentID: 1, Slug: AutosaveSlug(1)},
			wantRevision: true,
			wantAutosave: true,
		},
		{
			name:         "revision type without parent is not a revision",
			post:         Post{ID: 4, Type: PostTypeRevision, Slug: "orphan"},
			wantRevision: false,
			wantAutosave: false,
		},
		{
			name:         "autosave suffix on a normal post is ignored",
			post:         Post{ID: 5, Type: "page", Slug: "draft-autosave-v1"},
			wantRevision: false,
			wantAutosave: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRevision, tt.post.IsRevision())
			assert.Equal(t, tt.wantAutosave, tt.post.IsAutosave())
		})
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{StatusPublish, StatusDraft, StatusPending, StatusPrivate, StatusFuture, StatusAutoDraft, StatusTrash, StatusInherit} {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus(""))
	assert.False(t, IsValidStatus("archived"))
}

func TestPostIsTrashed(t *testing.T) {
	assert.True(t, (&Post{Status: StatusTrash}).IsTrashed())
	assert.False(t, (&Post{Status: StatusPublish}).IsTrashed())
}
