package types

import (
	"strings"
	"time"
)

// Post statuses. Trash is entered and left only through the platform's
// trash/untrash operations.
const (
	StatusPublish   = "publish"
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPrivate   = "private"
	StatusFuture    = "future"
	StatusAutoDraft = "auto-draft"
	StatusTrash     = "trash"
	StatusInherit   = "inherit"
)

// validPostStatuses is the set of recognized post status values.
var validPostStatuses = map[string]bool{
	StatusPublish:   true,
	StatusDraft:     true,
	StatusPending:   true,
	StatusPrivate:   true,
	StatusFuture:    true,
	StatusAutoDraft: true,
	StatusTrash:     true,
	StatusInherit:   true,
}

// PostTypeRevision is the built-in post type for stored revisions.
const PostTypeRevision = "revision"

// autosaveSuffix marks a revision as an autosave.
const autosaveSuffix = "-autosave-v1"

// PostType describes a registered content type.
type PostType struct {
	Name  string `json:"name"`
	Label string `json:"label"`

	// AsTaxonomy names the taxonomy this type is mirrored into.
	// Empty means the type is not mirrored.
	AsTaxonomy string    `json:"as_taxonomy,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Post is a content item owned by the host platform.
type Post struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	ParentID  int64     `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValidStatus reports whether s is a recognized post status.
func IsValidStatus(s string) bool {
	return validPostStatuses[s]
}

// IsRevision reports whether the post is a stored revision of another post.
// Autosaves are revisions too.
func (p *Post) IsRevision() bool {
	return p.Type == PostTypeRevision && p.ParentID != 0
}

// IsAutosave reports whether the post is an autosave revision.
func (p *Post) IsAutosave() bool {
	return p.IsRevision() && strings.HasSuffix(p.Slug, autosaveSuffix)
}

// AutosaveSlug returns the slug used for the autosave revision of parentID.
func AutosaveSlug(parentID int64) string {
	return formatID(parentID) + autosaveSuffix
}

// IsTrashed reports whether the post currently sits in the trash.
func (p *Post) IsTrashed() bool {
	return p.Status == StatusTrash
}
