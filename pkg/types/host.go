package types

// PostTypeRegistry exposes the registered content types.
type PostTypeRegistry interface {
	// PostTypes returns every registered post type ordered by name.
	PostTypes() ([]*PostType, error)

	// PostType returns the named post type or ErrNotFound.
	PostType(name string) (*PostType, error)
}

// PostReader fetches posts.
type PostReader interface {
	// Post returns the post with the given id or ErrNotFound.
	Post(id int64) (*Post, error)

	// PostsByMeta returns posts carrying meta key=value ordered by id.
	// A limit of zero or less returns every match.
	PostsByMeta(key, value string, limit int) ([]*Post, error)

	// PostsOfType returns every post of the given type ordered by id.
	PostsOfType(postType string) ([]*Post, error)

	// PostTerms returns the terms of taxonomy assigned to the post through
	// term relationships, ordered by name.
	PostTerms(postID int64, taxonomy string) ([]*Term, error)
}

// MetaStore reads and writes single-valued post meta.
type MetaStore interface {
	// PostMeta returns the value stored under key, or "" when unset.
	PostMeta(postID int64, key string) (string, error)

	// SetPostMeta creates or replaces the value stored under key.
	// Returns ErrNotFound if the post does not exist.
	SetPostMeta(postID int64, key, value string) error

	// DeletePostMeta removes key from the post. Idempotent.
	DeletePostMeta(postID int64, key string) error
}

// TermStore manages terms.
type TermStore interface {
	// Term returns the term with id inside taxonomy or ErrNotFound.
	Term(id int64, taxonomy string) (*Term, error)

	// InsertTerm creates a term. An empty slug is derived from name.
	// Returns *TermExistsError when name is already used in the taxonomy
	// and ErrInvalidTaxonomy when the taxonomy is not registered.
	InsertTerm(name, taxonomy, slug string) (*Term, error)

	// UpdateTerm renames the term and changes its slug.
	UpdateTerm(id int64, taxonomy, name, slug string) (*Term, error)

	// DeleteTerm removes the term and its relationships.
	DeleteTerm(id int64, taxonomy string) error
}

// Host is the platform surface termsync depends on.
type Host interface {
	PostTypeRegistry
	PostReader
	MetaStore
	TermStore
}
